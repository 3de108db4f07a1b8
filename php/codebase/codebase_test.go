package codebase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/phpcheck/analyzer"
	"github.com/dhamidi/phpcheck/diagnostic"
)

func newCodebase(t *testing.T, root string) *Codebase {
	t.Helper()
	a, err := analyzer.New(nil)
	require.NoError(t, err)
	return New(root, a)
}

func summaries(diags []diagnostic.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.String())
	}
	return out
}

const lib = `<?php
/** @param int $n */
function twice($n) { return $n * 2; }
`

const caller = `<?php
twice('x');
`

func TestUpdateAcrossFiles(t *testing.T) {
	c := newCodebase(t, "/project")

	var changes []map[string][]diagnostic.Diagnostic
	c.OnChange(func(changed map[string][]diagnostic.Diagnostic) {
		changes = append(changes, changed)
	})

	c.UpdateFile("/project/caller.php", []byte(caller))
	assert.Empty(t, c.Diagnostics(), "call to an unknown function is not checked")

	c.UpdateFile("/project/lib.php", []byte(lib))
	assert.Equal(t, []string{
		"error: @param type 'int' conflicts with argument type 'string' for parameter $n at 2:7",
	}, summaries(c.GetFile("/project/caller.php").Diagnostics))

	c.UpdateFile("/project/lib.php", []byte(`<?php
/** @param string $n */
function twice($n) { return $n . $n; }
`))
	assert.Empty(t, c.Diagnostics())

	require.Len(t, changes, 3)
	assert.Contains(t, changes[1], "/project/caller.php")
	assert.Empty(t, changes[2]["/project/caller.php"])
}

func TestRemoveFile(t *testing.T) {
	c := newCodebase(t, "/project")
	c.UpdateFile("/project/lib.php", []byte(lib))
	c.UpdateFile("/project/caller.php", []byte(caller))
	require.Len(t, c.Diagnostics(), 1)

	var last map[string][]diagnostic.Diagnostic
	c.OnChange(func(changed map[string][]diagnostic.Diagnostic) { last = changed })

	c.RemoveFile("/project/lib.php")
	assert.Nil(t, c.GetFile("/project/lib.php"))
	assert.Empty(t, c.Diagnostics())
	assert.Contains(t, last, "/project/lib.php")
	assert.Contains(t, last, "/project/caller.php")
	assert.Nil(t, c.Project().Function("twice"))
}

func TestRemoveFileWhenAnalysisFails(t *testing.T) {
	c := newCodebase(t, "/project")
	c.UpdateFile("/project/lib.php", []byte(lib))
	c.UpdateFile("/project/caller.php", []byte(caller))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.ctx = ctx

	var last map[string][]diagnostic.Diagnostic
	c.OnChange(func(changed map[string][]diagnostic.Diagnostic) { last = changed })

	require.NotPanics(t, func() { c.RemoveFile("/project/lib.php") })
	assert.Equal(t, map[string][]diagnostic.Diagnostic{"/project/lib.php": {}}, last)
}

func TestOpenFilesWinOverDisk(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php\n/** @var int */\n$x = 1;\n"), 0644))

	c := newCodebase(t, root)
	require.NoError(t, c.ScanAll())
	assert.Empty(t, c.Diagnostics())

	c.Open(path, []byte("<?php\n/** @var int */\n$x = 'one';\n"))
	require.Len(t, c.Diagnostics(), 1)

	require.NoError(t, c.ScanFile(path))
	assert.Len(t, c.Diagnostics(), 1, "disk content must not replace an open buffer")

	c.Close(path)
	assert.Empty(t, c.Diagnostics())
	assert.Equal(t, "<?php\n/** @var int */\n$x = 1;\n", string(c.Source(path)))
}

func TestProtocolPosition(t *testing.T) {
	lines := [][]byte{
		[]byte("<?php"),
		[]byte("$s = 'é𝄞'; $x = 1;"),
	}
	tests := []struct {
		line, column int
		wantLine     uint32
		wantChar     uint32
	}{
		{1, 1, 0, 0},
		{2, 6, 1, 5},
		// 'é' is two bytes but one UTF-16 unit, '𝄞' is four bytes and two units.
		{2, 13, 1, 9},
		{5, 3, 4, 2},
	}
	for _, tt := range tests {
		pos := toProtocolPosition(lines, tt.line, tt.column)
		assert.Equal(t, tt.wantLine, uint32(pos.Line), "line of %d:%d", tt.line, tt.column)
		assert.Equal(t, tt.wantChar, uint32(pos.Character), "character of %d:%d", tt.line, tt.column)
	}
}

func TestURIs(t *testing.T) {
	path, err := uriToPath("file:///home/me/my%20app/index.php")
	require.NoError(t, err)
	assert.Equal(t, "/home/me/my app/index.php", path)
	assert.Equal(t, "file:///home/me/my%20app/index.php", pathToURI(path))
}
