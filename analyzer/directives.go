package analyzer

import (
	"strings"

	"github.com/hashicorp/go-set/v3"
)

const (
	ignoreDirective     = "php-checker-ignore"
	ignoreFileDirective = "php-checker-ignore-file"
	testDirective       = "// php-checker-test:"

	// testDirectiveLines is how far into a file test directives are read.
	testDirectiveLines = 20
)

// Ignores holds the php-checker-ignore directives of a file. Suppression
// applies to the whole file.
type Ignores struct {
	all      bool
	patterns *set.Set[string]
}

// ParseIgnores reads the ignore directives from source. A directive
// without arguments, or with "*", "all" or "file", suppresses every rule;
// otherwise its arguments name rules or rule groups.
func ParseIgnores(source string) *Ignores {
	ig := &Ignores{patterns: set.New[string](0)}
	for line := range strings.Lines(source) {
		if ig.all {
			break
		}
		if strings.Contains(line, ignoreFileDirective) {
			ig.all = true
			continue
		}
		if i := strings.Index(line, ignoreDirective); i >= 0 {
			ig.apply(line[i+len(ignoreDirective):])
		}
	}
	return ig
}

func (ig *Ignores) apply(tail string) {
	args := strings.TrimSpace(trimCommentTail(tail))
	args = strings.TrimSpace(strings.TrimPrefix(args, ":"))
	if args == "" {
		ig.all = true
		return
	}

	for _, token := range strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
		token = strings.Trim(token, "\"'`")
		token = strings.TrimRight(token, "/")
		if token == "" {
			continue
		}
		token = strings.ToLower(token)
		switch token {
		case "*", "all", "file":
			ig.all = true
			return
		}
		ig.patterns.Insert(token)
	}
}

// All reports whether every rule is suppressed.
func (ig *Ignores) All() bool {
	return ig != nil && ig.all
}

// Ignored reports whether diagnostics of the rule called name are
// suppressed, either by name or by one of its groups.
func (ig *Ignores) Ignored(name string) bool {
	if ig == nil {
		return false
	}
	if ig.all {
		return true
	}
	candidate := strings.ToLower(name)
	for {
		if ig.patterns.Contains(candidate) {
			return true
		}
		i := strings.LastIndexByte(candidate, '/')
		if i < 0 {
			return false
		}
		candidate = candidate[:i]
	}
}

func trimCommentTail(s string) string {
	limit := len(s)
	for _, marker := range []string{"//", "/*", "#", "*/"} {
		if i := strings.Index(s, marker); i >= 0 && i < limit {
			limit = i
		}
	}
	return s[:limit]
}

// TestDirectives restricts which rules run on a fixture file. They are
// read from "// php-checker-test:" comments near the top of the file.
type TestDirectives struct {
	only *set.Set[string]
	skip *set.Set[string]
}

// ParseTestDirectives reads only-rules= and skip-rules= directives from
// the first lines of source.
func ParseTestDirectives(source string) *TestDirectives {
	td := &TestDirectives{skip: set.New[string](0)}
	n := 0
	for line := range strings.Lines(source) {
		if n++; n > testDirectiveLines {
			break
		}
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), testDirective)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if list, ok := strings.CutPrefix(rest, "only-rules="); ok {
			if names := splitRules(list); len(names) > 0 {
				td.only = set.From(names)
			}
		} else if list, ok := strings.CutPrefix(rest, "skip-rules="); ok {
			td.skip.InsertSlice(splitRules(list))
		}
	}
	return td
}

func splitRules(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Runs reports whether the rule called name should run on the file.
func (td *TestDirectives) Runs(name string) bool {
	if td == nil {
		return true
	}
	if td.skip.Contains(name) {
		return false
	}
	return td.only == nil || td.only.Contains(name)
}

// Active reports whether the file carries any test directive.
func (td *TestDirectives) Active() bool {
	return td != nil && (td.only != nil || !td.skip.Empty())
}
