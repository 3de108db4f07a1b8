// Package codebase keeps an analyzed, up to date view of a PHP code base
// for long running front ends: the language server and watch mode.
package codebase

import (
	"context"
	"os"
	"slices"
	"sort"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/phpcheck/analyzer"
	"github.com/dhamidi/phpcheck/diagnostic"
	"github.com/dhamidi/phpcheck/php/parser"
	"github.com/dhamidi/phpcheck/php/project"
)

var log = commonlog.GetLogger("phpcheck.codebase")

// ChangeFunc receives the diagnostics of every file whose diagnostics
// changed after an update. A file without problems maps to an empty slice.
type ChangeFunc func(changed map[string][]diagnostic.Diagnostic)

type Codebase struct {
	mu       sync.RWMutex
	ctx      context.Context
	rootDir  string
	analyzer *analyzer.Analyzer
	files    map[string]*FileInfo
	open     map[string]bool
	project  *project.Project
	onChange ChangeFunc
}

type FileInfo struct {
	Path        string
	Content     []byte
	File        *parser.File
	Diagnostics []diagnostic.Diagnostic
}

func New(rootDir string, a *analyzer.Analyzer) *Codebase {
	return &Codebase{
		ctx:      context.Background(),
		rootDir:  rootDir,
		analyzer: a,
		files:    make(map[string]*FileInfo),
		open:     make(map[string]bool),
		project:  project.New(nil),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

// OnChange registers fn to be called after every update.
func (c *Codebase) OnChange(fn ChangeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// ScanAll reads every PHP file below the root and analyzes them together.
func (c *Codebase) ScanAll() error {
	paths, err := analyzer.CollectFiles(c.rootDir, c.analyzer.Config())
	if err != nil {
		return err
	}
	parsed, err := c.analyzer.ParseFiles(c.ctx, paths)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for _, f := range parsed {
		if c.open[f.Path] {
			continue
		}
		c.files[f.Path] = &FileInfo{Path: f.Path, Content: f.Source, File: f}
	}
	changed := c.reanalyzeLocked()
	fn := c.onChange
	c.mu.Unlock()

	log.Infof("scanned %d files in %s", len(parsed), c.rootDir)
	notify(fn, changed)
	return nil
}

// ScanFile re-reads the file at path from disk. Files opened in an editor
// are skipped: their editor content is authoritative.
func (c *Codebase) ScanFile(path string) error {
	c.mu.RLock()
	isOpen := c.open[path]
	c.mu.RUnlock()
	if isOpen {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.update(path, content)
	return nil
}

// UpdateFile replaces the content of the file at path.
func (c *Codebase) UpdateFile(path string, content []byte) {
	c.update(path, content)
}

// Open marks path as edited in memory and sets its content.
func (c *Codebase) Open(path string, content []byte) {
	c.mu.Lock()
	c.open[path] = true
	c.mu.Unlock()
	c.update(path, content)
}

// Close ends in-memory editing of path and reloads it from disk.
func (c *Codebase) Close(path string) {
	c.mu.Lock()
	delete(c.open, path)
	c.mu.Unlock()

	if err := c.ScanFile(path); err != nil {
		c.RemoveFile(path)
	}
}

func (c *Codebase) update(path string, content []byte) {
	c.mu.Lock()
	f := parser.ParseFile(path, content)
	c.files[path] = &FileInfo{Path: path, Content: content, File: f}
	changed := c.reanalyzeLocked()
	fn := c.onChange
	c.mu.Unlock()

	notify(fn, changed)
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	_, known := c.files[path]
	delete(c.files, path)
	var changed map[string][]diagnostic.Diagnostic
	if known {
		changed = c.reanalyzeLocked()
		if changed == nil {
			changed = make(map[string][]diagnostic.Diagnostic)
		}
		changed[path] = []diagnostic.Diagnostic{}
	}
	fn := c.onChange
	c.mu.Unlock()

	notify(fn, changed)
}

// reanalyzeLocked rebuilds the project snapshot and checks every file
// against it, since a change to one file can change what calls in other
// files resolve to. It returns the files whose diagnostics changed.
func (c *Codebase) reanalyzeLocked() map[string][]diagnostic.Diagnostic {
	files := make([]*parser.File, 0, len(c.files))
	for _, path := range c.pathsLocked() {
		files = append(files, c.files[path].File)
	}
	c.project = project.New(files)

	diags, err := c.analyzer.AnalyzeFiles(c.ctx, c.project, files)
	if err != nil {
		log.Errorf("analyze: %s", err)
		return nil
	}

	byPath := make(map[string][]diagnostic.Diagnostic)
	for _, d := range diags {
		byPath[d.Path] = append(byPath[d.Path], d)
	}

	changed := make(map[string][]diagnostic.Diagnostic)
	for path, info := range c.files {
		next := byPath[path]
		if len(next) == 0 && len(info.Diagnostics) == 0 && info.Diagnostics != nil {
			continue
		}
		if next == nil {
			next = []diagnostic.Diagnostic{}
		}
		if !slices.Equal(info.Diagnostics, next) || info.Diagnostics == nil {
			changed[path] = next
		}
		info.Diagnostics = next
	}
	return changed
}

func (c *Codebase) pathsLocked() []string {
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func notify(fn ChangeFunc, changed map[string][]diagnostic.Diagnostic) {
	if fn != nil && len(changed) > 0 {
		fn(changed)
	}
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Source returns the current content of the file at path, or nil.
func (c *Codebase) Source(path string) []byte {
	if f := c.GetFile(path); f != nil {
		return f.Content
	}
	return nil
}

// Diagnostics returns the problems of all files, sorted.
func (c *Codebase) Diagnostics() []diagnostic.Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var all []diagnostic.Diagnostic
	for _, f := range c.files {
		all = append(all, f.Diagnostics...)
	}
	diagnostic.Sort(all)
	return all
}

// Project returns the current project snapshot.
func (c *Codebase) Project() *project.Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.project
}
