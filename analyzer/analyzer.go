// Package analyzer runs rules over PHP files: it discovers and parses the
// files, builds the project snapshot, and checks every file concurrently
// while honoring the configuration and in-file directives.
package analyzer

import (
	"context"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/phpcheck/config"
	"github.com/dhamidi/phpcheck/diagnostic"
	"github.com/dhamidi/phpcheck/php/observed"
	"github.com/dhamidi/phpcheck/php/parser"
	"github.com/dhamidi/phpcheck/php/project"
	"github.com/dhamidi/phpcheck/rules"
)

var log = commonlog.GetLogger("phpcheck.analyzer")

type Analyzer struct {
	cfg   *config.Config
	rules []rules.Rule
	hints observed.HintOptions
}

// New returns an analyzer running the rules enabled by cfg. A nil cfg
// means the defaults.
func New(cfg *config.Config) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	version, err := cfg.Version()
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		cfg:   cfg,
		hints: observed.HintOptions{Version: version},
	}
	for _, r := range rules.All() {
		if !cfg.Enabled(r.Name()) {
			log.Debugf("rule %s disabled by configuration", r.Name())
			continue
		}
		a.rules = append(a.rules, r)
	}
	return a, nil
}

// Config returns the configuration the analyzer was created with.
func (a *Analyzer) Config() *config.Config {
	return a.cfg
}

// Rules returns the names of the rules that will run.
func (a *Analyzer) Rules() []string {
	names := make([]string, len(a.rules))
	for i, r := range a.rules {
		names[i] = r.Name()
	}
	return names
}

// AnalyzePaths analyzes every PHP file found below paths, which may be
// files or directories, as one project.
func (a *Analyzer) AnalyzePaths(ctx context.Context, paths ...string) ([]diagnostic.Diagnostic, error) {
	var files []string
	for _, root := range paths {
		found, err := CollectFiles(root, a.cfg)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	log.Infof("analyzing %d files", len(files))

	parsed, err := a.ParseFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeFiles(ctx, project.New(parsed), parsed)
}

// ParseFiles reads and parses the files at paths concurrently. The result
// has the same order as paths.
func (a *Analyzer) ParseFiles(ctx context.Context, paths []string) ([]*parser.File, error) {
	files := make([]*parser.File, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			files[i] = parser.ParseFile(path, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// AnalyzeFiles checks files against proj, which must not change while the
// analysis runs. Diagnostics are sorted by file and position.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, proj *project.Project, files []*parser.File) ([]diagnostic.Diagnostic, error) {
	results := make([][]diagnostic.Diagnostic, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.AnalyzeFile(proj, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []diagnostic.Diagnostic
	for _, diags := range results {
		all = append(all, diags...)
	}
	diagnostic.Sort(all)
	log.Debugf("found %d problems", len(all))
	return all, nil
}

// AnalyzeFile runs the enabled rules over a single file.
func (a *Analyzer) AnalyzeFile(proj *project.Project, f *parser.File) []diagnostic.Diagnostic {
	source := string(f.Source)
	ignores := ParseIgnores(source)
	if ignores.All() {
		log.Debugf("%s: ignored", f.Path)
		return nil
	}
	tests := ParseTestDirectives(source)

	ctx := &rules.Context{File: f, Project: proj, Hints: a.hints}
	var diags []diagnostic.Diagnostic
	for _, r := range a.rules {
		if !tests.Runs(r.Name()) || ignores.Ignored(r.Name()) {
			continue
		}
		diags = append(diags, r.Check(ctx)...)
	}
	return diags
}

func (a *Analyzer) workers() int {
	if a.cfg.Workers < 1 {
		return 1
	}
	return a.cfg.Workers
}
