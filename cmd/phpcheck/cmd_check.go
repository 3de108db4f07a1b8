package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/phpcheck/analyzer"
	"github.com/dhamidi/phpcheck/config"
	"github.com/dhamidi/phpcheck/diagnostic"
	"github.com/dhamidi/phpcheck/format"
	"github.com/dhamidi/phpcheck/php/codebase"
)

// errFoundProblems makes the process exit with status 1 without printing
// anything beyond the report itself.
var errFoundProblems = errors.New("found problems")

func newCheckCmd() *cobra.Command {
	var (
		formatName string
		configPath string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:          "check [paths...]",
		Short:        "Report PHPDoc annotations that conflict with the code",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			out := cmd.OutOrStdout()
			enc, err := format.New(formatName, out, readSource)
			if err != nil {
				return err
			}

			cfg, err := config.LoadFor(configPath, configRoot(args[0]))
			if err != nil {
				return err
			}
			a, err := analyzer.New(cfg)
			if err != nil {
				return err
			}

			if watch {
				if len(args) != 1 {
					return errors.New("--watch takes a single directory")
				}
				return runWatch(cmd.Context(), a, args[0], formatName, out)
			}

			diags, err := a.AnalyzePaths(cmd.Context(), args...)
			if err != nil {
				return err
			}
			if err := enc.Encode(diags); err != nil {
				return err
			}
			if diagnostic.HasErrors(diags) {
				return errFoundProblems
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "text", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (default: php_checker.yaml in the first path)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check whenever a PHP file changes")

	return cmd
}

// configRoot is the directory searched for a configuration file.
func configRoot(path string) string {
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

func readSource(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}

func runWatch(ctx context.Context, a *analyzer.Analyzer, root, formatName string, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	c := codebase.New(root, a)
	report := func() {
		enc, err := format.New(formatName, out, c.Source)
		if err != nil {
			return
		}
		diags := c.Diagnostics()
		if formatName == "text" {
			fmt.Fprintf(out, "-- %d problem(s) in %s --\n", len(diags), root)
		}
		enc.Encode(diags)
	}

	if err := c.ScanAll(); err != nil {
		return err
	}
	report()
	c.OnChange(func(map[string][]diagnostic.Diagnostic) { report() })

	w, err := codebase.NewFileWatcher(c)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	<-ctx.Done()
	return nil
}
