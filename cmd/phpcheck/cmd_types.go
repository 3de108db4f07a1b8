package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/dhamidi/phpcheck/php/compat"
	"github.com/dhamidi/phpcheck/php/doctype"
	"github.com/dhamidi/phpcheck/php/observed"
	"github.com/dhamidi/phpcheck/php/parser"
)

const typesHistoryFile = ".phpcheck_types_history"

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types [<type> <expression>]",
		Short: "Check PHP expressions against PHPDoc types interactively",
		Long: `Reads lines of the form

    <type> <- <php expression>

and prints whether the value of the expression satisfies the type, e.g.

    array{id: int, name?: string} <- ['id' => '1']

With two arguments, checks them once and exits.`,
		Args:         cobra.MatchAll(cobra.MaximumNArgs(2), notOneArg),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				fmt.Fprint(cmd.OutOrStdout(), verdict(args[0], args[1]))
				return nil
			}
			return typesRepl(cmd.OutOrStdout())
		},
	}
}

func notOneArg(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return errors.New("expected a type and an expression")
	}
	return nil
}

func typesRepl(out io.Writer) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, typesHistoryFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt("types> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case ":quit", ":q":
			return nil
		}
		ln.AppendHistory(line)

		declared, expr, ok := strings.Cut(line, "<-")
		if !ok {
			fmt.Fprintln(out, "expected <type> <- <expression>")
			continue
		}
		fmt.Fprint(out, verdict(declared, expr))
	}
}

// verdict checks the value of the PHP expression src against the type
// text and describes the outcome, one line per problem.
func verdict(typeText, src string) string {
	declared := doctype.Parse(strings.TrimSpace(typeText))
	value := parser.ParseExpr(strings.TrimSpace(src))
	res := compat.Check(declared, observed.Infer(value))

	var sb strings.Builder
	if res.Compatible() {
		fmt.Fprintf(&sb, "ok: '%s' accepts '%s'\n", res.Declared, res.Observed)
		return sb.String()
	}

	fmt.Fprintf(&sb, "incompatible: '%s' does not accept '%s'\n", res.Declared, res.Observed)
	for _, p := range res.Problems {
		switch p.Part {
		case compat.PartKey:
			fmt.Fprintf(&sb, "  entry %d: key type '%s' is not '%s'\n", p.Entry, p.Observed, p.Declared)
		case compat.PartValue:
			fmt.Fprintf(&sb, "  entry %d: value type '%s' is not '%s'", p.Entry, p.Observed, p.Declared)
			if p.Field != "" {
				fmt.Fprintf(&sb, " for field '%s'", p.Field)
			}
			sb.WriteByte('\n')
		case compat.PartMissingField:
			fmt.Fprintf(&sb, "  missing field '%s' of type '%s'\n", p.Field, p.Declared)
		}
	}
	return sb.String()
}
