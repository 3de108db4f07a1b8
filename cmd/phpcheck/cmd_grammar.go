package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/phpcheck/php/doctype"
)

func newGrammarCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:          "grammar",
		Short:        "Print the EBNF grammar of PHPDoc type expressions",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verify {
				if err := doctype.VerifyGrammar(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "grammar ok (start: %s)\n", doctype.StartProduction)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(doctype.Grammar))
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check that the grammar is well formed instead of printing it")

	return cmd
}
