package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"github.com/xyproto/env/v2"
)

const version = "0.1.0"

func main() {
	var (
		verbosity int
		logPath   string
	)

	rootCmd := &cobra.Command{
		Use:     "phpcheck",
		Short:   "Check PHPDoc type annotations against PHP code",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !cmd.Flags().Changed("verbose") {
				verbosity = env.Int("PHPCHECK_VERBOSITY", verbosity)
			}
			var path *string
			if logPath != "" {
				path = &logPath
			}
			commonlog.Configure(verbosity, path)
		},
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newTypesCmd())
	rootCmd.AddCommand(newGrammarCmd())

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFoundProblems) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "phpcheck: %v\n", err)
		os.Exit(2)
	}
}
