package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/phpcheck/php/codebase"
)

func newLSPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := codebase.NewLSPServer(version, configPath)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "configuration file (default: php_checker.yaml in the workspace root)")

	return cmd
}
