package main

import (
	"github.com/spf13/cobra"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/internal/lsp"
)

func newLSPCmd() *cobra.Command {
	var lspIndent int

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version, waml.Indent(lspIndent))
			return server.RunStdio()
		},
	}

	cmd.Flags().IntVar(&lspIndent, "indent", 2, "number of spaces per indentation level when formatting")

	return cmd
}
