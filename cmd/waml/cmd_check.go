package main

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/errors"
)

func newCheckCmd() *cobra.Command {
	var checkExprs bool

	cmd := &cobra.Command{
		Use:   "check [file|pattern ...]",
		Short: "Report syntax errors in WAML documents",
		Long: `Parse WAML documents and report the first syntax error in each,
with the offending line and a caret under the error position.

With no arguments, reads stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{stdinName}
			}
			paths, err := expandArgs(args)
			if err != nil {
				return err
			}

			var opts []waml.Option
			if checkExprs {
				opts = append(opts, waml.ExprsEnabled())
			}

			stdin := cmd.InOrStdin()
			results, err := eachFile(cmd.Context(), paths, func(path string) ([]byte, error) {
				src, err := readSource(stdin, path)
				if err != nil {
					return nil, err
				}
				if _, err := waml.Parse(src, opts...); err != nil {
					var d *errors.Diagnostic
					if !stderrors.As(err, &d) {
						return nil, err
					}
					out := fmt.Sprintf("%s:%d:%d: %s\n%s\n", path, d.Line, d.Column, d.Message, d.Excerpt(src))
					return []byte(out), d
				}
				return nil, nil
			})
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				cmd.OutOrStdout().Write(r.out)
				if r.err != nil {
					failed++
					if !errors.Is(r.err) {
						fmt.Fprintln(cmd.ErrOrStderr(), r.err)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files have errors", failed, len(paths))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkExprs, "exprs", false, "accept expression documents")

	return cmd
}
