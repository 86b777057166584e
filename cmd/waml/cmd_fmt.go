package main

import (
	"bytes"
	stderrors "errors"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/KimNorgaard/go-waml"
)

func newFmtCmd() *cobra.Command {
	var (
		fmtOverwrite bool
		fmtDiff      bool
		fmtList      bool
		fmtCompact   bool
		fmtIndent    int
		fmtDrop      bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [file|pattern ...]",
		Short: "Reformat WAML documents",
		Long: `Reformat WAML documents and print the result to stdout.

Arguments may be files or glob patterns such as "conf/**/*.waml". Files
ending in .br are brotli compressed. With no arguments, reads stdin.

Use -w to overwrite files in place, -d to print a diff instead, and -l to
list the files whose formatting differs.

Comments cannot be kept, so documents containing them are reported as
errors and left alone unless --drop-comments is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if fmtOverwrite {
					return fmt.Errorf("-w requires a file argument")
				}
				args = []string{stdinName}
			}
			paths, err := expandArgs(args)
			if err != nil {
				return err
			}

			opts := []waml.Option{waml.Indent(fmtIndent)}
			if fmtCompact {
				opts = []waml.Option{waml.Whitespace(true)}
			}
			if !fmtDrop {
				opts = append(opts, waml.RejectComments())
			}

			stdin := cmd.InOrStdin()
			results, err := eachFile(cmd.Context(), paths, func(path string) ([]byte, error) {
				src, err := readSource(stdin, path)
				if err != nil {
					return nil, err
				}
				formatted, err := waml.Format(src, opts...)
				if stderrors.Is(err, waml.ErrComment) {
					return nil, fmt.Errorf("%w (use --drop-comments to format anyway)", err)
				}
				if err != nil {
					return nil, err
				}
				formatted = append(formatted, '\n')
				changed := !bytes.Equal(src, formatted)

				var out bytes.Buffer
				switch {
				case fmtList:
					if changed {
						fmt.Fprintln(&out, path)
					}
				case fmtDiff:
					if changed {
						d, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
							A:        difflib.SplitLines(string(src)),
							B:        difflib.SplitLines(string(formatted)),
							FromFile: path,
							ToFile:   path + " (formatted)",
							Context:  3,
						})
						if err != nil {
							return nil, err
						}
						out.WriteString(d)
					}
				}
				if fmtOverwrite {
					if changed {
						return out.Bytes(), writeSource(path, formatted)
					}
					return out.Bytes(), nil
				}
				if !fmtList && !fmtDiff {
					out.Write(formatted)
				}
				return out.Bytes(), nil
			})
			if err != nil {
				return err
			}
			return report(cmd, paths, results)
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite files in place")
	cmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "print a unified diff of the changes")
	cmd.Flags().BoolVarP(&fmtList, "list", "l", false, "list files whose formatting differs")
	cmd.Flags().BoolVar(&fmtCompact, "compact", false, "write each document on a single line")
	cmd.Flags().IntVar(&fmtIndent, "indent", 2, "number of spaces per indentation level")
	cmd.Flags().BoolVar(&fmtDrop, "drop-comments", false, "format documents with comments, removing the comments")

	return cmd
}

// report prints the output of each file in order, then the failures, and
// returns an error if any file failed.
func report(cmd *cobra.Command, paths []string, results []result) error {
	failed := 0
	for i, r := range results {
		cmd.OutOrStdout().Write(r.out)
		if r.err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", paths[i], r.err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}
