package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/internal/convert"
)

func newConvertCmd() *cobra.Command {
	var (
		convertFrom   string
		convertTo     string
		convertIndent int
	)

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert between WAML and YAML",
		Long: `Convert a WAML document to YAML, or a YAML document to WAML with
--from yaml (or --to waml).

WAML values YAML has no notion of, such as tuples, markup and attributes,
are written with local tags (!tuple, !markup, !attributed, !ident) so that
converting back restores them.

With no file argument, reads stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stdinName
			if len(args) == 1 {
				path = args[0]
			}
			src, err := readSource(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			from, to := convertFrom, convertTo
			switch {
			case from == "" && to == "":
				from, to = "waml", "yaml"
			case from == "":
				from = other(to)
			case to == "":
				to = other(from)
			}

			var out []byte
			switch {
			case from == "waml" && to == "yaml":
				out, err = toYAML(src, convertIndent)
			case from == "yaml" && to == "waml":
				out, err = toWAML(src, convertIndent)
			default:
				return fmt.Errorf("cannot convert from %q to %q, expected waml and yaml", from, to)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&convertFrom, "from", "", "input format, waml or yaml")
	cmd.Flags().StringVar(&convertTo, "to", "", "output format, yaml or waml")
	cmd.Flags().IntVar(&convertIndent, "indent", 2, "number of spaces per indentation level")

	return cmd
}

func other(format string) string {
	if format == "yaml" {
		return "waml"
	}
	return "yaml"
}

func toYAML(src []byte, indent int) ([]byte, error) {
	v, err := waml.Parse(src)
	if err != nil {
		return nil, err
	}
	n, err := convert.ToYAML(v)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(indent)
	if err := enc.Encode(n); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func toWAML(src []byte, indent int) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, err
	}
	v, err := convert.FromYAML(&doc)
	if err != nil {
		return nil, err
	}
	out, err := waml.Marshal(v, waml.Indent(indent))
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
