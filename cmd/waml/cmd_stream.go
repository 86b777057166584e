package main

import (
	"fmt"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/ast"
	"github.com/KimNorgaard/go-waml/stream"
)

func newStreamCmd() *cobra.Command {
	var (
		streamSend  string
		streamChunk int
	)

	cmd := &cobra.Command{
		Use:   "stream <url>",
		Short: "Receive or send a WAML document over a WebSocket",
		Long: `Connect to a WebSocket server and receive one WAML document,
printed formatted to stdout. The document may arrive split over any number
of messages and ends with an empty message or a normal closure.

With --send, parse the given file (or stdin for "-") and send it instead,
in messages of at most --chunk bytes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, _, err := websocket.Dial(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer conn.CloseNow()

			if streamSend != "" {
				src, err := readSource(cmd.InOrStdin(), streamSend)
				if err != nil {
					return err
				}
				v, err := waml.Parse(src)
				if err != nil {
					return fmt.Errorf("%s: %w", streamSend, err)
				}
				if err := stream.WriteWebSocket(ctx, conn, v, ast.Form{}, waml.BufferSize(streamChunk)); err != nil {
					return err
				}
				return conn.Close(websocket.StatusNormalClosure, "")
			}

			v, err := stream.ReadWebSocket(ctx, conn, ast.Form{})
			if err != nil {
				return err
			}
			conn.Close(websocket.StatusNormalClosure, "")
			err = stream.Write(ctx, cmd.OutOrStdout(), v, ast.Form{}, waml.Indent(2))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&streamSend, "send", "", "send this file instead of receiving")
	cmd.Flags().IntVar(&streamChunk, "chunk", stream.DefaultChunkSize, "maximum message size when sending")

	return cmd
}
