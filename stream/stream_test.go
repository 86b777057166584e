package stream_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/ast"
	"github.com/KimNorgaard/go-waml/stream"
)

const document = `@doc{title: "streams", items: [1, 2, 3], body: <<see @b{this}>>}`

func parsed(t *testing.T) ast.Value {
	t.Helper()
	v, err := waml.ParseString(document)
	require.NoError(t, err)
	return v
}

func TestRead(t *testing.T) {
	expected := parsed(t)

	v, err := stream.Read(context.Background(), iotest.OneByteReader(strings.NewReader(document)), ast.Form{})
	require.NoError(t, err)
	require.True(t, ast.Equal(expected, v.(ast.Value)))

	_, err = stream.Read(context.Background(), iotest.DataErrReader(strings.NewReader("[1, 2")), ast.Form{})
	require.ErrorContains(t, err, "expected ']', but found end of input")

	_, err = stream.Read(context.Background(), iotest.ErrReader(iotest.ErrTimeout), ast.Form{})
	require.ErrorIs(t, err, iotest.ErrTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = stream.Read(ctx, strings.NewReader(document), ast.Form{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := stream.Write(context.Background(), &buf, parsed(t), ast.Form{}, waml.BufferSize(5))
	require.NoError(t, err)
	require.Equal(t, document, buf.String())
}

func TestBrotliRoundTrip(t *testing.T) {
	expected := parsed(t)

	var buf bytes.Buffer
	require.NoError(t, stream.WriteBrotli(context.Background(), &buf, expected, ast.Form{}, waml.Indent(2)))

	v, err := stream.ReadBrotli(context.Background(), &buf, ast.Form{})
	require.NoError(t, err)
	require.True(t, ast.Equal(expected, v.(ast.Value)), ast.Diff(expected, v.(ast.Value)))
}

func serve(t *testing.T, handler func(ctx context.Context, conn *websocket.Conn)) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		handler(r.Context(), conn)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func TestWebSocket(t *testing.T) {
	expected := parsed(t)

	conn := serve(t, func(ctx context.Context, conn *websocket.Conn) {
		if err := stream.WriteWebSocket(ctx, conn, expected, ast.Form{}, waml.BufferSize(3)); err != nil {
			return
		}
		// Wait for the client to hang up.
		conn.Read(ctx)
	})

	v, err := stream.ReadWebSocket(context.Background(), conn, ast.Form{})
	require.NoError(t, err)
	require.True(t, ast.Equal(expected, v.(ast.Value)), ast.Diff(expected, v.(ast.Value)))
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestWebSocketClosure(t *testing.T) {
	conn := serve(t, func(ctx context.Context, conn *websocket.Conn) {
		for _, chunk := range []string{"[1,", " 2", "]"} {
			if err := conn.Write(ctx, websocket.MessageText, []byte(chunk)); err != nil {
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	})

	v, err := stream.ReadWebSocket(context.Background(), conn, ast.Form{})
	require.NoError(t, err)
	require.True(t, ast.Equal(ast.NewArray(ast.NewInt(1), ast.NewInt(2)), v.(ast.Value)))
}

func TestWebSocketInvalid(t *testing.T) {
	conn := serve(t, func(ctx context.Context, conn *websocket.Conn) {
		conn.Write(ctx, websocket.MessageText, []byte("[1 2]"))
		conn.Read(ctx)
	})

	_, err := stream.ReadWebSocket(context.Background(), conn, ast.Form{})
	require.ErrorContains(t, err, "expected ',' or ']', but found '2'")
}
