package stream

import (
	"context"
	"io"

	"github.com/coder/websocket"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/form"
)

// ReadWebSocket parses one document sent over conn. Every message carries
// the next chunk of the document and an empty message ends it. A normal
// closure of the connection also ends the document.
func ReadWebSocket(ctx context.Context, conn *websocket.Conn, f form.Form, opts ...waml.Option) (any, error) {
	p, err := waml.NewParser(f, opts...)
	if err != nil {
		return nil, err
	}
	messages := 0
	for {
		_, data, err := conn.Read(ctx)
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			break
		}
		messages++
		if err := p.Feed(data); err != nil {
			log.Debugf("parse failed in message %d: %s", messages, err)
			return nil, err
		}
	}
	log.Debugf("read document in %d messages", messages)
	return p.Close()
}

// WriteWebSocket sends v, described by f, over conn as text messages of at
// most the writer's buffer size, followed by an empty message.
func WriteWebSocket(ctx context.Context, conn *websocket.Conn, v any, f form.Form, opts ...waml.Option) error {
	wr, err := waml.NewWriter(v, f, opts...)
	if err != nil {
		return err
	}
	for {
		b, err := wr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
			return err
		}
	}
	return conn.Write(ctx, websocket.MessageText, nil)
}
