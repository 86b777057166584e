// Package stream moves WAML documents over transports that deliver data in
// pieces. Documents are parsed as the pieces arrive and written in
// bounded chunks, never held whole in memory.
package stream

import (
	"context"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/tliron/commonlog"

	"github.com/KimNorgaard/go-waml"
	"github.com/KimNorgaard/go-waml/form"
)

var log = commonlog.GetLogger("waml.stream")

// DefaultChunkSize is the number of bytes read from a reader at a time.
const DefaultChunkSize = 4096

// Read parses one document from r with form f. It stops early when ctx is
// done.
func Read(ctx context.Context, r io.Reader, f form.Form, opts ...waml.Option) (any, error) {
	p, err := waml.NewParser(f, opts...)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, DefaultChunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if err := p.Feed(buf[:n]); err != nil {
				log.Debugf("parse failed after %d bytes: %s", total, err)
				return nil, err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, rerr
		}
	}
	log.Debugf("read document of %d bytes", total)
	return p.Close()
}

// Write writes v, described by f, to w.
func Write(ctx context.Context, w io.Writer, v any, f form.Form, opts ...waml.Option) error {
	wr, err := waml.NewWriter(v, f, opts...)
	if err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := wr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
}

// ReadBrotli parses one brotli compressed document from r.
func ReadBrotli(ctx context.Context, r io.Reader, f form.Form, opts ...waml.Option) (any, error) {
	return Read(ctx, brotli.NewReader(r), f, opts...)
}

// WriteBrotli writes v compressed with brotli to w.
func WriteBrotli(ctx context.Context, w io.Writer, v any, f form.Form, opts ...waml.Option) error {
	bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
	if err := Write(ctx, bw, v, f, opts...); err != nil {
		bw.Close()
		return err
	}
	return bw.Close()
}
