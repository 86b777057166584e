package waml

import (
	stderrors "errors"
	"io"

	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
	"github.com/KimNorgaard/go-waml/internal/formatter"
	"github.com/KimNorgaard/go-waml/internal/lexer"
	"github.com/KimNorgaard/go-waml/internal/parser"
)

// Status is the state of an incremental Parser or Writer.
type Status uint8

const (
	// StatusCont means more input can be fed or more output taken.
	StatusCont Status = iota
	// StatusDone means the parse or write finished.
	StatusDone
	// StatusError means the parse or write failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return "cont"
}

var errFinished = stderrors.New("waml: parser already finished")

// Parser parses a document fed to it in chunks of any size. Chunks may end
// anywhere, including inside a multi-byte character; the result is the
// same as for the whole document at once.
type Parser struct {
	in *lexer.Input
	r  parser.Result
}

// NewParser returns a parser building values of form f.
func NewParser(f form.Form, opts ...Option) (*Parser, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Parser{in: lexer.New(), r: parser.Document(f, o.parser())}, nil
}

// Feed parses chunk. It returns the parse error once the input is known to
// be invalid. The parser does not keep chunk.
func (p *Parser) Feed(chunk []byte) error {
	switch p.r.Status() {
	case parser.StatusError:
		return p.r.Err()
	case parser.StatusDone:
		return errFinished
	}
	p.in.Feed(chunk, false)
	p.r = p.r.Step(p.in)
	return p.r.Err()
}

// Close marks the end of input and returns the parsed value.
func (p *Parser) Close() (any, error) {
	if p.r.Status() == parser.StatusCont {
		p.in.Feed(nil, true)
		p.r = p.r.Step(p.in)
	}
	return p.r.Value(), p.r.Err()
}

// Status reports whether the parser can take more input.
func (p *Parser) Status() Status {
	return Status(p.r.Status())
}

// Position returns the position of the next character to be read.
func (p *Parser) Position() errors.Position {
	return p.in.Position()
}

// Writer writes a value in chunks of bounded size.
type Writer struct {
	out *lexer.Output
	r   formatter.Result
}

// NewWriter returns a writer for v described by form f. Chunks are at most
// a few bytes longer than the buffer size.
func NewWriter(v any, f form.Form, opts ...Option) (*Writer, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Writer{
		out: lexer.NewOutput(o.bufferSize),
		r:   formatter.Value(f, v, o.formatter()),
	}, nil
}

// Next returns the next chunk of output, or io.EOF when everything was
// written. The chunk is only valid until the next call.
func (w *Writer) Next() ([]byte, error) {
	switch w.r.Status() {
	case formatter.StatusError:
		return nil, w.r.Err()
	case formatter.StatusDone:
		return nil, io.EOF
	}
	w.r = w.r.Step(w.out)
	b := w.out.Take()
	if err := w.r.Err(); err != nil {
		return nil, err
	}
	if len(b) == 0 && w.r.Status() == formatter.StatusDone {
		return nil, io.EOF
	}
	return b, nil
}

// Status reports whether more output remains.
func (w *Writer) Status() Status {
	return Status(w.r.Status())
}

// WriteTo writes the remaining output to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	var total int64
	for {
		b, err := w.Next()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		n, err := dst.Write(b)
		total += int64(n)
		if err != nil {
			w.out.Fail(err)
			return total, err
		}
	}
}
