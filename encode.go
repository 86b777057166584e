package waml

import (
	"fmt"
	"io"
)

// Encoder writes WAML values to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the WAML encoding of v to the stream. Output is produced in
// chunks of BufferSize bytes; a failed write of w stops the encoding.
func (e *Encoder) Encode(v any) error {
	if e.w == nil {
		return fmt.Errorf("waml: Encode(nil writer)")
	}
	o, err := newOptions(e.opts)
	if err != nil {
		return err
	}
	f, err := o.formOfValue(v)
	if err != nil {
		return err
	}
	wr, err := NewWriter(v, f, e.opts...)
	if err != nil {
		return err
	}
	_, err = wr.WriteTo(e.w)
	return err
}
