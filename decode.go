package waml

import (
	"fmt"
	"io"
)

// Decoder reads a WAML document from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder returns a new decoder that reads from r.
//
// The input is read in chunks of BufferSize bytes and fed to an
// incremental parser as it arrives, so the document is never held in
// memory as a whole. It is the caller's responsibility to call Close on r
// if required.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads the document from its input and stores it in the value
// pointed to by v.
//
// See the documentation for Unmarshal for how the form of v is found.
func (d *Decoder) Decode(v any) error {
	if d.r == nil {
		return fmt.Errorf("waml: Decode(nil reader)")
	}
	o, err := newOptions(d.opts)
	if err != nil {
		return err
	}
	rv, f, err := o.target(v)
	if err != nil {
		return err
	}
	p, err := NewParser(f, d.opts...)
	if err != nil {
		return err
	}
	if err := feed(p, d.r, o.bufferSize); err != nil {
		return err
	}
	result, err := p.Close()
	if err != nil {
		return err
	}
	return store(rv, result)
}

// feed copies r into p until r is exhausted or p fails.
func feed(p *Parser, r io.Reader, size int) error {
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if perr := p.Feed(buf[:n]); perr != nil {
				return perr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
