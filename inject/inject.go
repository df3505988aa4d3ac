// Package inject splices the contents of a markup fragment into a property
// list.
//
// The base document is copied token by token into an in-memory output.  The
// tokens of the injected fragment are written just before the first closing
// tag of the marker element (dict by default), wherever it is nested, and the
// document type declaration line of the base document is copied verbatim
// after the document header.
package inject

import (
	"bufio"
	"errors"
	"io"

	"github.com/arnodel/plinject/encoding/xml"
	"github.com/arnodel/plinject/internal/debug"
	"github.com/arnodel/plinject/internal/format"
	"github.com/arnodel/plinject/token"
)

// An Injector writes the result of splicing a fragment into a base document to
// a destination writer.
type Injector struct {
	dst  io.Writer
	out  *bufio.Writer
	opts Options

	declaration string
	spliced     bool
}

// New returns an Injector writing to dst.  No output is written until Inject
// is called.
func New(dst io.Writer, opts Options) *Injector {
	opts = normalizeOptions(opts)
	return &Injector{dst: dst, out: bufio.NewWriter(dst), opts: opts}
}

// Inject copies base to the output, inserting the tokens of injection before
// the first closing tag of the marker element.  If the marker element is never
// closed, base is copied unchanged and no error is returned.
//
// Input that is not well-formed ends the copy of that input silently.  Only
// failures to write the output or to decode an input's character encoding
// (see CopyError) and failures to rewind base (see ErrRewind) are reported.
func (i *Injector) Inject(base io.ReadSeeker, injection io.Reader) error {
	decl, err := ExtractDeclaration(base, i.opts.DeclarationMarker)
	if err != nil {
		return err
	}
	i.declaration = decl
	i.spliced = false
	i.out.Reset(i.dst)

	enc := xml.NewEncoder(&format.DefaultPrinter{
		Writer:        i.out,
		IndentSize:    i.opts.Indent,
		LineSeparator: "\n",
	})
	spliced, declared := false, false
	source := xml.NewDecoder(base)
	for tok := source.Next(); tok != nil; tok = source.Next() {
		if !spliced && token.IsEndOf(tok, i.opts.Marker) {
			spliced = true
			if err := i.injectHere(enc, injection); err != nil {
				return err
			}
		}
		if err := enc.Write(tok); err != nil {
			return &CopyError{Phase: PhaseBase, Err: err}
		}
		if _, ok := tok.(*token.StartDocument); ok && decl != "" && !declared {
			declared = true
			if err := enc.WriteRaw([]byte(decl)); err != nil {
				return &CopyError{Phase: PhaseDeclaration, Err: err}
			}
		}
	}
	if err := source.Err(); errors.Is(err, xml.ErrEncoding) {
		return &CopyError{Phase: PhaseBase, Err: err}
	} else if err != nil {
		debug.Printf("inject: source file truncated: %s", err)
	}
	if err := enc.Close(); err != nil {
		return &CopyError{Phase: PhaseFlush, Err: err}
	}
	if err := i.out.Flush(); err != nil {
		return &CopyError{Phase: PhaseFlush, Err: err}
	}
	i.spliced = spliced
	return nil
}

// injectHere copies the injection fragment, without its document header.
func (i *Injector) injectHere(enc *xml.Encoder, injection io.Reader) (err error) {
	defer func() {
		if err != nil {
			err = &CopyError{Phase: PhaseInjection, Err: err}
		}
	}()
	defer format.CatchPrinterError(&err)
	fragment := xml.NewDecoder(injection)
	n := token.Copy(enc, withoutHeader{fragment})
	debug.Printf("inject: copied %d tokens from the injection file", n)
	if err := fragment.Err(); errors.Is(err, xml.ErrEncoding) {
		return err
	} else if err != nil {
		debug.Printf("inject: injection file truncated: %s", err)
	}
	return nil
}

// withoutHeader skips the document header of a token stream.
type withoutHeader struct {
	token.ReadStream
}

func (r withoutHeader) Next() token.Token {
	tok := r.ReadStream.Next()
	if _, ok := tok.(*token.StartDocument); ok {
		return r.ReadStream.Next()
	}
	return tok
}

// Buffer returns the output written so far when the destination keeps it in
// memory, i.e. when it has a Bytes() []byte method like *bytes.Buffer.
// Otherwise it returns nil.
func (i *Injector) Buffer() []byte {
	if b, ok := i.dst.(interface{ Bytes() []byte }); ok {
		return b.Bytes()
	}
	return nil
}

// Declaration returns the declaration line copied by the last call to Inject,
// or "" if there was none.
func (i *Injector) Declaration() string {
	return i.declaration
}

// Spliced reports whether the last successful call to Inject found the marker
// element.
func (i *Injector) Spliced() bool {
	return i.spliced
}
