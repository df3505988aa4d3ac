package xml

import (
	"bufio"
	"bytes"
	stdxml "encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arnodel/plinject/internal/debug"
	"github.com/arnodel/plinject/token"
	"golang.org/x/net/html/charset"
)

// ErrEncoding is wrapped by the error of a Decoder whose input declares a
// character encoding it cannot convert to UTF-8.  Unlike malformed input, this
// means nothing past the header could be read.
var ErrEncoding = errors.New("unsupported character encoding")

var byteOrderMark = []byte("\ufeff")

// A Decoder reads markup input and streams it as tokens, one parse step per
// call to Next.
//
// The first token is always a *token.StartDocument, synthesized when the
// input has no <?xml ...?> header.  DOCTYPE directives are consumed and never
// streamed.  When the input stops being well-formed the stream simply ends
// there; the error is available from Err.
//
// Input in an encoding other than UTF-8 is converted, so the tokens are always
// UTF-8 and the Encoding of the StartDocument says so.  A leading byte order
// mark is skipped, and a header that is not the first token is dropped.
type Decoder struct {
	dec        *stdxml.Decoder
	started    bool
	pending    token.Token
	err        error
	charsetErr error
}

var _ token.ReadStream = &Decoder{}

// NewDecoder sets up a new Decoder instance to read from the given input.
func NewDecoder(in io.Reader) *Decoder {
	r := bufio.NewReader(in)
	if bom, err := r.Peek(len(byteOrderMark)); err == nil && bytes.Equal(bom, byteOrderMark) {
		r.Discard(len(bom))
	}
	d := &Decoder{dec: stdxml.NewDecoder(r)}
	d.dec.CharsetReader = d.charsetReader
	return d
}

func (d *Decoder) charsetReader(label string, input io.Reader) (io.Reader, error) {
	r, err := charset.NewReaderLabel(label, input)
	if err != nil {
		d.charsetErr = fmt.Errorf("%w %q: %w", ErrEncoding, label, err)
		return nil, d.charsetErr
	}
	return r, nil
}

// Next returns the next token in the input, or nil when there are no more
// tokens.
func (d *Decoder) Next() token.Token {
	if d.pending != nil {
		tok := d.pending
		d.pending = nil
		return tok
	}
	tok := d.read()
	if !d.started {
		d.started = true
		if _, ok := tok.(*token.StartDocument); !ok {
			d.pending = tok
			return &token.StartDocument{Version: "1.0", Encoding: "UTF-8", Implicit: true}
		}
		return tok
	}
	for {
		if _, ok := tok.(*token.StartDocument); !ok {
			return tok
		}
		debug.Printf("xml: dropping misplaced header at offset %d", d.dec.InputOffset())
		tok = d.read()
	}
}

// Err returns the error that ended the stream early, if any.  Reaching the
// end of the input is not an error.  The error wraps ErrEncoding when the
// declared encoding is not supported.
func (d *Decoder) Err() error {
	if d.charsetErr != nil {
		return d.charsetErr
	}
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

func (d *Decoder) read() token.Token {
	for d.err == nil {
		raw, err := d.dec.RawToken()
		if err != nil {
			if err != io.EOF {
				debug.Printf("xml: dropping input from offset %d: %s", d.dec.InputOffset(), err)
			}
			d.err = err
			return nil
		}
		if tok := convert(raw); tok != nil {
			return tok
		}
	}
	return nil
}

// convert copies raw into a token.  The bytes of a raw token are only valid
// until the next call to RawToken, so they are cloned.
func convert(raw stdxml.Token) token.Token {
	switch t := raw.(type) {
	case stdxml.StartElement:
		start := &token.StartElement{Name: convertName(t.Name)}
		for _, a := range t.Attr {
			start.Attr = append(start.Attr, token.Attr{Name: convertName(a.Name), Value: a.Value})
		}
		return start
	case stdxml.EndElement:
		return &token.EndElement{Name: convertName(t.Name)}
	case stdxml.CharData:
		return &token.CharData{Bytes: bytes.Clone(t)}
	case stdxml.Comment:
		return &token.Comment{Bytes: bytes.Clone(t)}
	case stdxml.ProcInst:
		if t.Target == "xml" {
			return &token.StartDocument{
				Version:    procInstParam("version", t.Inst),
				Encoding:   decodedEncoding(procInstParam("encoding", t.Inst)),
				Standalone: procInstParam("standalone", t.Inst),
			}
		}
		return &token.ProcInst{Target: t.Target, Inst: bytes.Clone(t.Inst)}
	case stdxml.Directive:
		if isDoctype(t) {
			debug.Printf("xml: skipping directive %q", t)
			return nil
		}
		return &token.Directive{Bytes: bytes.Clone(t)}
	default:
		return nil
	}
}

// decodedEncoding is the encoding of the tokens read from a document declaring
// enc.
func decodedEncoding(enc string) string {
	if enc == "" || strings.EqualFold(enc, "UTF-8") {
		return enc
	}
	return "UTF-8"
}

func convertName(n stdxml.Name) token.Name {
	return token.Name{Prefix: n.Space, Local: n.Local}
}

var doctypeBytes = []byte("DOCTYPE")

func isDoctype(d stdxml.Directive) bool {
	return bytes.HasPrefix(bytes.TrimSpace(d), doctypeBytes)
}

// procInstParam returns the value of a pseudo-attribute like version="1.0"
// in the header instruction, or "" if it is absent.
func procInstParam(param string, inst []byte) string {
	s := string(inst)
	for {
		i := strings.Index(s, param)
		if i < 0 {
			return ""
		}
		wordStart := i == 0 || isSpace(s[i-1])
		s = strings.TrimLeft(s[i+len(param):], " \t\r\n")
		if !wordStart || !strings.HasPrefix(s, "=") {
			continue
		}
		s = strings.TrimLeft(s[1:], " \t\r\n")
		if s == "" || (s[0] != '"' && s[0] != '\'') {
			return ""
		}
		end := strings.IndexByte(s[1:], s[0])
		if end < 0 {
			return ""
		}
		return s[1 : end+1]
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
