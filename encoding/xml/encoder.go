package xml

import (
	"bytes"
	stdxml "encoding/xml"
	"strings"

	"github.com/arnodel/plinject/internal/format"
	"github.com/arnodel/plinject/token"
)

// Encoder writes a token stream as indented markup through a Printer.
//
// Elements with element children get one child per line, elements that only
// contain text stay on one line and empty elements are written self-closing.
// Whitespace-only text between elements is dropped since the Encoder does its
// own indentation, but it is kept when it is the whole content of an element.
type Encoder struct {
	printer format.Printer

	started bool
	openTag bool
	stack   []*openElement
	space   []byte
}

type openElement struct {
	name        token.Name
	hasChildren bool
	hasText     bool
}

var _ token.WriteStream = &Encoder{}

// NewEncoder returns an Encoder printing to p.
func NewEncoder(p format.Printer) *Encoder {
	return &Encoder{printer: p}
}

// Write outputs tok, returning a *format.PrinterError if the underlying
// printer fails.
func (e *Encoder) Write(tok token.Token) (err error) {
	defer format.CatchPrinterError(&err)
	e.Put(tok)
	return nil
}

// WriteRaw outputs b verbatim on a new line, outside of the structure of the
// document.  It is the caller's responsibility to make sure the result is
// still valid markup.
func (e *Encoder) WriteRaw(b []byte) (err error) {
	defer format.CatchPrinterError(&err)
	e.space = nil
	e.closeOpenTag()
	e.markChild()
	e.startLine()
	e.printer.PrintBytes(b)
	return nil
}

// Close ends the document with a new line.
func (e *Encoder) Close() (err error) {
	defer format.CatchPrinterError(&err)
	e.closeOpenTag()
	if e.started {
		e.printer.NewLine()
	}
	return nil
}

// Put outputs tok.  It panics with a *format.PrinterError if the underlying
// printer fails, use Write to get an error instead.
func (e *Encoder) Put(tok token.Token) {
	switch t := tok.(type) {
	case *token.StartDocument:
		e.writeHeader(t)
	case *token.StartElement:
		e.writeStart(t)
	case *token.EndElement:
		e.writeEnd(t)
	case *token.CharData:
		e.writeText(t)
	case *token.Comment:
		e.writeLine("<!--", t.Bytes, "-->")
	case *token.ProcInst:
		inst := t.Inst
		if len(inst) > 0 {
			inst = append([]byte{' '}, inst...)
		}
		e.writeLine("<?"+t.Target, inst, "?>")
	case *token.Directive:
		e.writeLine("<!", t.Bytes, ">")
	}
}

func (e *Encoder) writeHeader(t *token.StartDocument) {
	version := t.Version
	if version == "" {
		version = "1.0"
	}
	encoding := t.Encoding
	if encoding == "" {
		encoding = "UTF-8"
	}
	var b strings.Builder
	b.WriteString(`<?xml version="`)
	b.WriteString(version)
	b.WriteString(`" encoding="`)
	b.WriteString(encoding)
	b.WriteByte('"')
	if t.Standalone != "" {
		b.WriteString(` standalone="`)
		b.WriteString(t.Standalone)
		b.WriteByte('"')
	}
	b.WriteString("?>")
	e.writeLine("", []byte(b.String()), "")
}

func (e *Encoder) writeStart(t *token.StartElement) {
	e.space = nil
	e.closeOpenTag()
	e.markChild()
	e.startLine()
	var b bytes.Buffer
	b.WriteByte('<')
	b.WriteString(t.Name.String())
	for _, a := range t.Attr {
		b.WriteByte(' ')
		b.WriteString(a.Name.String())
		b.WriteString(`="`)
		stdxml.EscapeText(&b, []byte(a.Value))
		b.WriteByte('"')
	}
	e.printer.PrintBytes(b.Bytes())
	e.openTag = true
	e.stack = append(e.stack, &openElement{name: t.Name})
	e.printer.Indent()
}

func (e *Encoder) writeEnd(t *token.EndElement) {
	var top *openElement
	if n := len(e.stack); n > 0 {
		top = e.stack[n-1]
		e.stack = e.stack[:n-1]
		e.printer.Dedent()
	}
	if e.space != nil {
		e.closeOpenTag()
		e.printer.PrintBytes([]byte(escapeText(e.space)))
		e.space = nil
	} else if e.openTag {
		e.openTag = false
		e.printer.PrintBytes([]byte("/>"))
		return
	}
	if top == nil || top.hasChildren {
		e.startLine()
	}
	e.printer.PrintBytes([]byte("</" + t.Name.String() + ">"))
}

func (e *Encoder) writeText(t *token.CharData) {
	top := e.top()
	if t.IsSpace() && (top == nil || !top.hasText) {
		if top != nil && !top.hasChildren {
			e.space = append(e.space, t.Bytes...)
		}
		return
	}
	e.closeOpenTag()
	if top != nil {
		top.hasText = true
	}
	text := append(e.space, t.Bytes...)
	e.space = nil
	e.printer.PrintBytes([]byte(escapeText(text)))
}

func (e *Encoder) writeLine(prefix string, body []byte, suffix string) {
	e.space = nil
	e.closeOpenTag()
	e.markChild()
	e.startLine()
	e.printer.PrintBytes([]byte(prefix))
	e.printer.PrintBytes(body)
	e.printer.PrintBytes([]byte(suffix))
}

func (e *Encoder) top() *openElement {
	if n := len(e.stack); n > 0 {
		return e.stack[n-1]
	}
	return nil
}

func (e *Encoder) markChild() {
	if top := e.top(); top != nil {
		top.hasChildren = true
	}
}

func (e *Encoder) closeOpenTag() {
	if e.openTag {
		e.openTag = false
		e.printer.PrintBytes([]byte{'>'})
	}
}

func (e *Encoder) startLine() {
	if e.started {
		e.printer.NewLine()
	}
	e.started = true
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\r", "&#xD;",
)

// escapeText escapes character data the way property list writers do: only
// the characters that would otherwise be read back differently.
func escapeText(b []byte) string {
	return textEscaper.Replace(string(b))
}
