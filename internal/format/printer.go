package format

import (
	"fmt"
	"io"
)

// The Printer interface can be used to output some structured data.
//
// Indent() increases the indentation level of the following lines
// Dedent() decreases the indentation level of the following lines
// NewLine() starts a new line at the current indentation level
// PrintBytes() outputs bytes at the current position
//
// The methods do not return an error because it is assumed to be an
// exceptional case that outputting results in an error and the only sensible
// outcome is to abandon the document being written.  Instead,
// implementations are expected to panic with a *PrinterError when they
// encounter an error.  A user of the Printer interface can use
//
//	func printingFunction(p Printer) (err error) {
//	    defer CatchPrinterError(&err)
//	    return doSomePrinting(printer)
//	}
//
// to capture such errors.
type Printer interface {
	Indent()
	Dedent()
	NewLine()
	PrintBytes([]byte)
}

// CatchPrinterError can be used to capture panics caused by a Printer because
// of an error encountered while attempting to send output.  See the Printer
// interface documentation for details.
func CatchPrinterError(err *error) {
	if r := recover(); r != nil {
		perr, ok := r.(*PrinterError)
		if ok {
			*err = perr
		} else {
			panic(r)
		}
	}
}

// A PrinterError contains an error that occurred while a Printer implementation
// was sending some output.
type PrinterError struct {
	Err error
}

func (e *PrinterError) Error() string {
	return fmt.Sprintf("printer error: %s", e.Err)
}

func (e *PrinterError) Unwrap() error {
	return e.Err
}

// DefaultPrinter implements a Printer which uses an io.Writer to send output,
// using IndentSize spaces for each indent level.
// If IndentSize is negative, then NewLine() does nothing so all the output
// is on one single line.
// If IndentSize is 0, then there is no indentation but there are still new
// lines.
// LineSeparator is written by NewLine(), it defaults to "\n".
type DefaultPrinter struct {
	io.Writer
	IndentSize    int
	LineSeparator string
	indentLevel   int
}

var _ Printer = &DefaultPrinter{}

// NewLine outputs the line separator followed by a number of spaces
// corresponding to the current indentation level.
func (p *DefaultPrinter) NewLine() {
	if p.IndentSize < 0 {
		return
	}
	sep := p.LineSeparator
	if sep == "" {
		sep = "\n"
	}
	buf := make([]byte, 0, len(sep)+p.IndentSize*p.indentLevel)
	buf = append(buf, sep...)
	for i := p.IndentSize * p.indentLevel; i > 0; i-- {
		buf = append(buf, ' ')
	}
	p.PrintBytes(buf)
}

// Indent increments the indentation level.  It does not start a new line,
// the caller decides when to break lines.
func (p *DefaultPrinter) Indent() {
	p.indentLevel++
}

// Dedent decrements the indentation level.
func (p *DefaultPrinter) Dedent() {
	if p.indentLevel > 0 {
		p.indentLevel--
	}
}

// PrintBytes sends the given bytes verbatim to the printer's writer.
func (p *DefaultPrinter) PrintBytes(b []byte) {
	_, err := p.Write(b)
	if err != nil {
		panic(wrapError(err))
	}
}

func wrapError(err error) *PrinterError {
	return &PrinterError{Err: err}
}
