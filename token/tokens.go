package token

import (
	"fmt"
	"strings"
)

// A Token is an item in a stream that encodes a markup document.  For example
// the property list
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<plist version="1.0">
//	  <dict>
//	    <key>CFBundleName</key>
//	    <string>Example</string>
//	  </dict>
//	</plist>
//
// would be represented by the stream of Token (in pseudocode for clarity):
//
//	<?xml ...?>               -> StartDocument
//	<plist version="1.0">     -> StartElement("plist", version="1.0")
//	<dict>                    -> StartElement("dict")
//	<key>                     -> StartElement("key")
//	CFBundleName              -> CharData("CFBundleName")
//	</key>                    -> EndElement("key")
//	...
//	</dict>                   -> EndElement("dict")
//	</plist>                  -> EndElement("plist")
//
// Whitespace between elements is kept as CharData tokens; it is up to the
// consumer of the stream to decide what to do with it.
type Token interface {
	fmt.Stringer
}

// Name is the name of an element or attribute.  The prefix is kept verbatim
// from the input (it is not resolved to a namespace URL) so that a document
// can be written back with the same prefixes.
type Name struct {
	Prefix string
	Local  string
}

func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Attr is an attribute of a StartElement.
type Attr struct {
	Name  Name
	Value string
}

// StartDocument is the first token of every document.  When the input has
// no <?xml ...?> header a synthetic one is produced with Implicit set.
type StartDocument struct {
	Version    string
	Encoding   string
	Standalone string
	Implicit   bool
}

func (s *StartDocument) String() string {
	return fmt.Sprintf("StartDocument(%s, %s)", s.Version, s.Encoding)
}

var _ Token = &StartDocument{}

// StartElement represents an opening tag.
type StartElement struct {
	Name Name
	Attr []Attr
}

func (s *StartElement) String() string {
	var b strings.Builder
	b.WriteString("StartElement(")
	b.WriteString(s.Name.String())
	for _, a := range s.Attr {
		fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
	}
	b.WriteByte(')')
	return b.String()
}

var _ Token = &StartElement{}

// EndElement represents a closing tag.  Empty elements like <true/> are
// represented as a StartElement immediately followed by an EndElement.
type EndElement struct {
	Name Name
}

func (e *EndElement) String() string {
	return "EndElement(" + e.Name.String() + ")"
}

var _ Token = &EndElement{}

// CharData is text, with entities already decoded.
type CharData struct {
	Bytes []byte
}

func (c *CharData) String() string {
	return fmt.Sprintf("CharData(%q)", c.Bytes)
}

// IsSpace returns true if the text only contains XML whitespace.
func (c *CharData) IsSpace() bool {
	for _, b := range c.Bytes {
		switch b {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}

var _ Token = &CharData{}

// Comment holds the contents of a <!--...--> comment, without the markers.
type Comment struct {
	Bytes []byte
}

func (c *Comment) String() string {
	return fmt.Sprintf("Comment(%q)", c.Bytes)
}

var _ Token = &Comment{}

// ProcInst is a processing instruction other than the document header.
type ProcInst struct {
	Target string
	Inst   []byte
}

func (p *ProcInst) String() string {
	return fmt.Sprintf("ProcInst(%s, %q)", p.Target, p.Inst)
}

var _ Token = &ProcInst{}

// Directive holds the contents of a <!...> directive, without the markers.
type Directive struct {
	Bytes []byte
}

func (d *Directive) String() string {
	return fmt.Sprintf("Directive(%q)", d.Bytes)
}

var _ Token = &Directive{}

// IsEndOf returns true if tok closes an element with the given local name,
// whatever its prefix.
func IsEndOf(tok Token, local string) bool {
	end, ok := tok.(*EndElement)
	return ok && end.Name.Local == local
}
