package inject

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/arnodel/plinject/encoding/xml"
	"github.com/arnodel/plinject/token"
	"github.com/google/go-cmp/cmp"
)

const appleHeader = `<?xml version="1.0" encoding="UTF-8"?>`
const appleDoctype = `<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">`

func runInject(t *testing.T, base, injection string) (string, *Injector) {
	t.Helper()
	var buf bytes.Buffer
	inj := New(&buf, Options{})
	if err := inj.Inject(strings.NewReader(base), strings.NewReader(injection)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return string(inj.Buffer()), inj
}

// structure returns the tokens of a document that are not whitespace, as
// strings, leaving out the document header.
func structure(doc string) []string {
	var res []string
	for _, tok := range token.Tokens(xml.NewDecoder(strings.NewReader(doc))) {
		switch t := tok.(type) {
		case *token.StartDocument:
			continue
		case *token.CharData:
			if t.IsSpace() {
				continue
			}
		}
		res = append(res, tok.String())
	}
	return res
}

func TestInjectRoundTrip(t *testing.T) {
	output, inj := runInject(t,
		`<plist><dict><key>a</key></dict></plist>`,
		`<key>b</key><string>c</string>`,
	)
	expected := strings.Join([]string{
		appleHeader,
		`<plist>`,
		`  <dict>`,
		`    <key>a</key>`,
		`    <key>b</key>`,
		`    <string>c</string>`,
		`  </dict>`,
		`</plist>`,
		``,
	}, "\n")
	if output != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, output)
	}
	if !inj.Spliced() {
		t.Errorf("expected the marker to be found")
	}
}

func TestInjectEmptyFragmentPassesThrough(t *testing.T) {
	bases := []string{
		`<plist><dict><key>a</key><string>b</string></dict></plist>`,
		appleHeader + "\n<plist version=\"1.0\">\n<dict>\n\t<key>k</key>\n\t<array>\n\t\t<true/>\n\t</array>\n</dict>\n</plist>\n",
		`<plist><array><integer>1</integer></array></plist>`,
	}
	for i, base := range bases {
		t.Run(fmt.Sprintf("base %d", i), func(t *testing.T) {
			output, _ := runInject(t, base, appleHeader)
			if diff := cmp.Diff(structure(base), structure(output)); diff != "" {
				t.Errorf("structure mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInjectSplicesOnce(t *testing.T) {
	base := `<plist><dict>` +
		`<key>outer</key>` +
		`<dict><key>inner</key></dict>` +
		`<key>other</key><dict></dict>` +
		`</dict></plist>`
	output, _ := runInject(t, base, `<key>injected</key>`)
	expected := []string{
		"StartElement(plist)",
		"StartElement(dict)",
		"StartElement(key)", `CharData("outer")`, "EndElement(key)",
		"StartElement(dict)",
		"StartElement(key)", `CharData("inner")`, "EndElement(key)",
		"StartElement(key)", `CharData("injected")`, "EndElement(key)",
		"EndElement(dict)",
		"StartElement(key)", `CharData("other")`, "EndElement(key)",
		"StartElement(dict)", "EndElement(dict)",
		"EndElement(dict)",
		"EndElement(plist)",
	}
	if diff := cmp.Diff(expected, structure(output)); diff != "" {
		t.Errorf("structure mismatch (-want +got):\n%s", diff)
	}
	if n := strings.Count(output, "injected"); n != 1 {
		t.Errorf("expected the fragment once, found it %d times", n)
	}
}

func TestInjectPrefixedMarker(t *testing.T) {
	output, _ := runInject(t, `<p:plist xmlns:p="urn:p"><p:dict></p:dict></p:plist>`, `<key>b</key>`)
	expected := []string{
		`StartElement(p:plist xmlns:p="urn:p")`,
		"StartElement(p:dict)",
		"StartElement(key)", `CharData("b")`, "EndElement(key)",
		"EndElement(p:dict)",
		"EndElement(p:plist)",
	}
	if diff := cmp.Diff(expected, structure(output)); diff != "" {
		t.Errorf("structure mismatch (-want +got):\n%s", diff)
	}
}

func TestInjectPreservesDeclaration(t *testing.T) {
	base := appleHeader + "\n" + appleDoctype + "\n<plist version=\"1.0\">\n<dict>\n</dict>\n</plist>\n"
	output, inj := runInject(t, base, `<key>b</key>`)
	lines := strings.Split(output, "\n")
	if len(lines) < 2 {
		t.Fatalf("output too short: %q", output)
	}
	if lines[0] != appleHeader {
		t.Errorf("expected header %q, got %q", appleHeader, lines[0])
	}
	if lines[1] != appleDoctype {
		t.Errorf("expected declaration %q, got %q", appleDoctype, lines[1])
	}
	if n := strings.Count(output, "DOCTYPE"); n != 1 {
		t.Errorf("expected one declaration, found %d", n)
	}
	if inj.Declaration() != appleDoctype {
		t.Errorf("expected Declaration() to be %q, got %q", appleDoctype, inj.Declaration())
	}
}

func TestInjectWithoutDeclaration(t *testing.T) {
	output, inj := runInject(t, `<plist><dict/></plist>`, `<key>b</key>`)
	if strings.Contains(output, "DOCTYPE") {
		t.Errorf("unexpected declaration in output:\n%s", output)
	}
	if inj.Declaration() != "" {
		t.Errorf("unexpected declaration %q", inj.Declaration())
	}
}

func TestInjectStripsFragmentHeader(t *testing.T) {
	output, _ := runInject(t,
		appleHeader+`<plist><dict/></plist>`,
		appleHeader+"\n"+`<key>b</key><true/>`,
	)
	if n := strings.Count(output, "<?xml"); n != 1 {
		t.Errorf("expected one document header, found %d in:\n%s", n, output)
	}
	if !strings.HasPrefix(output, appleHeader) {
		t.Errorf("output does not start with the header:\n%s", output)
	}
}

func TestInjectWithoutMarker(t *testing.T) {
	tests := []struct {
		name string
		base string
	}{
		{name: "no marker element", base: `<plist><array><string>a</string></array></plist>`},
		{name: "marker never closed", base: `<plist><dict><key>a</key>`},
		{name: "truncated inside a tag", base: `<plist><dict><key>a</ke`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, inj := runInject(t, tt.base, `<key>injected</key>`)
			if strings.Contains(output, "injected") {
				t.Errorf("fragment should not be injected:\n%s", output)
			}
			if inj.Spliced() {
				t.Errorf("expected the marker not to be found")
			}
		})
	}
}

func TestInjectMalformedFragmentIsTruncated(t *testing.T) {
	output, _ := runInject(t, `<plist><dict></dict></plist>`, `<key>b</key><<`)
	expected := []string{
		"StartElement(plist)",
		"StartElement(dict)",
		"StartElement(key)", `CharData("b")`, "EndElement(key)",
		"EndElement(dict)",
		"EndElement(plist)",
	}
	if diff := cmp.Diff(expected, structure(output)); diff != "" {
		t.Errorf("structure mismatch (-want +got):\n%s", diff)
	}
}

func TestInjectCustomMarker(t *testing.T) {
	var buf bytes.Buffer
	inj := New(&buf, Options{Marker: "array", Indent: -1})
	err := inj.Inject(
		strings.NewReader(`<plist><dict><array></array></dict></plist>`),
		strings.NewReader(`<true/>`),
	)
	if err != nil {
		t.Fatal(err)
	}
	expected := appleHeader + `<plist><dict><array><true/></array></dict></plist>`
	if got := buf.String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

var errRejected = errors.New("write rejected")

// limitedBuffer accepts at most limit bytes.
type limitedBuffer struct {
	bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.Len()+len(p) > b.limit {
		return 0, errRejected
	}
	return b.Buffer.Write(p)
}

func manyKeys(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<key>key%d</key><string>value%d</string>", i, i)
	}
	return b.String()
}

// longDoctype does not fit in the output buffer.
var longDoctype = `<!DOCTYPE plist PUBLIC "-//Test//EN" "` + strings.Repeat("a", 5000) + `">`

func TestInjectWriteFailure(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		injection string
		phase     Phase
	}{
		{
			name:      "while copying the base document",
			base:      "<plist><array>" + manyKeys(500) + "</array><dict></dict></plist>",
			injection: `<key>b</key>`,
			phase:     PhaseBase,
		},
		{
			name:      "while copying the fragment",
			base:      `<plist><dict></dict></plist>`,
			injection: manyKeys(500),
			phase:     PhaseInjection,
		},
		{
			name:      "while copying the declaration",
			base:      appleHeader + "\n" + longDoctype + "\n<plist><dict></dict></plist>",
			injection: `<key>b</key>`,
			phase:     PhaseDeclaration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := &limitedBuffer{limit: 100}
			inj := New(dst, Options{})
			err := inj.Inject(strings.NewReader(tt.base), strings.NewReader(tt.injection))
			var cerr *CopyError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected a *CopyError, got %v", err)
			}
			if cerr.Phase != tt.phase {
				t.Errorf("expected phase %q, got %q", tt.phase, cerr.Phase)
			}
			if !errors.Is(err, errRejected) {
				t.Errorf("expected %v to wrap %v", err, errRejected)
			}
			if !strings.HasPrefix(err.Error(), tt.phase.String()) {
				t.Errorf("message %q does not name the phase", err)
			}
			if strings.Contains(string(inj.Buffer()), "</plist>") {
				t.Errorf("partial output looks complete")
			}
		})
	}
}

func TestBufferWithoutBytes(t *testing.T) {
	inj := New(io.Discard, Options{})
	if err := inj.Inject(strings.NewReader(`<plist/>`), strings.NewReader(``)); err != nil {
		t.Fatal(err)
	}
	if b := inj.Buffer(); b != nil {
		t.Errorf("expected nil buffer, got %q", b)
	}
}

// brokenSeeker cannot be rewound.
type brokenSeeker struct {
	io.Reader
}

var errNoSeek = errors.New("no seeking")

func (brokenSeeker) Seek(int64, int) (int64, error) {
	return 0, errNoSeek
}

func TestInjectRewindFailure(t *testing.T) {
	var buf bytes.Buffer
	inj := New(&buf, Options{})
	err := inj.Inject(brokenSeeker{strings.NewReader(`<plist><dict/></plist>`)}, strings.NewReader(`<key>b</key>`))
	if !errors.Is(err, ErrRewind) {
		t.Fatalf("expected %v, got %v", ErrRewind, err)
	}
	if !errors.Is(err, errNoSeek) {
		t.Errorf("expected %v to wrap %v", err, errNoSeek)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestInjectCanBeCalledAgain(t *testing.T) {
	var buf bytes.Buffer
	inj := New(&buf, Options{Indent: -1})
	for i := 0; i < 2; i++ {
		err := inj.Inject(strings.NewReader(`<dict></dict>`), strings.NewReader(`<true/>`))
		if err != nil {
			t.Fatal(err)
		}
		if !inj.Spliced() {
			t.Errorf("call %d: expected the marker to be found", i)
		}
	}
	doc := appleHeader + `<dict><true/></dict>`
	if got := buf.String(); got != doc+doc {
		t.Errorf("expected %q, got %q", doc+doc, got)
	}
}

func TestInjectRecoversAfterWriteFailure(t *testing.T) {
	dst := &limitedBuffer{limit: 100}
	inj := New(dst, Options{Indent: -1})
	err := inj.Inject(strings.NewReader(`<plist><dict></dict></plist>`), strings.NewReader(manyKeys(500)))
	if err == nil {
		t.Fatal("expected the first call to fail")
	}
	dst.Reset()
	dst.limit = 1 << 20
	err = inj.Inject(strings.NewReader(`<plist><dict></dict></plist>`), strings.NewReader(`<true/>`))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	expected := appleHeader + `<plist><dict><true/></dict></plist>`
	if got := dst.String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestInjectByteOrderMark(t *testing.T) {
	base := "\ufeff" + appleHeader + "\n" + appleDoctype + "\n<plist version=\"1.0\">\n<dict>\n</dict>\n</plist>\n"
	output, _ := runInject(t, base, `<key>b</key>`)
	expected := strings.Join([]string{
		appleHeader,
		appleDoctype,
		`<plist version="1.0">`,
		`  <dict>`,
		`    <key>b</key>`,
		`  </dict>`,
		`</plist>`,
		``,
	}, "\n")
	if output != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, output)
	}
}

func TestInjectConvertsEncoding(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		want   string
	}{
		{name: "ascii", header: `<?xml version="1.0" encoding="US-ASCII"?>`, value: "a", want: "a"},
		{name: "latin-1", header: `<?xml version="1.0" encoding="ISO-8859-1"?>`, value: "caf\xe9", want: "café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := tt.header + "\n<plist version=\"1.0\">\n<dict>\n<key>" + tt.value + "</key>\n<true/>\n</dict>\n</plist>\n"
			output, inj := runInject(t, base, `<key>b</key>`)
			expected := strings.Join([]string{
				appleHeader,
				`<plist version="1.0">`,
				`  <dict>`,
				`    <key>` + tt.want + `</key>`,
				`    <true/>`,
				`    <key>b</key>`,
				`  </dict>`,
				`</plist>`,
				``,
			}, "\n")
			if output != expected {
				t.Errorf("expected:\n%s\ngot:\n%s", expected, output)
			}
			if !inj.Spliced() {
				t.Errorf("expected the marker to be found")
			}
		})
	}
}

func TestInjectUnsupportedEncoding(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		injection string
		phase     Phase
	}{
		{
			name:      "in the base document",
			base:      `<?xml version="1.0" encoding="x-no-such-charset"?><plist><dict/></plist>`,
			injection: `<key>b</key>`,
			phase:     PhaseBase,
		},
		{
			name:      "in the fragment",
			base:      `<plist><dict></dict></plist>`,
			injection: `<?xml version="1.0" encoding="x-no-such-charset"?><key>b</key>`,
			phase:     PhaseInjection,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := New(&buf, Options{}).Inject(strings.NewReader(tt.base), strings.NewReader(tt.injection))
			var cerr *CopyError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected a *CopyError, got %v", err)
			}
			if cerr.Phase != tt.phase {
				t.Errorf("expected phase %q, got %q", tt.phase, cerr.Phase)
			}
			if !errors.Is(err, xml.ErrEncoding) {
				t.Errorf("expected %v to wrap %v", err, xml.ErrEncoding)
			}
		})
	}
}
