package inject

const (
	// DefaultMarker is the local name of the element whose first closing tag
	// marks the injection point.
	DefaultMarker = "dict"
	// DefaultDeclarationMarker identifies the line of the base document that
	// is copied verbatim after the document header.
	DefaultDeclarationMarker = "DOCTYPE"
	// DefaultIndent is the number of spaces per indentation level.
	DefaultIndent = 2
)

// Options configures an Injector.  Zero values use defaults.  A negative
// Indent writes the whole document on a single line.
type Options struct {
	Marker            string
	DeclarationMarker string
	Indent            int
}

// DefaultOptions returns the options used by a zero Options value.
func DefaultOptions() Options {
	return Options{
		Marker:            DefaultMarker,
		DeclarationMarker: DefaultDeclarationMarker,
		Indent:            DefaultIndent,
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if opts.DeclarationMarker == "" {
		opts.DeclarationMarker = DefaultDeclarationMarker
	}
	if opts.Indent == 0 {
		opts.Indent = DefaultIndent
	}
	return opts
}
