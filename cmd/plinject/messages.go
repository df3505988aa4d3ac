package main

// usage is printed after argument errors.
const usage = `Usage:
  $ plinject [opts] <destination .plist file> <source .xml file to inject> [output .plist file]

Note: the destination .plist file is overwritten if no output file is provided`

const examples = `Examples:
  $ plinject Example.app/Contents/Info.plist injection.xml
  $ plinject source.plist injection.xml output.plist
  $ plinject -diff source.plist injection.xml`

const (
	msgDone        = "Done: injected contents of %q into %q\n"
	msgPreview     = "Preview: %d line(s) added, %d line(s) removed in %q (nothing written)\n"
	msgDoctypeInfo = "Info: located `DOCTYPE` tag in source .plist; copying it to the output\n"
	msgNoMarker    = "Warning: no closing <%s> tag found in source .plist; nothing was injected\n"
)
