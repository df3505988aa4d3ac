// Package plinject implements splicing markup into property list files.
//
// The package is organized into several sub-packages:
//
// - token: markup tokens and token streams
// - encoding/xml: a pull-based token reader and an indenting token writer
// - inject: the stream injector built on top of both
//
// The transformation is a single streaming pass:
//
//	decode base -> (decode fragment at the splice point) -> encode output
//
// The base document is read token by token and written to an in-memory
// output.  When the first closing tag of the marker element (dict by default)
// is reached, the tokens of the fragment are written before it.  The document
// type declaration of the base document, which is not part of the token
// model, is copied as raw text right after the document header.
//
// As the whole output is buffered before anything is written to the
// destination, a failure at any point leaves the destination untouched.
//
// The CLI utility is in the directory cmd/plinject. You can install it with:
//
//	go install github.com/arnodel/plinject/cmd/plinject
package plinject
