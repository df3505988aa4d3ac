// Package resolve opens the files given on the command line, checking that
// they are regular files with the expected extension.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	PlistExt = ".plist"
	XMLExt   = ".xml"
)

var (
	ErrNotFound       = errors.New("failed to locate file")
	ErrNotRegular     = errors.New("invalid file provided")
	ErrWrongExtension = errors.New("unexpected file extension")
)

// A PathError records an error and the path that caused it.
type PathError struct {
	Path string
	Ext  string
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == ErrWrongExtension {
		return fmt.Sprintf("%q is not a %s file", e.Path, e.Ext)
	}
	return fmt.Sprintf("%s: %q", e.Err, Absolutize(e.Path))
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Plist opens the base property list.
func Plist(path string) (*os.File, error) {
	return Open(path, PlistExt)
}

// XML opens the fragment to inject.
func XML(path string) (*os.File, error) {
	return Open(path, XMLExt)
}

// Open opens path for reading if it is a regular file whose extension is ext.
func Open(path, ext string) (*os.File, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &PathError{Path: path, Ext: ext, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &PathError{Path: path, Ext: ext, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &PathError{Path: path, Ext: ext, Err: ErrNotRegular}
	}
	if filepath.Ext(path) != ext {
		return nil, &PathError{Path: path, Ext: ext, Err: ErrWrongExtension}
	}
	return os.Open(path)
}

// Absolutize returns the absolute form of path when it exists, and path
// itself otherwise.
func Absolutize(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
