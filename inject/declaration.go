package inject

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/arnodel/plinject/internal/debug"
)

// ExtractDeclaration reads the whole of r and returns the first line
// containing marker (without its line terminator), or "" if there is none.
// It then seeks r back to its start.
//
// A read failure is not reported, it just means no declaration is found.  A
// seek failure is reported as an error wrapping ErrRewind, as the caller
// cannot read r again.
func ExtractDeclaration(r io.ReadSeeker, marker string) (string, error) {
	decl := scanDeclaration(r, marker)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRewind, err)
	}
	return decl, nil
}

func scanDeclaration(r io.Reader, marker string) string {
	if marker == "" {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		debug.Printf("inject: not looking for %s: %s", marker, err)
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(nil, len(data)+1)
	for scanner.Scan() {
		if line := scanner.Text(); strings.Contains(line, marker) {
			return line
		}
	}
	return ""
}
