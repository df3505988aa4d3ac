// Package preview renders the changes an injection would make to a file.
package preview

import (
	"io"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Context is the number of unchanged lines shown around each change.
const Context = 3

// A Line is a line of the rendered diff.
type Line struct {
	Op   diffpatch.Operation
	Text string
}

// Lines computes a line by line diff of before and after.
func Lines(before, after string) []Line {
	dmp := diffpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)
	var lines []Line
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			lines = append(lines, Line{Op: d.Type, Text: text})
		}
	}
	return lines
}

// Render writes the diff of before and after to w, showing only Context
// lines around changes.  It returns the number of added and removed lines.
// When colored is false no escape codes are written.
func Render(w io.Writer, before, after string, colored bool) (added, removed int, err error) {
	insert := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	elided := color.New(color.FgCyan)
	if !colored {
		insert.DisableColor()
		del.DisableColor()
		elided.DisableColor()
	}

	lines := Lines(before, after)
	show := visible(lines)
	skipping := false
	for i, line := range lines {
		if !show[i] {
			if !skipping {
				if _, err = elided.Fprintln(w, "@@"); err != nil {
					return
				}
			}
			skipping = true
			continue
		}
		skipping = false
		switch line.Op {
		case diffpatch.DiffInsert:
			added++
			_, err = insert.Fprintln(w, "+"+line.Text)
		case diffpatch.DiffDelete:
			removed++
			_, err = del.Fprintln(w, "-"+line.Text)
		default:
			_, err = io.WriteString(w, " "+line.Text+"\n")
		}
		if err != nil {
			return
		}
	}
	return
}

// visible marks the lines that are within Context lines of a change.
func visible(lines []Line) []bool {
	show := make([]bool, len(lines))
	for i, line := range lines {
		if line.Op == diffpatch.DiffEqual {
			continue
		}
		lo, hi := max(0, i-Context), min(len(lines)-1, i+Context)
		for j := lo; j <= hi; j++ {
			show[j] = true
		}
	}
	return show
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
