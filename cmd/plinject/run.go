package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/arnodel/plinject/inject"
	"github.com/arnodel/plinject/internal/config"
	"github.com/arnodel/plinject/internal/debug"
	"github.com/arnodel/plinject/internal/pretty"
	"github.com/arnodel/plinject/internal/preview"
	"github.com/arnodel/plinject/internal/resolve"
	"github.com/fatih/color"
)

const formatTimeout = 30 * time.Second

// settings gathers the command line options and the configuration file.
type settings struct {
	Options   inject.Options
	Formatter []string
	Diff      bool
}

// loadSettings merges the configuration file (if any) with the options given
// on the command line, the latter taking precedence.
func loadSettings(cfg *Config) (*settings, error) {
	s := &settings{Diff: cfg.Diff}
	if cfg.ConfigFile != "" {
		fileCfg, err := config.Load(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		s.Options = fileCfg.InjectOptions()
		s.Formatter = fileCfg.Formatter
	}
	if cfg.Marker != "" {
		s.Options.Marker = cfg.Marker
	}
	if cfg.Declaration != "" {
		s.Options.DeclarationMarker = cfg.Declaration
	}
	if cfg.Indent != 0 {
		s.Options.Indent = cfg.Indent
	}
	if cfg.Format != "" {
		s.Formatter = strings.Fields(cfg.Format)
	}
	return s, nil
}

// A phaseError is a failure outside of the injection itself.
type phaseError struct {
	msg string
	Err error
}

func (e *phaseError) Error() string {
	return e.msg + ": " + e.Err.Error()
}

func (e *phaseError) Unwrap() error {
	return e.Err
}

// execute runs plinject with the given positional arguments, printing
// progress messages to stdout.  The output file is only opened once the whole
// result is in memory.
func execute(s *settings, args []string, stdout io.Writer) error {
	a, err := ParseArguments(args)
	if err != nil {
		return err
	}
	plist, err := resolve.Plist(a.Plist)
	if err != nil {
		return err
	}
	defer plist.Close()
	xml, err := resolve.XML(a.XML)
	if err != nil {
		return err
	}
	defer xml.Close()

	var buf bytes.Buffer
	injector := inject.New(&buf, s.Options)
	if err := injector.Inject(plist, xml); err != nil {
		return err
	}
	if injector.Declaration() != "" {
		fmt.Fprint(stdout, msgDoctypeInfo)
	}
	if !injector.Spliced() {
		marker := s.Options.Marker
		if marker == "" {
			marker = inject.DefaultMarker
		}
		color.New(color.FgYellow).Fprintf(stdout, msgNoMarker, marker)
	}

	outPath := a.OutputPath()
	if s.Diff {
		return showDiff(a.Plist, outPath, injector.Buffer(), stdout)
	}
	if err := os.WriteFile(outPath, injector.Buffer(), 0o644); err != nil {
		return &phaseError{msg: "failed to write file", Err: err}
	}
	ctx, cancel := context.WithTimeout(context.Background(), formatTimeout)
	defer cancel()
	if err := pretty.Run(ctx, s.Formatter, outPath); err != nil {
		debug.Printf("plinject: ignoring formatter failure: %s", err)
	}
	color.New(color.FgGreen).Fprintf(stdout, msgDone, resolve.Absolutize(a.XML), resolve.Absolutize(outPath))
	return nil
}

// showDiff prints the changes that writing result to outPath would make.
// When outPath does not exist yet, result is compared to the source plist.
func showDiff(plistPath, outPath string, result []byte, stdout io.Writer) error {
	before, err := os.ReadFile(outPath)
	if errors.Is(err, os.ErrNotExist) {
		before, err = os.ReadFile(plistPath)
	}
	if err != nil {
		return &phaseError{msg: "failed to read file", Err: err}
	}
	added, removed, err := preview.Render(stdout, string(before), string(result), !color.NoColor)
	if err != nil {
		return &phaseError{msg: "failed to show changes", Err: err}
	}
	fmt.Fprintf(stdout, msgPreview, added, removed, resolve.Absolutize(outPath))
	return nil
}
