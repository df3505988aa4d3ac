package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arnodel/plinject/inject"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

type Config struct {
	Marker      string `cli:"name=marker desc='local name of the element whose first closing tag is the injection point (default dict)'"`
	Declaration string `cli:"name=declaration desc='text identifying the source line copied after the xml header (default DOCTYPE)'"`
	Indent      int    `cli:"name=indent desc='spaces per indentation level or -1 to write a single line (default 2)'"`
	Diff        bool   `cli:"name=diff desc='show the changes instead of writing the output file'"`
	Format      string `cli:"name=format desc='command run on the output file after writing it such as plutil -convert xml1'"`
	ConfigFile  string `cli:"name=config desc='YAML configuration file'"`
	Color       string `cli:"name=color desc='colorize output: auto always or never' default=auto"`

	Command *cli.Command
}

func MainCommand() *cli.Command {
	cfg := &Config{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "plinject").
		WithSynopsis("plinject [opts] <destination.plist> <source.xml> [output.plist]").
		WithDescription("plinject injects the contents of an xml file into the first <dict> of a property list.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return plinject(cfg, cc, args)
		})
}

func plinject(cfg *Config, cc *cli.Context, args []string) error {
	args, err := cfg.Command.Parse(cc, args)
	if err != nil {
		cfg.Command.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	colored, err := useColor(cfg.Color, cc.Out)
	if err != nil {
		report(color.Error, err)
		return cli.ExitCodeErr(1)
	}
	color.NoColor = !colored
	stdout := cc.Out
	if f, ok := stdout.(*os.File); ok && colored {
		stdout = colorable.NewColorable(f)
	}
	s, err := loadSettings(cfg)
	if err == nil {
		err = execute(s, args, stdout)
	}
	if err != nil {
		report(color.Error, err)
		return cli.ExitCodeErr(1)
	}
	return nil
}

// useColor decides whether to colorize output written to w.
func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		f, ok := w.(*os.File)
		return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())), nil
	default:
		return false, fmt.Errorf("%w: invalid -color value %q (use auto, always, or never)", cli.ErrUsage, mode)
	}
}

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	detailColor = color.New(color.Faint)
)

// report prints err the way all plinject failures are shown, adding usage
// information to usage errors.
func report(w io.Writer, err error) {
	msg, details := describe(err)
	errorColor.Fprint(w, "Error: ")
	fmt.Fprintln(w, msg)
	if details != "" {
		detailColor.Fprintf(w, "Details: %q\n", details)
	}
	if errors.Is(err, cli.ErrUsage) {
		fmt.Fprintf(w, "\n%s\n%s\n", usage, examples)
	}
}

// describe splits err into a message and optional details.
func describe(err error) (msg, details string) {
	var cerr *inject.CopyError
	if errors.As(err, &cerr) {
		return cerr.Phase.String(), cerr.Err.Error()
	}
	var perr *phaseError
	if errors.As(err, &perr) {
		return perr.msg, perr.Err.Error()
	}
	msg = err.Error()
	msg = strings.TrimPrefix(msg, cli.ErrUsage.Error()+": ")
	return msg, ""
}
