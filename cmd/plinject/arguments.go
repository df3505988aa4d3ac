package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

// Arguments are the positional arguments of plinject.
type Arguments struct {
	Plist  string
	XML    string
	Output string
}

// ParseArguments checks that there are two or three positional arguments.
func ParseArguments(args []string) (*Arguments, error) {
	switch len(args) {
	case 0:
		return nil, fmt.Errorf("%w: received 0 arguments, expected at least 2 (a destination and source path are required)", cli.ErrUsage)
	case 1:
		return nil, fmt.Errorf("%w: received 1 argument, expected at least 2 (both a destination and source path are required)", cli.ErrUsage)
	case 2, 3:
	default:
		return nil, fmt.Errorf("%w: received %d arguments, expected at most 3", cli.ErrUsage, len(args))
	}
	a := &Arguments{Plist: args[0], XML: args[1]}
	if len(args) == 3 {
		a.Output = args[2]
	}
	return a, nil
}

// OutputPath is where the result is written: the output argument if given,
// the destination .plist file otherwise.
func (a *Arguments) OutputPath() string {
	if a.Output != "" {
		return a.Output
	}
	return a.Plist
}
