package main

import "errors"

// Exit codes
const (
	ExitSuccess    = 0 // at least one record matched, or the command succeeded
	ExitNoMatch    = 1 // match found no records
	ExitInputError = 2 // bad arguments, expression, configuration or input file
)

// errNoMatch ends a match run that selected nothing. It is not printed.
var errNoMatch = errors.New("no records matched")

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errNoMatch):
		return ExitNoMatch
	default:
		return ExitInputError
	}
}
