package main

import (
	"errors"
	"fmt"
	"os"
)

const (
	exitSuccess = 0
	exitInvalid = 1
	exitError   = 2
)

func main() {
	err := newRootCmd().Execute()
	switch {
	case err == nil:
		os.Exit(exitSuccess)
	case errors.Is(err, errInvalidParameterSet):
		os.Exit(exitInvalid)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitError)
	}
}
