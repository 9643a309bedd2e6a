package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/postpilot/composer/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cli.Execute()
	if err == nil {
		return 0
	}

	var printed interface{ AlreadyPrinted() bool }
	if !errors.As(err, &printed) || !printed.AlreadyPrinted() {
		fmt.Fprintln(os.Stderr, err.Error())
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return cli.ExitCodeUnknown
}
