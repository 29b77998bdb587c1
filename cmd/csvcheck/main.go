// Command csvcheck checks a recipient CSV file against a message template
// without starting the server.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errBatchHasProblems) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for a file with problems and 1 for anything that stopped
// the check from running.
func exitCode(err error) int {
	if errors.Is(err, errBatchHasProblems) {
		return 2
	}
	return 1
}
