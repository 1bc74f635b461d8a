package main

import (
	"fmt"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/funvibe/tapevm/pkg/cli"
)

func main() {
	// Turn panics into a short report; TAPEVM_DEBUG=1 keeps the stack trace.
	defer func() {
		if r := recover(); r != nil {
			if env.Bool("TAPEVM_DEBUG") {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "tapevm: internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "Rerun with TAPEVM_DEBUG=1 for a stack trace.")
			os.Exit(2)
		}
	}()

	cli.Run()
}
