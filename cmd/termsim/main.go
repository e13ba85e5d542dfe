package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/darwinyusef/termsim/internal/cli"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(termsim.ExitPanic)
		}
	}()

	if os.Getenv("TERMSIM_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(termsim.ExitCodeForError(err))
	}
}
