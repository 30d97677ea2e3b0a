package main

import (
	"fmt"
	"os"

	"disasterresponse/internal/cli"
	"disasterresponse/pkg/etl"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			os.Exit(etl.ExitPanic)
		}
	}()

	os.Exit(etl.ExitCodeForError(cli.Execute()))
}
