// fitsbuf is a small toolbox for record-aligned FITS files, built on the
// buffered record IO engine in pkg/recbuf.
//
// Usage:
//
//	fitsbuf create <file> --records N   Create a blank record-aligned file
//	fitsbuf info <file>                 Show record layout
//	fitsbuf dump <file> -o <out>        Copy a byte range to an output file
//	fitsbuf repl <file>                 Interactive inspector
package main

import (
	"os"
	"strings"

	"github.com/calvinalkan/fitsbuf/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env)

	os.Exit(exitCode)
}
