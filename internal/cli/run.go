// Package cli implements the fitsbuf command-line tool: small utilities
// for creating and inspecting record-aligned FITS files through the
// buffered record IO engine.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/fitsbuf/pkg/recbuf"
)

// globalFlags are parsed before the command name.
type globalFlags struct {
	configPath string
	logFile    string
	remaining  []string
}

// Run is the main entry point. Returns the process exit code.
func Run(in io.Reader, out, errOut io.Writer, args []string, env map[string]string) int {
	if len(args) < 2 {
		printUsage(out)
		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(errOut, "error: cannot get working directory:", err)
		return 1
	}

	cfg, _, err := LoadConfig(workDir, flags.configPath, env)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	if flags.logFile != "" {
		cfg.LogFile = flags.logFile
	}

	lf, err := ConfigureLogging(cfg.LogFile)
	if err != nil {
		fmt.Fprintln(errOut, "error: cannot open log file:", err)
		return 1
	}

	if lf != nil {
		defer lf.Close()
	}

	if len(flags.remaining) == 0 {
		printUsage(out)
		return 0
	}

	cmd := flags.remaining[0]
	rest := flags.remaining[1:]

	if cmd == "-h" || cmd == "--help" {
		printUsage(out)
		return 0
	}

	eng := recbuf.New(recbuf.Options{NBuf: cfg.NBuf, MinDirect: cfg.MinDirect})

	var cmdErr error

	switch cmd {
	case "create":
		cmdErr = cmdCreate(out, eng, rest)
	case "info":
		cmdErr = cmdInfo(out, eng, rest)
	case "dump":
		cmdErr = cmdDump(out, eng, rest)
	case "repl":
		cmdErr = cmdRepl(in, out, eng, rest)
	default:
		fmt.Fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)

		return 1
	}

	if cmdErr != nil {
		if errors.Is(cmdErr, flag.ErrHelp) {
			return 0
		}

		fmt.Fprintln(errOut, "error:", cmdErr)

		return 1
	}

	return 0
}

// parseGlobalFlags consumes --config and --log-file before the command.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	for len(args) > 0 {
		switch args[0] {
		case "--config":
			if len(args) < 2 {
				return globalFlags{}, fmt.Errorf("--config requires an argument")
			}

			flags.configPath = args[1]
			args = args[2:]
		case "--log-file":
			if len(args) < 2 {
				return globalFlags{}, fmt.Errorf("--log-file requires an argument")
			}

			flags.logFile = args[1]
			args = args[2:]
		default:
			flags.remaining = args
			return flags, nil
		}
	}

	return flags, nil
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `Usage: fitsbuf [--config <file>] [--log-file <file>] <command> [flags]

Commands:
  create <file> --records N   Create a blank record-aligned file
  info <file>                 Show record layout of a file
  dump <file> -o <out>        Copy a byte range to an output file
  repl <file>                 Interactive inspector

Run 'fitsbuf <command> --help' for command flags.
`)
}

// newFlagSet builds a pflag set that surfaces --help as flag.ErrHelp.
func newFlagSet(name string, out io.Writer, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: fitsbuf", usage)
		fmt.Fprintln(out)
		fs.PrintDefaults()
	}

	return fs
}
