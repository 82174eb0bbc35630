package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/fitsbuf/pkg/fs"
	"github.com/calvinalkan/fitsbuf/pkg/recbuf"
)

const replHelp = `Commands:
  get <pos> <n>      Read n bytes at pos (hex + ASCII)
  put <pos> <hex>    Write hex-encoded bytes at pos
  flush              Write back dirty records
  size               Show on-disk and logical sizes
  stats              Show pool configuration
  help               Show this help
  exit / quit / q    Exit (flushes first)
`

// cmdRepl runs an interactive inspector on a file.
func cmdRepl(in io.Reader, out io.Writer, eng *recbuf.Engine, args []string) error {
	flags := newFlagSet("repl", out, "repl <file> [--read-only]")
	readOnly := flags.Bool("read-only", false, "open the file read-only")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("repl takes exactly one file argument")
	}

	path := flags.Arg(0)

	mode := os.O_RDWR
	if *readOnly {
		mode = os.O_RDONLY
	}

	drv, err := fs.NewReal().OpenFile(path, mode, 0)
	if err != nil {
		return err
	}
	defer drv.Close()

	f, err := eng.Open(drv)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "fitsbuf repl: %s (%d bytes)\n", path, f.Size())
	fmt.Fprintln(out, "Type 'help' for commands.")

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("fitsbuf> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}

			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		fields := strings.Fields(input)

		done, err := replDispatch(out, f, eng, fields)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}

		if done {
			break
		}
	}

	return f.Close()
}

func replDispatch(out io.Writer, f *recbuf.File, eng *recbuf.Engine, fields []string) (done bool, err error) {
	switch fields[0] {
	case "exit", "quit", "q":
		return true, nil

	case "help":
		fmt.Fprint(out, replHelp)
		return false, nil

	case "get":
		if len(fields) != 3 {
			return false, fmt.Errorf("usage: get <pos> <n>")
		}

		pos, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return false, fmt.Errorf("bad position %q", fields[1])
		}

		n, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil || n <= 0 {
			return false, fmt.Errorf("bad count %q", fields[2])
		}

		data := make([]byte, n)

		if err := f.Seek(pos, recbuf.ReportEOF); err != nil {
			return false, err
		}

		if err := f.GetBytes(data); err != nil {
			return false, err
		}

		fmt.Fprint(out, hex.Dump(data))

		return false, nil

	case "put":
		if len(fields) != 3 {
			return false, fmt.Errorf("usage: put <pos> <hex>")
		}

		pos, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return false, fmt.Errorf("bad position %q", fields[1])
		}

		data, err := hex.DecodeString(fields[2])
		if err != nil {
			return false, fmt.Errorf("bad hex %q: %w", fields[2], err)
		}

		if err := f.Seek(pos, recbuf.IgnoreEOF); err != nil {
			return false, err
		}

		if err := f.PutBytes(data); err != nil {
			return false, err
		}

		fmt.Fprintf(out, "wrote %d bytes at %d (buffered; 'flush' to persist)\n", len(data), pos)

		return false, nil

	case "flush":
		if err := f.Flush(false); err != nil {
			return false, err
		}

		fmt.Fprintln(out, "flushed")

		return false, nil

	case "size":
		fmt.Fprintf(out, "on-disk: %d bytes, logical: %d bytes\n", f.Size(), f.LogicalSize())
		return false, nil

	case "stats":
		fmt.Fprintf(out, "pool: %d buffers x %d bytes, direct threshold %d bytes, open files %d\n",
			eng.NBuf(), recbuf.RecordLen, eng.MinDirect(), eng.NumOpenFiles())
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
}
