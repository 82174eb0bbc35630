package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"

	"github.com/calvinalkan/fitsbuf/pkg/fs"
	"github.com/calvinalkan/fitsbuf/pkg/recbuf"
)

// cmdDump copies a byte range out of a file through the engine and
// writes it atomically to the output path, so a partial dump never
// replaces an earlier complete one.
func cmdDump(out io.Writer, eng *recbuf.Engine, args []string) error {
	flags := newFlagSet("dump", out, "dump <file> [--start N] [--count N] -o <out>")
	start := flags.Int64P("start", "s", 0, "byte offset to start at")
	count := flags.Int64P("count", "c", recbuf.RecordLen, "number of bytes to copy")
	outPath := flags.StringP("output", "o", "", "output file (required)")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("dump takes exactly one file argument")
	}

	if *outPath == "" {
		return fmt.Errorf("-o is required")
	}

	if *start < 0 || *count <= 0 {
		return fmt.Errorf("--start must be >= 0 and --count > 0")
	}

	path := flags.Arg(0)

	drv, err := fs.NewReal().OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer drv.Close()

	f, err := eng.Open(drv)
	if err != nil {
		return err
	}

	if *start+*count > f.Size() {
		return fmt.Errorf("range [%d,%d) exceeds file size %d", *start, *start+*count, f.Size())
	}

	data := make([]byte, *count)

	if err := f.Seek(*start, recbuf.ReportEOF); err != nil {
		return err
	}

	if err := f.GetBytes(data); err != nil {
		return err
	}

	if err := atomic.WriteFile(*outPath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", *outPath, err)
	}

	log.Infof("dumped %d bytes from %s[%d:] to %s", *count, path, *start, *outPath)
	fmt.Fprintf(out, "%s: %d bytes\n", *outPath, *count)

	return f.Close()
}
