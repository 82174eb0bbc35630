package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/calvinalkan/fitsbuf/pkg/fs"
	"github.com/calvinalkan/fitsbuf/pkg/recbuf"
)

// cmdInfo shows the record layout of a file and a peek at its first
// header card, read through the engine.
func cmdInfo(out io.Writer, eng *recbuf.Engine, args []string) error {
	flags := newFlagSet("info", out, "info <file>")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("info takes exactly one file argument")
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

	size := f.Size()
	records := size / recbuf.RecordLen
	aligned := size%recbuf.RecordLen == 0

	fmt.Fprintf(out, "file:     %s\n", path)
	fmt.Fprintf(out, "size:     %d bytes\n", size)
	fmt.Fprintf(out, "records:  %d (%d bytes each)\n", records, recbuf.RecordLen)
	fmt.Fprintf(out, "aligned:  %v\n", aligned)

	if !aligned {
		log.Warningf("%s is not record-aligned (%d trailing bytes)", path, size%recbuf.RecordLen)
	}

	if size >= 80 {
		card := make([]byte, 80)

		if err := f.Seek(0, recbuf.ReportEOF); err != nil {
			return err
		}

		if err := f.GetBytes(card); err != nil {
			return err
		}

		fmt.Fprintf(out, "card 0:   %q\n", card)
	}

	// Read-only inspection: nothing to flush, just unbind.
	return f.Close()
}
