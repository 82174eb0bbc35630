package recbuf_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/fitsbuf/pkg/recbuf"
)

// openScratch creates an empty scratch file in a temp dir and opens it on
// the engine. The os.File doubles as the storage driver.
func openScratch(t *testing.T, eng *recbuf.Engine) (*recbuf.File, *os.File, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scratch.fits")

	osf, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		t.Fatalf("open scratch: %v", err)
	}

	t.Cleanup(func() { _ = osf.Close() })

	f, err := eng.Open(osf)
	if err != nil {
		t.Fatalf("engine open: %v", err)
	}

	return f, osf, path
}

// readBack returns the full on-disk contents of path.
func readBack(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	return data
}

// wantLen fails unless the on-disk file has exactly n bytes.
func wantLen(t *testing.T, path string, n int64) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if info.Size() != n {
		t.Fatalf("file length = %d, want %d", info.Size(), n)
	}
}

// wantRange fails unless data[lo:hi] consists entirely of b.
func wantRange(t *testing.T, data []byte, lo, hi int, b byte) {
	t.Helper()

	for i := lo; i < hi; i++ {
		if data[i] != b {
			t.Fatalf("data[%d] = %#x, want %#x (range [%d,%d))", i, data[i], b, lo, hi)
		}
	}
}

// repeatByte returns n copies of b.
func repeatByte(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

// seekPut positions the cursor and writes src through the engine.
func seekPut(t *testing.T, f *recbuf.File, pos int64, src []byte) {
	t.Helper()

	if err := f.Seek(pos, recbuf.IgnoreEOF); err != nil {
		t.Fatalf("seek %d: %v", pos, err)
	}

	if err := f.PutBytes(src); err != nil {
		t.Fatalf("put %d bytes at %d: %v", len(src), pos, err)
	}
}

// seekGet positions the cursor and reads len(dst) bytes through the engine.
func seekGet(t *testing.T, f *recbuf.File, pos int64, dst []byte) {
	t.Helper()

	if err := f.Seek(pos, recbuf.ReportEOF); err != nil {
		t.Fatalf("seek %d: %v", pos, err)
	}

	if err := f.GetBytes(dst); err != nil {
		t.Fatalf("get %d bytes at %d: %v", len(dst), pos, err)
	}
}
