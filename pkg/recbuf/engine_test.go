// End-to-end scenarios for the buffered and direct transfer paths.
//
// Failures mean: bytes written through the engine do not round-trip, or
// write-back produced the wrong on-disk layout.

package recbuf_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/calvinalkan/fitsbuf/pkg/recbuf"
)

func Test_Small_Cached_Write_Flushes_As_One_Fill_Padded_Record(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, path := openScratch(t, eng)

	seekPut(t, f, 0, []byte("ABCDEFGHIJ"))

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush: %v", err)
	}

	wantLen(t, path, recbuf.RecordLen)

	data := readBack(t, path)
	if !bytes.Equal(data[:10], []byte("ABCDEFGHIJ")) {
		t.Fatalf("data[:10] = %q", data[:10])
	}

	wantRange(t, data, 10, recbuf.RecordLen, 0x00)
}

func Test_Small_Cached_Write_Uses_Blank_Fill_For_ASCII_Table(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, path := openScratch(t, eng)
	f.SetHDU(recbuf.HDU{Type: recbuf.ASCIITable, RowLength: 80, NumRows: 1})

	seekPut(t, f, 0, []byte("ABCDEFGHIJ"))

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush: %v", err)
	}

	data := readBack(t, path)
	wantRange(t, data, 10, recbuf.RecordLen, ' ')
}

func Test_Direct_Write_At_Offset_Fill_Pads_Head_And_Tail(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, path := openScratch(t, eng)

	seekPut(t, f, 1000, repeatByte(0x55, 10000))

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// 11000 bytes of content round up to 4 records.
	wantLen(t, path, 4*recbuf.RecordLen)

	data := readBack(t, path)
	wantRange(t, data, 0, 1000, 0x00)
	wantRange(t, data, 1000, 11000, 0x55)
	wantRange(t, data, 11000, 4*recbuf.RecordLen, 0x00)
}

func Test_Sparse_Flush_Bridges_Gap_With_Zero_Records(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, path := openScratch(t, eng)

	seekPut(t, f, 5*recbuf.RecordLen, []byte("WXYZ"))

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush: %v", err)
	}

	wantLen(t, path, 6*recbuf.RecordLen)

	data := readBack(t, path)
	wantRange(t, data, 0, 5*recbuf.RecordLen, 0x00)

	if !bytes.Equal(data[14400:14404], []byte("WXYZ")) {
		t.Fatalf("data[14400:14404] = %q", data[14400:14404])
	}

	wantRange(t, data, 14404, 6*recbuf.RecordLen, 0x00)
}

func Test_Sparse_Flush_Writes_Out_Of_Order_Records_Ascending(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{NBuf: 8})
	f, _, path := openScratch(t, eng)

	// Dirty records 7, 2, and 5 in that order, all beyond EOF.
	seekPut(t, f, 7*recbuf.RecordLen, []byte("seven"))
	seekPut(t, f, 2*recbuf.RecordLen, []byte("two"))
	seekPut(t, f, 5*recbuf.RecordLen, []byte("five"))

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush: %v", err)
	}

	wantLen(t, path, 8*recbuf.RecordLen)

	data := readBack(t, path)

	if !bytes.Equal(data[2*recbuf.RecordLen:2*recbuf.RecordLen+3], []byte("two")) {
		t.Fatal("record 2 content lost")
	}

	if !bytes.Equal(data[5*recbuf.RecordLen:5*recbuf.RecordLen+4], []byte("five")) {
		t.Fatal("record 5 content lost")
	}

	if !bytes.Equal(data[7*recbuf.RecordLen:7*recbuf.RecordLen+5], []byte("seven")) {
		t.Fatal("record 7 content lost")
	}

	// Never-buffered gap records are zero.
	wantRange(t, data, 0, 2*recbuf.RecordLen, 0x00)
	wantRange(t, data, 3*recbuf.RecordLen, 5*recbuf.RecordLen, 0x00)
	wantRange(t, data, 6*recbuf.RecordLen, 7*recbuf.RecordLen, 0x00)
}

func Test_Write_Crossing_Record_Boundary_Round_Trips(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, path := openScratch(t, eng)

	seekPut(t, f, recbuf.RecordLen-1, []byte("XY"))

	got := make([]byte, 2)
	seekGet(t, f, recbuf.RecordLen-1, got)

	if !bytes.Equal(got, []byte("XY")) {
		t.Fatalf("read back %q, want XY", got)
	}

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// Both touched records reached disk.
	wantLen(t, path, 2*recbuf.RecordLen)

	data := readBack(t, path)
	if data[recbuf.RecordLen-1] != 'X' || data[recbuf.RecordLen] != 'Y' {
		t.Fatalf("boundary bytes = %q %q", data[recbuf.RecordLen-1], data[recbuf.RecordLen])
	}
}

func Test_Direct_Write_Invalidates_Overlapping_Cached_Records(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, _ := openScratch(t, eng)

	// Lay down 7 records so the direct write stays in range.
	seekPut(t, f, 0, repeatByte(0xEE, 7*recbuf.RecordLen))

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// Cache record 5 with dirty A's.
	seekPut(t, f, 5*recbuf.RecordLen, repeatByte('A', 64))

	// Direct write of B's spanning records 4..6.
	seekPut(t, f, 4*recbuf.RecordLen, repeatByte('B', 3*recbuf.RecordLen))

	// A cached-path read of record 5 must see the direct bytes, not the
	// stale A's.
	got := make([]byte, 64)
	seekGet(t, f, 5*recbuf.RecordLen, got)
	wantRange(t, got, 0, 64, 'B')
}

func Test_Direct_Read_Flushes_But_Retains_Overlapping_Dirty_Record(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, path := openScratch(t, eng)

	seekPut(t, f, 0, repeatByte(0xEE, 4*recbuf.RecordLen))

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// Dirty record 1 in cache.
	seekPut(t, f, 1*recbuf.RecordLen, repeatByte('A', 100))

	// Large read across records 0..3 sees the dirty bytes because the
	// cached record is flushed first.
	got := make([]byte, 4*recbuf.RecordLen)
	seekGet(t, f, 0, got)
	wantRange(t, got, recbuf.RecordLen, recbuf.RecordLen+100, 'A')

	// The flush reached disk even though Flush was never called.
	data := readBack(t, path)
	wantRange(t, data, recbuf.RecordLen, recbuf.RecordLen+100, 'A')

	// And the record is still cached: a small read works without error
	// and sees the same bytes.
	small := make([]byte, 100)
	seekGet(t, f, 1*recbuf.RecordLen, small)
	wantRange(t, small, 0, 100, 'A')
}

func Test_Flush_Twice_Is_Idempotent(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, path := openScratch(t, eng)

	seekPut(t, f, 0, []byte("hello"))

	if err := f.Flush(false); err != nil {
		t.Fatalf("first flush: %v", err)
	}

	first := readBack(t, path)

	if err := f.Flush(false); err != nil {
		t.Fatalf("second flush: %v", err)
	}

	second := readBack(t, path)

	if !bytes.Equal(first, second) {
		t.Fatal("second flush changed on-disk contents")
	}
}

func Test_Seek_Negative_Position_Fails_Without_State_Change(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, _ := openScratch(t, eng)

	seekPut(t, f, 10, []byte("keep"))
	pos := f.Position()

	err := f.Seek(-1, recbuf.IgnoreEOF)
	if !errors.Is(err, recbuf.ErrNegativePos) {
		t.Fatalf("err = %v, want ErrNegativePos", err)
	}

	if f.Position() != pos {
		t.Fatalf("position moved to %d after failed seek", f.Position())
	}
}

func Test_Read_At_EOF_Reports_EndOfFile(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, _ := openScratch(t, eng)

	err := f.Seek(0, recbuf.ReportEOF)
	if !errors.Is(err, recbuf.ErrEndOfFile) {
		t.Fatalf("err = %v, want ErrEndOfFile", err)
	}
}

func Test_Seek_Past_EOF_With_IgnoreEOF_Zero_Extends(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, _ := openScratch(t, eng)

	if err := f.Seek(3*recbuf.RecordLen, recbuf.IgnoreEOF); err != nil {
		t.Fatalf("seek: %v", err)
	}

	// The zero-extended record reads back as fill without touching disk.
	got := repeatByte(0xFF, 16)
	if err := f.GetBytes(got); err != nil {
		t.Fatalf("get: %v", err)
	}

	wantRange(t, got, 0, 16, 0x00)
	if f.LogicalSize() != 4*recbuf.RecordLen {
		t.Fatalf("logical size = %d", f.LogicalSize())
	}
}

func Test_All_Buffers_Pinned_Returns_TooManyFiles(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{NBuf: 2})

	a, _, _ := openScratch(t, eng)
	b, _, _ := openScratch(t, eng)
	c, _, _ := openScratch(t, eng)

	if err := a.Seek(0, recbuf.IgnoreEOF); err != nil {
		t.Fatalf("a seek: %v", err)
	}

	if err := b.Seek(0, recbuf.IgnoreEOF); err != nil {
		t.Fatalf("b seek: %v", err)
	}

	err := c.Seek(0, recbuf.IgnoreEOF)
	if !errors.Is(err, recbuf.ErrTooManyFiles) {
		t.Fatalf("err = %v, want ErrTooManyFiles", err)
	}
}

func Test_Pinned_File_Reuses_Own_Buffer_When_Pool_Exhausted(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{NBuf: 2})

	a, _, _ := openScratch(t, eng)
	b, _, _ := openScratch(t, eng)

	seekPut(t, a, 0, []byte("aa"))
	seekPut(t, b, 0, []byte("bb"))

	// Every slot is pinned now; moving a to another record must succeed
	// by recycling a's own buffer, flushing its dirty content first.
	seekPut(t, a, 3*recbuf.RecordLen, []byte("cc"))

	got := make([]byte, 2)
	seekGet(t, a, 0, got)

	if !bytes.Equal(got, []byte("aa")) {
		t.Fatalf("read back %q, want aa", got)
	}
}

func Test_DropPastEOF_Discards_Unflushed_Tail_Records(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, path := openScratch(t, eng)

	seekPut(t, f, 0, []byte("head"))

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// Dirty a record beyond EOF, then drop it.
	seekPut(t, f, 4*recbuf.RecordLen, []byte("tail"))

	if err := f.DropPastEOF(); err != nil {
		t.Fatalf("drop: %v", err)
	}

	if err := f.Flush(false); err != nil {
		t.Fatalf("flush after drop: %v", err)
	}

	// The dropped record never reached disk.
	wantLen(t, path, recbuf.RecordLen)
}

func Test_Close_Flushes_And_Rejects_Further_Use(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})
	f, _, path := openScratch(t, eng)

	seekPut(t, f, 0, []byte("bye"))

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	wantLen(t, path, recbuf.RecordLen)

	if err := f.Close(); !errors.Is(err, recbuf.ErrClosed) {
		t.Fatalf("second close err = %v, want ErrClosed", err)
	}

	if err := f.Seek(0, recbuf.IgnoreEOF); !errors.Is(err, recbuf.ErrClosed) {
		t.Fatalf("seek after close err = %v, want ErrClosed", err)
	}
}

func Test_OptimalNData_Scales_With_Unit_Size(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{NBuf: 4})
	f, _, _ := openScratch(t, eng)

	// One active file, 4 buffers: 3 spare records of working set.
	seekPut(t, f, 0, []byte("x"))

	f.SetHDU(recbuf.HDU{Type: recbuf.ImageHDU, BytesPerPixel: 4})

	n, err := f.OptimalNData()
	if err != nil {
		t.Fatalf("optimal: %v", err)
	}

	if want := int64(3*recbuf.RecordLen) / 4; n != want {
		t.Fatalf("optimal pixels = %d, want %d", n, want)
	}

	f.SetHDU(recbuf.HDU{Type: recbuf.BinaryTable, RowLength: 10000, NumRows: 5})

	n, err = f.OptimalNData()
	if err != nil {
		t.Fatalf("optimal: %v", err)
	}

	// Rows wider than the spare working set still report at least 1.
	if n != 1 {
		t.Fatalf("optimal rows = %d, want 1", n)
	}
}

func Test_NumOpenFiles_Counts_Distinct_Owners(t *testing.T) {
	t.Parallel()

	eng := recbuf.New(recbuf.Options{})

	a, _, _ := openScratch(t, eng)
	b, _, _ := openScratch(t, eng)

	if n := eng.NumOpenFiles(); n != 0 {
		t.Fatalf("fresh pool reports %d files", n)
	}

	seekPut(t, a, 0, []byte("a1"))
	seekPut(t, a, recbuf.RecordLen, []byte("a2"))
	seekPut(t, b, 0, []byte("b1"))

	if n := eng.NumOpenFiles(); n != 2 {
		t.Fatalf("open files = %d, want 2", n)
	}
}
