package recbuf

import (
	"errors"
	"fmt"
	"io"

	"github.com/calvinalkan/fitsbuf/pkg/fs"
)

// HDUType identifies the kind of header-data unit a file is positioned at.
type HDUType int

const (
	// ImageHDU is an image extension (or the primary array).
	ImageHDU HDUType = iota

	// ASCIITable is an ASCII table extension. Its fill byte is a space.
	ASCIITable

	// BinaryTable is a binary table extension.
	BinaryTable
)

// HDU carries the structural metadata of a file's current header-data
// unit. The engine does not parse headers; the HDU layer owns this data
// and records it with [File.SetHDU].
type HDU struct {
	// Index is the 0-based position of this HDU in the file.
	Index int

	// Type selects the fill byte and the unit for optimal sizing.
	Type HDUType

	// DataStart is the byte offset of the HDU's data array.
	DataStart int64

	// RowLength is the width of one table row in bytes.
	RowLength int64

	// NumRows is the number of rows in the table.
	// WriteTableBytes grows it when a write lands past the last row.
	NumRows int64

	// BytesPerPixel is the width of one image pixel in bytes.
	BytesPerPixel int
}

// File is the per-file state of the engine: the logical byte cursor, the
// tracked storage position, the on-disk and logical sizes, and the pinned
// current buffer.
//
// A File is created with [Engine.Open] and released with [File.Close].
// The engine does not open or close the underlying storage; the caller
// owns the driver's lifetime.
type File struct {
	eng *Engine
	drv fs.File

	// bytepos is the logical read/write cursor.
	bytepos int64

	// iopos is the last known storage position, used to elide redundant
	// seeks. -1 means unknown (a storage call failed mid-transfer).
	iopos int64

	// filesize is the on-disk byte length.
	filesize int64

	// logfilesize is the largest offset any buffer has been associated
	// with; it exceeds filesize while records sit beyond EOF awaiting
	// flush. Always a multiple of RecordLen.
	logfilesize int64

	// curbuf is the pool index of this file's current buffer, pinned
	// against eviction. -1 when the file holds no current buffer.
	curbuf int

	hdu     HDU
	hduPos  int
	onDrift func(index int) (HDU, error)

	closed bool
}

// Open binds a storage driver to the engine and returns its File. The
// driver position is assumed to be at offset zero (a freshly opened file).
func (e *Engine) Open(drv fs.File) (*File, error) {
	info, err := drv.Stat()
	if err != nil {
		return nil, fmt.Errorf("recbuf: stat: %w", err)
	}

	size := info.Size()

	// The logical size is record-aligned even if the on-disk file is not.
	logsize := (size + RecordLen - 1) / RecordLen * RecordLen

	return &File{
		eng:         e,
		drv:         drv,
		filesize:    size,
		logfilesize: logsize,
		curbuf:      -1,
	}, nil
}

// Close flushes the file's dirty records, unbinds its buffers, and marks
// the handle closed. The storage driver itself is left open; the caller
// owns it. If the flush fails the handle stays open so it can be retried.
func (f *File) Close() error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	if err := f.flushLocked(true); err != nil {
		return err
	}

	f.closed = true
	f.curbuf = -1

	return nil
}

// Sync writes back all dirty records and forces the storage driver's
// buffers to disk. Buffers stay bound.
func (f *File) Sync() error {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	return f.flushLocked(false)
}

// SetHDU records the structural metadata of the file's current HDU. The
// engine reads it for fill selection, table access, and optimal transfer
// sizing; [File.WriteTableBytes] grows NumRows in place.
func (f *File) SetHDU(h HDU) {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	f.hdu = h
}

// HDU returns the metadata last recorded with SetHDU (or grown by table
// writes).
func (f *File) HDU() HDU {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	return f.hdu
}

// SetHDUPosition records which HDU this handle wants operations applied
// to. When it differs from the Index recorded by SetHDU, the drift hook
// runs before the next operation.
func (f *File) SetHDUPosition(index int) {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	f.hduPos = index
}

// OnHDUDrift installs fn, invoked before an operation whenever the
// handle's HDU position differs from the recorded HDU metadata. fn
// receives the wanted 0-based index and returns the metadata of that HDU,
// which the engine applies before proceeding. fn runs with the engine
// lock held and must not call back into the engine.
func (f *File) OnHDUDrift(fn func(index int) (HDU, error)) {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	f.onDrift = fn
}

// enter runs the shared entry checks of every transfer operation: the
// handle must be open, and a drifted HDU position is resolved first.
// The engine lock must be held.
func (f *File) enter() error {
	if f.closed {
		return ErrClosed
	}

	return f.relocate()
}

// relocate runs the drift hook when the handle's HDU position has drifted
// from the recorded metadata.
func (f *File) relocate() error {
	if f.onDrift == nil || f.hduPos == f.hdu.Index {
		return nil
	}

	h, err := f.onDrift(f.hduPos)
	if err != nil {
		return fmt.Errorf("recbuf: hdu relocation: %w", err)
	}

	f.hdu = h

	return nil
}

// Position returns the logical byte cursor.
func (f *File) Position() int64 {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	return f.bytepos
}

// Size returns the on-disk byte length as tracked by the engine.
func (f *File) Size() int64 {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	return f.filesize
}

// LogicalSize returns the record-aligned logical length, including
// records buffered beyond EOF that have not been flushed yet.
func (f *File) LogicalSize() int64 {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	return f.logfilesize
}

// OptimalNData returns how many data units (image pixels or table rows)
// should be accessed per call for the pool to avoid thrashing: the
// buffers not claimed by open files, divided by the unit size.
func (f *File) OptimalNData() (int64, error) {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()

	if err := f.enter(); err != nil {
		return 0, err
	}

	e := f.eng
	avail := (int64(len(e.slots)) - int64(e.numOpenFiles())) * RecordLen

	var unit int64
	if f.hdu.Type == ImageHDU {
		unit = int64(f.hdu.BytesPerPixel)
	} else {
		unit = f.hdu.RowLength
	}

	unit = max(unit, 1)

	return max(avail/unit, 1), nil
}

// fill returns the byte used to initialize records beyond EOF.
func (f *File) fill() byte {
	if f.hdu.Type == ASCIITable {
		return ' '
	}

	return 0
}

// seekDriver positions the storage driver and records the new position.
func (f *File) seekDriver(pos int64) error {
	if _, err := f.drv.Seek(pos, io.SeekStart); err != nil {
		f.iopos = -1
		return fmt.Errorf("recbuf: seek to %d: %w", pos, err)
	}

	f.iopos = pos

	return nil
}

// readDriver reads exactly len(p) bytes at the current storage position
// and advances iopos. Short reads surface as [ErrEndOfFile].
func (f *File) readDriver(p []byte) error {
	if _, err := io.ReadFull(f.drv, p); err != nil {
		f.iopos = -1

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: short read from storage", ErrEndOfFile)
		}

		return fmt.Errorf("recbuf: read: %w", err)
	}

	f.iopos += int64(len(p))

	return nil
}

// writeDriver writes all of p at the current storage position and
// advances iopos.
func (f *File) writeDriver(p []byte) error {
	if len(p) == 0 {
		return nil
	}

	n, err := f.drv.Write(p)
	if err != nil {
		f.iopos = -1
		return fmt.Errorf("recbuf: write: %w", err)
	}

	if n != len(p) {
		f.iopos = -1
		return fmt.Errorf("recbuf: write: %w", io.ErrShortWrite)
	}

	f.iopos += int64(len(p))

	return nil
}

// fillRecord sets every byte of buf to b.
func fillRecord(buf []byte, b byte) {
	for i := range buf {
		buf[i] = b
	}
}
