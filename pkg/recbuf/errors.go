package recbuf

import "errors"

// Sentinel errors returned by recbuf operations.
//
// Callers should use [errors.Is] to check error types. Storage driver
// errors are wrapped, not replaced; unwrap with [errors.Is]/[errors.As]
// against the driver's own error values.
var (
	// ErrNegativePos indicates a seek to a negative byte position.
	//
	// This is a programming error. No state changes.
	ErrNegativePos = errors.New("recbuf: negative file position")

	// ErrEndOfFile indicates a read positioned at or beyond the logical
	// end of file while EOF reporting was requested.
	//
	// No state changes. Seeking with [IgnoreEOF] instead treats the region
	// past EOF as zero-extended (fill-initialized).
	ErrEndOfFile = errors.New("recbuf: end of file")

	// ErrTooManyFiles indicates every buffer in the pool is pinned as some
	// file's current record and none can be evicted.
	//
	// This happens when more files are simultaneously active than the pool
	// has buffers. Recovery: close files, or construct the [Engine] with a
	// larger NBuf.
	ErrTooManyFiles = errors.New("recbuf: too many open files")

	// ErrBadRowNum indicates a table access with a row number before the
	// first row or past the last row of the table.
	ErrBadRowNum = errors.New("recbuf: bad row number")

	// ErrBadElemNum indicates a table access starting before the first
	// byte of a row, or a grouped transfer whose group size exceeds
	// RecordLen or whose gap is negative.
	ErrBadElemNum = errors.New("recbuf: bad element number")

	// ErrClosed indicates the [File] has already been closed.
	//
	// This is a programming error.
	ErrClosed = errors.New("recbuf: closed")
)
