// Package recbuf provides buffered record IO for FITS files.
//
// FITS files are aligned to fixed 2880-byte records. recbuf mediates all
// byte reads and writes on open files through a small pool of record
// buffers shared by every file opened on the same [Engine]:
//
//   - small transfers go through the pool for locality (an LRU cache keyed
//     by file and record number)
//   - large transfers bypass the pool and go straight to storage, after
//     flushing any overlapping dirty records; large writes also
//     invalidate the overlapping cached records, large reads keep them
//   - dirty records are written back on demand; records buffered beyond
//     the end of file are flushed in ascending order with zero-filled
//     records bridging any gap (sparse writes)
//
// # Basic Usage
//
//	eng := recbuf.New(recbuf.Options{})
//
//	f, err := eng.Open(drv) // drv is an fs.File, e.g. an *os.File
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	if err := f.Seek(0, recbuf.IgnoreEOF); err != nil {
//	    return err
//	}
//	if err := f.PutBytes(data); err != nil {
//	    return err
//	}
//	if err := f.Flush(false); err != nil {
//	    return err
//	}
//
// # Concurrency
//
// An [Engine] serializes all operations on all of its files behind a single
// mutex. Operations block for the duration of any storage IO they perform;
// there is no internal parallelism and no cancellation.
//
// # Error Handling
//
// Validation failures return the sentinel errors in errors.go and leave all
// state unchanged. Storage errors propagate wrapped; a record that fails to
// flush stays dirty so that a retry or a later Close can still write it.
package recbuf
