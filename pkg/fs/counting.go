package fs

import (
	"os"
	"sync/atomic"
)

// Counting wraps a [File] and counts the operations performed on it.
//
// It is used by tests that need to observe the IO behavior of a cache layer:
// how many physical seeks, reads, writes, and syncs actually reached the
// storage. Counters are atomic so tests can read them while IO is in flight.
type Counting struct {
	f File

	seeks  atomic.Int64
	reads  atomic.Int64
	writes atomic.Int64
	syncs  atomic.Int64

	// bytesRead and bytesWritten accumulate transfer volume, not call counts.
	bytesRead    atomic.Int64
	bytesWritten atomic.Int64
}

// NewCounting wraps f with operation counting.
func NewCounting(f File) *Counting {
	return &Counting{f: f}
}

// Seeks returns the number of Seek calls.
func (c *Counting) Seeks() int64 { return c.seeks.Load() }

// Reads returns the number of Read calls.
func (c *Counting) Reads() int64 { return c.reads.Load() }

// Writes returns the number of Write calls.
func (c *Counting) Writes() int64 { return c.writes.Load() }

// Syncs returns the number of Sync calls.
func (c *Counting) Syncs() int64 { return c.syncs.Load() }

// BytesRead returns the total bytes returned by Read calls.
func (c *Counting) BytesRead() int64 { return c.bytesRead.Load() }

// BytesWritten returns the total bytes accepted by Write calls.
func (c *Counting) BytesWritten() int64 { return c.bytesWritten.Load() }

// Reset zeroes all counters.
func (c *Counting) Reset() {
	c.seeks.Store(0)
	c.reads.Store(0)
	c.writes.Store(0)
	c.syncs.Store(0)
	c.bytesRead.Store(0)
	c.bytesWritten.Store(0)
}

func (c *Counting) Read(p []byte) (int, error) {
	c.reads.Add(1)

	n, err := c.f.Read(p)
	c.bytesRead.Add(int64(n))

	return n, err
}

func (c *Counting) Write(p []byte) (int, error) {
	c.writes.Add(1)

	n, err := c.f.Write(p)
	c.bytesWritten.Add(int64(n))

	return n, err
}

func (c *Counting) Seek(offset int64, whence int) (int64, error) {
	c.seeks.Add(1)

	return c.f.Seek(offset, whence)
}

func (c *Counting) Sync() error {
	c.syncs.Add(1)

	return c.f.Sync()
}

func (c *Counting) Close() error { return c.f.Close() }

func (c *Counting) Stat() (os.FileInfo, error) { return c.f.Stat() }

func (c *Counting) Truncate(size int64) error { return c.f.Truncate(size) }

// Compile-time interface check.
var _ File = (*Counting)(nil)
