package fs

import (
	"os"
	"syscall"
)

// Flaky wraps a [File] and fails a chosen operation deterministically.
//
// Unlike probabilistic fault injection, Flaky fails the Nth call of one
// operation kind and passes everything else through. Tests use it to check
// that storage errors propagate unchanged and that dirty state survives a
// failed flush.
//
// The zero value never injects. Configure by setting FailOp and FailAt.
type Flaky struct {
	f File

	// FailOp selects which operation kind to fail.
	FailOp FlakyOp

	// FailAt is the 1-based call number of FailOp that fails.
	// 0 disables injection.
	FailAt int

	// Err is the error returned on injection. Defaults to EIO.
	Err error

	calls int
}

// FlakyOp identifies an operation kind for fault injection.
type FlakyOp int

const (
	// FlakyNone disables injection.
	FlakyNone FlakyOp = iota

	// FlakyRead fails a Read call.
	FlakyRead

	// FlakyWrite fails a Write call.
	FlakyWrite

	// FlakySeek fails a Seek call.
	FlakySeek

	// FlakySync fails a Sync call.
	FlakySync
)

// NewFlaky wraps f. The returned Flaky injects nothing until configured.
func NewFlaky(f File) *Flaky {
	return &Flaky{f: f}
}

// fire reports whether the current call of kind op should fail.
func (fl *Flaky) fire(op FlakyOp) bool {
	if fl.FailOp != op || fl.FailAt == 0 {
		return false
	}

	fl.calls++

	return fl.calls == fl.FailAt
}

func (fl *Flaky) err() error {
	if fl.Err != nil {
		return fl.Err
	}

	return syscall.EIO
}

func (fl *Flaky) Read(p []byte) (int, error) {
	if fl.fire(FlakyRead) {
		return 0, fl.err()
	}

	return fl.f.Read(p)
}

func (fl *Flaky) Write(p []byte) (int, error) {
	if fl.fire(FlakyWrite) {
		return 0, fl.err()
	}

	return fl.f.Write(p)
}

func (fl *Flaky) Seek(offset int64, whence int) (int64, error) {
	if fl.fire(FlakySeek) {
		return 0, fl.err()
	}

	return fl.f.Seek(offset, whence)
}

func (fl *Flaky) Sync() error {
	if fl.fire(FlakySync) {
		return fl.err()
	}

	return fl.f.Sync()
}

func (fl *Flaky) Close() error { return fl.f.Close() }

func (fl *Flaky) Stat() (os.FileInfo, error) { return fl.f.Stat() }

func (fl *Flaky) Truncate(size int64) error { return fl.f.Truncate(size) }

// Compile-time interface check.
var _ File = (*Flaky)(nil)
