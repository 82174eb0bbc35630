// Package fs provides the storage boundary used by the record buffer engine,
// plus instrumented implementations for testing.
//
// The main types are:
//   - [File]: interface for an open, seekable file (satisfied by [os.File])
//   - [FS]: interface for the filesystem operations the tools need
//   - [Real]: production implementation using the [os] package
//   - [Counting]: testing wrapper that counts seeks/reads/writes/syncs
//   - [Flaky]: testing wrapper that fails a chosen operation deterministically
//
// Example usage:
//
//	fsys := fs.NewReal()
//	f, err := fsys.OpenFile("image.fits", os.O_RDWR|os.O_CREATE, 0o666)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
package fs

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor with a mutable position.
//
// This interface is satisfied by [os.File]. It is the storage driver consumed
// by the record buffer engine: the engine calls Stat once when a file is
// opened and otherwise only Seek, Read, Write, and Sync; Truncate exists for
// the handle's owner (open/close and file sizing live outside the engine).
//
// Note: [File] includes [io.Writer] even for read-only handles. Like
// [os.File], implementations should return an error from Write when the file
// wasn't opened for writing.
type File interface {
	// Embedded interfaces from [io] package.
	// These provide Read, Write, Close, and Seek methods.
	io.ReadWriteCloser
	io.Seeker

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Truncate changes the size of the file. See [os.File.Truncate].
	Truncate(size int64) error
}

// FS defines the filesystem operations the fitsbuf tools use.
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing. Paths use OS semantics (like the os package and
// path/filepath), not the slash-separated paths of io/fs.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// Create creates or truncates a file for writing. See [os.Create].
	// The file is created with mode 0666 (before umask).
	Create(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See
	// [os.OpenFile]. Use this for fine-grained control (read-write,
	// exclusive create, etc).
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if the file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// Rename moves/renames a file or directory. See [os.Rename].
	// Atomic on the same filesystem.
	Rename(oldpath, newpath string) error
}

// Compile-time interface checks.
var (
	_ File = (*os.File)(nil)
	_ FS   = (*Real)(nil)
)
