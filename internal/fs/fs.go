// Package fs provides the filesystem abstraction used by the ADR repository.
//
// The main types are:
//   - [FS]: interface for the filesystem operations radr needs
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using [os] and atomic writes
//   - [Injected]: testing implementation that fails chosen operations
//   - [Locker]: advisory flock-based locking
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("docs/adr/0001-use-go.md")
//	if err != nil {
//	    return err
//	}
//
//	err = fsys.WriteFileAtomic("docs/adr/index.md", out, 0o644)
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
//
// This interface is satisfied by [os.File]. [File.Fd] must return a real OS
// file descriptor, since [Locker] passes it to flock(2).
type File interface {
	io.ReadWriteCloser

	// Fd returns the file descriptor. See [os.File.Fd].
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)
}

// FS defines the filesystem operations used by the repository and the CLI.
//
// All methods mirror their [os] package equivalents, except
// [FS.WriteFileAtomic] which replaces the target in one rename so readers never
// observe a half-written document.
//
// Paths use OS semantics (like the os package and path/filepath).
type FS interface {
	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a temp file in the same directory and
	// renames it over path. The parent directory must exist.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name. See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
