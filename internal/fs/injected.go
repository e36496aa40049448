package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"sync"
	"syscall"
)

// Op names a filesystem operation that [Injected] can fail.
type Op string

// Operations that can be failed by [Injected].
const (
	OpOpenFile        Op = "open"
	OpReadFile        Op = "read"
	OpWriteFileAtomic Op = "write"
	OpReadDir         Op = "readdir"
	OpMkdirAll        Op = "mkdir"
	OpStat            Op = "stat"
	OpRemove          Op = "remove"
)

// InjectedError marks an error as intentionally injected by [Injected].
//
// It wraps the underlying error so errors.Is/As continue to work.
type InjectedError struct {
	Op   Op
	Path string
	Err  error
}

func (e *InjectedError) Error() string {
	return "injected " + string(e.Op) + " " + e.Path + ": " + e.Err.Error()
}

func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected by [Injected].
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

// Injected wraps an [FS] and fails chosen (operation, path) pairs.
//
// Faults are registered with [Injected.Fail] and stay armed until
// [Injected.Clear]. An empty path matches every path for that operation.
// Injected is safe for concurrent use.
type Injected struct {
	inner FS

	mu     sync.Mutex
	faults map[Op]map[string]error
	calls  map[Op]int
}

// NewInjected wraps inner. A nil inner uses [Real].
func NewInjected(inner FS) *Injected {
	if inner == nil {
		inner = NewReal()
	}

	return &Injected{
		inner:  inner,
		faults: make(map[Op]map[string]error),
		calls:  make(map[Op]int),
	}
}

// Fail arms a fault: op on path returns err. A nil err defaults to EIO.
func (f *Injected) Fail(op Op, path string, err error) {
	if err == nil {
		err = &iofs.PathError{Op: string(op), Path: path, Err: syscall.EIO}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.faults[op] == nil {
		f.faults[op] = make(map[string]error)
	}

	f.faults[op][path] = err
}

// Clear disarms all faults.
func (f *Injected) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.faults = make(map[Op]map[string]error)
}

// Calls returns how many times op was attempted, including failed attempts.
func (f *Injected) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

func (f *Injected) check(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++

	byPath := f.faults[op]
	if byPath == nil {
		return nil
	}

	err, ok := byPath[path]
	if !ok {
		err, ok = byPath[""]
	}

	if !ok {
		return nil
	}

	return &InjectedError{Op: op, Path: path, Err: err}
}

func (f *Injected) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	err := f.check(OpOpenFile, path)
	if err != nil {
		return nil, err
	}

	return f.inner.OpenFile(path, flag, perm)
}

func (f *Injected) ReadFile(path string) ([]byte, error) {
	err := f.check(OpReadFile, path)
	if err != nil {
		return nil, err
	}

	return f.inner.ReadFile(path)
}

func (f *Injected) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	err := f.check(OpWriteFileAtomic, path)
	if err != nil {
		return err
	}

	return f.inner.WriteFileAtomic(path, data, perm)
}

func (f *Injected) ReadDir(path string) ([]os.DirEntry, error) {
	err := f.check(OpReadDir, path)
	if err != nil {
		return nil, err
	}

	return f.inner.ReadDir(path)
}

func (f *Injected) MkdirAll(path string, perm os.FileMode) error {
	err := f.check(OpMkdirAll, path)
	if err != nil {
		return err
	}

	return f.inner.MkdirAll(path, perm)
}

func (f *Injected) Stat(path string) (os.FileInfo, error) {
	err := f.check(OpStat, path)
	if err != nil {
		return nil, err
	}

	return f.inner.Stat(path)
}

// Exists shares the [OpStat] fault set.
func (f *Injected) Exists(path string) (bool, error) {
	err := f.check(OpStat, path)
	if err != nil {
		return false, err
	}

	return f.inner.Exists(path)
}

func (f *Injected) Remove(path string) error {
	err := f.check(OpRemove, path)
	if err != nil {
		return err
	}

	return f.inner.Remove(path)
}

var _ FS = (*Injected)(nil)
