package fs

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func Test_Locker_LockWithTimeout_Returns_ErrWouldBlock_When_Path_Is_Locked(t *testing.T) {
	t.Parallel()

	locker := NewLocker(NewReal())
	path := filepath.Join(t.TempDir(), ".radr.lock")

	lock1, err := locker.LockWithTimeout(path, time.Second)
	if err != nil {
		t.Fatalf("LockWithTimeout(%q): %v", path, err)
	}
	defer lock1.Close()

	_, err = locker.LockWithTimeout(path, 50*time.Millisecond)
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("LockWithTimeout(%q): err=%v, want %v", path, err, ErrWouldBlock)
	}

	if !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("LockWithTimeout(%q): err=%q, want substring %q", path, err.Error(), "timed out")
	}
}

func Test_Locker_LockWithTimeout_Returns_Error_When_Timeout_Is_Non_Positive(t *testing.T) {
	t.Parallel()

	locker := NewLocker(NewReal())
	path := filepath.Join(t.TempDir(), ".radr.lock")

	_, err := locker.LockWithTimeout(path, 0)
	if !errors.Is(err, ErrInvalidTimeout) {
		t.Fatalf("LockWithTimeout(%q, 0): err=%v, want %v", path, err, ErrInvalidTimeout)
	}
}

func Test_Locker_Creates_Missing_Parent_Directory(t *testing.T) {
	t.Parallel()

	fsys := NewReal()
	locker := NewLocker(fsys)
	path := filepath.Join(t.TempDir(), "docs", "adr", ".radr.lock")

	lock, err := locker.LockWithTimeout(path, time.Second)
	if err != nil {
		t.Fatalf("LockWithTimeout(%q): %v", path, err)
	}
	defer lock.Close()

	exists, err := fsys.Exists(path)
	if err != nil || !exists {
		t.Fatalf("Exists(%q)=%v,%v, want true,nil", path, exists, err)
	}
}

func Test_Locker_Can_Reacquire_After_Close(t *testing.T) {
	t.Parallel()

	locker := NewLocker(NewReal())
	path := filepath.Join(t.TempDir(), ".radr.lock")

	for i := range 3 {
		l, err := locker.LockWithTimeout(path, time.Second)
		if err != nil {
			t.Fatalf("LockWithTimeout(%q) #%d: %v", path, i, err)
		}

		if err := l.Close(); err != nil {
			t.Fatalf("Close() #%d: %v", i, err)
		}
	}
}

func Test_Lock_Close_Is_Idempotent(t *testing.T) {
	t.Parallel()

	locker := NewLocker(NewReal())
	path := filepath.Join(t.TempDir(), ".radr.lock")

	l, err := locker.LockWithTimeout(path, time.Second)
	if err != nil {
		t.Fatalf("LockWithTimeout: %v", err)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close() first: %v", err)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close() second: %v", err)
	}
}

func Test_Locker_Retries_Flock_On_EINTR(t *testing.T) {
	t.Parallel()

	locker := NewLocker(NewReal())

	interrupts := 2
	locker.flock = func(fd int, how int) error {
		if how&unix.LOCK_EX != 0 && interrupts > 0 {
			interrupts--

			return unix.EINTR
		}

		return unix.Flock(fd, how)
	}

	path := filepath.Join(t.TempDir(), ".radr.lock")

	l, err := locker.LockWithTimeout(path, time.Second)
	if err != nil {
		t.Fatalf("LockWithTimeout: %v", err)
	}
	defer l.Close()

	if interrupts != 0 {
		t.Fatalf("interrupts left=%d, want 0", interrupts)
	}
}

func Test_Locker_Surfaces_OpenFile_Failure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".radr.lock")

	injected := NewInjected(NewReal())
	injected.Fail(OpOpenFile, path, nil)

	_, err := NewLocker(injected).LockWithTimeout(path, time.Second)
	if err == nil {
		t.Fatal("LockWithTimeout: want error, got nil")
	}

	if !IsInjected(err) {
		t.Fatalf("err=%v, want injected error", err)
	}
}
