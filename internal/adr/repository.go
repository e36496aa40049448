package adr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/calvinalkan/radr/internal/fs"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Repository lists, reads and writes ADR documents. The engine only talks to
// storage through this interface.
type Repository interface {
	// List parses every managed document in canonical order (see
	// [SortRecords]). A missing directory yields an empty list.
	List() ([]Record, error)
	// Read returns the raw content at path.
	Read(path string) (string, error)
	// Write replaces the content at path, creating parent directories.
	Write(path, content string) error
	// Remove deletes path.
	Remove(path string) error
}

// Clock returns the current time.
type Clock func() time.Time

// Today formats the clock's date as YYYY-MM-DD.
func (c Clock) Today() string {
	return c().Format(time.DateOnly)
}

// FSRepository stores ADRs as files in one directory.
//
// Managed files match ^\d{4}-.*\.(ext)$ where ext is the configured extension,
// md or mdx.
type FSRepository struct {
	fs    fs.FS
	dir   string
	re    *regexp.Regexp
	clock Clock
}

// NewFSRepository returns a repository over dir. ext is the configured
// document extension. A nil clock uses time.Now.
func NewFSRepository(fsys fs.FS, dir, ext string, clock Clock) *FSRepository {
	if clock == nil {
		clock = time.Now
	}

	exts := []string{"md", "mdx"}
	if ext != "" && !slices.Contains(exts, ext) {
		exts = append(exts, ext)
	}

	quoted := make([]string, len(exts))
	for i, e := range exts {
		quoted[i] = regexp.QuoteMeta(e)
	}

	return &FSRepository{
		fs:    fsys,
		dir:   dir,
		re:    regexp.MustCompile(`^\d{4}-.*\.(` + strings.Join(quoted, "|") + `)$`),
		clock: clock,
	}
}

// Dir returns the ADR directory.
func (r *FSRepository) Dir() string {
	return r.dir
}

// List implements [Repository].
func (r *FSRepository) List() ([]Record, error) {
	entries, err := r.fs.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading ADR directory %s: %w", r.dir, err)
	}

	today := r.clock.Today()
	records := make([]Record, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !r.re.MatchString(entry.Name()) {
			continue
		}

		path := filepath.Join(r.dir, entry.Name())

		raw, readErr := r.Read(path)
		if readErr != nil {
			return nil, readErr
		}

		records = append(records, Parse(raw, path, today))
	}

	SortRecords(records)

	return records, nil
}

// Read implements [Repository].
func (r *FSRepository) Read(path string) (string, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return string(data), nil
}

// Write implements [Repository]. The file is replaced atomically.
func (r *FSRepository) Write(path, content string) error {
	err := r.fs.MkdirAll(filepath.Dir(path), dirPerm)
	if err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	err = r.fs.WriteFileAtomic(path, []byte(content), filePerm)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// Remove implements [Repository].
func (r *FSRepository) Remove(path string) error {
	err := r.fs.Remove(path)
	if err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}

	return nil
}

var _ Repository = (*FSRepository)(nil)
