// Package adr implements the ADR document model: parsing and rendering the
// plain and front-matter representations, in-place field updates, the
// generated index, the file repository and the mutation engine that ties
// them together.
package adr

import (
	"path/filepath"
	"strings"
)

// Format is the on-disk representation of a Record.
type Format int

const (
	// FormatPlain is a "# ADR NNNN: Title" heading followed by
	// "Field: value" lines.
	FormatPlain Format = iota
	// FormatFrontMatter is a fenced YAML block followed by the heading.
	FormatFrontMatter
)

func (f Format) String() string {
	if f == FormatFrontMatter {
		return "front-matter"
	}

	return "plain"
}

// Record is the parsed form of one ADR document.
//
// Supersedes and SupersededBy are 0 when unset; ADR numbers start at 1.
type Record struct {
	Number       uint32
	Title        string
	Status       string
	Date         string
	Supersedes   uint32
	SupersededBy uint32
	Format       Format
	Path         string

	// Tail is the document content after the managed header.
	Tail string
}

// Filename returns the base name of Path.
func (r Record) Filename() string {
	return filepath.Base(r.Path)
}

// Ext returns the extension of Path without the dot.
func (r Record) Ext() string {
	return strings.TrimPrefix(filepath.Ext(r.Path), ".")
}

// IsSuperseded reports whether another ADR replaces this one.
func (r Record) IsSuperseded() bool {
	return r.SupersededBy != 0
}

// SupersededStatus is the status text for an ADR replaced by n.
func SupersededStatus(n uint32) string {
	return statusSupersededPrefix + FormatNumber(n)
}

// filenames maps each number to the filename of the first record carrying it.
// records must already be in canonical order.
func filenames(records []Record) map[uint32]string {
	m := make(map[uint32]string, len(records))

	for _, r := range records {
		if _, ok := m[r.Number]; !ok {
			m[r.Number] = r.Filename()
		}
	}

	return m
}

// reference renders n as "[NNNN](file)" when n is in links, else "NNNN".
func reference(n uint32, links map[uint32]string) string {
	if name, ok := links[n]; ok {
		return "[" + FormatNumber(n) + "](" + name + ")"
	}

	return FormatNumber(n)
}
