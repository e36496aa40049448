package adr

import (
	"cmp"
	"slices"
	"strings"
)

const indexHeader = "# Architecture Decision Records\n\n"

// SortRecords orders records by number, then filename. Lookups by number take
// the first match in this order.
func SortRecords(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := cmp.Compare(a.Number, b.Number); c != 0 {
			return c
		}

		return cmp.Compare(a.Filename(), b.Filename())
	})
}

// RenderIndex renders the index document. records may be in any order.
//
// Each record becomes one "- " list item of the form
//
//	[NNNN: Title](file) — Status: S — Date: D
//
// where S is "Superseded by [NNNN](file)" for a superseded record, with the
// link pointing at the replacing record's current filename.
func RenderIndex(records []Record) string {
	sorted := slices.Clone(records)
	SortRecords(sorted)

	links := filenames(sorted)

	var b strings.Builder

	b.WriteString(indexHeader)

	for _, r := range sorted {
		status := r.Status
		if r.SupersededBy != 0 {
			status = statusSupersededPrefix + reference(r.SupersededBy, links)
		}

		b.WriteString("- [")
		b.WriteString(FormatNumber(r.Number))
		b.WriteString(": ")
		b.WriteString(r.Title)
		b.WriteString("](")
		b.WriteString(r.Filename())
		b.WriteString(") — Status: ")
		b.WriteString(status)
		b.WriteString(" — Date: ")
		b.WriteString(r.Date)
		b.WriteString("\n")
	}

	b.WriteString("\n")

	return b.String()
}
