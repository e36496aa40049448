package adr

import (
	"fmt"
	"slices"
	"strings"

	"github.com/calvinalkan/radr/internal/frontmatter"
)

// FieldUpdate sets one managed field.
type FieldUpdate struct {
	Field Field
	Value string
}

// UpdateFields applies updates to raw without re-rendering the document.
//
// Plain documents are edited line by line within the first 200 lines: a line
// carrying the field's prefix is overwritten, a missing field is inserted.
// Status and Date are inserted at line index 1 (after the heading); Title and
// Supersedes after the Status line. Superseded-by is always moved to the line
// right after Status. Everything else is left byte-for-byte.
//
// Front-matter documents have their block decoded, changed and re-encoded;
// the content after the block is kept as is. A block that cannot be decoded
// yields [ErrMalformedFrontMatter].
//
// Applying the same updates twice gives the same result as applying them once.
func UpdateFields(raw string, updates ...FieldUpdate) (string, error) {
	if frontmatter.HasFrontmatter([]byte(raw)) {
		return updateFrontMatter(raw, updates)
	}

	return updatePlain(raw, updates), nil
}

func updatePlain(raw string, updates []FieldUpdate) string {
	trailingNewline := raw == "" || strings.HasSuffix(raw, "\n")
	lines := splitLines(raw, 0)

	// Lines keep their "\r" after splitting on "\n"; written lines match.
	eol := ""
	if strings.Contains(raw, "\r\n") {
		eol = "\r"
	}

	var supersededBy *FieldUpdate

	for i := range updates {
		u := updates[i]
		if u.Field == FieldSupersededBy {
			supersededBy = &updates[i]

			continue
		}

		line := u.Field.Prefix() + " " + u.Value + eol

		if idx := findField(lines, u.Field); idx >= 0 {
			lines[idx] = line

			continue
		}

		at := min(1, len(lines))

		if u.Field == FieldTitle || u.Field == FieldSupersedes {
			if status := findField(lines, FieldStatus); status >= 0 {
				at = status + 1
			}
		}

		lines = slices.Insert(lines, at, line)
	}

	if supersededBy != nil {
		lines = placeSupersededBy(lines, supersededBy.Value+eol)
	}

	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	} else if eol != "" && !strings.HasSuffix(raw, eol) {
		out = strings.TrimSuffix(out, eol)
	}

	return out
}

// placeSupersededBy removes every Superseded-by line in the scan window and
// inserts one right after Status (or at index 1 without a Status line).
func placeSupersededBy(lines []string, value string) []string {
	limit := min(len(lines), scanLineLimit)
	kept := lines[:0:0]

	for i, line := range lines {
		if i < limit {
			if f, _, ok := matchField(line); ok && f == FieldSupersededBy {
				continue
			}
		}

		kept = append(kept, line)
	}

	at := min(1, len(kept))
	if status := findField(kept, FieldStatus); status >= 0 {
		at = status + 1
	}

	return slices.Insert(kept, at, FieldSupersededBy.Prefix()+" "+value)
}

// findField returns the index of the first line carrying f's prefix within the
// scan window, or -1.
func findField(lines []string, f Field) int {
	limit := min(len(lines), scanLineLimit)

	for i := range limit {
		if strings.HasPrefix(lines[i], f.Prefix()) {
			return i
		}
	}

	return -1
}

func updateFrontMatter(raw string, updates []FieldUpdate) (string, error) {
	block, tail, err := frontmatter.Split([]byte(raw),
		frontmatter.WithLineLimit(scanLineLimit),
		frontmatter.WithTrimLeadingBlankTail(false),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedFrontMatter, err)
	}

	fm, err := frontmatter.Decode(block)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedFrontMatter, err)
	}

	for _, u := range updates {
		if u.Field.numeric() {
			n, ok := referencedNumber(u.Value)
			if !ok {
				return "", fmt.Errorf("%w: %s %q", ErrInvalidNumber, u.Field.Key(), u.Value)
			}

			fm.SetInt(u.Field.Key(), int64(n))

			continue
		}

		fm.SetString(u.Field.Key(), u.Value)
	}

	encoded, err := fm.MarshalYAML(frontmatter.WithKeyOrder(frontMatterKeyOrder))
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}

	return encoded + string(tail), nil
}
