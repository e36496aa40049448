package adr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/calvinalkan/radr/internal/frontmatter"
)

// scanLineLimit bounds how many lines are inspected for metadata.
const scanLineLimit = 200

// Field is a metadata field managed by radr.
type Field int

// Managed fields.
const (
	FieldTitle Field = iota
	FieldDate
	FieldStatus
	FieldSupersedes
	FieldSupersededBy
)

var (
	fieldPrefixes = [...]string{"Title:", "Date:", "Status:", "Supersedes:", "Superseded-by:"}
	fieldKeys     = [...]string{"title", "date", "status", "supersedes", "superseded_by"}

	// frontMatterKeyOrder is the order managed keys are written in; unknown
	// keys follow in their original order.
	frontMatterKeyOrder = []string{"number", "title", "date", "status", "superseded_by", "supersedes"}

	headingRe = regexp.MustCompile(`^#\s+ADR\s+(\d+):\s*(.*?)\s*$`)
)

// Prefix returns the plain-format line prefix, e.g. "Status:".
func (f Field) Prefix() string {
	return fieldPrefixes[f]
}

// Key returns the front-matter key, e.g. "superseded_by".
func (f Field) Key() string {
	return fieldKeys[f]
}

func (f Field) numeric() bool {
	return f == FieldSupersedes || f == FieldSupersededBy
}

// matchField reports which managed field line starts with and its trimmed value.
func matchField(line string) (Field, string, bool) {
	for i, prefix := range fieldPrefixes {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return Field(i), strings.TrimSpace(rest), true
		}
	}

	return 0, "", false
}

type parsedFields struct {
	number       uint32
	hasNumber    bool
	title        string
	date         string
	status       string
	supersedes   uint32
	supersededBy uint32
}

func (p *parsedFields) set(f Field, value string) {
	switch f {
	case FieldTitle:
		if value != "" {
			p.title = value
		}
	case FieldDate:
		if value != "" {
			p.date = value
		}
	case FieldStatus:
		if value != "" {
			p.status = value
		}
	case FieldSupersedes:
		if n, ok := referencedNumber(value); ok {
			p.supersedes = n
		}
	case FieldSupersededBy:
		if n, ok := referencedNumber(value); ok {
			p.supersededBy = n
		}
	}
}

// fill copies fields of o that p does not have yet.
func (p *parsedFields) fill(o parsedFields) {
	if !p.hasNumber && o.hasNumber {
		p.number, p.hasNumber = o.number, true
	}

	if p.title == "" {
		p.title = o.title
	}

	if p.date == "" {
		p.date = o.date
	}

	if p.status == "" {
		p.status = o.status
	}

	if p.supersedes == 0 {
		p.supersedes = o.supersedes
	}

	if p.supersededBy == 0 {
		p.supersededBy = o.supersededBy
	}
}

func fieldsFromFrontMatter(fm *frontmatter.Frontmatter) parsedFields {
	var p parsedFields

	if v, ok := fm.GetString("number"); ok {
		p.number, p.hasNumber = referencedNumber(v)
	}

	for f := FieldTitle; f <= FieldSupersededBy; f++ {
		if v, ok := fm.GetString(f.Key()); ok {
			p.set(f, strings.TrimSpace(v))
		}
	}

	return p
}

// scanPlain reads the heading on the first line and the "Field: value" lines
// after it. The first blank line after a metadata line ends the scan.
func scanPlain(text string) parsedFields {
	var p parsedFields

	inMeta := false

	for i, line := range splitLines(text, scanLineLimit) {
		line = strings.TrimRight(line, "\r")

		if i == 0 {
			if m := headingRe.FindStringSubmatch(line); m != nil {
				p.number, p.hasNumber = ParseNumber(m[1])
				p.title = m[2]

				continue
			}
		}

		if f, value, ok := matchField(line); ok {
			p.set(f, value)

			inMeta = true

			continue
		}

		if inMeta && strings.TrimSpace(line) == "" {
			break
		}
	}

	return p
}

// Parse reads raw into a Record. name is the document's path; its base name
// supplies the number and title when the content has none. today fills a
// missing date.
//
// A front-matter block that cannot be decoded contributes no fields.
// Metadata lines after the block fill fields the block lacks.
func Parse(raw, name, today string) Record {
	rec := Record{Path: name, Format: FormatPlain}

	var fields parsedFields

	body := raw

	if frontmatter.HasFrontmatter([]byte(raw)) {
		rec.Format = FormatFrontMatter

		block, tail, err := frontmatter.Split([]byte(raw), frontmatter.WithLineLimit(scanLineLimit))
		if err == nil {
			body = string(tail)

			fm, decodeErr := frontmatter.Decode(block)
			if decodeErr == nil {
				fields = fieldsFromFrontMatter(fm)
			}
		}

		fields.fill(scanPlain(body))
	} else {
		fields = scanPlain(body)
	}

	if !fields.hasNumber {
		fields.number, fields.hasNumber = numberFromFilename(name)
	}

	if fields.title == "" {
		title, ok := titleFromFilename(name)
		if !ok {
			title = "Untitled"
		}

		fields.title = title
	}

	if fields.status == "" {
		fields.status = StatusAccepted
	}

	if fields.date == "" {
		fields.date = today
	}

	rec.Number = fields.number
	rec.Title = fields.title
	rec.Status = fields.status
	rec.Date = fields.date
	rec.Supersedes = fields.supersedes
	rec.SupersededBy = fields.supersededBy
	rec.Tail = StripHeader(raw)

	return rec
}

// StripHeader returns the part of raw that follows the managed header,
// whichever representation raw uses: the front-matter block and the blank
// lines after it, the "# " heading, one blank line, and the run of metadata
// lines that follows.
func StripHeader(raw string) string {
	text := raw

	if frontmatter.HasFrontmatter([]byte(raw)) {
		_, tail, err := frontmatter.Split([]byte(raw), frontmatter.WithLineLimit(scanLineLimit))
		if err == nil {
			text = string(tail)
		}
	}

	lines := strings.SplitAfter(text, "\n")
	i := 0

	if i < len(lines) && strings.HasPrefix(lines[i], "# ") {
		i++
	}

	if i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	for i < len(lines) {
		if _, _, ok := matchField(lines[i]); !ok {
			break
		}

		i++
	}

	if i >= len(lines) {
		return ""
	}

	return strings.Join(lines[i:], "")
}

// RenderHeader renders the managed header of rec in format. links resolves
// referenced numbers to filenames; see [Render].
func RenderHeader(rec Record, format Format, links map[uint32]string) string {
	// A fresh block holds only scalars, so encoding cannot fail.
	header, _ := renderHeader(rec, format, links, nil)

	return header
}

// renderHeader writes the managed fields over base, which may carry keys radr
// does not manage. A nil base starts from an empty block.
func renderHeader(rec Record, format Format, links map[uint32]string, base *frontmatter.Frontmatter) (string, error) {
	var b strings.Builder

	heading := "# ADR " + FormatNumber(rec.Number) + ": " + rec.Title + "\n"

	if format == FormatFrontMatter {
		fm := base
		if fm == nil {
			fm = frontmatter.New()
		}

		fm.SetInt("number", int64(rec.Number))
		fm.SetString("title", rec.Title)
		fm.SetString("date", rec.Date)
		fm.SetString("status", rec.Status)

		if rec.SupersededBy != 0 {
			fm.SetInt(FieldSupersededBy.Key(), int64(rec.SupersededBy))
		} else {
			fm.Delete(FieldSupersededBy.Key())
		}

		if rec.Supersedes != 0 {
			fm.SetInt(FieldSupersedes.Key(), int64(rec.Supersedes))
		} else {
			fm.Delete(FieldSupersedes.Key())
		}

		block, err := fm.MarshalYAML(frontmatter.WithKeyOrder(frontMatterKeyOrder))
		if err != nil {
			return "", fmt.Errorf("encoding front matter: %w", err)
		}

		b.WriteString(block)
		b.WriteString("\n")
		b.WriteString(heading)

		if rec.Supersedes != 0 {
			b.WriteString("\n")
			writeField(&b, FieldSupersedes, reference(rec.Supersedes, links))
		}

		return b.String(), nil
	}

	b.WriteString(heading)
	b.WriteString("\n")
	writeField(&b, FieldDate, rec.Date)
	writeField(&b, FieldStatus, rec.Status)

	if rec.SupersededBy != 0 {
		writeField(&b, FieldSupersededBy, FormatNumber(rec.SupersededBy))
	}

	if rec.Supersedes != 0 {
		writeField(&b, FieldSupersedes, reference(rec.Supersedes, links))
	}

	return b.String(), nil
}

// Render renders rec in format followed by tail. A non-empty tail is
// separated from the header by one blank line. Supersedes renders as
// "[NNNN](file)" when links has the referenced number and as a bare number
// otherwise.
func Render(rec Record, format Format, tail string, links map[uint32]string) string {
	return joinTail(RenderHeader(rec, format, links), tail)
}

// Reencode re-renders the header of raw from rec in format and keeps the
// content after the old header. Front-matter keys radr does not manage are
// carried over when both raw and format use front matter. A block that cannot
// be decoded is replaced by a fresh one.
func Reencode(raw string, rec Record, format Format, links map[uint32]string) (string, error) {
	var base *frontmatter.Frontmatter

	if format == FormatFrontMatter && frontmatter.HasFrontmatter([]byte(raw)) {
		block, _, err := frontmatter.Split([]byte(raw), frontmatter.WithLineLimit(scanLineLimit))
		if err == nil {
			if fm, decodeErr := frontmatter.Decode(block); decodeErr == nil {
				base = fm
			}
		}
	}

	header, err := renderHeader(rec, format, links, base)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, rec.Path)
	}

	return joinTail(header, StripHeader(raw)), nil
}

func joinTail(header, tail string) string {
	if tail == "" {
		return header
	}

	if !strings.HasPrefix(tail, "\n") && !strings.HasPrefix(tail, "\r\n") {
		tail = "\n" + tail
	}

	return header + tail
}

func writeField(b *strings.Builder, f Field, value string) {
	b.WriteString(f.Prefix())
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}

// splitLines splits text on "\n" without the trailing empty element, keeping
// at most limit lines (0 means all).
func splitLines(text string, limit int) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}

	return lines
}
