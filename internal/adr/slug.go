package adr

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Slugify lowercases title and keeps ASCII letters and digits. Runs of
// whitespace, '-' and '_' collapse to one dash; everything else is dropped.
// An empty result becomes "adr".
func Slugify(title string) string {
	var b strings.Builder

	lastDash := false

	for _, r := range title {
		if r >= utf8.RuneSelf {
			continue
		}

		c := unicode.ToLower(r)

		switch {
		case unicode.IsLetter(c) || unicode.IsDigit(c):
			b.WriteRune(c)

			lastDash = false
		case unicode.IsSpace(c) || c == '-' || c == '_':
			if !lastDash {
				b.WriteByte('-')

				lastDash = true
			}
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "adr"
	}

	return out
}

// ParseNumber parses a decimal ADR id such as "0003" or "3". Leading zeros are
// ignored and "0000" is 0. Returns false for anything that is not all digits
// or does not fit in 32 bits.
func ParseNumber(s string) (uint32, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	s = strings.TrimLeft(s, "0")
	if s == "" {
		return 0, true
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}

	return uint32(n), true
}

// FormatNumber zero-pads n to four digits.
func FormatNumber(n uint32) string {
	return fmt.Sprintf("%04d", n)
}

// FileName builds "{number:04}-{slug}.{ext}".
func FileName(number uint32, title, ext string) string {
	return FormatNumber(number) + "-" + Slugify(title) + "." + ext
}

var (
	filenameNumberRe = regexp.MustCompile(`^(\d{4})-`)
	firstDigitsRe    = regexp.MustCompile(`\d+`)
)

// numberFromFilename reads the leading 4-digit prefix of name.
func numberFromFilename(name string) (uint32, bool) {
	m := filenameNumberRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, false
	}

	return ParseNumber(m[1])
}

// titleFromFilename de-slugifies "0003-use-postgres.md" to "Use Postgres".
func titleFromFilename(name string) (string, bool) {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	_, slug, ok := strings.Cut(stem, "-")
	if !ok || slug == "" {
		return "", false
	}

	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}

	if len(words) == 0 {
		return "", false
	}

	return strings.Join(words, " "), true
}

// referencedNumber extracts the first digit run of a field value, so
// "0002", "2" and "[0002](0002-x.md)" all yield 2.
func referencedNumber(value string) (uint32, bool) {
	digits := firstDigitsRe.FindString(value)
	if digits == "" {
		return 0, false
	}

	return ParseNumber(digits)
}
