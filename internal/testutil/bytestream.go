package testutil

import "strings"

// ByteStream reads bytes sequentially from a byte slice.
//
// Fuzz tests use it to derive operations deterministically from fuzz input.
// Once exhausted every read returns the zero value, so the same input always
// produces the same sequence.
type ByteStream struct {
	bytes []byte
	pos   int
}

// NewByteStream creates a stream over b.
func NewByteStream(b []byte) *ByteStream {
	return &ByteStream{bytes: b}
}

// HasMore reports whether unread bytes remain.
func (s *ByteStream) HasMore() bool {
	return s.pos < len(s.bytes)
}

// NextByte returns the next byte, or 0 if exhausted.
func (s *ByteStream) NextByte() byte {
	if s.pos >= len(s.bytes) {
		return 0
	}

	v := s.bytes[s.pos]
	s.pos++

	return v
}

// NextInt returns a value in [0, maxVal) derived from the next byte.
func (s *ByteStream) NextInt(maxVal int) int {
	if maxVal <= 0 {
		return 0
	}

	return int(s.NextByte()) % maxVal
}

// NextBool returns a boolean derived from the next byte.
func (s *ByteStream) NextBool() bool {
	return s.NextByte()&1 == 1
}

// Percent reports whether the next byte falls under rate percent.
func (s *ByteStream) Percent(rate int) bool {
	return s.NextInt(100) < rate
}

// titleWords mixes plain words with ones that need quoting in YAML or
// collapse in slugs.
var titleWords = []string{
	"use", "Postgres", "cache", "Redis", "event", "sourcing", "API:", "v2",
	`"fast"`, "path", "it's", "no-op", "gRPC", "queue_depth", "#tags", "yes",
	"C:\\tmp", "-flag", "über", "null",
}

// NextTitle returns a title of one to four words.
func (s *ByteStream) NextTitle() string {
	n := 1 + s.NextInt(4)
	words := make([]string, n)

	for i := range words {
		words[i] = titleWords[s.NextInt(len(titleWords))]
	}

	return strings.Join(words, " ")
}
