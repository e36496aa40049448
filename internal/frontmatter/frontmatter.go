// Package frontmatter splits, decodes and re-encodes the fenced YAML block at
// the top of a markdown document:
//
//	---
//	number: 3
//	title: Use Postgres
//	date: "2024-05-01"
//	status: Accepted
//	tags:
//	  - storage
//	---
//
//	# ADR 0003: Use Postgres
//
// Decoding goes through gopkg.in/yaml.v3 and keeps the original key order, so
// keys this package does not know about survive a decode/encode round trip.
// Scalar string values are written with [Escape]; nested values are
// re-encoded by yaml.v3 with a two-space indent.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	delimiter           = "---"
	maxFrontmatterLines = 200 // Default line limit; override with WithLineLimit.
)

var (
	// ErrMissingOpen is returned when the first line is not "---".
	ErrMissingOpen = errors.New("missing opening delimiter")
	// ErrUnclosed is returned when no closing "---" follows the opening one.
	ErrUnclosed = errors.New("missing closing delimiter")
	// ErrLineLimit is returned when the block is longer than the line limit.
	ErrLineLimit = errors.New("frontmatter exceeds line limit")
	// ErrNotMapping is returned when the block is valid YAML but not a mapping.
	ErrNotMapping = errors.New("frontmatter is not a mapping")
)

// ParseOptions configures frontmatter splitting.
type ParseOptions struct {
	// LineLimit is the maximum number of lines scanned for the closing
	// delimiter. A value of 0 disables the limit.
	LineLimit int
	// TrimLeadingBlankTail removes leading blank line(s) from the tail after
	// the closing delimiter.
	TrimLeadingBlankTail bool
}

// ParseOption mutates ParseOptions.
type ParseOption func(*ParseOptions)

// WithLineLimit sets the maximum number of frontmatter lines. Use 0 to disable
// the limit entirely.
func WithLineLimit(limit int) ParseOption {
	return func(opts *ParseOptions) {
		if limit < 0 {
			limit = 0
		}

		opts.LineLimit = limit
	}
}

// WithTrimLeadingBlankTail toggles removal of leading blank lines from the tail.
func WithTrimLeadingBlankTail(trim bool) ParseOption {
	return func(opts *ParseOptions) {
		opts.TrimLeadingBlankTail = trim
	}
}

func applyParseOptions(opts []ParseOption) ParseOptions {
	options := ParseOptions{LineLimit: maxFrontmatterLines, TrimLeadingBlankTail: true}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(&options)
	}

	return options
}

// HasFrontmatter reports whether src starts with a "---" delimiter line.
func HasFrontmatter(src []byte) bool {
	line, _, _ := bytes.Cut(src, []byte("\n"))

	return isDelimiter(line)
}

// Split separates the fenced block from the rest of the document. block holds
// the lines between the delimiters; tail starts after the closing delimiter
// line (leading blank lines trimmed by default).
//
// Defaults: LineLimit=200, TrimLeadingBlankTail=true.
func Split(src []byte, opts ...ParseOption) ([]byte, []byte, error) {
	options := applyParseOptions(opts)

	first, rest, found := bytes.Cut(src, []byte("\n"))
	if !isDelimiter(first) {
		return nil, nil, ErrMissingOpen
	}

	if !found {
		return nil, nil, ErrUnclosed
	}

	offset := 0
	lines := 0

	for offset <= len(rest) {
		if options.LineLimit > 0 && lines >= options.LineLimit {
			return nil, nil, fmt.Errorf("%w (%d)", ErrLineLimit, options.LineLimit)
		}

		end := bytes.IndexByte(rest[offset:], '\n')

		var line []byte
		next := len(rest) + 1

		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}

		if isDelimiter(line) {
			block := rest[:offset]

			tail := []byte{}
			if next <= len(rest) {
				tail = rest[next:]
			}

			if options.TrimLeadingBlankTail {
				tail = TrimLeadingBlankLines(tail)
			}

			return block, tail, nil
		}

		if end < 0 {
			break
		}

		offset = next
		lines++
	}

	return nil, nil, ErrUnclosed
}

// TrimLeadingBlankLines drops empty (or whitespace-only) lines at the start of b.
func TrimLeadingBlankLines(b []byte) []byte {
	for len(b) > 0 {
		line, rest, found := bytes.Cut(b, []byte("\n"))
		if len(bytes.TrimSpace(line)) != 0 {
			return b
		}

		if !found {
			return b[len(b):]
		}

		b = rest
	}

	return b
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == delimiter
}

// Frontmatter is a decoded block. Keys keep their first-seen order.
type Frontmatter struct {
	keys  []string
	nodes map[string]*yaml.Node
}

// New returns an empty block.
func New() *Frontmatter {
	return &Frontmatter{nodes: make(map[string]*yaml.Node)}
}

// Parse splits src and decodes the block.
func Parse(src []byte, opts ...ParseOption) (*Frontmatter, []byte, error) {
	block, tail, err := Split(src, opts...)
	if err != nil {
		return nil, nil, err
	}

	fm, err := Decode(block)
	if err != nil {
		return nil, nil, err
	}

	return fm, tail, nil
}

// Decode parses the YAML between the delimiters. An empty block decodes to an
// empty Frontmatter. Duplicate keys keep the first position and the last value.
func Decode(block []byte) (*Frontmatter, error) {
	fm := New()

	var doc yaml.Node

	err := yaml.Unmarshal(block, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return fm, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return fm, nil
	}

	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if _, ok := fm.nodes[key]; !ok {
			fm.keys = append(fm.keys, key)
		}

		fm.nodes[key] = root.Content[i+1]
	}

	return fm, nil
}

// Keys returns the keys in order.
func (fm *Frontmatter) Keys() []string {
	return slices.Clone(fm.keys)
}

// Len returns the number of keys.
func (fm *Frontmatter) Len() int {
	return len(fm.keys)
}

// Has reports whether key is present.
func (fm *Frontmatter) Has(key string) bool {
	_, ok := fm.nodes[key]

	return ok
}

// GetString returns the text of a scalar value. Returns ("", false) when key is
// missing, null, or not a scalar. Integers are returned as written ("0003").
func (fm *Frontmatter) GetString(key string) (string, bool) {
	node, ok := fm.nodes[key]
	if !ok || node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return "", false
	}

	return node.Value, true
}

// SetString sets key to a string scalar, appending key if new.
func (fm *Frontmatter) SetString(key, value string) {
	fm.set(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value})
}

// SetInt sets key to an integer scalar, appending key if new.
func (fm *Frontmatter) SetInt(key string, value int64) {
	fm.set(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(value, 10)})
}

// Delete removes key. Missing keys are ignored.
func (fm *Frontmatter) Delete(key string) {
	if _, ok := fm.nodes[key]; !ok {
		return
	}

	delete(fm.nodes, key)

	fm.keys = slices.DeleteFunc(fm.keys, func(k string) bool { return k == key })
}

func (fm *Frontmatter) set(key string, node *yaml.Node) {
	if _, ok := fm.nodes[key]; !ok {
		fm.keys = append(fm.keys, key)
	}

	fm.nodes[key] = node
}

// MarshalOptions configures frontmatter serialization.
type MarshalOptions struct {
	IncludeDelimiters bool     // IncludeDelimiters writes --- fence lines before and after.
	KeyOrder          []string // KeyOrder lists keys written first; the rest follow in stored order.
}

// MarshalOption mutates MarshalOptions.
type MarshalOption func(*MarshalOptions)

// WithYAMLDelimiters toggles whether MarshalYAML includes --- delimiters.
// The default is true.
func WithYAMLDelimiters(include bool) MarshalOption {
	return func(opts *MarshalOptions) {
		opts.IncludeDelimiters = include
	}
}

// WithKeyOrder lists keys that are written first, in this order. Listed keys
// that are absent are skipped.
func WithKeyOrder(keys []string) MarshalOption {
	return func(opts *MarshalOptions) {
		opts.KeyOrder = keys
	}
}

// MarshalYAML serializes the block. Output is deterministic for a given key
// order and set of values.
func (fm *Frontmatter) MarshalYAML(opts ...MarshalOption) (string, error) {
	options := MarshalOptions{IncludeDelimiters: true}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(&options)
	}

	ordered := make([]string, 0, len(fm.keys))

	for _, key := range options.KeyOrder {
		if fm.Has(key) && !slices.Contains(ordered, key) {
			ordered = append(ordered, key)
		}
	}

	for _, key := range fm.keys {
		if !slices.Contains(ordered, key) {
			ordered = append(ordered, key)
		}
	}

	var builder strings.Builder
	if options.IncludeDelimiters {
		builder.WriteString(delimiter + "\n")
	}

	for _, key := range ordered {
		err := writeEntry(&builder, key, fm.nodes[key])
		if err != nil {
			return "", fmt.Errorf("%s: %w", key, err)
		}
	}

	if options.IncludeDelimiters {
		builder.WriteString(delimiter + "\n")
	}

	return builder.String(), nil
}

func writeEntry(builder *strings.Builder, key string, node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return writeNested(builder, key, node)
	}

	builder.WriteString(key)
	builder.WriteString(": ")

	switch node.Tag {
	case "!!str", "":
		builder.WriteString(Escape(node.Value))
	case "!!null":
		builder.WriteString("null")
	default:
		builder.WriteString(node.Value)
	}

	builder.WriteString("\n")

	return nil
}

func writeNested(builder *strings.Builder, key string, node *yaml.Node) error {
	mapping := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			node,
		},
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err := enc.Encode(mapping)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	builder.Write(buf.Bytes())

	return nil
}

// Escape renders a string scalar, double-quoting it when plain YAML would
// change its meaning. A value is quoted if it contains a colon (other than a
// drive-letter prefix such as C:\), a double or single quote, or starts with
// a digit; also if it is empty, carries surrounding spaces, starts with a YAML
// indicator, or reads as a bool or null. Backslashes and double quotes are
// escaped inside the quotes.
func Escape(value string) string {
	if !needsQuotes(value) {
		return value
	}

	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)

	return `"` + escaped + `"`
}

func needsQuotes(value string) bool {
	if value == "" || strings.TrimSpace(value) != value {
		return true
	}

	if strings.ContainsAny(value, "\"'\n\t") {
		return true
	}

	colonScan := value
	if hasDrivePrefix(value) {
		colonScan = value[2:]
	}

	if strings.Contains(colonScan, ":") {
		return true
	}

	if value[0] >= '0' && value[0] <= '9' {
		return true
	}

	if strings.ContainsRune("#&*!|>%@`[]{},?-", rune(value[0])) {
		return true
	}

	if strings.Contains(value, " #") {
		return true
	}

	switch strings.ToLower(value) {
	case "true", "false", "yes", "no", "on", "off", "null", "~":
		return true
	}

	return false
}

// hasDrivePrefix matches ^[A-Za-z]:[\\/].
func hasDrivePrefix(value string) bool {
	if len(value) < 3 || value[1] != ':' || (value[2] != '\\' && value[2] != '/') {
		return false
	}

	c := value[0]

	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
