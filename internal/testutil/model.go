package testutil

import (
	"errors"
	"slices"
	"strings"

	"github.com/calvinalkan/radr/internal/adr"
)

// ModelRecord is the model's view of one ADR: only the managed fields.
type ModelRecord struct {
	Number       uint32
	Title        string
	Status       string
	Date         string
	Supersedes   uint32
	SupersededBy uint32
}

// Model is an in-memory reference implementation of the engine's
// observable behavior. It knows nothing about files or representations.
type Model struct {
	records []ModelRecord
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// Records returns the records ordered by number.
func (m *Model) Records() []ModelRecord {
	return slices.Clone(m.records)
}

// Numbers returns the existing numbers in order.
func (m *Model) Numbers() []uint32 {
	out := make([]uint32, len(m.records))
	for i, r := range m.records {
		out[i] = r.Number
	}

	return out
}

// Create mirrors [adr.Engine.Create].
func (m *Model) Create(title string, supersedes uint32, today string) (ModelRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return ModelRecord{}, adr.ErrTitleRequired
	}

	next := uint32(1)
	if n := len(m.records); n > 0 {
		next = m.records[n-1].Number + 1
	}

	rec := ModelRecord{
		Number:     next,
		Title:      title,
		Status:     adr.StatusProposed,
		Date:       today,
		Supersedes: supersedes,
	}
	m.records = append(m.records, rec)

	return rec, nil
}

// CreateSuperseding mirrors [adr.Engine.CreateSuperseding].
func (m *Model) CreateSuperseding(old uint32, title string, today string) (ModelRecord, error) {
	if strings.TrimSpace(title) == "" {
		return ModelRecord{}, adr.ErrTitleRequired
	}

	if m.index(old) < 0 {
		return ModelRecord{}, adr.ErrNotFound
	}

	created, err := m.Create(title, old, today)
	if err != nil {
		return ModelRecord{}, err
	}

	_, err = m.Supersede(old, created.Number)

	return created, err
}

// Transition mirrors [adr.Engine.Transition].
func (m *Model) Transition(id, status, today string) (ModelRecord, error) {
	i := m.resolve(id)
	if i < 0 {
		return ModelRecord{}, adr.ErrNotFound
	}

	if m.records[i].SupersededBy != 0 {
		return ModelRecord{}, adr.ErrSuperseded
	}

	m.records[i].Status = status
	m.records[i].Date = today

	return m.records[i], nil
}

// Supersede mirrors [adr.Engine.Supersede].
func (m *Model) Supersede(old, newNumber uint32) (ModelRecord, error) {
	i := m.index(old)
	if i < 0 {
		return ModelRecord{}, adr.ErrNotFound
	}

	m.records[i].Status = adr.SupersededStatus(newNumber)
	m.records[i].SupersededBy = newNumber

	return m.records[i], nil
}

// Reformat mirrors [adr.Engine.Reformat]: managed fields never change.
func (m *Model) Reformat(number uint32) (ModelRecord, error) {
	i := m.index(number)
	if i < 0 {
		return ModelRecord{}, adr.ErrNotFound
	}

	return m.records[i], nil
}

func (m *Model) index(number uint32) int {
	for i, r := range m.records {
		if r.Number == number {
			return i
		}
	}

	return -1
}

func (m *Model) resolve(id string) int {
	id = strings.TrimSpace(id)

	if n, ok := adr.ParseNumber(id); ok {
		if i := m.index(n); i >= 0 {
			return i
		}
	}

	for i, r := range m.records {
		if strings.EqualFold(r.Title, id) {
			return i
		}
	}

	return -1
}

// ErrorKind classifies an engine error for comparison with the model.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, adr.ErrNotFound):
		return "not-found"
	case errors.Is(err, adr.ErrSuperseded):
		return "superseded"
	case errors.Is(err, adr.ErrTitleRequired):
		return "title-required"
	default:
		return "error: " + err.Error()
	}
}
