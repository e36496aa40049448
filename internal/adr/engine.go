package adr

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Engine performs ADR operations against a [Repository].
//
// Every operation lists the collection afresh; nothing is cached between
// calls. Operations that touch several files write them one after another
// and finish by regenerating the index. The engine does no locking.
type Engine struct {
	repo  Repository
	cfg   Config
	clock Clock
	log   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the time source used for dates.
func WithClock(clock Clock) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets the logger for file writes. The default discards.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine returns an engine over repo configured by cfg. cfg.DirAbs (or
// cfg.Dir when unset) is where new documents and the index are written.
func NewEngine(repo Repository, cfg Config, opts ...EngineOption) *Engine {
	e := &Engine{
		repo:  repo,
		cfg:   cfg,
		clock: time.Now,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.cfg.Format == "" {
		e.cfg.Format = "md"
	}

	if e.cfg.IndexName == "" {
		e.cfg.IndexName = DefaultConfig().IndexName
	}

	return e
}

func (e *Engine) dir() string {
	if e.cfg.DirAbs != "" {
		return e.cfg.DirAbs
	}

	return e.cfg.Dir
}

func (e *Engine) templatePath() string {
	if e.cfg.TemplateAbs != "" {
		return e.cfg.TemplateAbs
	}

	return e.cfg.Template
}

func (e *Engine) format() Format {
	if e.cfg.FrontMatter {
		return FormatFrontMatter
	}

	return FormatPlain
}

// List returns all records and regenerates the index.
func (e *Engine) List() ([]Record, error) {
	records, err := e.repo.List()
	if err != nil {
		return nil, err
	}

	err = e.writeIndex(records)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Index regenerates the index.
func (e *Engine) Index() error {
	_, err := e.List()

	return err
}

// Find resolves id to a record: by number first ("0003" and "3" are the
// same), then by case-insensitive title.
func (e *Engine) Find(id string) (Record, error) {
	records, err := e.repo.List()
	if err != nil {
		return Record{}, err
	}

	return resolve(records, id)
}

// Create writes a new Proposed record numbered one past the highest existing
// number. supersedes is recorded on the new document only; 0 means none.
//
// The document comes from the configured template, else the configured
// representation with the default body. An unreadable template fails before
// anything is written.
func (e *Engine) Create(title string, supersedes uint32) (Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Record{}, ErrTitleRequired
	}

	records, err := e.repo.List()
	if err != nil {
		return Record{}, err
	}

	return e.create(records, title, supersedes)
}

func (e *Engine) create(records []Record, title string, supersedes uint32) (Record, error) {
	next := uint32(1)

	for _, r := range records {
		if r.Number >= next {
			next = r.Number + 1
		}
	}

	rec := Record{
		Number:     next,
		Title:      title,
		Status:     StatusProposed,
		Date:       e.clock.Today(),
		Supersedes: supersedes,
		Format:     e.format(),
		Path:       filepath.Join(e.dir(), FileName(next, title, e.cfg.Format)),
	}

	links := filenames(records)

	var content string

	if tplPath := e.templatePath(); tplPath != "" {
		tpl, err := e.repo.Read(tplPath)
		if err != nil {
			return Record{}, fmt.Errorf("%w %s: %w", ErrTemplateRead, tplPath, err)
		}

		content = ExpandTemplate(tpl, rec, links)
	} else {
		content = Render(rec, rec.Format, defaultBody, links)
	}

	err := e.write(rec.Path, content)
	if err != nil {
		return Record{}, err
	}

	parsed := Parse(content, rec.Path, rec.Date)
	rec.Format = parsed.Format
	rec.Tail = parsed.Tail

	_, err = e.List()
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// CreateSuperseding creates a record that supersedes old and marks old as
// superseded by it. A missing old fails before anything is written.
func (e *Engine) CreateSuperseding(old uint32, title string) (Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Record{}, ErrTitleRequired
	}

	records, err := e.repo.List()
	if err != nil {
		return Record{}, err
	}

	if _, ok := byNumber(records, old); !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, FormatNumber(old))
	}

	created, err := e.create(records, title, old)
	if err != nil {
		return Record{}, err
	}

	_, err = e.Supersede(old, created.Number)
	if err != nil {
		return Record{}, err
	}

	return created, nil
}

// Accept sets the status to Accepted and the date to today.
func (e *Engine) Accept(id string) (Record, error) {
	return e.Transition(id, StatusAccepted)
}

// Reject sets the status to Rejected and the date to today.
func (e *Engine) Reject(id string) (Record, error) {
	return e.Transition(id, StatusRejected)
}

// Transition sets the status of the record resolved from id (see [Engine.Find])
// and refreshes its date. Everything else in the document is kept. A
// superseded record cannot be transitioned.
func (e *Engine) Transition(id, status string) (Record, error) {
	records, err := e.repo.List()
	if err != nil {
		return Record{}, err
	}

	rec, err := resolve(records, id)
	if err != nil {
		return Record{}, err
	}

	if rec.IsSuperseded() {
		return Record{}, fmt.Errorf("%w: %s by %s", ErrSuperseded,
			FormatNumber(rec.Number), FormatNumber(rec.SupersededBy))
	}

	return e.update(rec,
		FieldUpdate{Field: FieldStatus, Value: status},
		FieldUpdate{Field: FieldDate, Value: e.clock.Today()},
	)
}

// Supersede marks record old as superseded by newNumber: its status becomes
// "Superseded by NNNN" with a Superseded-by line right after it. The date is
// not changed.
func (e *Engine) Supersede(old, newNumber uint32) (Record, error) {
	records, err := e.repo.List()
	if err != nil {
		return Record{}, err
	}

	rec, ok := byNumber(records, old)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, FormatNumber(old))
	}

	return e.update(rec,
		FieldUpdate{Field: FieldStatus, Value: SupersededStatus(newNumber)},
		FieldUpdate{Field: FieldSupersededBy, Value: FormatNumber(newNumber)},
	)
}

func (e *Engine) update(rec Record, updates ...FieldUpdate) (Record, error) {
	raw, err := e.repo.Read(rec.Path)
	if err != nil {
		return Record{}, err
	}

	updated, err := UpdateFields(raw, updates...)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", rec.Path, err)
	}

	if updated != raw {
		err = e.write(rec.Path, updated)
		if err != nil {
			return Record{}, err
		}
	}

	records, err := e.List()
	if err != nil {
		return Record{}, err
	}

	return byPathOr(records, rec.Path, Parse(updated, rec.Path, e.clock.Today())), nil
}

// Reformat re-renders record number in the configured representation and
// extension, keeping the content after its header. When the filename
// changes, the new file is written and the old one removed, and
// "Supersedes: [N](...)" links in other records are pointed at the new name.
func (e *Engine) Reformat(number uint32) (Record, error) {
	records, err := e.repo.List()
	if err != nil {
		return Record{}, err
	}

	rec, ok := byNumber(records, number)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, FormatNumber(number))
	}

	out, err := e.reformat(records, rec)
	if err != nil {
		return Record{}, err
	}

	_, err = e.List()
	if err != nil {
		return Record{}, err
	}

	return out, nil
}

// ReformatAll reformats every record in order and regenerates the index once.
func (e *Engine) ReformatAll() ([]Record, error) {
	records, err := e.repo.List()
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.Path
	}

	out := make([]Record, 0, len(paths))

	for _, path := range paths {
		current, listErr := e.repo.List()
		if listErr != nil {
			return nil, listErr
		}

		rec, ok := byPath(current, path)
		if !ok {
			continue
		}

		reformatted, reformatErr := e.reformat(current, rec)
		if reformatErr != nil {
			return nil, reformatErr
		}

		out = append(out, reformatted)
	}

	_, err = e.List()
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (e *Engine) reformat(records []Record, rec Record) (Record, error) {
	raw, err := e.repo.Read(rec.Path)
	if err != nil {
		return Record{}, err
	}

	format := e.format()
	name := FileName(rec.Number, rec.Title, e.cfg.Format)
	path := filepath.Join(filepath.Dir(rec.Path), name)
	content, err := Reencode(raw, rec, format, filenames(records))
	if err != nil {
		return Record{}, err
	}

	if path != rec.Path {
		if other, exists := byPath(records, path); exists {
			return Record{}, fmt.Errorf("%w: %s (renaming %s)", ErrFileExists, other.Path, rec.Path)
		}

		err = e.write(path, content)
		if err != nil {
			return Record{}, err
		}

		err = e.repo.Remove(rec.Path)
		if err != nil {
			return Record{}, err
		}

		e.log.Debug("removed", "path", rec.Path)
	} else if content != raw {
		err = e.write(path, content)
		if err != nil {
			return Record{}, err
		}
	}

	for _, other := range records {
		if other.Path == rec.Path {
			continue
		}

		err = e.relink(other.Path, rec.Number, name)
		if err != nil {
			return Record{}, err
		}
	}

	return Parse(content, path, e.clock.Today()), nil
}

func (e *Engine) relink(path string, number uint32, filename string) error {
	raw, err := e.repo.Read(path)
	if err != nil {
		return err
	}

	patched := RelinkSupersedes(raw, number, filename)
	if patched == raw {
		return nil
	}

	return e.write(path, patched)
}

func (e *Engine) writeIndex(records []Record) error {
	return e.write(filepath.Join(e.dir(), e.cfg.IndexName), RenderIndex(records))
}

func (e *Engine) write(path, content string) error {
	err := e.repo.Write(path, content)
	if err != nil {
		return err
	}

	e.log.Debug("wrote", "path", path, "bytes", len(content))

	return nil
}

// resolve finds id by number, then by case-insensitive title. A numeric id
// that matches no number is tried as a title.
func resolve(records []Record, id string) (Record, error) {
	id = strings.TrimSpace(id)

	if n, ok := ParseNumber(id); ok {
		if rec, found := byNumber(records, n); found {
			return rec, nil
		}
	}

	for _, r := range records {
		if strings.EqualFold(r.Title, id) {
			return r, nil
		}
	}

	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func byNumber(records []Record, n uint32) (Record, bool) {
	for _, r := range records {
		if r.Number == n {
			return r, true
		}
	}

	return Record{}, false
}

func byPath(records []Record, path string) (Record, bool) {
	for _, r := range records {
		if r.Path == path {
			return r, true
		}
	}

	return Record{}, false
}

func byPathOr(records []Record, path string, fallback Record) Record {
	if r, ok := byPath(records, path); ok {
		return r
	}

	return fallback
}
