package testutil

import (
	"path/filepath"
	"testing"

	"github.com/calvinalkan/radr/internal/adr"
	"github.com/calvinalkan/radr/internal/fs"
)

// Harness wires a real engine over a temp directory to the model.
//
// It holds two engines over the same directory, one writing plain md and
// one writing front-matter mdx; Active selects the one operations use.
type Harness struct {
	TB    testing.TB
	Dir   string
	Model *Model
	Clock *Clock

	// Repo reads the directory without regenerating the index.
	Repo *adr.FSRepository

	Plain       *adr.Engine
	FrontMatter *adr.Engine
	Active      *adr.Engine
}

// NewHarness creates a harness with an empty ADR directory.
func NewHarness(tb testing.TB) *Harness {
	tb.Helper()

	h := &Harness{
		TB:    tb,
		Dir:   filepath.Join(tb.TempDir(), "docs", "adr"),
		Model: NewModel(),
		Clock: NewClock(),
	}

	h.Repo = adr.NewFSRepository(fs.NewReal(), h.Dir, "md", h.Clock.Now)
	h.Plain = h.engine(adr.Config{Format: "md"})
	h.FrontMatter = h.engine(adr.Config{Format: "mdx", FrontMatter: true})
	h.Active = h.Plain

	return h
}

func (h *Harness) engine(cfg adr.Config) *adr.Engine {
	cfg.DirAbs = h.Dir
	cfg.IndexName = "index.md"

	repo := adr.NewFSRepository(fs.NewReal(), h.Dir, cfg.Format, h.Clock.Now)

	return adr.NewEngine(repo, cfg, adr.WithClock(h.Clock.Now))
}

// IndexPath returns the generated index path.
func (h *Harness) IndexPath() string {
	return filepath.Join(h.Dir, "index.md")
}
