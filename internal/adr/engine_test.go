package adr

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/radr/internal/fs"
)

type engineFixture struct {
	engine *Engine
	dir    string
	now    time.Time
}

func (f *engineFixture) clock() time.Time {
	return f.now
}

func (f *engineFixture) read(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(f.dir, name))
	require.NoError(t, err)

	return string(data)
}

func (f *engineFixture) write(t *testing.T, name, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(f.dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, name), []byte(content), 0o644))
}

func (f *engineFixture) exists(name string) bool {
	_, err := os.Stat(filepath.Join(f.dir, name))

	return err == nil
}

func newFixture(t *testing.T, fsys fs.FS, mutate ...func(*Config)) *engineFixture {
	t.Helper()

	f := &engineFixture{
		dir: filepath.Join(t.TempDir(), "docs", "adr"),
		now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	cfg := Config{DirAbs: f.dir, IndexName: "index.md", Format: "md"}
	for _, m := range mutate {
		m(&cfg)
	}

	if fsys == nil {
		fsys = fs.NewReal()
	}

	repo := NewFSRepository(fsys, f.dir, cfg.Format, f.clock)
	f.engine = NewEngine(repo, cfg, WithClock(f.clock))

	return f
}

func Test_Create_On_Empty_Directory_Writes_Document_And_Index(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	rec, err := f.engine.Create("First Decision", 0)
	require.NoError(t, err)
	require.Equal(t, uint32(1), rec.Number)
	require.Equal(t, StatusProposed, rec.Status)
	require.Equal(t, filepath.Join(f.dir, "0001-first-decision.md"), rec.Path)

	require.Equal(t,
		"# ADR 0001: First Decision\n\nDate: 2024-05-01\nStatus: Proposed\n"+defaultBody,
		f.read(t, "0001-first-decision.md"))

	require.Equal(t,
		"# Architecture Decision Records\n\n"+
			"- [0001: First Decision](0001-first-decision.md) — Status: Proposed — Date: 2024-05-01\n\n",
		f.read(t, "index.md"))
}

func Test_Create_Numbers_Are_Monotonic_And_Continue_After_Seeded_Maximum(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.write(t, "0005-existing.md", "# ADR 0005: Existing\n\nBody\n")

	rec, err := f.engine.Create("Next", 0)
	require.NoError(t, err)
	require.Equal(t, uint32(6), rec.Number)
	require.True(t, f.exists("0006-next.md"))

	prev := rec.Number
	for _, title := range []string{"A", "B", "C"} {
		next, err := f.engine.Create(title, 0)
		require.NoError(t, err)
		require.Equal(t, prev+1, next.Number)

		prev = next.Number
	}
}

func Test_Create_Rejects_Empty_Title(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.engine.Create("   ", 0)
	require.ErrorIs(t, err, ErrTitleRequired)

	_, statErr := os.Stat(f.dir)
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func Test_Create_Uses_FrontMatter_When_Configured(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, func(c *Config) {
		c.FrontMatter = true
		c.Format = "mdx"
	})

	rec, err := f.engine.Create("Use: Colons", 0)
	require.NoError(t, err)
	require.Equal(t, FormatFrontMatter, rec.Format)

	require.Equal(t,
		"---\nnumber: 1\ntitle: \"Use: Colons\"\ndate: \"2024-05-01\"\nstatus: Proposed\n---\n\n"+
			"# ADR 0001: Use: Colons\n"+defaultBody,
		f.read(t, "0001-use-colons.mdx"))

	records, err := f.engine.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Use: Colons", records[0].Title)
}

func Test_Create_Expands_Template(t *testing.T) {
	t.Parallel()

	tplPath := filepath.Join(t.TempDir(), "tpl.md")
	require.NoError(t, os.WriteFile(tplPath,
		[]byte("# ADR {{NUMBER}}: {{TITLE}}\n\nDate: {{DATE}}\nStatus: {{STATUS}}\nSupersedes: {{SUPERSEDES}}\n\nBody\n"), 0o644))

	f := newFixture(t, nil, func(c *Config) { c.TemplateAbs = tplPath })

	rec, err := f.engine.Create("Use Template", 3)
	require.NoError(t, err)

	content := f.read(t, filepath.Base(rec.Path))
	require.Equal(t, "# ADR 0001: Use Template\n\nDate: 2024-05-01\nStatus: Proposed\nSupersedes: 0003\n\nBody\n", content)

	rec2, err := f.engine.Create("Second", 1)
	require.NoError(t, err)
	require.Contains(t, f.read(t, filepath.Base(rec2.Path)), "Supersedes: [0001](0001-use-template.md)\n")
}

func Test_Create_Fails_Before_Writing_When_Template_Is_Unreadable(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.md")
	f := newFixture(t, nil, func(c *Config) { c.TemplateAbs = missing })

	_, err := f.engine.Create("X", 0)
	require.ErrorIs(t, err, ErrTemplateRead)
	require.ErrorContains(t, err, missing)

	_, statErr := os.Stat(f.dir)
	require.True(t, errors.Is(statErr, os.ErrNotExist), "ADR directory should not exist")
}

func Test_Supersede_Keeps_Status_And_Link_In_Lockstep(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	x, err := f.engine.Create("Choose X", 0)
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 0, 1)

	y, err := f.engine.Create("Choose Y", x.Number)
	require.NoError(t, err)

	old, err := f.engine.Supersede(x.Number, y.Number)
	require.NoError(t, err)
	require.Equal(t, uint32(2), old.SupersededBy)
	require.Equal(t, "Superseded by 0002", old.Status)
	require.Equal(t, "2024-05-01", old.Date, "supersede must not refresh the date")

	require.Contains(t, f.read(t, "0001-choose-x.md"), "Status: Superseded by 0002\nSuperseded-by: 0002\n")
	require.Contains(t, f.read(t, "0002-choose-y.md"), "Supersedes: [0001](0001-choose-x.md)\n")
	require.Contains(t, f.read(t, "index.md"),
		"- [0001: Choose X](0001-choose-x.md) — Status: Superseded by [0002](0002-choose-y.md) — Date: 2024-05-01\n")

	again, err := f.engine.Supersede(x.Number, y.Number)
	require.NoError(t, err)
	require.Equal(t, old, again)
	require.Equal(t, 1, strings.Count(f.read(t, "0001-choose-x.md"), "Superseded-by:"))
}

func Test_Supersede_Returns_NotFound_When_Old_Is_Missing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.engine.Supersede(4, 5)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorContains(t, err, "0004")
}

func Test_CreateSuperseding_Sets_Both_Sides(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.engine.Create("Choose X", 0)
	require.NoError(t, err)

	y, err := f.engine.CreateSuperseding(1, "Choose Y")
	require.NoError(t, err)
	require.Equal(t, uint32(2), y.Number)
	require.Equal(t, uint32(1), y.Supersedes)

	x, err := f.engine.Find("1")
	require.NoError(t, err)
	require.Equal(t, uint32(2), x.SupersededBy)
}

func Test_CreateSuperseding_Writes_Nothing_When_Old_Is_Missing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.engine.CreateSuperseding(9, "Replacement")
	require.ErrorIs(t, err, ErrNotFound)

	_, statErr := os.Stat(f.dir)
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func Test_Transition_Updates_Status_And_Date_Only(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.engine.Create("Choose X", 0)
	require.NoError(t, err)

	_, err = f.engine.Create("Choose DB", 1)
	require.NoError(t, err)

	before := f.read(t, "0002-choose-db.md")

	f.now = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	rec, err := f.engine.Accept("0002")
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, rec.Status)
	require.Equal(t, "2024-06-02", rec.Date)
	require.Equal(t, "Choose DB", rec.Title)
	require.Equal(t, uint32(2), rec.Number)
	require.Equal(t, uint32(1), rec.Supersedes)

	after := f.read(t, "0002-choose-db.md")
	want := strings.Replace(strings.Replace(before, "Status: Proposed", "Status: Accepted", 1),
		"Date: 2024-05-01", "Date: 2024-06-02", 1)
	require.Equal(t, want, after)

	require.Contains(t, f.read(t, "index.md"), "— Status: Accepted — Date: 2024-06-02\n")

	rejected, err := f.engine.Reject("choose x")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, rejected.Status)
}

func Test_Transition_Resolves_Number_Padded_Number_And_Title(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	for _, title := range []string{"Alpha", "Beta", "Use Queue"} {
		_, err := f.engine.Create(title, 0)
		require.NoError(t, err)
	}

	for _, id := range []string{"0003", "3", "use queue", "USE QUEUE"} {
		rec, err := f.engine.Find(id)
		require.NoError(t, err, id)
		require.Equal(t, uint32(3), rec.Number, id)
	}

	_, err := f.engine.Accept("Nope")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorContains(t, err, "Nope")
}

func Test_Transition_Treats_Unmatched_Number_As_Title(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.engine.Create("2024", 0)
	require.NoError(t, err)

	rec, err := f.engine.Accept("2024")
	require.NoError(t, err)
	require.Equal(t, uint32(1), rec.Number)
}

func Test_Transition_Refuses_Superseded_Record(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.engine.Create("Choose X", 0)
	require.NoError(t, err)

	_, err = f.engine.CreateSuperseding(1, "Choose Y")
	require.NoError(t, err)

	_, err = f.engine.Accept("1")
	require.ErrorIs(t, err, ErrSuperseded)
}

func Test_Reformat_Is_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.write(t, "0001-legacy.md", "# ADR 0001: Legacy\nStatus: Accepted\nDate: 2020-01-01\nStatus: Accepted\n\n## Context\n\nKeep me.\n")

	_, err := f.engine.Reformat(1)
	require.NoError(t, err)

	first := f.read(t, "0001-legacy.md")
	require.Equal(t, "# ADR 0001: Legacy\n\nDate: 2020-01-01\nStatus: Accepted\n\n## Context\n\nKeep me.\n", first)

	_, err = f.engine.Reformat(1)
	require.NoError(t, err)
	require.Equal(t, first, f.read(t, "0001-legacy.md"))
}

func Test_Reformat_Renames_And_Propagates_Links(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.engine.Create("Choose X", 0)
	require.NoError(t, err)

	_, err = f.engine.CreateSuperseding(1, "Choose Y")
	require.NoError(t, err)

	// Retitle 0001 by hand.
	old := f.read(t, "0001-choose-x.md")
	f.write(t, "0001-choose-x.md", strings.Replace(old, "# ADR 0001: Choose X", "# ADR 0001: Choose Z", 1))

	beforeY := f.read(t, "0002-choose-y.md")

	rec, err := f.engine.Reformat(1)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(f.dir, "0001-choose-z.md"), rec.Path)
	require.False(t, f.exists("0001-choose-x.md"))

	afterY := f.read(t, "0002-choose-y.md")
	require.Equal(t,
		strings.Replace(beforeY, "[0001](0001-choose-x.md)", "[0001](0001-choose-z.md)", 1),
		afterY)

	index := f.read(t, "index.md")
	require.Contains(t, index, "- [0001: Choose Z](0001-choose-z.md) — Status: Superseded by [0002](0002-choose-y.md)")
	require.NotContains(t, index, "0001-choose-x.md")
}

func Test_ReformatAll_Moves_Collection_To_FrontMatter(t *testing.T) {
	t.Parallel()

	plain := newFixture(t, nil)

	_, err := plain.engine.Create("Choose X", 0)
	require.NoError(t, err)

	_, err = plain.engine.CreateSuperseding(1, "Choose Y")
	require.NoError(t, err)

	fm := newFixture(t, nil, func(c *Config) {
		c.FrontMatter = true
		c.Format = "mdx"
	})
	fm.dir = plain.dir
	fm.engine = NewEngine(NewFSRepository(fs.NewReal(), plain.dir, "mdx", fm.clock),
		Config{DirAbs: plain.dir, IndexName: "index.md", Format: "mdx", FrontMatter: true},
		WithClock(fm.clock))

	out, err := fm.engine.ReformatAll()
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.False(t, fm.exists("0001-choose-x.md"))
	require.False(t, fm.exists("0002-choose-y.md"))

	require.Equal(t,
		"---\nnumber: 1\ntitle: Choose X\ndate: \"2024-05-01\"\nstatus: Superseded by 0002\nsuperseded_by: 2\n---\n\n"+
			"# ADR 0001: Choose X\n"+defaultBody,
		fm.read(t, "0001-choose-x.mdx"))

	require.Equal(t,
		"---\nnumber: 2\ntitle: Choose Y\ndate: \"2024-05-01\"\nstatus: Proposed\nsupersedes: 1\n---\n\n"+
			"# ADR 0002: Choose Y\n\nSupersedes: [0001](0001-choose-x.mdx)\n"+defaultBody,
		fm.read(t, "0002-choose-y.mdx"))

	index := fm.read(t, "index.md")
	require.Contains(t, index, "Superseded by [0002](0002-choose-y.mdx)")

	snapshot := fm.read(t, "0002-choose-y.mdx")

	_, err = fm.engine.ReformatAll()
	require.NoError(t, err)
	require.Equal(t, snapshot, fm.read(t, "0002-choose-y.mdx"))
}

func Test_Reformat_Keeps_Unmanaged_FrontMatter_Keys(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, func(c *Config) {
		c.FrontMatter = true
	})
	f.write(t, "0001-use-go.md", "---\nnumber: 1\ntitle: Use Go\ndate: \"2024-01-01\"\n"+
		"tags:\n  - lang\nstatus: Accepted\nauthor: alice\n---\n\n# ADR 0001: Use Go\n\n## Context\n\nKeep me.\n")

	_, err := f.engine.Reformat(1)
	require.NoError(t, err)

	first := f.read(t, "0001-use-go.md")
	require.Equal(t,
		"---\nnumber: 1\ntitle: Use Go\ndate: \"2024-01-01\"\nstatus: Accepted\n"+
			"tags:\n  - lang\nauthor: alice\n---\n\n# ADR 0001: Use Go\n\n## Context\n\nKeep me.\n",
		first)

	_, err = f.engine.Reformat(1)
	require.NoError(t, err)
	require.Equal(t, first, f.read(t, "0001-use-go.md"))
}

func Test_Reformat_Refuses_To_Overwrite_Another_Record(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.write(t, "0001-same.md", "# ADR 0001: Same\n\nStatus: Accepted\n")
	f.write(t, "0001-same.mdx", "# ADR 0001: Same\n\nStatus: Rejected\n")

	_, err := f.engine.ReformatAll()
	require.ErrorIs(t, err, ErrFileExists)
	require.Contains(t, f.read(t, "0001-same.mdx"), "Rejected")
}

func Test_Reformat_Returns_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.engine.Reformat(3)
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_Engine_Surfaces_IO_Failures(t *testing.T) {
	t.Parallel()

	t.Run("index write", func(t *testing.T) {
		t.Parallel()

		injected := fs.NewInjected(fs.NewReal())
		f := newFixture(t, injected)
		injected.Fail(fs.OpWriteFileAtomic, filepath.Join(f.dir, "index.md"), nil)

		_, err := f.engine.Create("X", 0)
		require.Error(t, err)
		require.True(t, fs.IsInjected(err))
		require.ErrorIs(t, err, syscall.EIO)
		require.ErrorContains(t, err, "index.md")
	})

	t.Run("directory read", func(t *testing.T) {
		t.Parallel()

		injected := fs.NewInjected(fs.NewReal())
		f := newFixture(t, injected)
		f.write(t, "0001-x.md", "# ADR 0001: X\n")
		injected.Fail(fs.OpReadDir, "", nil)

		_, err := f.engine.Accept("1")
		require.True(t, fs.IsInjected(err))
		require.Equal(t, 0, injected.Calls(fs.OpWriteFileAtomic))
	})

	t.Run("old file removal", func(t *testing.T) {
		t.Parallel()

		injected := fs.NewInjected(fs.NewReal())
		f := newFixture(t, injected)
		f.write(t, "0001-x.md", "# ADR 0001: Y\n\nStatus: Accepted\n")
		injected.Fail(fs.OpRemove, "", nil)

		_, err := f.engine.Reformat(1)
		require.True(t, fs.IsInjected(err))
		require.ErrorContains(t, err, "0001-x.md")
	})
}
