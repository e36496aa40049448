package adr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_RenderIndex_Sorts_And_Links_Superseding_Record(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Number: 2, Title: "Choose Y", Status: StatusProposed, Date: "2024-05-02", Path: "/d/0002-choose-y.mdx"},
		{Number: 1, Title: "Choose X", Status: "Superseded by 0002", Date: "2024-05-01", SupersededBy: 2, Path: "/d/0001-choose-x.md"},
		{Number: 3, Title: "Orphan", Status: "Superseded by 0009", Date: "2024-05-03", SupersededBy: 9, Path: "/d/0003-orphan.md"},
	}

	want := "# Architecture Decision Records\n\n" +
		"- [0001: Choose X](0001-choose-x.md) — Status: Superseded by [0002](0002-choose-y.mdx) — Date: 2024-05-01\n" +
		"- [0002: Choose Y](0002-choose-y.mdx) — Status: Proposed — Date: 2024-05-02\n" +
		"- [0003: Orphan](0003-orphan.md) — Status: Superseded by 0009 — Date: 2024-05-03\n" +
		"\n"

	if diff := cmp.Diff(want, RenderIndex(records)); diff != "" {
		t.Fatalf("RenderIndex mismatch (-want +got):\n%s", diff)
	}

	if records[0].Number != 2 {
		t.Fatal("RenderIndex reordered its input")
	}
}

func Test_RenderIndex_Empty(t *testing.T) {
	t.Parallel()

	if got, want := RenderIndex(nil), "# Architecture Decision Records\n\n\n"; got != want {
		t.Fatalf("RenderIndex(nil)=%q, want %q", got, want)
	}
}

func Test_SortRecords_Breaks_Number_Ties_By_Filename(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Number: 1, Path: "/d/0001-b.md"},
		{Number: 0, Path: "/d/notes.md"},
		{Number: 1, Path: "/d/0001-a.md"},
	}

	SortRecords(records)

	got := []string{records[0].Filename(), records[1].Filename(), records[2].Filename()}
	want := []string{"notes.md", "0001-a.md", "0001-b.md"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	if got := filenames(records)[1]; got != "0001-a.md" {
		t.Fatalf("filenames()[1]=%q, want first in order", got)
	}
}

func Test_RelinkSupersedes(t *testing.T) {
	t.Parallel()

	raw := "# ADR 0003: Z\n\nStatus: Proposed\nSupersedes: [0001](0001-choose-x.md)\n\nSee [0001](0001-choose-x.md).\nSupersedes: [0002](0002-y.md)\n"

	got := RelinkSupersedes(raw, 1, "0001-choose-z.mdx")
	want := "# ADR 0003: Z\n\nStatus: Proposed\nSupersedes: [0001](0001-choose-z.mdx)\n\nSee [0001](0001-choose-x.md).\nSupersedes: [0002](0002-y.md)\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("RelinkSupersedes mismatch (-want +got):\n%s", diff)
	}

	if again := RelinkSupersedes(got, 1, "0001-choose-z.mdx"); again != got {
		t.Fatal("RelinkSupersedes not idempotent")
	}
}

func Test_ExpandTemplate(t *testing.T) {
	t.Parallel()

	tpl := "# ADR {{NUMBER}}: {{TITLE}}\n\nDate: {{DATE}}\nStatus: {{STATUS}}\nSupersedes: {{SUPERSEDES}}\n"
	rec := Record{Number: 4, Title: "Use Template", Date: testToday, Status: StatusProposed, Supersedes: 3}

	got := ExpandTemplate(tpl, rec, map[uint32]string{3: "0003-old.md"})
	want := "# ADR 0004: Use Template\n\nDate: 2024-05-01\nStatus: Proposed\nSupersedes: [0003](0003-old.md)\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExpandTemplate mismatch (-want +got):\n%s", diff)
	}

	rec.Supersedes = 0
	if got := ExpandTemplate("[{{SUPERSEDES}}]", rec, nil); got != "[]" {
		t.Fatalf("ExpandTemplate(no supersedes)=%q, want %q", got, "[]")
	}
}
