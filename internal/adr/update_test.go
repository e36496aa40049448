package adr

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_UpdateFields_Plain(t *testing.T) {
	t.Parallel()

	supersede := []FieldUpdate{
		{Field: FieldStatus, Value: SupersededStatus(2)},
		{Field: FieldSupersededBy, Value: "0002"},
	}

	accept := []FieldUpdate{
		{Field: FieldStatus, Value: StatusAccepted},
		{Field: FieldDate, Value: "2024-06-01"},
	}

	cases := []struct {
		name    string
		raw     string
		updates []FieldUpdate
		want    string
	}{
		{
			name:    "superseded-by inserted right after status",
			raw:     "# ADR 0001: Old\n\nDate: 2024-01-01\nStatus: Accepted\n\n## Context\n\nText\n",
			updates: supersede,
			want:    "# ADR 0001: Old\n\nDate: 2024-01-01\nStatus: Superseded by 0002\nSuperseded-by: 0002\n\n## Context\n\nText\n",
		},
		{
			name:    "displaced superseded-by is moved",
			raw:     "# ADR 0001: Old\n\nStatus: Accepted\nDate: 2024-01-01\n\nBody\nSuperseded-by: 0009\n",
			updates: supersede,
			want:    "# ADR 0001: Old\n\nStatus: Superseded by 0002\nSuperseded-by: 0002\nDate: 2024-01-01\n\nBody\n",
		},
		{
			name:    "missing status and superseded-by inserted after heading",
			raw:     "# ADR 0001: Old\n\nContext\n",
			updates: supersede,
			want:    "# ADR 0001: Old\nStatus: Superseded by 0002\nSuperseded-by: 0002\n\nContext\n",
		},
		{
			name:    "crlf document keeps crlf on written lines",
			raw:     "# ADR 0001: Old\r\n\r\nDate: 2024-01-01\r\nStatus: Accepted\r\n\r\nBody\r\n",
			updates: supersede,
			want:    "# ADR 0001: Old\r\n\r\nDate: 2024-01-01\r\nStatus: Superseded by 0002\r\nSuperseded-by: 0002\r\n\r\nBody\r\n",
		},
		{
			name:    "crlf document gets crlf on inserted lines",
			raw:     "# ADR 0001: Bare\r\n\r\nBody\r\n",
			updates: accept,
			want:    "# ADR 0001: Bare\r\nDate: 2024-06-01\r\nStatus: Accepted\r\n\r\nBody\r\n",
		},
		{
			name:    "accept overwrites status and date",
			raw:     "# ADR 0001: Choose DB\n\nDate: 2024-05-01\nStatus: Proposed\nSupersedes: 0003\n\nBody\n",
			updates: accept,
			want:    "# ADR 0001: Choose DB\n\nDate: 2024-06-01\nStatus: Accepted\nSupersedes: 0003\n\nBody\n",
		},
		{
			name:    "accept inserts missing status and date after heading",
			raw:     "# ADR 0001: Bare\n\nBody\n",
			updates: accept,
			want:    "# ADR 0001: Bare\nDate: 2024-06-01\nStatus: Accepted\n\nBody\n",
		},
		{
			name:    "missing trailing newline preserved",
			raw:     "# ADR 0001: X\n\nStatus: Proposed",
			updates: accept[:1],
			want:    "# ADR 0001: X\n\nStatus: Accepted",
		},
		{
			name:    "empty document",
			raw:     "",
			updates: accept[:1],
			want:    "Status: Accepted\n",
		},
		{
			name:    "supersedes inserted after status",
			raw:     "# ADR 0002: Y\n\nDate: d\nStatus: Proposed\n\nBody\n",
			updates: []FieldUpdate{{Field: FieldSupersedes, Value: "[0001](0001-x.md)"}},
			want:    "# ADR 0002: Y\n\nDate: d\nStatus: Proposed\nSupersedes: [0001](0001-x.md)\n\nBody\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := UpdateFields(tc.raw, tc.updates...)
			if err != nil {
				t.Fatalf("UpdateFields: %v", err)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("UpdateFields mismatch (-want +got):\n%s", diff)
			}

			again, err := UpdateFields(got, tc.updates...)
			if err != nil {
				t.Fatalf("UpdateFields (second): %v", err)
			}

			if diff := cmp.Diff(got, again); diff != "" {
				t.Fatalf("UpdateFields not idempotent (-first +second):\n%s", diff)
			}
		})
	}
}

func Test_UpdateFields_FrontMatter_Reencodes_Block_And_Keeps_Tail(t *testing.T) {
	t.Parallel()

	raw := "---\ntitle: Choose X\nowner: alice\nnumber: 1\nstatus: Proposed\n---\n\n# ADR 0001: Choose X\n\nStatus: legacy\n"

	got, err := UpdateFields(raw,
		FieldUpdate{Field: FieldStatus, Value: SupersededStatus(2)},
		FieldUpdate{Field: FieldSupersededBy, Value: "0002"},
	)
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	want := "---\nnumber: 1\ntitle: Choose X\nstatus: Superseded by 0002\nsuperseded_by: 2\nowner: alice\n---\n\n" +
		"# ADR 0001: Choose X\n\nStatus: legacy\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("UpdateFields mismatch (-want +got):\n%s", diff)
	}

	rec := Parse(got, "0001-choose-x.md", testToday)
	if rec.Status != "Superseded by 0002" || rec.SupersededBy != 2 {
		t.Fatalf("parsed status=%q superseded_by=%d", rec.Status, rec.SupersededBy)
	}
}

func Test_UpdateFields_FrontMatter_Returns_Error_When_Block_Is_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"---\ntitle: [x\n---\n", "---\ntitle: x\n"} {
		_, err := UpdateFields(raw, FieldUpdate{Field: FieldStatus, Value: StatusAccepted})
		if !errors.Is(err, ErrMalformedFrontMatter) {
			t.Errorf("UpdateFields(%q): err=%v, want %v", raw, err, ErrMalformedFrontMatter)
		}
	}
}

func Test_UpdateFields_Only_Touches_Scan_Window(t *testing.T) {
	t.Parallel()

	raw := "# ADR 0001: X\nStatus: Proposed\n" + strings.Repeat("line\n", 250) + "Superseded-by: 0007\n"

	got, err := UpdateFields(raw,
		FieldUpdate{Field: FieldStatus, Value: SupersededStatus(2)},
		FieldUpdate{Field: FieldSupersededBy, Value: "0002"},
	)
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	if !strings.HasSuffix(got, "Superseded-by: 0007\n") {
		t.Fatal("line beyond the scan window was modified")
	}

	if !strings.HasPrefix(got, "# ADR 0001: X\nStatus: Superseded by 0002\nSuperseded-by: 0002\nline\n") {
		t.Fatalf("unexpected head: %q", got[:80])
	}
}
