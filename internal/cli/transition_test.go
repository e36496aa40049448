package cli_test

import (
	"testing"

	"github.com/calvinalkan/radr/internal/cli"
)

func TestAcceptAndReject(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteADR("0001-use-go.md", "# ADR 0001: Use Go\n\nDate: 2020-01-01\nStatus: Proposed\n\nBody stays.\n")
	c.WriteADR("0002-use-rust.md", "# ADR 0002: Use Rust\n\nDate: 2020-01-01\nStatus: Proposed\n")
	c.WriteADR("0003-use-zig.md", "# ADR 0003: Use Zig\n\nDate: 2020-01-01\nStatus: Proposed\n")

	out := c.MustRun("accept", "0001")
	cli.AssertContains(t, out, "Accepted ADR 0001: Use Go")

	want := "# ADR 0001: Use Go\n\nDate: " + today() + "\nStatus: Accepted\n\nBody stays.\n"
	if got := c.ReadADR("0001-use-go.md"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	out = c.MustRun("reject", "use", "RUST")
	cli.AssertContains(t, out, "Rejected ADR 0002: Use Rust")
	cli.AssertContains(t, c.ReadADR("0002-use-rust.md"), "Status: Rejected\n")

	out = c.MustRun("accept", "3")
	cli.AssertContains(t, out, "Accepted ADR 0003: Use Zig")

	index := c.ReadADR("index.md")
	cli.AssertContains(t, index, "- [0001: Use Go](0001-use-go.md) — Status: Accepted — Date: "+today())
	cli.AssertContains(t, index, "- [0002: Use Rust](0002-use-rust.md) — Status: Rejected — Date: "+today())
}

func TestTransitionInsertsMissingStatus(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteADR("0001-bare.md", "# ADR 0001: Bare\n\nText.\n")

	c.MustRun("accept", "1")

	want := "# ADR 0001: Bare\nDate: " + today() + "\nStatus: Accepted\n\nText.\n"
	if got := c.ReadADR("0001-bare.md"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTransitionErrors(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteADR("0001-old.md", "# ADR 0001: Old\n\nStatus: Superseded by 0002\nSuperseded-by: 0002\n")
	c.WriteADR("0002-new.md", "# ADR 0002: New\n\nStatus: Proposed\n")

	stderr := c.MustFail("accept", "9")
	cli.AssertContains(t, stderr, "ADR not found: 9")

	stderr = c.MustFail("reject", "1")
	cli.AssertContains(t, stderr, "ADR is superseded: 0001 by 0002")
}
