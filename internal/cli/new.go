package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/calvinalkan/radr/internal/adr"

	flag "github.com/spf13/pflag"
)

// NewCmd returns the new command.
func NewCmd(a *app) *Command {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.String("supersedes", "", "Record that this ADR supersedes ADR `N` (the old ADR is not modified)")

	return &Command{
		Flags: fs,
		Usage: "new <title> [flags]",
		Short: "Create a Proposed ADR",
		Long: `Create a new ADR with status Proposed and today's date.

The number is one past the highest existing number. The document comes from
the configured template if set, otherwise the default layout in the
configured representation. The index is regenerated.

To supersede an existing ADR in one step use "radr supersede".`,
		Mutating: true,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execNew(o, a, fs, args)
		},
	}
}

func execNew(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return adr.ErrTitleRequired
	}

	var supersedes uint32

	if raw, _ := fs.GetString("supersedes"); fs.Changed("supersedes") {
		n, ok := adr.ParseNumber(raw)
		if !ok || n == 0 {
			return fmt.Errorf("%w: --supersedes %q", adr.ErrInvalidNumber, raw)
		}

		supersedes = n
	}

	rec, err := a.engine.Create(title, supersedes)
	if err != nil {
		return err
	}

	o.Printf("Created ADR %s: %s at %s\n", adr.FormatNumber(rec.Number), rec.Title, rec.Path)

	return nil
}
