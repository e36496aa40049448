package cli

import (
	"context"
	"errors"

	"github.com/calvinalkan/radr/internal/adr"

	flag "github.com/spf13/pflag"
)

var (
	errReformatTarget   = errors.New("specify an ADR or --all")
	errReformatConflict = errors.New("cannot combine an ADR with --all")
)

// ReformatCmd returns the reformat command.
func ReformatCmd(a *app) *Command {
	fs := flag.NewFlagSet("reformat", flag.ContinueOnError)
	fs.BoolP("all", "a", false, "Reformat every ADR")

	return &Command{
		Flags: fs,
		Usage: "reformat [<id>] [flags]",
		Short: "Re-render ADR headers in the configured format",
		Long: `Re-render the header of one ADR (or all with --all) in the configured
representation (plain or front matter) and extension. Content after the
header is kept as is.

When the filename changes the file is renamed and "Supersedes:" links in
other ADRs are updated. Running it twice changes nothing.`,
		Mutating: true,
		Exec: func(_ context.Context, o *IO, args []string) error {
			all, _ := fs.GetBool("all")

			return execReformat(o, a, all, args)
		},
	}
}

func execReformat(o *IO, a *app, all bool, args []string) error {
	switch {
	case all && len(args) > 0:
		return errReformatConflict
	case !all && len(args) == 0:
		return errReformatTarget
	}

	if all {
		records, err := a.engine.ReformatAll()
		if err != nil {
			return err
		}

		for _, r := range records {
			printReformatted(o, r)
		}

		return nil
	}

	rec, err := a.engine.Find(args[0])
	if err != nil {
		return err
	}

	out, err := a.engine.Reformat(rec.Number)
	if err != nil {
		return err
	}

	printReformatted(o, out)

	return nil
}

func printReformatted(o *IO, r adr.Record) {
	o.Printf("Reformatted ADR %s: %s\n", adr.FormatNumber(r.Number), r.Path)
}
