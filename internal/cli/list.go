package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/calvinalkan/radr/internal/adr"

	flag "github.com/spf13/pflag"
)

// ListCmd returns the list command.
func ListCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("list", flag.ContinueOnError),
		Usage: "list",
		Short: "List ADRs and regenerate the index",
		Long: `Print one line per ADR in number order:

  NNNN | title | status | date

The index is regenerated as a side effect.`,
		Mutating: true,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			records, err := a.engine.List()
			if err != nil {
				return err
			}

			warnInconsistencies(o, records)

			for _, r := range records {
				o.Printf("%s | %s | %s | %s\n", adr.FormatNumber(r.Number), r.Title, r.Status, r.Date)
			}

			return nil
		},
	}
}

// IndexCmd returns the index command.
func IndexCmd(a *app) *Command {
	return &Command{
		Flags:    flag.NewFlagSet("index", flag.ContinueOnError),
		Usage:    "index",
		Short:    "Regenerate the index",
		Mutating: true,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			records, err := a.engine.List()
			if err != nil {
				return err
			}

			warnInconsistencies(o, records)
			o.Println("Updated", a.cfg.IndexPath())

			return nil
		},
	}
}

// warnInconsistencies flags duplicate numbers and supersession links to
// numbers that do not exist. Neither stops the command.
func warnInconsistencies(o *IO, records []adr.Record) {
	byNumber := make(map[uint32][]string, len(records))
	for _, r := range records {
		byNumber[r.Number] = append(byNumber[r.Number], r.Filename())
	}

	reported := make(map[uint32]bool)

	for _, r := range records {
		if names := byNumber[r.Number]; len(names) > 1 && !reported[r.Number] {
			reported[r.Number] = true
			o.Warn(
				fmt.Sprintf("duplicate ADR number %s (%s)", adr.FormatNumber(r.Number), strings.Join(names, ", ")),
				"renumber all but one of them",
			)
		}

		if r.SupersededBy != 0 && len(byNumber[r.SupersededBy]) == 0 {
			o.Warn(
				fmt.Sprintf("%s is superseded by missing ADR %s", r.Filename(), adr.FormatNumber(r.SupersededBy)),
				"restore the superseding ADR or fix the Superseded-by field",
			)
		}

		if r.Supersedes != 0 && len(byNumber[r.Supersedes]) == 0 {
			o.Warn(
				fmt.Sprintf("%s supersedes missing ADR %s", r.Filename(), adr.FormatNumber(r.Supersedes)),
				"restore the superseded ADR or fix the Supersedes field",
			)
		}
	}
}
