package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/calvinalkan/radr/internal/adr"

	flag "github.com/spf13/pflag"
)

var errIDRequired = errors.New("ADR number or title is required")

// AcceptCmd returns the accept command.
func AcceptCmd(a *app) *Command {
	return transitionCmd(a, "accept", "Accepted", adr.StatusAccepted)
}

// RejectCmd returns the reject command.
func RejectCmd(a *app) *Command {
	return transitionCmd(a, "reject", "Rejected", adr.StatusRejected)
}

func transitionCmd(a *app, name, verb, status string) *Command {
	return &Command{
		Flags: flag.NewFlagSet(name, flag.ContinueOnError),
		Usage: name + " <id-or-title>",
		Short: "Set status to " + status,
		Long: `Set the status of an ADR to ` + status + ` and its date to today.

The ADR is looked up by number first ("3" and "0003" are the same), then by
exact title ignoring case. A superseded ADR cannot change status.`,
		Mutating: true,
		Exec: func(_ context.Context, o *IO, args []string) error {
			id := strings.TrimSpace(strings.Join(args, " "))
			if id == "" {
				return errIDRequired
			}

			rec, err := a.engine.Transition(id, status)
			if err != nil {
				return err
			}

			o.Printf("%s ADR %s: %s\n", verb, adr.FormatNumber(rec.Number), rec.Title)

			return nil
		},
	}
}
