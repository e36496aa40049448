package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calvinalkan/radr/internal/adr"

	flag "github.com/spf13/pflag"
)

var errSupersedeArgs = errors.New("usage: supersede <id> <title>")

// SupersedeCmd returns the supersede command.
func SupersedeCmd(a *app) *Command {
	fs := flag.NewFlagSet("supersede", flag.ContinueOnError)
	fs.BoolP("force", "f", false, "Supersede even if the ADR is already superseded")

	return &Command{
		Flags: fs,
		Usage: "supersede <id> <title> [flags]",
		Short: "Create an ADR that supersedes <id>",
		Long: `Create a new Proposed ADR that supersedes <id>, then mark <id> as
"Superseded by" the new ADR. Both documents link to each other and the index
is regenerated.

An ADR that is already superseded is refused unless --force is given or the
replacement is confirmed at the terminal prompt.`,
		Mutating: true,
		Exec: func(_ context.Context, o *IO, args []string) error {
			force, _ := fs.GetBool("force")

			return execSupersede(o, a, force, args)
		},
	}
}

func execSupersede(o *IO, a *app, force bool, args []string) error {
	if len(args) < 2 {
		return errSupersedeArgs
	}

	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		return adr.ErrTitleRequired
	}

	old, err := a.engine.Find(args[0])
	if err != nil {
		return err
	}

	if old.IsSuperseded() && !force {
		err = confirmResupersede(a, old)
		if err != nil {
			return err
		}
	}

	created, err := a.engine.CreateSuperseding(old.Number, title)
	if err != nil {
		return err
	}

	o.Printf("Created ADR %s superseding %s\n", adr.FormatNumber(created.Number), adr.FormatNumber(old.Number))
	a.log.Info("superseded", "old", old.Path, "new", created.Path)

	return nil
}

func confirmResupersede(a *app, old adr.Record) error {
	refused := fmt.Errorf("%w: %s by %s (use --force to replace)", adr.ErrAlreadySuperseded,
		adr.FormatNumber(old.Number), adr.FormatNumber(old.SupersededBy))

	if a.confirm == nil {
		return refused
	}

	ok, err := a.confirm(fmt.Sprintf("ADR %s is already superseded by %s. Supersede it again? [y/N] ",
		adr.FormatNumber(old.Number), adr.FormatNumber(old.SupersededBy)))
	if err != nil {
		return err
	}

	if !ok {
		return refused
	}

	return nil
}
