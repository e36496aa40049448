package cli

import (
	"context"
	"encoding/json"
	"fmt"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration as JSON and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execPrintConfig(o, a)
		},
	}
}

func execPrintConfig(o *IO, a *app) error {
	data, err := json.MarshalIndent(a.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting config: %w", err)
	}

	o.Println(string(data))
	o.Println("")
	o.Println("effective_cwd=" + a.cfg.EffectiveCwd)
	o.Println("adr_dir=" + a.cfg.DirAbs)
	o.Println("index=" + a.cfg.IndexPath())

	if a.cfg.TemplateAbs != "" {
		o.Println("template=" + a.cfg.TemplateAbs)
	}

	o.Println("")
	o.Println("# sources")

	src := a.cfg.Sources
	if src.Global == "" && src.Project == "" && src.Env == "" && src.Explicit == "" {
		o.Println("(defaults only)")

		return nil
	}

	for _, s := range []struct{ key, path string }{
		{"global_config", src.Global},
		{"project_config", src.Project},
		{"env_config", src.Env},
		{"explicit_config", src.Explicit},
	} {
		if s.path != "" {
			o.Println(s.key + "=" + s.path)
		}
	}

	return nil
}
