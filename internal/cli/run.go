package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/calvinalkan/radr/internal/adr"
	"github.com/calvinalkan/radr/internal/fs"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"

	// LogEnvVar selects the diagnostic log level (debug, info, warn, error).
	LogEnvVar = "RADR_LOG"

	lockFileName = ".radr.lock"
	lockTimeout  = 5 * time.Second
	dirPerm      = 0o755
)

// app carries what commands need once the configuration is loaded.
// Commands are constructed before that so usage can be printed without it.
type app struct {
	cfg    adr.Config
	engine *adr.Engine
	log    *slog.Logger

	// confirm asks the user a yes/no question. Nil when stdin is not a
	// terminal.
	confirm func(question string) (bool, error)
}

func commands(a *app) []*Command {
	return []*Command{
		NewCmd(a),
		AcceptCmd(a),
		RejectCmd(a),
		SupersedeCmd(a),
		ListCmd(a),
		IndexCmd(a),
		ReformatCmd(a),
		PrintConfigCmd(a),
	}
}

// Run is the main entry point. Returns exit code.
//
// A signal on sigCh cancels the context passed to the running command; a
// nil sigCh is allowed.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	a := &app{}
	cmds := commands(a)

	if len(args) < minArgs {
		printUsage(out, cmds)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == helpFlag {
		printUsage(out, cmds)

		return 0
	}

	name, cmdArgs := flags.remaining[0], flags.remaining[1:]

	cmd := findCommand(cmds, name)
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, cmds)

		return 1
	}

	o := NewIO(out, errOut)

	if hasHelpFlag(cmdArgs) {
		cmd.PrintHelp(o)

		return 0
	}

	cfg, err := adr.LoadConfig(adr.LoadConfigInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		DirOverride:     flags.adrDir,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fsys := fs.NewReal()

	a.cfg = cfg
	a.log = newLogger(errOut, flags.verbose, env[LogEnvVar])
	a.engine = adr.NewEngine(
		adr.NewFSRepository(fsys, cfg.DirAbs, cfg.Format, nil),
		cfg,
		adr.WithLogger(a.log),
	)
	a.confirm = terminalConfirm(in)

	if cmd.Mutating {
		release, lockErr := lockDir(fsys, cfg.DirAbs, a.log)
		if lockErr != nil {
			fprintln(errOut, "error:", lockErr)

			return 1
		}

		defer release()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case sig := <-sigCh:
			a.log.Debug("signal received", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	code := cmd.Run(ctx, o, cmdArgs)
	if code != 0 {
		return code
	}

	return o.Finish()
}

// lockDir creates the ADR directory and takes the exclusive directory lock.
func lockDir(fsys fs.FS, dir string, log *slog.Logger) (func(), error) {
	err := fsys.MkdirAll(dir, dirPerm)
	if err != nil {
		return nil, fmt.Errorf("creating ADR directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, lockFileName)

	lock, err := fs.NewLocker(fsys).LockWithTimeout(path, lockTimeout)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}

	log.Debug("lock acquired", "path", path)

	return func() {
		closeErr := lock.Close()
		if closeErr != nil {
			log.Warn("releasing lock", "path", path, "error", closeErr)
		}
	}, nil
}

// newLogger returns a text logger on errOut when verbose is set or level
// names a level, and a discarding logger otherwise.
func newLogger(errOut io.Writer, verbose bool, level string) *slog.Logger {
	var lvl slog.Level

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		if !verbose {
			return slog.New(slog.NewTextHandler(io.Discard, nil))
		}

		lvl = slog.LevelDebug
	}

	if verbose {
		lvl = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: lvl}))
}

func findCommand(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

type globalFlags struct {
	workDir    string
	configPath string
	adrDir     string
	verbose    bool
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	if value, consumed, ok, err := flagValue(args, idx, "-C", "--cwd"); ok {
		flags.workDir = value

		return consumed, err
	}

	if value, consumed, ok, err := flagValue(args, idx, "-c", "--config"); ok {
		flags.configPath = value

		return consumed, err
	}

	if value, consumed, ok, err := flagValue(args, idx, "", "--adr-dir"); ok {
		flags.adrDir = value

		return consumed, err
	}

	if arg == "-v" || arg == "--verbose" {
		flags.verbose = true

		return consumedOne, nil
	}

	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", adr.ErrUnknownFlag, arg)
	}

	return consumedNone, nil
}

// flagValue matches a value flag in its "-x v", "-xv", "--long v" and
// "--long=v" forms. ok reports whether args[idx] is this flag.
func flagValue(args []string, idx int, short, long string) (string, int, bool, error) {
	arg := args[idx]

	if arg == short || arg == long {
		if idx+1 >= len(args) {
			return "", consumedNone, true, fmt.Errorf("%w: %s", adr.ErrFlagRequiresArg, arg)
		}

		return args[idx+1], consumedTwo, true, nil
	}

	if after, found := strings.CutPrefix(arg, long+"="); found {
		return after, consumedOne, true, nil
	}

	if short != "" && len(arg) > len(short) && strings.HasPrefix(arg, short) && !strings.HasPrefix(arg, "--") {
		return arg[len(short):], consumedOne, true, nil
	}

	return "", consumedNone, false, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == helpFlag {
			return true
		}
	}

	return false
}

func printUsage(w io.Writer, cmds []*Command) {
	fprintln(w, `radr - manage Architecture Decision Records

Usage: radr [options] <command> [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file (json, yaml, toml)
      --adr-dir <dir>    Override the ADR directory
  -v, --verbose          Log file operations to stderr
  -h, --help             Show help

Commands:`)

	for _, c := range cmds {
		fprintln(w, c.HelpLine())
	}
}
