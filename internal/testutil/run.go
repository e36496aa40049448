package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/radr/internal/adr"
)

// RunConfig configures a behavior test run.
type RunConfig struct {
	// MaxOps is the maximum number of operations to execute.
	MaxOps int

	// CompareStateEveryN runs a full state comparison every N operations.
	// 0 checks only at the end.
	CompareStateEveryN int
}

// DefaultRunConfig returns a balanced configuration for behavior tests.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxOps:             60,
		CompareStateEveryN: 10,
	}
}

// RunBehavior executes operations derived from seed against the engine and
// the model, failing on the first divergence.
func RunBehavior(tb testing.TB, seed []byte, cfg RunConfig) {
	tb.Helper()

	if cfg.MaxOps <= 0 {
		tb.Fatalf("RunBehavior requires MaxOps > 0")
	}

	h := NewHarness(tb)
	gen := NewOpGenerator(seed, h.Model, DefaultOpGenConfig())
	history := make([]string, 0, cfg.MaxOps)

	for opIndex := 1; opIndex <= cfg.MaxOps && gen.HasMore(); opIndex++ {
		op := gen.NextOp()
		history = append(history, op.String())

		realRes := op.ApplyReal(h)
		modelRes := op.ApplyModel(h)

		if diff := cmp.Diff(modelRes, realRes); diff != "" {
			tb.Fatalf("result mismatch for %s (-model +real):\n%s\n%s", op, diff, FormatOps(history))
		}

		if cfg.CompareStateEveryN > 0 && opIndex%cfg.CompareStateEveryN == 0 {
			if err := CompareState(h); err != nil {
				tb.Fatalf("%v\n%s", err, FormatOps(history))
			}
		}
	}

	if err := CompareState(h); err != nil {
		tb.Fatalf("%v\n%s", err, FormatOps(history))
	}

	if err := CheckReformatIdempotent(h); err != nil {
		tb.Fatalf("%v\n%s", err, FormatOps(history))
	}
}

// CompareState checks the collection on disk against the model and the
// index left by the last operation against a fresh rendering.
func CompareState(h *Harness) error {
	records, err := h.Repo.List()
	if err != nil {
		return fmt.Errorf("listing: %w", err)
	}

	got := make([]ModelRecord, len(records))
	for i, r := range records {
		got[i] = ModelRecord{
			Number:       r.Number,
			Title:        r.Title,
			Status:       r.Status,
			Date:         r.Date,
			Supersedes:   r.Supersedes,
			SupersededBy: r.SupersededBy,
		}
	}

	if diff := cmp.Diff(h.Model.Records(), got, cmpopts.EquateEmpty()); diff != "" {
		return fmt.Errorf("state mismatch (-model +real):\n%s", diff)
	}

	index, err := os.ReadFile(h.IndexPath())
	if err != nil {
		if os.IsNotExist(err) && len(records) == 0 {
			return nil
		}

		return fmt.Errorf("reading index: %w", err)
	}

	if diff := cmp.Diff(adr.RenderIndex(records), string(index)); diff != "" {
		return fmt.Errorf("index out of date (-want +got):\n%s", diff)
	}

	return nil
}

// CheckReformatIdempotent reformats everything twice with the active engine
// and requires the second pass to change no bytes.
func CheckReformatIdempotent(h *Harness) error {
	_, err := h.Active.ReformatAll()
	if err != nil {
		return fmt.Errorf("first reformat: %w", err)
	}

	before, err := snapshot(h.Dir)
	if err != nil {
		return err
	}

	_, err = h.Active.ReformatAll()
	if err != nil {
		return fmt.Errorf("second reformat: %w", err)
	}

	after, err := snapshot(h.Dir)
	if err != nil {
		return err
	}

	if diff := cmp.Diff(before, after); diff != "" {
		return fmt.Errorf("reformat is not idempotent (-first +second):\n%s", diff)
	}

	return CompareState(h)
}

func snapshot(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("snapshot: %w", err)
	}

	out := make(map[string]string, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		data, readErr := os.ReadFile(filepath.Join(dir, e.Name()))
		if readErr != nil {
			return nil, fmt.Errorf("snapshot: %w", readErr)
		}

		out[e.Name()] = string(data)
	}

	return out, nil
}

// FormatOps renders an operation history for failure messages.
func FormatOps(history []string) string {
	var b strings.Builder

	b.WriteString("operations:\n")

	for i, op := range history {
		fmt.Fprintf(&b, "  %3d. %s\n", i+1, op)
	}

	return b.String()
}
