package testutil

import "testing"

func TestCompareStateOnEmptyDirectory(t *testing.T) {
	t.Parallel()

	h := NewHarness(t)

	if err := CompareState(h); err != nil {
		t.Fatalf("empty collection: %v", err)
	}

	if err := CheckReformatIdempotent(h); err != nil {
		t.Fatalf("empty collection: %v", err)
	}
}

func TestRunBehaviorWithoutOperations(t *testing.T) {
	t.Parallel()

	RunBehavior(t, nil, DefaultRunConfig())
	RunBehavior(t, []byte{}, RunConfig{MaxOps: 1, CompareStateEveryN: 1})
}
