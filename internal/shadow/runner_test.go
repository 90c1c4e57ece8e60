package shadow

import (
	"testing"

	"github.com/rawblock/molten/internal/surface"
)

func TestCompareIdenticalRuleTablesAgree(t *testing.T) {
	root, err := surface.ParseSource("(partition (rule (context (group a)) (context (group b))))")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	related, err := surface.BuildRules(root)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	signalRoot, err := surface.ParseSource("(context (group a))")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	signal, err := surface.BuildSignal(signalRoot)
	if err != nil {
		t.Fatalf("unexpected error building signal: %v", err)
	}

	runner := NewRunner(8)
	cmp, err := runner.Compare(signal, related, related)
	if err != nil {
		t.Fatalf("unexpected compare error: %v", err)
	}
	if cmp.Divergent {
		t.Fatalf("identical rule tables over the same signal should never diverge, got %+v", cmp)
	}
	if cmp.VI != 0 {
		t.Fatalf("expected zero variation of information, got %f", cmp.VI)
	}
}

func TestCompareEmptyRuleTablesAgree(t *testing.T) {
	root, err := surface.ParseSource("(partition)")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	related, err := surface.BuildRules(root)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	signalRoot, err := surface.ParseSource("(context (group a))")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	signal, err := surface.BuildSignal(signalRoot)
	if err != nil {
		t.Fatalf("unexpected error building signal: %v", err)
	}

	runner := NewRunner(4)
	cmp, err := runner.Compare(signal, related, related)
	if err != nil {
		t.Fatalf("unexpected compare error: %v", err)
	}
	if cmp.Divergent {
		t.Fatalf("expected no divergence with matching empty rule tables, got %+v", cmp)
	}
}
