package surface

import "testing"

func TestBuildRulesSingleRule(t *testing.T) {
	root, err := ParseSource("(partition (rule (context (group a)) (context (group a) (group b))))")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	related, err := BuildRules(root)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	rels := related.Relations()
	if len(rels) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(rels))
	}
	if rels[0].Source.Rank() != 1 {
		t.Fatalf("expected source rank 1, got %d", rels[0].Source.Rank())
	}
	if len(rels[0].Sinks) != 1 || rels[0].Sinks[0].Rank() != 2 {
		t.Fatalf("expected one sink of rank 2, got %+v", rels[0].Sinks)
	}
}

func TestBuildRulesRejectsNonPartitionRoot(t *testing.T) {
	root, err := ParseSource("(context (group a))")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := BuildRules(root); err == nil {
		t.Fatal("expected an error for a non-partition root")
	}
}

func TestBuildSignal(t *testing.T) {
	root, err := ParseSource("(context (group a b) (group c))")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	signal, err := BuildSignal(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signal.Rank() != 2 {
		t.Fatalf("expected signal rank 2, got %d", signal.Rank())
	}
}
