package molten

import "testing"

func TestRelatedAddDuplicateRejected(t *testing.T) {
	rules := NewRelated[string]()
	rel := NewRelation(
		Coalesce([]Particle[string]{NewParticle("a")}),
		Coalesce([]Particle[string]{NewParticle("b")}),
	)

	if err := rules.Add(rel); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := rules.Add(rel); !IsKind(err, KindDuplicate) {
		t.Errorf("expected Duplicate error on repeated relation, got %v", err)
	}
	if rules.Len() != 1 {
		t.Errorf("expected exactly one relation, got %d", rules.Len())
	}
}

func TestRelatedRelationsStableOrder(t *testing.T) {
	rules := NewRelated[string]()
	r1 := NewRelation(Coalesce([]Particle[string]{NewParticle("a")}), Coalesce([]Particle[string]{NewParticle("x")}))
	r2 := NewRelation(Coalesce([]Particle[string]{NewParticle("b")}), Coalesce([]Particle[string]{NewParticle("y")}))

	if err := rules.Add(r1); err != nil {
		t.Fatalf("add r1 failed: %v", err)
	}
	if err := rules.Add(r2); err != nil {
		t.Fatalf("add r2 failed: %v", err)
	}

	first := rules.Relations()
	second := rules.Relations()
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 relations, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Fingerprint() != second[i].Fingerprint() {
			t.Errorf("expected stable iteration order, slot %d differed: %s vs %s", i, first[i].Fingerprint(), second[i].Fingerprint())
		}
	}
}
