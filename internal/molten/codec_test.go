package molten

import "testing"

func TestArenaRoundTrip(t *testing.T) {
	a := NewArena[string]()
	tree := Attribute[string]{
		Category: CategoryGroup,
		Context: []Attribute[string]{
			{Category: CategoryAttribute, Value: "a"},
			{Category: CategoryAttribute, Value: "b"},
		},
	}
	if _, err := a.Insert(tree); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	data, err := EncodeArena(a)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeArena[string](data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.Len() != a.Len() {
		t.Fatalf("expected %d aliases, got %d", a.Len(), decoded.Len())
	}

	for _, alias := range a.Aliases() {
		want, err := a.Value(alias)
		if err != nil {
			t.Fatalf("value lookup failed: %v", err)
		}
		got, err := decoded.Value(alias)
		if err != nil {
			t.Fatalf("decoded value lookup failed: %v", err)
		}
		if got.Category != want.Category || got.Value != want.Value {
			t.Errorf("alias %d: expected %+v, got %+v", alias, want, got)
		}
	}

	// a second insert of the same tree on the decoded arena must still
	// dedup to the original root alias — proves buckets was rebuilt, not
	// just byAlias.
	rootAlias, err := a.Alias(tree)
	if err != nil {
		t.Fatalf("alias lookup on original failed: %v", err)
	}
	reinserted, err := decoded.Insert(tree)
	if err != nil {
		t.Fatalf("reinsert on decoded arena failed: %v", err)
	}
	if reinserted != rootAlias {
		t.Errorf("expected reinsert to dedup to %d, got %d", rootAlias, reinserted)
	}
}

// TestHypergraphRoundTrip is scenario S6: serialize, deserialize, and
// verify equality of the node and edge label sets, and of n1's world,
// past, and future.
func TestHypergraphRoundTrip(t *testing.T) {
	h := NewHypergraph[string](CoupleOnTranslate)
	n1, _ := h.Focus(NewParticle("a"))

	aWave := Coalesce([]Particle[string]{NewParticle("a")})
	rel := NewRelation(aWave, aWave)
	rules := NewRelated[string]()
	if err := rules.Add(rel); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}
	if _, err := h.Fixed(rules, 0); err != nil {
		t.Fatalf("fixed failed: %v", err)
	}

	data, err := EncodeHypergraph(h)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeHypergraph[string](data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if !labelSlicesEqual(h.Nodes(nil), decoded.Nodes(nil)) {
		t.Errorf("nodes mismatch: %v vs %v", h.Nodes(nil), decoded.Nodes(nil))
	}
	if !labelSlicesEqual(h.Edges(nil), decoded.Edges(nil)) {
		t.Errorf("edges mismatch: %v vs %v", h.Edges(nil), decoded.Edges(nil))
	}

	wantWorld, err := h.Locate(n1)
	if err != nil {
		t.Fatalf("locate failed: %v", err)
	}
	gotWorld, err := decoded.Locate(n1)
	if err != nil {
		t.Fatalf("decoded locate failed: %v", err)
	}
	if wantWorld != gotWorld {
		t.Errorf("expected world %d, got %d", wantWorld, gotWorld)
	}

	if !labelSlicesEqual(h.Past(n1), decoded.Past(n1)) {
		t.Errorf("past mismatch for node %d: %v vs %v", n1, h.Past(n1), decoded.Past(n1))
	}
	if !labelSlicesEqual(h.Future(n1), decoded.Future(n1)) {
		t.Errorf("future mismatch for node %d: %v vs %v", n1, h.Future(n1), decoded.Future(n1))
	}
}

func labelSlicesEqual(a, b []Label) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
