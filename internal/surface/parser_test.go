package surface

import "testing"

func TestParseSymbolLeaf(t *testing.T) {
	attr, err := ParseSource("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attr.Value != "a" {
		t.Fatalf("expected leaf value a, got %q", attr.Value)
	}
}

func TestParseNestedGroup(t *testing.T) {
	attr, err := ParseSource("(context (group a b) (group c))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attr.Context) != 2 {
		t.Fatalf("expected 2 particle groups, got %d", len(attr.Context))
	}
	if len(attr.Context[0].Context) != 2 {
		t.Fatalf("expected 2 symbols in first group, got %d", len(attr.Context[0].Context))
	}
}

func TestParseUnterminatedList(t *testing.T) {
	if _, err := ParseSource("(context (group a)"); err == nil {
		t.Fatal("expected an error for unterminated list")
	}
}

func TestParseUnknownKeyword(t *testing.T) {
	if _, err := ParseSource("(bogus a)"); err == nil {
		t.Fatal("expected an error for unknown keyword")
	}
}

func TestParseTrailingInput(t *testing.T) {
	if _, err := ParseSource("a b"); err == nil {
		t.Fatal("expected an error for trailing input after the top-level form")
	}
}
