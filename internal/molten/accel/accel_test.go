package accel

import (
	"errors"
	"testing"
)

func TestFilterSelectsPassingIndices(t *testing.T) {
	passed, err := Filter(5, func(i int) (bool, error) {
		return i%2 == 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{0, 2, 4}
	if len(passed) != len(want) {
		t.Fatalf("expected %v, got %v", want, passed)
	}
	for i, v := range want {
		if passed[i] != v {
			t.Fatalf("expected %v, got %v", want, passed)
		}
	}
}

func TestFilterPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Filter(3, func(i int) (bool, error) {
		if i == 1 {
			return false, boom
		}
		return true, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestFilterEmptyRange(t *testing.T) {
	passed, err := Filter(0, func(i int) (bool, error) {
		t.Fatal("check should never be called for an empty range")
		return false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passed) != 0 {
		t.Fatalf("expected no passing indices, got %v", passed)
	}
}
