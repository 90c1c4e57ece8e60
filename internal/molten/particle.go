package molten

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
)

// Particle is a finite multiset of symbols: the atom of the state
// algebra. Read-only after construction; no zero counts are ever
// stored, so Rank()==0 is the well-formed, distinguished empty particle.
type Particle[T cmp.Ordered] struct {
	counts map[T]int
}

// NewParticle builds a particle from a slice of symbols, counting
// duplicates.
func NewParticle[T cmp.Ordered](symbols ...T) Particle[T] {
	counts := make(map[T]int, len(symbols))
	for _, s := range symbols {
		counts[s]++
	}
	return Particle[T]{counts: counts}
}

func particleFromCounts[T cmp.Ordered](counts map[T]int) Particle[T] {
	clean := make(map[T]int, len(counts))
	for k, v := range counts {
		if v > 0 {
			clean[k] = v
		}
	}
	return Particle[T]{counts: clean}
}

// Rank is the sum of the particle's symbol counts.
func (p Particle[T]) Rank() int {
	total := 0
	for _, c := range p.counts {
		total += c
	}
	return total
}

// Empty reports whether the particle carries no symbols (rank 0).
func (p Particle[T]) Empty() bool { return len(p.counts) == 0 }

// Count returns the multiplicity of sym, 0 if absent.
func (p Particle[T]) Count(sym T) int { return p.counts[sym] }

// Symbols returns the particle's distinct symbols in ascending order.
func (p Particle[T]) Symbols() []T {
	out := make([]T, 0, len(p.counts))
	for k := range p.counts {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fingerprint is a canonical string key identifying this particle's
// mapping, used wherever a Particle must act as a map key (Go maps
// cannot key on map-valued types directly).
func (p Particle[T]) Fingerprint() string {
	syms := p.Symbols()
	var b strings.Builder
	for i, s := range syms {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%v:%d", s, p.counts[s])
	}
	return b.String()
}

// Subset reports self[k] <= basis[k] for every k in self.
func (p Particle[T]) Subset(basis Particle[T]) bool {
	for k, c := range p.counts {
		if basis.counts[k] < c {
			return false
		}
	}
	return true
}

// Superset is the symmetric counterpart of Subset.
func (p Particle[T]) Superset(basis Particle[T]) bool { return basis.Subset(p) }

// Joint reports whether self and basis share any symbol.
func (p Particle[T]) Joint(basis Particle[T]) bool {
	for k := range p.counts {
		if _, ok := basis.counts[k]; ok {
			return true
		}
	}
	return false
}

// Disjoint is the negation of Joint.
func (p Particle[T]) Disjoint(basis Particle[T]) bool { return !p.Joint(basis) }

// Isomorphic reports whether self and basis carry the same mapping.
func (p Particle[T]) Isomorphic(basis Particle[T]) bool {
	if len(p.counts) != len(basis.counts) {
		return false
	}
	for k, c := range p.counts {
		if basis.counts[k] != c {
			return false
		}
	}
	return true
}

// Join is the pointwise sum of self and basis. It returns ok=false iff
// basis contributed zero new count (i.e. basis is empty).
func (p Particle[T]) Join(basis Particle[T]) (Particle[T], bool) {
	if basis.Empty() {
		return Particle[T]{}, false
	}
	result := make(map[T]int, len(p.counts)+len(basis.counts))
	for k, c := range p.counts {
		result[k] = c
	}
	for k, c := range basis.counts {
		result[k] += c
	}
	return particleFromCounts(result), true
}

// Intersect is the pointwise minimum, filtered to positive counts. It
// returns ok=false if the result would be empty.
func (p Particle[T]) Intersect(basis Particle[T]) (Particle[T], bool) {
	result := make(map[T]int)
	for k, c := range p.counts {
		if bc, ok := basis.counts[k]; ok {
			if m := min(c, bc); m > 0 {
				result[k] = m
			}
		}
	}
	if len(result) == 0 {
		return Particle[T]{}, false
	}
	return Particle[T]{counts: result}, true
}

// Diverge is the pointwise truncating subtract: self[k] - basis[k]
// where positive, the full count where k is absent from basis. It
// returns ok=false if the result would be empty.
func (p Particle[T]) Diverge(basis Particle[T]) (Particle[T], bool) {
	result := make(map[T]int)
	for k, c := range p.counts {
		bc := basis.counts[k]
		if c > bc {
			result[k] = c - bc
		}
	}
	if len(result) == 0 {
		return Particle[T]{}, false
	}
	return Particle[T]{counts: result}, true
}
