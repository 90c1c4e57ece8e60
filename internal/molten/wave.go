package molten

import (
	"cmp"
	"sort"
)

// waveEntry pairs a particle with its multiplicity inside a wave. Go
// cannot key a map on a map-valued type directly, so Wave keys its
// internal storage by the particle's canonical Fingerprint and keeps
// the particle value alongside it.
type waveEntry[T cmp.Ordered] struct {
	particle Particle[T]
	count    int
}

// Wave is a finite multiset of particles: the shape of a rule source or
// sink. The empty wave (no entries) is itself meaningful.
type Wave[T cmp.Ordered] struct {
	entries map[string]waveEntry[T]
}

// NewWave returns the empty wave.
func NewWave[T cmp.Ordered]() Wave[T] {
	return Wave[T]{entries: map[string]waveEntry[T]{}}
}

// Coalesce rebuilds a wave from a slice of particles, counting
// duplicates (by particle fingerprint).
func Coalesce[T cmp.Ordered](particles []Particle[T]) Wave[T] {
	w := Wave[T]{entries: make(map[string]waveEntry[T], len(particles))}
	for _, p := range particles {
		w.add(p, 1)
	}
	return w
}

func (w Wave[T]) add(p Particle[T], n int) {
	if n <= 0 {
		return
	}
	key := p.Fingerprint()
	e, ok := w.entries[key]
	if ok {
		e.count += n
		w.entries[key] = e
	} else {
		w.entries[key] = waveEntry[T]{particle: p, count: n}
	}
}

// pair is the exported view of one (particle, count) entry, in the
// canonical fingerprint order used throughout the package for
// deterministic iteration.
type pair[T cmp.Ordered] struct {
	particle Particle[T]
	count    int
}

func (w Wave[T]) pairs() []pair[T] {
	keys := make([]string, 0, len(w.entries))
	for k := range w.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]pair[T], 0, len(keys))
	for _, k := range keys {
		e := w.entries[k]
		out = append(out, pair[T]{particle: e.particle, count: e.count})
	}
	return out
}

// Particles returns the wave's distinct particles and their
// multiplicities, in canonical (fingerprint-sorted) order.
func (w Wave[T]) Particles() []struct {
	Particle Particle[T]
	Count    int
} {
	ps := w.pairs()
	out := make([]struct {
		Particle Particle[T]
		Count    int
	}, len(ps))
	for i, p := range ps {
		out[i].Particle = p.particle
		out[i].Count = p.count
	}
	return out
}

// Rank is the sum of the wave's particle counts.
func (w Wave[T]) Rank() int {
	total := 0
	for _, e := range w.entries {
		total += e.count
	}
	return total
}

// Empty reports whether the wave carries no particles.
func (w Wave[T]) Empty() bool { return len(w.entries) == 0 }

// Fingerprint is a canonical string key for this wave's mapping.
func (w Wave[T]) Fingerprint() string {
	ps := w.pairs()
	var b []byte
	for i, p := range ps {
		if i > 0 {
			b = append(b, ';')
		}
		b = append(b, p.particle.Fingerprint()...)
		b = append(b, '#')
		b = append(b, []byte(itoa(p.count))...)
	}
	return string(b)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// diverges enumerates every distinct residue wave obtainable by
// matching each particle of basis (the "demand") against distinct
// particles of self (the "supply"), honouring counts and
// particle-level subset compatibility (the matched supply particle must
// be a superset of the demand particle). A matched supply unit is
// consumed whole, so each residue is the supply left unmatched and
// residue.Join(basis) is a subset of self. Returns [self] when basis is
// empty; returns nil when no full matching of basis exists.
func (w Wave[T]) diverges(basis Wave[T]) []Wave[T] {
	if basis.Empty() {
		return []Wave[T]{w}
	}

	supply := w.pairs()
	demand := basis.pairs()

	var results []Wave[T]
	seen := make(map[string]bool)

	var rec func(supply, demand []pair[T], residue []pair[T])
	rec = func(supply, demand []pair[T], residue []pair[T]) {
		if len(demand) == 0 {
			all := append(append([]pair[T]{}, residue...), supply...)
			result := Wave[T]{entries: map[string]waveEntry[T]{}}
			for _, p := range all {
				result.add(p.particle, p.count)
			}
			key := result.Fingerprint()
			if !seen[key] {
				seen[key] = true
				results = append(results, result)
			}
			return
		}
		if len(supply) == 0 {
			return
		}

		d := demand[0]
		restDemand := demand[1:]

		for i, s := range supply {
			if !s.particle.Superset(d.particle) {
				continue
			}
			applied := d.count
			if s.count < applied {
				applied = s.count
			}
			if applied <= 0 {
				continue
			}

			nextSupply := make([]pair[T], 0, len(supply))
			nextSupply = append(nextSupply, supply[:i]...)
			nextSupply = append(nextSupply, supply[i+1:]...)
			if s.count > applied {
				nextSupply = append(nextSupply, pair[T]{particle: s.particle, count: s.count - applied})
			}

			nextDemand := restDemand
			if d.count > applied {
				nextDemand = append([]pair[T]{{particle: d.particle, count: d.count - applied}}, restDemand...)
			}

			rec(nextSupply, nextDemand, residue)
		}
	}

	rec(supply, demand, nil)
	return results
}

// Diverges is the exported form of diverges for external callers (the
// matcher, and anyone implementing the §6 collaborator contracts).
func (w Wave[T]) Diverges(basis Wave[T]) []Wave[T] { return w.diverges(basis) }

// Subset reports whether every particle of self can be assigned to a
// distinct particle of basis that is its superset (bipartite particle
// matching, § 4.3).
func (w Wave[T]) Subset(basis Wave[T]) bool {
	return len(basis.diverges(w)) > 0
}

// Superset is the symmetric counterpart of Subset.
func (w Wave[T]) Superset(basis Wave[T]) bool { return basis.Subset(w) }

// Joint reports whether self and basis share any particle (by
// isomorphism, i.e. fingerprint equality).
func (w Wave[T]) Joint(basis Wave[T]) bool {
	for k := range w.entries {
		if _, ok := basis.entries[k]; ok {
			return true
		}
	}
	return false
}

// Disjoint is the negation of Joint.
func (w Wave[T]) Disjoint(basis Wave[T]) bool { return !w.Joint(basis) }

// Isomorphic reports whether self and basis carry the same particle
// mapping.
func (w Wave[T]) Isomorphic(basis Wave[T]) bool {
	if len(w.entries) != len(basis.entries) {
		return false
	}
	for k, e := range w.entries {
		be, ok := basis.entries[k]
		if !ok || be.count != e.count {
			return false
		}
	}
	return true
}

// Join is the multiset union of self and basis, keyed by particle
// isomorphism. ok is false iff basis is empty.
func (w Wave[T]) Join(basis Wave[T]) (Wave[T], bool) {
	if basis.Empty() {
		return Wave[T]{}, false
	}
	result := Wave[T]{entries: make(map[string]waveEntry[T], len(w.entries)+len(basis.entries))}
	for _, e := range w.entries {
		result.add(e.particle, e.count)
	}
	for _, e := range basis.entries {
		result.add(e.particle, e.count)
	}
	return result, true
}

// Intersect lifts Particle.Intersect across the cross-product of self's
// and basis's particles, keeping only positive-count results — two
// particles need not be isomorphic to contribute, only to overlap at
// the particle level. ok is false if the result would be empty.
func (w Wave[T]) Intersect(basis Wave[T]) (Wave[T], bool) {
	result := Wave[T]{entries: map[string]waveEntry[T]{}}
	for _, we := range w.entries {
		for _, be := range basis.entries {
			if ip, ok := we.particle.Intersect(be.particle); ok {
				if n := min(we.count, be.count); n > 0 {
					result.add(ip, n)
				}
			}
		}
	}
	if len(result.entries) == 0 {
		return Wave[T]{}, false
	}
	return result, true
}

// Diverge lifts Particle.Diverge across the cross-product of self's and
// basis's particles: each of self's particles is diverged against every
// particle of basis it partially overlaps with; a self particle that
// diverges against nothing in basis survives whole. ok is false if the
// result would be empty.
func (w Wave[T]) Diverge(basis Wave[T]) (Wave[T], bool) {
	result := Wave[T]{entries: map[string]waveEntry[T]{}}
	for _, we := range w.entries {
		matchedAny := false
		for _, be := range basis.entries {
			if !we.particle.Joint(be.particle) {
				continue
			}
			matchedAny = true
			if dp, ok := we.particle.Diverge(be.particle); ok {
				if n := min(we.count, be.count); n > 0 {
					result.add(dp, n)
				}
			}
		}
		if !matchedAny {
			result.add(we.particle, we.count)
		}
	}
	if len(result.entries) == 0 {
		return Wave[T]{}, false
	}
	return result, true
}
