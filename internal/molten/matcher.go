package molten

import (
	"cmp"
	"sort"
)

// assignment is one candidate realization of a concrete sink wave:
// the existing node labels reused for already-isomorphic particles,
// plus the particles that still need a freshly focused node.
type assignment[T cmp.Ordered] struct {
	matched   []Label
	unmatched []Particle[T]
}

// joinWaves adds residue onto base pointwise, treating an empty
// operand as contributing nothing rather than erroring — Wave.Join
// only signals "basis empty" via its bool, it does not hand back the
// original value in that case.
func joinWaves[T cmp.Ordered](base, residue Wave[T]) Wave[T] {
	if residue.Empty() {
		return base
	}
	if base.Empty() {
		return residue
	}
	result, _ := base.Join(residue)
	return result
}

// flattenUnits expands a wave into one particle entry per unit of
// count, in canonical (fingerprint-sorted) order, so the recursive
// matchers below have a stable slot ordering.
func flattenUnits[T cmp.Ordered](w Wave[T]) []Particle[T] {
	var units []Particle[T]
	for _, p := range w.Particles() {
		for i := 0; i < p.Count; i++ {
			units = append(units, p.Particle)
		}
	}
	return units
}

func containsLabel(labels []Label, l Label) bool {
	for _, x := range labels {
		if x == l {
			return true
		}
	}
	return false
}

// primaryMatchings recursively assigns every unit of sinkWave's demand
// to a distinct existing node whose particle is isomorphic, honouring
// the world-disjointness rule (no two assigned labels share a world).
// Returns only complete matchings — every unit assigned — deduplicated
// by the resulting label set. An empty result means no full matching
// exists and the caller should fall back to the greedy search.
func (h *Hypergraph[T]) primaryMatchings(units []Particle[T]) []assignment[T] {
	var results []assignment[T]
	seen := make(map[string]bool)

	var rec func(i int, matched []Label, usedWorlds map[Label]bool)
	rec = func(i int, matched []Label, usedWorlds map[Label]bool) {
		if i == len(units) {
			key := edgeKey(matched, nil, Relation[T]{})
			if !seen[key] {
				seen[key] = true
				results = append(results, assignment[T]{matched: append([]Label{}, matched...)})
			}
			return
		}

		candidates := h.Isomorphics(units[i])
		for _, c := range candidates {
			if containsLabel(matched, c) {
				continue
			}
			world, err := h.Locate(c)
			if err != nil {
				continue
			}
			if usedWorlds[world] {
				continue
			}
			nextUsed := make(map[Label]bool, len(usedWorlds)+1)
			for w := range usedWorlds {
				nextUsed[w] = true
			}
			nextUsed[world] = true
			rec(i+1, append(append([]Label{}, matched...), c), nextUsed)
		}
	}

	rec(0, nil, map[Label]bool{})
	return results
}

// greedySearch is the fallback pass: for each unit, in order, take any
// existing isomorphic node whose world has not yet been claimed by
// this assignment; otherwise mark the unit unmatched. Always succeeds
// (possibly with everything unmatched), so the matcher always produces
// a result.
func (h *Hypergraph[T]) greedySearch(units []Particle[T]) assignment[T] {
	var matched []Label
	var unmatched []Particle[T]
	usedWorlds := map[Label]bool{}

	for _, u := range units {
		candidates := h.Isomorphics(u)
		taken := false
		for _, c := range candidates {
			if containsLabel(matched, c) {
				continue
			}
			world, err := h.Locate(c)
			if err != nil {
				continue
			}
			if usedWorlds[world] {
				continue
			}
			matched = append(matched, c)
			usedWorlds[world] = true
			taken = true
			break
		}
		if !taken {
			unmatched = append(unmatched, u)
		}
	}

	return assignment[T]{matched: matched, unmatched: unmatched}
}

// Absorb is the match-and-create primitive: given a candidate node-
// label set (the source context) and a relation, it enumerates every
// residue of the candidate wave against the relation's source, realizes
// the relation's sink concretely for each residue, assigns existing
// nodes where possible (falling back to a greedy pass when no full
// matching exists), focuses fresh nodes for whatever remains unmatched,
// and translates each completed assignment into an edge. It returns the
// labels of every newly created edge (existing-edge returns contribute
// nothing).
func (h *Hypergraph[T]) Absorb(source []Label, relation Relation[T]) ([]Label, error) {
	h.mu.RLock()
	particles := make([]Particle[T], 0, len(source))
	for _, l := range source {
		n, ok := h.nodes[l]
		if !ok {
			h.mu.RUnlock()
			return nil, MissingErr(l)
		}
		particles = append(particles, n.Particle)
	}
	h.mu.RUnlock()

	candidate := Coalesce(particles)
	residues := candidate.Diverges(relation.Source)

	var created []Label
	createdSeen := map[Label]bool{}

	for _, residue := range residues {
		for _, sink := range relation.Sinks {
			sinkWave := joinWaves(sink, residue)
			units := flattenUnits(sinkWave)

			assignments := h.primaryMatchings(units)
			if len(assignments) == 0 {
				assignments = []assignment[T]{h.greedySearch(units)}
			}

			for _, a := range assignments {
				sinkLabels := append([]Label{}, a.matched...)
				for _, up := range a.unmatched {
					fresh, err := h.Focus(up)
					if err != nil {
						return created, err
					}
					sinkLabels = append(sinkLabels, fresh)
				}

				if dup := duplicateLabel(sinkLabels); dup != nil {
					return created, DuplicateErr(*dup)
				}

				result, err := h.Translate(source, sinkLabels, relation)
				if err != nil {
					return created, err
				}
				if result.New && !createdSeen[result.Label] {
					createdSeen[result.Label] = true
					created = append(created, result.Label)
				}
			}
		}
	}

	sort.Slice(created, func(i, j int) bool { return created[i] < created[j] })
	h.emit(Event{Kind: EventAbsorb, Source: source, Sink: created, Count: len(created)})
	return created, nil
}

func duplicateLabel(labels []Label) *Label {
	seen := map[Label]bool{}
	for _, l := range labels {
		if seen[l] {
			dup := l
			return &dup
		}
		seen[l] = true
	}
	return nil
}
