package molten

import (
	"cmp"
	"sort"
)

// Relation is one rewrite rule: a source wave (the pattern to match)
// and the sink waves it rewrites to. A relation with more than one sink
// is a single source firing multiple distinct effects, each tracked and
// translated independently by the matcher.
type Relation[T cmp.Ordered] struct {
	Source Wave[T]
	Sinks  []Wave[T]
}

// NewRelation builds a relation from a source and one or more sinks.
func NewRelation[T cmp.Ordered](source Wave[T], sinks ...Wave[T]) Relation[T] {
	return Relation[T]{Source: source, Sinks: append([]Wave[T]{}, sinks...)}
}

// Fingerprint is a canonical string key for this relation, built from
// its source's and sinks' own fingerprints.
func (r Relation[T]) Fingerprint() string {
	var b []byte
	b = append(b, r.Source.Fingerprint()...)
	b = append(b, '=', '>')
	for i, s := range r.Sinks {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, s.Fingerprint()...)
	}
	return string(b)
}

// Related is the rule table: an ordered collection of relations,
// keyed by fingerprint for dedup, iterated in a stable, deterministic
// order (fingerprint-sorted) so that Infer's output is reproducible
// across runs regardless of map iteration order anywhere underneath it.
type Related[T cmp.Ordered] struct {
	byKey map[string]Relation[T]
	order []string
}

// NewRelated builds an empty rule table.
func NewRelated[T cmp.Ordered]() *Related[T] {
	return &Related[T]{byKey: make(map[string]Relation[T])}
}

// Add inserts a relation into the table. A relation with a fingerprint
// already present is rejected as a duplicate rather than silently
// merged — rule tables are expected to be built once, not accreted.
func (r *Related[T]) Add(rel Relation[T]) error {
	key := rel.Fingerprint()
	if _, ok := r.byKey[key]; ok {
		return DuplicateErr(key)
	}
	r.byKey[key] = rel
	r.order = append(r.order, key)
	return nil
}

// Relations returns every relation in the table in stable,
// fingerprint-sorted order.
func (r *Related[T]) Relations() []Relation[T] {
	keys := append([]string{}, r.order...)
	sort.Strings(keys)
	out := make([]Relation[T], 0, len(keys))
	for _, k := range keys {
		out = append(out, r.byKey[k])
	}
	return out
}

// Len reports the number of relations in the table.
func (r *Related[T]) Len() int { return len(r.byKey) }

// Rank reports the number of source waves held in the table, i.e. the
// number of rules — mirroring the original Ranked::rank() over
// Related's adjacency map, where rank is the entry count.
func (r *Related[T]) Rank() int {
	sources := make(map[string]bool, len(r.byKey))
	for _, rel := range r.byKey {
		sources[rel.Source.Fingerprint()] = true
	}
	return len(sources)
}

// Merge folds other's relations into r, unioning the two rule tables'
// adjacency lists. A relation already present by fingerprint is left
// as-is rather than rejected — merge is a union, not an Add.
func (r *Related[T]) Merge(other *Related[T]) {
	for _, rel := range other.Relations() {
		key := rel.Fingerprint()
		if _, ok := r.byKey[key]; ok {
			continue
		}
		r.byKey[key] = rel
		r.order = append(r.order, key)
	}
}

// Query returns the sink waves of every relation whose source is
// isomorphic to src (by fingerprint), mirroring Query::query over
// Related's adjacency map.
func (r *Related[T]) Query(src Wave[T]) []Wave[T] {
	key := src.Fingerprint()
	var out []Wave[T]
	for _, rel := range r.Relations() {
		if rel.Source.Fingerprint() == key {
			out = append(out, rel.Sinks...)
		}
	}
	return out
}
