package molten

import (
	"cmp"
	"encoding/json"
	"sort"
)

// Every codec type below is a plain, JSON-tagged snapshot struct in
// the teacher's DTO style (pkg/models/transaction.go) rather than a
// hand-rolled binary format: map-valued entries become ordered slices
// of key-value pairs, set-valued entries become sorted slices, so the
// encoding is byte-stable across runs regardless of Go's randomized
// map iteration order.

// AttributeSnapshot mirrors Attribute(V) for serialization.
type AttributeSnapshot[V comparable] struct {
	Category Category           `json:"category"`
	Value    V                  `json:"value"`
	Context  []AttributeSnapshot[V] `json:"context,omitempty"`
}

func snapshotAttribute[V comparable](a Attribute[V]) AttributeSnapshot[V] {
	ctx := make([]AttributeSnapshot[V], len(a.Context))
	for i, c := range a.Context {
		ctx[i] = snapshotAttribute(c)
	}
	return AttributeSnapshot[V]{Category: a.Category, Value: a.Value, Context: ctx}
}

func (s AttributeSnapshot[V]) attribute() Attribute[V] {
	ctx := make([]Attribute[V], len(s.Context))
	for i, c := range s.Context {
		ctx[i] = c.attribute()
	}
	return Attribute[V]{Category: s.Category, Value: s.Value, Context: ctx}
}

// ArenaEntry is one interned (alias -> attribute) pair.
type ArenaEntry[V comparable] struct {
	Alias     Alias              `json:"alias"`
	Attribute AttributeSnapshot[V] `json:"attribute"`
}

// ArenaSnapshot is the full, alias-ordered serialization of an Arena.
type ArenaSnapshot[V comparable] struct {
	Entries []ArenaEntry[V] `json:"entries"`
}

// EncodeArena serializes a to a stable byte encoding.
func EncodeArena[V comparable](a *Arena[V]) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	aliases := make([]Alias, 0, len(a.byAlias))
	for alias := range a.byAlias {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool { return aliases[i] < aliases[j] })

	snap := ArenaSnapshot[V]{Entries: make([]ArenaEntry[V], 0, len(aliases))}
	for _, alias := range aliases {
		snap.Entries = append(snap.Entries, ArenaEntry[V]{Alias: alias, Attribute: snapshotAttribute(a.byAlias[alias])})
	}

	return json.Marshal(snap)
}

// DecodeArena reconstructs an Arena from bytes produced by EncodeArena.
// The arena's dedup index is rebuilt from the decoded attributes rather
// than carried across the wire, so a round-tripped arena behaves
// identically to the original for future Insert calls.
func DecodeArena[V comparable](data []byte) (*Arena[V], error) {
	var snap ArenaSnapshot[V]
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	a := NewArena[V]()
	var maxAlias Alias
	for _, entry := range snap.Entries {
		attr := entry.Attribute.attribute()
		childAliases := make([]Alias, len(attr.Context))
		for i, c := range attr.Context {
			ca, err := a.aliasLocked(c)
			if err != nil {
				return nil, err
			}
			childAliases[i] = ca
		}
		key := internKey[V]{category: attr.Category, value: attr.Value, children: childKey(childAliases)}
		a.storeBucket(key, entry.Alias)
		a.byAlias[entry.Alias] = attr
		if entry.Alias >= maxAlias {
			maxAlias = entry.Alias + 1
		}
	}
	a.next = maxAlias

	return a, nil
}

// ParticleEntry is one (symbol -> count) pair.
type ParticleEntry[T cmp.Ordered] struct {
	Symbol T   `json:"symbol"`
	Count  int `json:"count"`
}

// ParticleSnapshot is the symbol-ordered serialization of a Particle.
type ParticleSnapshot[T cmp.Ordered] struct {
	Counts []ParticleEntry[T] `json:"counts"`
}

func snapshotParticle[T cmp.Ordered](p Particle[T]) ParticleSnapshot[T] {
	syms := p.Symbols()
	snap := ParticleSnapshot[T]{Counts: make([]ParticleEntry[T], 0, len(syms))}
	for _, s := range syms {
		snap.Counts = append(snap.Counts, ParticleEntry[T]{Symbol: s, Count: p.Count(s)})
	}
	return snap
}

func (s ParticleSnapshot[T]) particle() Particle[T] {
	counts := make(map[T]int, len(s.Counts))
	for _, e := range s.Counts {
		counts[e.Symbol] = e.Count
	}
	return particleFromCounts(counts)
}

// EncodeParticle serializes p to a stable byte encoding.
func EncodeParticle[T cmp.Ordered](p Particle[T]) ([]byte, error) {
	return json.Marshal(snapshotParticle(p))
}

// DecodeParticle reconstructs a Particle from bytes produced by
// EncodeParticle.
func DecodeParticle[T cmp.Ordered](data []byte) (Particle[T], error) {
	var snap ParticleSnapshot[T]
	if err := json.Unmarshal(data, &snap); err != nil {
		return Particle[T]{}, err
	}
	return snap.particle(), nil
}

// WaveEntry is one (particle -> count) pair.
type WaveEntry[T cmp.Ordered] struct {
	Particle ParticleSnapshot[T] `json:"particle"`
	Count    int                 `json:"count"`
}

// WaveSnapshot is the fingerprint-ordered serialization of a Wave.
type WaveSnapshot[T cmp.Ordered] struct {
	Particles []WaveEntry[T] `json:"particles"`
}

func snapshotWave[T cmp.Ordered](w Wave[T]) WaveSnapshot[T] {
	ps := w.Particles()
	snap := WaveSnapshot[T]{Particles: make([]WaveEntry[T], 0, len(ps))}
	for _, p := range ps {
		snap.Particles = append(snap.Particles, WaveEntry[T]{Particle: snapshotParticle(p.Particle), Count: p.Count})
	}
	return snap
}

func (s WaveSnapshot[T]) wave() Wave[T] {
	w := NewWave[T]()
	for _, e := range s.Particles {
		w.add(e.Particle.particle(), e.Count)
	}
	return w
}

// EncodeWave serializes w to a stable byte encoding.
func EncodeWave[T cmp.Ordered](w Wave[T]) ([]byte, error) {
	return json.Marshal(snapshotWave(w))
}

// DecodeWave reconstructs a Wave from bytes produced by EncodeWave.
func DecodeWave[T cmp.Ordered](data []byte) (Wave[T], error) {
	var snap WaveSnapshot[T]
	if err := json.Unmarshal(data, &snap); err != nil {
		return Wave[T]{}, err
	}
	return snap.wave(), nil
}

// RelationSnapshot mirrors Relation(T) for serialization.
type RelationSnapshot[T cmp.Ordered] struct {
	Source WaveSnapshot[T]   `json:"source"`
	Sinks  []WaveSnapshot[T] `json:"sinks"`
}

func snapshotRelation[T cmp.Ordered](r Relation[T]) RelationSnapshot[T] {
	sinks := make([]WaveSnapshot[T], len(r.Sinks))
	for i, s := range r.Sinks {
		sinks[i] = snapshotWave(s)
	}
	return RelationSnapshot[T]{Source: snapshotWave(r.Source), Sinks: sinks}
}

func (s RelationSnapshot[T]) relation() Relation[T] {
	sinks := make([]Wave[T], len(s.Sinks))
	for i, sw := range s.Sinks {
		sinks[i] = sw.wave()
	}
	return Relation[T]{Source: s.Source.wave(), Sinks: sinks}
}

// NodeSnapshot mirrors Node(T) for serialization.
type NodeSnapshot[T cmp.Ordered] struct {
	Label    Label               `json:"label"`
	Particle ParticleSnapshot[T] `json:"particle"`
}

// EdgeSnapshot mirrors Edge(T) for serialization; Source/Sink are
// already label sets, sorted for stability.
type EdgeSnapshot[T cmp.Ordered] struct {
	Label    Label              `json:"label"`
	Source   []Label            `json:"source"`
	Sink     []Label            `json:"sink"`
	Relation RelationSnapshot[T] `json:"relation"`
}

// WorldGroup is one (representative -> members) united-class pair.
type WorldGroup struct {
	Representative Label   `json:"representative"`
	Members        []Label `json:"members"`
}

// AdjacencyEntry is one (node -> edges) past/future pair.
type AdjacencyEntry struct {
	Node  Label   `json:"node"`
	Edges []Label `json:"edges"`
}

// RefractionEntry is one (label -> parent) pair.
type RefractionEntry struct {
	Label  Label `json:"label"`
	Parent Label `json:"parent"`
}

// RankEntry is one (representative -> rank) pair.
type RankEntry struct {
	Label Label `json:"label"`
	Rank  int   `json:"rank"`
}

// HypergraphSnapshot is the full, deterministically-ordered
// serialization of a Hypergraph: nodes, edges, refraction, rank,
// united classes, and past/future adjacency, each as a sorted slice
// rather than a bare map.
type HypergraphSnapshot[T cmp.Ordered] struct {
	Coupling   CouplingMode        `json:"coupling"`
	NextLabel  Label               `json:"next_label"`
	Nodes      []NodeSnapshot[T]   `json:"nodes"`
	Edges      []EdgeSnapshot[T]   `json:"edges"`
	Refraction []RefractionEntry   `json:"refraction"`
	Rank       []RankEntry         `json:"rank"`
	United     []WorldGroup        `json:"united"`
	Past       []AdjacencyEntry    `json:"past"`
	Future     []AdjacencyEntry    `json:"future"`
}

func sortedLabelKeys[V any](m map[Label]V) []Label {
	out := make([]Label, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EncodeHypergraph serializes h to a stable byte encoding.
func EncodeHypergraph[T cmp.Ordered](h *Hypergraph[T]) ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snap := HypergraphSnapshot[T]{Coupling: h.coupling, NextLabel: h.nextLabel}

	for _, l := range sortedLabelKeys(h.nodes) {
		n := h.nodes[l]
		snap.Nodes = append(snap.Nodes, NodeSnapshot[T]{Label: n.Label, Particle: snapshotParticle(n.Particle)})
	}

	for _, l := range sortedLabelKeys(h.edges) {
		e := h.edges[l]
		src := append([]Label{}, e.Source...)
		snk := append([]Label{}, e.Sink...)
		sort.Slice(src, func(i, j int) bool { return src[i] < src[j] })
		sort.Slice(snk, func(i, j int) bool { return snk[i] < snk[j] })
		snap.Edges = append(snap.Edges, EdgeSnapshot[T]{
			Label: e.Label, Source: src, Sink: snk, Relation: snapshotRelation(e.Relation),
		})
	}

	for _, l := range sortedLabelKeys(h.refraction) {
		snap.Refraction = append(snap.Refraction, RefractionEntry{Label: l, Parent: h.refraction[l]})
	}

	for _, l := range sortedLabelKeys(h.rank) {
		snap.Rank = append(snap.Rank, RankEntry{Label: l, Rank: h.rank[l]})
	}

	for _, l := range sortedLabelKeys(h.united) {
		snap.United = append(snap.United, WorldGroup{Representative: l, Members: sortedKeys(h.united[l])})
	}

	for _, l := range sortedLabelKeys(h.past) {
		snap.Past = append(snap.Past, AdjacencyEntry{Node: l, Edges: sortedKeys(h.past[l])})
	}

	for _, l := range sortedLabelKeys(h.future) {
		snap.Future = append(snap.Future, AdjacencyEntry{Node: l, Edges: sortedKeys(h.future[l])})
	}

	return json.Marshal(snap)
}

// DecodeHypergraph reconstructs a Hypergraph from bytes produced by
// EncodeHypergraph. Indexes absent from the wire format (byKey,
// byParticle) are rebuilt deterministically from nodes and edges.
func DecodeHypergraph[T cmp.Ordered](data []byte) (*Hypergraph[T], error) {
	var snap HypergraphSnapshot[T]
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	h := NewHypergraph[T](snap.Coupling)
	h.nextLabel = snap.NextLabel

	for _, n := range snap.Nodes {
		p := n.Particle.particle()
		h.nodes[n.Label] = Node[T]{Label: n.Label, Particle: p}
		key := p.Fingerprint()
		h.byParticle[key] = append(h.byParticle[key], n.Label)
	}

	for _, e := range snap.Edges {
		rel := e.Relation.relation()
		h.edges[e.Label] = Edge[T]{Label: e.Label, Source: e.Source, Sink: e.Sink, Relation: rel}
		h.byKey[edgeKey(e.Source, e.Sink, rel)] = e.Label
	}

	for _, r := range snap.Refraction {
		h.refraction[r.Label] = r.Parent
	}
	for _, r := range snap.Rank {
		h.rank[r.Label] = r.Rank
	}
	for _, g := range snap.United {
		members := make(map[Label]bool, len(g.Members))
		for _, m := range g.Members {
			members[m] = true
		}
		h.united[g.Representative] = members
	}
	for _, a := range snap.Past {
		edges := make(map[Label]bool, len(a.Edges))
		for _, e := range a.Edges {
			edges[e] = true
		}
		h.past[a.Node] = edges
	}
	for _, a := range snap.Future {
		edges := make(map[Label]bool, len(a.Edges))
		for _, e := range a.Edges {
			edges[e] = true
		}
		h.future[a.Node] = edges
	}

	return h, nil
}
