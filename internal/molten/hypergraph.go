package molten

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Label is the dense identity issued by the hypergraph for nodes and
// edges, disjoint from arena aliases: aliases name interned attribute
// trees, labels name hypergraph artefacts.
type Label uint64

// Node is a hypergraph vertex: a label paired with the particle it
// carries. Created by Focus; never mutated afterward.
type Node[T cmp.Ordered] struct {
	Label    Label
	Particle Particle[T]
}

// Edge is a hypergraph hyperedge: a label, the node-label sets it
// connects, and the relation that justified its creation. Created by
// Translate; never mutated afterward.
type Edge[T cmp.Ordered] struct {
	Label    Label
	Source   []Label
	Sink     []Label
	Relation Relation[T]
}

// CouplingMode governs whether Translate unites every source label
// with every sink label on edge creation. The reference implementation
// does this unconditionally (spec's Open Question, §9); we keep that as
// the default and expose the alternative for callers who find the
// single-world-per-inference-tree behaviour too restrictive over long
// runs.
type CouplingMode int

const (
	// CoupleOnTranslate unites every source label with every sink
	// label on each new edge — the reference implementation's observed
	// behaviour, and this package's default.
	CoupleOnTranslate CouplingMode = iota
	// CoupleNone leaves worlds untouched on edge creation; callers
	// that want entanglement must call Unite explicitly.
	CoupleNone
)

// Translation reports the outcome of Translate: whether a brand new
// edge was allocated, or an existing one (identical source set, sink
// set, and relation) was found and returned unchanged.
type Translation struct {
	Label Label
	New   bool
}

// edgeKey is the dedup key for Translate: exact match on source set,
// sink set, and relation.
func edgeKey[T cmp.Ordered](source, sink []Label, rel Relation[T]) string {
	var b strings.Builder
	writeLabels(&b, source)
	b.WriteString("=>")
	writeLabels(&b, sink)
	b.WriteString("#")
	b.WriteString(rel.Fingerprint())
	return b.String()
}

func writeLabels(b *strings.Builder, labels []Label) {
	sorted := append([]Label{}, labels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, l := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%d", l)
	}
}

// Hypergraph is the central mutable data structure: nodes labelled
// with particles, hyperedges carrying an inference and the relation
// that justified it, a union-find over worlds (refraction + rank), and
// past/future adjacency.
type Hypergraph[T cmp.Ordered] struct {
	mu sync.RWMutex

	coupling CouplingMode

	nextLabel Label

	nodes map[Label]Node[T]
	edges map[Label]Edge[T]
	byKey map[string]Label // edgeKey -> edge label

	refraction map[Label]Label
	rank       map[Label]int
	united     map[Label]map[Label]bool // representative -> member set

	past   map[Label]map[Label]bool // node label -> edge labels whose sink contains it
	future map[Label]map[Label]bool // node label -> edge labels whose source contains it

	byParticle map[string][]Label // particle fingerprint -> node labels, insertion order

	events chan<- Event
}

// NewHypergraph creates an empty hypergraph with the given coupling
// mode.
func NewHypergraph[T cmp.Ordered](coupling CouplingMode) *Hypergraph[T] {
	return &Hypergraph[T]{
		coupling:   coupling,
		nodes:      make(map[Label]Node[T]),
		edges:      make(map[Label]Edge[T]),
		byKey:      make(map[string]Label),
		refraction: make(map[Label]Label),
		rank:       make(map[Label]int),
		united:     make(map[Label]map[Label]bool),
		past:       make(map[Label]map[Label]bool),
		future:     make(map[Label]map[Label]bool),
		byParticle: make(map[string][]Label),
	}
}

func (h *Hypergraph[T]) allocate() (Label, error) {
	if h.nextLabel == ^Label(0) {
		return 0, AllocationLimitErr()
	}
	l := h.nextLabel
	h.nextLabel++
	return l, nil
}

// Focus allocates a fresh label, installs a node carrying particle,
// opens a new world for it, and seeds empty past/future adjacency.
func (h *Hypergraph[T]) Focus(particle Particle[T]) (Label, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	label, err := h.allocate()
	if err != nil {
		return 0, err
	}

	h.nodes[label] = Node[T]{Label: label, Particle: particle}
	h.refraction[label] = label
	h.rank[label] = 0
	h.united[label] = map[Label]bool{label: true}
	h.past[label] = map[Label]bool{}
	h.future[label] = map[Label]bool{}

	key := particle.Fingerprint()
	h.byParticle[key] = append(h.byParticle[key], label)

	h.emit(Event{Kind: EventFocus, Label: label})

	return label, nil
}

// Diffuse allocates one node per particle occurrence in wave
// (multiplicity expanded), returning every allocated label.
func (h *Hypergraph[T]) Diffuse(wave Wave[T]) ([]Label, error) {
	var labels []Label
	for _, p := range wave.Particles() {
		for i := 0; i < p.Count; i++ {
			l, err := h.Focus(p.Particle)
			if err != nil {
				return labels, err
			}
			labels = append(labels, l)
		}
	}
	h.emit(Event{Kind: EventDiffuse, Sink: labels, Count: len(labels)})
	return labels, nil
}

// Locate is the path-compressing union-find find over refraction.
func (h *Hypergraph[T]) Locate(label Label) (Label, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	root, err := h.locateLocked(label)
	if err != nil {
		return 0, err
	}
	h.emit(Event{Kind: EventLocate, Label: root, Source: []Label{label}})
	return root, nil
}

func (h *Hypergraph[T]) locateLocked(label Label) (Label, error) {
	parent, ok := h.refraction[label]
	if !ok {
		return 0, MissingErr(label)
	}
	if parent == label {
		return label, nil
	}
	root, err := h.locateLocked(parent)
	if err != nil {
		return 0, err
	}
	h.refraction[label] = root
	return root, nil
}

// Unite merges the worlds of a and b by rank, the lower-ranked side
// pointing at the higher (ties increment the winner's rank), and
// merges their united classes. Returns the surviving representative.
func (h *Hypergraph[T]) Unite(a, b Label) (Label, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.uniteLocked(a, b)
}

func (h *Hypergraph[T]) uniteLocked(a, b Label) (Label, error) {
	ra, err := h.locateLocked(a)
	if err != nil {
		return 0, err
	}
	rb, err := h.locateLocked(b)
	if err != nil {
		return 0, err
	}
	if ra == rb {
		return ra, nil
	}

	winner, loser := ra, rb
	switch {
	case h.rank[ra] < h.rank[rb]:
		winner, loser = rb, ra
	case h.rank[ra] == h.rank[rb]:
		h.rank[winner]++
	}

	h.refraction[loser] = winner
	for m := range h.united[loser] {
		h.united[winner][m] = true
	}
	delete(h.united, loser)

	h.emit(Event{Kind: EventUnite, Label: winner, Source: []Label{a, b}})

	return winner, nil
}

// Translate deduplicates against existing edges (exact match on source
// set, sink set, and relation returns the existing label); otherwise
// allocates a fresh label, installs the edge, couples worlds per the
// hypergraph's CouplingMode, and updates future/past adjacency.
func (h *Hypergraph[T]) Translate(source, sink []Label, rel Relation[T]) (Translation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := edgeKey(source, sink, rel)
	if existing, ok := h.byKey[key]; ok {
		return Translation{Label: existing, New: false}, nil
	}

	label, err := h.allocate()
	if err != nil {
		return Translation{}, err
	}

	srcCopy := append([]Label{}, source...)
	sinkCopy := append([]Label{}, sink...)
	h.edges[label] = Edge[T]{Label: label, Source: srcCopy, Sink: sinkCopy, Relation: rel}
	h.byKey[key] = label

	if h.coupling == CoupleOnTranslate {
		for _, s := range source {
			for _, d := range sink {
				if _, err := h.uniteLocked(s, d); err != nil {
					return Translation{}, err
				}
			}
		}
	}

	for _, s := range source {
		if h.future[s] == nil {
			h.future[s] = map[Label]bool{}
		}
		h.future[s][label] = true
	}
	for _, d := range sink {
		if h.past[d] == nil {
			h.past[d] = map[Label]bool{}
		}
		h.past[d][label] = true
	}

	h.emit(Event{Kind: EventTranslate, Label: label, Source: srcCopy, Sink: sinkCopy})

	return Translation{Label: label, New: true}, nil
}

// Node resolves a label to its node, or Missing.
func (h *Hypergraph[T]) Node(label Label) (Node[T], error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.nodes[label]
	if !ok {
		return Node[T]{}, MissingErr(label)
	}
	return n, nil
}

// Edge resolves a label to its edge, or Missing.
func (h *Hypergraph[T]) Edge(label Label) (Edge[T], error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.edges[label]
	if !ok {
		return Edge[T]{}, MissingErr(label)
	}
	return e, nil
}

// Nodes returns every node label satisfying filter (nil filter means
// every node), in ascending label order.
func (h *Hypergraph[T]) Nodes(filter func(Node[T]) bool) []Label {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Label
	for l, n := range h.nodes {
		if filter == nil || filter(n) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges returns every edge label satisfying filter, in ascending label
// order.
func (h *Hypergraph[T]) Edges(filter func(Edge[T]) bool) []Label {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Label
	for l, e := range h.edges {
		if filter == nil || filter(e) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Past returns the edge labels whose sink contains node, sorted.
func (h *Hypergraph[T]) Past(node Label) []Label {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sortedKeys(h.past[node])
}

// Future returns the edge labels whose source contains node, sorted.
func (h *Hypergraph[T]) Future(node Label) []Label {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sortedKeys(h.future[node])
}

func sortedKeys(m map[Label]bool) []Label {
	out := make([]Label, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// United returns the current world partition as representative ->
// sorted member labels, itself sorted by representative, for
// deterministic iteration by the driver.
func (h *Hypergraph[T]) United() []struct {
	Representative Label
	Members        []Label
} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	reps := make([]Label, 0, len(h.united))
	for r := range h.united {
		reps = append(reps, r)
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i] < reps[j] })

	out := make([]struct {
		Representative Label
		Members        []Label
	}, 0, len(reps))
	for _, r := range reps {
		out = append(out, struct {
			Representative Label
			Members        []Label
		}{Representative: r, Members: sortedKeys(h.united[r])})
	}
	return out
}

// Isomorphics returns every node label whose particle is isomorphic to
// particle, in insertion order.
func (h *Hypergraph[T]) Isomorphics(particle Particle[T]) []Label {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := append([]Label{}, h.byParticle[particle.Fingerprint()]...)
	return out
}

// Independent generates every k-sized set of node labels drawing at
// most one label from each united-class: a Cartesian product over
// classes for each k-combination of class indices. This guarantees a
// returned combination never contains two entangled labels.
func (h *Hypergraph[T]) Independent(k int) [][]Label {
	if k <= 0 {
		return nil
	}

	classes := h.United()
	if len(classes) < k {
		return nil
	}

	var out [][]Label
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}

	for {
		out = append(out, cartesianOverClasses(classes, indices)...)

		i := k - 1
		for i >= 0 && indices[i] == i+len(classes)-k {
			i--
		}
		if i < 0 {
			break
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}

	return out
}

func cartesianOverClasses(classes []struct {
	Representative Label
	Members        []Label
}, indices []int) [][]Label {
	result := [][]Label{{}}
	for _, idx := range indices {
		members := classes[idx].Members
		var next [][]Label
		for _, partial := range result {
			for _, m := range members {
				combo := append(append([]Label{}, partial...), m)
				next = append(next, combo)
			}
		}
		result = next
	}
	return result
}

// Bipartite reports the residue waves obtainable by matching
// ruleSource against the wave formed from combination's node
// particles — i.e. whether (and how) the rule's source pattern can be
// realized by this candidate set.
func (h *Hypergraph[T]) Bipartite(combination []Label, ruleSource Wave[T]) ([]Wave[T], error) {
	h.mu.RLock()
	particles := make([]Particle[T], 0, len(combination))
	for _, l := range combination {
		n, ok := h.nodes[l]
		if !ok {
			h.mu.RUnlock()
			return nil, MissingErr(l)
		}
		particles = append(particles, n.Particle)
	}
	h.mu.RUnlock()

	candidate := Coalesce(particles)
	return candidate.Diverges(ruleSource), nil
}
