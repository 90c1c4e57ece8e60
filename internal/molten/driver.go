package molten

import (
	"cmp"

	"github.com/google/uuid"

	"github.com/rawblock/molten/internal/molten/accel"
)

// Inference is the result carrier of an inference run: the set of
// newly-created edge labels, tagged with a RunID for correlating the
// run against the observer's event stream. RunID is observability
// metadata only — it plays no role in the core's fixed-point logic.
type Inference struct {
	RunID string
	Edges []Label
}

func (i Inference) merge(other Inference) Inference {
	seen := make(map[Label]bool, len(i.Edges)+len(other.Edges))
	out := make([]Label, 0, len(i.Edges)+len(other.Edges))
	for _, l := range i.Edges {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	for _, l := range other.Edges {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	runID := i.RunID
	if runID == "" {
		runID = other.RunID
	}
	return Inference{RunID: runID, Edges: out}
}

// Infer runs one inference step over rules: for each rule source with
// its sinks, picks every independent combination of the source's rank,
// checks bipartite compatibility, and absorbs each compatible
// combination into new edges. Freshly created edges then trigger an
// ancestral-closure pass: their source labels' past chains are walked,
// Cartesian-combined (keeping only pairwise-distinct-world selections),
// and re-absorbed against the same rule — letting a new edge extend a
// rule match through history.
func (h *Hypergraph[T]) Infer(rules *Related[T]) (Inference, error) {
	var allEdges []Label
	seen := map[Label]bool{}

	add := func(labels []Label) {
		for _, l := range labels {
			if !seen[l] {
				seen[l] = true
				allEdges = append(allEdges, l)
			}
		}
	}

	for _, rel := range rules.Relations() {
		rank := rel.Source.Rank()
		if rank == 0 {
			continue
		}

		combinations := h.Independent(rank)
		passed, err := accel.Filter(len(combinations), func(i int) (bool, error) {
			residues, err := h.Bipartite(combinations[i], rel.Source)
			if err != nil {
				return false, err
			}
			return len(residues) > 0, nil
		})
		if err != nil {
			return Inference{}, err
		}

		for _, i := range passed {
			combo := combinations[i]
			created, err := h.Absorb(combo, rel)
			if err != nil {
				return Inference{}, err
			}
			add(created)

			for _, edgeLabel := range created {
				extra, err := h.ancestralClosure(edgeLabel, rel)
				if err != nil {
					return Inference{}, err
				}
				add(extra)
			}
		}
	}

	h.emit(Event{Kind: EventInfer, Sink: allEdges, Count: len(allEdges)})
	return Inference{Edges: allEdges}, nil
}

// ancestralClosure walks the past adjacency of edge's source labels,
// builds the Cartesian product of their ancestor chains (one chain per
// source slot), keeps only products whose labels are pairwise from
// distinct united classes, and re-absorbs each surviving product
// against rel.
func (h *Hypergraph[T]) ancestralClosure(edgeLabel Label, rel Relation[T]) ([]Label, error) {
	edge, err := h.Edge(edgeLabel)
	if err != nil {
		return nil, err
	}

	chains := make([][]Label, 0, len(edge.Source))
	for _, src := range edge.Source {
		chain, err := h.ancestorChain(src)
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}

	products := cartesian(chains)

	var created []Label
	for _, product := range products {
		if !pairwiseDistinctWorlds(h, product) {
			continue
		}
		edges, err := h.Absorb(product, rel)
		if err != nil {
			return nil, err
		}
		created = append(created, edges...)
	}
	return created, nil
}

// ancestorChain breadth-first gathers every ancestor node label of
// node by walking past[node] -> edge.inference.source, including node
// itself as the chain's first element.
func (h *Hypergraph[T]) ancestorChain(node Label) ([]Label, error) {
	seen := map[Label]bool{node: true}
	chain := []Label{node}
	queue := []Label{node}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, edgeLabel := range h.Past(cur) {
			edge, err := h.Edge(edgeLabel)
			if err != nil {
				return nil, err
			}
			for _, src := range edge.Source {
				if !seen[src] {
					seen[src] = true
					chain = append(chain, src)
					queue = append(queue, src)
				}
			}
		}
	}

	return chain, nil
}

func cartesian(chains [][]Label) [][]Label {
	if len(chains) == 0 {
		return nil
	}
	result := [][]Label{{}}
	for _, chain := range chains {
		if len(chain) == 0 {
			return nil
		}
		var next [][]Label
		for _, partial := range result {
			for _, l := range chain {
				next = append(next, append(append([]Label{}, partial...), l))
			}
		}
		result = next
	}
	return result
}

func pairwiseDistinctWorlds[T cmp.Ordered](h *Hypergraph[T], labels []Label) bool {
	seen := map[Label]bool{}
	for _, l := range labels {
		world, err := h.Locate(l)
		if err != nil {
			return false
		}
		if seen[world] {
			return false
		}
		seen[world] = true
	}
	return true
}

// Fixed iterates Infer with the same rule table until a step adds no
// new edges, accumulating the union of all created edges. bound <= 0
// means unbounded; a positive bound that is reached before reaching a
// fixed point returns a Limit error alongside the partial Inference
// accumulated so far.
func (h *Hypergraph[T]) Fixed(rules *Related[T], bound int) (Inference, error) {
	total := Inference{RunID: uuid.NewString()}
	iterations := 0

	for {
		step, err := h.Infer(rules)
		if err != nil {
			return total, err
		}

		before := len(total.Edges)
		total = total.merge(step)
		iterations++

		if len(total.Edges) == before {
			h.emit(Event{Kind: EventFixed, Count: len(total.Edges), Iterations: iterations})
			return total, nil
		}

		if bound > 0 && iterations >= bound {
			return total, LimitErr(iterations, bound, len(h.nodes))
		}
	}
}

// Propagate is the driver harness's single entry point: diffuse the
// initial signal wave into fresh nodes, then run Fixed to closure.
func Propagate[T cmp.Ordered](h *Hypergraph[T], signal Wave[T], rules *Related[T], bound int) (Inference, error) {
	if _, err := h.Diffuse(signal); err != nil {
		return Inference{}, err
	}
	return h.Fixed(rules, bound)
}
