// Package shadow compares two candidate rule tables by running each
// to a fixed point over the same initial signal on independent
// hypergraphs, then scoring how similar their resulting world
// partitions are — letting a candidate rule table be evaluated
// without ever touching a production run.
package shadow

import (
	"fmt"
	"log"

	"github.com/rawblock/molten/internal/molten"
)

// Comparison captures how closely a shadow rule table's resulting
// world partition matches production's, over the same signal.
type Comparison struct {
	ARI             float64
	VI              float64
	ProductionEdges int
	ShadowEdges     int
	Divergent       bool
}

// Runner drives independent production and shadow hypergraphs to a
// fixed point and compares their world partitions.
type Runner struct {
	Bound int
}

// NewRunner creates a runner that bounds each run's Fixed iteration
// count at bound (0 means unbounded).
func NewRunner(bound int) *Runner {
	return &Runner{Bound: bound}
}

// Compare seeds production and shadow hypergraphs from the same
// signal, runs both rule tables to a fixed point, and scores their
// resulting world partitions via Adjusted Rand Index and Variation of
// Information.
func (r *Runner) Compare(signal molten.Wave[string], production, shadow *molten.Related[string]) (Comparison, error) {
	prodGraph := molten.NewHypergraph[string](molten.CoupleOnTranslate)
	prodInf, err := molten.Propagate(prodGraph, signal, production, r.Bound)
	if err != nil {
		return Comparison{}, fmt.Errorf("shadow: production run: %w", err)
	}

	shadowGraph := molten.NewHypergraph[string](molten.CoupleOnTranslate)
	shadowInf, err := molten.Propagate(shadowGraph, signal, shadow, r.Bound)
	if err != nil {
		return Comparison{}, fmt.Errorf("shadow: shadow run: %w", err)
	}

	prodPartition := worldPartition(prodGraph)
	shadowPartition := worldPartition(shadowGraph)

	n := min(len(prodPartition), len(shadowPartition))
	ari := AdjustedRandIndex(prodPartition[:n], shadowPartition[:n])
	vi := VariationOfInformation(prodPartition[:n], shadowPartition[:n])

	comparison := Comparison{
		ARI:             ari,
		VI:              vi,
		ProductionEdges: len(prodInf.Edges),
		ShadowEdges:     len(shadowInf.Edges),
		Divergent:       vi > 0,
	}
	if comparison.Divergent {
		log.Printf("[shadow] DIVERGENCE run=%s vs run=%s ari=%.4f vi=%.4f prod_edges=%d shadow_edges=%d",
			prodInf.RunID, shadowInf.RunID, ari, vi, comparison.ProductionEdges, comparison.ShadowEdges)
	}
	return comparison, nil
}

// worldPartition returns each node's union-find representative label,
// in ascending node-label order — the alignment AdjustedRandIndex and
// VariationOfInformation require between the two partitions being
// compared. The representative labels themselves are the partition;
// unlike the teacher's original clustering helpers there is no
// int-remapping step, since AdjustedRandIndex/VariationOfInformation
// operate on any comparable label type.
func worldPartition(h *molten.Hypergraph[string]) []molten.Label {
	nodes := h.Nodes(nil)
	partition := make([]molten.Label, 0, len(nodes))
	for _, n := range nodes {
		world, err := h.Locate(n)
		if err != nil {
			continue
		}
		partition = append(partition, world)
	}
	return partition
}
