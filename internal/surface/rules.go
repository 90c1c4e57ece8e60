package surface

import (
	"fmt"

	"github.com/rawblock/molten/internal/molten"
)

// BuildRules partitions a parsed surface tree into a rule table: root
// must be CategoryPartition, each of its children a rule node (one
// source context followed by one or more sink contexts), and each
// context a CategoryContext of CategoryGroup particles over
// CategoryAttribute symbol leaves.
func BuildRules(root molten.Attribute[string]) (*molten.Related[string], error) {
	if root.Category != molten.CategoryPartition {
		return nil, fmt.Errorf("surface: rule table root must be a partition, got %s", root.Category)
	}

	related := molten.NewRelated[string]()
	for i, ruleNode := range root.Context {
		if len(ruleNode.Context) < 2 {
			return nil, fmt.Errorf("surface: rule %d needs a source context and at least one sink context", i)
		}

		source, err := attributeToWave(ruleNode.Context[0])
		if err != nil {
			return nil, fmt.Errorf("surface: rule %d source: %w", i, err)
		}

		sinks := make([]molten.Wave[string], 0, len(ruleNode.Context)-1)
		for j, sinkNode := range ruleNode.Context[1:] {
			sink, err := attributeToWave(sinkNode)
			if err != nil {
				return nil, fmt.Errorf("surface: rule %d sink %d: %w", i, j, err)
			}
			sinks = append(sinks, sink)
		}

		rel := molten.NewRelation(source, sinks...)
		if err := related.Add(rel); err != nil {
			return nil, fmt.Errorf("surface: rule %d: %w", i, err)
		}
	}

	return related, nil
}

// attributeToWave converts a CategoryContext attribute, whose children
// are CategoryGroup particles over CategoryAttribute symbol leaves,
// into a Wave.
func attributeToWave(ctx molten.Attribute[string]) (molten.Wave[string], error) {
	if ctx.Category != molten.CategoryContext {
		return molten.Wave[string]{}, fmt.Errorf("expected a context, got %s", ctx.Category)
	}

	particles := make([]molten.Particle[string], 0, len(ctx.Context))
	for _, group := range ctx.Context {
		if group.Category != molten.CategoryGroup {
			return molten.Wave[string]{}, fmt.Errorf("expected a particle group, got %s", group.Category)
		}
		symbols := make([]string, 0, len(group.Context))
		for _, leaf := range group.Context {
			if leaf.Category != molten.CategoryAttribute {
				return molten.Wave[string]{}, fmt.Errorf("expected a symbol leaf, got %s", leaf.Category)
			}
			symbols = append(symbols, leaf.Value)
		}
		particles = append(particles, molten.NewParticle(symbols...))
	}

	return molten.Coalesce(particles), nil
}

// BuildSignal converts a single CategoryContext attribute into the
// initial signal wave diffused into the hypergraph before the first
// Fixed run.
func BuildSignal(ctx molten.Attribute[string]) (molten.Wave[string], error) {
	return attributeToWave(ctx)
}
