package shadow

import (
	"math"
	"testing"

	"github.com/rawblock/molten/internal/molten"
)

func TestAdjustedRandIndexPerfectAgreement(t *testing.T) {
	predicted := []int{0, 0, 1, 1, 2, 2}
	groundTruth := []int{0, 0, 1, 1, 2, 2}

	ari := AdjustedRandIndex(predicted, groundTruth)

	if math.Abs(ari-1.0) > 0.01 {
		t.Errorf("expected ARI=1.0 for identical partitions, got %f", ari)
	}
}

func TestAdjustedRandIndexDissimilarPartitions(t *testing.T) {
	predicted := []int{0, 0, 0, 1, 1, 1}
	groundTruth := []int{0, 1, 0, 1, 0, 1}

	ari := AdjustedRandIndex(predicted, groundTruth)

	if ari > 0.5 {
		t.Errorf("expected ARI near 0 for dissimilar partitions, got %f", ari)
	}
}

func TestAdjustedRandIndexOverWorldLabels(t *testing.T) {
	predicted := []molten.Label{7, 7, 9, 9, 3, 3}
	groundTruth := []molten.Label{7, 7, 9, 9, 3, 3}

	ari := AdjustedRandIndex(predicted, groundTruth)

	if math.Abs(ari-1.0) > 1e-9 {
		t.Errorf("expected ARI=1.0 for identical molten.Label partitions, got %f", ari)
	}
}

func TestVariationOfInformationIdentical(t *testing.T) {
	predicted := []int{0, 0, 1, 1, 2, 2}
	groundTruth := []int{0, 0, 1, 1, 2, 2}

	vi := VariationOfInformation(predicted, groundTruth)

	if vi > 0.01 {
		t.Errorf("expected VI=0.0 for identical partitions, got %f", vi)
	}
}

func TestVariationOfInformationDifferent(t *testing.T) {
	predicted := []int{0, 0, 0, 1, 1, 1}
	groundTruth := []int{0, 1, 0, 1, 0, 1}

	vi := VariationOfInformation(predicted, groundTruth)

	if vi < 0.1 {
		t.Errorf("expected VI > 0 for different partitions, got %f", vi)
	}
}
