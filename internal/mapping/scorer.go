package mapping

import (
	"fmt"
	"strings"
)

// Scoring rubric. The weights combine three weak signals into one confidence;
// they are named so the rubric can be tested independently of the registry.
const (
	nameWeight   = 0.60
	typeWeight   = 0.25
	sampleWeight = 0.15

	// MinAutoConfidence is the floor below which an auto-detected candidate
	// is rejected outright.
	MinAutoConfidence = 0.3

	// LowConfidenceThreshold marks accepted mappings that still deserve a
	// human look before import.
	LowConfidenceThreshold = 0.5

	// neutralSampleScore is used when a column has no non-null samples:
	// content tells us nothing, so it neither penalises nor rewards.
	neutralSampleScore = 0.5
)

// Score evaluates how strongly column matches field, in [0,1].
func (r *Registry) Score(col Column, field *CanonicalField) float64 {
	nameScore := 0.0
	if field.MatchesName(col.Name) {
		nameScore = 1.0
	}

	typeScore := field.TypeAffinity(col.InferredType)
	sampleScore := sampleAffinity(col.Samples, field.SampleMatch)

	score := nameWeight*nameScore + typeWeight*typeScore + sampleWeight*sampleScore
	return clamp01(score)
}

// FindBestField returns the highest-scoring field for the column. Ties are
// broken by registration order, so the result is deterministic for a given
// (column, registry) pair.
func (r *Registry) FindBestField(col Column) (*CanonicalField, float64) {
	var best *CanonicalField
	bestScore := -1.0
	for _, field := range r.fields {
		if score := r.Score(col, field); score > bestScore {
			best = field
			bestScore = score
		}
	}
	return best, bestScore
}

// sampleAffinity is the fraction of non-null samples whose string form matches
// the field's content heuristic.
func sampleAffinity(samples []interface{}, match func(string) bool) float64 {
	nonNull := 0
	matched := 0
	for _, s := range samples {
		if s == nil {
			continue
		}
		nonNull++
		if match(stringify(s)) {
			matched++
		}
	}
	if nonNull == 0 {
		return neutralSampleScore
	}
	return float64(matched) / float64(nonNull)
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
