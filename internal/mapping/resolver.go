package mapping

import (
	"sort"
	"strings"
)

// Resolver merges manual and auto-detected column mappings into one
// conflict-free set over an immutable registry.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver over the given registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Registry exposes the resolver's field table, for callers that need to
// enumerate or look up canonical fields.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve computes the mapping set for the given columns. Manual mappings are
// processed first and always win; auto-detection then claims the remaining
// columns, subject to MinAutoConfidence and one-mapping-per-target-field.
// An invalid result is reported through the summary, never as an error; the
// only failure mode is a custom mapping naming an unregistered field.
func (r *Resolver) Resolve(columns []Column, cfg Config) ([]ColumnMapping, ValidationSummary, error) {
	var mappings []ColumnMapping
	claimedIndex := make(map[int]bool)
	claimedTarget := make(map[string]bool)

	// Manual pass. Custom mapping keys are sorted so the output is stable
	// regardless of map iteration order.
	names := make([]string, 0, len(cfg.CustomMappings))
	for name := range cfg.CustomMappings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fieldID := cfg.CustomMappings[name]
		field, err := r.registry.Lookup(fieldID)
		if err != nil {
			return nil, ValidationSummary{}, err
		}

		col, found := findColumn(columns, name)
		if !found {
			continue
		}
		// Case-variant keys can resolve to the same column; the first key in
		// sorted order keeps it.
		if claimedIndex[col.Index] {
			continue
		}

		mappings = append(mappings, ColumnMapping{
			SourceColumn:    col.Name,
			SourceIndex:     col.Index,
			TargetField:     field.ID,
			Confidence:      1.0,
			Transform:       transformFor(field, col),
			ValidationRules: field.ValidationRules,
		})
		claimedIndex[col.Index] = true
		claimedTarget[field.ID] = true
	}

	// Auto pass, in column index order. A candidate is dropped when its
	// source index or target field is already claimed.
	if cfg.AutoDetect {
		for _, col := range columns {
			if claimedIndex[col.Index] {
				continue
			}
			field, score := r.registry.FindBestField(col)
			if field == nil || score < MinAutoConfidence {
				continue
			}
			if claimedTarget[field.ID] {
				continue
			}
			mappings = append(mappings, ColumnMapping{
				SourceColumn:    col.Name,
				SourceIndex:     col.Index,
				TargetField:     field.ID,
				Confidence:      score,
				Transform:       transformFor(field, col),
				ValidationRules: field.ValidationRules,
			})
			claimedIndex[col.Index] = true
			claimedTarget[field.ID] = true
		}
	}

	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].SourceIndex < mappings[j].SourceIndex
	})

	return mappings, r.validate(mappings, cfg), nil
}

// validate recomputes the validation summary for a mapping set.
func (r *Resolver) validate(mappings []ColumnMapping, cfg Config) ValidationSummary {
	targetCounts := make(map[string]int)
	var lowConfidence []string
	for _, m := range mappings {
		targetCounts[m.TargetField]++
		if m.Confidence < LowConfidenceThreshold {
			lowConfidence = append(lowConfidence, m.TargetField)
		}
	}

	var missing []string
	for _, required := range cfg.RequiredFields {
		if targetCounts[required] == 0 {
			missing = append(missing, required)
		}
	}

	var duplicates []string
	for target, count := range targetCounts {
		if count > 1 {
			duplicates = append(duplicates, target)
		}
	}
	sort.Strings(duplicates)
	sort.Strings(lowConfidence)

	return ValidationSummary{
		MissingRequiredFields: missing,
		DuplicateTargetFields: duplicates,
		LowConfidenceFields:   lowConfidence,
		IsValid:               len(missing) == 0 && len(duplicates) == 0,
	}
}

// transformFor picks the transform a mapping needs: the field's default,
// unless the column's inferred type already matches the field's natural type.
func transformFor(field *CanonicalField, col Column) string {
	if field.NaturalType == col.InferredType {
		return ""
	}
	return field.DefaultTransform
}

func findColumn(columns []Column, name string) (Column, bool) {
	for _, col := range columns {
		if strings.EqualFold(col.Name, name) {
			return col, true
		}
	}
	return Column{}, false
}
