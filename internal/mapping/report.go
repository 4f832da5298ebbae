package mapping

import (
	"fmt"
	"strings"
)

// Confidence tiers used by the report.
const (
	tierHigh   = 0.8
	tierMedium = 0.5
)

func confidenceTier(confidence float64) string {
	switch {
	case confidence >= tierHigh:
		return "high"
	case confidence >= tierMedium:
		return "medium"
	default:
		return "low"
	}
}

// RenderReport formats a resolved mapping set and its validation summary for
// humans. Pure formatting, diagnostics only: nothing downstream branches on
// the rendered text.
func RenderReport(mappings []ColumnMapping, summary ValidationSummary) string {
	var b strings.Builder

	b.WriteString("Column Mapping Report\n")
	b.WriteString("=====================\n\n")

	fmt.Fprintf(&b, "Mappings (%d):\n", len(mappings))
	if len(mappings) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, m := range mappings {
		fmt.Fprintf(&b, "  [%d] %q -> %s (confidence %.2f, %s)",
			m.SourceIndex, m.SourceColumn, m.TargetField, m.Confidence, confidenceTier(m.Confidence))
		if m.Transform != "" {
			fmt.Fprintf(&b, " via %s", m.Transform)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nValidation: ")
	if summary.IsValid {
		b.WriteString("VALID\n")
	} else {
		b.WriteString("INVALID\n")
	}
	if len(summary.MissingRequiredFields) > 0 {
		fmt.Fprintf(&b, "  Missing required fields: %s\n", strings.Join(summary.MissingRequiredFields, ", "))
	}
	if len(summary.DuplicateTargetFields) > 0 {
		fmt.Fprintf(&b, "  Duplicate target fields: %s\n", strings.Join(summary.DuplicateTargetFields, ", "))
	}
	if len(summary.LowConfidenceFields) > 0 {
		fmt.Fprintf(&b, "  Low-confidence fields: %s\n", strings.Join(summary.LowConfidenceFields, ", "))
	}

	recommendations := recommendationsFor(summary)
	if len(recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}

	return b.String()
}

// recommendationsFor returns fixed guidance keyed off the summary flags.
func recommendationsFor(summary ValidationSummary) []string {
	var recs []string
	if len(summary.MissingRequiredFields) > 0 {
		recs = append(recs, "map the missing required fields manually or configure defaults")
	}
	if len(summary.DuplicateTargetFields) > 0 {
		recs = append(recs, "resolve duplicate field mappings")
	}
	if len(summary.LowConfidenceFields) > 0 {
		recs = append(recs, "review low-confidence mappings before importing")
	}
	return recs
}
