package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceTier(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{1.0, "high"},
		{0.8, "high"},
		{0.79, "medium"},
		{0.5, "medium"},
		{0.49, "low"},
		{0.0, "low"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, confidenceTier(tt.confidence), "confidence %.2f", tt.confidence)
	}
}

func TestRenderReport(t *testing.T) {
	t.Run("valid mapping set", func(t *testing.T) {
		mappings := []ColumnMapping{
			{SourceColumn: "Empresa", SourceIndex: 0, TargetField: FieldEntity, Confidence: 0.95, Transform: TransformNormalizeText},
			{SourceColumn: "Valor", SourceIndex: 1, TargetField: FieldValue, Confidence: 0.85},
		}
		summary := ValidationSummary{IsValid: true}

		report := RenderReport(mappings, summary)

		assert.Contains(t, report, "Column Mapping Report")
		assert.Contains(t, report, "Mappings (2):")
		assert.Contains(t, report, `[0] "Empresa" -> entity (confidence 0.95, high) via normalize_text`)
		assert.Contains(t, report, `[1] "Valor" -> value (confidence 0.85, high)`)
		assert.NotContains(t, report, `value (confidence 0.85, high) via`)
		assert.Contains(t, report, "Validation: VALID")
		assert.NotContains(t, report, "Recommendations:")
	})

	t.Run("invalid mapping set lists problems and recommendations", func(t *testing.T) {
		mappings := []ColumnMapping{
			{SourceColumn: "Coluna X", SourceIndex: 3, TargetField: FieldScenario, Confidence: 0.42, Transform: TransformNormalizeText},
		}
		summary := ValidationSummary{
			MissingRequiredFields: []string{FieldEntity, FieldValue},
			DuplicateTargetFields: []string{FieldAccount},
			LowConfidenceFields:   []string{FieldScenario},
			IsValid:               false,
		}

		report := RenderReport(mappings, summary)

		assert.Contains(t, report, "Validation: INVALID")
		assert.Contains(t, report, "Missing required fields: entity, value")
		assert.Contains(t, report, "Duplicate target fields: account")
		assert.Contains(t, report, "Low-confidence fields: scenario")
		assert.Contains(t, report, `(confidence 0.42, low)`)
		assert.Contains(t, report, "map the missing required fields manually or configure defaults")
		assert.Contains(t, report, "resolve duplicate field mappings")
		assert.Contains(t, report, "review low-confidence mappings before importing")
	})

	t.Run("empty mapping set", func(t *testing.T) {
		report := RenderReport(nil, ValidationSummary{IsValid: true})
		assert.Contains(t, report, "Mappings (0):")
		assert.Contains(t, report, "(none)")
	})
}
