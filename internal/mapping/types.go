package mapping

import "fmt"

// InferredType is the primitive type the spreadsheet parser detected for a column.
type InferredType string

const (
	TypeText   InferredType = "text"
	TypeNumber InferredType = "number"
	TypeDate   InferredType = "date"
)

// Transformation identifiers applied to raw cell values before loading.
const (
	TransformParseNumber   = "parse_number"
	TransformParseDate     = "parse_date"
	TransformNormalizeText = "normalize_text"
)

// Column describes one source spreadsheet column as produced by the file parser:
// its header, position, inferred primitive type and a bounded sample of raw values.
type Column struct {
	Name         string        `json:"name"`
	Index        int           `json:"index"`
	InferredType InferredType  `json:"inferred_type"`
	Samples      []interface{} `json:"samples"`
}

// ColumnMapping is an accepted association between one source column and one
// canonical field, with the transform that must run on its values.
type ColumnMapping struct {
	SourceColumn    string   `json:"source_column"`
	SourceIndex     int      `json:"source_index"`
	TargetField     string   `json:"target_field"`
	Confidence      float64  `json:"confidence"`
	Transform       string   `json:"transform,omitempty"`
	ValidationRules []string `json:"validation_rules,omitempty"`
}

// Config carries the per-request mapping options. Custom mappings are matched
// by literal column name (case-insensitive) and always win over auto-detection.
type Config struct {
	AutoDetect         bool              `json:"auto_detect"`
	CustomMappings     map[string]string `json:"custom_mappings,omitempty"`
	RequiredFields     []string          `json:"required_fields,omitempty"`
	DateFormats        []string          `json:"date_formats,omitempty"`
	DecimalSeparator   string            `json:"decimal_separator,omitempty"`
	ThousandsSeparator string            `json:"thousands_separator,omitempty"`
	EntityDefault      string            `json:"entity_default,omitempty"`
	AccountDefault     string            `json:"account_default,omitempty"`
}

// DefaultConfig returns the options used when a file arrives with no saved
// configuration: auto-detection on, Brazilian number formatting.
func DefaultConfig() Config {
	return Config{
		AutoDetect:         true,
		RequiredFields:     []string{FieldEntity, FieldAccount, FieldValue},
		DateFormats:        []string{"DD/MM/YYYY", "YYYY-MM-DD", "MM/DD/YYYY"},
		DecimalSeparator:   ",",
		ThousandsSeparator: ".",
	}
}

// ValidationSummary captures the health of a resolved mapping set. Invalidity
// is reported here as data; it is never raised as an error.
type ValidationSummary struct {
	MissingRequiredFields []string `json:"missing_required_fields"`
	DuplicateTargetFields []string `json:"duplicate_target_fields"`
	LowConfidenceFields   []string `json:"low_confidence_fields"`
	IsValid               bool     `json:"is_valid"`
}

// UnknownFieldError reports a configuration referencing a canonical field id
// that is not registered. It is the only error Resolve can return.
type UnknownFieldError struct {
	FieldID string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown canonical field: %s", e.FieldID)
}
