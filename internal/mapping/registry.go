package mapping

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"
)

// Canonical field identifiers. Every import ultimately populates these slots.
const (
	FieldEntity      = "entity"
	FieldAccount     = "account"
	FieldScenario    = "scenario"
	FieldPeriod      = "period"
	FieldValue       = "value"
	FieldDescription = "description"
	FieldCostCenter  = "cost_center"
	FieldCurrency    = "currency"
)

// CanonicalField is one registry entry: a plain data record describing how to
// recognise a column for this field and how to prepare its values.
type CanonicalField struct {
	ID               string
	NamePatterns     []*regexp.Regexp
	TypeAffinity     func(InferredType) float64
	SampleMatch      func(string) bool
	DefaultTransform string
	NaturalType      InferredType
	ValidationRules  []string
}

// MatchesName reports whether any of the field's name patterns matches the
// column name. Patterns are case-insensitive and substring-anchored.
func (f *CanonicalField) MatchesName(name string) bool {
	for _, p := range f.NamePatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// Registry is the read-only table of canonical fields. It is built once at
// process start and never mutates afterwards; All returns fields in
// registration order, which is also the scoring tie-break order.
type Registry struct {
	fields []*CanonicalField
	byID   map[string]*CanonicalField
}

// Lookup returns the field registered under id.
func (r *Registry) Lookup(id string) (*CanonicalField, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, &UnknownFieldError{FieldID: id}
	}
	return f, nil
}

// All enumerates the registry in registration order.
func (r *Registry) All() []*CanonicalField {
	return r.fields
}

// PatternOverrides adds site-specific header vocabulary to the built-in
// patterns, keyed by canonical field id. Loaded once at startup; the resulting
// registry is still immutable.
type PatternOverrides struct {
	Patterns map[string][]string `yaml:"patterns"`
}

// LoadPatternOverrides reads a YAML overrides file. A missing path is not an
// error; it simply yields no overrides.
func LoadPatternOverrides(path string) (PatternOverrides, error) {
	var overrides PatternOverrides
	if path == "" {
		return overrides, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return overrides, nil
		}
		return overrides, fmt.Errorf("failed to read pattern overrides: %w", err)
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return overrides, fmt.Errorf("failed to parse pattern overrides: %w", err)
	}
	return overrides, nil
}

// NewRegistry builds the default registry of canonical financial fields.
func NewRegistry() *Registry {
	r, _ := NewRegistryWithOverrides(PatternOverrides{})
	return r
}

// NewRegistryWithOverrides builds the registry with extra name patterns merged
// into the built-in vocabulary. Overrides referencing an unregistered field id
// fail with UnknownFieldError.
func NewRegistryWithOverrides(overrides PatternOverrides) (*Registry, error) {
	r := &Registry{byID: make(map[string]*CanonicalField)}
	for _, f := range defaultFields() {
		field := f
		r.fields = append(r.fields, field)
		r.byID[field.ID] = field
	}

	for id, patterns := range overrides.Patterns {
		field, ok := r.byID[id]
		if !ok {
			return nil, &UnknownFieldError{FieldID: id}
		}
		for _, p := range patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q for field %s: %w", p, id, err)
			}
			field.NamePatterns = append(field.NamePatterns, re)
		}
	}

	return r, nil
}

func patterns(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		compiled = append(compiled, regexp.MustCompile("(?i)"+e))
	}
	return compiled
}

// Affinity tables. Numeric fields strongly reward number columns, period
// tolerates text headers ("Jan/2024"), free-text fields mildly prefer text.
func numericAffinity(t InferredType) float64 {
	if t == TypeNumber {
		return 1.0
	}
	return 0.3
}

func periodAffinity(t InferredType) float64 {
	switch t {
	case TypeDate:
		return 1.0
	case TypeText:
		return 0.7
	default:
		return 0.5
	}
}

func textAffinity(t InferredType) float64 {
	if t == TypeText {
		return 0.8
	}
	return 0.5
}

var (
	numericValueRx = regexp.MustCompile(`^-?[0-9.,]+$`)
	accountCodeRx  = regexp.MustCompile(`^[0-9]+([.\-/][0-9]+)*$`)
	dateLikeRx     = regexp.MustCompile(`^\d{1,4}[-/.]\d{1,2}([-/.]\d{1,4})?$`)
	yearRx         = regexp.MustCompile(`^\d{4}$`)
	currencyCodeRx = regexp.MustCompile(`^[A-Za-z]{3}$`)
	hasLetterRx    = regexp.MustCompile(`\p{L}`)
)

var monthNames = []string{
	"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec",
	"fev", "abr", "mai", "ago", "set", "out", "dez",
}

var scenarioVocabulary = map[string]bool{
	"actual":    true,
	"real":      true,
	"realizado": true,
	"budget":    true,
	"orcado":    true,
	"orçado":    true,
	"forecast":  true,
	"previsto":  true,
	"projetado": true,
	"plan":      true,
	"planejado": true,
	"meta":      true,
}

func matchesMonthName(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range monthNames {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func periodSample(s string) bool {
	return dateLikeRx.MatchString(s) || yearRx.MatchString(s) || matchesMonthName(s)
}

func scenarioSample(s string) bool {
	return scenarioVocabulary[strings.ToLower(strings.TrimSpace(s))]
}

func textSample(s string) bool {
	return hasLetterRx.MatchString(s)
}

func currencySample(s string) bool {
	trimmed := strings.TrimSpace(s)
	return currencyCodeRx.MatchString(trimmed) ||
		strings.ContainsAny(trimmed, "$€£¥")
}

// defaultFields is the built-in canonical field table. Registration order
// matters: it is the deterministic tie-break for equal scores.
func defaultFields() []*CanonicalField {
	return []*CanonicalField{
		{
			ID:               FieldEntity,
			NamePatterns:     patterns("entity", "entidade", "empresa", "company", "filial", "unidade", "organiza"),
			TypeAffinity:     textAffinity,
			SampleMatch:      textSample,
			DefaultTransform: TransformNormalizeText,
			NaturalType:      TypeText,
			ValidationRules:  []string{"required"},
		},
		{
			ID:               FieldAccount,
			NamePatterns:     patterns("account", "conta", "ledger", "plano"),
			TypeAffinity:     textAffinity,
			SampleMatch:      func(s string) bool { return accountCodeRx.MatchString(strings.TrimSpace(s)) },
			DefaultTransform: TransformNormalizeText,
			NaturalType:      TypeText,
			ValidationRules:  []string{"required"},
		},
		{
			ID:               FieldScenario,
			NamePatterns:     patterns("scenario", "cenario", "cenário", "version", "versao", "versão"),
			TypeAffinity:     textAffinity,
			SampleMatch:      scenarioSample,
			DefaultTransform: TransformNormalizeText,
			NaturalType:      TypeText,
		},
		{
			ID:               FieldPeriod,
			NamePatterns:     patterns("period", "periodo", "período", "date", "data", "competencia", "competência", `\bmes\b`, `\bmês\b`, "month"),
			TypeAffinity:     periodAffinity,
			SampleMatch:      periodSample,
			DefaultTransform: TransformParseDate,
			NaturalType:      TypeDate,
			ValidationRules:  []string{"date"},
		},
		{
			ID:               FieldValue,
			NamePatterns:     patterns("value", "valor", "amount", "montante", "saldo", "total", "debito", "débito", "credito", "crédito", "debit", "credit"),
			TypeAffinity:     numericAffinity,
			SampleMatch:      func(s string) bool { return numericValueRx.MatchString(strings.TrimSpace(s)) },
			DefaultTransform: TransformParseNumber,
			NaturalType:      TypeNumber,
			ValidationRules:  []string{"required", "numeric"},
		},
		{
			ID:               FieldDescription,
			NamePatterns:     patterns("desc", "descricao", "descrição", "historico", "histórico", "memo", "narrative", "observa"),
			TypeAffinity:     textAffinity,
			SampleMatch:      textSample,
			DefaultTransform: TransformNormalizeText,
			NaturalType:      TypeText,
		},
		{
			ID:               FieldCostCenter,
			NamePatterns:     patterns(`cost\s*center`, "costcenter", `centro\s*de\s*custo`, "ccusto"),
			TypeAffinity:     textAffinity,
			SampleMatch:      func(s string) bool { return accountCodeRx.MatchString(strings.TrimSpace(s)) },
			DefaultTransform: TransformNormalizeText,
			NaturalType:      TypeText,
		},
		{
			ID:               FieldCurrency,
			NamePatterns:     patterns("currency", "moeda"),
			TypeAffinity:     textAffinity,
			SampleMatch:      currencySample,
			DefaultTransform: TransformNormalizeText,
			NaturalType:      TypeText,
		},
	}
}
