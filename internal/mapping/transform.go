package mapping

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Audit metadata stamped on every output record.
const (
	AuditCreatedAtKey = "createdAt"
	AuditSourceKey    = "source"
	SourceFileImport  = "file_import"
)

// Record is one canonical output row, keyed by canonical field id plus the
// audit fields.
type Record map[string]interface{}

// Apply converts raw rows into canonical records: for every mapping it reads
// the cell at the mapping's source index, runs the mapping's transform, and
// stores the result under the target field. A cell that fails its transform
// degrades to nil; no single bad cell can fail the row. After the mappings,
// defaults for entity/account are injected and audit metadata is stamped.
func Apply(rows [][]interface{}, mappings []ColumnMapping, cfg Config) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, applyRow(row, mappings, cfg))
	}
	return records
}

// ApplyParallel is Apply with a bounded per-row fan-out. Rows are independent
// of each other, so only the output slot index is shared; relative row order
// is preserved. Workers < 2 falls back to the sequential path.
func ApplyParallel(rows [][]interface{}, mappings []ColumnMapping, cfg Config, workers int) []Record {
	if workers < 2 || len(rows) < 2 {
		return Apply(rows, mappings, cfg)
	}
	if workers > len(rows) {
		workers = len(rows)
	}

	records := make([]Record, len(rows))
	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i] = applyRow(rows[i], mappings, cfg)
			}
		}()
	}
	for i := range rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return records
}

func applyRow(row []interface{}, mappings []ColumnMapping, cfg Config) Record {
	rec := make(Record, len(mappings)+2)
	for _, m := range mappings {
		if m.SourceIndex < 0 || m.SourceIndex >= len(row) {
			continue
		}
		raw := row[m.SourceIndex]
		if raw == nil {
			continue
		}
		rec[m.TargetField] = transformValue(raw, m.Transform, cfg)
	}

	// Required-field defaults, by convention entity and account.
	if isBlank(rec[FieldEntity]) && cfg.EntityDefault != "" {
		rec[FieldEntity] = cfg.EntityDefault
	}
	if isBlank(rec[FieldAccount]) && cfg.AccountDefault != "" {
		rec[FieldAccount] = cfg.AccountDefault
	}

	rec[AuditCreatedAtKey] = time.Now().UTC()
	rec[AuditSourceKey] = SourceFileImport
	return rec
}

// transformValue runs one named transformation. A parse failure yields nil,
// which downstream row-level validation treats as a failed cell.
func transformValue(raw interface{}, transform string, cfg Config) interface{} {
	switch transform {
	case TransformParseNumber:
		if f, ok := ParseNumber(raw, cfg.DecimalSeparator, cfg.ThousandsSeparator); ok {
			return f
		}
		return nil
	case TransformParseDate:
		if t, ok := ParseDate(raw, cfg.DateFormats); ok {
			return t
		}
		return nil
	case TransformNormalizeText:
		return NormalizeText(stringify(raw))
	default:
		return raw
	}
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// ParseNumber parses a raw cell into a float using the configured separators.
// Already-numeric values pass through. For strings, everything after the last
// decimal separator is the fractional part; a lone thousands separator is only
// treated as grouping when followed by more than two digits.
func ParseNumber(raw interface{}, decimalSep, thousandsSep string) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	if decimalSep == "" {
		decimalSep = ","
	}
	if thousandsSep == "" {
		thousandsSep = "."
	}

	var b strings.Builder
	for _, r := range stringify(raw) {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-', r == '+':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	var normalized string
	if idx := strings.LastIndex(cleaned, decimalSep); idx >= 0 {
		intPart := strings.ReplaceAll(cleaned[:idx], thousandsSep, "")
		intPart = strings.ReplaceAll(intPart, decimalSep, "")
		normalized = intPart + "." + cleaned[idx+len(decimalSep):]
	} else {
		switch n := strings.Count(cleaned, thousandsSep); {
		case n > 1:
			normalized = strings.ReplaceAll(cleaned, thousandsSep, "")
		case n == 1:
			rest := cleaned[strings.Index(cleaned, thousandsSep)+len(thousandsSep):]
			if len(rest) > 2 {
				normalized = strings.ReplaceAll(cleaned, thousandsSep, "")
			} else {
				normalized = strings.Replace(cleaned, thousandsSep, ".", 1)
			}
		default:
			normalized = cleaned
		}
	}

	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// dateFormatSpecs maps supported format tokens to a day/month/year regex.
// A capture position of 0 means the component is absent and defaults to 1.
var dateFormatSpecs = map[string]struct {
	re               *regexp.Regexp
	day, month, year int
}{
	"DD/MM/YYYY": {regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), 1, 2, 3},
	"MM/DD/YYYY": {regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), 2, 1, 3},
	"YYYY-MM-DD": {regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), 3, 2, 1},
	"YYYY/MM/DD": {regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`), 3, 2, 1},
	"DD-MM-YYYY": {regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), 1, 2, 3},
	"DD.MM.YYYY": {regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`), 1, 2, 3},
	"MM/YYYY":    {regexp.MustCompile(`^(\d{1,2})/(\d{4})$`), 0, 1, 2},
	"YYYY":       {regexp.MustCompile(`^(\d{4})$`), 0, 0, 1},
}

var directDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a raw cell into a date. A locale-agnostic direct parse is
// tried first, then each format candidate in declared order; the first token
// whose regex matches and yields an in-range calendar date wins. Day/month
// ambiguity is resolved purely by candidate order. Out-of-range components
// ("31/02/2024") reject the candidate instead of rolling over.
func ParseDate(raw interface{}, formatCandidates []string) (time.Time, bool) {
	if t, ok := raw.(time.Time); ok {
		return t, true
	}

	s := stringify(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range directDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if len(formatCandidates) == 0 {
		formatCandidates = DefaultConfig().DateFormats
	}

	for _, token := range formatCandidates {
		spec, ok := dateFormatSpecs[token]
		if !ok {
			continue
		}
		groups := spec.re.FindStringSubmatch(s)
		if groups == nil {
			continue
		}
		day, month := 1, 1
		if spec.day > 0 {
			day, _ = strconv.Atoi(groups[spec.day])
		}
		if spec.month > 0 {
			month, _ = strconv.Atoi(groups[spec.month])
		}
		year, _ := strconv.Atoi(groups[spec.year])

		if month < 1 || month > 12 || day < 1 || day > daysInMonth(year, time.Month(month)) {
			continue
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// zero-width and invisible code points stripped by NormalizeText.
var invisibleRunes = map[rune]bool{
	'\u200b': true, // zero width space
	'\u200c': true, // zero width non-joiner
	'\u200d': true, // zero width joiner
	'\u2060': true, // word joiner
	'\ufeff': true, // byte order mark
	'\u00ad': true, // soft hyphen
}

// NormalizeText trims the value, collapses internal whitespace runs to a
// single space and strips invisible Unicode characters.
func NormalizeText(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if invisibleRunes[r] {
			return -1
		}
		return r
	}, raw)
	return strings.Join(strings.Fields(cleaned), " ")
}
