package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Outcome distinguishes the ways an id lookup can end. "Not configured" and
// "pattern did not match" are deliberately separate results; callers decide
// what each one means.
type Outcome int

const (
	// OutcomeNotConfigured means no pattern was configured at all.
	OutcomeNotConfigured Outcome = iota
	// OutcomeMatched means the pattern matched and Value holds the captured id.
	OutcomeMatched
	// OutcomeDefaulted means the pattern did not match and Value holds the
	// configured default id.
	OutcomeDefaulted
	// OutcomeMissing means the pattern did not match and no default is
	// configured.
	OutcomeMissing
)

// ID is the result of extracting a numeric identifier from free text.
type ID struct {
	Outcome Outcome
	Value   int
}

// Extractor pulls a numeric id out of free text with a configured regular
// expression. The first capturing group of the pattern carries the id.
type Extractor struct {
	pattern   *regexp.Regexp
	defaultID int
}

// NewExtractor compiles pattern once. An empty pattern is valid and yields
// OutcomeNotConfigured on every Apply. A defaultID of zero means no fallback.
func NewExtractor(pattern string, defaultID int) (*Extractor, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return &Extractor{defaultID: defaultID}, nil
	}

	compiled, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile id pattern %q: %w", pattern, err)
	}
	return &Extractor{pattern: compiled, defaultID: defaultID}, nil
}

// Apply matches the pattern case-insensitively against the lower-cased text.
func (e *Extractor) Apply(text string) ID {
	if e.pattern == nil {
		return ID{Outcome: OutcomeNotConfigured}
	}

	match := e.pattern.FindStringSubmatch(strings.ToLower(text))
	if len(match) >= 2 {
		if value, err := strconv.Atoi(match[1]); err == nil {
			return ID{Outcome: OutcomeMatched, Value: value}
		}
	}

	if e.defaultID > 0 {
		return ID{Outcome: OutcomeDefaulted, Value: e.defaultID}
	}
	return ID{Outcome: OutcomeMissing}
}

var leadingDigits = regexp.MustCompile(`^\d+`)

// LeadingID extracts the leading run of digits from the stringified field
// value. Structured tracker fields (select boxes) carry the text under a
// "value" key; scalars are used as-is. A field without a leading number yields
// no identifier, never zero.
func LeadingID(field any) (int, bool) {
	text := stringify(field)
	digits := leadingDigits.FindString(strings.TrimSpace(text))
	if digits == "" {
		return 0, false
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return value, true
}

// FirstLeadingID tries the named fields in order and returns the first one
// that yields a leading numeric id.
func FirstLeadingID(fields map[string]any, names []string) (int, bool) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		field, ok := fields[name]
		if !ok || field == nil {
			continue
		}
		if id, ok := LeadingID(field); ok {
			return id, true
		}
	}
	return 0, false
}

func stringify(field any) string {
	switch value := field.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case map[string]any:
		return stringify(value["value"])
	default:
		return fmt.Sprint(value)
	}
}
