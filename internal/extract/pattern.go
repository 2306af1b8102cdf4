// Package extract turns free-text conversation history into structured
// loan-application fields. Two implementations of the same capability
// exist: a deterministic regex layer and an LLM-backed layer, both feeding
// the same validation stage before anything reaches a session.
package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/saarthi/loan-assistant-go/internal/domain"
)

// The regex layer must keep byte-for-byte compatible matching with the
// original extraction rules; downstream consumers depend on its quirks
// (case-insensitive "capitalized" names, first-match-wins amounts).
var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:I am|I'm|my name is|this is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
		regexp.MustCompile(`(?i)^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s+(?:here|speaking)`),
	}
	amountPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(lakh|lac|crore|cr|thousand|k|₹|rupees?)`)
	tenurePattern = regexp.MustCompile(`(?i)(\d+)\s*(year|yr|month)`)
	numberPattern = regexp.MustCompile(`[\d.]+`)
)

// PatternExtractor is the deterministic regex-based extractor. It only
// fills name, amount and tenure; the remaining fields stay null unless the
// LLM layer provides them.
type PatternExtractor struct{}

// NewPatternExtractor creates the regex-based extractor.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Extract concatenates all message contents and applies the pattern rules.
// Side-effect free and callable any number of times.
func (e *PatternExtractor) Extract(_ context.Context, history []domain.Message) (domain.ExtractedFields, error) {
	contents := make([]string, 0, len(history))
	for _, m := range history {
		contents = append(contents, m.Content)
	}
	text := strings.Join(contents, " ")

	var fields domain.ExtractedFields

	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			name := strings.TrimSpace(m[1])
			fields.Name = &name
			break
		}
	}

	if m := amountPattern.FindString(text); m != "" {
		if amount, ok := ConvertAmount(m); ok {
			fields.Amount = &amount
		}
	}

	if m := tenurePattern.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			years := float64(n)
			if strings.Contains(strings.ToLower(m[2]), "month") {
				years /= 12
			}
			// Sub-year tenures are treated as absent, not rounded up.
			if years >= 1 {
				t := int(years)
				fields.Tenure = &t
			}
		}
	}

	return Validate(fields), nil
}

// ConvertAmount converts an amount expression to rupees, handling Indian
// units: "5 lakhs" → 500000, "2 crore" → 20000000, "150k" → 150000. A bare
// number passes through unchanged. Reports false when no number is found.
func ConvertAmount(s string) (int64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}

	switch {
	case strings.Contains(s, "crore") || strings.Contains(s, "cr"):
		n *= 10000000
	case strings.Contains(s, "lakh") || strings.Contains(s, "lac") || strings.Contains(s, "l"):
		n *= 100000
	case strings.Contains(s, "thousand") || strings.Contains(s, "k"):
		n *= 1000
	}

	return int64(n), true
}
