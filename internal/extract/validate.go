package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/saarthi/loan-assistant-go/internal/domain"
)

var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

// Validate re-checks a candidate field set against the domain constraints
// and drops out-of-range or wrong-typed values rather than propagating
// them. Applied to every extraction result (pattern- or LLM-derived)
// before it is merged into a session.
func Validate(f domain.ExtractedFields) domain.ExtractedFields {
	var out domain.ExtractedFields

	if f.Name != nil {
		if name := strings.TrimSpace(*f.Name); name != "" {
			out.Name = &name
		}
	}
	if f.Amount != nil && *f.Amount > 0 {
		out.Amount = f.Amount
	}
	if f.Tenure != nil && *f.Tenure >= 1 && *f.Tenure <= 30 {
		out.Tenure = f.Tenure
	}
	if f.Purpose != nil {
		if p := strings.ToLower(strings.TrimSpace(*f.Purpose)); p != "" {
			out.Purpose = &p
		}
	}
	if f.Income != nil && *f.Income > 0 {
		out.Income = f.Income
	}
	if f.Employment != nil {
		if e := strings.ToLower(strings.TrimSpace(*f.Employment)); e != "" {
			out.Employment = &e
		}
	}
	if f.Email != nil {
		if email := strings.TrimSpace(*f.Email); strings.Contains(email, "@") {
			out.Email = &email
		}
	}
	if f.Phone != nil {
		if phone := nonPhoneChars.ReplaceAllString(*f.Phone, ""); len(phone) >= 10 {
			out.Phone = &phone
		}
	}

	return out
}

// coerce maps the loosely-typed JSON a language model returns onto the
// typed field set. Numbers may arrive as JSON numbers or numeric strings;
// anything unconvertible is dropped (Validate then applies range rules).
func coerce(raw map[string]any) domain.ExtractedFields {
	var f domain.ExtractedFields

	if s, ok := asString(raw["name"]); ok {
		f.Name = &s
	}
	if n, ok := asInt64(raw["amount"]); ok {
		f.Amount = &n
	}
	if n, ok := asInt64(raw["tenure"]); ok {
		t := int(n)
		f.Tenure = &t
	}
	if s, ok := asString(raw["purpose"]); ok {
		f.Purpose = &s
	}
	if n, ok := asInt64(raw["income"]); ok {
		f.Income = &n
	}
	if s, ok := asString(raw["employment"]); ok {
		f.Employment = &s
	}
	if s, ok := asString(raw["email"]); ok {
		f.Email = &s
	}
	// Phone numbers sometimes come back as bare integers.
	if s, ok := asString(raw["phone"]); ok {
		f.Phone = &s
	} else if n, ok := asInt64(raw["phone"]); ok {
		s := strconv.FormatInt(n, 10)
		f.Phone = &s
	}

	return f
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}
