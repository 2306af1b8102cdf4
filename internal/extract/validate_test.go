package extract_test

import (
	"testing"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/extract"
)

func strPtr(s string) *string { return &s }
func i64Ptr(n int64) *int64   { return &n }
func intPtr(n int) *int       { return &n }

func TestValidateDropsOutOfRange(t *testing.T) {
	in := domain.ExtractedFields{
		Amount: i64Ptr(-500),
		Tenure: intPtr(45),
		Income: i64Ptr(0),
	}
	out := extract.Validate(in)
	if out.Amount != nil || out.Tenure != nil || out.Income != nil {
		t.Errorf("expected out-of-range values dropped, got %+v", out)
	}
}

func TestValidateTenureBounds(t *testing.T) {
	for _, tc := range []struct {
		tenure int
		keep   bool
	}{
		{0, false}, {1, true}, {30, true}, {31, false},
	} {
		out := extract.Validate(domain.ExtractedFields{Tenure: intPtr(tc.tenure)})
		got := out.Tenure != nil
		if got != tc.keep {
			t.Errorf("tenure %d: kept=%v, want %v", tc.tenure, got, tc.keep)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	out := extract.Validate(domain.ExtractedFields{Email: strPtr("not-an-email")})
	if out.Email != nil {
		t.Error("expected email without @ dropped")
	}

	out = extract.Validate(domain.ExtractedFields{Email: strPtr(" harshit@example.com ")})
	if out.Email == nil || *out.Email != "harshit@example.com" {
		t.Errorf("expected trimmed email kept, got %v", out.Email)
	}
}

func TestValidatePhoneStripping(t *testing.T) {
	out := extract.Validate(domain.ExtractedFields{Phone: strPtr("+91 98765-43210")})
	if out.Phone == nil || *out.Phone != "+919876543210" {
		t.Errorf("expected separators stripped, got %v", out.Phone)
	}

	out = extract.Validate(domain.ExtractedFields{Phone: strPtr("12345")})
	if out.Phone != nil {
		t.Error("expected short phone dropped")
	}
}

func TestValidateLowercasesCategoricalFields(t *testing.T) {
	out := extract.Validate(domain.ExtractedFields{
		Purpose:    strPtr(" Business "),
		Employment: strPtr("Salaried"),
	})
	if out.Purpose == nil || *out.Purpose != "business" {
		t.Errorf("purpose: got %v", out.Purpose)
	}
	if out.Employment == nil || *out.Employment != "salaried" {
		t.Errorf("employment: got %v", out.Employment)
	}
}
