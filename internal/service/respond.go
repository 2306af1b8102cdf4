package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/saarthi/loan-assistant-go/internal/domain"
)

// CalculateEMI computes the monthly installment for an amortized loan using
// EMI = P*r*(1+r)^n / ((1+r)^n - 1), with r the monthly rate and n the tenure
// in months, rounded to the nearest rupee.
func CalculateEMI(amount int64, tenureYears int, annualRate float64) int64 {
	if amount <= 0 || tenureYears <= 0 {
		return 0
	}
	r := annualRate / 100 / 12
	n := float64(tenureYears * 12)
	growth := math.Pow(1+r, n)
	emi := float64(amount) * r * growth / (growth - 1)
	return int64(math.Round(emi))
}

// ComposeWorkflowResponse renders the approval or rejection message for a
// finished pipeline run. It is a pure function of its inputs.
func ComposeWorkflowResponse(fields domain.ExtractedFields, result *domain.PipelineResult) string {
	name := "there"
	if fields.Name != nil {
		name = *fields.Name
	}
	var amount int64
	if fields.Amount != nil {
		amount = *fields.Amount
	}
	var tenure int
	if fields.Tenure != nil {
		tenure = *fields.Tenure
	}

	if result.FinalStatus == domain.StatusApproved {
		emi := CalculateEMI(amount, tenure, domain.AnnualInterestRate)
		return fmt.Sprintf(approvalTemplate,
			name, groupDigits(amount), tenure, domain.AnnualInterestRate, groupDigits(emi))
	}

	reason := result.RejectionReason
	if reason == "" {
		reason = "eligibility criteria"
	}
	return fmt.Sprintf(rejectionTemplate, name, groupDigits(amount), reason)
}

// groupDigits formats n with thousands separators, e.g. 500000 -> "500,000".
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
