// Package agents implements the three pipeline collaborators: identity
// verification against a CRM lookup, the rule-based underwriting decision,
// and sanction-letter generation. Verification and the credit bureau are
// deliberately stubbed; real KYC and bureau integrations sit behind the
// same ports.
package agents

import (
	"context"
	"strings"

	"github.com/saarthi/loan-assistant-go/internal/domain"

	"go.uber.org/zap"
)

// CRMVerifier checks applicant identity against a seeded CRM directory.
// Names present in the directory verify; anything else fails KYC.
type CRMVerifier struct {
	directory map[string]domain.CRMDetails
	logger    *zap.Logger
}

// NewCRMVerifier creates the stub verifier with its seeded directory.
func NewCRMVerifier(logger *zap.Logger) *CRMVerifier {
	return &CRMVerifier{
		directory: map[string]domain.CRMDetails{
			"harshit mittal": {Phone: "+919876543210", Address: "42 MG Road, Bengaluru"},
			"priya sharma":   {Phone: "+919812345678", Address: "7 Park Street, Kolkata"},
			"rahul verma":    {Phone: "+919933221100", Address: "18 Civil Lines, Jaipur"},
			"anita desai":    {Phone: "+919001122334", Address: "5 Marine Drive, Mumbai"},
			"vikram singh":   {Phone: "+919445566778", Address: "23 Anna Salai, Chennai"},
		},
		logger: logger,
	}
}

// Verify looks up the applicant by name, case-insensitively.
func (v *CRMVerifier) Verify(_ context.Context, name string) (*domain.VerificationResult, error) {
	details, ok := v.directory[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		v.logger.Info("kyc lookup failed", zap.String("name", name))
		return &domain.VerificationResult{Status: domain.StatusFailed}, nil
	}
	return &domain.VerificationResult{
		Status:  domain.StatusVerified,
		Details: &details,
	}, nil
}
