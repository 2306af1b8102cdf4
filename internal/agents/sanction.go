package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/saarthi/loan-assistant-go/internal/domain"

	"go.uber.org/zap"
)

// LetterIssuer writes sanction letters for approved loans into a local
// directory and returns the file reference. Styling/PDF rendering is a
// presentation concern; the artifact here is the plain-text letter body.
type LetterIssuer struct {
	dir    string
	logger *zap.Logger
}

// NewLetterIssuer creates the issuer, making sure the target directory
// exists.
func NewLetterIssuer(dir string, logger *zap.Logger) (*LetterIssuer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sanction dir: %w", err)
	}
	return &LetterIssuer{dir: dir, logger: logger}, nil
}

// Issue writes the sanction letter and returns its file name. A failure
// here must not corrupt the underwriting decision; the caller decides how
// to degrade.
func (l *LetterIssuer) Issue(_ context.Context, name string, loan domain.LoanInfo, decision *domain.UnderwritingResult) (*domain.SanctionResult, error) {
	approvalType := "N/A"
	if decision != nil && decision.Type != "" {
		approvalType = decision.Type
	}

	body := fmt.Sprintf(`Loan Sanction Letter

Dear %s,

Your loan for ₹%d has been approved.
Tenure: %d years at %.1f%% interest.
Approval Type: %s

Thank you for choosing Saarthi Financial Services.
`, name, loan.Amount, loan.Tenure, loan.Interest, approvalType)

	filename := sanitizeFilename(name) + "_SanctionLetter.txt"
	path := filepath.Join(l.dir, filename)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return nil, fmt.Errorf("write sanction letter: %w", err)
	}

	l.logger.Info("sanction letter generated",
		zap.String("name", name),
		zap.String("file", filename),
	)

	return &domain.SanctionResult{Status: domain.StatusSuccess, File: filename}, nil
}

// sanitizeFilename keeps letters, digits, dashes and underscores so a
// conversational name can never escape the sanction directory.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
}
