package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/infra/observability"
	"github.com/saarthi/loan-assistant-go/internal/port"
)

// Defaults substituted when the pipeline runs with amount/tenure absent.
// The completion gate guarantees these fields before triggering, so the
// defaults exist for compatibility only and should never be observed in
// a gated run.
const (
	fallbackAmount int64 = 100000
	fallbackTenure int   = 5
)

// Rejection reasons used when a collaborator fails outright.
const (
	reasonKYCFailed         = "KYC verification failed"
	reasonEligibilityFailed = "Eligibility criteria not met"
)

// PipelineRunner executes the one-shot verify -> underwrite -> sanction flow.
// Collaborator failures never escape: they are absorbed into a rejected
// result with a diagnostic reason.
type PipelineRunner struct {
	verifier    port.Verifier
	underwriter port.Underwriter
	sanctioner  port.SanctionIssuer
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewPipelineRunner creates the pipeline runner with all collaborators injected.
func NewPipelineRunner(
	verifier port.Verifier,
	underwriter port.Underwriter,
	sanctioner port.SanctionIssuer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PipelineRunner {
	return &PipelineRunner{
		verifier:    verifier,
		underwriter: underwriter,
		sanctioner:  sanctioner,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run executes the loan pipeline for the gathered fields and always returns a
// well-formed result.
func (p *PipelineRunner) Run(ctx context.Context, fields domain.ExtractedFields) *domain.PipelineResult {
	ctx, span := tracer.Start(ctx, "PipelineRunner.Run")
	defer span.End()

	start := time.Now()
	defer func() {
		p.metrics.RecordRequestDuration("pipeline", time.Since(start))
	}()

	name := "Unknown"
	if fields.Name != nil {
		name = *fields.Name
	}
	amount := fallbackAmount
	if fields.Amount != nil {
		amount = *fields.Amount
	}
	tenure := fallbackTenure
	if fields.Tenure != nil {
		tenure = *fields.Tenure
	}
	span.SetAttributes(attribute.String("applicant.name", name))

	result := &domain.PipelineResult{FinalStatus: domain.StatusPending}

	// Step 1: KYC verification.
	verification, err := p.verifier.Verify(ctx, name)
	if err != nil {
		p.logger.Error("verification call failed", zap.String("name", name), zap.Error(err))
		p.metrics.IncrExternalError("verification")
		verification = &domain.VerificationResult{Status: domain.StatusFailed}
	}
	result.Verification = verification

	if verification.Status != domain.StatusVerified {
		result.FinalStatus = domain.StatusRejected
		result.RejectionReason = reasonKYCFailed
		p.metrics.IncrPipelineOutcome("rejected")
		return result
	}

	// Step 2: Underwriting.
	decision, err := p.underwriter.Evaluate(ctx, name, amount, tenure)
	if err != nil {
		p.logger.Error("underwriting call failed", zap.String("name", name), zap.Error(err))
		p.metrics.IncrExternalError("underwriting")
		decision = &domain.UnderwritingResult{
			Status: domain.StatusRejected,
			Reason: reasonEligibilityFailed,
		}
	}
	result.Underwriting = decision

	if decision.Status != domain.StatusApproved {
		result.FinalStatus = domain.StatusRejected
		result.RejectionReason = decision.Reason
		if result.RejectionReason == "" {
			result.RejectionReason = reasonEligibilityFailed
		}
		p.metrics.IncrPipelineOutcome("rejected")
		return result
	}

	// Step 3: Sanction letter. A failure here is logged but never downgrades
	// the approval.
	loan := domain.LoanInfo{
		Name:     name,
		Amount:   amount,
		Tenure:   tenure,
		Interest: domain.AnnualInterestRate,
	}
	sanction, err := p.sanctioner.Issue(ctx, name, loan, decision)
	if err != nil {
		p.logger.Error("sanction letter generation failed", zap.String("name", name), zap.Error(err))
		p.metrics.IncrExternalError("sanction")
		sanction = &domain.SanctionResult{Status: domain.StatusFailed}
	}
	result.Sanction = sanction
	result.FinalStatus = domain.StatusApproved
	p.metrics.IncrPipelineOutcome("approved")

	return result
}
