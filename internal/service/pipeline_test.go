package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/infra/observability"
	"github.com/saarthi/loan-assistant-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockVerifier struct {
	result *domain.VerificationResult
	err    error
	calls  int
}

func (m *mockVerifier) Verify(_ context.Context, _ string) (*domain.VerificationResult, error) {
	m.calls++
	return m.result, m.err
}

type mockUnderwriter struct {
	result    *domain.UnderwritingResult
	err       error
	gotAmount int64
	gotTenure int
	gotName   string
	calls     int
}

func (m *mockUnderwriter) Evaluate(_ context.Context, name string, amount int64, tenureYears int) (*domain.UnderwritingResult, error) {
	m.calls++
	m.gotName = name
	m.gotAmount = amount
	m.gotTenure = tenureYears
	return m.result, m.err
}

type mockSanctioner struct {
	result *domain.SanctionResult
	err    error
	calls  int
}

func (m *mockSanctioner) Issue(_ context.Context, _ string, _ domain.LoanInfo, _ *domain.UnderwritingResult) (*domain.SanctionResult, error) {
	m.calls++
	return m.result, m.err
}

func verified() *domain.VerificationResult {
	return &domain.VerificationResult{Status: domain.StatusVerified}
}

func approvedInstant() *domain.UnderwritingResult {
	return &domain.UnderwritingResult{Status: domain.StatusApproved, Type: domain.ApprovalInstant}
}

func completeFields(name string, amount int64, tenure int) domain.ExtractedFields {
	return domain.ExtractedFields{Name: &name, Amount: &amount, Tenure: &tenure}
}

func newRunner(v *mockVerifier, u *mockUnderwriter, s *mockSanctioner) *service.PipelineRunner {
	return service.NewPipelineRunner(v, u, s, observability.NewMetrics(), zap.NewNop())
}

// --- Tests ---

func TestPipelineApprovedEndToEnd(t *testing.T) {
	v := &mockVerifier{result: verified()}
	u := &mockUnderwriter{result: approvedInstant()}
	s := &mockSanctioner{result: &domain.SanctionResult{Status: domain.StatusSuccess, File: "x.txt"}}

	result := newRunner(v, u, s).Run(context.Background(), completeFields("Priya Sharma", 400000, 3))

	if result.FinalStatus != domain.StatusApproved {
		t.Errorf("expected approved, got %s", result.FinalStatus)
	}
	if result.Sanction == nil || result.Sanction.File != "x.txt" {
		t.Errorf("expected sanction artifact, got %+v", result.Sanction)
	}
	if u.gotName != "Priya Sharma" || u.gotAmount != 400000 || u.gotTenure != 3 {
		t.Errorf("underwriter got (%s, %d, %d)", u.gotName, u.gotAmount, u.gotTenure)
	}
}

func TestPipelineKYCFailureShortCircuits(t *testing.T) {
	v := &mockVerifier{result: &domain.VerificationResult{Status: domain.StatusFailed}}
	u := &mockUnderwriter{result: approvedInstant()}
	s := &mockSanctioner{}

	result := newRunner(v, u, s).Run(context.Background(), completeFields("Ghost", 400000, 3))

	if result.FinalStatus != domain.StatusRejected {
		t.Errorf("expected rejected, got %s", result.FinalStatus)
	}
	if result.RejectionReason != "KYC verification failed" {
		t.Errorf("unexpected reason %q", result.RejectionReason)
	}
	if u.calls != 0 || s.calls != 0 {
		t.Error("underwriting/sanction must not run after failed KYC")
	}
}

func TestPipelineVerifierErrorBecomesRejection(t *testing.T) {
	v := &mockVerifier{err: errors.New("crm unavailable")}
	result := newRunner(v, &mockUnderwriter{}, &mockSanctioner{}).
		Run(context.Background(), completeFields("Priya Sharma", 400000, 3))

	if result.FinalStatus != domain.StatusRejected || result.RejectionReason != "KYC verification failed" {
		t.Errorf("expected KYC rejection, got %+v", result)
	}
}

func TestPipelineUnderwritingRejectionPropagatesReason(t *testing.T) {
	v := &mockVerifier{result: verified()}
	u := &mockUnderwriter{result: &domain.UnderwritingResult{
		Status: domain.StatusRejected,
		Reason: "Low credit score",
	}}
	s := &mockSanctioner{}

	result := newRunner(v, u, s).Run(context.Background(), completeFields("Vikram Singh", 400000, 3))

	if result.FinalStatus != domain.StatusRejected || result.RejectionReason != "Low credit score" {
		t.Errorf("expected low-score rejection, got %+v", result)
	}
	if s.calls != 0 {
		t.Error("sanction must not run for rejected loans")
	}
}

func TestPipelineUnderwriterErrorBecomesGenericRejection(t *testing.T) {
	v := &mockVerifier{result: verified()}
	u := &mockUnderwriter{err: errors.New("bureau timeout")}

	result := newRunner(v, u, &mockSanctioner{}).
		Run(context.Background(), completeFields("Priya Sharma", 400000, 3))

	if result.FinalStatus != domain.StatusRejected || result.RejectionReason != "Eligibility criteria not met" {
		t.Errorf("expected generic rejection, got %+v", result)
	}
}

func TestPipelineSanctionFailureKeepsApproval(t *testing.T) {
	v := &mockVerifier{result: verified()}
	u := &mockUnderwriter{result: approvedInstant()}
	s := &mockSanctioner{err: errors.New("disk full")}

	result := newRunner(v, u, s).Run(context.Background(), completeFields("Priya Sharma", 400000, 3))

	if result.FinalStatus != domain.StatusApproved {
		t.Errorf("sanction failure must not downgrade approval, got %s", result.FinalStatus)
	}
	if result.Sanction == nil || result.Sanction.Status != domain.StatusFailed {
		t.Errorf("expected failed sanction marker, got %+v", result.Sanction)
	}
}

func TestPipelineSubstitutesDefaultsForMissingFields(t *testing.T) {
	v := &mockVerifier{result: verified()}
	u := &mockUnderwriter{result: approvedInstant()}
	s := &mockSanctioner{result: &domain.SanctionResult{Status: domain.StatusSuccess}}

	name := "Priya Sharma"
	newRunner(v, u, s).Run(context.Background(), domain.ExtractedFields{Name: &name})

	if u.gotAmount != 100000 || u.gotTenure != 5 {
		t.Errorf("expected default (100000, 5), got (%d, %d)", u.gotAmount, u.gotTenure)
	}
}
