package domain

import "time"

// Statuses used across the loan pipeline.
const (
	StatusVerified = "verified"
	StatusFailed   = "failed"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusPending  = "pending"
	StatusSuccess  = "success"
)

// Underwriting approval types.
const (
	ApprovalInstant     = "instant"
	ApprovalSalaryBased = "salary_based"
)

// AnnualInterestRate is the fixed add-on rate quoted on every sanction.
const AnnualInterestRate = 10.0

// CRMDetails is the contact record returned by the KYC lookup.
type CRMDetails struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// VerificationResult is the outcome of the identity/KYC check.
type VerificationResult struct {
	Status  string      `json:"status"`
	Details *CRMDetails `json:"details,omitempty"`
}

// UnderwritingResult is the eligibility decision.
type UnderwritingResult struct {
	Status string  `json:"status"`
	Type   string  `json:"type,omitempty"`
	Reason string  `json:"reason,omitempty"`
	EMI    float64 `json:"emi,omitempty"`
}

// SanctionResult references the generated sanction-letter artifact.
type SanctionResult struct {
	Status string `json:"status"`
	File   string `json:"file"`
}

// LoanInfo is the approved loan summary handed to the sanction issuer.
type LoanInfo struct {
	Name     string  `json:"name"`
	Amount   int64   `json:"amount"`
	Tenure   int     `json:"tenure"`
	Interest float64 `json:"interest"`
}

// PipelineResult is the assembled outcome of the verify → underwrite →
// sanction sequence. Created once per session, immutable thereafter.
type PipelineResult struct {
	Verification    *VerificationResult `json:"verification"`
	Underwriting    *UnderwritingResult `json:"underwriting"`
	Sanction        *SanctionResult     `json:"sanction"`
	FinalStatus     string              `json:"final_status"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
}

// DocumentMeta describes an uploaded applicant document.
type DocumentMeta struct {
	FileID             string     `json:"file_id"`
	OriginalFilename   string     `json:"original_filename"`
	FilePath           string     `json:"file_path"`
	FileExtension      string     `json:"file_extension"`
	Size               int64      `json:"size"`
	UploadedAt         time.Time  `json:"uploaded_at"`
	Verified           bool       `json:"verified"`
	VerificationStatus string     `json:"verification_status"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
}
