// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/saarthi/loan-assistant-go/internal/domain"
)

// Verifier performs the identity/KYC check against the CRM.
type Verifier interface {
	Verify(ctx context.Context, name string) (*domain.VerificationResult, error)
}

// Underwriter evaluates loan eligibility from (name, amount, tenure).
type Underwriter interface {
	Evaluate(ctx context.Context, name string, amount int64, tenureYears int) (*domain.UnderwritingResult, error)
}

// SanctionIssuer produces the sanction-letter artifact for approved loans.
type SanctionIssuer interface {
	Issue(ctx context.Context, name string, loan domain.LoanInfo, decision *domain.UnderwritingResult) (*domain.SanctionResult, error)
}

// Conversationalist generates the free-form assistant reply for turns
// that do not trigger the pipeline.
type Conversationalist interface {
	Reply(ctx context.Context, history []domain.Message, systemPrompt string) (string, error)
}

// Extractor turns conversation history into a partial field set.
// Implementations must be deterministic per input and side-effect free;
// merge policy is the caller's concern, not the extractor's.
type Extractor interface {
	Extract(ctx context.Context, history []domain.Message) (domain.ExtractedFields, error)
}

// CreditScorer fetches an applicant's credit score.
type CreditScorer interface {
	Score(ctx context.Context, name string) (int, error)
}

// UserStore defines the persistence operations for applicant accounts.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	Ping(ctx context.Context) error
	Close() error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
