package agents

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/infra/observability"
	"github.com/saarthi/loan-assistant-go/internal/port"

	"go.uber.org/zap"
)

// Eligibility rule constants. The pre-approved ceiling gates instant
// approval; up to twice the ceiling an EMI-to-salary check applies.
const (
	minCreditScore     = 700
	preApprovedCeiling = 500000
	stubMonthlySalary  = 60000
	flatAnnualRate     = 0.10
)

// Rejection reasons returned by the rule.
const (
	ReasonLowCreditScore = "Low credit score"
	ReasonHighEMIRatio   = "High EMI-to-salary ratio"
	ReasonOverLimit      = "Amount exceeds allowed limit"
)

// RuleUnderwriter evaluates loan eligibility with the deterministic rule
// set. Credit scores come from an injected scorer and are cached so
// repeated evaluations for the same applicant skip the bureau call.
type RuleUnderwriter struct {
	scorer  port.CreditScorer
	cache   port.Cache[int]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewRuleUnderwriter creates the underwriter. metrics may be nil.
func NewRuleUnderwriter(scorer port.CreditScorer, cache port.Cache[int], metrics *observability.Metrics, logger *zap.Logger) *RuleUnderwriter {
	return &RuleUnderwriter{scorer: scorer, cache: cache, metrics: metrics, logger: logger}
}

// Evaluate applies the eligibility rule:
//   - credit score below 700 rejects outright;
//   - amounts up to the pre-approved ceiling approve instantly;
//   - up to twice the ceiling, a flat-rate EMI must stay within half the
//     applicant's salary;
//   - anything larger is over-limit.
func (u *RuleUnderwriter) Evaluate(ctx context.Context, name string, amount int64, tenureYears int) (*domain.UnderwritingResult, error) {
	score, err := u.creditScore(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("credit score fetch: %w", err)
	}

	u.logger.Info("credit score fetched",
		zap.String("name", name),
		zap.Int("score", score),
	)

	if score < minCreditScore {
		return &domain.UnderwritingResult{Status: domain.StatusRejected, Reason: ReasonLowCreditScore}, nil
	}

	switch {
	case amount <= preApprovedCeiling:
		return &domain.UnderwritingResult{Status: domain.StatusApproved, Type: domain.ApprovalInstant}, nil

	case amount <= 2*preApprovedCeiling:
		// Flat add-on EMI, not amortized: principal plus one year's worth
		// of interest spread over the full tenure in months.
		emi := float64(amount) * (1 + flatAnnualRate) / float64(tenureYears*12)
		if emi <= 0.5*stubMonthlySalary {
			return &domain.UnderwritingResult{
				Status: domain.StatusApproved,
				Type:   domain.ApprovalSalaryBased,
				EMI:    math.Round(emi*100) / 100,
			}, nil
		}
		return &domain.UnderwritingResult{Status: domain.StatusRejected, Reason: ReasonHighEMIRatio}, nil

	default:
		return &domain.UnderwritingResult{Status: domain.StatusRejected, Reason: ReasonOverLimit}, nil
	}
}

func (u *RuleUnderwriter) creditScore(ctx context.Context, name string) (int, error) {
	key := "score:" + strings.ToLower(strings.TrimSpace(name))
	if score, ok := u.cache.Get(key); ok {
		if u.metrics != nil {
			u.metrics.IncrCacheHit("credit_score")
		}
		return score, nil
	}
	if u.metrics != nil {
		u.metrics.IncrCacheMiss("credit_score")
	}

	score, err := u.scorer.Score(ctx, name)
	if err != nil {
		return 0, err
	}
	u.cache.Set(key, score)
	return score, nil
}

// StubCreditBureau returns deterministic per-name scores: seeded entries
// first, otherwise a value derived from the name's hash in [650, 850).
// Real bureau integrations implement the same port.
type StubCreditBureau struct {
	seeded map[string]int
}

// NewStubCreditBureau creates the stub bureau.
func NewStubCreditBureau() *StubCreditBureau {
	return &StubCreditBureau{
		seeded: map[string]int{
			"harshit mittal": 780,
			"priya sharma":   760,
			"rahul verma":    820,
			"anita desai":    710,
			"vikram singh":   640, // seeded sub-cutoff applicant
		},
	}
}

// Score returns the applicant's credit score.
func (b *StubCreditBureau) Score(_ context.Context, name string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if score, ok := b.seeded[key]; ok {
		return score, nil
	}

	h := fnv.New32a()
	h.Write([]byte(key))
	return 650 + int(h.Sum32()%200), nil
}
