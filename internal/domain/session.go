package domain

import "time"

// Message roles in a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ExtractedFields is the structured loan-application record accumulated
// across a conversation. Nil means "not yet provided".
type ExtractedFields struct {
	Name       *string `json:"name"`
	Amount     *int64  `json:"amount"`
	Tenure     *int    `json:"tenure"`
	Purpose    *string `json:"purpose"`
	Income     *int64  `json:"income"`
	Employment *string `json:"employment"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
}

// Merge applies partial onto f: a non-nil incoming value overwrites,
// a nil incoming value never erases. Idempotent.
func (f *ExtractedFields) Merge(partial ExtractedFields) {
	if partial.Name != nil {
		f.Name = partial.Name
	}
	if partial.Amount != nil {
		f.Amount = partial.Amount
	}
	if partial.Tenure != nil {
		f.Tenure = partial.Tenure
	}
	if partial.Purpose != nil {
		f.Purpose = partial.Purpose
	}
	if partial.Income != nil {
		f.Income = partial.Income
	}
	if partial.Employment != nil {
		f.Employment = partial.Employment
	}
	if partial.Email != nil {
		f.Email = partial.Email
	}
	if partial.Phone != nil {
		f.Phone = partial.Phone
	}
}

// Complete reports whether the minimum required subset for the loan
// pipeline (name, amount, tenure) is present.
func (f *ExtractedFields) Complete() bool {
	return f.Name != nil && f.Amount != nil && f.Tenure != nil
}

// Session is a single ongoing conversation with accumulated state.
// Owned exclusively by the session store; callers receive copies.
type Session struct {
	ID                string          `json:"session_id"`
	Messages          []Message       `json:"messages"`
	Fields            ExtractedFields `json:"extracted_info"`
	PipelineTriggered bool            `json:"pipeline_triggered"`
	Result            *PipelineResult `json:"pipeline_result,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	LastActivityAt    time.Time       `json:"last_activity_at"`
}

// ChatTurnResult is what the turn controller returns to the HTTP layer
// after processing one incoming message.
type ChatTurnResult struct {
	Response          string          `json:"response"`
	SessionID         string          `json:"session_id"`
	ExtractedInfo     ExtractedFields `json:"extracted_info"`
	PipelineTriggered bool            `json:"pipeline_triggered"`
}
