package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/saarthi/loan-assistant-go/internal/domain"

	"go.uber.org/zap"
)

// extractionPrompt instructs the model to return a bare JSON object with
// the eight loan fields, nulls for anything not mentioned.
const extractionPrompt = `Analyze the conversation history and extract loan-related information.

Extract the following fields if mentioned:
- name: Customer's full name
- amount: Loan amount in numbers (convert lakhs/crores to actual numbers, e.g., "5 lakhs" = 500000)
- tenure: Loan tenure in years (convert months to years if needed, e.g., "24 months" = 2)
- purpose: Purpose of loan (business, personal, education, home, vehicle, etc.)
- income: Monthly income in numbers
- employment: Employment type (business, salaried, self-employed)
- email: Email address if provided
- phone: Phone number if provided

Return ONLY a valid JSON object with these fields. Use null for fields not found.
Do not include any explanation, just the JSON.

Conversation history:
%s

Extract information as JSON:`

// Completer is the slice of the LLM client this extractor needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMExtractor asks the text-generation service for a structured field
// set. Output is parsed leniently and validated; any failure degrades to
// an all-null result, never an error that would block the chat turn.
type LLMExtractor struct {
	client Completer
	logger *zap.Logger
}

// NewLLMExtractor creates the service-backed extractor.
func NewLLMExtractor(client Completer, logger *zap.Logger) *LLMExtractor {
	return &LLMExtractor{client: client, logger: logger}
}

// Extract renders the conversation into the extraction prompt and parses
// the model's reply.
func (e *LLMExtractor) Extract(ctx context.Context, history []domain.Message) (domain.ExtractedFields, error) {
	var sb strings.Builder
	for _, m := range history {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}

	resp, err := e.client.Complete(ctx, "You are a precise information extraction engine.", fmt.Sprintf(extractionPrompt, sb.String()))
	if err != nil {
		e.logger.Warn("llm extraction call failed", zap.Error(err))
		return domain.ExtractedFields{}, nil
	}

	raw := parseLenientJSON(resp)
	if raw == nil {
		e.logger.Debug("llm extraction returned no parsable JSON",
			zap.Int("response_length", len(resp)),
		)
		return domain.ExtractedFields{}, nil
	}

	return Validate(coerce(raw)), nil
}

// parseLenientJSON parses a JSON object from model output. Models wrap
// JSON in prose or code fences, so when direct parsing fails we take the
// substring between the first '{' and the last '}' and retry. Returns nil
// when nothing parses.
func parseLenientJSON(s string) map[string]any {
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err == nil {
		return raw
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &raw); err != nil {
		return nil
	}
	return raw
}
