// Package llm contains the Groq chat-completions client used for both the
// conversational replies and the LLM extraction path.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/infra/observability"
	"github.com/saarthi/loan-assistant-go/internal/infra/resilience"
)

var tracer = otel.Tracer("llm")

const (
	replyTemperature   = 0.8
	extractTemperature = 0.0
	maxReplyTokens     = 300
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// GroqClient calls the Groq OpenAI-compatible chat completions API.
type GroqClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
}

// NewGroqClient creates a new GroqClient. metrics may be nil.
func NewGroqClient(httpClient *http.Client, baseURL, apiKey, model string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, bh *resilience.Bulkhead, metrics *observability.Metrics) *GroqClient {
	return &GroqClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   bh,
		metrics:    metrics,
	}
}

// Reply generates the assistant's next conversational turn from the session
// history plus the persona system prompt.
func (c *GroqClient) Reply(ctx context.Context, history []domain.Message, systemPrompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "GroqClient.Reply")
	defer span.End()
	span.SetAttributes(attribute.Int("history.len", len(history)))

	messages := make([]chatMessage, 0, len(history)+1)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	return c.chat(ctx, messages, replyTemperature)
}

// Complete runs a single system+user prompt pair and returns the raw model
// output. Used by the LLM field extractor.
func (c *GroqClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "GroqClient.Complete")
	defer span.End()

	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	return c.chat(ctx, messages, extractTemperature)
}

func (c *GroqClient) chat(ctx context.Context, messages []chatMessage, temperature float64) (string, error) {
	if c.bulkhead != nil {
		if err := c.bulkhead.Acquire(ctx); err != nil {
			return "", &domain.ErrExternalService{Service: "groq", Err: err}
		}
		defer c.bulkhead.Release()
	}

	var chatResp chatResponse

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(chatRequest{
				Model:       c.model,
				Messages:    messages,
				Temperature: temperature,
				MaxTokens:   maxReplyTokens,
			})
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/chat/completions", c.baseURL)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("groq API returned status %d", resp.StatusCode)
			}

			chatResp = chatResponse{}
			return json.NewDecoder(resp.Body).Decode(&chatResp)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		if len(chatResp.Choices) == 0 {
			return nil, fmt.Errorf("groq API returned no choices")
		}
		return chatResp.Choices[0].Message.Content, nil
	})

	if err != nil {
		if c.metrics != nil {
			c.metrics.IncrExternalError("groq")
		}
		return "", &domain.ErrExternalService{Service: "groq", Err: err}
	}

	if c.metrics != nil {
		c.metrics.RecordTokens(chatResp.Usage.PromptTokens, chatResp.Usage.CompletionTokens)
	}
	return result.(string), nil
}
