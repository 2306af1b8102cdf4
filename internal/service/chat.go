// Package service provides the business logic layer (use cases).
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/infra/observability"
	"github.com/saarthi/loan-assistant-go/internal/port"
	"github.com/saarthi/loan-assistant-go/internal/session"
)

var tracer = otel.Tracer("service")

// ChatService drives one conversation turn: session resolution, extraction,
// the completion gate, and either the loan pipeline or a conversational reply.
type ChatService struct {
	sessions  *session.Store
	extractor port.Extractor
	replier   port.Conversationalist
	pipeline  *PipelineRunner
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewChatService creates the chat service with all dependencies injected.
func NewChatService(
	sessions *session.Store,
	extractor port.Extractor,
	replier port.Conversationalist,
	pipeline *PipelineRunner,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		sessions:  sessions,
		extractor: extractor,
		replier:   replier,
		pipeline:  pipeline,
		metrics:   metrics,
		logger:    logger,
	}
}

// Turn processes one user message and returns the assistant's response along
// with the current session state. An unknown or expired session id is
// replaced transparently by a fresh session.
func (s *ChatService) Turn(ctx context.Context, sessionID, message string) (*domain.ChatTurnResult, error) {
	ctx, span := tracer.Start(ctx, "ChatService.Turn")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("chat", time.Since(start))
	}()

	id := s.resolveSession(sessionID)
	span.SetAttributes(attribute.String("session.id", id))

	if err := s.sessions.AddMessage(id, domain.RoleUser, message); err != nil {
		// The session can only vanish between resolve and append if it
		// expired in that window; start over once.
		id = s.sessions.Create()
		if err := s.sessions.AddMessage(id, domain.RoleUser, message); err != nil {
			s.metrics.IncrRequest("error")
			return nil, err
		}
	}

	snapshot, err := s.sessions.Get(id)
	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}

	// Extraction failures never block the turn.
	partial, err := s.extractor.Extract(ctx, snapshot.Messages)
	if err != nil {
		s.logger.Warn("extraction failed", zap.String("session_id", id), zap.Error(err))
		partial = domain.ExtractedFields{}
	}

	merged, shouldRun, err := s.sessions.MergeAndGate(id, partial)
	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}

	var response string
	if shouldRun {
		result := s.pipeline.Run(ctx, merged)
		if err := s.sessions.MarkTriggered(id, result); err != nil {
			s.logger.Warn("could not record pipeline result", zap.String("session_id", id), zap.Error(err))
		}
		response = ComposeWorkflowResponse(merged, result)
	} else {
		response = s.converse(ctx, id, snapshot.Messages)
	}

	if err := s.sessions.AddMessage(id, domain.RoleAssistant, response); err != nil {
		s.logger.Warn("could not append assistant message", zap.String("session_id", id), zap.Error(err))
	}

	s.metrics.IncrRequest("success")
	s.metrics.SetActiveSessions(s.sessions.Len())

	return &domain.ChatTurnResult{
		Response:          response,
		SessionID:         id,
		ExtractedInfo:     merged,
		PipelineTriggered: s.sessions.IsTriggered(id),
	}, nil
}

// GetSession returns the current session snapshot.
func (s *ChatService) GetSession(ctx context.Context, id string) (domain.Session, error) {
	_, span := tracer.Start(ctx, "ChatService.GetSession")
	defer span.End()

	return s.sessions.Get(id)
}

// EndSession discards a session. Ending an unknown session is a no-op.
func (s *ChatService) EndSession(ctx context.Context, id string) {
	_, span := tracer.Start(ctx, "ChatService.EndSession")
	defer span.End()

	s.sessions.Delete(id)
	s.metrics.SetActiveSessions(s.sessions.Len())
}

func (s *ChatService) resolveSession(id string) string {
	if id == "" {
		return s.sessions.Create()
	}
	if _, err := s.sessions.Get(id); err != nil {
		// Unknown or expired id: start a fresh session rather than failing.
		return s.sessions.Create()
	}
	return id
}

// converse calls the conversational collaborator, degrading to a static
// apology on failure.
func (s *ChatService) converse(ctx context.Context, id string, history []domain.Message) string {
	reply, err := s.replier.Reply(ctx, history, SystemPrompt)
	if err != nil {
		s.logger.Error("conversational reply failed", zap.String("session_id", id), zap.Error(err))
		s.metrics.IncrExternalError("groq")
		return connectionFallback
	}
	return reply
}
