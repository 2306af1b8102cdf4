package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saarthi/loan-assistant-go/internal/service"
)

// chatRequest is the body for POST /v1/chat.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// chatHandler processes one conversation turn.
func chatHandler(svc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		result, err := svc.Turn(ctx, req.SessionID, req.Message)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("session.id", result.SessionID))

		writeJSON(w, http.StatusOK, result)
	}
}

// getSessionHandler returns the current session state.
func getSessionHandler(svc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/sessions/{sessionId}")
		defer span.End()

		id := chi.URLParam(r, "sessionId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "session id is required")
			return
		}

		session, err := svc.GetSession(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, session)
	}
}

// deleteSessionHandler ends a session.
func deleteSessionHandler(svc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/sessions/{sessionId}")
		defer span.End()

		id := chi.URLParam(r, "sessionId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "session id is required")
			return
		}

		svc.EndSession(ctx, id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "session ended"})
	}
}
