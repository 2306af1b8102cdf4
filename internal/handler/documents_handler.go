package handler

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/saarthi/loan-assistant-go/internal/service"
)

// documentUploadHandler handles POST /v1/documents/upload. The file arrives
// as multipart form data under the "file" field.
func documentUploadHandler(svc *service.DocumentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/documents/upload")
		defer span.End()

		if err := r.ParseMultipartForm(service.MaxDocumentSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()

		meta, err := svc.Upload(ctx, header.Filename, file)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, meta)
	}
}

// documentListHandler handles GET /v1/documents.
func documentListHandler(svc *service.DocumentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/documents")
		defer span.End()

		docs, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"documents": docs,
			"count":     len(docs),
		})
	}
}

// documentDownloadHandler handles GET /v1/documents/{fileId}/download.
func documentDownloadHandler(svc *service.DocumentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/documents/{fileId}/download")
		defer span.End()

		meta, rc, err := svc.Open(ctx, chi.URLParam(r, "fileId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		defer rc.Close()

		contentType := mime.TypeByExtension(meta.FileExtension)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition",
			"attachment; filename=\""+strings.ReplaceAll(meta.OriginalFilename, "\"", "")+"\"")

		if _, err := io.Copy(w, rc); err != nil {
			logger.Warn("document download interrupted",
				zap.String("file_id", meta.FileID),
				zap.Error(err),
			)
		}
	}
}

// documentVerifyHandler handles POST /v1/documents/{fileId}/verify.
func documentVerifyHandler(svc *service.DocumentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/documents/{fileId}/verify")
		defer span.End()

		meta, err := svc.Verify(ctx, chi.URLParam(r, "fileId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "document verified successfully",
			"file_id": meta.FileID,
		})
	}
}
