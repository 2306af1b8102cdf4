package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/saarthi/loan-assistant-go/internal/domain"
)

var docTracer = otel.Tracer("service/documents")

// MaxDocumentSize caps uploads at 10MB.
const MaxDocumentSize = 10 << 20

var allowedDocExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// DocumentService stores applicant documents (PAN, Aadhaar, bank statements)
// on disk with JSON metadata sidecars.
type DocumentService struct {
	uploadDir   string
	metadataDir string
	logger      *zap.Logger
}

// NewDocumentService creates the document service and its directories.
func NewDocumentService(baseDir string, logger *zap.Logger) (*DocumentService, error) {
	uploadDir := filepath.Join(baseDir, "documents")
	metadataDir := filepath.Join(baseDir, "metadata")
	for _, dir := range []string{uploadDir, metadataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory: %w", err)
		}
	}
	return &DocumentService{
		uploadDir:   uploadDir,
		metadataDir: metadataDir,
		logger:      logger,
	}, nil
}

// Upload validates and stores one document, returning its metadata.
func (d *DocumentService) Upload(ctx context.Context, filename string, content io.Reader) (*domain.DocumentMeta, error) {
	_, span := docTracer.Start(ctx, "DocumentService.Upload")
	defer span.End()

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedDocExtensions[ext] {
		return nil, &domain.ErrValidation{
			Field:   "file",
			Message: "invalid file type; allowed: .pdf, .jpg, .jpeg, .png",
		}
	}

	fileID := uuid.New().String()
	storedPath := filepath.Join(d.uploadDir, fileID+ext)

	f, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("create document file: %w", err)
	}

	// +1 so an exactly-at-limit read can be distinguished from overflow.
	size, err := io.Copy(f, io.LimitReader(content, MaxDocumentSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("write document file: %w", err)
	}
	if size > MaxDocumentSize {
		_ = os.Remove(storedPath)
		return nil, &domain.ErrValidation{Field: "file", Message: "file exceeds 10MB limit"}
	}

	meta := &domain.DocumentMeta{
		FileID:             fileID,
		OriginalFilename:   filepath.Base(filename),
		FilePath:           storedPath,
		FileExtension:      ext,
		Size:               size,
		UploadedAt:         time.Now(),
		Verified:           false,
		VerificationStatus: domain.StatusPending,
	}
	if err := d.writeMeta(meta); err != nil {
		_ = os.Remove(storedPath)
		return nil, err
	}

	d.logger.Info("document uploaded",
		zap.String("file_id", fileID),
		zap.String("filename", meta.OriginalFilename),
		zap.Int64("size", size),
	)
	return meta, nil
}

// List returns all documents, newest first.
func (d *DocumentService) List(ctx context.Context) ([]domain.DocumentMeta, error) {
	_, span := docTracer.Start(ctx, "DocumentService.List")
	defer span.End()

	entries, err := os.ReadDir(d.metadataDir)
	if err != nil {
		return nil, fmt.Errorf("read metadata dir: %w", err)
	}

	docs := make([]domain.DocumentMeta, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		meta, err := d.readMeta(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			d.logger.Warn("skipping unreadable metadata", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		docs = append(docs, *meta)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

// Get returns the metadata for one document.
func (d *DocumentService) Get(ctx context.Context, fileID string) (*domain.DocumentMeta, error) {
	_, span := docTracer.Start(ctx, "DocumentService.Get")
	defer span.End()

	return d.readMeta(fileID)
}

// Open returns the document metadata plus a reader over its content.
// The caller owns closing the reader.
func (d *DocumentService) Open(ctx context.Context, fileID string) (*domain.DocumentMeta, io.ReadCloser, error) {
	_, span := docTracer.Start(ctx, "DocumentService.Open")
	defer span.End()

	meta, err := d.readMeta(fileID)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(meta.FilePath)
	if os.IsNotExist(err) {
		return nil, nil, &domain.ErrNotFound{Resource: "document file", ID: fileID}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open document file: %w", err)
	}
	return meta, f, nil
}

// Verify marks a document as verified.
func (d *DocumentService) Verify(ctx context.Context, fileID string) (*domain.DocumentMeta, error) {
	_, span := docTracer.Start(ctx, "DocumentService.Verify")
	defer span.End()

	meta, err := d.readMeta(fileID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	meta.Verified = true
	meta.VerificationStatus = domain.StatusVerified
	meta.VerifiedAt = &now

	if err := d.writeMeta(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (d *DocumentService) metaPath(fileID string) string {
	// uuid ids only; strip path separators from anything else.
	clean := filepath.Base(fileID)
	return filepath.Join(d.metadataDir, clean+".json")
}

func (d *DocumentService) readMeta(fileID string) (*domain.DocumentMeta, error) {
	b, err := os.ReadFile(d.metaPath(fileID))
	if os.IsNotExist(err) {
		return nil, &domain.ErrNotFound{Resource: "document", ID: fileID}
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta domain.DocumentMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}

func (d *DocumentService) writeMeta(meta *domain.DocumentMeta) error {
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(d.metaPath(meta.FileID), b, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}
