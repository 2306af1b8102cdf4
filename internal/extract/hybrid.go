package extract

import (
	"context"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/port"

	"golang.org/x/sync/errgroup"
)

// HybridExtractor runs the pattern and LLM extractors concurrently and
// overlays the deterministic pattern results on top of the LLM's. The
// pattern layer wins for the fields it knows (name, amount, tenure); the
// LLM fills everything else.
type HybridExtractor struct {
	pattern port.Extractor
	llm     port.Extractor
}

// NewHybridExtractor combines the two extraction layers.
func NewHybridExtractor(pattern, llm port.Extractor) *HybridExtractor {
	return &HybridExtractor{pattern: pattern, llm: llm}
}

// Extract runs both layers and merges the results. Neither layer returns
// hard errors on bad input, so a failure here is a context cancellation.
func (e *HybridExtractor) Extract(ctx context.Context, history []domain.Message) (domain.ExtractedFields, error) {
	var fromPattern, fromLLM domain.ExtractedFields

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fromPattern, err = e.pattern.Extract(gCtx, history)
		return err
	})
	g.Go(func() error {
		var err error
		fromLLM, err = e.llm.Extract(gCtx, history)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.ExtractedFields{}, err
	}

	merged := fromLLM
	merged.Merge(fromPattern)
	return merged, nil
}
