package ingest

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/distill/internal/core/merge"
	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/logger"
)

type Extractor interface {
	Extract(ctx context.Context, text string) (*model.ExtractionResult, error)
}

// Document is one transcript to ingest. Name is only used for reporting.
type Document struct {
	Name string
	Text string
}

// Outcome reports what happened to one document. Err holds a recoverable
// extraction error; the document's (empty) result was still merged.
type Outcome struct {
	Name   string        `json:"name"`
	Merged merge.Summary `json:"merged"`
	Err    error         `json:"-"`
}

type Ingester struct {
	Extractor   Extractor
	Concurrency int
	Logger      *zap.Logger
}

func New(extractor Extractor, concurrency int) *Ingester {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Ingester{
		Extractor:   extractor,
		Concurrency: concurrency,
		Logger:      logger.Get(),
	}
}

// Run extracts all documents in parallel and merges the results into
// target one at a time, in input order, so the store sees the same
// sequence of writes as a serial run. A non-recoverable extraction error
// or any storage error stops the run.
func (in *Ingester) Run(ctx context.Context, docs []Document, target merge.Target) ([]Outcome, error) {
	log := logger.Or(in.Logger)
	results := make([]*model.ExtractionResult, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.Concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			res, err := in.Extractor.Extract(gctx, doc.Text)
			if err != nil && !apperrors.IsRecoverable(err) {
				return err
			}
			results[i] = res
			errs[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(docs))
	for i, doc := range docs {
		if errs[i] != nil {
			log.Warn("Extraction degraded", zap.String("document", doc.Name), zap.Error(errs[i]))
		}
		sum, err := merge.Apply(ctx, results[i], target)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, Outcome{Name: doc.Name, Merged: sum, Err: errs[i]})
	}

	log.Info("Bulk ingest finished", zap.Int("documents", len(docs)))
	return outcomes, nil
}
