package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"locar-esign/internal/config"
	"locar-esign/internal/infrastructure/assinafy"
)

// ReadinessWaiter polls a document's processing status until the provider
// will accept a signature assignment for it. The loop blocks its caller for
// up to maxAttempts*interval, so it must run on the reconciliation worker or
// a long-running request path, never inline with latency-sensitive handlers.
type ReadinessWaiter struct {
	client      assinafy.Client
	maxAttempts int
	interval    time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

func NewReadinessWaiter(cfg *config.Config, client assinafy.Client, logger *zap.Logger) *ReadinessWaiter {
	return &ReadinessWaiter{
		client:      client,
		maxAttempts: cfg.Signature.WaitMaxAttempts,
		interval:    cfg.Signature.WaitInterval,
		sleep:       sleepContext,
		logger:      logger,
	}
}

// WaitForReady reports whether the document became ready within the attempt
// budget. Poll errors count as non-ready attempts; they never abort the loop
// early. Context cancellation does.
func (w *ReadinessWaiter) WaitForReady(ctx context.Context, documentID string) bool {
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		status, err := w.client.GetStatus(ctx, documentID)
		if err != nil {
			w.logger.Warn("Document status poll failed",
				zap.String("document_id", documentID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else {
			w.logger.Info("Document status",
				zap.String("document_id", documentID),
				zap.String("status", string(status)),
				zap.Int("attempt", attempt),
			)
			if status.ReadyForAssignment() {
				return true
			}
		}

		if attempt < w.maxAttempts {
			if err := w.sleep(ctx, w.interval); err != nil {
				w.logger.Warn("Readiness wait cancelled",
					zap.String("document_id", documentID),
					zap.Error(err),
				)
				return false
			}
		}
	}

	w.logger.Error("Document did not become ready",
		zap.String("document_id", documentID),
		zap.Int("attempts", w.maxAttempts),
	)
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
