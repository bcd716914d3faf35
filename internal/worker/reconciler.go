package worker

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"locar-esign/internal/config"
	"locar-esign/internal/domain/entity"
	"locar-esign/internal/domain/repository"
	"locar-esign/internal/usecase"
)

type reconcileFunc func(ctx context.Context, rental *entity.Rental) (usecase.ReconcileResult, error)

// Reconciler periodically syncs pending rentals with the provider's
// signature status. It backs up the webhook path: a missed delivery is
// caught on the next cycle.
type Reconciler struct {
	repo      repository.RentalRepository
	reconcile reconcileFunc
	interval  time.Duration
	logger    *zap.Logger
}

func NewReconciler(cfg *config.Config, repo repository.RentalRepository, signature usecase.SignatureUsecase, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:      repo,
		reconcile: signature.Reconcile,
		interval:  cfg.Scheduler.Interval,
		logger:    logger,
	}
}

func (r *Reconciler) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce reconciles every pending rental that has a provider document id.
// Each rental is fault-isolated: one failure is logged and skipped, never
// aborting the rest of the batch.
func (r *Reconciler) RunOnce(ctx context.Context) {
	rentals, err := r.repo.FindPendingSignatures(ctx)
	if err != nil {
		r.logger.Error("Failed to enumerate pending signatures", zap.Error(err))
		return
	}

	if len(rentals) == 0 {
		r.logger.Debug("No pending signatures to reconcile")
		return
	}

	r.logger.Info("Reconciling pending signatures", zap.Int("count", len(rentals)))

	var signed int
	for _, rental := range rentals {
		result, err := r.reconcile(ctx, rental)
		if err != nil {
			r.logger.Error("Failed to reconcile rental",
				zap.Int64("rental_id", rental.ID),
				zap.Error(err),
			)
			continue
		}
		if result == usecase.ReconcileSigned {
			signed++
		}
	}

	r.logger.Info("Reconciliation cycle finished",
		zap.Int("processed", len(rentals)),
		zap.Int("transitioned", signed),
	)
}

func Register(lc fx.Lifecycle, cfg *config.Config, reconciler *Reconciler, logger *zap.Logger) {
	if !cfg.Scheduler.Enabled {
		logger.Info("Signature reconciliation scheduler disabled")
		return
	}

	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting signature reconciliation scheduler",
				zap.Duration("interval", cfg.Scheduler.Interval),
			)
			go reconciler.run(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping signature reconciliation scheduler")
			cancel()
			return nil
		},
	})
}

var Module = fx.Module("worker",
	fx.Provide(NewReconciler),
	fx.Invoke(Register),
)
