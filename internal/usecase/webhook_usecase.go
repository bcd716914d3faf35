package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"locar-esign/internal/domain/entity"
	"locar-esign/internal/domain/repository"
)

// WebhookUsecase dispatches inbound provider notifications into the
// signature lifecycle.
type WebhookUsecase interface {
	ProcessWebhook(ctx context.Context, payload *entity.WebhookPayload) error
}

type webhookUsecase struct {
	repo      repository.RentalRepository
	signature SignatureUsecase
	logger    *zap.Logger
}

func NewWebhookUsecase(repo repository.RentalRepository, signature SignatureUsecase, logger *zap.Logger) WebhookUsecase {
	return &webhookUsecase{
		repo:      repo,
		signature: signature,
		logger:    logger,
	}
}

func (u *webhookUsecase) ProcessWebhook(ctx context.Context, payload *entity.WebhookPayload) error {
	switch payload.Event {
	case entity.WebhookEventPackageSigned:
		return u.handlePackageSigned(ctx, payload.Package.ID)
	default:
		// Unrecognized events are acknowledged and ignored so the sender
		// never retries deliveries this system doesn't act on.
		u.logger.Info("Ignoring unrecognized webhook event",
			zap.String("event", payload.Event),
		)
		return nil
	}
}

func (u *webhookUsecase) handlePackageSigned(ctx context.Context, packageID string) error {
	rental, err := u.repo.FindByPackageID(ctx, packageID)
	if errors.Is(err, repository.ErrNotFound) {
		u.logger.Warn("Webhook for unknown signature package",
			zap.String("package_id", packageID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	result, err := u.signature.TransitionSigned(ctx, rental)
	if err != nil {
		return err
	}

	u.logger.Info("Webhook processed",
		zap.String("package_id", packageID),
		zap.Int64("rental_id", rental.ID),
		zap.String("result", string(result)),
	)
	return nil
}
