package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"locar-esign/internal/domain/entity"
	"locar-esign/internal/domain/repository"
	"locar-esign/internal/infrastructure/assinafy"
	"locar-esign/internal/infrastructure/pdfgen"
	"locar-esign/internal/infrastructure/redis"
	"locar-esign/internal/infrastructure/storage"
)

const (
	reconcileLockKeyPrefix = "assinafy:reconcile:"
	reconcileLockTTL       = 2 * time.Minute
)

// ErrNotReady means the document never reached a signable status within the
// wait budget. The scheduled job picks the rental up again next cycle.
var ErrNotReady = errors.New("document not ready for signature")

// ErrAlreadySigned means the rental contract is already signed.
var ErrAlreadySigned = errors.New("rental contract already signed")

// ErrSignatureRequested means a signature package already exists for the
// rental. Assignments are not idempotent at the provider, so a second
// request must never be issued.
var ErrSignatureRequested = errors.New("signature already requested for rental")

// ReconcileResult describes the outcome of one reconciliation pass over a
// rental.
type ReconcileResult string

const (
	ReconcileUnchanged ReconcileResult = "unchanged"
	ReconcileSigned    ReconcileResult = "transitioned_to_signed"
)

// SignatureUsecase drives a rental contract through the signature
// lifecycle: render, upload, wait for processing, resolve the signer,
// request the signature, and reconcile completion. It is the only writer of
// the rental's signature state; the scheduled poll job and the webhook path
// both call into it so the two paths can never diverge.
type SignatureUsecase interface {
	// SubmitForSignature runs the submission pipeline for a rental and
	// returns the rental with its provider ids filled in. It blocks for up
	// to the configured readiness-wait budget.
	SubmitForSignature(ctx context.Context, rentalID int64) (*entity.Rental, error)

	// Reconcile syncs one rental with the provider's authoritative status,
	// transitioning it to signed when the document is certificated. Safe to
	// call any number of times, in any order with the webhook path.
	Reconcile(ctx context.Context, rental *entity.Rental) (ReconcileResult, error)

	// TransitionSigned marks a rental signed and downloads the certificated
	// artifact, without querying the provider status first. The webhook path
	// uses it directly since the event already asserts completion.
	TransitionSigned(ctx context.Context, rental *entity.Rental) (ReconcileResult, error)
}

type documentWaiter interface {
	WaitForReady(ctx context.Context, documentID string) bool
}

type signerResolver interface {
	Resolve(ctx context.Context, fullName, email string) (string, error)
}

type signatureUsecase struct {
	repo     repository.RentalRepository
	client   assinafy.Client
	waiter   documentWaiter
	resolver signerResolver
	renderer pdfgen.Renderer
	store    storage.Store
	cache    *redis.RedisClient
	logger   *zap.Logger
}

func NewSignatureUsecase(
	repo repository.RentalRepository,
	client assinafy.Client,
	waiter *ReadinessWaiter,
	resolver *SignerResolver,
	renderer pdfgen.Renderer,
	store storage.Store,
	cache *redis.RedisClient,
	logger *zap.Logger,
) SignatureUsecase {
	return &signatureUsecase{
		repo:     repo,
		client:   client,
		waiter:   waiter,
		resolver: resolver,
		renderer: renderer,
		store:    store,
		cache:    cache,
		logger:   logger,
	}
}

func (u *signatureUsecase) SubmitForSignature(ctx context.Context, rentalID int64) (*entity.Rental, error) {
	rental, err := u.repo.FindByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.Signed() {
		return nil, ErrAlreadySigned
	}
	if rental.PackageID != "" {
		return nil, ErrSignatureRequested
	}

	u.logger.Info("Submitting rental contract for signature",
		zap.Int64("rental_id", rental.ID),
		zap.String("customer_email", rental.CustomerEmail),
	)

	contractPath := u.store.ContractPath(rental.ID)
	if !u.store.ContractExists(rental.ID) {
		content, err := u.renderer.Render(rental)
		if err != nil {
			return nil, err
		}
		if contractPath, err = u.store.SaveContract(rental.ID, content); err != nil {
			return nil, err
		}
	}

	if rental.DocumentID == "" {
		documentID, err := u.client.Upload(ctx, contractPath)
		if err != nil {
			return nil, err
		}

		if err := u.repo.SetDocumentID(ctx, rental.ID, documentID); err != nil {
			if !errors.Is(err, repository.ErrDocumentIDSet) {
				return nil, err
			}
			// Lost a race with another submit; the persisted id wins.
			if rental, err = u.repo.FindByID(ctx, rental.ID); err != nil {
				return nil, err
			}
			u.logger.Warn("Document id already set, using persisted id",
				zap.Int64("rental_id", rental.ID),
				zap.String("document_id", rental.DocumentID),
				zap.String("discarded_document_id", documentID),
			)
		} else {
			rental.DocumentID = documentID
		}
	}

	if !u.waiter.WaitForReady(ctx, rental.DocumentID) {
		return nil, ErrNotReady
	}

	signerID, err := u.resolver.Resolve(ctx, rental.CustomerName, rental.CustomerEmail)
	if err != nil {
		return nil, err
	}

	packageID, err := u.client.RequestSignature(ctx, rental.DocumentID, []string{signerID})
	if err != nil {
		return nil, err
	}

	if err := u.repo.SetPackageID(ctx, rental.ID, packageID); err != nil {
		return nil, err
	}
	rental.PackageID = packageID

	u.logger.Info("Signature request dispatched",
		zap.Int64("rental_id", rental.ID),
		zap.String("document_id", rental.DocumentID),
		zap.String("package_id", packageID),
	)
	return rental, nil
}

func (u *signatureUsecase) Reconcile(ctx context.Context, rental *entity.Rental) (ReconcileResult, error) {
	if rental.Signed() {
		u.logger.Debug("Rental already signed, nothing to reconcile",
			zap.Int64("rental_id", rental.ID),
		)
		return ReconcileUnchanged, nil
	}
	if rental.DocumentID == "" {
		return ReconcileUnchanged, nil
	}

	status, err := u.client.GetStatus(ctx, rental.DocumentID)
	if err != nil {
		return ReconcileUnchanged, err
	}

	if status != entity.DocumentStatusCertificated {
		u.logger.Debug("Document not certificated yet",
			zap.Int64("rental_id", rental.ID),
			zap.String("status", string(status)),
		)
		return ReconcileUnchanged, nil
	}

	return u.TransitionSigned(ctx, rental)
}

func (u *signatureUsecase) TransitionSigned(ctx context.Context, rental *entity.Rental) (ReconcileResult, error) {
	if rental.Signed() {
		u.logger.Debug("Rental already signed, skipping transition",
			zap.Int64("rental_id", rental.ID),
		)
		return ReconcileUnchanged, nil
	}

	// Best-effort single-flight: when the poll job and a webhook race, only
	// one of them runs the download. The conditional UPDATE below is the
	// real guarantee; the lock just avoids duplicate provider calls.
	if u.cache != nil {
		lockKey := reconcileLockKeyPrefix + strconv.FormatInt(rental.ID, 10)
		acquired, err := u.cache.SetNX(ctx, lockKey, "1", reconcileLockTTL)
		if err == nil {
			if !acquired {
				u.logger.Debug("Reconcile already in flight elsewhere",
					zap.Int64("rental_id", rental.ID),
				)
				return ReconcileUnchanged, nil
			}
			defer func() {
				if err := u.cache.Del(ctx, lockKey); err != nil {
					u.logger.Warn("Failed to release reconcile lock",
						zap.Int64("rental_id", rental.ID),
						zap.Error(err),
					)
				}
			}()
		}
	}

	transitioned, err := u.repo.MarkSigned(ctx, rental.ID)
	if err != nil {
		return ReconcileUnchanged, err
	}
	if !transitioned {
		u.logger.Debug("Rental was already signed by a concurrent path",
			zap.Int64("rental_id", rental.ID),
		)
		return ReconcileUnchanged, nil
	}

	rental.Status = entity.SignatureStatusSigned
	u.logger.Info("Rental contract signed",
		zap.Int64("rental_id", rental.ID),
		zap.String("document_id", rental.DocumentID),
	)

	destPath := u.store.SignedPath(rental.ID)
	if !u.client.DownloadCertificated(ctx, rental.DocumentID, destPath) {
		// The status transition stands; the artifact stays observable as
		// missing on disk.
		u.logger.Error("Failed to download signed contract",
			zap.Int64("rental_id", rental.ID),
			zap.String("document_id", rental.DocumentID),
			zap.String("dest", destPath),
		)
	}

	return ReconcileSigned, nil
}
