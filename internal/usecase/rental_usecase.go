package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"locar-esign/internal/domain/entity"
	"locar-esign/internal/domain/repository"
	"locar-esign/internal/infrastructure/pdfgen"
	"locar-esign/internal/infrastructure/storage"
)

// RentalUsecase covers rental CRUD and contract generation. Signature flow
// lives in SignatureUsecase.
type RentalUsecase interface {
	Create(ctx context.Context, rental *entity.Rental) error
	Get(ctx context.Context, id int64) (*entity.Rental, error)

	// GenerateContract renders the rental contract PDF and stores it under
	// the contracts folder, returning the stored path. Re-generating
	// replaces the previous file.
	GenerateContract(ctx context.Context, id int64) (string, error)
}

type rentalUsecase struct {
	repo     repository.RentalRepository
	renderer pdfgen.Renderer
	store    storage.Store
	logger   *zap.Logger
}

func NewRentalUsecase(repo repository.RentalRepository, renderer pdfgen.Renderer, store storage.Store, logger *zap.Logger) RentalUsecase {
	return &rentalUsecase{
		repo:     repo,
		renderer: renderer,
		store:    store,
		logger:   logger,
	}
}

func (u *rentalUsecase) Create(ctx context.Context, rental *entity.Rental) error {
	if rental.CustomerName == "" || rental.CustomerEmail == "" {
		return fmt.Errorf("customer name and email are required")
	}
	if !rental.EndsAt.After(rental.StartsAt) {
		return fmt.Errorf("rental period end must be after start")
	}

	if err := u.repo.Create(ctx, rental); err != nil {
		return err
	}

	u.logger.Info("Rental created",
		zap.Int64("rental_id", rental.ID),
		zap.String("customer_email", rental.CustomerEmail),
	)
	return nil
}

func (u *rentalUsecase) Get(ctx context.Context, id int64) (*entity.Rental, error) {
	return u.repo.FindByID(ctx, id)
}

func (u *rentalUsecase) GenerateContract(ctx context.Context, id int64) (string, error) {
	rental, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	content, err := u.renderer.Render(rental)
	if err != nil {
		return "", err
	}

	return u.store.SaveContract(rental.ID, content)
}
