package repository

import (
	"context"
	"errors"

	"locar-esign/internal/domain/entity"
)

// ErrNotFound is returned when a rental lookup matches no row.
var ErrNotFound = errors.New("rental not found")

// ErrDocumentIDSet is returned by SetDocumentID when the rental already has
// a provider document id. The id is written exactly once.
var ErrDocumentIDSet = errors.New("document id already set")

type RentalRepository interface {
	Create(ctx context.Context, rental *entity.Rental) error
	FindByID(ctx context.Context, id int64) (*entity.Rental, error)

	// FindPendingSignatures returns rentals that are not signed yet and
	// already have a provider document id, i.e. the reconciliation work set.
	FindPendingSignatures(ctx context.Context) ([]*entity.Rental, error)

	FindByPackageID(ctx context.Context, packageID string) (*entity.Rental, error)

	// SetDocumentID records the provider document id for a rental. It only
	// succeeds while the column is still NULL.
	SetDocumentID(ctx context.Context, id int64, documentID string) error

	SetPackageID(ctx context.Context, id int64, packageID string) error

	// MarkSigned transitions a rental from pending to signed. It reports
	// whether this call performed the transition; a false return with nil
	// error means the rental was already signed (or gone), which makes the
	// operation safe to call from the poll job and the webhook path
	// concurrently.
	MarkSigned(ctx context.Context, id int64) (bool, error)
}
