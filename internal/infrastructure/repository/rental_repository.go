package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"locar-esign/internal/domain/entity"
	"locar-esign/internal/domain/repository"
	"locar-esign/internal/infrastructure/database"
)

type rentalRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewRentalRepository(db *database.Database, logger *zap.Logger) repository.RentalRepository {
	return &rentalRepository{
		db:     db,
		logger: logger,
	}
}

const rentalColumns = `id, customer_name, customer_email, vehicle_desc, starts_at, ends_at,
	total_amount, signature_status, COALESCE(document_id, ''), COALESCE(package_id, ''),
	signed_at, created_at, updated_at`

func scanRental(row interface{ Scan(...interface{}) error }) (*entity.Rental, error) {
	var r entity.Rental
	var signedAt sql.NullTime
	err := row.Scan(
		&r.ID,
		&r.CustomerName,
		&r.CustomerEmail,
		&r.VehicleDesc,
		&r.StartsAt,
		&r.EndsAt,
		&r.TotalAmount,
		&r.Status,
		&r.DocumentID,
		&r.PackageID,
		&signedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if signedAt.Valid {
		r.SignedAt = &signedAt.Time
	}
	return &r, nil
}

func (r *rentalRepository) Create(ctx context.Context, rental *entity.Rental) error {
	query := `
		INSERT INTO rentals (customer_name, customer_email, vehicle_desc, starts_at, ends_at, total_amount, signature_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	if rental.Status == "" {
		rental.Status = entity.SignatureStatusPending
	}

	err := r.db.DB.QueryRowContext(ctx, query,
		rental.CustomerName,
		rental.CustomerEmail,
		rental.VehicleDesc,
		rental.StartsAt,
		rental.EndsAt,
		rental.TotalAmount,
		rental.Status,
	).Scan(&rental.ID, &rental.CreatedAt, &rental.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}

	return nil
}

func (r *rentalRepository) FindByID(ctx context.Context, id int64) (*entity.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`

	rental, err := scanRental(r.db.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rental %d: %w", id, err)
	}
	return rental, nil
}

func (r *rentalRepository) FindPendingSignatures(ctx context.Context) ([]*entity.Rental, error) {
	query := `SELECT ` + rentalColumns + `
		FROM rentals
		WHERE signature_status <> $1 AND document_id IS NOT NULL
		ORDER BY id`

	rows, err := r.db.DB.QueryContext(ctx, query, entity.SignatureStatusSigned)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending signatures: %w", err)
	}
	defer rows.Close()

	var rentals []*entity.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		rentals = append(rentals, rental)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rentals: %w", err)
	}

	return rentals, nil
}

func (r *rentalRepository) FindByPackageID(ctx context.Context, packageID string) (*entity.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE package_id = $1`

	rental, err := scanRental(r.db.DB.QueryRowContext(ctx, query, packageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rental by package %s: %w", packageID, err)
	}
	return rental, nil
}

func (r *rentalRepository) SetDocumentID(ctx context.Context, id int64, documentID string) error {
	// Guarded by document_id IS NULL: the provider document id is written
	// exactly once.
	query := `
		UPDATE rentals
		SET document_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND document_id IS NULL
	`

	result, err := r.db.DB.ExecContext(ctx, query, id, documentID)
	if err != nil {
		return fmt.Errorf("failed to set document id for rental %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrDocumentIDSet
	}

	return nil
}

func (r *rentalRepository) SetPackageID(ctx context.Context, id int64, packageID string) error {
	query := `
		UPDATE rentals
		SET package_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	if _, err := r.db.DB.ExecContext(ctx, query, id, packageID); err != nil {
		return fmt.Errorf("failed to set package id for rental %d: %w", id, err)
	}
	return nil
}

func (r *rentalRepository) MarkSigned(ctx context.Context, id int64) (bool, error) {
	// Single conditional UPDATE keyed by id and current status. If the poll
	// job and a webhook race, exactly one of them flips the row.
	query := `
		UPDATE rentals
		SET signature_status = $2, signed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND signature_status <> $2
	`

	result, err := r.db.DB.ExecContext(ctx, query, id, entity.SignatureStatusSigned)
	if err != nil {
		return false, fmt.Errorf("failed to mark rental %d signed: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
