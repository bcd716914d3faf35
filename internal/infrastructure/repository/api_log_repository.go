package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"locar-esign/internal/domain/entity"
	"locar-esign/internal/infrastructure/database"
)

// APILogRepository persists outbound provider call logs.
type APILogRepository interface {
	Save(ctx context.Context, log *entity.APILog) error
}

type apiLogRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewAPILogRepository(db *database.Database, logger *zap.Logger) APILogRepository {
	return &apiLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *apiLogRepository) Save(ctx context.Context, log *entity.APILog) error {
	query := `
		INSERT INTO provider_api_logs (endpoint, method, request_body, response_body, status_code, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		log.Endpoint,
		log.Method,
		log.RequestBody,
		log.ResponseBody,
		log.StatusCode,
		log.Duration,
		log.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save API log",
			zap.String("endpoint", log.Endpoint),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save API log: %w", err)
	}

	return nil
}
