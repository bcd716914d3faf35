package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"locar-esign/internal/config"
)

// Store lays out contract PDFs on disk. Rendered, unsigned contracts live
// under the contracts folder and certificated ones under the signed folder;
// both are keyed by rental id.
type Store interface {
	// ContractPath returns the path of the rendered (unsigned) contract PDF.
	ContractPath(rentalID int64) string

	// SignedPath returns the path where the certificated PDF is persisted.
	SignedPath(rentalID int64) string

	// SaveContract writes a rendered contract, creating directories as
	// needed. Overwrite is safe; re-rendering replaces the previous PDF.
	SaveContract(rentalID int64, content []byte) (string, error)

	// ContractExists reports whether a rendered contract is on disk.
	ContractExists(rentalID int64) bool

	// SignedExists reports whether the certificated PDF is on disk.
	SignedExists(rentalID int64) bool
}

type store struct {
	cfg    *config.StorageConfig
	logger *zap.Logger
}

func NewStore(cfg *config.Config, logger *zap.Logger) (Store, error) {
	s := &store{
		cfg:    &cfg.Storage,
		logger: logger,
	}

	dirs := []string{
		filepath.Join(cfg.Storage.BasePath, cfg.Storage.ContractsFolder),
		filepath.Join(cfg.Storage.BasePath, cfg.Storage.SignedFolder),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o775); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	logger.Info("Document storage initialized",
		zap.String("base_path", cfg.Storage.BasePath),
		zap.String("contracts_folder", cfg.Storage.ContractsFolder),
		zap.String("signed_folder", cfg.Storage.SignedFolder),
	)

	return s, nil
}

func (s *store) ContractPath(rentalID int64) string {
	return filepath.Join(s.cfg.BasePath, s.cfg.ContractsFolder, strconv.FormatInt(rentalID, 10)+".pdf")
}

func (s *store) SignedPath(rentalID int64) string {
	return filepath.Join(s.cfg.BasePath, s.cfg.SignedFolder, strconv.FormatInt(rentalID, 10)+".pdf")
}

func (s *store) SaveContract(rentalID int64, content []byte) (string, error) {
	path := s.ContractPath(rentalID)
	if err := os.MkdirAll(filepath.Dir(path), 0o775); err != nil {
		return "", fmt.Errorf("failed to create contracts directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o664); err != nil {
		return "", fmt.Errorf("failed to write contract pdf: %w", err)
	}

	s.logger.Info("Contract PDF saved",
		zap.Int64("rental_id", rentalID),
		zap.String("path", path),
		zap.Int("size_bytes", len(content)),
	)
	return path, nil
}

func (s *store) ContractExists(rentalID int64) bool {
	_, err := os.Stat(s.ContractPath(rentalID))
	return err == nil
}

func (s *store) SignedExists(rentalID int64) bool {
	_, err := os.Stat(s.SignedPath(rentalID))
	return err == nil
}

var Module = fx.Module("storage",
	fx.Provide(NewStore),
)
