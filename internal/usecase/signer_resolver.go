package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"locar-esign/internal/infrastructure/assinafy"
	"locar-esign/internal/infrastructure/redis"
)

const (
	signerCacheKeyPrefix = "assinafy:signer:"
	signerCacheTTL       = 24 * time.Hour
)

// SignerResolver finds or creates the provider signer for an email address.
// The provider exposes no idempotency key here, so concurrent resolves for
// the same new email can create duplicate signers; the cache narrows that
// window but the provider stays the source of truth.
type SignerResolver struct {
	client assinafy.Client
	cache  *redis.RedisClient
	logger *zap.Logger
}

func NewSignerResolver(client assinafy.Client, cache *redis.RedisClient, logger *zap.Logger) *SignerResolver {
	return &SignerResolver{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// Resolve returns the provider signer id for the email, creating the signer
// when no case-insensitive match exists. Equal emails differing only in case
// resolve to the same signer.
func (r *SignerResolver) Resolve(ctx context.Context, fullName, email string) (string, error) {
	cacheKey := signerCacheKeyPrefix + strings.ToLower(email)

	if r.cache != nil {
		if id, err := r.cache.Get(ctx, cacheKey); err == nil && id != "" {
			r.logger.Debug("Signer resolved from cache",
				zap.String("email", email),
				zap.String("signer_id", id),
			)
			return id, nil
		}
	}

	signer, err := r.client.FindSignerByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if signer == nil {
		signer, err = r.client.CreateSigner(ctx, fullName, email)
		if err != nil {
			return "", err
		}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, signer.ID, signerCacheTTL); err != nil {
			r.logger.Warn("Failed to cache signer id",
				zap.String("email", email),
				zap.Error(err),
			)
		}
	}

	return signer.ID, nil
}
