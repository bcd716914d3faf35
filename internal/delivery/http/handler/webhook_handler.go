package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"locar-esign/internal/config"
	"locar-esign/internal/domain/entity"
	"locar-esign/internal/usecase"
)

// signatureHeader carries the hex HMAC-SHA256 of the raw body when webhook
// verification is enabled.
const signatureHeader = "X-Assinafy-Signature"

type WebhookHandler struct {
	usecase usecase.WebhookUsecase
	secret  string
	logger  *zap.Logger
}

func NewWebhookHandler(cfg *config.Config, usecase usecase.WebhookUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		usecase: usecase,
		secret:  cfg.Webhook.Secret,
		logger:  logger,
	}
}

// AssinafyCallback receives signature-event notifications from the provider.
// It answers 200 {"status":"success"} for every parseable payload, acted on
// or not, so the provider never retries deliveries this system ignores.
func (h *WebhookHandler) AssinafyCallback(c *fiber.Ctx) error {
	ctx := c.UserContext()

	h.logger.Info("Received Assinafy webhook",
		zap.String("body", string(c.Body())),
	)

	if h.secret != "" && !h.verifySignature(c.Body(), c.Get(signatureHeader)) {
		h.logger.Warn("Webhook signature verification failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "invalid signature",
		})
	}

	var payload entity.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Error("Failed to parse webhook payload", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "invalid payload",
		})
	}

	if err := h.usecase.ProcessWebhook(ctx, &payload); err != nil {
		h.logger.Error("Failed to process webhook",
			zap.String("event", payload.Event),
			zap.String("package_id", payload.Package.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error",
		})
	}

	return c.JSON(fiber.Map{"status": "success"})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
