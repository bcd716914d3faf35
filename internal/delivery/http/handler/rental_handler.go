package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"locar-esign/internal/domain/entity"
	"locar-esign/internal/domain/repository"
	"locar-esign/internal/usecase"
)

type RentalHandler struct {
	rentals   usecase.RentalUsecase
	signature usecase.SignatureUsecase
	logger    *zap.Logger
}

func NewRentalHandler(rentals usecase.RentalUsecase, signature usecase.SignatureUsecase, logger *zap.Logger) *RentalHandler {
	return &RentalHandler{
		rentals:   rentals,
		signature: signature,
		logger:    logger,
	}
}

type createRentalRequest struct {
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	VehicleDesc   string  `json:"vehicle_desc"`
	StartsAt      string  `json:"starts_at"`
	EndsAt        string  `json:"ends_at"`
	TotalAmount   float64 `json:"total_amount"`
}

func (h *RentalHandler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req createRentalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
		)
	}

	rental, err := req.toRental()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", err.Error()),
		)
	}

	if err := h.rentals.Create(ctx, rental); err != nil {
		h.logger.Error("Failed to create rental", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("CREATE_FAILED", err.Error()),
		)
	}

	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(rental, "Rental created"),
	)
}

func (h *RentalHandler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid rental id"),
		)
	}

	rental, err := h.rentals.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(
			entity.NewErrorResponse("NOT_FOUND", "Rental not found"),
		)
	}
	if err != nil {
		h.logger.Error("Failed to fetch rental", zap.Int64("rental_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(rental, "Rental found"))
}

// GenerateContract renders the rental contract PDF and stores it.
func (h *RentalHandler) GenerateContract(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid rental id"),
		)
	}

	path, err := h.rentals.GenerateContract(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(
			entity.NewErrorResponse("NOT_FOUND", "Rental not found"),
		)
	}
	if err != nil {
		h.logger.Error("Failed to generate contract", zap.Int64("rental_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("RENDER_FAILED", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(
		fiber.Map{"rental_id": id, "path": path},
		"Contract generated",
	))
}

// SubmitSignature runs the signature submission pipeline. The readiness
// wait makes this a long-running request; callers should use a generous
// client timeout.
func (h *RentalHandler) SubmitSignature(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid rental id"),
		)
	}

	rental, err := h.signature.SubmitForSignature(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(
			entity.NewErrorResponse("NOT_FOUND", "Rental not found"),
		)
	case errors.Is(err, usecase.ErrAlreadySigned),
		errors.Is(err, usecase.ErrSignatureRequested):
		return c.Status(fiber.StatusConflict).JSON(
			entity.NewErrorResponse("CONFLICT", err.Error()),
		)
	case errors.Is(err, usecase.ErrNotReady):
		return c.Status(fiber.StatusAccepted).JSON(
			entity.NewErrorResponse("NOT_READY", "Document not ready; will be retried by the scheduler"),
		)
	case err != nil:
		h.logger.Error("Failed to submit rental for signature",
			zap.Int64("rental_id", id),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(
			entity.NewErrorResponse("PROVIDER_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(rental, "Signature requested"))
}

func (r *createRentalRequest) toRental() (*entity.Rental, error) {
	startsAt, err := parseDate(r.StartsAt)
	if err != nil {
		return nil, errors.New("starts_at must be YYYY-MM-DD")
	}
	endsAt, err := parseDate(r.EndsAt)
	if err != nil {
		return nil, errors.New("ends_at must be YYYY-MM-DD")
	}

	return &entity.Rental{
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		VehicleDesc:   r.VehicleDesc,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		TotalAmount:   r.TotalAmount,
		Status:        entity.SignatureStatusPending,
	}, nil
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
