package rest

import (
	"net/http"
	"time"

	"clinicCommission/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RefundWebhookHandler receives refund callbacks from the payment gateway.
// Authentication is a shared verification token, not a user JWT.
type RefundWebhookHandler struct {
	saleService       SaleService
	validate          *validator.Validate
	verificationToken string
}

type RefundWebhookRequest struct {
	ExternalRef string    `json:"external_id" validate:"required"`
	Status      string    `json:"status"`
	RefundedAt  time.Time `json:"refunded_at"`
}

func NewRefundWebhookHandler(saleService SaleService, verificationToken string) *RefundWebhookHandler {
	return &RefundWebhookHandler{
		saleService:       saleService,
		validate:          validator.New(),
		verificationToken: verificationToken,
	}
}

func (h *RefundWebhookHandler) HandleRefund(c echo.Context) error {
	if c.Request().Header.Get("x-callback-token") != h.verificationToken {
		logger.Warn("Refund webhook with bad verification token")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "invalid verification token"})
	}

	var request RefundWebhookRequest
	if err := c.Bind(&request); err != nil {
		logger.Error("Failed to bind refund webhook", "error", err)
		return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest("Invalid request"))
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest("Invalid request"))
	}

	refundedAt := request.RefundedAt
	if refundedAt.IsZero() {
		refundedAt = time.Now()
	}

	comm, err := h.saleService.HandleRefund(c.Request().Context(), request.ExternalRef, refundedAt)
	if err != nil {
		logger.Error("Failed to process refund webhook", "error", err, "external_ref", request.ExternalRef)
		return c.JSON(http.StatusInternalServerError, fres.Response.StatusInternalServerError(http.StatusInternalServerError))
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(comm))
}
