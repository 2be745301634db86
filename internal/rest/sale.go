package rest

import (
	"context"
	"net/http"
	"time"

	"clinicCommission/domain"
	"clinicCommission/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type SaleService interface {
	RecordSale(ctx context.Context, sale domain.Sale) (domain.Sale, domain.Commission, error)
	HandleRefund(ctx context.Context, externalRef string, refundedAt time.Time) (domain.Commission, error)
}

type SaleHandler struct {
	saleService SaleService
	validate    *validator.Validate
}

func NewSaleHandler(saleService SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		validate:    validator.New(),
	}
}

type (
	SaleInput struct {
		RepID                 uint            `json:"rep_id" validate:"required"`
		ExternalRef           string          `json:"external_ref"`
		AmountCents           int64           `json:"amount_cents" validate:"required,gt=0"`
		PaymentSequenceNumber int             `json:"payment_sequence_number" validate:"gte=0"`
		OccurredAt            time.Time       `json:"occurred_at"`
		LineItems             []SaleLineInput `json:"line_items" validate:"required,min=1,dive"`
	}

	SaleLineInput struct {
		ProductID       *uint64 `json:"product_id"`
		ProductBundleID *uint64 `json:"product_bundle_id"`
		Quantity        int     `json:"quantity" validate:"gte=1"`
		AmountCents     int64   `json:"amount_cents" validate:"gte=0"`
	}
)

func (in SaleInput) toDomain() domain.Sale {
	sale := domain.Sale{
		RepID:                 in.RepID,
		ExternalRef:           in.ExternalRef,
		AmountCents:           in.AmountCents,
		PaymentSequenceNumber: in.PaymentSequenceNumber,
		OccurredAt:            in.OccurredAt,
	}

	for _, li := range in.LineItems {
		sale.LineItems = append(sale.LineItems, domain.SaleLineItem{
			ProductID:       li.ProductID,
			ProductBundleID: li.ProductBundleID,
			Quantity:        li.Quantity,
			AmountCents:     li.AmountCents,
		})
	}
	return sale
}

func (h *SaleHandler) CreateSale(c echo.Context) error {
	var request SaleInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	sale, comm, err := h.saleService.RecordSale(c.Request().Context(), request.toDomain())
	if err != nil {
		logger.Error("Failed to record sale", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(map[string]any{
		"sale":       sale,
		"commission": comm,
	}))
}
