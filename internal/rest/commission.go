package rest

import (
	"context"
	"net/http"
	"strconv"

	"clinicCommission/domain"
	"clinicCommission/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type CommissionService interface {
	GetForSale(ctx context.Context, saleID uint) (domain.Commission, error)
	ListByRep(ctx context.Context, repID uint) ([]domain.Commission, error)
	ReleaseDue(ctx context.Context, clinicID uint) (int64, error)
	RepSummary(ctx context.Context, repID uint) (domain.CommissionSummary, error)
}

type CommissionHandler struct {
	commissionService CommissionService
}

func NewCommissionHandler(commissionService CommissionService) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
	}
}

// MyCommissions lists the authenticated rep's commissions, breakdown included.
func (h *CommissionHandler) MyCommissions(c echo.Context) error {
	repID := c.Get("user_id").(uint)

	commissions, err := h.commissionService.ListByRep(c.Request().Context(), repID)
	if err != nil {
		logger.Error("Failed to list commissions", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(commissions))
}

func (h *CommissionHandler) MySummary(c echo.Context) error {
	repID := c.Get("user_id").(uint)

	summary, err := h.commissionService.RepSummary(c.Request().Context(), repID)
	if err != nil {
		logger.Error("Failed to build commission summary", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

func (h *CommissionHandler) GetForSale(c echo.Context) error {
	saleID, _ := strconv.Atoi(c.Param("id"))

	comm, err := h.commissionService.GetForSale(c.Request().Context(), uint(saleID))
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(comm))
}

// Release runs the hold sweep for the admin's clinic.
func (h *CommissionHandler) Release(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)

	released, err := h.commissionService.ReleaseDue(c.Request().Context(), clinicID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]int64{"released": released}))
}
