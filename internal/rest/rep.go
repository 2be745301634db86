package rest

import (
	"context"
	"net/http"
	"strconv"

	"clinicCommission/domain"
	"clinicCommission/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type RepService interface {
	Register(ctx context.Context, rep *domain.SalesRep, inviteCode string) (domain.SalesRep, error)
	Login(ctx context.Context, email, password string) (string, domain.SalesRep, error)
	AssignPlan(ctx context.Context, clinicID, repID, planID uint) error
	Suspend(ctx context.Context, clinicID, repID uint) error
	GetRep(ctx context.Context, clinicID, repID uint) (domain.SalesRep, error)
	NewInviteCode(clinicID uint) (string, error)
}

type RepHandler struct {
	repService RepService
	validate   *validator.Validate
}

func NewRepHandler(repService RepService) *RepHandler {
	return &RepHandler{
		repService: repService,
		validate:   validator.New(),
	}
}

type ResponseError struct {
	Message string `json:"message"`
}

type RepRegisterRequest struct {
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	InviteCode string `json:"invite_code" validate:"required"`
}

type RepLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AssignPlanRequest struct {
	PlanID uint `json:"plan_id" validate:"required"`
}

func (h *RepHandler) Register(c echo.Context) error {
	var request RepRegisterRequest

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	rep, err := h.repService.Register(c.Request().Context(), &domain.SalesRep{
		FullName: request.FullName,
		Email:    request.Email,
		Password: request.Password,
	}, request.InviteCode)
	if err != nil {
		logger.Error("Failed to register sales rep", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(rep))
}

func (h *RepHandler) Login(c echo.Context) error {
	var request RepLoginRequest

	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	token, rep, err := h.repService.Login(c.Request().Context(), request.Email, request.Password)
	if err != nil {
		logger.Error("Failed rep login", "error", err)
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]any{
		"token": token,
		"rep":   rep,
	}))
}

func (h *RepHandler) GetRep(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)
	repID, _ := strconv.Atoi(c.Param("id"))

	rep, err := h.repService.GetRep(c.Request().Context(), clinicID, uint(repID))
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rep))
}

func (h *RepHandler) AssignPlan(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)
	repID, _ := strconv.Atoi(c.Param("id"))

	var request AssignPlanRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.repService.AssignPlan(c.Request().Context(), clinicID, uint(repID), request.PlanID); err != nil {
		logger.Error("Failed to assign plan", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Plan assigned successfully"))
}

func (h *RepHandler) Suspend(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)
	repID, _ := strconv.Atoi(c.Param("id"))

	if err := h.repService.Suspend(c.Request().Context(), clinicID, uint(repID)); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Rep suspended"))
}

func (h *RepHandler) NewInvite(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)

	code, err := h.repService.NewInviteCode(clinicID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(map[string]string{"invite_code": code}))
}
