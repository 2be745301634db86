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

type PlanService interface {
	CreatePlan(ctx context.Context, plan *domain.CommissionPlan) (domain.CommissionPlan, error)
	UpdatePlan(ctx context.Context, clinicID, id uint, update *domain.CommissionPlan) (domain.CommissionPlan, error)
	GetPlan(ctx context.Context, clinicID, id uint) (domain.CommissionPlan, error)
	ListPlans(ctx context.Context, clinicID uint) ([]domain.CommissionPlan, error)
	DeactivatePlan(ctx context.Context, clinicID, id uint) error
	ReplaceRules(ctx context.Context, clinicID, planID uint, rules []domain.ProductCommissionRule) (domain.CommissionPlan, error)
}

type PlanHandler struct {
	planService PlanService
	validate    *validator.Validate
}

func NewPlanHandler(planService PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		validate:    validator.New(),
	}
}

type (
	PlanInput struct {
		Name     string `json:"name" validate:"required"`
		PlanType string `json:"plan_type" validate:"required,oneof=FLAT PERCENT"`
		RateMode string `json:"rate_mode" validate:"omitempty,oneof=SINGLE SEPARATE"`

		FlatAmountCents *int64 `json:"flat_amount_cents"`
		PercentBps      *int64 `json:"percent_bps"`

		InitialFlatAmountCents   *int64 `json:"initial_flat_amount_cents"`
		InitialPercentBps        *int64 `json:"initial_percent_bps"`
		RecurringFlatAmountCents *int64 `json:"recurring_flat_amount_cents"`
		RecurringPercentBps      *int64 `json:"recurring_percent_bps"`

		AppliesTo string `json:"applies_to" validate:"omitempty,oneof=ALL_PAYMENTS INITIAL_ONLY RECURRING_ONLY"`

		HoldDays        int  `json:"hold_days" validate:"gte=0"`
		ClawbackEnabled bool `json:"clawback_enabled"`

		RecurringEnabled bool `json:"recurring_enabled"`
		RecurringMonths  *int `json:"recurring_months"`

		MultiItemBonusEnabled    bool   `json:"multi_item_bonus_enabled"`
		MultiItemBonusType       string `json:"multi_item_bonus_type" validate:"omitempty,oneof=PERCENT FLAT"`
		MultiItemBonusPercentBps *int64 `json:"multi_item_bonus_percent_bps"`
		MultiItemBonusFlatCents  *int64 `json:"multi_item_bonus_flat_cents"`
		MultiItemMinQuantity     int    `json:"multi_item_min_quantity" validate:"gte=0"`

		Rules []RuleInput `json:"rules" validate:"omitempty,dive"`
	}

	RuleInput struct {
		ProductID       *uint64 `json:"product_id"`
		ProductBundleID *uint64 `json:"product_bundle_id"`
		BonusType       string  `json:"bonus_type" validate:"required,oneof=PERCENT FLAT"`
		PercentBps      *int64  `json:"percent_bps"`
		FlatAmountCents *int64  `json:"flat_amount_cents"`
	}

	RulesInput struct {
		Rules []RuleInput `json:"rules" validate:"dive"`
	}
)

func (in PlanInput) toDomain(clinicID uint) *domain.CommissionPlan {
	plan := &domain.CommissionPlan{
		ClinicID:                 clinicID,
		Name:                     in.Name,
		PlanType:                 in.PlanType,
		RateMode:                 in.RateMode,
		FlatAmountCents:          in.FlatAmountCents,
		PercentBps:               in.PercentBps,
		InitialFlatAmountCents:   in.InitialFlatAmountCents,
		InitialPercentBps:        in.InitialPercentBps,
		RecurringFlatAmountCents: in.RecurringFlatAmountCents,
		RecurringPercentBps:      in.RecurringPercentBps,
		AppliesTo:                in.AppliesTo,
		HoldDays:                 in.HoldDays,
		ClawbackEnabled:          in.ClawbackEnabled,
		RecurringEnabled:         in.RecurringEnabled,
		RecurringMonths:          in.RecurringMonths,
		MultiItemBonusEnabled:    in.MultiItemBonusEnabled,
		MultiItemBonusType:       in.MultiItemBonusType,
		MultiItemBonusPercentBps: in.MultiItemBonusPercentBps,
		MultiItemBonusFlatCents:  in.MultiItemBonusFlatCents,
		MultiItemMinQuantity:     in.MultiItemMinQuantity,
	}

	for _, r := range in.Rules {
		plan.Rules = append(plan.Rules, r.toDomain())
	}
	return plan
}

func (in RuleInput) toDomain() domain.ProductCommissionRule {
	return domain.ProductCommissionRule{
		ProductID:       in.ProductID,
		ProductBundleID: in.ProductBundleID,
		BonusType:       in.BonusType,
		PercentBps:      in.PercentBps,
		FlatAmountCents: in.FlatAmountCents,
	}
}

func (h *PlanHandler) CreatePlan(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)

	var request PlanInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	plan, err := h.planService.CreatePlan(c.Request().Context(), request.toDomain(clinicID))
	if err != nil {
		logger.Error("Failed to create plan", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(plan))
}

func (h *PlanHandler) UpdatePlan(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)
	id, _ := strconv.Atoi(c.Param("id"))

	var request PlanInput
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	plan, err := h.planService.UpdatePlan(c.Request().Context(), clinicID, uint(id), request.toDomain(clinicID))
	if err != nil {
		logger.Error("Failed to update plan", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(plan))
}

func (h *PlanHandler) GetPlan(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)
	id, _ := strconv.Atoi(c.Param("id"))

	plan, err := h.planService.GetPlan(c.Request().Context(), clinicID, uint(id))
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(plan))
}

func (h *PlanHandler) ListPlans(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)

	plans, err := h.planService.ListPlans(c.Request().Context(), clinicID)
	if err != nil {
		logger.Error("Failed to list plans", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(plans))
}

func (h *PlanHandler) DeactivatePlan(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)
	id, _ := strconv.Atoi(c.Param("id"))

	if err := h.planService.DeactivatePlan(c.Request().Context(), clinicID, uint(id)); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Plan deactivated"))
}

func (h *PlanHandler) ReplaceRules(c echo.Context) error {
	clinicID := c.Get("clinic_id").(uint)
	id, _ := strconv.Atoi(c.Param("id"))

	var request RulesInput
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	rules := make([]domain.ProductCommissionRule, 0, len(request.Rules))
	for _, r := range request.Rules {
		rules = append(rules, r.toDomain())
	}

	plan, err := h.planService.ReplaceRules(c.Request().Context(), clinicID, uint(id), rules)
	if err != nil {
		logger.Error("Failed to replace plan rules", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(plan))
}
