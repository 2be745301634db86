package plan

import (
	"context"
	"errors"

	"clinicCommission/domain"
	"clinicCommission/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Write-time invariant violations. Catching these here keeps the resolver's
// inputs well-formed, so its defensive paths only fire on legacy data.
var (
	ErrBadPlanType        = errors.New("plan_type must be FLAT or PERCENT")
	ErrBadRateMode        = errors.New("rate_mode must be SINGLE or SEPARATE")
	ErrBadScope           = errors.New("applies_to must be ALL_PAYMENTS, INITIAL_ONLY or RECURRING_ONLY")
	ErrRateExclusivity    = errors.New("exactly one of percent_bps / flat_amount_cents must be set, matching the plan type")
	ErrSeparateRateEmpty  = errors.New("separate rate mode requires an initial or recurring rate matching the plan type")
	ErrRateModeConflict   = errors.New("single rate mode must not carry initial/recurring rates")
	ErrBpsOutOfRange      = errors.New("basis points must be between 0 and 10000")
	ErrNegativeAmount     = errors.New("flat amounts must not be negative")
	ErrBadHold            = errors.New("hold_days must not be negative")
	ErrBadRecurringWindow = errors.New("recurring_months requires recurring_enabled and must be at least 1")
	ErrBadMultiItemBonus  = errors.New("multi-item bonus needs a bonus value and a threshold of at least 2")
	ErrRuleRefExclusivity = errors.New("rule line must reference exactly one of product or bundle")
	ErrDuplicateRuleRef   = errors.New("duplicate rule line for the same product or bundle")
	ErrBadRuleBonus       = errors.New("rule line needs a bonus value matching its bonus type")
)

type PlanRepository interface {
	Create(ctx context.Context, plan *domain.CommissionPlan) error
	Update(ctx context.Context, plan *domain.CommissionPlan) error
	FindByID(ctx context.Context, clinicID, id uint) (domain.CommissionPlan, error)
	FindAll(ctx context.Context, clinicID uint) ([]domain.CommissionPlan, error)
	Deactivate(ctx context.Context, clinicID, id uint) error
	ReplaceRules(ctx context.Context, planID uint, rules []domain.ProductCommissionRule) error
}

// PlanCache invalidation keeps the sale-intake snapshot honest after writes.
type PlanCache interface {
	Invalidate(ctx context.Context, planID uint) error
}

type PlanService struct {
	planRepo PlanRepository
	cache    PlanCache
	validate *validator.Validate
}

func NewPlanService(planRepo PlanRepository, cache PlanCache, validate *validator.Validate) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		cache:    cache,
		validate: validate,
	}
}

func (s *PlanService) CreatePlan(ctx context.Context, plan *domain.CommissionPlan) (domain.CommissionPlan, error) {
	applyDefaults(plan)

	if err := s.validate.Var(plan.Name, "required"); err != nil {
		return domain.CommissionPlan{}, errors.New("plan name is required")
	}
	if err := validatePlan(plan); err != nil {
		return domain.CommissionPlan{}, err
	}
	if err := validateRules(plan.Rules); err != nil {
		return domain.CommissionPlan{}, err
	}

	plan.UUID = uuid.New()
	plan.IsActive = true

	if err := s.planRepo.Create(ctx, plan); err != nil {
		logger.Error("Failed to create commission plan", "error", err)
		return domain.CommissionPlan{}, err
	}

	logger.Info("Commission plan created", "plan_id", plan.ID, "clinic_id", plan.ClinicID)
	return *plan, nil
}

func (s *PlanService) UpdatePlan(ctx context.Context, clinicID, id uint, update *domain.CommissionPlan) (domain.CommissionPlan, error) {
	existing, err := s.planRepo.FindByID(ctx, clinicID, id)
	if err != nil {
		return domain.CommissionPlan{}, err
	}

	// whole-record replace; identity and audit fields survive
	update.ID = existing.ID
	update.UUID = existing.UUID
	update.ClinicID = existing.ClinicID
	update.CreatedAt = existing.CreatedAt
	update.IsActive = existing.IsActive
	update.Rules = nil
	applyDefaults(update)

	if err := validatePlan(update); err != nil {
		return domain.CommissionPlan{}, err
	}

	if err := s.planRepo.Update(ctx, update); err != nil {
		logger.Error("Failed to update commission plan", "error", err)
		return domain.CommissionPlan{}, err
	}

	s.invalidate(ctx, id)
	return s.planRepo.FindByID(ctx, clinicID, id)
}

func (s *PlanService) GetPlan(ctx context.Context, clinicID, id uint) (domain.CommissionPlan, error) {
	return s.planRepo.FindByID(ctx, clinicID, id)
}

func (s *PlanService) ListPlans(ctx context.Context, clinicID uint) ([]domain.CommissionPlan, error) {
	return s.planRepo.FindAll(ctx, clinicID)
}

// DeactivatePlan is the only removal: plans with assignment history are
// never hard-deleted.
func (s *PlanService) DeactivatePlan(ctx context.Context, clinicID, id uint) error {
	if err := s.planRepo.Deactivate(ctx, clinicID, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	logger.Info("Commission plan deactivated", "plan_id", id, "clinic_id", clinicID)
	return nil
}

func (s *PlanService) ReplaceRules(ctx context.Context, clinicID, planID uint, rules []domain.ProductCommissionRule) (domain.CommissionPlan, error) {
	if _, err := s.planRepo.FindByID(ctx, clinicID, planID); err != nil {
		return domain.CommissionPlan{}, err
	}

	if err := validateRules(rules); err != nil {
		return domain.CommissionPlan{}, err
	}

	for i := range rules {
		rules[i].PlanID = planID
	}

	if err := s.planRepo.ReplaceRules(ctx, planID, rules); err != nil {
		logger.Error("Failed to replace plan rules", "error", err, "plan_id", planID)
		return domain.CommissionPlan{}, err
	}

	s.invalidate(ctx, planID)
	return s.planRepo.FindByID(ctx, clinicID, planID)
}

func (s *PlanService) invalidate(ctx context.Context, planID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, planID); err != nil {
		logger.Warn("Failed to invalidate plan cache", "error", err, "plan_id", planID)
	}
}

func applyDefaults(p *domain.CommissionPlan) {
	if p.RateMode == "" {
		p.RateMode = domain.RateModeSingle
	}
	if p.AppliesTo == "" {
		p.AppliesTo = domain.AppliesToAllPayments
	}
	if p.MultiItemMinQuantity == 0 {
		p.MultiItemMinQuantity = 2
	}
}

func validatePlan(p *domain.CommissionPlan) error {
	switch p.PlanType {
	case domain.PlanTypeFlat, domain.PlanTypePercent:
	default:
		return ErrBadPlanType
	}

	switch p.RateMode {
	case domain.RateModeSingle, domain.RateModeSeparate:
	default:
		return ErrBadRateMode
	}

	switch p.AppliesTo {
	case domain.AppliesToAllPayments, domain.AppliesToInitialOnly, domain.AppliesToRecurringOnly:
	default:
		return ErrBadScope
	}

	if err := validateBaseRate(p); err != nil {
		return err
	}
	if err := validateSeparateRates(p); err != nil {
		return err
	}

	if p.HoldDays < 0 {
		return ErrBadHold
	}
	if p.RecurringMonths != nil && (!p.RecurringEnabled || *p.RecurringMonths < 1) {
		return ErrBadRecurringWindow
	}

	return validateMultiItemBonus(p)
}

func validateBaseRate(p *domain.CommissionPlan) error {
	switch p.PlanType {
	case domain.PlanTypePercent:
		if p.PercentBps == nil || p.FlatAmountCents != nil {
			return ErrRateExclusivity
		}
		return checkBps(*p.PercentBps)
	case domain.PlanTypeFlat:
		if p.FlatAmountCents == nil || p.PercentBps != nil {
			return ErrRateExclusivity
		}
		return checkCents(*p.FlatAmountCents)
	}
	return ErrBadPlanType
}

func validateSeparateRates(p *domain.CommissionPlan) error {
	hasAny := p.InitialPercentBps != nil || p.InitialFlatAmountCents != nil ||
		p.RecurringPercentBps != nil || p.RecurringFlatAmountCents != nil

	if p.RateMode == domain.RateModeSingle {
		if hasAny {
			return ErrRateModeConflict
		}
		return nil
	}

	for _, bps := range []*int64{p.InitialPercentBps, p.RecurringPercentBps} {
		if bps != nil {
			if err := checkBps(*bps); err != nil {
				return err
			}
		}
	}
	for _, cents := range []*int64{p.InitialFlatAmountCents, p.RecurringFlatAmountCents} {
		if cents != nil {
			if err := checkCents(*cents); err != nil {
				return err
			}
		}
	}

	switch p.PlanType {
	case domain.PlanTypePercent:
		if p.InitialPercentBps == nil && p.RecurringPercentBps == nil {
			return ErrSeparateRateEmpty
		}
	case domain.PlanTypeFlat:
		if p.InitialFlatAmountCents == nil && p.RecurringFlatAmountCents == nil {
			return ErrSeparateRateEmpty
		}
	}
	return nil
}

func validateMultiItemBonus(p *domain.CommissionPlan) error {
	if !p.MultiItemBonusEnabled {
		return nil
	}
	if p.MultiItemMinQuantity < 2 {
		return ErrBadMultiItemBonus
	}

	switch p.MultiItemBonusType {
	case domain.BonusTypePercent:
		if p.MultiItemBonusPercentBps == nil {
			return ErrBadMultiItemBonus
		}
		return checkBps(*p.MultiItemBonusPercentBps)
	case domain.BonusTypeFlat:
		if p.MultiItemBonusFlatCents == nil {
			return ErrBadMultiItemBonus
		}
		return checkCents(*p.MultiItemBonusFlatCents)
	}
	return ErrBadMultiItemBonus
}

func validateRules(rules []domain.ProductCommissionRule) error {
	type ref struct {
		bundle bool
		id     uint64
	}
	seen := make(map[ref]bool, len(rules))

	for _, r := range rules {
		var key ref
		switch {
		case r.ProductID != nil && r.ProductBundleID == nil:
			key = ref{id: *r.ProductID}
		case r.ProductBundleID != nil && r.ProductID == nil:
			key = ref{bundle: true, id: *r.ProductBundleID}
		default:
			return ErrRuleRefExclusivity
		}

		if seen[key] {
			return ErrDuplicateRuleRef
		}
		seen[key] = true

		switch r.BonusType {
		case domain.BonusTypePercent:
			if r.PercentBps == nil {
				return ErrBadRuleBonus
			}
			if err := checkBps(*r.PercentBps); err != nil {
				return err
			}
		case domain.BonusTypeFlat:
			if r.FlatAmountCents == nil {
				return ErrBadRuleBonus
			}
			if err := checkCents(*r.FlatAmountCents); err != nil {
				return err
			}
		default:
			return ErrBadRuleBonus
		}
	}
	return nil
}

func checkBps(bps int64) error {
	if bps < 0 || bps > 10000 {
		return ErrBpsOutOfRange
	}
	return nil
}

func checkCents(cents int64) error {
	if cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}
