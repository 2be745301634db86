package commission

import (
	"time"

	"clinicCommission/domain"
)

// Breakdown sources, one entry per contribution for auditability.
const (
	SourceBase           = "BASE_RATE"
	SourceProductRule    = "PRODUCT_RULE"
	SourceBundleRule     = "BUNDLE_RULE"
	SourceMultiItemBonus = "MULTI_ITEM_BONUS"
)

type BreakdownLine struct {
	Source string `json:"source"`
	// Ref is the product or bundle id for rule-line entries, 0 otherwise.
	Ref         uint64 `json:"ref,omitempty"`
	AmountCents int64  `json:"amount_cents"`
}

// Result is what one resolution yields. GrossAmountCents always equals the
// sum of the breakdown; NetAmountCents drops to zero on clawback.
type Result struct {
	GrossAmountCents int64           `json:"gross_amount_cents"`
	NetAmountCents   int64           `json:"net_amount_cents"`
	Status           string          `json:"status"`
	PayableAt        time.Time       `json:"payable_at"`
	AmbiguousMatch   bool            `json:"ambiguous_match"`
	Breakdown        []BreakdownLine `json:"breakdown"`
}

// Resolve computes the commission a plan owes for a sale, evaluated at the
// instant `at`. It is a pure function: it only reads its arguments, so it is
// safe to call concurrently.
func Resolve(plan domain.CommissionPlan, rules []domain.ProductCommissionRule, sale domain.Sale, at time.Time) (Result, error) {
	return ResolveWithPolicy(plan, rules, sale, at, DefaultPolicy())
}

func ResolveWithPolicy(plan domain.CommissionPlan, rules []domain.ProductCommissionRule, sale domain.Sale, at time.Time, policy Policy) (Result, error) {
	if !plan.IsActive {
		return Result{}, ErrPlanInactive
	}
	if sale.AmountCents <= 0 || len(sale.LineItems) == 0 {
		return Result{}, ErrInvalidSale
	}

	// 1) scope: wrong payment type is an expected outcome, not an error
	if !inScope(plan, sale) {
		return Result{Status: domain.CommissionStatusNotApplicable}, nil
	}

	// 2) recurring bound
	if sale.PaymentSequenceNumber > 1 {
		if !plan.RecurringEnabled {
			return Result{Status: domain.CommissionStatusRecurringWindowClosed}, nil
		}
		if plan.RecurringMonths != nil && sale.PaymentSequenceNumber > *plan.RecurringMonths {
			return Result{Status: domain.CommissionStatusRecurringWindowClosed}, nil
		}
	}

	// 3) base rate
	base, err := baseAmount(plan, sale)
	if err != nil {
		return Result{}, err
	}
	breakdown := []BreakdownLine{{Source: SourceBase, AmountCents: base}}
	gross := base

	// 4) additive per-line overrides
	ruleLines, ambiguous := matchRules(rules, sale.LineItems)
	for _, line := range ruleLines {
		breakdown = append(breakdown, line)
		gross += line.AmountCents
	}

	// 5) multi-item bonus: one instance at the threshold, never per unit
	if bonus, ok := multiItemBonus(plan, sale); ok {
		breakdown = append(breakdown, BreakdownLine{Source: SourceMultiItemBonus, AmountCents: bonus})
		gross += bonus
	}

	// 6) hold timing
	payableAt := sale.OccurredAt.AddDate(0, 0, plan.HoldDays)
	status := domain.CommissionStatusPayable
	if at.Before(payableAt) {
		status = domain.CommissionStatusPending
	}

	res := Result{
		GrossAmountCents: gross,
		NetAmountCents:   gross,
		Status:           status,
		PayableAt:        payableAt,
		AmbiguousMatch:   ambiguous,
		Breakdown:        breakdown,
	}

	// 7) clawback: refund before payableAt, or within the post-payment window
	if plan.ClawbackEnabled && sale.RefundedAt != nil {
		refundedAt := *sale.RefundedAt
		clawed := refundedAt.Before(payableAt)
		if !clawed && policy.ClawbackWindowDays > 0 {
			windowEnd := payableAt.AddDate(0, 0, policy.ClawbackWindowDays)
			clawed = !refundedAt.After(windowEnd)
		}
		if clawed {
			res.Status = domain.CommissionStatusClawedBack
			res.NetAmountCents = 0
		}
	}

	return res, nil
}

func inScope(plan domain.CommissionPlan, sale domain.Sale) bool {
	switch plan.AppliesTo {
	case domain.AppliesToInitialOnly:
		return sale.PaymentSequenceNumber == 1
	case domain.AppliesToRecurringOnly:
		return sale.PaymentSequenceNumber > 1
	default:
		// ALL_PAYMENTS, and rows written before applies_to existed
		return true
	}
}

// separateRatesActive: RateMode is authoritative; rows written before the
// rate_mode column existed fall back to field-presence inference.
func separateRatesActive(plan domain.CommissionPlan) bool {
	switch plan.RateMode {
	case domain.RateModeSeparate:
		return true
	case domain.RateModeSingle:
		return false
	}
	return plan.InitialPercentBps != nil || plan.InitialFlatAmountCents != nil ||
		plan.RecurringPercentBps != nil || plan.RecurringFlatAmountCents != nil
}

// baseAmount picks the rate by precedence: when separate rates are active,
// the initial_*/recurring_* field matching the plan type overrides for the
// first or later payments; the plain base field stays the fallback whenever
// that field is nil. Fields of the other type never decide anything.
func baseAmount(plan domain.CommissionPlan, sale domain.Sale) (int64, error) {
	percent := plan.PercentBps
	flat := plan.FlatAmountCents

	if separateRatesActive(plan) {
		initial := sale.PaymentSequenceNumber == 1
		switch plan.PlanType {
		case domain.PlanTypePercent:
			if initial && plan.InitialPercentBps != nil {
				percent = plan.InitialPercentBps
			} else if !initial && plan.RecurringPercentBps != nil {
				percent = plan.RecurringPercentBps
			}
		case domain.PlanTypeFlat:
			if initial && plan.InitialFlatAmountCents != nil {
				flat = plan.InitialFlatAmountCents
			} else if !initial && plan.RecurringFlatAmountCents != nil {
				flat = plan.RecurringFlatAmountCents
			}
		}
	}

	switch plan.PlanType {
	case domain.PlanTypePercent:
		if percent == nil {
			return 0, ErrInvalidPlan
		}
		return ApplyBps(sale.AmountCents, *percent), nil
	case domain.PlanTypeFlat:
		if flat == nil {
			return 0, ErrInvalidPlan
		}
		return *flat, nil
	}
	return 0, ErrInvalidPlan
}

func multiItemBonus(plan domain.CommissionPlan, sale domain.Sale) (int64, bool) {
	if !plan.MultiItemBonusEnabled {
		return 0, false
	}

	minQty := plan.MultiItemMinQuantity
	if minQty < 2 {
		minQty = 2
	}

	total := 0
	for _, li := range sale.LineItems {
		total += li.Quantity
	}
	if total < minQty {
		return 0, false
	}

	switch plan.MultiItemBonusType {
	case domain.BonusTypePercent:
		if plan.MultiItemBonusPercentBps == nil {
			return 0, false
		}
		return ApplyBps(sale.AmountCents, *plan.MultiItemBonusPercentBps), true
	case domain.BonusTypeFlat:
		if plan.MultiItemBonusFlatCents == nil {
			return 0, false
		}
		return *plan.MultiItemBonusFlatCents, true
	}
	return 0, false
}
