package commission

import (
	"reflect"
	"testing"
	"time"

	"clinicCommission/domain"
)

func i64(v int64) *int64 { return &v }
func iptr(v int) *int    { return &v }

var testOccurredAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func percentPlan(bps int64) domain.CommissionPlan {
	return domain.CommissionPlan{
		PlanType:   domain.PlanTypePercent,
		PercentBps: i64(bps),
		AppliesTo:  domain.AppliesToAllPayments,
		IsActive:   true,
	}
}

func flatPlan(cents int64) domain.CommissionPlan {
	return domain.CommissionPlan{
		PlanType:        domain.PlanTypeFlat,
		FlatAmountCents: i64(cents),
		AppliesTo:       domain.AppliesToAllPayments,
		IsActive:        true,
	}
}

func oneLineSale(amountCents int64, seq int) domain.Sale {
	return domain.Sale{
		AmountCents:           amountCents,
		PaymentSequenceNumber: seq,
		OccurredAt:            testOccurredAt,
		LineItems: []domain.SaleLineItem{
			{Quantity: 1, AmountCents: amountCents},
		},
	}
}

func TestResolvePercentBase(t *testing.T) {
	plan := percentPlan(1000)
	sale := oneLineSale(20000, 1)

	res, err := Resolve(plan, nil, sale, testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if res.GrossAmountCents != 2000 {
		t.Errorf("gross = %d, want 2000", res.GrossAmountCents)
	}
	if res.NetAmountCents != 2000 {
		t.Errorf("net = %d, want 2000", res.NetAmountCents)
	}
	if res.Status != domain.CommissionStatusPayable {
		t.Errorf("status = %s, want PAYABLE", res.Status)
	}
	if len(res.Breakdown) != 1 || res.Breakdown[0].Source != SourceBase {
		t.Errorf("breakdown = %+v, want single BASE_RATE line", res.Breakdown)
	}
}

func TestResolveRoundsHalfUp(t *testing.T) {
	// 10001 cents at 0.15% is 15.0015 -> 15; 333 at 5% is 16.65 -> 17
	cases := []struct {
		amount int64
		bps    int64
		want   int64
	}{
		{10000, 1000, 1000},
		{333, 500, 17},
		{10001, 15, 15},
		{1, 50, 0},
		{999, 1, 0},
	}

	for _, tc := range cases {
		plan := percentPlan(tc.bps)
		res, err := Resolve(plan, nil, oneLineSale(tc.amount, 1), testOccurredAt)
		if err != nil {
			t.Fatalf("Resolve(%d, %d): %v", tc.amount, tc.bps, err)
		}
		if res.GrossAmountCents != tc.want {
			t.Errorf("Resolve(%d, %d) gross = %d, want %d", tc.amount, tc.bps, res.GrossAmountCents, tc.want)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	plan := percentPlan(750)
	plan.MultiItemBonusEnabled = true
	plan.MultiItemBonusType = domain.BonusTypeFlat
	plan.MultiItemBonusFlatCents = i64(250)

	pid := uint64(9)
	rules := []domain.ProductCommissionRule{
		{ProductID: &pid, BonusType: domain.BonusTypePercent, PercentBps: i64(200)},
	}
	sale := domain.Sale{
		AmountCents:           13337,
		PaymentSequenceNumber: 1,
		OccurredAt:            testOccurredAt,
		LineItems: []domain.SaleLineItem{
			{ProductID: &pid, Quantity: 2, AmountCents: 13337},
		},
	}

	first, err := Resolve(plan, rules, sale, testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := Resolve(plan, rules, sale, testOccurredAt)
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution #%d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestResolveGrossEqualsBreakdownSum(t *testing.T) {
	plan := percentPlan(1000)
	plan.MultiItemBonusEnabled = true
	plan.MultiItemBonusType = domain.BonusTypePercent
	plan.MultiItemBonusPercentBps = i64(100)

	pid := uint64(7)
	bid := uint64(3)
	rules := []domain.ProductCommissionRule{
		{ProductID: &pid, BonusType: domain.BonusTypeFlat, FlatAmountCents: i64(500)},
		{ProductBundleID: &bid, BonusType: domain.BonusTypePercent, PercentBps: i64(300)},
	}
	sale := domain.Sale{
		AmountCents:           30000,
		PaymentSequenceNumber: 1,
		OccurredAt:            testOccurredAt,
		LineItems: []domain.SaleLineItem{
			{ProductID: &pid, Quantity: 1, AmountCents: 10000},
			{ProductBundleID: &bid, Quantity: 2, AmountCents: 20000},
		},
	}

	res, err := Resolve(plan, rules, sale, testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var sum int64
	for _, line := range res.Breakdown {
		sum += line.AmountCents
	}
	if res.GrossAmountCents != sum {
		t.Errorf("gross = %d, breakdown sum = %d", res.GrossAmountCents, sum)
	}
	// 10% of 30000 + flat 500 + 3% of 20000 + 1% of 30000
	if res.GrossAmountCents != 3000+500+600+300 {
		t.Errorf("gross = %d, want 4400", res.GrossAmountCents)
	}
}

func TestResolveFlatBase(t *testing.T) {
	plan := flatPlan(1500)

	res, err := Resolve(plan, nil, oneLineSale(99999, 1), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.GrossAmountCents != 1500 {
		t.Errorf("gross = %d, want 1500 regardless of sale amount", res.GrossAmountCents)
	}
}

func TestResolveSeparateRates(t *testing.T) {
	plan := domain.CommissionPlan{
		PlanType:            domain.PlanTypePercent,
		RateMode:            domain.RateModeSeparate,
		InitialPercentBps:   i64(1500),
		RecurringPercentBps: i64(500),
		AppliesTo:           domain.AppliesToAllPayments,
		RecurringEnabled:    true,
		IsActive:            true,
	}

	initial, err := Resolve(plan, nil, oneLineSale(10000, 1), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve initial: %v", err)
	}
	if initial.GrossAmountCents != 1500 {
		t.Errorf("initial gross = %d, want 1500", initial.GrossAmountCents)
	}

	recurring, err := Resolve(plan, nil, oneLineSale(10000, 2), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve recurring: %v", err)
	}
	if recurring.GrossAmountCents != 500 {
		t.Errorf("recurring gross = %d, want 500", recurring.GrossAmountCents)
	}
}

func TestResolveSeparateRatesInferredFromFields(t *testing.T) {
	// rows written before rate_mode existed carry split fields only
	plan := domain.CommissionPlan{
		PlanType:            domain.PlanTypePercent,
		PercentBps:          i64(1000),
		RecurringPercentBps: i64(250),
		AppliesTo:           domain.AppliesToAllPayments,
		RecurringEnabled:    true,
		IsActive:            true,
	}

	res, err := Resolve(plan, nil, oneLineSale(10000, 3), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.GrossAmountCents != 250 {
		t.Errorf("gross = %d, want recurring rate 250", res.GrossAmountCents)
	}
}

func TestResolveSingleRateModeIgnoresSplitFields(t *testing.T) {
	plan := domain.CommissionPlan{
		PlanType:            domain.PlanTypePercent,
		RateMode:            domain.RateModeSingle,
		PercentBps:          i64(1000),
		RecurringPercentBps: i64(9999),
		AppliesTo:           domain.AppliesToAllPayments,
		RecurringEnabled:    true,
		IsActive:            true,
	}

	res, err := Resolve(plan, nil, oneLineSale(10000, 2), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.GrossAmountCents != 1000 {
		t.Errorf("gross = %d, want base rate 1000", res.GrossAmountCents)
	}
}

func TestResolveSeparateRatesOtherTypeFieldFallsBack(t *testing.T) {
	// A percent plan may carry a flat initial field (and vice versa); only
	// the field matching the plan type overrides, the base rate covers the
	// rest.
	plan := domain.CommissionPlan{
		PlanType:               domain.PlanTypePercent,
		RateMode:               domain.RateModeSeparate,
		PercentBps:             i64(1000),
		InitialFlatAmountCents: i64(2000),
		RecurringPercentBps:    i64(500),
		AppliesTo:              domain.AppliesToAllPayments,
		RecurringEnabled:       true,
		IsActive:               true,
	}

	initial, err := Resolve(plan, nil, oneLineSale(10000, 1), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve initial: %v", err)
	}
	if initial.GrossAmountCents != 1000 {
		t.Errorf("initial gross = %d, want base rate 1000", initial.GrossAmountCents)
	}

	recurring, err := Resolve(plan, nil, oneLineSale(10000, 2), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve recurring: %v", err)
	}
	if recurring.GrossAmountCents != 500 {
		t.Errorf("recurring gross = %d, want recurring rate 500", recurring.GrossAmountCents)
	}

	flat := domain.CommissionPlan{
		PlanType:          domain.PlanTypeFlat,
		RateMode:          domain.RateModeSeparate,
		FlatAmountCents:   i64(700),
		InitialPercentBps: i64(1500),
		AppliesTo:         domain.AppliesToAllPayments,
		IsActive:          true,
	}

	res, err := Resolve(flat, nil, oneLineSale(10000, 1), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve flat: %v", err)
	}
	if res.GrossAmountCents != 700 {
		t.Errorf("flat gross = %d, want base amount 700", res.GrossAmountCents)
	}
}

func TestResolveScopeNotApplicable(t *testing.T) {
	plan := percentPlan(1000)
	plan.AppliesTo = domain.AppliesToInitialOnly

	res, err := Resolve(plan, nil, oneLineSale(10000, 2), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Status != domain.CommissionStatusNotApplicable {
		t.Errorf("status = %s, want NOT_APPLICABLE", res.Status)
	}
	if res.GrossAmountCents != 0 || res.NetAmountCents != 0 {
		t.Errorf("amounts = %d/%d, want zero", res.GrossAmountCents, res.NetAmountCents)
	}

	plan.AppliesTo = domain.AppliesToRecurringOnly
	res, err = Resolve(plan, nil, oneLineSale(10000, 1), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Status != domain.CommissionStatusNotApplicable {
		t.Errorf("status = %s, want NOT_APPLICABLE for initial payment", res.Status)
	}
}

func TestResolveRecurringWindow(t *testing.T) {
	plan := percentPlan(1000)
	plan.RecurringEnabled = false

	res, err := Resolve(plan, nil, oneLineSale(10000, 2), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Status != domain.CommissionStatusRecurringWindowClosed {
		t.Errorf("status = %s, want RECURRING_WINDOW_CLOSED", res.Status)
	}

	plan.RecurringEnabled = true
	plan.RecurringMonths = iptr(6)

	inside, err := Resolve(plan, nil, oneLineSale(10000, 6), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve seq 6: %v", err)
	}
	if inside.Status == domain.CommissionStatusRecurringWindowClosed {
		t.Errorf("seq 6 inside a 6-month window must earn")
	}

	outside, err := Resolve(plan, nil, oneLineSale(10000, 7), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve seq 7: %v", err)
	}
	if outside.Status != domain.CommissionStatusRecurringWindowClosed {
		t.Errorf("seq 7 past a 6-month window must close, got %s", outside.Status)
	}

	// nil months means lifetime
	plan.RecurringMonths = nil
	lifetime, err := Resolve(plan, nil, oneLineSale(10000, 240), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve lifetime: %v", err)
	}
	if lifetime.Status == domain.CommissionStatusRecurringWindowClosed {
		t.Errorf("nil recurring months must never close the window")
	}
}

func TestResolveProductRuleAddsToBase(t *testing.T) {
	plan := percentPlan(1000)
	pid := uint64(7)
	rules := []domain.ProductCommissionRule{
		{ProductID: &pid, BonusType: domain.BonusTypeFlat, FlatAmountCents: i64(500)},
	}
	sale := domain.Sale{
		AmountCents:           10000,
		PaymentSequenceNumber: 1,
		OccurredAt:            testOccurredAt,
		LineItems: []domain.SaleLineItem{
			{ProductID: &pid, Quantity: 1, AmountCents: 10000},
		},
	}

	res, err := Resolve(plan, rules, sale, testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.GrossAmountCents != 1500 {
		t.Errorf("gross = %d, want base 1000 + rule 500", res.GrossAmountCents)
	}
	if len(res.Breakdown) != 2 || res.Breakdown[1].Source != SourceProductRule || res.Breakdown[1].Ref != 7 {
		t.Errorf("breakdown = %+v, want PRODUCT_RULE ref 7", res.Breakdown)
	}
}

func TestResolveBundleRule(t *testing.T) {
	plan := flatPlan(1000)
	bid := uint64(42)
	rules := []domain.ProductCommissionRule{
		{ProductBundleID: &bid, BonusType: domain.BonusTypePercent, PercentBps: i64(500)},
	}
	sale := domain.Sale{
		AmountCents:           20000,
		PaymentSequenceNumber: 1,
		OccurredAt:            testOccurredAt,
		LineItems: []domain.SaleLineItem{
			{ProductBundleID: &bid, Quantity: 1, AmountCents: 20000},
		},
	}

	res, err := Resolve(plan, rules, sale, testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// flat 1000 + 5% of the line's 20000
	if res.GrossAmountCents != 2000 {
		t.Errorf("gross = %d, want 2000", res.GrossAmountCents)
	}
	if res.Breakdown[1].Source != SourceBundleRule {
		t.Errorf("source = %s, want BUNDLE_RULE", res.Breakdown[1].Source)
	}
}

func TestResolveUnmatchedRuleIgnored(t *testing.T) {
	plan := percentPlan(1000)
	other := uint64(99)
	rules := []domain.ProductCommissionRule{
		{ProductID: &other, BonusType: domain.BonusTypeFlat, FlatAmountCents: i64(500)},
	}

	res, err := Resolve(plan, rules, oneLineSale(10000, 1), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.GrossAmountCents != 1000 {
		t.Errorf("gross = %d, rule for another product must not apply", res.GrossAmountCents)
	}
}

func TestResolveDuplicateRulesSummedAndFlagged(t *testing.T) {
	plan := percentPlan(1000)
	pid := uint64(7)
	rules := []domain.ProductCommissionRule{
		{ProductID: &pid, BonusType: domain.BonusTypeFlat, FlatAmountCents: i64(300)},
		{ProductID: &pid, BonusType: domain.BonusTypeFlat, FlatAmountCents: i64(200)},
	}
	sale := domain.Sale{
		AmountCents:           10000,
		PaymentSequenceNumber: 1,
		OccurredAt:            testOccurredAt,
		LineItems: []domain.SaleLineItem{
			{ProductID: &pid, Quantity: 1, AmountCents: 10000},
		},
	}

	res, err := Resolve(plan, rules, sale, testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.AmbiguousMatch {
		t.Errorf("duplicate rule refs must flag the result ambiguous")
	}
	if res.GrossAmountCents != 1000+300+200 {
		t.Errorf("gross = %d, want all matches summed", res.GrossAmountCents)
	}
}

func TestResolveMultiItemBonusThreshold(t *testing.T) {
	plan := percentPlan(1000)
	plan.MultiItemBonusEnabled = true
	plan.MultiItemBonusType = domain.BonusTypeFlat
	plan.MultiItemBonusFlatCents = i64(300)
	plan.MultiItemMinQuantity = 3

	sale := func(qty int) domain.Sale {
		return domain.Sale{
			AmountCents:           10000,
			PaymentSequenceNumber: 1,
			OccurredAt:            testOccurredAt,
			LineItems: []domain.SaleLineItem{
				{Quantity: qty, AmountCents: 10000},
			},
		}
	}

	below, err := Resolve(plan, nil, sale(2), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve qty 2: %v", err)
	}
	if below.GrossAmountCents != 1000 {
		t.Errorf("qty below threshold gross = %d, want 1000", below.GrossAmountCents)
	}

	at, err := Resolve(plan, nil, sale(3), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve qty 3: %v", err)
	}
	if at.GrossAmountCents != 1300 {
		t.Errorf("qty at threshold gross = %d, want 1300", at.GrossAmountCents)
	}

	// bonus triggers once, never per unit
	far, err := Resolve(plan, nil, sale(30), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve qty 30: %v", err)
	}
	if far.GrossAmountCents != 1300 {
		t.Errorf("qty 30 gross = %d, bonus must not scale with quantity", far.GrossAmountCents)
	}
}

func TestResolveMultiItemQuantitySummedAcrossLines(t *testing.T) {
	plan := percentPlan(1000)
	plan.MultiItemBonusEnabled = true
	plan.MultiItemBonusType = domain.BonusTypeFlat
	plan.MultiItemBonusFlatCents = i64(300)
	plan.MultiItemMinQuantity = 3

	pid1, pid2 := uint64(1), uint64(2)
	sale := domain.Sale{
		AmountCents:           10000,
		PaymentSequenceNumber: 1,
		OccurredAt:            testOccurredAt,
		LineItems: []domain.SaleLineItem{
			{ProductID: &pid1, Quantity: 2, AmountCents: 6000},
			{ProductID: &pid2, Quantity: 1, AmountCents: 4000},
		},
	}

	res, err := Resolve(plan, nil, sale, testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.GrossAmountCents != 1300 {
		t.Errorf("gross = %d, quantities sum across lines to hit the threshold", res.GrossAmountCents)
	}
}

func TestResolveHoldTiming(t *testing.T) {
	plan := percentPlan(1000)
	plan.HoldDays = 14

	res, err := Resolve(plan, nil, oneLineSale(10000, 1), testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantPayableAt := testOccurredAt.AddDate(0, 0, 14)
	if !res.PayableAt.Equal(wantPayableAt) {
		t.Errorf("payableAt = %v, want %v", res.PayableAt, wantPayableAt)
	}
	if res.Status != domain.CommissionStatusPending {
		t.Errorf("status = %s, want PENDING while hold is open", res.Status)
	}

	later, err := Resolve(plan, nil, oneLineSale(10000, 1), wantPayableAt)
	if err != nil {
		t.Fatalf("Resolve after hold: %v", err)
	}
	if later.Status != domain.CommissionStatusPayable {
		t.Errorf("status = %s, want PAYABLE once hold elapses", later.Status)
	}
}

func TestResolveClawback(t *testing.T) {
	plan := percentPlan(1000)
	plan.HoldDays = 14
	plan.ClawbackEnabled = true

	refundedAt := testOccurredAt.AddDate(0, 0, 3)
	sale := oneLineSale(10000, 1)
	sale.RefundedAt = &refundedAt

	res, err := Resolve(plan, nil, sale, refundedAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Status != domain.CommissionStatusClawedBack {
		t.Errorf("status = %s, want CLAWED_BACK", res.Status)
	}
	if res.NetAmountCents != 0 {
		t.Errorf("net = %d, want 0 after clawback", res.NetAmountCents)
	}
	if res.GrossAmountCents != 1000 {
		t.Errorf("gross = %d, clawback must retain the earned amount", res.GrossAmountCents)
	}
}

func TestResolveClawbackWindow(t *testing.T) {
	plan := percentPlan(1000)
	plan.HoldDays = 7
	plan.ClawbackEnabled = true

	policy := Policy{ClawbackWindowDays: 30}
	payableAt := testOccurredAt.AddDate(0, 0, 7)

	inside := payableAt.AddDate(0, 0, 30)
	sale := oneLineSale(10000, 1)
	sale.RefundedAt = &inside

	res, err := ResolveWithPolicy(plan, nil, sale, inside, policy)
	if err != nil {
		t.Fatalf("Resolve inside window: %v", err)
	}
	if res.Status != domain.CommissionStatusClawedBack {
		t.Errorf("refund inside the window must claw back, got %s", res.Status)
	}

	outside := payableAt.AddDate(0, 0, 31)
	sale.RefundedAt = &outside

	res, err = ResolveWithPolicy(plan, nil, sale, outside, policy)
	if err != nil {
		t.Fatalf("Resolve outside window: %v", err)
	}
	if res.Status == domain.CommissionStatusClawedBack {
		t.Errorf("refund past the window must not claw back")
	}
	if res.NetAmountCents != res.GrossAmountCents {
		t.Errorf("net = %d, want gross %d retained", res.NetAmountCents, res.GrossAmountCents)
	}
}

func TestResolveClawbackDisabled(t *testing.T) {
	plan := percentPlan(1000)
	plan.ClawbackEnabled = false

	refundedAt := testOccurredAt
	sale := oneLineSale(10000, 1)
	sale.RefundedAt = &refundedAt

	res, err := Resolve(plan, nil, sale, testOccurredAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Status == domain.CommissionStatusClawedBack {
		t.Errorf("clawback disabled plan must keep the commission")
	}
}

func TestResolveErrors(t *testing.T) {
	inactive := percentPlan(1000)
	inactive.IsActive = false
	if _, err := Resolve(inactive, nil, oneLineSale(10000, 1), testOccurredAt); err != ErrPlanInactive {
		t.Errorf("inactive plan err = %v, want ErrPlanInactive", err)
	}

	if _, err := Resolve(percentPlan(1000), nil, domain.Sale{AmountCents: 0}, testOccurredAt); err != ErrInvalidSale {
		t.Errorf("zero amount err = %v, want ErrInvalidSale", err)
	}

	noLines := domain.Sale{AmountCents: 10000, PaymentSequenceNumber: 1, OccurredAt: testOccurredAt}
	if _, err := Resolve(percentPlan(1000), nil, noLines, testOccurredAt); err != ErrInvalidSale {
		t.Errorf("no line items err = %v, want ErrInvalidSale", err)
	}

	empty := domain.CommissionPlan{
		PlanType:  domain.PlanTypePercent,
		AppliesTo: domain.AppliesToAllPayments,
		IsActive:  true,
	}
	if _, err := Resolve(empty, nil, oneLineSale(10000, 1), testOccurredAt); err != ErrInvalidPlan {
		t.Errorf("rate-less plan err = %v, want ErrInvalidPlan", err)
	}
}
