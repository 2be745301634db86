package commission

import "clinicCommission/domain"

// refKey identifies what a rule line or sale line points at: a product or
// a bundle, never both.
type refKey struct {
	bundle bool
	id     uint64
}

func ruleRef(r domain.ProductCommissionRule) (refKey, bool) {
	if r.ProductID != nil {
		return refKey{id: *r.ProductID}, true
	}
	if r.ProductBundleID != nil {
		return refKey{bundle: true, id: *r.ProductBundleID}, true
	}
	return refKey{}, false
}

func lineRef(li domain.SaleLineItem) (refKey, bool) {
	if li.ProductID != nil {
		return refKey{id: *li.ProductID}, true
	}
	if li.ProductBundleID != nil {
		return refKey{bundle: true, id: *li.ProductBundleID}, true
	}
	return refKey{}, false
}

// matchRules computes the additive bonus for every sale line with a matching
// rule. Percent bonuses apply to the line's attributed amount, flat bonuses
// once per matching line. Uniqueness of refs is enforced at write time; if a
// ref still matches more than one rule we sum all matches and flag the result
// ambiguous instead of silently picking one.
func matchRules(rules []domain.ProductCommissionRule, lines []domain.SaleLineItem) ([]BreakdownLine, bool) {
	if len(rules) == 0 {
		return nil, false
	}

	index := make(map[refKey][]domain.ProductCommissionRule, len(rules))
	for _, r := range rules {
		key, ok := ruleRef(r)
		if !ok {
			continue
		}
		index[key] = append(index[key], r)
	}

	var out []BreakdownLine
	ambiguous := false
	for _, li := range lines {
		key, ok := lineRef(li)
		if !ok {
			continue
		}
		matches := index[key]
		if len(matches) > 1 {
			ambiguous = true
		}
		for _, r := range matches {
			source := SourceProductRule
			if key.bundle {
				source = SourceBundleRule
			}
			out = append(out, BreakdownLine{
				Source:      source,
				Ref:         key.id,
				AmountCents: ruleBonus(r, li),
			})
		}
	}
	return out, ambiguous
}

func ruleBonus(r domain.ProductCommissionRule, li domain.SaleLineItem) int64 {
	switch r.BonusType {
	case domain.BonusTypePercent:
		if r.PercentBps == nil {
			return 0
		}
		return ApplyBps(li.AmountCents, *r.PercentBps)
	case domain.BonusTypeFlat:
		if r.FlatAmountCents == nil {
			return 0
		}
		return *r.FlatAmountCents
	}
	return 0
}
