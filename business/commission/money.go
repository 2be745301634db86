package commission

// Money is integer cents and rates are integer basis points end to end,
// never floating point, so repeated resolution cannot drift.

const bpsDenominator = 10000

// ApplyBps applies a basis-point rate to an amount in cents, rounding
// half-up to the nearest cent. Non-positive operands yield zero.
func ApplyBps(amountCents, bps int64) int64 {
	if amountCents <= 0 || bps <= 0 {
		return 0
	}
	return (amountCents*bps + bpsDenominator/2) / bpsDenominator
}
