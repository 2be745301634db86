package commission

const defaultClawbackWindowDays = 30

// Policy carries resolver knobs that are operational rather than per-plan.
type Policy struct {
	// ClawbackWindowDays is how long after payableAt a refund can still
	// reverse an already-payable commission. 0 disables the post-payment
	// window; refunds before payableAt always claw back.
	ClawbackWindowDays int
}

func DefaultPolicy() Policy {
	return Policy{
		ClawbackWindowDays: defaultClawbackWindowDays,
	}
}
