package logic

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// pctDelta expresses a multiplier as a percentage delta from neutral.
func pctDelta(multiplier float64) float64 {
	return (multiplier - 1.0) * 100.0
}
