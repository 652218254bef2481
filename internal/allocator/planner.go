package allocator

// Plan is the ordered list of purchases produced for one funding cycle.
type Plan []Selection

// Total returns the sum of all planned purchase amounts.
func (p Plan) Total() float64 {
	sum := 0.0
	for _, s := range p {
		sum += s.Amount
	}
	return sum
}

// BuildPlan greedily turns one funding budget into an ordered purchase plan.
// Each step asks BestAssetToFund for the single purchase that moves the
// projected portfolio closest to the ideal allocation, applies it to the
// projected equities, and deducts it from the remaining budget. Planning
// stops cleanly when nothing is affordable anymore or when no candidate
// qualifies; that is a normal terminal state, not an error.
//
// The returned equities slice is the projection after all planned purchases;
// the input slice is not modified. Every amount is positive and within the
// budget remaining at the time it was chosen, so the loop runs at most
// budget/min(prices) iterations.
func BuildPlan(equities, prices, ideal []float64, budget float64) (Plan, []float64) {
	projected := make([]float64, len(equities))
	copy(projected, equities)

	var plan Plan
	remaining := budget
	for {
		affordable := false
		for _, p := range prices {
			if p <= remaining {
				affordable = true
				break
			}
		}
		if !affordable {
			return plan, projected
		}

		sel, ok := BestAssetToFund(projected, prices, ideal, remaining)
		if !ok {
			return plan, projected
		}
		plan = append(plan, sel)
		projected[sel.Index] += sel.Amount
		remaining -= sel.Amount
	}
}
