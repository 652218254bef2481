package allocator

import "math"

// Selection is one chosen purchase: the asset index and the dollar amount to
// spend on it. The amount always equals the asset's current price, so one
// selection buys roughly one share.
type Selection struct {
	Index  int
	Amount float64
}

// BestAssetToFund evaluates, for every asset whose price fits within budget,
// the portfolio that would result from spending one share's price on it, and
// returns the candidate whose fractional composition is closest to the ideal
// allocation. Ties go to the lowest index. ok is false when no asset is
// affordable or the error metric is undefined for every candidate.
func BestAssetToFund(equities, prices, ideal []float64, budget float64) (sel Selection, ok bool) {
	total := 0.0
	for _, e := range equities {
		total += e
	}

	bestErr := math.Inf(1)
	fractions := make([]float64, len(equities))
	for i, p := range prices {
		if p > budget {
			continue
		}
		newTotal := total + p
		for j, e := range equities {
			if j == i {
				e += p
			}
			fractions[j] = e / newTotal
		}
		mse, defined := MeanSquaredError(fractions, ideal)
		if !defined {
			continue
		}
		if mse < bestErr {
			bestErr = mse
			sel = Selection{Index: i, Amount: p}
			ok = true
		}
	}
	return sel, ok
}
