package allocator

// MeanSquaredError computes the mean of the squared element-wise differences
// between a candidate fraction vector and the ideal fraction vector. The two
// slices correspond pairwise by asset index. ok is false when the vectors are
// empty, meaning no comparison is possible (distinct from a zero error).
func MeanSquaredError(fractions, ideal []float64) (mse float64, ok bool) {
	n := len(fractions)
	if len(ideal) < n {
		n = len(ideal)
	}
	if n == 0 {
		return 0, false
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := fractions[i] - ideal[i]
		sum += d * d
	}
	return sum / float64(n), true
}
