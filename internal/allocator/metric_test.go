package allocator

import (
	"math"
	"testing"
)

func TestMeanSquaredError_Empty(t *testing.T) {
	if _, ok := MeanSquaredError(nil, nil); ok {
		t.Error("expected undefined result for empty vectors")
	}
	if _, ok := MeanSquaredError([]float64{}, []float64{}); ok {
		t.Error("expected undefined result for empty vectors")
	}
}

func TestMeanSquaredError_Identical(t *testing.T) {
	for _, x := range []float64{0, 0.25, 1, -3.5} {
		mse, ok := MeanSquaredError([]float64{x}, []float64{x})
		if !ok {
			t.Fatalf("expected defined result for x=%v", x)
		}
		if mse != 0 {
			t.Errorf("x=%v: expected zero error, got %v", x, mse)
		}
	}
}

func TestMeanSquaredError_Values(t *testing.T) {
	tests := []struct {
		name      string
		fractions []float64
		ideal     []float64
		want      float64
	}{
		{"single pair", []float64{0.6}, []float64{0.5}, 0.01},
		{"two pairs", []float64{0.6, 0.4}, []float64{0.5, 0.5}, 0.01},
		{"asymmetric drift", []float64{0.0, 1.0}, []float64{0.5, 0.5}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mse, ok := MeanSquaredError(tt.fractions, tt.ideal)
			if !ok {
				t.Fatal("expected defined result")
			}
			if math.Abs(mse-tt.want) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.want, mse)
			}
		})
	}
}

func TestMeanSquaredError_PermutationInvariant(t *testing.T) {
	fractions := []float64{0.1, 0.3, 0.6}
	ideal := []float64{0.2, 0.2, 0.6}
	permFractions := []float64{0.6, 0.1, 0.3}
	permIdeal := []float64{0.6, 0.2, 0.2}

	a, ok := MeanSquaredError(fractions, ideal)
	if !ok {
		t.Fatal("expected defined result")
	}
	b, ok := MeanSquaredError(permFractions, permIdeal)
	if !ok {
		t.Fatal("expected defined result")
	}
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("error changed under simultaneous permutation: %v vs %v", a, b)
	}
}
