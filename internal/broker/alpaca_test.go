package broker

import (
	"testing"
)

func TestLimitOrderFor(t *testing.T) {
	tests := []struct {
		name      string
		refPrice  float64
		dollars   float64
		wantLimit string
		wantQty   int64
		wantErr   bool
	}{
		{"one share at its own price", 100.0, 100.0, "99.90", 1, false},
		{"discount rounds to cents", 33.33, 33.33, "33.30", 1, false},
		{"multiple shares", 10.0, 105.0, "9.99", 10, false},
		{"amount below one share", 100.0, 50.0, "", 0, true},
		{"zero amount", 100.0, 0, "", 0, true},
		{"zero reference price", 0, 100.0, "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, qty, err := limitOrderFor(tt.refPrice, tt.dollars)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := limit.StringFixed(2); got != tt.wantLimit {
				t.Errorf("limit price: expected %s, got %s", tt.wantLimit, got)
			}
			if qty != tt.wantQty {
				t.Errorf("qty: expected %d, got %d", tt.wantQty, qty)
			}
		})
	}
}
