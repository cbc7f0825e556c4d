package pricing

import "testing"

func TestCalcFee(t *testing.T) {
	tests := []struct {
		name     string
		price    int
		rate     float64
		rounding Rounding
		want     int
	}{
		{"floor exact", 1000, 10, RoundingFloor, 100},
		{"floor drops fraction", 999, 10, RoundingFloor, 99},
		{"ceil exact", 1000, 10, RoundingCeil, 100},
		{"ceil raises fraction", 999, 10, RoundingCeil, 100},
		{"round half up", 105, 10, RoundingRound, 11},
		{"round down", 104, 10, RoundingRound, 10},
		{"unknown mode floors", 999, 10, Rounding("bogus"), 99},
		{"fractional rate", 1000, 8.5, RoundingFloor, 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalcFee(tt.price, tt.rate, tt.rounding); got != tt.want {
				t.Errorf("CalcFee(%d, %v, %s) = %d, want %d", tt.price, tt.rate, tt.rounding, got, tt.want)
			}
		})
	}
}

func TestPriceWithMargin(t *testing.T) {
	if got := PriceWithMargin20(1000); got != 1200 {
		t.Errorf("PriceWithMargin20(1000) = %d, want 1200", got)
	}
	if got := PriceWithMargin20(999); got != 1199 {
		t.Errorf("PriceWithMargin20(999) = %d, want 1199", got)
	}
	if got := PriceWithMargin30(1000); got != 1300 {
		t.Errorf("PriceWithMargin30(1000) = %d, want 1300", got)
	}
}

func TestCalcGrossProfit(t *testing.T) {
	if got := CalcGrossProfit(1000, 1, 100, 210, 0, 500); got != 190 {
		t.Errorf("single unit = %d, want 190", got)
	}
	if got := CalcGrossProfit(1000, 2, 100, 210, 0, 500); got != 2000-200-210-1000 {
		t.Errorf("two units = %d, want %d", got, 2000-200-210-1000)
	}
}

func TestParseRounding(t *testing.T) {
	if r, err := ParseRounding(""); err != nil || r != RoundingFloor {
		t.Errorf("empty rounding = %q, %v", r, err)
	}
	if _, err := ParseRounding("up"); err == nil {
		t.Error("expected error for unknown rounding")
	}
}
