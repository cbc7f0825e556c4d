package inventory

import (
	"math"
	"testing"
)

func TestInt4(t *testing.T) {
	tests := []struct {
		in      int
		want    int32
		wantErr bool
	}{
		{0, 0, false},
		{150, 150, false},
		{math.MaxInt32, math.MaxInt32, false},
		{math.MinInt32, math.MinInt32, false},
		{math.MaxInt32 + 1, 0, true},
		{5000000000, 0, true},
		{math.MinInt32 - 1, 0, true},
	}
	for _, tt := range tests {
		got, err := int4("stock", tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("int4(%d) = %d, %v", tt.in, got, err)
		}
	}
}
