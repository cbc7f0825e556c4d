package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Rounding string

const (
	RoundingFloor Rounding = "floor"
	RoundingCeil  Rounding = "ceil"
	RoundingRound Rounding = "round"
)

var (
	hundred  = decimal.NewFromInt(100)
	margin20 = decimal.RequireFromString("1.2")
	margin30 = decimal.RequireFromString("1.3")
)

func ParseRounding(s string) (Rounding, error) {
	switch Rounding(s) {
	case "", RoundingFloor:
		return RoundingFloor, nil
	case RoundingCeil, RoundingRound:
		return Rounding(s), nil
	}
	return "", fmt.Errorf("unknown rounding %q", s)
}

// CalcFee is the marketplace fee on price at ratePercent. Unknown rounding
// modes floor.
func CalcFee(price int, ratePercent float64, rounding Rounding) int {
	fee := decimal.NewFromInt(int64(price)).Mul(decimal.NewFromFloat(ratePercent)).Div(hundred)
	switch rounding {
	case RoundingCeil:
		fee = fee.Ceil()
	case RoundingRound:
		fee = fee.Round(0)
	default:
		fee = fee.Floor()
	}
	return int(fee.IntPart())
}

// CalcGrossProfit charges fee and cost per unit sold; shipping and material
// once per sale.
func CalcGrossProfit(unitPrice, quantity, feeYen, shippingYen, materialYen, costYen int) int {
	return unitPrice*quantity - feeYen*quantity - shippingYen - materialYen - costYen*quantity
}

// PriceWithMargin20 is the suggested price for a 20% margin over cost.
func PriceWithMargin20(costYen int) int {
	return int(decimal.NewFromInt(int64(costYen)).Mul(margin20).Ceil().IntPart())
}

func PriceWithMargin30(costYen int) int {
	return int(decimal.NewFromInt(int64(costYen)).Mul(margin30).Ceil().IntPart())
}
