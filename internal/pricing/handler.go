package pricing

import (
	"net/http"

	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/labstack/echo/v4"
)

type QuoteInput struct {
	CostYen     int     `query:"costYen"`
	UnitPrice   int     `query:"price"`
	Quantity    int     `query:"quantity"`
	FeeRate     float64 `query:"feeRate"`
	Rounding    string  `query:"rounding"`
	ShippingYen int     `query:"shipping"`
	MaterialYen int     `query:"material"`
}

type Quote struct {
	FeeYen      int `json:"feeYen"`
	GrossProfit int `json:"grossProfit"`
	Margin20    int `json:"priceWithMargin20"`
	Margin30    int `json:"priceWithMargin30"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Quote handles GET /pricing/quote
func (h *Handler) Quote(c echo.Context) error {
	var input QuoteInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("パラメータが不正です")
	}
	if input.CostYen < 0 || input.UnitPrice < 0 || input.FeeRate < 0 {
		return rest.NewBadRequestError("金額は0以上で指定してください")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}
	rounding, err := ParseRounding(input.Rounding)
	if err != nil {
		return rest.NewBadRequestValidationError("端数処理が不正です", []rest.Causes{
			{Field: "rounding", Message: "floor, ceil, round のいずれかを指定してください"},
		})
	}

	fee := CalcFee(input.UnitPrice, input.FeeRate, rounding)
	return c.JSON(http.StatusOK, Quote{
		FeeYen:      fee,
		GrossProfit: CalcGrossProfit(input.UnitPrice, input.Quantity, fee, input.ShippingYen, input.MaterialYen, input.CostYen),
		Margin20:    PriceWithMargin20(input.CostYen),
		Margin30:    PriceWithMargin30(input.CostYen),
	})
}
