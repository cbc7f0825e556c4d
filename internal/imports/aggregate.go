package imports

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Aggregate merges rows sharing a SKU into one candidate. Groups come out in
// the order their SKU was first seen, followed by the rows without a SKU in
// input order. Descriptive fields come from the first row of a group; stock
// is summed and cost is the stock-weighted average.
func Aggregate(rows []NormalizedProduct) []MergeCandidate {
	order := make([]string, 0)
	groups := make(map[string][]NormalizedProduct)
	var loose []NormalizedProduct

	for _, r := range rows {
		sku := strings.TrimSpace(r.SKU)
		if sku == "" {
			loose = append(loose, r)
			continue
		}
		if _, ok := groups[sku]; !ok {
			order = append(order, sku)
		}
		groups[sku] = append(groups[sku], r)
	}

	out := make([]MergeCandidate, 0, len(order)+len(loose))
	for _, sku := range order {
		group := groups[sku]
		first := group[0]

		totalStock := 0
		totalCost := decimal.Zero
		receivedAt := ""
		for _, g := range group {
			totalStock += g.Stock
			totalCost = totalCost.Add(decimal.NewFromInt(int64(g.Stock)).Mul(decimal.NewFromInt(int64(g.CostYen))))
			if receivedAt == "" {
				receivedAt = g.StockReceivedAt
			}
		}

		c := candidateFrom(first)
		c.SKU = sku
		c.Stock = totalStock
		c.CostYen = WeightedAverage(totalCost, totalStock, first.CostYen)
		c.StockReceivedAt = receivedAt
		out = append(out, c)
	}
	for _, r := range loose {
		c := candidateFrom(r)
		c.SKU = ""
		out = append(out, c)
	}
	return out
}

// WeightedAverage divides a total cost by a quantity, rounding half away from
// zero. With no quantity it returns fallback.
func WeightedAverage(totalCost decimal.Decimal, qty int, fallback int) int {
	if qty <= 0 {
		return fallback
	}
	return int(totalCost.Div(decimal.NewFromInt(int64(qty))).Round(0).IntPart())
}

func candidateFrom(r NormalizedProduct) MergeCandidate {
	return MergeCandidate{
		SKU:             r.SKU,
		Name:            r.Name,
		CostYen:         r.CostYen,
		Stock:           r.Stock,
		Memo:            r.Memo,
		Campaign:        r.Campaign,
		Size:            r.Size,
		Color:           r.Color,
		ImageRef:        r.ImageRef,
		StockReceivedAt: r.StockReceivedAt,
		OriginRowIndex:  r.RowIndex,
	}
}
