package imports

import (
	"github.com/shopspring/decimal"
)

// Reconcile splits candidates into inserts and updates against the stored
// snapshot. An update adds the incoming stock to what is held and re-weights
// the cost over both quantities. Candidates keep their relative order inside
// each list.
func Reconcile(candidates []MergeCandidate, existing map[string]ExistingEntry) Plan {
	var plan Plan
	for _, c := range candidates {
		d := Decision{
			Kind:            DecisionInsert,
			SKU:             c.SKU,
			Name:            c.Name,
			CostYen:         c.CostYen,
			Stock:           c.Stock,
			Memo:            c.Memo,
			Campaign:        c.Campaign,
			Size:            c.Size,
			Color:           c.Color,
			ImageURL:        c.ImageURL,
			StockReceivedAt: c.StockReceivedAt,
			OriginRowIndex:  c.OriginRowIndex,
		}

		held, ok := existing[c.SKU]
		if c.SKU == "" || !ok {
			plan.ToInsert = append(plan.ToInsert, d)
			continue
		}

		stock := held.Stock + c.Stock
		total := decimal.NewFromInt(int64(held.Stock)).Mul(decimal.NewFromInt(int64(held.CostYen))).
			Add(decimal.NewFromInt(int64(c.Stock)).Mul(decimal.NewFromInt(int64(c.CostYen))))

		d.Kind = DecisionUpdate
		d.ExistingID = held.ID
		d.Stock = stock
		d.CostYen = WeightedAverage(total, stock, c.CostYen)
		plan.ToUpdate = append(plan.ToUpdate, d)
	}
	return plan
}
