package imports

import "testing"

func TestReconcile_MergesWithExisting(t *testing.T) {
	plan := Reconcile([]MergeCandidate{
		{SKU: "A1", Name: "湯呑", CostYen: 200, Stock: 5, OriginRowIndex: 0},
	}, map[string]ExistingEntry{
		"A1": {ID: "p-1", SKU: "A1", Stock: 5, CostYen: 100},
	})

	if len(plan.ToInsert) != 0 || len(plan.ToUpdate) != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	d := plan.ToUpdate[0]
	if d.Kind != DecisionUpdate || d.ExistingID != "p-1" {
		t.Errorf("unexpected decision: %+v", d)
	}
	if d.Stock != 10 || d.CostYen != 150 {
		t.Errorf("stock/cost = %d/%d, want 10/150", d.Stock, d.CostYen)
	}
}

func TestReconcile_SplitsInsertsAndUpdates(t *testing.T) {
	plan := Reconcile([]MergeCandidate{
		{SKU: "NEW", Name: "新", CostYen: 10, Stock: 1},
		{SKU: "OLD", Name: "旧", CostYen: 0, Stock: 0},
		{Name: "SKUなし", CostYen: 5, Stock: 2},
	}, map[string]ExistingEntry{
		"OLD": {ID: "p-9", SKU: "OLD", Stock: 0, CostYen: 0},
		"":    {ID: "never", Stock: 99},
	})

	if len(plan.ToInsert) != 2 || plan.ToInsert[0].SKU != "NEW" || plan.ToInsert[1].Name != "SKUなし" {
		t.Errorf("inserts = %+v", plan.ToInsert)
	}
	if len(plan.ToUpdate) != 1 {
		t.Fatalf("updates = %+v", plan.ToUpdate)
	}
	// both quantities zero: incoming cost is kept
	if u := plan.ToUpdate[0]; u.Stock != 0 || u.CostYen != 0 || u.ExistingID != "p-9" {
		t.Errorf("update = %+v", u)
	}
	for _, d := range plan.ToInsert {
		if d.Kind != DecisionInsert || d.ExistingID != "" {
			t.Errorf("insert decision carries update fields: %+v", d)
		}
	}
}
