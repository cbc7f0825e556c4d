package inventory

// StockEntry is what the import needs to know about a stored product.
type StockEntry struct {
	ID      string
	SKU     string
	Stock   int
	CostYen int
}

// NewProduct is a row to insert. Empty optional strings are stored as NULL.
type NewProduct struct {
	UserID          string
	SKU             string
	Name            string
	CostYen         int
	Stock           int
	Memo            string
	Campaign        string
	Size            string
	Color           string
	ImageURL        string
	StockReceivedAt string
}

// ProductUpdate overwrites the descriptive fields, stock and cost of an
// existing product. ImageURL and StockReceivedAt are left untouched when
// empty.
type ProductUpdate struct {
	ID              string
	Name            string
	CostYen         int
	Stock           int
	Memo            string
	Campaign        string
	Size            string
	Color           string
	ImageURL        string
	StockReceivedAt string
}
