package imports

// RawRow is one data row of the first worksheet, keyed by the header text
// exactly as it appears in the sheet. Headers keeps the column order.
type RawRow struct {
	Index   int
	Headers []string
	Values  map[string]any
}

func NewRawRow(index int, headers []string, values []any) RawRow {
	row := RawRow{
		Index:   index,
		Headers: headers,
		Values:  make(map[string]any, len(headers)),
	}
	for i, h := range headers {
		if i < len(values) {
			row.Values[h] = values[i]
		} else {
			row.Values[h] = ""
		}
	}
	return row
}

// Column returns the header and value at a zero-based column position.
func (r RawRow) Column(pos int) (string, any, bool) {
	if pos < 0 || pos >= len(r.Headers) {
		return "", nil, false
	}
	h := r.Headers[pos]
	return h, r.Values[h], true
}

// NormalizedProduct is the canonical reading of a single row. Optional text
// fields are empty when absent.
type NormalizedProduct struct {
	RowIndex        int    `json:"rowIndex"`
	SKU             string `json:"sku,omitempty"`
	Name            string `json:"name"`
	CostYen         int    `json:"costYen"`
	Stock           int    `json:"stock"`
	Memo            string `json:"memo,omitempty"`
	Campaign        string `json:"campaign,omitempty"`
	Size            string `json:"size,omitempty"`
	Color           string `json:"color,omitempty"`
	ImageRef        string `json:"imageRef,omitempty"`
	StockReceivedAt string `json:"stockReceivedAt,omitempty"`
}

// MergeCandidate is one product after rows sharing a SKU were combined.
type MergeCandidate struct {
	SKU             string `json:"sku,omitempty"`
	Name            string `json:"name"`
	CostYen         int    `json:"costYen"`
	Stock           int    `json:"stock"`
	Memo            string `json:"memo,omitempty"`
	Campaign        string `json:"campaign,omitempty"`
	Size            string `json:"size,omitempty"`
	Color           string `json:"color,omitempty"`
	ImageRef        string `json:"imageRef,omitempty"`
	StockReceivedAt string `json:"stockReceivedAt,omitempty"`
	OriginRowIndex  int    `json:"originRowIndex"`
	// ImageURL is filled by the pipeline once an image was uploaded.
	ImageURL string `json:"imageUrl,omitempty"`
}

// ExistingEntry is the snapshot of a stored product read once per import.
type ExistingEntry struct {
	ID      string
	SKU     string
	Stock   int
	CostYen int
}

type DecisionKind string

const (
	DecisionInsert DecisionKind = "insert"
	DecisionUpdate DecisionKind = "update"
)

// Decision is either an insert of a new product or an update of ExistingID.
type Decision struct {
	Kind            DecisionKind
	ExistingID      string
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
	OriginRowIndex  int
}

type Plan struct {
	ToInsert []Decision
	ToUpdate []Decision
}

type ImportInput struct {
	UserID       string
	FileName     string
	Spreadsheet  []byte
	ExcelPath    string
	Archive      []byte
	ZipPath      string
	SkipFirstRow bool
}

type ImportResult struct {
	Created          int      `json:"created"`
	Updated          int      `json:"updated"`
	Errors           []string `json:"errors"`
	ImageCount       *int     `json:"imageCount,omitempty"`
	ImagesAssociated int      `json:"imagesAssociated"`
}

type ImportProgressEventType string

const (
	ImportEventStart    ImportProgressEventType = "import_start"
	ImportEventImages   ImportProgressEventType = "images_uploaded"
	ImportEventRowError ImportProgressEventType = "row_error"
	ImportEventPersist  ImportProgressEventType = "persist_progress"
	ImportEventFailed   ImportProgressEventType = "failed"
	ImportEventComplete ImportProgressEventType = "complete"
)

// ImportProgressEvent is streamed to clients of the import-stream endpoint.
type ImportProgressEvent struct {
	Type         ImportProgressEventType `json:"type"`
	Row          int                     `json:"row,omitempty"`
	Index        int                     `json:"index"`
	Total        int                     `json:"total"`
	Message      string                  `json:"message,omitempty"`
	ImportResult *ImportResult           `json:"import_result,omitempty"`
}

type ImportProgressCallback func(event ImportProgressEvent)
