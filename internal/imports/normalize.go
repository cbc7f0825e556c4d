package imports

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	msgEmptyName    = "行%d: 商品名が空です"
	msgInvalidCost  = "行%d: 原価が不正です"
	msgInvalidStock = "行%d: 在庫数が不正です"
)

// MaxQuantity bounds cost and stock: both are stored as 4-byte integers.
const MaxQuantity = math.MaxInt32

// Tokens such as "サイズ:M, 色:赤" inside a combined spec cell.
var specToken = regexp.MustCompile(`(?:^|[\s,，；;\x{3000}])(サイズ|規格|色)[:：][\s\x{3000}]*([^,，；;\s\x{3000}]+)`)

var nonNumeric = regexp.MustCompile(`[^\d.\-]`)

type Normalizer struct {
	columns *ColumnResolver
}

func NewNormalizer(columns *ColumnResolver) *Normalizer {
	if columns == nil {
		columns = DefaultColumnResolver()
	}
	return &Normalizer{columns: columns}
}

// Normalize never fails: validity (non-empty name, non-negative cost) is
// checked by the caller.
func (n *Normalizer) Normalize(row RawRow) NormalizedProduct {
	text := func(f Field) string {
		v, _ := n.columns.Lookup(row, f)
		return strings.TrimSpace(cellString(v))
	}

	costVal, _ := n.columns.Lookup(row, FieldCost)
	stockVal, _ := n.columns.Lookup(row, FieldStock)

	specVal, _ := n.columns.Lookup(row, FieldSpec)
	specSize, specColor := ParseSpec(cellString(specVal))

	size := text(FieldSize)
	if _, ok := n.columns.Lookup(row, FieldSize); !ok {
		size = specSize
	}
	color := text(FieldColor)
	if _, ok := n.columns.Lookup(row, FieldColor); !ok {
		color = specColor
	}

	var receivedAt string
	if v, ok := n.columns.Lookup(row, FieldReceivedAt); ok {
		receivedAt, _ = ParseDate(v)
	}

	return NormalizedProduct{
		RowIndex:        row.Index,
		SKU:             text(FieldSKU),
		Name:            text(FieldName),
		CostYen:         parseCost(costVal),
		Stock:           parseStock(stockVal),
		Memo:            text(FieldMemo),
		Campaign:        text(FieldCampaign),
		Size:            strings.TrimSpace(size),
		Color:           strings.TrimSpace(color),
		ImageRef:        text(FieldImage),
		StockReceivedAt: receivedAt,
	}
}

// NormalizeRows normalizes every row and splits off the ones that cannot be
// imported. Error messages carry the 1-based sheet row (data index + header).
func (n *Normalizer) NormalizeRows(rows []RawRow) ([]NormalizedProduct, []string) {
	valid := make([]NormalizedProduct, 0, len(rows))
	var errs []string
	for _, row := range rows {
		p := n.Normalize(row)
		if msg, ok := Validate(p); !ok {
			errs = append(errs, msg)
			continue
		}
		valid = append(valid, p)
	}
	return valid, errs
}

func Validate(p NormalizedProduct) (string, bool) {
	if p.Name == "" {
		return fmt.Sprintf(msgEmptyName, p.RowIndex+2), false
	}
	if p.CostYen < 0 || p.CostYen > MaxQuantity {
		return fmt.Sprintf(msgInvalidCost, p.RowIndex+2), false
	}
	if p.Stock > MaxQuantity {
		return fmt.Sprintf(msgInvalidStock, p.RowIndex+2), false
	}
	return "", true
}

// ParseSpec extracts size and color from labelled tokens. サイズ and 規格 both
// feed the size; the last token of a kind wins.
func ParseSpec(val string) (size, color string) {
	if strings.TrimSpace(val) == "" {
		return "", ""
	}
	for _, m := range specToken.FindAllStringSubmatch(val, -1) {
		if m[1] == "色" {
			color = strings.TrimSpace(m[2])
		} else {
			size = strings.TrimSpace(m[2])
		}
	}
	return size, color
}

func parseCost(v any) int {
	f, ok := toNumber(v, costReplacer)
	if !ok {
		return 0
	}
	return saturatingInt(math.Round(f))
}

func parseStock(v any) int {
	f, ok := toNumber(v, nil)
	if !ok {
		return 0
	}
	return max(0, saturatingInt(math.Floor(f)))
}

// saturatingInt clamps instead of letting the conversion wrap.
func saturatingInt(f float64) int {
	switch {
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(f)
}

var costReplacer = strings.NewReplacer(",", "", "，", "", "円", "", "¥", "", "￥", "", " ", "")

func toNumber(v any, clean *strings.Replacer) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	}

	s := strings.TrimSpace(cellString(v))
	if clean != nil {
		s = clean.Replace(s)
	} else {
		s = nonNumeric.ReplaceAllString(s, "")
	}
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
