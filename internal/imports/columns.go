package imports

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/width"
)

type Field string

const (
	FieldSKU        Field = "sku"
	FieldName       Field = "name"
	FieldCost       Field = "cost"
	FieldStock      Field = "stock"
	FieldMemo       Field = "memo"
	FieldCampaign   Field = "campaign"
	FieldSpec       Field = "spec"
	FieldSize       Field = "size"
	FieldColor      Field = "color"
	FieldImage      Field = "image"
	FieldReceivedAt Field = "received_at"
)

// DefaultAliases lists, per field, the header names seen in supplier sheets.
// Order matters: the first alias that hits wins.
var DefaultAliases = map[Field][]string{
	FieldSKU:  {"THE CKB SKU", "THE CKBSKU", "SKU", "sku", "品番", "商品コード"},
	FieldName: {"商品名", "name", "品名"},
	FieldCost: {
		"1個あたりのコスト（円）", "1個あたりのコスト", "原価（税込）", "原価(税込)",
		"原価", "げんか", "成本", "仕入価格", "cost", "COST",
	},
	FieldStock: {
		"商品数", "在庫数", "在庫", "仕入れ数", "仕入れの個数", "購入数",
		"購入した個数", "入荷数", "stock", "STOCK", "数量", "品数",
	},
	FieldMemo:     {"メモ", "memo", "備考", "自由記入"},
	FieldCampaign: {"企画", "キャンペーン", "campaign"},
	FieldSpec:     {"規格", "サイズ", "size", "色", "カラー", "color"},
	FieldSize:     {"サイズ", "size", "SIZE", "サイズ（cm）", "サイズ(cm)"},
	FieldColor:    {"色", "カラー", "color", "COLOR", "colour"},
	FieldImage:    {"画像", "画像ファイル", "image", "写真", "ファイル名"},
	FieldReceivedAt: {
		"出荷日", "入荷日", "仕入れ日", "発送日", "発送予定日", "納品日",
		"ship_date", "received_at", "shipped_at",
	},
}

// Fallback is consulted after every alias of a field missed.
type Fallback func(row RawRow) (any, bool)

// DefaultFallbacks covers sheets whose headers do not name the column at all.
var DefaultFallbacks = map[Field][]Fallback{
	FieldStock:      {stockKeywordColumn, stockFixedLayoutColumn},
	FieldReceivedAt: {dateKeywordColumn, dateFixedColumns},
}

type ColumnResolver struct {
	aliases   map[Field][]string
	fallbacks map[Field][]Fallback
}

func NewColumnResolver(aliases map[Field][]string, fallbacks map[Field][]Fallback) *ColumnResolver {
	if aliases == nil {
		aliases = DefaultAliases
	}
	if fallbacks == nil {
		fallbacks = map[Field][]Fallback{}
	}
	return &ColumnResolver{aliases: aliases, fallbacks: fallbacks}
}

func DefaultColumnResolver() *ColumnResolver {
	return NewColumnResolver(DefaultAliases, DefaultFallbacks)
}

// Lookup resolves a canonical field, trying aliases first and then the
// field's fallbacks in order.
func (r *ColumnResolver) Lookup(row RawRow, field Field) (any, bool) {
	if v, ok := Resolve(row, r.aliases[field]); ok {
		return v, true
	}
	for _, fb := range r.fallbacks[field] {
		if v, ok := fb(row); ok {
			return v, true
		}
	}
	return nil, false
}

// Resolve returns the first non-empty cell whose header equals one of the
// candidates, or failing that, whose normalized header contains a normalized
// candidate (or is contained in one). Row-key order breaks ties.
func Resolve(row RawRow, candidates []string) (any, bool) {
	for _, c := range candidates {
		if v, ok := row.Values[c]; ok && !isEmptyCell(v) {
			return v, true
		}
	}

	normalized := make([]string, 0, len(candidates))
	for _, c := range candidates {
		normalized = append(normalized, NormalizeHeader(c))
	}

	for _, key := range row.Headers {
		nk := NormalizeHeader(key)
		if nk == "" {
			continue
		}
		for _, nc := range normalized {
			if nc == "" {
				continue
			}
			if strings.Contains(nk, nc) || strings.Contains(nc, nk) {
				if v := row.Values[key]; !isEmptyCell(v) {
					return v, true
				}
			}
		}
	}
	return nil, false
}

// NormalizeHeader trims, drops the byte-order mark and every whitespace rune
// (full-width space included), folds full/half width and lowercases.
func NormalizeHeader(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\uFEFF' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(width.Fold.String(s))
}

func isEmptyCell(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

// cellString renders a cell the way it would read in the sheet.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	}
	return ""
}

func stockKeywordColumn(row RawRow) (any, bool) {
	for _, key := range row.Headers {
		nk := NormalizeHeader(key)
		trimmed := strings.TrimSpace(strings.ReplaceAll(key, "\uFEFF", ""))
		if strings.Contains(nk, "商品数") || strings.Contains(nk, "shouhinsuu") || nk == "品数" || trimmed == "商品数" {
			v := row.Values[key]
			if isEmptyCell(v) {
				return nil, false
			}
			return v, true
		}
	}
	return nil, false
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// stockFixedLayoutColumn reads the 5th column of the supplier template whose
// 4th column is the spec/grade column and 5th the product count.
func stockFixedLayoutColumn(row RawRow) (any, bool) {
	fourth, _, ok := row.Column(3)
	if !ok {
		return nil, false
	}
	fifth, v, ok := row.Column(4)
	if !ok {
		return nil, false
	}
	if !strings.Contains(NormalizeHeader(fourth), "規格") || !strings.Contains(NormalizeHeader(fifth), "商品") {
		return nil, false
	}
	if isEmptyCell(v) || !digitsOnly.MatchString(strings.TrimSpace(cellString(v))) {
		return nil, false
	}
	return v, true
}

var dateKeyword = regexp.MustCompile(`日|date|at|日付|datetime|発送|入荷|出荷|納品|仕入|受領`)

func dateKeywordColumn(row RawRow) (any, bool) {
	for _, key := range row.Headers {
		v := row.Values[key]
		if isEmptyCell(v) || !dateKeyword.MatchString(NormalizeHeader(key)) {
			continue
		}
		if _, ok := parseDateCell(v, true); ok {
			return v, true
		}
	}
	return nil, false
}

func dateFixedColumns(row RawRow) (any, bool) {
	for _, pos := range []int{5, 6, 7} {
		_, v, ok := row.Column(pos)
		if !ok {
			continue
		}
		if _, ok := parseDateCell(v, true); ok {
			return v, true
		}
	}
	return nil, false
}
