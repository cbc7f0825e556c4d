package imports

import (
	"math"
	"testing"
)

var fullHeaders = []string{"SKU", "商品名", "原価", "在庫数", "メモ", "企画", "入荷日", "画像"}

func TestNormalize_AllColumns(t *testing.T) {
	n := NewNormalizer(nil)
	p := n.Normalize(row(3, fullHeaders, " A001 ", "ガラスの花瓶", "1,200円", "3個", "ひび無し", "春市", "44927", "A001.jpg"))

	want := NormalizedProduct{
		RowIndex:        3,
		SKU:             "A001",
		Name:            "ガラスの花瓶",
		CostYen:         1200,
		Stock:           3,
		Memo:            "ひび無し",
		Campaign:        "春市",
		ImageRef:        "A001.jpg",
		StockReceivedAt: "2023-01-01",
	}
	if p != want {
		t.Errorf("got %+v\nwant %+v", p, want)
	}
}

func TestNormalize_SpecFallback(t *testing.T) {
	n := NewNormalizer(nil)

	p := n.Normalize(row(0, []string{"商品名", "規格"}, "Tシャツ", "サイズ:M 色:黒"))
	if p.Size != "M" || p.Color != "黒" {
		t.Errorf("size/color = %q/%q", p.Size, p.Color)
	}

	// explicit columns win over the spec cell
	p = n.Normalize(row(0, []string{"商品名", "規格", "カラー"}, "Tシャツ", "サイズ:M 色:黒", "白"))
	if p.Size != "M" || p.Color != "白" {
		t.Errorf("size/color = %q/%q", p.Size, p.Color)
	}
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		in          string
		size, color string
	}{
		{"サイズ:M, 色:赤", "M", "赤"},
		{"規格：L　色：青", "L", "青"},
		{"規格:S サイズ:XL", "XL", ""},
		{"色: 緑", "", "緑"},
		{"フリー", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		size, color := ParseSpec(tt.in)
		if size != tt.size || color != tt.color {
			t.Errorf("ParseSpec(%q) = %q, %q; want %q, %q", tt.in, size, color, tt.size, tt.color)
		}
	}
}

func TestParseCost(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{500.0, 500},
		{"¥980", 980},
		{"￥1，500", 1500},
		{"12.5", 13},
		{"-50", -50},
		{"未定", 0},
		{"", 0},
		{nil, 0},
		{"5000000000", 5000000000},
		{1e20, math.MaxInt},
	}
	for _, tt := range tests {
		if got := parseCost(tt.in); got != tt.want {
			t.Errorf("parseCost(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseStock(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{4.0, 4},
		{"3個", 3},
		{"2.7", 2},
		{"-4", 0},
		{"なし", 0},
		{nil, 0},
		{1e20, math.MaxInt},
		{-1e20, 0},
	}
	for _, tt := range tests {
		if got := parseStock(tt.in); got != tt.want {
			t.Errorf("parseStock(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRows_RejectsInvalidRows(t *testing.T) {
	headers := []string{"商品名", "原価"}
	rows := []RawRow{
		row(0, headers, "皿", "100"),
		row(1, headers, "", "100"),
		row(2, headers, "鉢", "-1"),
		row(3, headers, "壺", ""),
	}

	valid, errs := NewNormalizer(nil).NormalizeRows(rows)

	if len(valid) != 2 || valid[0].Name != "皿" || valid[1].Name != "壺" {
		t.Errorf("unexpected valid rows: %+v", valid)
	}
	want := []string{"行3: 商品名が空です", "行4: 原価が不正です"}
	if len(errs) != len(want) {
		t.Fatalf("errors = %v, want %v", errs, want)
	}
	for i := range want {
		if errs[i] != want[i] {
			t.Errorf("errors[%d] = %q, want %q", i, errs[i], want[i])
		}
	}
}

func TestNormalizeRows_RejectsOutOfRangeQuantities(t *testing.T) {
	headers := []string{"商品名", "原価", "在庫数"}
	rows := []RawRow{
		row(0, headers, "皿", "5000000000", "1"),
		row(1, headers, "鉢", "100", "3000000000"),
		row(2, headers, "壺", "2147483647", "2147483647"),
	}

	valid, errs := NewNormalizer(nil).NormalizeRows(rows)

	if len(valid) != 1 || valid[0].Name != "壺" {
		t.Errorf("unexpected valid rows: %+v", valid)
	}
	want := []string{"行2: 原価が不正です", "行3: 在庫数が不正です"}
	if len(errs) != len(want) || errs[0] != want[0] || errs[1] != want[1] {
		t.Errorf("errors = %v, want %v", errs, want)
	}
}

func TestNormalize_GarbledReceivedDateIsDropped(t *testing.T) {
	p := NewNormalizer(nil).Normalize(row(0, []string{"商品名", "入荷日"}, "皿", "10000000000"))
	if p.StockReceivedAt != "" {
		t.Errorf("stockReceivedAt = %q, want empty", p.StockReceivedAt)
	}
}
