package imports

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}

	ErrUnknownFormat = errors.New("unsupported spreadsheet format")
	ErrNoSheet       = errors.New("workbook has no sheet")
)

// DetectFormat looks at the leading bytes first and only then at the name.
func DetectFormat(data []byte, fileName string) (Format, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS, nil
	}
	name := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(name, ".xlsx"):
		return FormatXLSX, nil
	case strings.HasSuffix(name, ".xls"):
		return FormatXLS, nil
	}
	return "", ErrUnknownFormat
}

// EmbeddedImage is a picture anchored on a data row of the sheet.
type EmbeddedImage struct {
	RowIndex int
	Data     []byte
}

type Workbook struct {
	Format Format
	Rows   []RawRow
	Images []EmbeddedImage
}

// ParseWorkbook reads the first sheet. The header is the first row after the
// optional skipped row; blank rows are dropped and data indexes count only
// the rows that remain.
func ParseWorkbook(data []byte, fileName string, skipFirstRow bool) (*Workbook, error) {
	format, err := DetectFormat(data, fileName)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLS:
		return parseXLS(data, skipFirstRow)
	default:
		return parseXLSX(data, skipFirstRow)
	}
}

func parseXLSX(data []byte, skipFirstRow bool) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	sheet := sheets[0]

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	rows, dataIndex := buildRows(grid, skipFirstRow)

	cells, err := f.GetPictureCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read picture cells: %w", err)
	}
	byRow := make(map[int][]byte)
	for _, cell := range cells {
		_, sheetRow, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			continue
		}
		idx, ok := dataIndex[sheetRow-1]
		if !ok {
			continue
		}
		// first picture found for a row is kept
		if _, taken := byRow[idx]; taken {
			continue
		}
		pics, err := f.GetPictures(sheet, cell)
		if err != nil {
			return nil, fmt.Errorf("read picture %s: %w", cell, err)
		}
		for _, p := range pics {
			if len(p.File) > 0 {
				byRow[idx] = p.File
				break
			}
		}
	}

	images := make([]EmbeddedImage, 0, len(byRow))
	for idx, pic := range byRow {
		images = append(images, EmbeddedImage{RowIndex: idx, Data: pic})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].RowIndex < images[j].RowIndex })

	return &Workbook{Format: FormatXLSX, Rows: rows, Images: images}, nil
}

func parseXLS(data []byte, skipFirstRow bool) (wb *Workbook, err error) {
	// the binary reader panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("open xls: %v", r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if book.NumSheets() == 0 {
		return nil, ErrNoSheet
	}
	sh := book.GetSheet(0)
	if sh == nil {
		return nil, ErrNoSheet
	}

	grid := make([][]string, 0, int(sh.MaxRow)+1)
	for r := 0; r <= int(sh.MaxRow); r++ {
		row := sh.Row(r)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		grid = append(grid, cells)
	}

	rows, _ := buildRows(grid, skipFirstRow)
	return &Workbook{Format: FormatXLS, Rows: rows}, nil
}

// buildRows turns a raw grid into keyed rows. The returned map goes from a
// zero-based sheet row to the data index of the row built from it.
func buildRows(grid [][]string, skipFirstRow bool) ([]RawRow, map[int]int) {
	start := 0
	if skipFirstRow {
		start = 1
	}
	for start < len(grid) && isBlankRow(grid[start]) {
		start++
	}
	if start >= len(grid) {
		return nil, map[int]int{}
	}

	headers := makeHeaders(grid[start])
	rows := make([]RawRow, 0, len(grid)-start-1)
	dataIndex := make(map[int]int)
	for r := start + 1; r < len(grid); r++ {
		if isBlankRow(grid[r]) {
			continue
		}
		values := make([]any, len(headers))
		for i := range headers {
			if i < len(grid[r]) {
				values[i] = strings.TrimSpace(grid[r][i])
			} else {
				values[i] = ""
			}
		}
		dataIndex[r] = len(rows)
		rows = append(rows, NewRawRow(len(rows), headers, values))
	}
	return rows, dataIndex
}

// makeHeaders names blank header cells __EMPTY, __EMPTY_1, ... and suffixes
// repeated names with _1, _2, ...
func makeHeaders(cells []string) []string {
	headers := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, c := range cells {
		h := strings.TrimSpace(c)
		if h == "" {
			h = "__EMPTY"
		}
		name := h
		if n, dup := seen[h]; dup {
			name = h + "_" + strconv.Itoa(n)
			for {
				if _, clash := seen[name]; !clash {
					break
				}
				n++
				name = h + "_" + strconv.Itoa(n)
			}
			seen[h] = n + 1
		} else {
			seen[h] = 1
		}
		if name != h {
			seen[name] = 1
		}
		headers[i] = name
	}
	return headers
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
