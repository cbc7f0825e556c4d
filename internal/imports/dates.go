package imports

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SpreadsheetEpochOffsetDays is the number of days between the spreadsheet
// epoch (serial day 0 = 1899-12-30) and the Unix epoch.
const SpreadsheetEpochOffsetDays = 25569

// Serials accepted when guessing which column holds the received date:
// 1950-01-01 to 2099-12-31. This is stricter than taking the first column
// that parses at all: without it stock counts and prices in unrelated
// columns read as dates in the early 1900s. An aliased date column accepts
// any serial up to maxSerial.
const (
	minPlausibleSerial = 18264
	maxPlausibleSerial = 73050
)

// maxSerial is 9999-12-31, the last day a stored date column can hold.
const maxSerial = 2958465

var (
	isoDatePattern      = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	compactDatePattern  = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})`)
	japaneseDatePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日?`)
	usDatePattern       = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
	eightDigits         = regexp.MustCompile(`^\d{8}$`)
)

// SerialToDate converts a spreadsheet serial number to the UTC calendar day it
// names. Fractions (time of day) are dropped.
func SerialToDate(serial float64) time.Time {
	days := int64(math.Floor(serial)) - SpreadsheetEpochOffsetDays
	return time.Unix(days*86400, 0).UTC()
}

// ParseDate converts a date cell to YYYY-MM-DD. Native times use their own
// calendar fields, numbers are spreadsheet serials and strings are matched
// against the known textual layouts in order.
func ParseDate(v any) (string, bool) {
	return parseDateCell(v, false)
}

func parseDateCell(v any, guessing bool) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case time.Time:
		if t.IsZero() || t.Year() < 1 || t.Year() > 9999 {
			return "", false
		}
		return formatYMD(t.Year(), int(t.Month()), t.Day()), true
	case float64:
		return serialDate(t, guessing)
	case float32:
		return serialDate(float64(t), guessing)
	case int:
		return serialDate(float64(t), guessing)
	case int64:
		return serialDate(float64(t), guessing)
	case string:
		return parseDateString(t, guessing)
	}
	return "", false
}

func serialDate(serial float64, guessing bool) (string, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 || serial >= maxSerial+1 {
		return "", false
	}
	if guessing && (serial < minPlausibleSerial || serial > maxPlausibleSerial) {
		return "", false
	}
	d := SerialToDate(serial)
	return formatYMD(d.Year(), int(d.Month()), d.Day()), true
}

func parseDateString(raw string, guessing bool) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// 20230101 reads as a date, not as a serial in the year 57000.
	if !eightDigits.MatchString(s) {
		if num, err := strconv.ParseFloat(s, 64); err == nil {
			return serialDate(num, guessing)
		}
	}

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		if out, ok := ymd(m[1], m[2], m[3]); ok {
			return out, true
		}
	}
	if m := compactDatePattern.FindStringSubmatch(s); m != nil {
		if out, ok := ymd(m[1], m[2], m[3]); ok {
			return out, true
		}
	}
	if m := japaneseDatePattern.FindStringSubmatch(s); m != nil {
		if out, ok := ymd(m[1], m[2], m[3]); ok {
			return out, true
		}
	}
	if m := usDatePattern.FindStringSubmatch(s); m != nil {
		if out, ok := ymd(m[3], m[1], m[2]); ok {
			return out, true
		}
	}
	return "", false
}

func ymd(y, m, d string) (string, bool) {
	year, err := strconv.Atoi(y)
	if err != nil || year < 1 || year > 9999 {
		return "", false
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	day, err := strconv.Atoi(d)
	if err != nil || day < 1 {
		return "", false
	}
	// rejects 2023-02-30 and the like
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return "", false
	}
	return formatYMD(year, month, day), true
}

func formatYMD(y, m, d int) string {
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}
