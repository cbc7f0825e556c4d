package imports

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"serial", 44927.0, "2023-01-01", true},
		{"serial with time", 44927.75, "2023-01-01", true},
		{"serial string", "44927", "2023-01-01", true},
		{"int serial", 45000, "2023-03-15", true},
		{"iso", "2024-03-05", "2024-03-05", true},
		{"slashes", "2024/3/5", "2024-03-05", true},
		{"iso with time", "2024-03-05 10:00", "2024-03-05", true},
		{"compact", "20240305", "2024-03-05", true},
		{"japanese", "2024年3月5日", "2024-03-05", true},
		{"japanese without day mark", "発送 2024年12月1", "2024-12-01", true},
		{"us", "3/5/2024", "2024-03-05", true},
		{"native time", time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC), "2024-03-05", true},
		{"impossible day", "2023-02-30", "", false},
		{"bad month", "2024/13/01", "", false},
		{"zero", 0.0, "", false},
		{"negative", -5.0, "", false},
		{"last storable day", 2958465.0, "9999-12-31", true},
		{"serial past year 9999", 10000000000.0, "", false},
		{"serial string past year 9999", "10000000000", "", false},
		{"year zero", "0000-01-01", "", false},
		{"native time past year 9999", time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), "", false},
		{"text", "未定", "", false},
		{"empty", "", "", false},
		{"nil", nil, "", false},
		{"bool", true, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseDate(%v) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSerialToDate(t *testing.T) {
	if got := SerialToDate(SpreadsheetEpochOffsetDays); !got.Equal(time.Unix(0, 0).UTC()) {
		t.Errorf("offset serial = %v, want unix epoch", got)
	}
	if got := SerialToDate(1).Format("2006-01-02"); got != "1899-12-31" {
		t.Errorf("serial 1 = %s", got)
	}
}

func TestParseDateCell_GuessingWindow(t *testing.T) {
	if _, ok := parseDateCell(100.0, true); ok {
		t.Error("small serial should not pass as a guessed date")
	}
	if got, ok := parseDateCell(100.0, false); !ok || got != "1900-04-09" {
		t.Errorf("explicit column: got %q, %v", got, ok)
	}
	if _, ok := parseDateCell(80000.0, true); ok {
		t.Error("far future serial should not pass as a guessed date")
	}
}
