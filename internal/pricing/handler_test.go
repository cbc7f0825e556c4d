package pricing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/labstack/echo/v4"
)

func TestQuote(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/pricing/quote?costYen=500&price=1000&quantity=2&feeRate=10&rounding=floor&shipping=210&material=30", nil)
	rec := httptest.NewRecorder()

	if err := NewHandler().Quote(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Quote: %v", err)
	}

	var got Quote
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Quote{
		FeeYen:      100,
		GrossProfit: CalcGrossProfit(1000, 2, 100, 210, 30, 500),
		Margin20:    600,
		Margin30:    650,
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestQuote_BadRounding(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/pricing/quote?price=1000&rounding=banker", nil)

	err := NewHandler().Quote(e.NewContext(req, httptest.NewRecorder()))
	apiErr, ok := err.(*rest.ApiErr)
	if !ok || apiErr.Code != http.StatusBadRequest || len(apiErr.Causes) != 1 {
		t.Errorf("got %v", err)
	}
}
