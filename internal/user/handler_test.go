package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/labstack/echo/v4"
)

func TestGetMe(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/me", nil), rec)
	SetCurrentUser(c, CurrentUser{UserID: "6f1c2a3e-0b7d-4c61-9d5e-1a2b3c4d5e6f", Email: "seller@example.com"})

	if err := NewHandler().GetMe(c); err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	var got MeOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "6f1c2a3e-0b7d-4c61-9d5e-1a2b3c4d5e6f" || got.Email != "seller@example.com" {
		t.Errorf("got %+v", got)
	}
}

func TestGetMe_Anonymous(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/me", nil), httptest.NewRecorder())

	err := NewHandler().GetMe(c)
	if apiErr, ok := err.(*rest.ApiErr); !ok || apiErr.Code != http.StatusUnauthorized {
		t.Errorf("got %v", err)
	}
}
