package user

import (
	"net/http"

	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetMe handles GET /me
func (h *Handler) GetMe(c echo.Context) error {
	currentUser, err := GetCurrentUser(c)
	if err != nil {
		return rest.NewUnauthorizedRequestError("ログインが必要です")
	}

	return c.JSON(http.StatusOK, MeOutput{
		ID:    currentUser.UserID,
		Email: currentUser.Email,
	})
}
