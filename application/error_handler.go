package application

import (
	"errors"
	"net/http"

	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (app *Application) CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var code int
	var message string

	var apiErr *rest.ApiErr
	var he *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
		message = apiErr.Message
		if code >= http.StatusInternalServerError {
			app.Logger.Error("api error",
				zap.Int("code", apiErr.Code),
				zap.String("message", apiErr.Message),
				zap.Any("causes", apiErr.Causes),
			)
		}
		// keep validation causes for the client
		if len(apiErr.Causes) > 0 {
			_ = c.JSON(code, apiErr)
			return
		}
	case errors.As(err, &he):
		code = he.Code
		switch he.Code {
		case http.StatusUnauthorized:
			message = "認証に失敗しました"
		default:
			if msg, ok := he.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(he.Code)
			}
		}
	default:
		code = http.StatusInternalServerError
		message = "サーバー内部エラーが発生しました"
		app.Logger.Error("unhandled error", zap.Error(err))
	}

	_ = c.JSON(code, &rest.ApiErr{
		Message: message,
		Err:     http.StatusText(code),
		Code:    code,
	})
}
