package auth

import (
	"time"

	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims is what the identity provider puts in the access token.
// The service only verifies tokens; it never issues them outside tests and
// tooling.
type JWTCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func NewClaims(userID, email string, tokenExp int) *JWTCustomClaims {
	return &JWTCustomClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Second * time.Duration(tokenExp))),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func GenerateJWT(claims *JWTCustomClaims, jwtSecret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", err
	}
	return t, nil
}

func GetClaims(c echo.Context) (*JWTCustomClaims, *rest.ApiErr) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, rest.NewUnauthorizedRequestError("トークンが不正です")
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok {
		return nil, rest.NewUnauthorizedRequestError("クレームが不正です")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}
