package middleware

import (
	"errors"
	"net/http"
	"strings"

	auth "sushiramen/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // model.Role
	CtxTokenVersionKey = "token_version" // int
)

const (
	CodeMissingToken  = "MISSING_TOKEN"
	CodeTokenExpired  = "TOKEN_EXPIRED"
	CodeInvalidToken  = "INVALID_TOKEN"
	CodeUserNotFound  = "USER_NOT_FOUND"
	CodeAdminRequired = "ADMIN_REQUIRED"
)

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Bearer形式か確認してtokenを抜く
			rawToken, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return deny(c, http.StatusUnauthorized, CodeMissingToken, "Token de autorización requerido")
			}

			//署名・期限・claimsを検証する
			claims, err := auth.ParseAccessToken(secret, rawToken)
			if errors.Is(err, auth.ErrTokenExpired) {
				return deny(c, http.StatusUnauthorized, CodeTokenExpired, "Token expirado")
			}
			if err != nil {
				return deny(c, http.StatusUnauthorized, CodeInvalidToken, "Token inválido")
			}
			userID, err := claims.UserID()
			if err != nil || userID <= 0 || claims.TokenVersion < 0 {
				return deny(c, http.StatusUnauthorized, CodeInvalidToken, "Token inválido")
			}

			//contextへ保存（roleはTokenVersionGuardでDBの値に置き換える）
			c.Set(CtxUserIDKey, userID)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func deny(c echo.Context, status int, code string, msg string) error {
	return c.JSON(status, errorResponse{Success: false, Error: msg, Code: code})
}
