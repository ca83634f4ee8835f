package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	UsernameKey    contextKey = "username"
	PermissionsKey contextKey = "permissions"
)

// PermissionSet is the capability set resolved for an authenticated session.
// Every mutating handler gates on one of these flags.
type PermissionSet struct {
	ViewOnly           bool `json:"viewOnly" db:"view_only"`
	CreateProcedureLog bool `json:"createProcedureLog" db:"create_procedure_log"`
	EditProcedureLog   bool `json:"editProcedureLog" db:"edit_procedure_log"`
	EditSettings       bool `json:"editSettings" db:"edit_settings"`
	ManageUsers        bool `json:"manageUsers" db:"manage_users"`
}

type Claims struct {
	jwt.RegisteredClaims
	UserID      int           `json:"user_id"`
	Username    string        `json:"username"`
	Permissions PermissionSet `json:"permissions"`
}

// IssueToken creates a signed HS256 session token carrying the user's
// capability set.
func IssueToken(secret []byte, userID int, username string, perms PermissionSet, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:      userID,
		Username:    username,
		Permissions: perms,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// JWTMiddleware validates the bearer token and places the user identity and
// capability set on the request context.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			ctx = context.WithValue(ctx, PermissionsKey, claims.Permissions)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevAuthMiddleware is a permissive middleware for development that gives
// unauthenticated requests a full capability set.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, 1)
			ctx = context.WithValue(ctx, UsernameKey, "dev-user")
			ctx = context.WithValue(ctx, PermissionsKey, PermissionSet{
				ViewOnly:           true,
				CreateProcedureLog: true,
				EditProcedureLog:   true,
				EditSettings:       true,
				ManageUsers:        true,
			})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func UserIDFromContext(ctx context.Context) int {
	uid, _ := ctx.Value(UserIDKey).(int)
	return uid
}

func UsernameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(UsernameKey).(string)
	return name
}

func PermissionsFromContext(ctx context.Context) PermissionSet {
	perms, _ := ctx.Value(PermissionsKey).(PermissionSet)
	return perms
}
