package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueAndValidateToken(t *testing.T) {
	perms := PermissionSet{ViewOnly: true, EditProcedureLog: true}
	token, err := IssueToken(testSecret, 42, "radiologist", perms, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/worklist", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID int
	var gotPerms PermissionSet
	handler := JWTMiddleware(testSecret)(func(c echo.Context) error {
		ctx := c.Request().Context()
		gotID = UserIDFromContext(ctx)
		gotPerms = PermissionsFromContext(ctx)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != 42 {
		t.Errorf("expected user id 42, got %d", gotID)
	}
	if !gotPerms.EditProcedureLog || gotPerms.ManageUsers {
		t.Errorf("unexpected permissions: %+v", gotPerms)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := JWTMiddleware(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	token, _ := IssueToken([]byte("another-secret-another-secret-xx"), 1, "u", PermissionSet{}, time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := JWTMiddleware(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name     string
		perms    PermissionSet
		required []Capability
		wantCode int
	}{
		{"granted", PermissionSet{EditProcedureLog: true}, []Capability{CapEditProcedureLog}, http.StatusOK},
		{"denied", PermissionSet{ViewOnly: true}, []Capability{CapManageUsers}, http.StatusForbidden},
		{"any of", PermissionSet{EditSettings: true}, []Capability{CapManageUsers, CapEditSettings}, http.StatusOK},
		{"empty set", PermissionSet{}, []Capability{CapViewOnly}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _ := IssueToken(testSecret, 7, "u", tt.perms, time.Hour)
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			chain := JWTMiddleware(testSecret)(RequireCapability(tt.required...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}))

			err := chain(c)
			code := rec.Code
			if he, ok := err.(*echo.HTTPError); ok {
				code = he.Code
			}
			if code != tt.wantCode {
				t.Errorf("expected status %d, got %d (err=%v)", tt.wantCode, code, err)
			}
		})
	}
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !VerifyPassword("hunter2!", hash) {
		t.Error("expected password to verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
