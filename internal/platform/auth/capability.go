package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Capability names a single flag in the PermissionSet.
type Capability string

const (
	CapViewOnly           Capability = "viewOnly"
	CapCreateProcedureLog Capability = "createProcedureLog"
	CapEditProcedureLog   Capability = "editProcedureLog"
	CapEditSettings       Capability = "editSettings"
	CapManageUsers        Capability = "manageUsers"
)

// Has reports whether the set grants the named capability.
func (p PermissionSet) Has(cap Capability) bool {
	switch cap {
	case CapViewOnly:
		return p.ViewOnly
	case CapCreateProcedureLog:
		return p.CreateProcedureLog
	case CapEditProcedureLog:
		return p.EditProcedureLog
	case CapEditSettings:
		return p.EditSettings
	case CapManageUsers:
		return p.ManageUsers
	}
	return false
}

// RequireCapability returns middleware that rejects the request with 403
// unless the session's capability set grants at least one of the given flags.
func RequireCapability(caps ...Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			perms := PermissionsFromContext(c.Request().Context())
			for _, cap := range caps {
				if perms.Has(cap) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}
