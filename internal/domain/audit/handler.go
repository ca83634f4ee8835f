package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/NLight-n/IRLog/internal/platform/auth"
	"github.com/NLight-n/IRLog/pkg/pagination"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireCapability(auth.CapManageUsers))
	admin.GET("/audit", h.List)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{
		ActionType:    c.QueryParam("actionType"),
		AffectedTable: c.QueryParam("table"),
	}
	if v := c.QueryParam("userId"); v != "" {
		uid, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
		}
		f.UserID = uid
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		f.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		// Inclusive end of day.
		f.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	items, total, err := h.repo.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
