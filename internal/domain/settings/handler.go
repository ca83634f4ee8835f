package settings

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NLight-n/IRLog/internal/domain/audit"
	"github.com/NLight-n/IRLog/internal/platform/auth"
)

type Handler struct {
	svc      *Service
	recorder *audit.Recorder
}

func NewHandler(svc *Service, recorder *audit.Recorder) *Handler {
	return &Handler{svc: svc, recorder: recorder}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/settings", h.Get)

	write := api.Group("", auth.RequireCapability(auth.CapEditSettings))
	write.PATCH("/settings", h.Update)

	api.POST("/settings/logo", h.UploadLogo, auth.RequireCapability(auth.CapManageUsers))
}

// RegisterPublicRoutes exposes the logo without a session so the login page
// can show it.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/logo", h.Logo)
}

func (h *Handler) Get(c echo.Context) error {
	s, err := h.svc.Get(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Update(c echo.Context) error {
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	before, err := h.svc.Get(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	updated, err := h.svc.Update(ctx, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.recorder.Record(ctx, audit.ActionUpdate, "system_settings", "1", before, updated)
	return c.JSON(http.StatusOK, updated)
}

// UploadLogo replaces the application logo from a multipart upload.
func (h *Handler) UploadLogo(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "logo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxLogoBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if err := h.svc.UpdateLogo(ctx, data, file.Header.Get("Content-Type")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.recorder.Record(ctx, audit.ActionUpdate, "system_settings", "1", nil,
		map[string]string{"appLogoMimeType": file.Header.Get("Content-Type")})
	return c.JSON(http.StatusOK, map[string]string{"message": "logo updated"})
}

// Logo serves the stored logo image.
func (h *Handler) Logo(c echo.Context) error {
	l, err := h.svc.GetLogo(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no logo found")
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return c.Blob(http.StatusOK, l.MimeType, l.Data)
}
