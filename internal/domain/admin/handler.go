// Package admin exposes the database backup and restore endpoints.
package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/NLight-n/IRLog/internal/platform/auth"
	"github.com/NLight-n/IRLog/internal/platform/db"
)

type Handler struct {
	backup *db.Backup
	logger zerolog.Logger
}

func NewHandler(backup *db.Backup, logger zerolog.Logger) *Handler {
	return &Handler{backup: backup, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireCapability(auth.CapManageUsers))
	admin.GET("/backup", h.Backup)
	admin.POST("/restore", h.Restore)
}

// Backup streams a plain-SQL dump of the database as a download.
func (h *Handler) Backup(c echo.Context) error {
	ctx := c.Request().Context()
	filename := fmt.Sprintf("irlog_backup_%s.sql", time.Now().UTC().Format("20060102_150405"))

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/sql")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	res.WriteHeader(http.StatusOK)

	h.logger.Info().
		Int("user_id", auth.UserIDFromContext(ctx)).
		Msg("database backup started")
	if err := h.backup.Dump(ctx, res); err != nil {
		// Headers are already out; the truncated body signals failure.
		h.logger.Error().Err(err).Msg("database backup failed")
		return err
	}
	return nil
}

// Restore replays an uploaded plain-SQL dump against the database. The dump
// drops and recreates objects, so a failed restore can leave the database in
// a partial state; callers should take a backup first.
func (h *Handler) Restore(c echo.Context) error {
	ctx := c.Request().Context()

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "backup file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	h.logger.Info().
		Int("user_id", auth.UserIDFromContext(ctx)).
		Str("filename", file.Filename).
		Msg("database restore started")
	if err := h.backup.Restore(ctx, src); err != nil {
		h.logger.Error().Err(err).Msg("database restore failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "restore completed"})
}
