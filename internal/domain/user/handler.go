package user

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/NLight-n/IRLog/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes registers the endpoints reachable without a session.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/login", h.Login)
	g.POST("/setup", h.Setup)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/profile", h.Profile)
	api.PATCH("/profile", h.UpdateProfile)

	api.GET("/users", h.List, auth.RequireCapability(auth.CapViewOnly))

	admin := api.Group("", auth.RequireCapability(auth.CapManageUsers))
	admin.POST("/users", h.Create)
	admin.GET("/users/:id", h.Get)
	admin.PUT("/users/:id", h.Update)
	admin.DELETE("/users/:id", h.Delete)
}

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, u, err := h.svc.Login(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  u,
	})
}

// Setup creates the first administrator account. Rejected once any user
// exists.
func (h *Handler) Setup(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.EnsureAdmin(c.Request().Context(), body.Username, body.Password, body.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in AdminUpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.AdminUpdate(c.Request().Context(), id, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Profile(c echo.Context) error {
	u, err := h.svc.Profile(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var in ProfileUpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}
