package procedure

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/NLight-n/IRLog/internal/platform/auth"
	"github.com/NLight-n/IRLog/pkg/columns"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/procedures", h.List)
	api.GET("/procedures/names", h.Names)
	api.GET("/procedures/export", h.Export)
	api.GET("/procedures/file/:fileName", h.DownloadFile)
	api.GET("/procedures/:id", h.Get)
	api.GET("/analytics", h.Analytics, auth.RequireCapability(auth.CapViewOnly))

	api.POST("/procedures/upload", h.UploadFile,
		auth.RequireCapability(auth.CapCreateProcedureLog, auth.CapEditProcedureLog))

	create := api.Group("", auth.RequireCapability(auth.CapCreateProcedureLog))
	create.POST("/procedures", h.Create)

	edit := api.Group("", auth.RequireCapability(auth.CapEditProcedureLog))
	edit.PUT("/procedures/:id", h.Update)
	edit.DELETE("/procedures/:id", h.Delete)
}

// criteriaFromQuery builds the filter from query parameters. Missing
// parameters leave their predicate inactive.
func criteriaFromQuery(c echo.Context) (Criteria, error) {
	crit := Criteria{
		Search:        c.QueryParam("search"),
		Status:        c.QueryParam("status"),
		Modality:      c.QueryParam("modality"),
		ProcedureName: c.QueryParam("procedureName"),
	}
	if v := c.QueryParam("searchFields"); v != "" {
		crit.SearchFields = strings.Split(v, ",")
	}
	kind := RangeKind(c.QueryParam("dateFilter"))
	if kind == "" {
		kind = RangeAll
	}
	crit.DateRange.Kind = kind
	if kind == RangeCustom {
		if v := c.QueryParam("from"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return crit, fmt.Errorf("invalid from date")
			}
			crit.DateRange.From = &t
		}
		if v := c.QueryParam("to"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return crit, fmt.Errorf("invalid to date")
			}
			crit.DateRange.To = &t
		}
	}
	if v := c.QueryParam("refPhysician"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return crit, fmt.Errorf("invalid refPhysician")
		}
		crit.RefPhysicianID = id
	}
	if v := c.QueryParam("doneBy"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return crit, fmt.Errorf("invalid doneBy")
		}
		crit.DoneByID = id
	}
	return crit, nil
}

func sortFromQuery(c echo.Context) (string, Direction) {
	dir := Asc
	if c.QueryParam("dir") == "desc" {
		dir = Desc
	}
	return c.QueryParam("sort"), dir
}

func (h *Handler) List(c echo.Context) error {
	crit, err := criteriaFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sortCol, dir := sortFromQuery(c)
	items, err := h.svc.Query(c.Request().Context(), crit, sortCol, dir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Names(c echo.Context) error {
	names, err := h.svc.ProcedureNames(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string][]string{"procedureNames": names})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "procedure log not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Create(c echo.Context) error {
	var p Log
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != 0 {
		p.CreatedByID = &uid
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Log
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Export streams the filtered, sorted table as an xlsx attachment. The
// columns parameter is a comma-separated ordered list of column keys; absent,
// the default column set is exported.
func (h *Handler) Export(c echo.Context) error {
	crit, err := criteriaFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sortCol, dir := sortFromQuery(c)

	var visible []columns.Column
	if v := c.QueryParam("columns"); v != "" {
		defaults := columns.Defaults()
		byKey := make(map[string]columns.Column, len(defaults))
		for _, d := range defaults {
			byKey[d.Key] = d
		}
		for _, key := range strings.Split(v, ",") {
			if col, ok := byKey[key]; ok {
				col.Visible = true
				visible = append(visible, col)
			}
		}
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="procedure_logs.xlsx"`)
	res.WriteHeader(http.StatusOK)
	return h.svc.Export(c.Request().Context(), crit, sortCol, dir, visible, res)
}

// UploadFile attaches a multipart file to a procedure log entry and returns
// the download URL.
func (h *Handler) UploadFile(c echo.Context) error {
	procID, err := strconv.Atoi(c.FormValue("procedureID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file or procedureID")
	}
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file or procedureID")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	url, err := h.svc.AttachFile(c.Request().Context(), procID, file.Filename, src, file.Size, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"fileUrl": url})
}

// DownloadFile streams a stored attachment inline.
func (h *Handler) DownloadFile(c echo.Context) error {
	name := c.Param("fileName")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing fileName")
	}
	rc, err := h.svc.OpenFile(c.Request().Context(), name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename=%q`, name))
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, rc)
}

// Analytics serves the chart data behind the analytics page. The type
// parameter picks the aggregation.
func (h *Handler) Analytics(c echo.Context) error {
	ctx := c.Request().Context()
	modality := c.QueryParam("modality")
	if modality == "All" {
		modality = ""
	}

	var from, to time.Time
	if v := c.QueryParam("dateFrom"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid dateFrom")
		}
		from = t
	}
	if v := c.QueryParam("dateTo"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid dateTo")
		}
		to = t.Add(24*time.Hour - time.Second)
	}

	var chart *Chart
	var err error
	switch c.QueryParam("type") {
	case "monthly":
		chart, err = h.svc.MonthlyTrend(ctx, modality)
	case "modality":
		chart, err = h.svc.ModalityBreakdown(ctx, from, to)
	case "physician":
		chart, err = h.svc.ReferringPhysicianBreakdown(ctx, from, to)
	case "yearly":
		chart, err = h.svc.YearlyTrend(ctx, modality)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown analytics type")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, chart)
}
