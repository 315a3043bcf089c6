package medicine

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/rest"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "billing", "reception"))
	readGroup.GET("/medicines", h.ListMedicines)

	writeGroup := api.Group("", auth.RequireRole("admin", "billing"))
	writeGroup.POST("/medicines", h.CreateMedicine)
	writeGroup.PATCH("/medicines/:id", h.UpdateMedicine)
	writeGroup.DELETE("/medicines/:id", h.DeleteMedicine)
}

func (h *Handler) ListMedicines(c echo.Context) error {
	meds, err := h.svc.List(c.Request().Context())
	if err != nil {
		return upstreamHTTPError(err)
	}
	pg := pagination.FromContext(c)
	start, end := pg.Bounds(len(meds))
	return c.JSON(http.StatusOK, pagination.NewResponse(meds[start:end], len(meds), pg.Limit, pg.Offset))
}

func (h *Handler) CreateMedicine(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		if _, ok := rest.AsError(err); ok {
			return upstreamHTTPError(err)
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Update(c.Request().Context(), id, &req)
	if err != nil {
		if _, ok := rest.AsError(err); ok {
			return upstreamHTTPError(err)
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMedicine(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return upstreamHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// upstreamHTTPError surfaces a records-service failure to the dashboard with
// its human-readable message intact.
func upstreamHTTPError(err error) *echo.HTTPError {
	if ue, ok := rest.AsError(err); ok {
		return echo.NewHTTPError(http.StatusBadGateway, ue.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
