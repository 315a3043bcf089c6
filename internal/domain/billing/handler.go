package billing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
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
	readGroup.GET("/bills", h.ListBills)

	draftGroup := api.Group("", auth.RequireRole("admin", "billing"))
	draftGroup.POST("/bill-drafts", h.OpenDraft)
	draftGroup.GET("/bill-drafts/:id", h.GetDraft)
	draftGroup.PUT("/bill-drafts/:id/patient", h.SelectPatient)
	draftGroup.POST("/bill-drafts/:id/items", h.AddItem)
	draftGroup.PATCH("/bill-drafts/:id/items/:pos", h.UpdateItem)
	draftGroup.DELETE("/bill-drafts/:id/items/:pos", h.RemoveItem)
	draftGroup.POST("/bill-drafts/:id/submit", h.SubmitDraft)
	draftGroup.DELETE("/bill-drafts/:id", h.CloseDraft)
}

func (h *Handler) ListBills(c echo.Context) error {
	bills, err := h.svc.Bills(c.Request().Context())
	if err != nil {
		return upstreamHTTPError(err)
	}
	pg := pagination.FromContext(c)
	start, end := pg.Bounds(len(bills))
	return c.JSON(http.StatusOK, pagination.NewResponse(bills[start:end], len(bills), pg.Limit, pg.Offset))
}

type draftResponse struct {
	SessionID string     `json:"session_id"`
	State     State      `json:"state"`
	PatientID string     `json:"patient_id,omitempty"`
	Items     []LineItem `json:"items"`
	Total     float64    `json:"total"`
}

func (h *Handler) draftJSON(c echo.Context, status int, id uuid.UUID, d *Draft) error {
	total, err := h.svc.Total(c.Request().Context(), id)
	if err != nil && !errors.Is(err, ErrDraftNotFound) {
		// Catalog unavailable; show the draft with an unpriced total.
		total = 0
	}
	return c.JSON(status, draftResponse{
		SessionID: id.String(),
		State:     d.State(),
		PatientID: d.PatientID(),
		Items:     d.Items(),
		Total:     total,
	})
}

func (h *Handler) OpenDraft(c echo.Context) error {
	id := h.svc.OpenDraft()
	d, err := h.svc.Draft(id)
	if err != nil {
		return draftHTTPError(err)
	}
	return h.draftJSON(c, http.StatusCreated, id, d)
}

func (h *Handler) GetDraft(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Draft(id)
	if err != nil {
		return draftHTTPError(err)
	}
	return h.draftJSON(c, http.StatusOK, id, d)
}

type selectPatientRequest struct {
	PatientID string `json:"patient_id"`
}

func (h *Handler) SelectPatient(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var req selectPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Draft(id)
	if err != nil {
		return draftHTTPError(err)
	}
	if err := d.SelectPatient(req.PatientID); err != nil {
		return draftHTTPError(err)
	}
	return h.draftJSON(c, http.StatusOK, id, d)
}

func (h *Handler) AddItem(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Draft(id)
	if err != nil {
		return draftHTTPError(err)
	}
	if err := d.AddItem(); err != nil {
		return draftHTTPError(err)
	}
	return h.draftJSON(c, http.StatusOK, id, d)
}

func (h *Handler) UpdateItem(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	pos, err := itemPos(c)
	if err != nil {
		return err
	}
	var patch ItemPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Draft(id)
	if err != nil {
		return draftHTTPError(err)
	}
	if err := d.UpdateItem(pos, patch); err != nil {
		return draftHTTPError(err)
	}
	return h.draftJSON(c, http.StatusOK, id, d)
}

func (h *Handler) RemoveItem(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	pos, err := itemPos(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Draft(id)
	if err != nil {
		return draftHTTPError(err)
	}
	if err := d.RemoveItem(pos); err != nil {
		return draftHTTPError(err)
	}
	return h.draftJSON(c, http.StatusOK, id, d)
}

func (h *Handler) SubmitDraft(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	bill, err := h.svc.Submit(c.Request().Context(), id)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			if verr.Kind == PatientNotFound {
				return echo.NewHTTPError(http.StatusConflict, verr.Error())
			}
			return echo.NewHTTPError(http.StatusUnprocessableEntity, verr.Error())
		default:
			return draftHTTPError(err)
		}
	}
	return c.JSON(http.StatusCreated, bill)
}

func (h *Handler) CloseDraft(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := h.svc.CloseDraft(id); err != nil {
		return draftHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func sessionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	return id, nil
}

func itemPos(c echo.Context) (int, error) {
	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid item position")
	}
	return pos, nil
}

func draftHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrDraftNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPositionOutOfRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSubmitInFlight), errors.Is(err, ErrDraftClosed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return upstreamHTTPError(err)
}

func upstreamHTTPError(err error) *echo.HTTPError {
	if ue, ok := rest.AsError(err); ok {
		return echo.NewHTTPError(http.StatusBadGateway, ue.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
