package patient

import (
	"errors"
	"net/http"

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
	readGroup.GET("/patients", h.ListPatients)

	writeGroup := api.Group("", auth.RequireRole("admin", "reception"))
	writeGroup.DELETE("/patients/:id", h.DeletePatient)

	writeGroup.POST("/patient-editors", h.OpenEditor)
	writeGroup.GET("/patient-editors/:id", h.GetEditor)
	writeGroup.PUT("/patient-editors/:id/form", h.SetForm)
	writeGroup.POST("/patient-editors/:id/reset", h.ResetForm)
	writeGroup.POST("/patient-editors/:id/submit", h.SubmitEditor)
	writeGroup.DELETE("/patient-editors/:id", h.CloseEditor)
}

func (h *Handler) ListPatients(c echo.Context) error {
	roster, err := h.svc.Roster(c.Request().Context())
	if err != nil {
		return upstreamHTTPError(err)
	}
	pg := pagination.FromContext(c)
	start, end := pg.Bounds(len(roster))
	return c.JSON(http.StatusOK, pagination.NewResponse(roster[start:end], len(roster), pg.Limit, pg.Offset))
}

func (h *Handler) DeletePatient(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return upstreamHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type openEditorRequest struct {
	PatientID string `json:"patient_id"`
}

type editorResponse struct {
	SessionID string `json:"session_id"`
	Mode      Mode   `json:"mode"`
	PatientID string `json:"patient_id,omitempty"`
	Form      Form   `json:"form"`
}

func (h *Handler) OpenEditor(c echo.Context) error {
	var req openEditorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, ed, err := h.svc.OpenEditor(c.Request().Context(), req.PatientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return upstreamHTTPError(err)
	}
	return c.JSON(http.StatusCreated, editorResponse{
		SessionID: id.String(),
		Mode:      ed.Mode(),
		PatientID: ed.PatientID(),
		Form:      ed.Form(),
	})
}

func (h *Handler) GetEditor(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	mode, patientID, form, err := h.svc.Editor(id)
	if err != nil {
		return sessionHTTPError(err)
	}
	return c.JSON(http.StatusOK, editorResponse{
		SessionID: id.String(),
		Mode:      mode,
		PatientID: patientID,
		Form:      form,
	})
}

func (h *Handler) SetForm(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var f Form
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetForm(id, f); err != nil {
		return sessionHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ResetForm(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := h.svc.ResetForm(id); err != nil {
		return sessionHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SubmitEditor(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Submit(c.Request().Context(), id)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, verr.Error())
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSubmitInFlight):
			return sessionHTTPError(err)
		default:
			return upstreamHTTPError(err)
		}
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CloseEditor(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := h.svc.CloseEditor(id); err != nil {
		return sessionHTTPError(err)
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

func sessionHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSubmitInFlight):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func upstreamHTTPError(err error) *echo.HTTPError {
	if ue, ok := rest.AsError(err); ok {
		return echo.NewHTTPError(http.StatusBadGateway, ue.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
