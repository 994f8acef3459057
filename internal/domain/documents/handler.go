package documents

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/documents/:kind", h.Generate)
	api.GET("/patients/:id/documents/consent/preview", h.PreviewConsent)
}

type pathResponse struct {
	Path string `json:"path"`
}

type htmlResponse struct {
	HTML string `json:"html"`
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnknownKind):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEmptyContent):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// Generate handles POST /patients/:id/documents/:kind.
func (h *Handler) Generate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	path, err := h.svc.Generate(c.Request().Context(), Kind(c.Param("kind")), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, pathResponse{Path: path})
}

func (h *Handler) PreviewConsent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	html, err := h.svc.PreviewConsentForm(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, htmlResponse{HTML: html})
}
