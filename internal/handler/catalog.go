package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/model"
)

// CatalogSource is the catalog loader used by the public routes.
type CatalogSource interface {
    Especialidades(ctx context.Context) ([]model.Especialidad, error)
    Colaboradores(ctx context.Context, especialidadID int64) ([]model.Colaborador, error)
    Servicios(ctx context.Context, especialidadID int64) ([]model.Servicio, error)
}

// CatalogHandler serves the specialty, collaborator and service lists a
// patient picks from.  These routes are public and response-cached.
type CatalogHandler struct {
    Catalog CatalogSource
    Log     *zap.Logger
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog CatalogSource, log *zap.Logger) *CatalogHandler {
    if catalog == nil {
        panic("nil catalog passed to NewCatalogHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &CatalogHandler{Catalog: catalog, Log: log}
}

// ListEspecialidades handles GET /v1/especialidades.
func (h *CatalogHandler) ListEspecialidades(c echo.Context) error {
    list, err := h.Catalog.Especialidades(c.Request().Context())
    return h.respond(c, list, err)
}

// ListColaboradores handles GET /v1/especialidades/:id/colaboradores.
// A backend failure still yields an empty list next to the message, so
// the form can render an empty picker.
func (h *CatalogHandler) ListColaboradores(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "id de especialidad inválido"})
    }
    list, err := h.Catalog.Colaboradores(c.Request().Context(), id)
    return h.respond(c, list, err)
}

// ListServicios handles GET /v1/especialidades/:id/servicios.
func (h *CatalogHandler) ListServicios(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "id de especialidad inválido"})
    }
    list, err := h.Catalog.Servicios(c.Request().Context(), id)
    return h.respond(c, list, err)
}

func (h *CatalogHandler) respond(c echo.Context, list interface{}, err error) error {
    if err != nil {
        return respondError(c, h.Log, err, echo.Map{"data": []struct{}{}})
    }
    return c.JSON(http.StatusOK, echo.Map{"data": list})
}
