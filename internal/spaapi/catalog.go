package spaapi

import (
    "context"
    "net/http"
    "net/url"
    "strconv"

    "github.com/iliyamo/spa-booking/internal/model"
)

// ListEspecialidades handles GET /especialidades.
func (c *Client) ListEspecialidades(ctx context.Context) ([]model.Especialidad, error) {
    var rows []especialidadWire
    if err := c.do(ctx, request{op: "list_especialidades", method: http.MethodGet, path: "/especialidades"}, &rows); err != nil {
        return nil, err
    }
    out := make([]model.Especialidad, 0, len(rows))
    for _, r := range rows {
        out = append(out, model.Especialidad{ID: r.ID, Nombre: r.Nombre})
    }
    return out, nil
}

// ListColaboradores handles GET /colaboradores?especialidad={id}.
func (c *Client) ListColaboradores(ctx context.Context, especialidadID int64) ([]model.Colaborador, error) {
    var rows []colaboradorWire
    q := url.Values{"especialidad": {strconv.FormatInt(especialidadID, 10)}}
    if err := c.do(ctx, request{op: "list_colaboradores", method: http.MethodGet, path: "/colaboradores", query: q}, &rows); err != nil {
        return nil, err
    }
    out := make([]model.Colaborador, 0, len(rows))
    for _, r := range rows {
        m := r.model()
        if m.EspecialidadID == 0 {
            m.EspecialidadID = especialidadID
        }
        out = append(out, m)
    }
    return out, nil
}

// ListServicios handles GET /servicios?especialidad={id}.
func (c *Client) ListServicios(ctx context.Context, especialidadID int64) ([]model.Servicio, error) {
    var rows []servicioWire
    q := url.Values{"especialidad": {strconv.FormatInt(especialidadID, 10)}}
    if err := c.do(ctx, request{op: "list_servicios", method: http.MethodGet, path: "/servicios", query: q}, &rows); err != nil {
        return nil, err
    }
    out := make([]model.Servicio, 0, len(rows))
    for _, r := range rows {
        m := r.model()
        if m.EspecialidadID == 0 {
            m.EspecialidadID = especialidadID
        }
        out = append(out, m)
    }
    return out, nil
}
