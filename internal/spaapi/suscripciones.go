package spaapi

import (
    "context"
    "net/http"
    "net/url"
    "strconv"

    "github.com/iliyamo/spa-booking/internal/model"
)

// ListSuscripciones handles GET /suscripciones?paciente={id}.
func (c *Client) ListSuscripciones(ctx context.Context, pacienteID int64) ([]model.Suscripcion, error) {
    var rows []suscripcionWire
    q := url.Values{"paciente": {strconv.FormatInt(pacienteID, 10)}}
    if err := c.do(ctx, request{op: "list_suscripciones", method: http.MethodGet, path: "/suscripciones", query: q}, &rows); err != nil {
        return nil, err
    }
    out := make([]model.Suscripcion, 0, len(rows))
    for _, r := range rows {
        out = append(out, r.model())
    }
    return out, nil
}

// ListConsumosBeneficio handles GET /consumos-beneficio?suscripcion={id}.
func (c *Client) ListConsumosBeneficio(ctx context.Context, suscripcionID int64) ([]model.ConsumoBeneficio, error) {
    var rows []consumoWire
    q := url.Values{"suscripcion": {strconv.FormatInt(suscripcionID, 10)}}
    if err := c.do(ctx, request{op: "list_consumos_beneficio", method: http.MethodGet, path: "/consumos-beneficio", query: q}, &rows); err != nil {
        return nil, err
    }
    out := make([]model.ConsumoBeneficio, 0, len(rows))
    for _, r := range rows {
        b := r.model()
        if b.SuscripcionID == 0 {
            b.SuscripcionID = suscripcionID
        }
        out = append(out, b)
    }
    return out, nil
}
