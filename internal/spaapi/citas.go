package spaapi

import (
    "context"
    "fmt"
    "net/http"

    "github.com/iliyamo/spa-booking/internal/model"
)

// CreateCitaInput is the body of POST /citas.
type CreateCitaInput struct {
    PacienteID int64  `json:"idPaciente"`
    Fecha      string `json:"fecha"`
    Hora       string `json:"hora"`
}

// CreateDetalleInput is the body of POST /detalle-citas.
// PagarConMembresia is a pointer so that it is left out of the JSON
// entirely, rather than sent as false, for services paid normally.
type CreateDetalleInput struct {
    CitaID            int64 `json:"idCita"`
    ServicioID        int64 `json:"idServicio"`
    ColaboradorID     int64 `json:"idColaborador"`
    PagarConMembresia *bool `json:"pagarConMembresia,omitempty"`
}

// CreateCita handles POST /citas and returns the created appointment.
func (c *Client) CreateCita(ctx context.Context, in CreateCitaInput) (model.Cita, error) {
    var out model.Cita
    if err := c.do(ctx, request{op: "create_cita", method: http.MethodPost, path: "/citas", body: in}, &out); err != nil {
        return model.Cita{}, err
    }
    if out.ID == 0 {
        return model.Cita{}, fmt.Errorf("create_cita: backend response carries no id")
    }
    if out.PacienteID == 0 {
        out.PacienteID = in.PacienteID
    }
    if out.Fecha == "" {
        out.Fecha, out.Hora = in.Fecha, in.Hora
    }
    return out, nil
}

// CreateDetalleCita handles POST /detalle-citas.
func (c *Client) CreateDetalleCita(ctx context.Context, in CreateDetalleInput) (model.DetalleCita, error) {
    var out model.DetalleCita
    if err := c.do(ctx, request{op: "create_detalle_cita", method: http.MethodPost, path: "/detalle-citas", body: in}, &out); err != nil {
        return model.DetalleCita{}, err
    }
    if out.CitaID == 0 {
        out.CitaID, out.ServicioID, out.ColaboradorID = in.CitaID, in.ServicioID, in.ColaboradorID
        out.EsConMembresia = in.PagarConMembresia != nil && *in.PagarConMembresia
    }
    return out, nil
}
