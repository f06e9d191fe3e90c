package model

// Cita is a scheduled slot for one patient.  It is created before any of
// its line items.  Later status transitions (confirmed, completed,
// cancelled) are owned by the backend and the administrator UI.
//
// Fields:
//  ID         – backend identifier returned by POST /citas.
//  PacienteID – patient the appointment belongs to.
//  Fecha      – date in YYYY-MM-DD.
//  Hora       – time of day in HH:MM.
//  Estado     – backend status string (pendiente on creation).
type Cita struct {
    ID         int64  `json:"id"`
    PacienteID int64  `json:"idPaciente"`
    Fecha      string `json:"fecha"`
    Hora       string `json:"hora"`
    Estado     string `json:"estado,omitempty"`
}

// DetalleCita is one (appointment, service, collaborator) line item.
// ConsumoBeneficioID is set by the backend when the line draws down a
// membership benefit.
type DetalleCita struct {
    ID                 int64  `json:"id"`
    CitaID             int64  `json:"idCita"`
    ServicioID         int64  `json:"idServicio"`
    ColaboradorID      int64  `json:"idColaborador"`
    EsConMembresia     bool   `json:"esConMembresia"`
    ConsumoBeneficioID *int64 `json:"idConsumoBeneficio,omitempty"`
}
