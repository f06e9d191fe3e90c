package model

// EstadoSuscripcionActiva is the only subscription status that grants
// benefits.
const EstadoSuscripcionActiva = "activa"

// Suscripcion is a patient's membership plan.
type Suscripcion struct {
    ID         int64  `json:"id"`
    PacienteID int64  `json:"idPaciente"`
    Estado     string `json:"estado"` // activa, vencida, cancelada...
    Plan       string `json:"plan,omitempty"`
}

// Activa reports whether the subscription currently grants benefits.
func (s Suscripcion) Activa() bool { return s.Estado == EstadoSuscripcionActiva }

// ConsumoBeneficio is the per-service credit balance under an active
// subscription.  The backend decrements it when a detail uses membership;
// this service only reads it.
//
// Fields:
//  ID                 – ledger entry identifier.
//  SuscripcionID      – subscription owning the credits.
//  Servicio           – service the credits apply to.
//  CantidadTotal      – credits granted by the plan.
//  CantidadConsumida  – credits already used.
//  CantidadDisponible – credits left; Total - Consumida.
type ConsumoBeneficio struct {
    ID                 int64    `json:"id"`
    SuscripcionID      int64    `json:"idSuscripcion"`
    Servicio           Servicio `json:"servicio"`
    CantidadTotal      int      `json:"cantidadTotal"`
    CantidadConsumida  int      `json:"cantidadConsumida"`
    CantidadDisponible int      `json:"cantidadDisponible"`
}

// Valid checks the ledger invariant Disponible = Total - Consumida >= 0.
func (b ConsumoBeneficio) Valid() bool {
    return b.CantidadDisponible >= 0 && b.CantidadDisponible == b.CantidadTotal-b.CantidadConsumida
}
