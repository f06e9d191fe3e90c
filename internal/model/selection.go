package model

// SelectionEntry is one service tapped into the appointment being built.
// It lives only in the booking draft until the draft is submitted or reset.
// Beneficio is attached when the patient holds an available credit for the
// service; UsarMembresia can only be true when Beneficio is set.
type SelectionEntry struct {
    ServicioID    int64             `json:"idServicio"`
    UsarMembresia bool              `json:"usarMembresia"`
    Beneficio     *ConsumoBeneficio `json:"beneficioDisponible,omitempty"`
}

// Totals partitions the selection into membership-covered and cash
// amounts.  TotalGeneral always equals TotalConMembresia + TotalSinMembresia.
type Totals struct {
    TotalConMembresia Centimos `json:"totalConMembresia"`
    TotalSinMembresia Centimos `json:"totalSinMembresia"`
    TotalGeneral      Centimos `json:"totalGeneral"`
}
