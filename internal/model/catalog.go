package model

// Especialidad is a treatment specialty (facial, corporal, masajes...).
// Collaborators and services are scoped to exactly one specialty.
type Especialidad struct {
    ID     int64  `json:"id"`     // especialidades.id
    Nombre string `json:"nombre"` // display name
}

// Colaborador is a staff member who performs services of a specialty.
//
// Fields:
//  ID             – backend identifier.
//  Nombre         – full display name.
//  EspecialidadID – specialty the collaborator belongs to.
type Colaborador struct {
    ID             int64  `json:"id"`
    Nombre         string `json:"nombre"`
    EspecialidadID int64  `json:"idEspecialidad"`
}

// Servicio is a bookable catalog entry.  Read-only from the booking flow.
//
// Fields:
//  ID             – backend identifier.
//  Nombre         – service name shown on the card.
//  EspecialidadID – owning specialty.
//  Precio         – list price in céntimos.
type Servicio struct {
    ID             int64    `json:"id"`
    Nombre         string   `json:"nombre"`
    EspecialidadID int64    `json:"idEspecialidad"`
    Precio         Centimos `json:"precio"`
}
