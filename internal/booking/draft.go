package booking

import (
    "context"
    "fmt"

    "github.com/iliyamo/spa-booking/internal/model"
)

// Draft is the appointment being built by one patient: the chosen
// specialty, collaborator, slot and service selection.  It exists until
// the patient submits it successfully or resets it.
type Draft struct {
    EspecialidadID int64     `json:"idEspecialidad"`
    ColaboradorID  int64     `json:"idColaborador"`
    Fecha          string    `json:"fecha"`
    Hora           string    `json:"hora"`
    Servicios      Selection `json:"servicios"`
}

// SetEspecialidad changes the specialty.  Collaborators and services are
// scoped to a specialty, so a change clears both.
func (d *Draft) SetEspecialidad(id int64) {
    if d.EspecialidadID == id {
        return
    }
    d.EspecialidadID = id
    d.ColaboradorID = 0
    d.Servicios = nil
}

// DraftPatch carries the header fields of a draft update.  Nil fields are
// left untouched.
type DraftPatch struct {
    EspecialidadID *int64
    ColaboradorID  *int64
    Fecha          *string
    Hora           *string
}

// DraftView is a draft with its totals, as rendered to the patient.
type DraftView struct {
    Draft
    Totals model.Totals `json:"totales"`
}

// Drafts applies patient edits to the stored draft.
type Drafts struct {
    store    *Store
    catalog  ServiceCatalog
    benefits *BenefitResolver
}

// NewDrafts constructs a Drafts service.
func NewDrafts(store *Store, catalog ServiceCatalog, benefits *BenefitResolver) *Drafts {
    if store == nil || catalog == nil || benefits == nil {
        panic("booking: nil dependency passed to NewDrafts")
    }
    return &Drafts{store: store, catalog: catalog, benefits: benefits}
}

// Get returns the patient's draft with totals computed from the current
// catalog.
func (s *Drafts) Get(ctx context.Context, patient model.Patient) (DraftView, error) {
    d, err := s.store.LoadDraft(ctx, patient.ID)
    if err != nil {
        return DraftView{}, err
    }
    return s.view(ctx, d)
}

// Update applies a header patch and saves the draft.
func (s *Drafts) Update(ctx context.Context, patient model.Patient, p DraftPatch) (DraftView, error) {
    d, err := s.store.LoadDraft(ctx, patient.ID)
    if err != nil {
        return DraftView{}, err
    }
    if p.EspecialidadID != nil {
        d.SetEspecialidad(*p.EspecialidadID)
    }
    if p.ColaboradorID != nil {
        d.ColaboradorID = *p.ColaboradorID
    }
    if p.Fecha != nil {
        d.Fecha = *p.Fecha
    }
    if p.Hora != nil {
        d.Hora = *p.Hora
    }
    if err := s.store.SaveDraft(ctx, patient.ID, d); err != nil {
        return DraftView{}, err
    }
    return s.view(ctx, d)
}

// TapService selects or deselects a service.  A newly selected service
// carries the patient's benefit for it, if any, and starts unpaid by
// membership.
func (s *Drafts) TapService(ctx context.Context, patient model.Patient, servicioID int64) (DraftView, error) {
    d, err := s.store.LoadDraft(ctx, patient.ID)
    if err != nil {
        return DraftView{}, err
    }
    var benefits []model.ConsumoBeneficio
    if !d.Servicios.Contains(servicioID) {
        servicios, err := s.catalog.Servicios(ctx, d.EspecialidadID)
        if err != nil {
            return DraftView{}, fmt.Errorf("load services: %w", err)
        }
        if !hasServicio(servicios, servicioID) {
            return DraftView{}, invalid("servicio", fmt.Sprintf("El servicio %d no pertenece a la especialidad elegida", servicioID))
        }
        if benefits, err = s.benefits.Available(ctx, patient); err != nil {
            return DraftView{}, err
        }
    }
    d.Servicios.Toggle(servicioID, benefits)
    if err := s.store.SaveDraft(ctx, patient.ID, d); err != nil {
        return DraftView{}, err
    }
    return s.view(ctx, d)
}

// ToggleMembership flips membership use on a selected service.
func (s *Drafts) ToggleMembership(ctx context.Context, patient model.Patient, servicioID int64) (DraftView, error) {
    d, err := s.store.LoadDraft(ctx, patient.ID)
    if err != nil {
        return DraftView{}, err
    }
    if _, err := d.Servicios.ToggleMembership(servicioID); err != nil {
        return DraftView{}, err
    }
    if err := s.store.SaveDraft(ctx, patient.ID, d); err != nil {
        return DraftView{}, err
    }
    return s.view(ctx, d)
}

// Reset discards the draft.
func (s *Drafts) Reset(ctx context.Context, patient model.Patient) error {
    return s.store.DeleteDraft(ctx, patient.ID)
}

// Load returns the raw stored draft.
func (s *Drafts) Load(ctx context.Context, patient model.Patient) (Draft, error) {
    return s.store.LoadDraft(ctx, patient.ID)
}

func (s *Drafts) view(ctx context.Context, d Draft) (DraftView, error) {
    v := DraftView{Draft: d}
    if len(d.Servicios) == 0 {
        return v, nil
    }
    servicios, err := s.catalog.Servicios(ctx, d.EspecialidadID)
    if err != nil {
        return DraftView{}, fmt.Errorf("load services: %w", err)
    }
    v.Totals = Calculate(d.Servicios, servicios)
    return v, nil
}

func hasServicio(servicios []model.Servicio, id int64) bool {
    for _, s := range servicios {
        if s.ID == id {
            return true
        }
    }
    return false
}
