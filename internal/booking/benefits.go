package booking

import (
    "context"
    "fmt"

    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/model"
)

// BenefitBackend is the part of the backend client the resolver needs.
type BenefitBackend interface {
    ListSuscripciones(ctx context.Context, pacienteID int64) ([]model.Suscripcion, error)
    ListConsumosBeneficio(ctx context.Context, suscripcionID int64) ([]model.ConsumoBeneficio, error)
}

// BenefitResolver finds the membership credits a patient can spend.
type BenefitResolver struct {
    backend BenefitBackend
    log     *zap.Logger
}

// NewBenefitResolver constructs a resolver.  backend must be non-nil.
func NewBenefitResolver(backend BenefitBackend, log *zap.Logger) *BenefitResolver {
    if backend == nil {
        panic("booking: nil backend passed to NewBenefitResolver")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &BenefitResolver{backend: backend, log: log}
}

// Available returns the patient's benefit records with credits left.  A
// patient without an active subscription gets an empty list; a patient
// with more than one gets ErrMultipleActiveSubscriptions.  A zero patient
// id (identity not known yet) also yields an empty list.
func (r *BenefitResolver) Available(ctx context.Context, patient model.Patient) ([]model.ConsumoBeneficio, error) {
    if patient.ID == 0 {
        return nil, nil
    }
    subs, err := r.backend.ListSuscripciones(ctx, patient.ID)
    if err != nil {
        return nil, fmt.Errorf("load subscriptions: %w", err)
    }
    var active []model.Suscripcion
    for _, s := range subs {
        if s.Activa() {
            active = append(active, s)
        }
    }
    switch len(active) {
    case 0:
        return nil, nil
    case 1:
    default:
        r.log.Warn("benefits.Available multiple active subscriptions",
            zap.Int64("patient_id", patient.ID),
            zap.Int("active", len(active)),
        )
        return nil, ErrMultipleActiveSubscriptions
    }

    consumos, err := r.backend.ListConsumosBeneficio(ctx, active[0].ID)
    if err != nil {
        return nil, fmt.Errorf("load benefits of subscription %d: %w", active[0].ID, err)
    }
    out := make([]model.ConsumoBeneficio, 0, len(consumos))
    for _, c := range consumos {
        if c.CantidadDisponible <= 0 {
            continue
        }
        if !c.Valid() {
            r.log.Warn("benefits.Available inconsistent ledger entry",
                zap.Int64("consumo_id", c.ID),
                zap.Int("total", c.CantidadTotal),
                zap.Int("consumida", c.CantidadConsumida),
                zap.Int("disponible", c.CantidadDisponible),
            )
        }
        out = append(out, c)
    }
    return out, nil
}

// MatchBenefit returns the benefit for a service, or nil when none applies.
func MatchBenefit(benefits []model.ConsumoBeneficio, servicioID int64) *model.ConsumoBeneficio {
    for i := range benefits {
        if benefits[i].Servicio.ID == servicioID && benefits[i].CantidadDisponible > 0 {
            return &benefits[i]
        }
    }
    return nil
}
