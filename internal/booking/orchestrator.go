package booking

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/metrics"
    "github.com/iliyamo/spa-booking/internal/model"
    "github.com/iliyamo/spa-booking/internal/queue"
    "github.com/iliyamo/spa-booking/internal/repository"
    "github.com/iliyamo/spa-booking/internal/spaapi"
)

// BookingBackend is the write side of the backend used by a submission.
type BookingBackend interface {
    CreateCita(ctx context.Context, in spaapi.CreateCitaInput) (model.Cita, error)
    CreateDetalleCita(ctx context.Context, in spaapi.CreateDetalleInput) (model.DetalleCita, error)
    PagarConMembresia(ctx context.Context, in spaapi.SettlementInput, idempotencyKey string) (spaapi.Receipt, error)
}

// ServiceCatalog supplies the prices the totals are computed from.
type ServiceCatalog interface {
    Servicios(ctx context.Context, especialidadID int64) ([]model.Servicio, error)
}

// AttemptLedger persists the progress of each submission.
type AttemptLedger interface {
    Create(ctx context.Context, rec *repository.AttemptRecord) error
    Update(ctx context.Context, id uint64, upd repository.AttemptUpdate) error
    UpdateByCita(ctx context.Context, citaID int64, upd repository.AttemptUpdate) error
}

// EventPublisher delivers booking events to the broker.
type EventPublisher interface {
    Publish(ctx context.Context, ev queue.Event) error
}

// Deps groups the optional collaborators shared by Submitter and
// Coordinator.  Ledger and Events may be nil; writes to them are best
// effort and never fail a booking.
type Deps struct {
    Ledger  AttemptLedger
    Events  EventPublisher
    Metrics *metrics.BookingMetrics
    Log     *zap.Logger
    LockTTL time.Duration
    Now     func() time.Time
}

func (d *Deps) defaults(lockTTL time.Duration) {
    if d.Log == nil {
        d.Log = zap.NewNop()
    }
    if d.LockTTL <= 0 {
        d.LockTTL = lockTTL
    }
    if d.Now == nil {
        d.Now = time.Now
    }
}

// Outcome describes where a submission ended.  CitaID is zero when the
// appointment was never created.  Intent is set while a payment is due.
type Outcome struct {
    CitaID  int64                `json:"citaId,omitempty"`
    State   model.BookingState   `json:"state"`
    Totals  model.Totals         `json:"totales"`
    Intent  *model.PaymentIntent `json:"pago,omitempty"`
    Details []model.DetalleCita  `json:"detalles,omitempty"`
    Message string               `json:"mensaje,omitempty"`
}

// Submitter turns a draft into an appointment on the backend.
type Submitter struct {
    backend BookingBackend
    catalog ServiceCatalog
    store   submitStore
    Deps
}

// submitStore is the part of Store a submission writes to.
type submitStore interface {
    TryLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
    Unlock(ctx context.Context, name, token string) error
    SaveIntent(ctx context.Context, patientID int64, in model.PaymentIntent) error
    DeleteDraft(ctx context.Context, patientID int64) error
}

// NewSubmitter constructs a Submitter.  backend, catalog and store must
// be non-nil.
func NewSubmitter(backend BookingBackend, catalog ServiceCatalog, store *Store, deps Deps) *Submitter {
    if backend == nil || catalog == nil || store == nil {
        panic("booking: nil dependency passed to NewSubmitter")
    }
    deps.defaults(time.Minute)
    return &Submitter{backend: backend, catalog: catalog, store: store, Deps: deps}
}

// Validate checks the preconditions of a submission without touching the
// network.  The first failing check wins.
func Validate(patient model.Patient, d Draft) error {
    switch {
    case d.ColaboradorID == 0:
        return invalid("colaborador", "Selecciona un colaborador")
    case len(d.Servicios) == 0:
        return invalid("servicios", "Selecciona al menos un servicio")
    case patient.ID == 0:
        return invalid("paciente", "No se pudo identificar al paciente")
    case strings.TrimSpace(patient.Email) == "":
        return invalid("email", "Tu cuenta no tiene un correo registrado")
    case strings.TrimSpace(d.Fecha) == "":
        return invalid("fecha", "Selecciona una fecha")
    case strings.TrimSpace(d.Hora) == "":
        return invalid("hora", "Selecciona una hora")
    }
    return nil
}

// Submit creates the appointment and its details, then either settles it
// by membership (nothing left to pay) or stores a payment intent for the
// amount due.  Details are created one at a time and the loop stops at
// the first failure; the appointment and the details already created stay
// on the backend and the attempt is recorded as DETAILS_PARTIAL.
func (s *Submitter) Submit(ctx context.Context, patient model.Patient, d Draft) (Outcome, error) {
    if err := Validate(patient, d); err != nil {
        return Outcome{State: model.StateIdle}, err
    }

    lock := fmt.Sprintf("submit:%d", patient.ID)
    token, ok, err := s.store.TryLock(ctx, lock, s.LockTTL)
    if err != nil {
        return Outcome{State: model.StateIdle}, err
    }
    if !ok {
        return Outcome{State: model.StateIdle}, ErrSubmissionInProgress
    }
    defer func() {
        if err := s.store.Unlock(context.WithoutCancel(ctx), lock, token); err != nil {
            s.Log.Warn("booking.Submit unlock failed", zap.String("lock", lock), zap.Error(err))
        }
    }()

    servicios, err := s.catalog.Servicios(ctx, d.EspecialidadID)
    if err != nil {
        return Outcome{State: model.StateIdle}, fmt.Errorf("load services: %w", err)
    }
    if err := checkSelection(d.Servicios, servicios); err != nil {
        return Outcome{State: model.StateIdle}, err
    }

    key := uuid.NewString()
    rec := &repository.AttemptRecord{
        PatientID:       patient.ID,
        State:           string(model.StateSubmitting),
        DetailsExpected: len(d.Servicios),
        IdempotencyKey:  key,
    }
    s.ledgerCreate(ctx, rec)

    cita, err := s.backend.CreateCita(ctx, spaapi.CreateCitaInput{PacienteID: patient.ID, Fecha: d.Fecha, Hora: d.Hora})
    if err != nil {
        s.ledgerUpdate(ctx, rec, repository.AttemptUpdate{State: string(model.StateIdle), LastError: errText(err)})
        s.Metrics.ObserveSubmission(string(model.StateIdle))
        return Outcome{State: model.StateIdle}, fmt.Errorf("create cita: %w", err)
    }
    log := s.Log.With(zap.Int64("cita_id", cita.ID), zap.Int64("patient_id", patient.ID))

    details, err := s.createDetails(ctx, cita.ID, d)
    if err != nil {
        created := len(details)
        perr := &PartialError{CitaID: cita.ID, Created: created, Expected: len(d.Servicios), Err: err}
        log.Error("booking.Submit detail creation stopped",
            zap.Int("created", created),
            zap.Int("expected", len(d.Servicios)),
            zap.Error(err),
        )
        s.ledgerUpdate(ctx, rec, repository.AttemptUpdate{
            State:          string(model.StateDetailsPartial),
            CitaID:         &cita.ID,
            DetailsCreated: &created,
            LastError:      errText(err),
        })
        s.publish(ctx, queue.ReservaIncompletaEvent{
            CitaID:            cita.ID,
            PacienteID:        patient.ID,
            DetallesEsperados: len(d.Servicios),
            DetallesCreados:   created,
            Error:             err.Error(),
            OccurredAt:        s.stamp(),
        })
        s.Metrics.ObserveSubmission(string(model.StateDetailsPartial))
        return Outcome{CitaID: cita.ID, State: model.StateDetailsPartial, Details: details}, perr
    }

    // The appointment exists from here on; its bookkeeping must not be
    // abandoned when the caller goes away.
    commit := context.WithoutCancel(ctx)
    totals := Calculate(d.Servicios, servicios)
    created := len(details)
    monto := int64(totals.TotalSinMembresia)
    out := Outcome{CitaID: cita.ID, Totals: totals, Details: details}

    if totals.TotalSinMembresia == 0 {
        receipt, err := s.backend.PagarConMembresia(ctx, spaapi.SettlementInput{CitaID: cita.ID, Email: patient.Email}, key)
        if err != nil {
            // The appointment is booked; keep a zero intent so the
            // membership settlement can be retried from the payment step.
            intent := model.PaymentIntent{CitaID: cita.ID, Monto: 0, IdempotencyKey: key}
            lastErr := err
            if serr := s.store.SaveIntent(commit, patient.ID, intent); serr != nil {
                log.Error("booking.Submit save intent failed", zap.Error(serr))
                lastErr = errors.Join(err, fmt.Errorf("store payment intent: %w", serr))
                s.publishIncomplete(commit, patient, cita.ID, created, lastErr)
            } else {
                out.Intent = &intent
            }
            s.discardDraft(commit, patient.ID)
            s.ledgerUpdate(commit, rec, repository.AttemptUpdate{
                State:          string(model.StateAwaitingPaymentMethod),
                CitaID:         &cita.ID,
                DetailsCreated: &created,
                MontoCentimos:  &monto,
                PaymentMethod:  strPtr(string(model.MetodoMembresia)),
                LastError:      errText(lastErr),
            })
            s.Metrics.ObserveSubmission(string(model.StateAwaitingPaymentMethod))
            s.Metrics.ObserveSettlement(string(model.MetodoMembresia), "error")
            out.State = model.StateAwaitingPaymentMethod
            return out, &SettlementError{CitaID: cita.ID, Method: string(model.MetodoMembresia), Err: err}
        }
        s.discardDraft(commit, patient.ID)
        s.ledgerUpdate(commit, rec, repository.AttemptUpdate{
            State:          string(model.StateSettledViaMembership),
            CitaID:         &cita.ID,
            DetailsCreated: &created,
            MontoCentimos:  &monto,
            PaymentMethod:  strPtr(string(model.MetodoMembresia)),
        })
        s.publishReserved(commit, patient, cita, d, totals, model.StateSettledViaMembership)
        s.publish(commit, queue.PagoRegistradoEvent{
            CitaID:     cita.ID,
            PacienteID: patient.ID,
            Metodo:     string(model.MetodoMembresia),
            State:      string(model.StateSettledViaMembership),
            OccurredAt: s.stamp(),
        })
        s.Metrics.ObserveSubmission(string(model.StateSettledViaMembership))
        s.Metrics.ObserveSettlement(string(model.MetodoMembresia), "succeeded")
        log.Info("booking.Submit settled via membership")
        out.State = model.StateSettledViaMembership
        out.Message = receipt.Text()
        return out, nil
    }

    // The draft goes whether or not the intent is stored: it already
    // produced an appointment and resubmitting it would book the slot twice.
    intent := model.PaymentIntent{CitaID: cita.ID, Monto: totals.TotalSinMembresia, IdempotencyKey: key}
    out.State = model.StateAwaitingPaymentMethod
    serr := s.store.SaveIntent(commit, patient.ID, intent)
    s.discardDraft(commit, patient.ID)
    s.Metrics.ObserveSubmission(string(model.StateAwaitingPaymentMethod))
    if serr != nil {
        err := fmt.Errorf("store payment intent: %w", serr)
        log.Error("booking.Submit save intent failed", zap.Error(serr))
        s.ledgerUpdate(commit, rec, repository.AttemptUpdate{
            State:          string(model.StateAwaitingPaymentMethod),
            CitaID:         &cita.ID,
            DetailsCreated: &created,
            MontoCentimos:  &monto,
            LastError:      errText(err),
        })
        s.publishIncomplete(commit, patient, cita.ID, created, err)
        return out, err
    }
    out.Intent = &intent
    s.ledgerUpdate(commit, rec, repository.AttemptUpdate{
        State:          string(model.StateAwaitingPaymentMethod),
        CitaID:         &cita.ID,
        DetailsCreated: &created,
        MontoCentimos:  &monto,
    })
    s.publishReserved(commit, patient, cita, d, totals, model.StateAwaitingPaymentMethod)
    log.Info("booking.Submit awaiting payment", zap.String("monto", intent.Monto.String()))
    return out, nil
}

// createDetails posts one detail per selected service in selection order.
// It returns the details created so far together with the first error.
func (s *Submitter) createDetails(ctx context.Context, citaID int64, d Draft) ([]model.DetalleCita, error) {
    details := make([]model.DetalleCita, 0, len(d.Servicios))
    for _, e := range d.Servicios {
        in := spaapi.CreateDetalleInput{CitaID: citaID, ServicioID: e.ServicioID, ColaboradorID: d.ColaboradorID}
        if e.UsarMembresia && e.Beneficio != nil {
            t := true
            in.PagarConMembresia = &t
        }
        det, err := s.backend.CreateDetalleCita(ctx, in)
        if err != nil {
            return details, fmt.Errorf("create detail for servicio %d: %w", e.ServicioID, err)
        }
        details = append(details, det)
    }
    return details, nil
}

// checkSelection rejects drafts referencing services outside the
// specialty's catalog; their price is unknown.
func checkSelection(sel Selection, servicios []model.Servicio) error {
    known := make(map[int64]struct{}, len(servicios))
    for _, sv := range servicios {
        known[sv.ID] = struct{}{}
    }
    for _, e := range sel {
        if _, ok := known[e.ServicioID]; !ok {
            return invalid("servicios", fmt.Sprintf("El servicio %d no pertenece a la especialidad elegida", e.ServicioID))
        }
    }
    return nil
}

func (s *Submitter) publishReserved(ctx context.Context, p model.Patient, c model.Cita, d Draft, t model.Totals, st model.BookingState) {
    s.publish(ctx, queue.CitaReservadaEvent{
        CitaID:            c.ID,
        PacienteID:        p.ID,
        ColaboradorID:     d.ColaboradorID,
        Fecha:             d.Fecha,
        Hora:              d.Hora,
        Servicios:         d.Servicios.ServiceIDs(),
        ConMembresia:      d.Servicios.MembershipCount(),
        TotalSinMembresia: int64(t.TotalSinMembresia),
        State:             string(st),
        OccurredAt:        s.stamp(),
    })
}

// publishIncomplete reports an appointment whose details all exist but
// whose payment step could not be prepared.
func (s *Submitter) publishIncomplete(ctx context.Context, p model.Patient, citaID int64, created int, err error) {
    s.publish(ctx, queue.ReservaIncompletaEvent{
        CitaID:            citaID,
        PacienteID:        p.ID,
        DetallesEsperados: created,
        DetallesCreados:   created,
        Error:             err.Error(),
        OccurredAt:        s.stamp(),
    })
}

func (s *Submitter) discardDraft(ctx context.Context, patientID int64) {
    if err := s.store.DeleteDraft(ctx, patientID); err != nil {
        s.Log.Warn("booking.Submit delete draft failed", zap.Int64("patient_id", patientID), zap.Error(err))
    }
}

func (s *Submitter) ledgerCreate(ctx context.Context, rec *repository.AttemptRecord) {
    if s.Ledger == nil {
        return
    }
    if err := s.Ledger.Create(ctx, rec); err != nil {
        s.Log.Warn("booking ledger create failed", zap.Int64("patient_id", rec.PatientID), zap.Error(err))
    }
}

// ledgerUpdate writes a transition.  A record that was never persisted
// (ID 0) is skipped.
func (s *Submitter) ledgerUpdate(ctx context.Context, rec *repository.AttemptRecord, upd repository.AttemptUpdate) {
    if s.Ledger == nil || rec.ID == 0 {
        return
    }
    if err := s.Ledger.Update(ctx, rec.ID, upd); err != nil {
        s.Log.Warn("booking ledger update failed", zap.Uint64("attempt_id", rec.ID), zap.String("state", upd.State), zap.Error(err))
    }
}

func (d *Deps) publish(ctx context.Context, ev queue.Event) {
    if d.Events == nil {
        return
    }
    if err := d.Events.Publish(ctx, ev); err != nil {
        d.Log.Warn("booking event publish failed", zap.String("queue", ev.QueueName()), zap.Error(err))
    }
}

func (d *Deps) stamp() string { return d.Now().UTC().Format(time.RFC3339) }

func errText(err error) *string {
    if err == nil {
        return nil
    }
    s := err.Error()
    return &s
}

func strPtr(s string) *string { return &s }
