package booking

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/config"
    "github.com/iliyamo/spa-booking/internal/model"
    "github.com/iliyamo/spa-booking/internal/queue"
    "github.com/iliyamo/spa-booking/internal/repository"
    "github.com/iliyamo/spa-booking/internal/spaapi"
)

// SettlementBackend is the set of backend settlement endpoints.
type SettlementBackend interface {
    PagarConMembresia(ctx context.Context, in spaapi.SettlementInput, idempotencyKey string) (spaapi.Receipt, error)
    RegistrarEfectivo(ctx context.Context, in spaapi.SettlementInput, idempotencyKey string) (spaapi.Receipt, error)
    RegistrarYape(ctx context.Context, in spaapi.SettlementInput, idempotencyKey string) (spaapi.Receipt, error)
    CobrarTarjeta(ctx context.Context, in spaapi.CardChargeInput, idempotencyKey string) (spaapi.Receipt, error)
}

// SettlementResult is returned by a settlement that reached the backend.
// Charge is set for card payments only.
type SettlementResult struct {
    CitaID  int64               `json:"citaId"`
    Metodo  model.PaymentMethod `json:"metodo"`
    Monto   model.Centimos      `json:"monto"`
    State   model.BookingState  `json:"state"`
    Charge  *model.ChargeResult `json:"cargo,omitempty"`
    Message string              `json:"mensaje,omitempty"`
}

// Coordinator settles the payment intents left by submissions.
type Coordinator struct {
    backend SettlementBackend
    store   *Store
    culqi   config.CulqiConfig
    Deps
}

// NewCoordinator constructs a Coordinator.  backend and store must be
// non-nil.
func NewCoordinator(backend SettlementBackend, store *Store, culqi config.CulqiConfig, deps Deps) *Coordinator {
    if backend == nil || store == nil {
        panic("booking: nil dependency passed to NewCoordinator")
    }
    if culqi.Currency == "" {
        culqi.Currency = "PEN"
    }
    deps.defaults(45 * time.Second)
    return &Coordinator{backend: backend, store: store, culqi: culqi, Deps: deps}
}

// Pending returns the payment intent of an appointment.
func (c *Coordinator) Pending(ctx context.Context, patient model.Patient, citaID int64) (model.PaymentIntent, error) {
    return c.store.LoadIntent(ctx, patient.ID, citaID)
}

// CheckoutConfig returns the browser card widget settings for a pending
// appointment.  An appointment with nothing to pay has no checkout.
func (c *Coordinator) CheckoutConfig(ctx context.Context, patient model.Patient, citaID int64) (model.CheckoutConfig, error) {
    if strings.TrimSpace(patient.Email) == "" {
        return model.CheckoutConfig{}, invalid("email", "Tu cuenta no tiene un correo registrado")
    }
    intent, err := c.store.LoadIntent(ctx, patient.ID, citaID)
    if err != nil {
        return model.CheckoutConfig{}, err
    }
    if intent.Monto <= 0 {
        return model.CheckoutConfig{}, ErrInvalidMethod
    }
    return model.CheckoutConfig{
        Title:     c.culqi.Title,
        Currency:  c.culqi.Currency,
        Amount:    int64(intent.Monto),
        Email:     patient.Email,
        PublicKey: c.culqi.PublicKey,
        CitaID:    citaID,
    }, nil
}

// Settle pays the pending intent of an appointment with the given method.
// A zero intent (membership settlement that failed during submit) can only
// be retried with membresia; any other intent accepts efectivo, yape or
// tarjeta.  Every call carries the intent's idempotency key, and a per
// appointment lock rejects a concurrent second tap.  On success the intent
// is deleted; on failure it is kept so the patient can retry.
//
// A card charge rejected by the backend with a 4xx is not an error: the
// result carries a declined ChargeResult and the intent survives.
func (c *Coordinator) Settle(ctx context.Context, patient model.Patient, citaID int64, method model.PaymentMethod, token string) (SettlementResult, error) {
    if patient.ID == 0 {
        return SettlementResult{}, invalid("paciente", "No se pudo identificar al paciente")
    }
    if strings.TrimSpace(patient.Email) == "" {
        return SettlementResult{}, invalid("email", "Tu cuenta no tiene un correo registrado")
    }
    if !method.Valid() && method != model.MetodoMembresia {
        return SettlementResult{}, ErrInvalidMethod
    }
    if method == model.MetodoTarjeta && strings.TrimSpace(token) == "" {
        return SettlementResult{}, ErrCardTokenRequired
    }

    lock := fmt.Sprintf("settle:%d", citaID)
    lockToken, ok, err := c.store.TryLock(ctx, lock, c.LockTTL)
    if err != nil {
        return SettlementResult{}, err
    }
    if !ok {
        return SettlementResult{}, ErrSettlementInProgress
    }
    defer func() {
        if err := c.store.Unlock(context.WithoutCancel(ctx), lock, lockToken); err != nil {
            c.Log.Warn("booking.Settle unlock failed", zap.String("lock", lock), zap.Error(err))
        }
    }()

    intent, err := c.store.LoadIntent(ctx, patient.ID, citaID)
    if err != nil {
        return SettlementResult{}, err
    }
    if (intent.Monto == 0) != (method == model.MetodoMembresia) {
        return SettlementResult{}, ErrInvalidMethod
    }

    log := c.Log.With(zap.Int64("cita_id", citaID), zap.Int64("patient_id", patient.ID), zap.String("metodo", string(method)))
    res := SettlementResult{CitaID: citaID, Metodo: method, Monto: intent.Monto}
    in := spaapi.SettlementInput{CitaID: citaID, Email: patient.Email}

    var receipt spaapi.Receipt
    switch method {
    case model.MetodoTarjeta:
        c.ledger(ctx, citaID, repository.AttemptUpdate{State: string(model.StateCardChargePending), PaymentMethod: strPtr(string(method))})
        receipt, err = c.backend.CobrarTarjeta(ctx, spaapi.CardChargeInput{CitaID: citaID, Token: token, Email: patient.Email}, intent.IdempotencyKey)
        if err != nil && spaapi.IsCardDecline(err) {
            msg := declineMessage(err)
            log.Info("booking.Settle card declined", zap.String("message", msg))
            c.ledger(ctx, citaID, repository.AttemptUpdate{State: string(model.StateCardDeclined), PaymentMethod: strPtr(string(method)), LastError: &msg})
            c.Metrics.ObserveSettlement(string(method), "declined")
            res.State = model.StateCardDeclined
            res.Charge = &model.ChargeResult{Outcome: model.ChargeDeclined, Message: msg}
            res.Message = msg
            return res, nil
        }
    case model.MetodoEfectivo:
        receipt, err = c.backend.RegistrarEfectivo(ctx, in, intent.IdempotencyKey)
    case model.MetodoYape:
        receipt, err = c.backend.RegistrarYape(ctx, in, intent.IdempotencyKey)
    case model.MetodoMembresia:
        receipt, err = c.backend.PagarConMembresia(ctx, in, intent.IdempotencyKey)
    }
    if err != nil {
        log.Error("booking.Settle backend call failed", zap.Error(err))
        state := model.StateAwaitingPaymentMethod
        if method == model.MetodoTarjeta {
            state = model.StateCardChargePending
        }
        c.ledger(ctx, citaID, repository.AttemptUpdate{State: string(state), PaymentMethod: strPtr(string(method)), LastError: errText(err)})
        c.Metrics.ObserveSettlement(string(method), "error")
        return SettlementResult{}, &SettlementError{CitaID: citaID, Method: string(method), Err: err}
    }

    res.State = model.StateForMethod(method)
    res.Message = receipt.Text()
    if method == model.MetodoTarjeta {
        res.State = model.StateCardCharged
        res.Charge = &model.ChargeResult{Outcome: model.ChargeSucceeded, ChargeID: string(receipt.ID), Message: receipt.Text()}
    }
    if err := c.store.DeleteIntent(ctx, patient.ID, citaID); err != nil {
        log.Warn("booking.Settle delete intent failed", zap.Error(err))
    }
    c.ledger(ctx, citaID, repository.AttemptUpdate{State: string(res.State), PaymentMethod: strPtr(string(method))})
    c.publish(ctx, queue.PagoRegistradoEvent{
        CitaID:     citaID,
        PacienteID: patient.ID,
        Metodo:     string(method),
        Monto:      int64(intent.Monto),
        State:      string(res.State),
        ChargeID:   string(receipt.ID),
        OccurredAt: c.stamp(),
    })
    c.Metrics.ObserveSettlement(string(method), "succeeded")
    log.Info("booking.Settle registered", zap.String("state", string(res.State)))
    return res, nil
}

func (c *Coordinator) ledger(ctx context.Context, citaID int64, upd repository.AttemptUpdate) {
    if c.Ledger == nil {
        return
    }
    if err := c.Ledger.UpdateByCita(ctx, citaID, upd); err != nil {
        c.Log.Warn("booking ledger update failed", zap.Int64("cita_id", citaID), zap.String("state", upd.State), zap.Error(err))
    }
}

func declineMessage(err error) string {
    var apiErr *spaapi.APIError
    if errors.As(err, &apiErr) && apiErr.Message != "" {
        return apiErr.Message
    }
    return "El cargo fue rechazado"
}
