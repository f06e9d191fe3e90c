package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/booking"
    "github.com/iliyamo/spa-booking/internal/middleware"
    "github.com/iliyamo/spa-booking/internal/model"
)

// BenefitSource lists the membership credits a patient can spend.
type BenefitSource interface {
    Available(ctx context.Context, patient model.Patient) ([]model.ConsumoBeneficio, error)
}

// BookingHandler serves the patient side of the booking flow: the draft,
// the submission and the payment step.  All routes run behind JWTAuth and
// RequireRole(PACIENTE).
type BookingHandler struct {
    Drafts      *booking.Drafts      // draft edits and totals
    Benefits    BenefitSource        // membership credits
    Submitter   *booking.Submitter   // draft -> appointment
    Coordinator *booking.Coordinator // payment settlement
    Log         *zap.Logger
}

// NewBookingHandler constructs a BookingHandler and panics if any
// dependency is nil.
func NewBookingHandler(drafts *booking.Drafts, benefits BenefitSource, sub *booking.Submitter, coord *booking.Coordinator, log *zap.Logger) *BookingHandler {
    if drafts == nil || benefits == nil || sub == nil || coord == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &BookingHandler{Drafts: drafts, Benefits: benefits, Submitter: sub, Coordinator: coord, Log: log}
}

// draftRequest is the body of PUT /v1/borrador.  Absent fields keep their
// stored value.
type draftRequest struct {
    EspecialidadID *int64  `json:"idEspecialidad" validate:"omitempty,gt=0"`
    ColaboradorID  *int64  `json:"idColaborador" validate:"omitempty,gt=0"`
    Fecha          *string `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
    Hora           *string `json:"hora" validate:"omitempty,datetime=15:04"`
}

// cardRequest is the body of POST /v1/citas/:id/pagos/tarjeta.
type cardRequest struct {
    Token string `json:"token" validate:"required"`
}

func (h *BookingHandler) patient(c echo.Context) (model.Patient, bool) {
    p, ok := middleware.PatientFrom(c)
    return p, ok && p.ID > 0
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// ListBeneficios handles GET /v1/beneficios.
func (h *BookingHandler) ListBeneficios(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    list, err := h.Benefits.Available(c.Request().Context(), p)
    if err != nil {
        return respondError(c, h.Log, err, echo.Map{"data": []struct{}{}})
    }
    if list == nil {
        list = []model.ConsumoBeneficio{}
    }
    return c.JSON(http.StatusOK, echo.Map{"data": list})
}

// GetDraft handles GET /v1/borrador.
func (h *BookingHandler) GetDraft(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    v, err := h.Drafts.Get(c.Request().Context(), p)
    if err != nil {
        return respondError(c, h.Log, err, nil)
    }
    return c.JSON(http.StatusOK, v)
}

// UpdateDraft handles PUT /v1/borrador.  Changing the specialty clears the
// collaborator and the selected services.
func (h *BookingHandler) UpdateDraft(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    var body draftRequest
    if ok, err := bindValid(c, &body); !ok {
        return err
    }
    v, err := h.Drafts.Update(c.Request().Context(), p, booking.DraftPatch{
        EspecialidadID: body.EspecialidadID,
        ColaboradorID:  body.ColaboradorID,
        Fecha:          body.Fecha,
        Hora:           body.Hora,
    })
    if err != nil {
        return respondError(c, h.Log, err, nil)
    }
    return c.JSON(http.StatusOK, v)
}

// ResetDraft handles DELETE /v1/borrador.
func (h *BookingHandler) ResetDraft(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    if err := h.Drafts.Reset(c.Request().Context(), p); err != nil {
        return respondError(c, h.Log, err, nil)
    }
    return c.NoContent(http.StatusNoContent)
}

// TapService handles POST /v1/borrador/servicios/:id: selects the service
// when absent, removes it when present.
func (h *BookingHandler) TapService(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "id de servicio inválido"})
    }
    v, err := h.Drafts.TapService(c.Request().Context(), p, id)
    if err != nil {
        return respondError(c, h.Log, err, nil)
    }
    return c.JSON(http.StatusOK, v)
}

// ToggleMembership handles POST /v1/borrador/servicios/:id/membresia.
func (h *BookingHandler) ToggleMembership(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "id de servicio inválido"})
    }
    v, err := h.Drafts.ToggleMembership(c.Request().Context(), p, id)
    if err != nil {
        return respondError(c, h.Log, err, nil)
    }
    return c.JSON(http.StatusOK, v)
}

// Submit handles POST /v1/citas.  It submits the stored draft and returns
// 201 with either a settled appointment or the pending payment.  When the
// appointment was created but a later step failed, the error body also
// carries the outcome so the UI knows which appointment is affected.
func (h *BookingHandler) Submit(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    ctx := c.Request().Context()
    d, err := h.Drafts.Load(ctx, p)
    if err != nil {
        return respondError(c, h.Log, err, nil)
    }
    out, err := h.Submitter.Submit(ctx, p, d)
    if err != nil {
        var extra echo.Map
        if out.CitaID != 0 {
            extra = echo.Map{"cita": out}
        }
        return respondError(c, h.Log, err, extra)
    }
    return c.JSON(http.StatusCreated, out)
}

// Checkout handles GET /v1/citas/:id/checkout and returns the card widget
// configuration for a pending appointment.
func (h *BookingHandler) Checkout(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    citaID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "id de cita inválido"})
    }
    cfg, err := h.Coordinator.CheckoutConfig(c.Request().Context(), p, citaID)
    if err != nil {
        return respondError(c, h.Log, err, nil)
    }
    return c.JSON(http.StatusOK, cfg)
}

// Pending handles GET /v1/citas/:id/pago and returns the stored intent.
func (h *BookingHandler) Pending(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    citaID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "id de cita inválido"})
    }
    intent, err := h.Coordinator.Pending(c.Request().Context(), p, citaID)
    if err != nil {
        return respondError(c, h.Log, err, nil)
    }
    return c.JSON(http.StatusOK, intent)
}

// Settle handles POST /v1/citas/:id/pagos/:metodo for efectivo, yape,
// tarjeta and, for appointments fully covered by membership whose
// automatic settlement failed, membresia.  A declined card returns 402
// with the charge result.
func (h *BookingHandler) Settle(c echo.Context) error {
    p, ok := h.patient(c)
    if !ok {
        return unauthorized(c)
    }
    citaID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "id de cita inválido"})
    }
    method := model.PaymentMethod(c.Param("metodo"))
    if !method.Valid() && method != model.MetodoMembresia {
        return respondError(c, h.Log, booking.ErrInvalidMethod, nil)
    }
    var token string
    if method == model.MetodoTarjeta {
        var body cardRequest
        if ok, err := bindValid(c, &body); !ok {
            return err
        }
        token = body.Token
    }
    res, err := h.Coordinator.Settle(c.Request().Context(), p, citaID, method, token)
    if err != nil {
        var serr *booking.SettlementError
        if errors.As(err, &serr) {
            return respondError(c, h.Log, err, echo.Map{"citaId": citaID, "metodo": method})
        }
        return respondError(c, h.Log, err, nil)
    }
    if res.Charge != nil && !res.Charge.Succeeded() {
        return c.JSON(http.StatusPaymentRequired, res)
    }
    return c.JSON(http.StatusOK, res)
}
