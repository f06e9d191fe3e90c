package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/middleware"
    "github.com/iliyamo/spa-booking/internal/model"
    "github.com/iliyamo/spa-booking/internal/repository"
)

// AttemptReader reads the submission ledger.
type AttemptReader interface {
    ListByPatient(ctx context.Context, patientID int64, limit int) ([]repository.AttemptRecord, error)
    ListIncomplete(ctx context.Context, limit int) ([]repository.AttemptRecord, error)
}

// AttemptHandler exposes the submission ledger: patients see their own
// attempts, administrators the appointments left incomplete.
type AttemptHandler struct {
    Attempts AttemptReader
    Log      *zap.Logger
}

// NewAttemptHandler constructs an AttemptHandler.
func NewAttemptHandler(attempts AttemptReader, log *zap.Logger) *AttemptHandler {
    if attempts == nil {
        panic("nil attempt reader passed to NewAttemptHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &AttemptHandler{Attempts: attempts, Log: log}
}

// attemptView is the JSON form of a ledger row.
type attemptView struct {
    ID                uint64         `json:"id"`
    PacienteID        int64          `json:"idPaciente"`
    CitaID            *int64         `json:"idCita,omitempty"`
    Estado            string         `json:"estado"`
    Incompleto        bool           `json:"incompleto"`
    DetallesEsperados int            `json:"detallesEsperados"`
    DetallesCreados   int            `json:"detallesCreados"`
    Monto             model.Centimos `json:"monto"`
    MetodoPago        *string        `json:"metodoPago,omitempty"`
    UltimoError       *string        `json:"ultimoError,omitempty"`
    CreadoEn          time.Time      `json:"creadoEn"`
    ActualizadoEn     time.Time      `json:"actualizadoEn"`
}

func toAttemptViews(recs []repository.AttemptRecord) []attemptView {
    out := make([]attemptView, 0, len(recs))
    for _, r := range recs {
        out = append(out, attemptView{
            ID:                r.ID,
            PacienteID:        r.PatientID,
            CitaID:            r.CitaID,
            Estado:            r.State,
            Incompleto:        model.BookingState(r.State).Incomplete(),
            DetallesEsperados: r.DetailsExpected,
            DetallesCreados:   r.DetailsCreated,
            Monto:             model.Centimos(r.MontoCentimos),
            MetodoPago:        r.PaymentMethod,
            UltimoError:       r.LastError,
            CreadoEn:          r.CreatedAt,
            ActualizadoEn:     r.UpdatedAt,
        })
    }
    return out
}

func limitParam(c echo.Context) int {
    n, err := strconv.Atoi(c.QueryParam("limit"))
    if err != nil {
        return 0
    }
    return n
}

// MyAttempts handles GET /v1/mis-intentos.
func (h *AttemptHandler) MyAttempts(c echo.Context) error {
    p, ok := middleware.PatientFrom(c)
    if !ok || p.ID == 0 {
        return unauthorized(c)
    }
    recs, err := h.Attempts.ListByPatient(c.Request().Context(), p.ID, limitParam(c))
    if err != nil {
        h.Log.Error("attempts.MyAttempts query failed", zap.Int64("patient_id", p.ID), zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"data": toAttemptViews(recs)})
}

// Incomplete handles GET /v1/admin/intentos-incompletos: appointments
// that exist on the backend with missing details or an unsettled payment.
func (h *AttemptHandler) Incomplete(c echo.Context) error {
    recs, err := h.Attempts.ListIncomplete(c.Request().Context(), limitParam(c))
    if err != nil {
        h.Log.Error("attempts.Incomplete query failed", zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"data": toAttemptViews(recs)})
}
