package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/booking"
    "github.com/iliyamo/spa-booking/internal/spaapi"
)

// Messages shown to the patient.  Internal details stay in the logs.
const (
    msgBackendDown  = "No se pudo conectar con el sistema del spa, intenta nuevamente"
    msgPartial      = "La cita se creó pero no se pudieron registrar todos los servicios; comunícate con recepción"
    msgSettleFailed = "No se pudo registrar el pago, puedes intentarlo nuevamente"
    msgInternal     = "Ocurrió un error inesperado"
)

// respondError maps booking and backend errors to a JSON {"error": ...}
// body.  extra fields are merged into the body.
func respondError(c echo.Context, log *zap.Logger, err error, extra echo.Map) error {
    status, msg := classify(err)
    body := echo.Map{"error": msg}
    var verr *booking.ValidationError
    if errors.As(err, &verr) {
        body["field"] = verr.Field
    }
    for k, v := range extra {
        body[k] = v
    }
    if status >= http.StatusInternalServerError {
        log.Error("request failed",
            zap.String("route", c.Path()),
            zap.Int("status", status),
            zap.Error(err),
        )
    }
    return c.JSON(status, body)
}

func classify(err error) (int, string) {
    var (
        verr    *booking.ValidationError
        partial *booking.PartialError
        settle  *booking.SettlementError
    )
    switch {
    case errors.As(err, &verr):
        return http.StatusUnprocessableEntity, verr.Message
    case errors.As(err, &partial):
        return http.StatusBadGateway, msgPartial
    case errors.As(err, &settle):
        if status := backendStatus(err); status == http.StatusNotFound || status == http.StatusConflict {
            return status, backendMessageOr(err, msgSettleFailed)
        }
        if msg := backendMessage(err); msg != "" {
            return http.StatusBadGateway, msg
        }
        return http.StatusBadGateway, msgSettleFailed
    case errors.Is(err, booking.ErrNoBenefit):
        return http.StatusUnprocessableEntity, "Este servicio no tiene beneficio de membresía disponible"
    case errors.Is(err, booking.ErrNotSelected):
        return http.StatusNotFound, "El servicio no está seleccionado"
    case errors.Is(err, booking.ErrMultipleActiveSubscriptions):
        return http.StatusConflict, "Tienes más de una membresía activa; comunícate con recepción"
    case errors.Is(err, booking.ErrSubmissionInProgress):
        return http.StatusConflict, "Ya estamos registrando tu cita"
    case errors.Is(err, booking.ErrSettlementInProgress):
        return http.StatusConflict, "Ya estamos procesando el pago de esta cita"
    case errors.Is(err, booking.ErrNoPendingPayment):
        return http.StatusNotFound, "No hay un pago pendiente para esta cita"
    case errors.Is(err, booking.ErrInvalidMethod):
        return http.StatusBadRequest, "Método de pago no permitido para esta cita"
    case errors.Is(err, booking.ErrCardTokenRequired):
        return http.StatusBadRequest, "Falta el token de la tarjeta"
    case spaapi.IsNotFound(err):
        return http.StatusNotFound, backendMessageOr(err, "Recurso no encontrado")
    }
    var apiErr *spaapi.APIError
    if errors.As(err, &apiErr) {
        return http.StatusBadGateway, backendMessageOr(err, msgBackendDown)
    }
    return http.StatusInternalServerError, msgInternal
}

// backendMessage returns the message of a 4xx backend rejection, which
// is meant for the user.
func backendMessage(err error) string {
    var apiErr *spaapi.APIError
    if errors.As(err, &apiErr) && spaapi.IsClientError(err) {
        return apiErr.Message
    }
    return ""
}

func backendStatus(err error) int {
    var apiErr *spaapi.APIError
    if errors.As(err, &apiErr) {
        return apiErr.Status
    }
    return 0
}

func backendMessageOr(err error, fallback string) string {
    if msg := backendMessage(err); msg != "" {
        return msg
    }
    return fallback
}
