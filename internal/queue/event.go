// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  All queues are durable and fed through the default exchange.
const (
    QueueCitaReservada     = "booking.cita_reservada"
    QueueReservaIncompleta = "booking.reserva_incompleta"
    QueuePagoRegistrado    = "booking.pago_registrado"
)

// Queues lists every queue the consumer declares and drains.
var Queues = []string{QueueCitaReservada, QueueReservaIncompleta, QueuePagoRegistrado}

// Event is implemented by every payload; QueueName is the routing key.
type Event interface {
    QueueName() string
}

// CitaReservadaEvent is published once an appointment and all of its
// details exist on the backend.  State says whether it was settled by
// membership or now waits for a payment method.
type CitaReservadaEvent struct {
    CitaID            int64   `json:"cita_id"`
    PacienteID        int64   `json:"paciente_id"`
    ColaboradorID     int64   `json:"colaborador_id"`
    Fecha             string  `json:"fecha"`
    Hora              string  `json:"hora"`
    Servicios         []int64 `json:"servicios"`
    ConMembresia      int     `json:"con_membresia"`
    TotalSinMembresia int64   `json:"total_sin_membresia_centimos"`
    State             string  `json:"state"`
    OccurredAt        string  `json:"occurred_at"`
}

func (CitaReservadaEvent) QueueName() string { return QueueCitaReservada }

// ReservaIncompletaEvent is published when an appointment was left on the
// backend unfinished: detail creation stopped part way, or every detail
// exists but the pending payment could not be stored.  No compensating
// delete is issued; this event is the signal for the front desk to fix it
// up.
type ReservaIncompletaEvent struct {
    CitaID            int64  `json:"cita_id"`
    PacienteID        int64  `json:"paciente_id"`
    DetallesEsperados int    `json:"detalles_esperados"`
    DetallesCreados   int    `json:"detalles_creados"`
    Error             string `json:"error"`
    OccurredAt        string `json:"occurred_at"`
}

func (ReservaIncompletaEvent) QueueName() string { return QueueReservaIncompleta }

// PagoRegistradoEvent is published after a settlement call succeeds.  Cash
// and Yape payments still wait for front-desk confirmation on the backend.
type PagoRegistradoEvent struct {
    CitaID     int64  `json:"cita_id"`
    PacienteID int64  `json:"paciente_id"`
    Metodo     string `json:"metodo"`
    Monto      int64  `json:"monto_centimos"`
    State      string `json:"state"`
    ChargeID   string `json:"charge_id,omitempty"`
    OccurredAt string `json:"occurred_at"`
}

func (PagoRegistradoEvent) QueueName() string { return QueuePagoRegistrado }
