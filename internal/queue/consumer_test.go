package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
    body, err := json.Marshal(CitaReservadaEvent{
        CitaID: 310, PacienteID: 42, ColaboradorID: 7, Fecha: "2025-03-14", Hora: "10:30",
        Servicios: []int64{1, 2}, ConMembresia: 1, TotalSinMembresia: 8000,
        State: "AWAITING_PAYMENT_METHOD", OccurredAt: "2025-03-01T12:00:00Z",
    })
    require.NoError(t, err)
    line, err := FormatLine(QueueCitaReservada, body)
    require.NoError(t, err)
    assert.Equal(t, "[2025-03-01T12:00:00Z] Cita reservada | cita_id=310 | paciente_id=42 | colaborador_id=7 | fecha=2025-03-14 10:30 | servicios=[1,2] | con_membresia=1 | por_pagar=8000 centimos | state=AWAITING_PAYMENT_METHOD\n", line)

    body, _ = json.Marshal(PagoRegistradoEvent{CitaID: 310, PacienteID: 42, Metodo: "tarjeta", Monto: 8000, State: "CARD_CHARGED", ChargeID: "chr_1", OccurredAt: "t"})
    line, err = FormatLine(QueuePagoRegistrado, body)
    require.NoError(t, err)
    assert.Contains(t, line, "metodo=tarjeta")
    assert.Contains(t, line, "charge_id=chr_1")

    _, err = FormatLine("unknown", body)
    assert.Error(t, err)
    _, err = FormatLine(QueueReservaIncompleta, []byte("{"))
    assert.Error(t, err)
}

func TestHandleMessageAppends(t *testing.T) {
    dir := t.TempDir()
    c := NewConsumer("amqp://unused", dir, nil)
    body, _ := json.Marshal(ReservaIncompletaEvent{CitaID: 1, PacienteID: 2, DetallesEsperados: 2, DetallesCreados: 1, Error: "boom", OccurredAt: "t"})

    require.NoError(t, c.handleMessage(QueueReservaIncompleta, body))
    require.NoError(t, c.handleMessage(QueueReservaIncompleta, body))

    raw, err := os.ReadFile(filepath.Join(dir, "booking.log"))
    require.NoError(t, err)
    assert.Equal(t, 2, countLines(string(raw)))
    assert.Contains(t, string(raw), `detalles=1/2 | error="boom"`)
}

func countLines(s string) int {
    n := 0
    for _, r := range s {
        if r == '\n' {
            n++
        }
    }
    return n
}
