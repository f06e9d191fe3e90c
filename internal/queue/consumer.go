package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Consumer drains every booking queue and appends one line per event to
// <dir>/booking.log, where the front desk follows bookings that still
// need attention.
type Consumer struct {
    url string
    dir string
    log *zap.Logger
}

// NewConsumer returns a Consumer for the broker at url writing into dir
// ("logs" when empty).
func NewConsumer(url, dir string, log *zap.Logger) *Consumer {
    if dir == "" {
        dir = "logs"
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &Consumer{url: url, dir: dir, log: log}
}

// Run connects to RabbitMQ, declares the booking queues (durable) and
// consumes them until ctx is cancelled.  Lost connections are retried
// with exponential backoff capped at 30s.  A message that cannot be
// handled is rejected without requeue so the loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("booking-consumer: failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("booking-consumer: consume loop ended; reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("booking-consumer: set QoS failed", zap.Error(err))
    }

    merged := make(chan amqp.Delivery)
    var wg sync.WaitGroup
    for _, name := range Queues {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        wg.Add(1)
        go func(msgs <-chan amqp.Delivery) {
            defer wg.Done()
            for d := range msgs {
                select {
                case merged <- d:
                case <-ctx.Done():
                    return
                }
            }
        }(msgs)
    }
    go func() {
        wg.Wait()
        close(merged)
    }()

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-merged:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handleMessage(d.RoutingKey, d.Body); err != nil {
                c.log.Error("booking-consumer: handle message failed", zap.String("queue", d.RoutingKey), zap.Error(err))
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handleMessage(queue string, body []byte) error {
    line, err := FormatLine(queue, body)
    if err != nil {
        return err
    }
    if err := os.MkdirAll(c.dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.dir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders one event as a single human-readable log line.
func FormatLine(queue string, body []byte) (string, error) {
    switch queue {
    case QueueCitaReservada:
        var ev CitaReservadaEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Cita reservada | cita_id=%d | paciente_id=%d | colaborador_id=%d | fecha=%s %s | servicios=%s | con_membresia=%d | por_pagar=%d centimos | state=%s\n",
            ev.OccurredAt, ev.CitaID, ev.PacienteID, ev.ColaboradorID, ev.Fecha, ev.Hora, joinIDs(ev.Servicios), ev.ConMembresia, ev.TotalSinMembresia, ev.State), nil
    case QueueReservaIncompleta:
        var ev ReservaIncompletaEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Reserva incompleta | cita_id=%d | paciente_id=%d | detalles=%d/%d | error=%q\n",
            ev.OccurredAt, ev.CitaID, ev.PacienteID, ev.DetallesCreados, ev.DetallesEsperados, ev.Error), nil
    case QueuePagoRegistrado:
        var ev PagoRegistradoEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        line := fmt.Sprintf("[%s] Pago registrado | cita_id=%d | paciente_id=%d | metodo=%s | monto=%d centimos | state=%s",
            ev.OccurredAt, ev.CitaID, ev.PacienteID, ev.Metodo, ev.Monto, ev.State)
        if ev.ChargeID != "" {
            line += " | charge_id=" + ev.ChargeID
        }
        return line + "\n", nil
    }
    return "", fmt.Errorf("unknown queue %q", queue)
}

func joinIDs(ids []int64) string {
    parts := make([]string, len(ids))
    for i, id := range ids {
        parts[i] = fmt.Sprint(id)
    }
    return "[" + strings.Join(parts, ",") + "]"
}

// sleep waits for d or until ctx is done, reporting whether it slept.
func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
