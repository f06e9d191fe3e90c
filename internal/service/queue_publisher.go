// Package queue_publisher publishes booking events to RabbitMQ.  Errors
// are logged and returned so callers can ignore failures without
// interrupting the request that produced the event.
package queue_publisher

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    q "github.com/iliyamo/spa-booking/internal/queue"
)

// Publisher publishes each event on its own short-lived connection.  The
// event volume is one or two messages per booking, so no connection is
// kept open between requests.
type Publisher struct {
    url     string
    log     *zap.Logger
    timeout time.Duration
    dial    func(url string, timeout time.Duration) (*amqp.Connection, error)
}

// New returns a Publisher for the broker at url.
func New(url string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, log: log, timeout: 5 * time.Second, dial: dialTimeout}
}

// dialTimeout is amqp.Dial with a bounded TCP connect and handshake.
func dialTimeout(url string, timeout time.Duration) (*amqp.Connection, error) {
    return amqp.DialConfig(url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
}

// budget is the publisher timeout, shortened to the caller's deadline.
func (p *Publisher) budget(ctx context.Context) time.Duration {
    d := p.timeout
    if dl, ok := ctx.Deadline(); ok {
        if left := time.Until(dl); left < d {
            d = left
        }
    }
    return d
}

// Publish sends ev to the durable queue named by ev.QueueName() through the
// default exchange.  Messages are marked persistent.
func (p *Publisher) Publish(ctx context.Context, ev q.Event) error {
    queue := ev.QueueName()
    log := p.log.With(zap.String("queue", queue))

    body, err := json.Marshal(ev)
    if err != nil {
        log.Error("rabbitmq: marshal event failed", zap.Error(err))
        return err
    }

    if err := ctx.Err(); err != nil {
        return err
    }
    timeout := p.budget(ctx)
    if timeout <= 0 {
        return context.DeadlineExceeded
    }
    ctx, cancel := context.WithTimeout(ctx, timeout)
    defer cancel()

    conn, err := p.dial(p.url, timeout)
    if err != nil {
        log.Warn("rabbitmq: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Warn("rabbitmq: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queue, // name
        true,  // durable
        false, // autoDelete
        false, // exclusive
        false, // noWait
        nil,   // args
    ); err != nil {
        log.Warn("rabbitmq: queue declare failed", zap.Error(err))
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         queue,
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",    // default exchange
        queue, // routing key = queue name
        false, // mandatory
        false, // immediate
        pub,
    ); err != nil {
        log.Warn("rabbitmq: publish failed", zap.Error(err))
        return err
    }
    log.Debug("rabbitmq: event published", zap.Int("bytes", len(body)))
    return nil
}
