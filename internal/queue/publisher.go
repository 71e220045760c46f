package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/venue-booking/internal/booking"
    "github.com/iliyamo/venue-booking/internal/metrics"
)

// DefaultDialTimeout bounds the TCP connect and AMQP handshake of a
// publish.
const DefaultDialTimeout = 3 * time.Second

// Publisher publishes booking confirmations to RabbitMQ.  Each publish
// dials its own connection; confirmations are rare enough that a pooled
// channel is not worth the reconnect bookkeeping.
type Publisher struct {
    url         string
    dialTimeout time.Duration
    log         *zap.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, dialTimeout: DefaultDialTimeout, log: log}
}

// dial connects to the broker, giving up at the dial timeout or the
// context deadline, whichever comes first.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
    timeout := p.dialTimeout
    if deadline, ok := ctx.Deadline(); ok {
        if left := time.Until(deadline); left < timeout {
            timeout = left
        }
    }
    if timeout <= 0 {
        return nil, context.DeadlineExceeded
    }
    return amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
}

var _ booking.Notifier = (*Publisher)(nil)

// BookingConfirmed implements booking.Notifier.
func (p *Publisher) BookingConfirmed(ctx context.Context, n booking.Notification) error {
    err := p.Publish(ctx, NewBookingConfirmedEvent(n))
    result := "ok"
    if err != nil {
        result = "error"
    }
    metrics.NotificationsSent.WithLabelValues("publish", result).Inc()
    return err
}

// Publish sends event to the booking.confirmed queue as a persistent JSON
// message.  Errors are logged and returned so the caller can choose to
// ignore them.
func (p *Publisher) Publish(ctx context.Context, event BookingConfirmedEvent) error {
    body, err := json.Marshal(event)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    conn, err := p.dial(ctx)
    if err != nil {
        p.log.Warn("rabbitmq dial failed", zap.Error(err))
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := declareQueue(ch); err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    event.BookingID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                    // default exchange
        BookingConfirmedQueue, // routing key = queue name
        false,                 // mandatory
        false,                 // immediate
        pub,
    ); err != nil {
        p.log.Warn("rabbitmq publish failed", zap.String("booking_id", event.BookingID), zap.Error(err))
        return fmt.Errorf("publish: %w", err)
    }
    p.log.Debug("booking confirmation published", zap.String("booking_id", event.BookingID))
    return nil
}

// declareQueue makes sure the durable queue exists.  Declaring is
// idempotent so both sides do it.
func declareQueue(ch *amqp.Channel) error {
    if _, err := ch.QueueDeclare(
        BookingConfirmedQueue, // name
        true,                  // durable
        false,                 // autoDelete
        false,                 // exclusive
        false,                 // noWait
        nil,                   // args
    ); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    return nil
}
