package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
    "golang.org/x/time/rate"

    "github.com/iliyamo/venue-booking/internal/metrics"
)

// Mailer delivers a confirmation to the customer.
type Mailer interface {
    SendBookingConfirmation(ctx context.Context, ev BookingConfirmedEvent) error
}

// LogMailer "delivers" confirmations by writing them to the log.
type LogMailer struct {
    Log *zap.Logger
}

func (m LogMailer) SendBookingConfirmation(_ context.Context, ev BookingConfirmedEvent) error {
    m.Log.Info("booking confirmation",
        zap.String("confirmation_id", ev.ConfirmationID),
        zap.String("booking_id", ev.BookingID),
        zap.String("org_id", ev.OrgID),
        zap.String("to", ev.CustomerEmail),
        zap.String("venue", ev.VenueName),
        zap.String("game", ev.GameName),
        zap.String("when", ev.Date+" "+ev.Time),
        zap.Int("players", ev.Players),
        zap.String("total", ev.TotalFormatted),
    )
    return nil
}

var errBadPayload = errors.New("bad payload")

// Consumer reads the booking.confirmed queue and hands every event to a
// Mailer, no faster than its limiter allows.
type Consumer struct {
    url     string
    mailer  Mailer
    limiter *rate.Limiter
    log     *zap.Logger
}

// NewConsumer builds a Consumer.  A nil limiter means no throttling.
func NewConsumer(url string, mailer Mailer, limiter *rate.Limiter, log *zap.Logger) *Consumer {
    if limiter == nil {
        limiter = rate.NewLimiter(rate.Inf, 0)
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &Consumer{url: url, mailer: mailer, limiter: limiter, log: log}
}

// Run connects to the broker and consumes until ctx is done, reconnecting
// with exponential backoff when the connection drops.  It returns nil on
// cancellation.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("booking consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return nil
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return nil
        }
        c.log.Warn("booking consumer: consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return nil
        }
    }
}

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

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("booking consumer: set QoS failed", zap.Error(err))
    }
    if err := declareQueue(ch); err != nil {
        return err
    }
    msgs, err := ch.ConsumeWithContext(ctx, BookingConfirmedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        c.ack(d, c.handle(ctx, d.Body))
    }
    return errors.New("deliveries channel closed")
}

// acknowledger is the part of amqp.Delivery the consumer settles.
type acknowledger interface {
    Ack(multiple bool) error
    Nack(multiple, requeue bool) error
}

// ack settles a delivery.  Bad payloads are dropped; a failed send is
// requeued once and dropped on redelivery to avoid tight loops.
func (c *Consumer) ack(d amqp.Delivery, err error) {
    settle(d, d.Redelivered, err, c.log)
}

func settle(d acknowledger, redelivered bool, err error, log *zap.Logger) {
    switch {
    case err == nil:
        _ = d.Ack(false)
    case errors.Is(err, errBadPayload):
        log.Error("booking consumer: rejecting message", zap.Error(err))
        _ = d.Nack(false, false)
    default:
        log.Error("booking consumer: delivery failed", zap.Error(err), zap.Bool("redelivered", redelivered))
        _ = d.Nack(false, !redelivered)
    }
}

// handle decodes one message and sends it through the mailer.
func (c *Consumer) handle(ctx context.Context, body []byte) error {
    var ev BookingConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("%w: %v", errBadPayload, err)
    }
    if ev.BookingID == "" || ev.CustomerEmail == "" {
        return fmt.Errorf("%w: missing booking id or customer email", errBadPayload)
    }
    if err := c.limiter.Wait(ctx); err != nil {
        return fmt.Errorf("rate limit wait: %w", err)
    }
    err := c.mailer.SendBookingConfirmation(ctx, ev)
    result := "ok"
    if err != nil {
        result = "error"
    }
    metrics.NotificationsSent.WithLabelValues("deliver", result).Inc()
    return err
}
