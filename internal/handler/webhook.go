package handler

import (
    "encoding/json"
    "io"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stripe/stripe-go/v76"
    "github.com/stripe/stripe-go/v76/webhook"
    "go.uber.org/zap"

    "github.com/iliyamo/venue-booking/internal/apperror"
    "github.com/iliyamo/venue-booking/internal/booking"
    "github.com/iliyamo/venue-booking/internal/logging"
    "github.com/iliyamo/venue-booking/internal/model"
)

const (
    maxWebhookBody       = 64 << 10
    eventIntentSucceeded = "payment_intent.succeeded"
    metadataOrgID        = "org_id"
    metadataHoldID       = "hold_id"
)

// StripeWebhook confirms holds from payment_intent.succeeded events.  The
// intent must carry org_id and hold_id metadata, set when the checkout was
// created.
type StripeWebhook struct {
    Service *booking.Service
    Secret  string
    Log     *zap.Logger
}

// NewStripeWebhook panics on a nil service or an empty signing secret.
func NewStripeWebhook(svc *booking.Service, secret string, log *zap.Logger) *StripeWebhook {
    if svc == nil || secret == "" {
        panic("NewStripeWebhook needs a service and a signing secret")
    }
    return &StripeWebhook{Service: svc, Secret: secret, Log: log}
}

// Handle serves POST /v1/webhooks/stripe.  Bad signatures get 400.  Events
// that cannot ever succeed (unknown hold, canceled hold, missing metadata)
// are acknowledged with 200 so the provider stops retrying; storage
// failures get 500 so it retries.
func (h *StripeWebhook) Handle(c echo.Context) error {
    ctx := c.Request().Context()
    log := logging.FromContext(ctx, h.Log)

    payload, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
    if err != nil {
        return badRequest(c, "unreadable body")
    }
    event, err := webhook.ConstructEventWithOptions(payload, c.Request().Header.Get("Stripe-Signature"), h.Secret,
        webhook.ConstructEventOptions{Tolerance: webhook.DefaultTolerance, IgnoreAPIVersionMismatch: true})
    if err != nil {
        log.Warn("stripe signature rejected", zap.Error(err))
        return badRequest(c, "invalid signature")
    }
    log = log.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

    if event.Type != eventIntentSucceeded {
        return c.JSON(http.StatusOK, echo.Map{"received": true, "ignored": true})
    }
    var intent stripe.PaymentIntent
    if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
        log.Warn("undecodable payment intent", zap.Error(err))
        return badRequest(c, "invalid payment intent")
    }
    orgID, holdID := intent.Metadata[metadataOrgID], intent.Metadata[metadataHoldID]
    if orgID == "" || holdID == "" {
        log.Warn("payment intent without hold metadata", zap.String("intent_id", intent.ID))
        return c.JSON(http.StatusOK, echo.Map{"received": true, "ignored": true})
    }

    res, err := h.Service.ConfirmHold(ctx, orgID, holdID, paymentProof(&intent, event.Created))
    if err != nil {
        if code := apperror.CodeOf(err); code != "" {
            log.Warn("paid hold not confirmed", zap.String("org_id", orgID), zap.String("hold_id", holdID), zap.String("code", code))
            return c.JSON(http.StatusOK, echo.Map{"received": true, "error": code})
        }
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"received": true, "booking_id": res.Booking.ID, "replayed": res.Replayed})
}

// paymentProof builds the proof from a succeeded intent.  The latest
// charge id is the external reference when present, otherwise the intent
// id itself.
func paymentProof(intent *stripe.PaymentIntent, created int64) *model.PaymentProof {
    chargeID := intent.ID
    if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
        chargeID = intent.LatestCharge.ID
    }
    paidAt := time.Unix(created, 0).UTC()
    return &model.PaymentProof{
        Status:           booking.PaymentPaid,
        PaidCents:        intent.AmountReceived,
        RemainingCents:   max(intent.Amount-intent.AmountReceived, 0),
        PaidAt:           &paidAt,
        ExternalChargeID: chargeID,
    }
}
