package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/iliyamo/venue-booking/internal/booking"
    "github.com/iliyamo/venue-booking/internal/model"
    "github.com/iliyamo/venue-booking/internal/repository"
)

const webhookSecret = "whsec_test"

var (
    sessionStart = time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC) // a Monday
    startClock   = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
)

type fakeClock struct {
    mu sync.Mutex
    t  time.Time
}

func (c *fakeClock) Now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
    c.mu.Lock()
    defer c.mu.Unlock()
    c.t = c.t.Add(d)
}

type server struct {
    e     *echo.Echo
    store *repository.MemoryStore
    clock *fakeClock
    svc   *booking.Service
}

func newServer(t *testing.T) *server {
    t.Helper()
    ctx := context.Background()
    store := repository.NewMemoryStore()
    maxFour := 4

    require.NoError(t, store.SaveOrg(ctx, model.Org{ID: "org-1", Name: "Lock & Key", ServiceFeeBps: 500, Currency: "usd"}))
    require.NoError(t, store.SaveGame(ctx, model.Game{
        ID:               "game-1",
        OrgID:            "org-1",
        Name:             "The Vault",
        DurationMins:     60,
        BufferMins:       15,
        SlotIntervalMins: 30,
        MinPlayers:       2,
        MaxPlayers:       8,
        AllowPrivate:     true,
        AllowPublic:      true,
        PricingTiers: []model.PricingTier{
            {MinPlayers: 1, MaxPlayers: &maxFour, UnitAmountCents: 2000},
            {MinPlayers: 5, UnitAmountCents: 1800},
        },
    }))
    require.NoError(t, store.SaveRoom(ctx, model.Room{ID: "room-1", OrgID: "org-1", GameID: "game-1", Name: "Vault A", MaxPlayers: 6, Enabled: true}))
    require.NoError(t, store.SaveSchedule(ctx, model.Schedule{
        OrgID:        "org-1",
        GameID:       "game-1",
        OpeningHours: []model.OpeningHours{{DayOfWeek: 1, Start: "10:00", End: "13:00"}},
    }))

    clock := &fakeClock{t: startClock}
    svc := booking.NewService(store, nil, zap.NewNop(), clock.Now)
    log := zap.NewNop()

    e := echo.New()
    avail := NewAvailabilityHandler(svc, log)
    holds := NewHoldHandler(svc, log)
    owner := NewOwnerHandler(svc, log)
    hook := NewStripeWebhook(svc, webhookSecret, log)

    e.GET("/orgs/:org_id/games/:game_id/availability", avail.Slots)
    e.GET("/orgs/:org_id/games/:game_id/calendar", avail.Calendar)
    e.GET("/orgs/:org_id/games/:game_id/quote", avail.Quote)
    e.POST("/orgs/:org_id/holds", holds.Create)
    e.GET("/orgs/:org_id/holds/:hold_id", holds.Get)
    e.POST("/orgs/:org_id/holds/:hold_id/confirm", holds.Confirm)
    e.DELETE("/owner/orgs/:org_id/holds/:hold_id", owner.CancelHold)
    e.GET("/owner/orgs/:org_id/games/:game_id/bookings", owner.ListBookings)
    e.POST("/owner/orgs/:org_id/sweep", owner.Sweep)
    e.POST("/webhooks/stripe", hook.Handle)

    return &server{e: e, store: store, clock: clock, svc: svc}
}

func (s *server) do(t *testing.T, method, target, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
    t.Helper()
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    for k, v := range header {
        req.Header.Set(k, v)
    }
    rec := httptest.NewRecorder()
    s.e.ServeHTTP(rec, req)

    var out map[string]any
    if rec.Body.Len() > 0 {
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
    }
    return rec, out
}

func holdBody(bookingType string, players int) string {
    b, _ := json.Marshal(map[string]any{
        "game_id":      "game-1",
        "room_id":      "room-1",
        "booking_type": bookingType,
        "start_at":     sessionStart,
        "end_at":       sessionStart.Add(time.Hour),
        "players":      players,
        "customer":     map[string]string{"name": "Grace", "email": "grace@example.com"},
    })
    return string(b)
}

// placeHold creates a hold through the API and returns its id.
func (s *server) placeHold(t *testing.T, bookingType string, players int) string {
    t.Helper()
    rec, body := s.do(t, http.MethodPost, "/orgs/org-1/holds", holdBody(bookingType, players), nil)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    return body["id"].(string)
}
