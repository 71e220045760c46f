package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zaptest/observer"

    "github.com/iliyamo/venue-booking/internal/config"
    "github.com/iliyamo/venue-booking/internal/logging"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
    t.Helper()
    s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
    require.NoError(t, err)
    return s
}

func ownerClaims(org string) jwt.MapClaims {
    return jwt.MapClaims{
        "sub":  "owner-7",
        "role": "OWNER",
        "org":  org,
        "exp":  time.Now().Add(time.Hour).Unix(),
    }
}

func newOwnerEcho() *echo.Echo {
    e := echo.New()
    g := e.Group("/owner", JWTAuth(testSecret), RequireRole("OWNER"))
    g.GET("/orgs/:org_id", func(c echo.Context) error {
        return c.String(http.StatusOK, c.Get(CtxUserID).(string))
    }, RequireOrgScope())
    return e
}

func doGet(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, path, nil)
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuth(t *testing.T) {
    e := newOwnerEcho()

    rec := doGet(e, "/owner/orgs/org-1", sign(t, jwt.SigningMethodHS256, ownerClaims("org-1")))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "owner-7", rec.Body.String())

    rec = doGet(e, "/owner/orgs/org-1", "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    rec = doGet(e, "/owner/orgs/org-1", sign(t, jwt.SigningMethodHS512, ownerClaims("org-1")))
    assert.Equal(t, http.StatusUnauthorized, rec.Code, "only HS256 is accepted")

    expired := ownerClaims("org-1")
    expired["exp"] = time.Now().Add(-time.Minute).Unix()
    rec = doGet(e, "/owner/orgs/org-1", sign(t, jwt.SigningMethodHS256, expired))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    noOrg := ownerClaims("")
    rec = doGet(e, "/owner/orgs/org-1", sign(t, jwt.SigningMethodHS256, noOrg))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleAndOrgScope(t *testing.T) {
    e := newOwnerEcho()

    staff := ownerClaims("org-1")
    staff["role"] = "STAFF"
    rec := doGet(e, "/owner/orgs/org-1", sign(t, jwt.SigningMethodHS256, staff))
    assert.Equal(t, http.StatusForbidden, rec.Code)

    rec = doGet(e, "/owner/orgs/org-2", sign(t, jwt.SigningMethodHS256, ownerClaims("org-1")))
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Contains(t, rec.Body.String(), "organization out of scope")
}

func TestTokenBucketDisabledOrNoRedis(t *testing.T) {
    next := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
    for _, mw := range []echo.MiddlewareFunc{
        NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, zap.NewNop()),
        NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, zap.NewNop()),
    } {
        e := echo.New()
        e.GET("/x", next, mw)
        assert.Equal(t, http.StatusNoContent, doGet(e, "/x", "").Code)
    }
}

func TestTokenBucketFailsOpen(t *testing.T) {
    rdb := redis.NewClient(&redis.Options{
        Addr:        "127.0.0.1:1",
        DialTimeout: 100 * time.Millisecond,
        MaxRetries:  -1,
    })
    t.Cleanup(func() { _ = rdb.Close() })

    cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
    e := echo.New()
    e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb, zap.NewNop()))

    for i := 0; i < 3; i++ {
        assert.Equal(t, http.StatusNoContent, doGet(e, "/x", "").Code)
    }
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/orgs/org-1/holds", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/orgs/:org_id/holds")
    c.SetParamNames("org_id")
    c.SetParamValues("org-1")

    cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_org_route"}
    assert.Equal(t, "rl:ip:10.0.0.9:org:org-1:route:POST /v1/orgs/:org_id/holds", buildRateKey(cfg, c))

    cfg.KeyStrategy = "ip"
    assert.Equal(t, "rl:ip:10.0.0.9", buildRateKey(cfg, c))

    c.Set(CtxUserID, "owner-7")
    cfg.KeyStrategy = "ip_org"
    assert.Equal(t, "rl:ip:10.0.0.9:org:org-1:user:owner-7", buildRateKey(cfg, c))
}

func TestCacheKeyIsPerTenantAndPath(t *testing.T) {
    e := echo.New()
    cfg := config.CacheConfig{Prefix: "cache"}
    key := func(target, org string) string {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
        c.SetParamNames("org_id")
        c.SetParamValues(org)
        return cacheKeyFrom(cfg, c)
    }

    a := key("/v1/orgs/org-1/games/g/availability?date=2026-11-02&players=4", "org-1")
    b := key("/v1/orgs/org-2/games/g/availability?date=2026-11-02&players=4", "org-2")
    reordered := key("/v1/orgs/org-1/games/g/availability?players=4&date=2026-11-02", "org-1")

    assert.NotEqual(t, a, b)
    assert.Equal(t, a, reordered)
    assert.Contains(t, a, "cache:org-1:")
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"items":[]}`))
    require.NoError(t, err)

    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, hdr, got)
    assert.Equal(t, `{"items":[]}`, string(body))

    _, _, _, ok = decodePayload(bs[:6])
    assert.False(t, ok)
}

func TestCaptureWriterLimit(t *testing.T) {
    rec := httptest.NewRecorder()
    cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
    _, _ = cw.Write([]byte("abc"))
    assert.False(t, cw.truncated())
    _, _ = cw.Write([]byte("def"))

    assert.True(t, cw.truncated())
    assert.Equal(t, "abcd", cw.buf.String())
    assert.Equal(t, "abcdef", rec.Body.String())
}

func TestRequestLogger(t *testing.T) {
    core, logs := observer.New(zap.DebugLevel)
    e := echo.New()
    e.Use(RequestLogger(zap.New(core)))
    e.GET("/x", func(c echo.Context) error {
        logging.FromContext(c.Request().Context(), nil).Info("inside")
        return c.NoContent(http.StatusNoContent)
    })
    e.GET("/boom", func(c echo.Context) error {
        return echo.NewHTTPError(http.StatusBadGateway, "upstream")
    })

    req := httptest.NewRequest(http.MethodGet, "/x", nil)
    req.Header.Set(HeaderCorrelationID, "corr-1")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.Equal(t, "corr-1", rec.Header().Get(HeaderCorrelationID))
    inside := logs.FilterMessage("inside").All()
    require.Len(t, inside, 1)
    assert.Equal(t, "corr-1", inside[0].ContextMap()["correlation_id"])

    rec = doGet(e, "/boom", "")
    assert.Equal(t, http.StatusBadGateway, rec.Code)
    assert.NotEmpty(t, rec.Header().Get(HeaderCorrelationID))
    failed := logs.FilterMessage("request").FilterField(zap.Int("status", http.StatusBadGateway)).All()
    assert.Len(t, failed, 1)
}
