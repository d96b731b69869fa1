package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

const secret = "test-secret"

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func whoami(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user_id": UserID(c), "role": Role(c), "jti": TokenID(c)})
}

func TestJWTAuth(t *testing.T) {
	deny := session.NewMemory()
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret, deny))

	tok, err := utils.NewAccessToken(secret, 7, model.RoleUser, time.Hour)
	require.NoError(t, err)
	rec := serve(e, http.MethodGet, "/me", tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"user","jti":"`+tok.JTI+`"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Missing authentication token"}`, rec.Body.String())

	other, err := utils.NewAccessToken("other", 7, model.RoleUser, time.Hour)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/me", other.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")

	require.NoError(t, deny.Revoke(context.Background(), tok.JTI, tok.Exp))
	rec = serve(e, http.MethodGet, "/me", tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsBasicScheme(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret, nil))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic dTpw")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	users := map[uint64]*model.User{
		1: {ID: 1, Role: model.RoleAdmin},
		2: {ID: 2, Role: model.RoleUser},
	}
	lookup := func(_ context.Context, id uint64) (*model.User, error) {
		if id == 3 {
			return nil, errors.New("db down")
		}
		u, ok := users[id]
		if !ok {
			return nil, apperr.NotFound("User not found")
		}
		return u, nil
	}
	e := echo.New()
	e.GET("/admin", whoami, JWTAuth(secret, nil), RequireAdmin(lookup))

	token := func(id uint64, role string) string {
		tok, err := utils.NewAccessToken(secret, id, role, time.Hour)
		require.NoError(t, err)
		return tok.Token
	}

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/admin", token(1, model.RoleAdmin)).Code)

	// The stored role wins over the claim.
	rec := serve(e, http.MethodGet, "/admin", token(2, model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin access required")

	rec = serve(e, http.MethodGet, "/admin", token(9, model.RoleAdmin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")

	assert.Equal(t, http.StatusInternalServerError, serve(e, http.MethodGet, "/admin", token(3, model.RoleAdmin)).Code)
}

func limitConfig(strategy string) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    strategy,
		Prefix:         "rl",
	}
}

func TestTokenBucketLocal(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(limitConfig("ip"), secret, nil, nil))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := range 2 {
		rec := serve(e, http.MethodGet, "/ping", "")
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := serve(e, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestTokenBucketDisabled(t *testing.T) {
	cfg := limitConfig("ip")
	cfg.Enabled = false
	e := echo.New()
	e.Use(NewTokenBucket(cfg, secret, nil, nil))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	for range 5 {
		assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/ping", "").Code)
	}
}

func TestTokenBucketFallsBackWhenRedisFails(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer rdb.Close()
	core, logs := observer.New(zap.WarnLevel)

	e := echo.New()
	e.Use(NewTokenBucket(limitConfig("ip"), secret, rdb, zap.New(core)))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	codes := []int{}
	for range 3 {
		codes = append(codes, serve(e, http.MethodGet, "/ping", "").Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 3, logs.FilterMessage("rate limit redis error").Len())
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/movies/1", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/movies/:id")

	assert.Equal(t, "rl:ip:10.0.0.1", buildRateKey(limitConfig("ip"), secret, c))
	assert.Equal(t, "rl:user:anon", buildRateKey(limitConfig("user"), secret, c))
	c.Set(CtxUserID, uint64(5))
	assert.Equal(t, "rl:ip:10.0.0.1:user:5:route:GET /api/movies/:id", buildRateKey(limitConfig(""), secret, c))
}

func TestBuildRateKeyReadsBearerToken(t *testing.T) {
	e := echo.New()
	keyFor := func(token string) string {
		req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/api/movies")
		return buildRateKey(limitConfig("user_route"), secret, c)
	}

	tok, err := utils.NewAccessToken(secret, 9, model.RoleUser, time.Hour)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("other", 9, model.RoleUser, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "rl:user:9:route:GET /api/movies", keyFor(tok.Token))
	assert.Equal(t, "rl:user:anon:route:GET /api/movies", keyFor(forged.Token))
	assert.Equal(t, "rl:user:anon:route:GET /api/movies", keyFor(""))
}

func TestTokenBucketPerUser(t *testing.T) {
	cfg := limitConfig("user")
	cfg.Capacity = 1
	e := echo.New()
	e.Use(NewTokenBucket(cfg, secret, nil, nil))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	alice, err := utils.NewAccessToken(secret, 1, model.RoleUser, time.Hour)
	require.NoError(t, err)
	bob, err := utils.NewAccessToken(secret, 2, model.RoleUser, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/ping", alice.Token).Code)
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/ping", bob.Token).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/ping", alice.Token).Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })

	serve(e, http.MethodGet, "/ok", "")
	rec := serve(e, http.MethodGet, "/boom", "")
	serve(e, http.MethodGet, "/missing", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 3, logs.Len())
	entries := logs.All()
	assert.Equal(t, "request completed", entries[0].Message)
	assert.Equal(t, "request failed", entries[1].Message)
	assert.Equal(t, "request rejected", entries[2].Message)
	assert.Equal(t, int64(http.StatusNotFound), entries[2].ContextMap()["status"])
}
