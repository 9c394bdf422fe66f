package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/templui/gallery/internal/config"
	"github.com/templui/gallery/internal/ctxkeys"
	"github.com/templui/gallery/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func newLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, limit, window)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter(t *testing.T) {
	rl, now := newLimiter(t, 2, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are per client")

	*now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "window slid past the old requests")

	*now = now.Add(3 * time.Minute)
	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.requests)
	rl.mu.Unlock()
}

func TestRateLimit(t *testing.T) {
	rl, _ := newLimiter(t, 1, time.Minute)
	h := RateLimit(rl)(okHandler)

	r := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	r.RemoteAddr = "192.0.2.1:5000"

	w := httptest.NewRecorder()
	h(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h(w, r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5000"
	assert.Equal(t, "192.0.2.1", getClientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", getClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(r))
}

func TestCSRFProtection(t *testing.T) {
	var seen string
	h := CSRFProtection(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.CSRFToken(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, seen)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, csrfCookieName, cookie.Name)
	assert.Equal(t, seen, cookie.Value)

	post := func(token string, header bool) int {
		form := url.Values{}
		if !header {
			form.Set(csrfFormField, token)
		}
		r := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if header {
			r.Header.Set(csrfHeader, token)
		}
		r.AddCookie(cookie)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post(cookie.Value, false))
	assert.Equal(t, http.StatusOK, post(cookie.Value, true))
	assert.Equal(t, http.StatusForbidden, post("", false))
	assert.Equal(t, http.StatusForbidden, post("forged", true))
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.Config{
		AppEnv:        "production",
		StorageDriver: "minio",
		S3Endpoint:    "localhost:9000",
	}
	h := Chain(okHandler, NonceMiddleware, SecurityHeaders(cfg))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self' 'nonce-")
	assert.Contains(t, csp, "img-src 'self' data: blob: http://localhost:9000")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestImageSources(t *testing.T) {
	assert.Equal(t,
		"'self' data: blob: https://photos.s3.eu-west-1.amazonaws.com",
		imageSources(&config.Config{S3Bucket: "photos", S3Region: "eu-west-1"}),
	)
	assert.Equal(t,
		"'self' data: blob: https://cdn.example.com",
		imageSources(&config.Config{S3PublicURL: "https://cdn.example.com/photos"}),
	)
}

func TestLimitBody(t *testing.T) {
	var tooLargeToken string
	tooLarge := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tooLargeToken = ctxkeys.CSRFToken(r.Context())
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	})
	h := Chain(okHandler, LimitBody(32, tooLarge), CSRFProtection)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := w.Result().Cookies()[0]

	post := func(body string, chunked bool) int {
		form := url.Values{csrfFormField: {cookie.Value}, "note": {body}}
		r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if chunked {
			r.ContentLength = -1
		}
		r.AddCookie(cookie)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	// the token alone is over the limit
	tests := []struct {
		name    string
		chunked bool
	}{
		{"announced", false},
		{"chunked", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tooLargeToken = ""
			assert.Equal(t, http.StatusRequestEntityTooLarge, post("far more than the limit", tt.chunked))
			assert.Equal(t, cookie.Value, tooLargeToken)
		})
	}

	small := Chain(okHandler, LimitBody(1<<10, tooLarge), CSRFProtection)
	form := url.Values{csrfFormField: {cookie.Value}}
	r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	small.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLimitBodyDefault(t *testing.T) {
	h := Chain(okHandler, LimitBody(8, nil), CSRFProtection)

	r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("far more than eight bytes"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Request body too large")
}

func TestRequireGuest(t *testing.T) {
	h := RequireGuest(okHandler)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/auth", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	ctx := ctxkeys.WithUser(context.Background(), &model.User{Email: "ada@example.com"})
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/auth", nil).WithContext(ctx))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	r := httptest.NewRequest(http.MethodGet, "/auth", nil).WithContext(ctx)
	r.Header.Set("HX-Request", "true")
	w = httptest.NewRecorder()
	h(w, r)
	assert.Equal(t, "/", w.Header().Get("HX-Redirect"))
}

func TestRequestContext(t *testing.T) {
	var path string
	var cfg *config.Config
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = ctxkeys.URLPath(r.Context())
		cfg = ctxkeys.Config(r.Context())
	}), Config(&config.Config{AppName: "Gallery", JWTSecret: "secret"}), WithURLPath)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/legal/terms", nil))

	assert.Equal(t, "/legal/terms", path)
	require.NotNil(t, cfg)
	assert.Equal(t, "Gallery", cfg.AppName)
	assert.Empty(t, cfg.JWTSecret)
}
