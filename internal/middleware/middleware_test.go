package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func TestAuth(t *testing.T) {
	t.Run("Missing Token", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetUserIDFromContext(r.Context())
			assert.False(t, ok, "Context should not contain user ID")
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()

		Auth(testSecret)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		Auth(testSecret)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		tokenString := signed(t, jwt.MapClaims{
			"user_id": float64(1),
			"role":    "USER",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "1", userID)
			assert.Equal(t, "USER", utils.GetUserRoleFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})

		Auth(testSecret)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Cookie Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signed(t, jwt.MapClaims{"user_id": "9"})})
		w := httptest.NewRecorder()

		var got string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = CustomerRef(r.Context())
		})

		Auth(testSecret)(next).ServeHTTP(w, req)

		assert.Equal(t, "9", got)
	})

	t.Run("Expired Token", func(t *testing.T) {
		tokenString := signed(t, jwt.MapClaims{
			"user_id": float64(1),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		Auth(testSecret)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetUserIDFromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})

		Auth(testSecret)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole(utils.RoleAdmin)(ok)

	tests := []struct {
		name   string
		ctx    context.Context
		status int
	}{
		{"Anonymous", context.Background(), http.StatusUnauthorized},
		{"Wrong role", utils.SetUserContext(context.Background(), "1", "USER"), http.StatusForbidden},
		{"Admin", utils.SetUserContext(context.Background(), "1", utils.RoleAdmin), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PATCH", "/orders/OM-1/status", nil).WithContext(tt.ctx)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSession(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	})
	handler := Session(false)(next)

	t.Run("Issues cookie when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/cart", nil))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, cookies[0].Value, seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})

	t.Run("Keeps existing session", func(t *testing.T) {
		sid := uuid.New().String()
		req := httptest.NewRequest("GET", "/cart", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sid})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, sid, seen)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("Replaces forged session", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cart", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "../../etc"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.NotEqual(t, "../../etc", seen)
		assert.Len(t, w.Result().Cookies(), 1)
	})
}

func TestCanViewOrder(t *testing.T) {
	guest := logger.WithSessionID(context.Background(), "abc")
	assert.True(t, CanViewOrder(guest, "guest:abc"))
	assert.False(t, CanViewOrder(guest, "guest:other"))

	user := utils.SetUserContext(guest, "42", "USER")
	assert.True(t, CanViewOrder(user, "42"))
	assert.False(t, CanViewOrder(user, "guest:abc"))

	admin := utils.SetUserContext(guest, "1", utils.RoleAdmin)
	assert.True(t, CanViewOrder(admin, "42"))
}

func TestCustomerRef(t *testing.T) {
	ctx := logger.WithSessionID(context.Background(), "abc")
	assert.Equal(t, "guest:abc", CustomerRef(ctx))

	ctx = utils.SetUserContext(ctx, "42", "USER")
	assert.Equal(t, "42", CustomerRef(ctx))
}

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	burstStrict := defaultTiers[tierStrict].burst

	checkout := func(handler http.Handler, withCookie func(int) *http.Cookie) []int {
		codes := make([]int, 0, burstStrict+1)
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
			if c := withCookie(i); c != nil {
				req.AddCookie(c)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}
		return codes
	}

	assertLimitedAfterBurst := func(t *testing.T, codes []int) {
		t.Helper()
		for _, c := range codes[:burstStrict] {
			assert.Equal(t, http.StatusOK, c)
		}
		assert.Equal(t, http.StatusTooManyRequests, codes[burstStrict])
	}

	t.Run("Checkout uses the strict tier", func(t *testing.T) {
		handler := Session(false)(NewRateLimiter("").Middleware(ok))
		sid := &http.Cookie{Name: SessionCookieName, Value: uuid.New().String()}

		assertLimitedAfterBurst(t, checkout(handler, func(int) *http.Cookie { return sid }))
	})

	t.Run("Cookieless guests cannot reset their bucket", func(t *testing.T) {
		handler := Session(false)(NewRateLimiter("").Middleware(ok))

		assertLimitedAfterBurst(t, checkout(handler, func(int) *http.Cookie { return nil }))
	})

	t.Run("A fresh session cookie per request does not help", func(t *testing.T) {
		handler := Session(false)(NewRateLimiter("").Middleware(ok))

		assertLimitedAfterBurst(t, checkout(handler, func(int) *http.Cookie {
			return &http.Cookie{Name: SessionCookieName, Value: uuid.New().String()}
		}))
	})

	t.Run("Browsing stays in the general tier", func(t *testing.T) {
		handler := NewRateLimiter("").Middleware(ok)

		for i := 0; i < burstStrict+1; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("Signed in users have their own bucket", func(t *testing.T) {
		handler := NewRateLimiter("").Middleware(ok)
		for i := 0; i < burstStrict; i++ {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/checkout", nil))
		}

		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), "42", "USER"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Idle buckets are swept", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		l := NewRateLimiter("")
		l.now = func() time.Time { return now }

		l.allow("ip:10.0.0.1:general", defaultTiers[tierGeneral])
		assert.Equal(t, 1, l.size())

		now = now.Add(visitorIdle + sweepInterval)
		l.allow("ip:10.0.0.2:general", defaultTiers[tierGeneral])
		assert.Equal(t, 1, l.size())
	})
}

func TestRateLimiter_TierFor(t *testing.T) {
	l := NewRateLimiter("internal-secret")

	assert.Equal(t, tierStrict, l.tierFor(httptest.NewRequest(http.MethodPost, "/checkout", nil)))
	assert.Equal(t, tierGeneral, l.tierFor(httptest.NewRequest(http.MethodGet, "/checkout", nil)))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("X-Client-Type", "frontend-heavy")
	assert.Equal(t, tierFrontend, l.tierFor(req))

	req = httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set("X-Service-Auth", "internal-secret")
	assert.Equal(t, tierInternal, l.tierFor(req))

	req.Header.Set("X-Service-Auth", "")
	assert.Equal(t, tierStrict, NewRateLimiter("").tierFor(req))
}

func TestIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "ip:10.0.0.7", identity(req))

	req = req.WithContext(logger.WithSessionID(req.Context(), "sid"))
	assert.Equal(t, "ip:10.0.0.7", identity(req))

	req = req.WithContext(utils.SetUserContext(req.Context(), "42", "USER"))
	assert.Equal(t, "user:42", identity(req))
}
