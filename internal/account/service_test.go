// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package account

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/metroline/internal/adminstats"
	"github.com/tomtom215/metroline/internal/apiclient"
	"github.com/tomtom215/metroline/internal/backend"
	"github.com/tomtom215/metroline/internal/config"
	"github.com/tomtom215/metroline/internal/models"
	"github.com/tomtom215/metroline/internal/queries"
	"github.com/tomtom215/metroline/internal/query"
	"github.com/tomtom215/metroline/internal/session"
)

const profileJSON = `{"id":4,"email":"an@example.com","fullName":"Nguyen Van An","role":"ROLE_USER"}`

func signedToken(t *testing.T, exp time.Time, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "4",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

type fakeBackend struct {
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	hits     map[string]int
	bodies   map[string]string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api/")
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.hits[route]++
	f.bodies[route] = string(body)
	h, ok := f.handlers[route]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":404,"message":"not found"}`))
		return
	}
	h(w, r)
}

func (f *fakeBackend) hit(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeBackend) body(route string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

type harness struct {
	svc     *Service
	backend *fakeBackend
	session *session.Store
	cache   *query.Client
	stats   *adminstats.Store
}

func newHarness(t *testing.T, handlers map[string]http.HandlerFunc) *harness {
	t.Helper()
	fb := &fakeBackend{handlers: handlers, hits: map[string]int{}, bodies: map[string]string{}}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sess, err := session.NewStore(ctx, session.NewMemoryStorage())
	if err != nil {
		t.Fatal(err)
	}
	legacy, err := apiclient.New(&config.OriginConfig{
		BaseURL:            srv.URL + "/api",
		Timeout:            2 * time.Second,
		ForwardCredentials: true,
	}, apiclient.Options{Name: "legacy", Tokens: sess})
	if err != nil {
		t.Fatal(err)
	}
	ts, err := apiclient.New(&config.OriginConfig{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second}, apiclient.Options{Name: "ts"})
	if err != nil {
		t.Fatal(err)
	}
	api := backend.New(legacy, ts)
	cache := query.NewClient(query.Config{})
	t.Cleanup(cache.Close)
	stats := adminstats.New(api, models.StatsRange{})

	return &harness{
		svc:     New(api, sess, cache, stats),
		backend: fb,
		session: sess,
		cache:   cache,
		stats:   stats,
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	token := signedToken(t, time.Now().Add(time.Hour), models.RoleUser)
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST auth/login": respond(200, `{"status":200,"data":{"accessToken":"`+token+`"}}`),
		"GET users/me": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				respond(401, `{"status":401,"message":"Unauthorized"}`)(w, r)
				return
			}
			respond(200, `{"status":200,"data":`+profileJSON+`}`)(w, r)
		},
	})

	p, err := h.svc.Login(context.Background(), "an@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if p.ID != 4 || p.Role != models.RoleUser {
		t.Errorf("profile = %+v", p)
	}
	if !h.session.IsAuthenticated() || h.session.Token() != token {
		t.Error("session not stored")
	}
	if cached, ok := query.GetData[*models.Profile](h.cache, queries.ProfileKey()); !ok || cached.Email != "an@example.com" {
		t.Errorf("profile not cached: %+v", cached)
	}
}

func TestLoginRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t, map[string]http.HandlerFunc{
		"POST auth/login": respond(401, `{"status":401,"message":"Sai email hoặc mật khẩu"}`),
	})
	_, err := h.svc.Login(context.Background(), "an@example.com", "wrong-pass")
	if !apiclient.IsApplication(err) || apiclient.Message(err) != "Sai email hoặc mật khẩu" {
		t.Fatalf("Login() error = %v", err)
	}
	if h.session.IsAuthenticated() || h.session.Token() != "" {
		t.Error("rejected login changed the session")
	}
}

func TestLoginExpiredToken(t *testing.T) {
	t.Parallel()

	token := signedToken(t, time.Now().Add(-time.Minute), models.RoleUser)
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST auth/login": respond(200, `{"status":200,"data":{"accessToken":"`+token+`"}}`),
		"GET users/me":    respond(200, `{"status":200,"data":`+profileJSON+`}`),
	})
	if _, err := h.svc.Login(context.Background(), "an@example.com", "secret123"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Login() error = %v, want ErrSessionExpired", err)
	}
	if h.backend.hit("GET users/me") != 0 {
		t.Error("profile fetched with an expired token")
	}
}

func TestFailedReloginKeepsSession(t *testing.T) {
	t.Parallel()

	token := signedToken(t, time.Now().Add(time.Hour), models.RoleUser)
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST auth/login": respond(200, `{"status":200,"data":{"accessToken":"`+token+`"}}`),
		"GET users/me":    respond(500, `{"status":500,"message":"Internal Server Error"}`),
	})
	ctx := context.Background()
	if err := h.session.SetSession(ctx, &models.Profile{ID: 4, Email: "an@example.com", Role: models.RoleUser}, "first-token"); err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.Login(ctx, "an@example.com", "secret123"); err == nil {
		t.Fatal("Login() succeeded with a failing profile call")
	}
	if !h.session.IsAuthenticated() || h.session.Token() != "first-token" {
		t.Errorf("session after failed login: authenticated=%v token=%q", h.session.IsAuthenticated(), h.session.Token())
	}
}

func TestLoginAsAnotherUserDropsCachedData(t *testing.T) {
	t.Parallel()

	first := signedToken(t, time.Now().Add(time.Hour), models.RoleAdmin)
	second := signedToken(t, time.Now().Add(2*time.Hour), models.RoleUser)
	logins := make(chan string, 2)
	logins <- first
	logins <- second
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST auth/login": func(w http.ResponseWriter, r *http.Request) {
			respond(200, `{"status":200,"data":{"accessToken":"`+<-logins+`"}}`)(w, r)
		},
		"GET users/me": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "Bearer "+first {
				respond(200, `{"status":200,"data":{"id":1,"email":"admin@example.com","fullName":"Tran Thi Binh","role":"ROLE_ADMIN"}}`)(w, r)
				return
			}
			respond(200, `{"status":200,"data":`+profileJSON+`}`)(w, r)
		},
	})
	ctx := context.Background()

	if _, err := h.svc.Login(ctx, "admin@example.com", "secret123"); err != nil {
		t.Fatalf("first Login() error = %v", err)
	}
	h.cache.SetData(queries.MyOrdersKey(), []models.Order{{ID: 10, Code: "ORD-10", UserID: 1}})
	if err := h.stats.FetchAll(ctx); err != nil {
		t.Fatal(err)
	}

	p, err := h.svc.Login(ctx, "an@example.com", "secret123")
	if err != nil {
		t.Fatalf("second Login() error = %v", err)
	}
	if p.ID != 4 || h.session.UserID() != 4 {
		t.Errorf("signed in as %+v", p)
	}
	if orders, ok := query.GetData[[]models.Order](h.cache, queries.MyOrdersKey()); ok {
		t.Errorf("previous user's orders still cached: %+v", orders)
	}
	if h.stats.IsFetched() {
		t.Error("previous user's statistics still marked fetched")
	}
	if cached, ok := query.GetData[*models.Profile](h.cache, queries.ProfileKey()); !ok || cached.ID != 4 {
		t.Errorf("cached profile = %+v", cached)
	}
}

func TestLogoutClearsLocalStateEvenOnBackendFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, map[string]http.HandlerFunc{
		"POST auth/logout": respond(500, `{"status":500,"message":"boom"}`),
	})
	ctx := context.Background()
	if err := h.session.SetSession(ctx, &models.Profile{ID: 1, Email: "a@b.vn", Role: models.RoleAdmin}, "tok"); err != nil {
		t.Fatal(err)
	}
	h.cache.SetData(queries.MyOrdersKey(), []models.Order{{ID: 1}})

	if err := h.svc.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if h.backend.hit("POST auth/logout") != 1 {
		t.Error("backend logout not called")
	}
	if h.session.IsAuthenticated() || h.session.Token() != "" {
		t.Error("session survived logout")
	}
	if _, ok := h.cache.GetState(queries.MyOrdersKey()); ok {
		t.Error("cache survived logout")
	}
	if h.stats.IsFetched() {
		t.Error("admin stats survived logout")
	}
}

func TestRefreshProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("updates session", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, map[string]http.HandlerFunc{
			"GET users/me": respond(200, `{"status":200,"data":{"id":4,"email":"an@example.com","fullName":"An N.","role":"ROLE_USER"}}`),
		})
		_ = h.session.SetSession(ctx, &models.Profile{ID: 4, Email: "an@example.com", Role: models.RoleUser}, "opaque")
		p, err := h.svc.RefreshProfile(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if p.FullName != "An N." || h.session.Profile().FullName != "An N." {
			t.Errorf("profile not refreshed: %+v", p)
		}
	})

	t.Run("unauthorized resets", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, map[string]http.HandlerFunc{
			"GET users/me": respond(403, `{"status":403,"message":"Forbidden"}`),
		})
		_ = h.session.SetSession(ctx, &models.Profile{ID: 4, Email: "an@example.com", Role: models.RoleUser}, "opaque")
		if _, err := h.svc.RefreshProfile(ctx); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("RefreshProfile() error = %v", err)
		}
		if h.session.IsAuthenticated() {
			t.Error("session kept after 403")
		}
	})

	t.Run("server error keeps session", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, map[string]http.HandlerFunc{
			"GET users/me": respond(500, `{"status":500,"message":"down"}`),
		})
		_ = h.session.SetSession(ctx, &models.Profile{ID: 4, Email: "an@example.com", Role: models.RoleUser}, "opaque")
		if _, err := h.svc.RefreshProfile(ctx); err == nil || errors.Is(err, ErrSessionExpired) {
			t.Fatalf("RefreshProfile() error = %v", err)
		}
		if !h.session.IsAuthenticated() {
			t.Error("server error signed the user out")
		}
	})

	t.Run("signed out", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, nil)
		if _, err := h.svc.RefreshProfile(ctx); !errors.Is(err, session.ErrNotAuthenticated) {
			t.Errorf("RefreshProfile() error = %v", err)
		}
	})
}

func TestRegistration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := newHarness(t, map[string]http.HandlerFunc{
		"POST auth/send-otp":   respond(200, `{"status":200,"message":"sent"}`),
		"POST auth/verify-otp": respond(200, `{"status":200,"data":{"verified":true,"verificationToken":"vt-1"}}`),
		"POST auth/register":   respond(201, `{"status":201,"data":`+profileJSON+`}`),
	})
	reg := h.svc.NewRegistration()

	if err := reg.VerifyOTP(ctx, "123456"); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("VerifyOTP before SendOTP error = %v", err)
	}
	if _, err := reg.Complete(ctx, Details{}); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("Complete before verification error = %v", err)
	}

	if err := reg.SendOTP(ctx, "an@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := reg.SendOTP(ctx, "an@example.com"); err != nil {
		t.Fatalf("resend error = %v", err)
	}
	if reg.Step() != StepOTPSent {
		t.Errorf("step = %s", reg.Step())
	}
	if err := reg.VerifyOTP(ctx, "123456"); err != nil {
		t.Fatal(err)
	}
	if err := reg.SendOTP(ctx, "other@example.com"); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("SendOTP after verification error = %v", err)
	}

	p, err := reg.Complete(ctx, Details{Password: "secret123", FullName: "Nguyen Van An"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Email != "an@example.com" || reg.Step() != StepCompleted {
		t.Errorf("profile %+v step %s", p, reg.Step())
	}
	body := h.backend.body("POST auth/register")
	if !strings.Contains(body, `"verificationToken":"vt-1"`) || !strings.Contains(body, `"otp":"123456"`) {
		t.Errorf("register body = %s", body)
	}
}

func TestRegistrationRejectedOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := newHarness(t, map[string]http.HandlerFunc{
		"POST auth/send-otp":   respond(200, `{"status":200}`),
		"POST auth/verify-otp": respond(200, `{"status":200,"data":{"verified":false}}`),
	})
	reg := h.svc.NewRegistration()
	_ = reg.SendOTP(ctx, "an@example.com")
	if err := reg.VerifyOTP(ctx, "000000"); !errors.Is(err, ErrOTPRejected) {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	if reg.Step() != StepOTPSent {
		t.Errorf("step after rejection = %s", reg.Step())
	}
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := newHarness(t, map[string]http.HandlerFunc{
		"POST auth/forgot-password": respond(200, `{"status":200}`),
		"POST auth/reset-password":  respond(200, `{"status":200}`),
	})
	pr := h.svc.NewPasswordReset()
	if err := pr.Reset(ctx, "123456", "newsecret1"); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("Reset before Request error = %v", err)
	}
	if err := pr.Request(ctx, "an@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := pr.Reset(ctx, "123456", "newsecret1"); err != nil {
		t.Fatal(err)
	}
	if err := pr.Reset(ctx, "123456", "newsecret1"); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("second Reset error = %v", err)
	}
	if !strings.Contains(h.backend.body("POST auth/reset-password"), `"email":"an@example.com"`) {
		t.Error("reset did not carry the requested email")
	}
}

func TestInspectToken(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	info, err := InspectToken(signedToken(t, exp, models.RoleAdmin))
	if err != nil {
		t.Fatal(err)
	}
	if info.Subject != "4" || info.Role != models.RoleAdmin || !info.ExpiresAt.Equal(exp) {
		t.Errorf("info = %+v", info)
	}
	if info.Expired(time.Now()) || !info.Expired(exp) {
		t.Error("Expired() wrong")
	}
	if _, err := InspectToken("opaque-session-token"); err == nil {
		t.Error("expected error for non-JWT token")
	}
	if _, err := InspectToken(""); err == nil {
		t.Error("expected error for empty token")
	}
}
