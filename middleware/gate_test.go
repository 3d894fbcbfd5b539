package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/config"
	"github.com/revisetax/docs-gateway/idp"
	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/policy"
	"github.com/revisetax/docs-gateway/services"
)

type stubAdminAuthorizer struct {
	err error
}

func (s *stubAdminAuthorizer) Authorize(ctx context.Context, id *models.Identity) error {
	return s.err
}

type capturingAuditRecorder struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (c *capturingAuditRecorder) Record(log *models.AuditLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, log)
}

func (c *capturingAuditRecorder) last(t *testing.T) *models.AuditLog {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.logs)
	return c.logs[len(c.logs)-1]
}

func gateTestConfig() config.GatewayConfig {
	return config.GatewayConfig{
		SignInPath:       "/auth/sign-in",
		PhoneCollectPath: "/auth/phone",
		ProtectedArea:    "/dashboard",
		ProtectedPrefix:  "/dashboard",
		AdminPrefix:      "/admin",
		AuthPrefix:       "/auth",
		StaticPrefixes:   []string{"/_next", "/static"},
	}
}

type gateFixture struct {
	fetcher *MockSessionUserFetcher
	admin   *stubAdminAuthorizer
	audit   *capturingAuditRecorder
	gate    *RouteGate
}

func newGateFixture() *gateFixture {
	fetcher := &MockSessionUserFetcher{}
	admin := &stubAdminAuthorizer{}
	audit := &capturingAuditRecorder{}
	gate := NewRouteGate(
		newTestResolver(fetcher),
		policy.New(gateTestConfig()),
		admin,
		audit,
		zap.NewNop(),
	)
	return &gateFixture{fetcher: fetcher, admin: admin, audit: audit, gate: gate}
}

func serveGated(f *gateFixture, req *http.Request, next http.Handler) *httptest.ResponseRecorder {
	if next == nil {
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}
	w := httptest.NewRecorder()
	f.gate.Admit(next).ServeHTTP(w, req)
	return w
}

func TestRouteGate_PublicPage(t *testing.T) {
	f := newGateFixture()

	req := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	w := serveGated(f, req, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	entry := f.audit.last(t)
	assert.Equal(t, models.AuditOutcomeAllow, entry.Outcome)
	f.fetcher.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestRouteGate_ProtectedAnonymousRedirects(t *testing.T) {
	f := newGateFixture()

	req := httptest.NewRequest(http.MethodGet, "/dashboard/files", nil)
	w := serveGated(f, req, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/auth/sign-in", w.Header().Get("Location"))

	entry := f.audit.last(t)
	assert.Equal(t, models.AuditOutcomeRedirect, entry.Outcome)
	assert.Equal(t, "/dashboard/files", entry.Path)
}

func TestRouteGate_ProtectedAuthenticated(t *testing.T) {
	f := newGateFixture()
	f.fetcher.On("GetUser", mock.Anything, "token-1").Return(sessionUser(), nil)

	var seen *models.Identity
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "token-1"})
	w := serveGated(f, req, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetIdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "auth-user-1", seen.ID)

	entry := f.audit.last(t)
	assert.Equal(t, models.AuditOutcomeAllow, entry.Outcome)
	require.NotNil(t, entry.Subject)
	assert.Equal(t, "auth-user-1", *entry.Subject)
}

func TestRouteGate_UnverifiedPhoneRedirectsToCollection(t *testing.T) {
	f := newGateFixture()

	user := sessionUser()
	user.UserMetadata.PhoneVerified = false
	f.fetcher.On("GetUser", mock.Anything, "token-1").Return(user, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "token-1"})
	w := serveGated(f, req, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	location := w.Header().Get("Location")
	assert.Contains(t, location, "/auth/phone")
	assert.Contains(t, location, "email=user%40example.com")

	entry := f.audit.last(t)
	assert.Equal(t, models.AuditOutcomeRedirect, entry.Outcome)
}

func TestRouteGate_AdminGranted(t *testing.T) {
	f := newGateFixture()
	f.fetcher.On("GetUser", mock.Anything, "token-1").Return(sessionUser(), nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "token-1"})
	w := serveGated(f, req, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	entry := f.audit.last(t)
	assert.Equal(t, models.AuditOutcomeAllow, entry.Outcome)
}

func TestRouteGate_AdminDenied(t *testing.T) {
	f := newGateFixture()
	f.fetcher.On("GetUser", mock.Anything, "token-1").Return(sessionUser(), nil)
	f.admin.err = services.ErrNotAdmin

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "token-1"})
	w := serveGated(f, req, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	assert.Equal(t, http.StatusForbidden, w.Code)

	entry := f.audit.last(t)
	assert.Equal(t, models.AuditOutcomeDeny, entry.Outcome)
	require.NotNil(t, entry.StatusCode)
	assert.Equal(t, http.StatusForbidden, *entry.StatusCode)
}

func TestRouteGate_AdminAnonymousDenied(t *testing.T) {
	f := newGateFixture()

	// Admin pages never redirect anonymous visitors; they refuse outright.
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := serveGated(f, req, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
}

func TestRouteGate_AdminCheckFailureFailsClosed(t *testing.T) {
	f := newGateFixture()
	f.fetcher.On("GetUser", mock.Anything, "token-1").Return(sessionUser(), nil)
	f.admin.err = services.WrapInternal("admin lookup failed", errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "token-1"})
	w := serveGated(f, req, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entry := f.audit.last(t)
	assert.Equal(t, models.AuditOutcomeError, entry.Outcome)
}

func TestRouteGate_ResolverFailureFailsClosed(t *testing.T) {
	f := newGateFixture()
	f.fetcher.On("GetUser", mock.Anything, "token-1").Return(nil, idp.ErrLookupFailed)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "token-1"})
	w := serveGated(f, req, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entry := f.audit.last(t)
	assert.Equal(t, models.AuditOutcomeError, entry.Outcome)
}
