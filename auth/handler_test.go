package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/config"
	"github.com/revisetax/docs-gateway/idp"
)

// MockSessionValidator is a mock implementation of SessionValidator
type MockSessionValidator struct {
	mock.Mock
}

func (m *MockSessionValidator) GetUser(ctx context.Context, accessToken string) (*idp.User, error) {
	args := m.Called(ctx, accessToken)
	if user := args.Get(0); user != nil {
		return user.(*idp.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Identity:    config.IdentityConfig{CookieName: "session"},
		Gateway: config.GatewayConfig{
			SignInPath:       "/auth/sign-in",
			PhoneCollectPath: "/auth/phone",
			ProtectedArea:    "/dashboard",
		},
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestHandleCallback(t *testing.T) {
	logger := zap.NewNop()

	t.Run("verified token becomes a session cookie", func(t *testing.T) {
		validator := &MockSessionValidator{}
		handler := NewHandler(testConfig(), validator, logger)

		user := &idp.User{
			ID:           "auth-user-1",
			Email:        "user@example.com",
			UserMetadata: idp.UserMetadata{PhoneVerified: true},
		}
		validator.On("GetUser", mock.Anything, "token-1").Return(user, nil)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?access_token=token-1", nil)
		w := httptest.NewRecorder()

		handler.HandleCallback(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))

		cookie := sessionCookie(t, w)
		assert.Equal(t, "token-1", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		validator.AssertExpectations(t)
	})

	t.Run("unverified phone lands on phone collection", func(t *testing.T) {
		validator := &MockSessionValidator{}
		handler := NewHandler(testConfig(), validator, logger)

		user := &idp.User{ID: "auth-user-1", Email: "user@example.com"}
		validator.On("GetUser", mock.Anything, "token-1").Return(user, nil)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?access_token=token-1", nil)
		w := httptest.NewRecorder()

		handler.HandleCallback(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/phone?email=user%40example.com", w.Header().Get("Location"))
	})

	t.Run("missing token returns 400", func(t *testing.T) {
		validator := &MockSessionValidator{}
		handler := NewHandler(testConfig(), validator, logger)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
		w := httptest.NewRecorder()

		handler.HandleCallback(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, w.Result().Cookies())
		validator.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("rejected token never becomes a session", func(t *testing.T) {
		validator := &MockSessionValidator{}
		handler := NewHandler(testConfig(), validator, logger)

		validator.On("GetUser", mock.Anything, "forged").Return(nil, idp.ErrNoSession)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?access_token=forged", nil)
		w := httptest.NewRecorder()

		handler.HandleCallback(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestHandleLogout(t *testing.T) {
	handler := NewHandler(testConfig(), &MockSessionValidator{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	w := httptest.NewRecorder()

	handler.HandleLogout(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/sign-in", w.Header().Get("Location"))

	cookie := sessionCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestHandleCallback_NoValidatorConfigured(t *testing.T) {
	handler := NewHandler(testConfig(), nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?access_token=token-1", nil)
	w := httptest.NewRecorder()

	handler.HandleCallback(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
