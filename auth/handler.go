// Package auth establishes and tears down browser sessions. The identity
// provider authenticates the user; this handler only verifies the returned
// token and pins it into an HTTP-only cookie.
package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/config"
	"github.com/revisetax/docs-gateway/idp"
	"github.com/revisetax/docs-gateway/utils"
)

const sessionCookieMaxAge = 86400 * 7 // 7 days

// SessionValidator verifies an access token against the identity provider
type SessionValidator interface {
	GetUser(ctx context.Context, accessToken string) (*idp.User, error)
}

// Handler handles session establishment and logout
type Handler struct {
	cfg       *config.Config
	validator SessionValidator
	logger    *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(cfg *config.Config, validator SessionValidator, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		validator: validator,
		logger:    logger,
	}
}

// HandleCallback handles GET /auth/callback. The identity provider redirects
// here with an access token; the token is verified before it becomes a
// session cookie, so an invalid token never produces a session.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("access_token")
	if token == "" {
		_ = utils.WriteBadRequest(w, "Missing access token", nil)
		return
	}

	if h.validator == nil {
		h.logger.Error("session validator not configured")
		_ = utils.WriteInternalServerError(w, "Authentication not configured")
		return
	}

	user, err := h.validator.GetUser(r.Context(), token)
	if err != nil {
		h.logger.Warn("token verification failed", zap.Error(err))
		_ = utils.WriteUnauthorized(w, "Authentication failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Identity.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})

	// A session without a verified phone lands on phone collection first.
	target := h.cfg.Gateway.ProtectedArea
	if !user.PhoneVerified() {
		params := url.Values{}
		if user.Email != "" {
			params.Set("email", user.Email)
		}
		target = h.cfg.Gateway.PhoneCollectPath
		if encoded := params.Encode(); encoded != "" {
			target += "?" + encoded
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleLogout handles GET /auth/logout, clearing the session cookie
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Identity.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})

	target := h.cfg.Gateway.SignInPath
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	http.Redirect(w, r, target, http.StatusFound)
}
