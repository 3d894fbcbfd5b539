package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisetax/docs-gateway/config"
	"github.com/revisetax/docs-gateway/models"
)

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		SignInPath:       "/auth/sign-in",
		PhoneCollectPath: "/auth/phone",
		ProtectedArea:    "/dashboard",
		ProtectedPrefix:  "/dashboard",
		AdminPrefix:      "/admin",
		AuthPrefix:       "/auth",
		StaticPrefixes:   []string{"/_next", "/static", "/favicon.ico"},
	}
}

func verifiedIdentity() *models.Identity {
	return &models.Identity{
		ID:            "user-1",
		Email:         "user@example.com",
		Name:          "User One",
		PhoneVerified: true,
		Source:        models.SourceSession,
	}
}

func unverifiedIdentity() *models.Identity {
	id := verifiedIdentity()
	id.PhoneVerified = false
	return id
}

func TestPolicy_Classify(t *testing.T) {
	p := New(testGatewayConfig())

	tests := []struct {
		path string
		want Class
	}{
		{"/", ClassPublic},
		{"/about", ClassPublic},
		{"/dashboard", ClassProtected},
		{"/dashboard/files", ClassProtected},
		{"/dashboardish", ClassPublic},
		{"/auth", ClassAuthOnly},
		{"/auth/sign-in", ClassAuthOnly},
		{"/auth/phone", ClassAuthOnly},
		{"/authority", ClassPublic},
		{"/admin", ClassAdmin},
		{"/admin/users", ClassAdmin},
		{"/administrata", ClassPublic},
		{"/_next/chunk.js", ClassPublic},
		{"/static/logo.png", ClassPublic},
		{"/favicon.ico", ClassPublic},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Classify(tt.path))
		})
	}
}

func TestPolicy_Classify_AdminInsideProtected(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.AdminPrefix = "/dashboard/admin"
	p := New(cfg)

	assert.Equal(t, ClassAdmin, p.Classify("/dashboard/admin"))
	assert.Equal(t, ClassAdmin, p.Classify("/dashboard/admin/users"))
	assert.Equal(t, ClassProtected, p.Classify("/dashboard/files"))
}

func TestPolicy_Decide_Public(t *testing.T) {
	p := New(testGatewayConfig())

	for _, id := range []*models.Identity{nil, verifiedIdentity(), unverifiedIdentity()} {
		d := p.Decide("/about", id)
		assert.Equal(t, KindAllow, d.Kind)
		assert.Equal(t, ClassPublic, d.Class)
	}
}

func TestPolicy_Decide_Protected(t *testing.T) {
	p := New(testGatewayConfig())

	t.Run("anonymous redirects to sign-in", func(t *testing.T) {
		d := p.Decide("/dashboard/files", nil)
		require.Equal(t, KindRedirect, d.Kind)
		assert.Equal(t, "/auth/sign-in", d.Target)
		assert.Empty(t, d.Params)
	})

	t.Run("unverified phone redirects to phone collection", func(t *testing.T) {
		d := p.Decide("/dashboard", unverifiedIdentity())
		require.Equal(t, KindRedirect, d.Kind)
		assert.Equal(t, "/auth/phone", d.Target)
		assert.Equal(t, "user@example.com", d.Params.Get("email"))
		assert.Equal(t, "User One", d.Params.Get("name"))
	})

	t.Run("verified identity is allowed", func(t *testing.T) {
		d := p.Decide("/dashboard", verifiedIdentity())
		assert.Equal(t, KindAllow, d.Kind)
	})
}

func TestPolicy_Decide_AuthOnly(t *testing.T) {
	p := New(testGatewayConfig())

	t.Run("anonymous is allowed", func(t *testing.T) {
		d := p.Decide("/auth/sign-in", nil)
		assert.Equal(t, KindAllow, d.Kind)
	})

	t.Run("verified identity redirects to protected area", func(t *testing.T) {
		d := p.Decide("/auth/sign-in", verifiedIdentity())
		require.Equal(t, KindRedirect, d.Kind)
		assert.Equal(t, "/dashboard", d.Target)
	})

	// The phone-verification check runs before the authenticated-user
	// redirect, so a half-registered identity goes to phone collection
	// instead of the protected area.
	t.Run("unverified phone wins over authenticated redirect", func(t *testing.T) {
		d := p.Decide("/auth/sign-in", unverifiedIdentity())
		require.Equal(t, KindRedirect, d.Kind)
		assert.Equal(t, "/auth/phone", d.Target)
	})

	t.Run("unverified identity on phone collection page stays", func(t *testing.T) {
		d := p.Decide("/auth/phone", unverifiedIdentity())
		assert.Equal(t, KindAllow, d.Kind)
	})
}

func TestPolicy_Decide_Admin(t *testing.T) {
	p := New(testGatewayConfig())

	t.Run("anonymous is denied, not redirected", func(t *testing.T) {
		d := p.Decide("/admin/users", nil)
		assert.Equal(t, KindDeny, d.Kind)
	})

	t.Run("present identity is admitted for privilege check", func(t *testing.T) {
		d := p.Decide("/admin/users", verifiedIdentity())
		assert.Equal(t, KindAllow, d.Kind)
		assert.Equal(t, ClassAdmin, d.Class)
	})
}

func TestPolicy_Decide_InternalAssertion(t *testing.T) {
	p := New(testGatewayConfig())

	// An internal assertion carries no profile; its phone state is
	// unverified, so protected paths route it to phone collection with no
	// profile params at all.
	id := &models.Identity{
		ID:     "7e0fadf3-6bb0-48ac-bd4e-b0b1405ebe7e",
		Source: models.SourceInternalAssertion,
	}
	d := p.Decide("/dashboard", id)
	require.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "/auth/phone", d.Target)
	assert.Empty(t, d.Params)
}

func TestDecision_Location(t *testing.T) {
	d := New(testGatewayConfig()).Decide("/dashboard", unverifiedIdentity())
	require.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "/auth/phone?email=user%40example.com&name=User+One", d.Location())

	plain := Redirect(ClassProtected, "/auth/sign-in", nil)
	assert.Equal(t, "/auth/sign-in", plain.Location())
}
