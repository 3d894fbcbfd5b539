// Package policy implements the route admission policy: a pure decision
// function mapping (request path, resolved identity) to an admission outcome.
// It performs no I/O; administrator privilege for admin-class paths is decided
// separately by the admin service after an identity has been admitted here.
package policy

import (
	"net/url"
	"strings"

	"github.com/revisetax/docs-gateway/config"
	"github.com/revisetax/docs-gateway/models"
)

// Class is a static categorization of request paths
type Class string

const (
	ClassPublic    Class = "public"
	ClassAuthOnly  Class = "auth_only"
	ClassProtected Class = "protected"
	ClassAdmin     Class = "admin"
)

// Policy decides route admission from configured path classes
type Policy struct {
	cfg config.GatewayConfig
}

// New creates a route admission policy from gateway configuration
func New(cfg config.GatewayConfig) *Policy {
	return &Policy{cfg: cfg}
}

// Classify determines the route class for a request path. Static asset paths
// are always public. Admin takes precedence over the protected prefix so a
// nested admin area keeps its stricter class.
func (p *Policy) Classify(path string) Class {
	for _, prefix := range p.cfg.StaticPrefixes {
		if strings.HasPrefix(path, prefix) {
			return ClassPublic
		}
	}
	if hasPathPrefix(path, p.cfg.AdminPrefix) {
		return ClassAdmin
	}
	if hasPathPrefix(path, p.cfg.ProtectedPrefix) {
		return ClassProtected
	}
	if hasPathPrefix(path, p.cfg.AuthPrefix) {
		return ClassAuthOnly
	}
	return ClassPublic
}

// Decide maps (path, identity) to an admission outcome. Evaluation order is
// significant: the phone-verification check runs before the auth-only
// redirect-when-authenticated check, so a half-registered identity is routed
// to phone collection instead of the protected area.
func (p *Policy) Decide(path string, id *models.Identity) Decision {
	class := p.Classify(path)

	switch class {
	case ClassPublic:
		return Allow(class)

	case ClassAuthOnly:
		if id != nil && !id.PhoneVerified && path != p.cfg.PhoneCollectPath {
			return Redirect(class, p.cfg.PhoneCollectPath, phoneCollectParams(id))
		}
		if id != nil && id.PhoneVerified {
			return Redirect(class, p.cfg.ProtectedArea, nil)
		}
		return Allow(class)

	case ClassProtected:
		if id == nil {
			return Redirect(class, p.cfg.SignInPath, nil)
		}
		if !id.PhoneVerified {
			return Redirect(class, p.cfg.PhoneCollectPath, phoneCollectParams(id))
		}
		return Allow(class)

	case ClassAdmin:
		// Administrators are not walked through a signup flow: absent
		// identity is a deny, not a redirect. Privilege itself is decided by
		// the admin service once an identity has been admitted.
		if id == nil {
			return Deny(class, "identity required")
		}
		return Allow(class)
	}

	return Allow(ClassPublic)
}

// phoneCollectParams carries known profile fields to the phone-collection
// step so it need not re-query the identity provider. Absent fields are
// omitted rather than sent empty.
func phoneCollectParams(id *models.Identity) url.Values {
	params := url.Values{}
	if id.Email != "" {
		params.Set("email", id.Email)
	}
	if id.Name != "" {
		params.Set("name", id.Name)
	}
	if id.Provider != "" {
		params.Set("provider", id.Provider)
	}
	if id.ProviderID != "" {
		params.Set("providerId", id.ProviderID)
	}
	return params
}

// hasPathPrefix matches a path against a route prefix on segment boundaries,
// so "/admin" matches "/admin" and "/admin/users" but not "/administrata".
func hasPathPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
