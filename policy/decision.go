package policy

import (
	"net/url"
)

// Kind tags the outcome of an admission decision
type Kind string

const (
	KindAllow    Kind = "allow"
	KindRedirect Kind = "redirect"
	KindDeny     Kind = "deny"
	KindError    Kind = "error"
)

// Decision is the single channel through which an authorization outcome
// crosses to the HTTP layer and to audit logging. No component writes to a
// response directly.
type Decision struct {
	Kind   Kind
	Class  Class      // route class the decision was made for
	Target string     // redirect target path (KindRedirect)
	Params url.Values // redirect query parameters (KindRedirect)
	Reason string     // human-readable reason (KindDeny, KindError)
	Err    error      // underlying failure (KindError)
}

// Allow produces an allow decision for the given route class.
func Allow(class Class) Decision {
	return Decision{Kind: KindAllow, Class: class}
}

// Redirect produces a redirect decision.
func Redirect(class Class, target string, params url.Values) Decision {
	return Decision{Kind: KindRedirect, Class: class, Target: target, Params: params}
}

// Deny produces a deny decision with a reason.
func Deny(class Class, reason string) Decision {
	return Decision{Kind: KindDeny, Class: class, Reason: reason}
}

// Error produces a deny-safe error decision. Collaborator failures during a
// security-relevant check land here; they are never downgraded to an allow.
func Error(class Class, reason string, err error) Decision {
	return Decision{Kind: KindError, Class: class, Reason: reason, Err: err}
}

// Location renders the redirect target including query parameters.
func (d Decision) Location() string {
	if len(d.Params) == 0 {
		return d.Target
	}
	return d.Target + "?" + d.Params.Encode()
}
