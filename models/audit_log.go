package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the kind of decision being audited
type AuditAction string

const (
	AuditActionRouteAdmission AuditAction = "route_admission"
	AuditActionAdminLogin     AuditAction = "admin_login"
	AuditActionAdminLookup    AuditAction = "admin_lookup"
	AuditActionFileAccess     AuditAction = "file_access"
)

// AuditOutcome is the tagged result of an authorization decision
type AuditOutcome string

const (
	AuditOutcomeAllow    AuditOutcome = "allow"
	AuditOutcomeRedirect AuditOutcome = "redirect"
	AuditOutcomeDeny     AuditOutcome = "deny"
	AuditOutcomeError    AuditOutcome = "error"
)

// AuditLog represents one recorded authorization decision
type AuditLog struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Action    AuditAction     `json:"action" db:"action"`
	Outcome   AuditOutcome    `json:"outcome" db:"outcome"`
	Reason    string          `json:"reason,omitempty" db:"reason"`
	Subject   *string         `json:"subject,omitempty" db:"subject"` // identity id when resolved
	Path      string          `json:"path" db:"path"`
	Details   json.RawMessage `json:"details,omitempty" db:"details"` // JSONB for flexible metadata
	IPAddress string          `json:"ip_address" db:"ip_address"`
	UserAgent string          `json:"user_agent" db:"user_agent"`
	RequestID string          `json:"request_id" db:"request_id"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`

	StatusCode *int `json:"status_code,omitempty" db:"status_code"`
	LatencyMs  *int `json:"latency_ms,omitempty" db:"latency_ms"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(action AuditAction, outcome AuditOutcome, path string) *AuditLog {
	return &AuditLog{
		ID:        uuid.New(),
		Action:    action,
		Outcome:   outcome,
		Path:      path,
		Timestamp: time.Now(),
	}
}

// WithSubject sets the resolved identity id
func (a *AuditLog) WithSubject(subject string) *AuditLog {
	a.Subject = &subject
	return a
}

// WithReason sets the decision reason
func (a *AuditLog) WithReason(reason string) *AuditLog {
	a.Reason = reason
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets request metadata
func (a *AuditLog) WithRequest(requestID, ipAddress, userAgent string) *AuditLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	a.UserAgent = userAgent
	return a
}

// WithResult sets the response status and latency
func (a *AuditLog) WithResult(statusCode, latencyMs int) *AuditLog {
	a.StatusCode = &statusCode
	a.LatencyMs = &latencyMs
	return a
}
