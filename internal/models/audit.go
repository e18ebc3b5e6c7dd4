// internal/models/audit.go
package models

import "github.com/google/uuid"

// AuditLog records mutating API requests for diagnostics.
type AuditLog struct {
	BaseModel
	Shop         string `json:"shop" gorm:"index"`
	Action       string `json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	UserAgent    string `json:"user_agent"`
	RequestBody  JSONB  `json:"request_body,omitempty" gorm:"type:jsonb"`
	StatusCode   int    `json:"status_code"`
	DurationMs   int64  `json:"duration_ms"`
}

// SyncRun records one synchronizer pass. The snapshot itself lives in
// the remote metafield; this table only answers "when did we last sync
// and did it work".
type SyncRun struct {
	BaseModel
	Shop        string      `json:"shop" gorm:"index"`
	Trigger     SyncTrigger `json:"trigger"`
	Status      SyncStatus  `json:"status" gorm:"index"`
	BundleCount int         `json:"bundle_count"`
	Error       string      `json:"error,omitempty"`
	DurationMs  int64       `json:"duration_ms"`
}

// NewID returns a fresh identifier for locally generated entities such
// as bundle steps.
func NewID() string {
	return uuid.NewString()
}
