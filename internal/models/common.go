// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Base model for locally persisted records (audit log, sync runs).
// Bundle and combination records live in the remote metaobject store
// and carry remote-assigned identity instead.
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type BundleStatus string

const (
	BundleStatusDraft    BundleStatus = "draft"
	BundleStatusActive   BundleStatus = "active"
	BundleStatusInactive BundleStatus = "inactive"
)

func (s BundleStatus) Valid() bool {
	switch s {
	case BundleStatusDraft, BundleStatusActive, BundleStatusInactive:
		return true
	}
	return false
}

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
	DiscountTypeTotal      DiscountType = "total"
)

func (d DiscountType) Valid() bool {
	switch d {
	case DiscountTypePercentage, DiscountTypeFixed, DiscountTypeTotal:
		return true
	}
	return false
}

// LayoutType is the canonical layout enum. The admin forms historically
// also sent "stepper" and stored records may carry "portrait" or
// "landscape"; those decode as grid rather than failing the read.
type LayoutType string

const (
	LayoutTypeGrid      LayoutType = "grid"
	LayoutTypeSlider    LayoutType = "slider"
	LayoutTypeModal     LayoutType = "modal"
	LayoutTypeSelection LayoutType = "selection"
)

func (l LayoutType) Valid() bool {
	switch l {
	case LayoutTypeGrid, LayoutTypeSlider, LayoutTypeModal, LayoutTypeSelection:
		return true
	}
	return false
}

type SelectionType string

const (
	SelectionTypeProduct SelectionType = "product"
	SelectionTypeVariant SelectionType = "variant"
)

// Column bounds for per-breakpoint layout columns.
const (
	MinMobileColumns  = 1
	MaxMobileColumns  = 4
	MinDesktopColumns = 1
	MaxDesktopColumns = 6
)

type SyncTrigger string

const (
	SyncTriggerCreate     SyncTrigger = "create"
	SyncTriggerUpdate     SyncTrigger = "update"
	SyncTriggerDelete     SyncTrigger = "delete"
	SyncTriggerBulk       SyncTrigger = "bulk"
	SyncTriggerStepChange SyncTrigger = "step_change"
	SyncTriggerManual     SyncTrigger = "manual"
)

type SyncStatus string

const (
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
)
