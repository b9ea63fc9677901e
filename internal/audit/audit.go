// Package audit keeps a local history of permission changes made from this
// machine.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is one recorded change.
type Entry struct {
	ID          uuid.UUID `gorm:"type:text;primarykey" json:"id"`
	Server      string    `gorm:"not null;index" json:"server"`
	Actor       string    `gorm:"not null" json:"actor"`
	Action      string    `gorm:"not null" json:"action"`
	Target      string    `gorm:"not null" json:"target"`
	DetailsJSON string    `gorm:"type:text" json:"details,omitempty"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}

func (Entry) TableName() string { return "audit_history" }

// Migrate creates the history table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("migrating audit history: %w", err)
	}
	return nil
}

// LogAction records an audit log entry
func LogAction(db *gorm.DB, server, actor, action, target string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil || details == nil {
		detailsJSON = []byte("{}")
	}

	entry := Entry{
		ID:          uuid.New(),
		Server:      server,
		Actor:       actor,
		Action:      action,
		Target:      target,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now().UTC(),
	}
	return db.Create(&entry).Error
}

// List returns the newest entries first. A limit of zero or less returns all.
func List(db *gorm.DB, limit int) ([]Entry, error) {
	var entries []Entry
	q := db.Order("timestamp desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("listing audit history: %w", err)
	}
	return entries, nil
}

// Audit actions constants
const (
	ActionLogin             = "login"
	ActionLogout            = "logout"
	ActionGrantPermission   = "grant_permission"
	ActionUpdatePermission  = "update_permission"
	ActionRevokePermission  = "revoke_permission"
	ActionCreatePattern     = "create_pattern"
	ActionUpdatePattern     = "update_pattern"
	ActionDeletePattern     = "delete_pattern"
	ActionCreateServiceAcct = "create_service_account"
	ActionDeleteServiceAcct = "delete_service_account"
	ActionCreateAccessToken = "create_access_token"
	ActionCreateWebhook     = "create_webhook"
	ActionUpdateWebhook     = "update_webhook"
	ActionDeleteWebhook     = "delete_webhook"
	ActionRestoreTrash      = "restore_trash"
	ActionCleanupTrash      = "cleanup_trash"
)
