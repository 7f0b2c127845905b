package model

import "time"

const (
	AuthEventRegistered  = "user.registered"
	AuthEventLogin       = "user.login"
	AuthEventLoginFailed = "user.login_failed"
	AuthEventLogout      = "user.logout"
)

// AuthEvent is an append-only audit record. UserID is zero when the event
// could not be tied to an account, e.g. a login for an unknown username.
type AuthEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Type       string    `gorm:"size:32;not null;index" json:"type"`
	UserID     uint      `gorm:"index" json:"user_id"`
	Username   string    `gorm:"size:64" json:"username"`
	Reason     string    `gorm:"size:64" json:"reason,omitempty"`
	RemoteAddr string    `gorm:"size:64" json:"remote_addr"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
}
