package model

import "time"

// User is created once at registration. Username and email uniqueness is
// enforced by the unique indexes, never by a lookup before insert.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex:idx_users_username" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex:idx_users_email" json:"email"`
	FirstName    string    `gorm:"size:64;not null" json:"first_name"`
	LastName     string    `gorm:"size:64;not null" json:"last_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
