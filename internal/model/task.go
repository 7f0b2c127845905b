package model

import "time"

type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	DueDate      *time.Time `json:"due_date"`
	ReminderTime *time.Time `json:"reminder_time"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
