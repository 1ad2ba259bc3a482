package model

import "time"

// StoredPrompt is a user-authored system/user prompt pair for a specific
// (title, feature). When present it overrides the default templates during
// generation.
type StoredPrompt struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:256;not null;index:idx_prompt_key" json:"title"`
	Feature      string    `gorm:"size:256;not null;index:idx_prompt_key" json:"feature"`
	SystemPrompt string    `gorm:"type:text;not null" json:"system_prompt"`
	UserPrompt   string    `gorm:"type:text;not null" json:"user_prompt"`
	CreatedAt    time.Time `json:"created_at"`
}
