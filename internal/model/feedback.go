package model

import "time"

// Feedback is a user correction on a generated test case, keyed by
// (product_title, feature). Append-only: stale entries are superseded by
// newer ones, never deleted.
type Feedback struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProductTitle     string    `gorm:"size:256;not null;index:idx_feedback_key" json:"product_title"`
	Feature          string    `gorm:"size:256;not null;index:idx_feedback_key" json:"feature"`
	Body             string    `gorm:"type:text;not null" json:"body"`
	PreviousTestCase string    `gorm:"type:text" json:"previous_test_case"`
	CreatedAt        time.Time `json:"created_at"`
}
