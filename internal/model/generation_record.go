package model

import "time"

// GenerationRecord is the audit row for one delivered generation. Records
// are persisted asynchronously through the message queue; they are advisory
// and never block a delivery.
type GenerationRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProductTitle   string    `gorm:"size:256;index" json:"product_title"`
	Feature        string    `gorm:"size:256" json:"feature"`
	OperationType  string    `gorm:"size:16;not null" json:"operation_type"`
	GenerationType string    `gorm:"size:16;not null" json:"generation_type"`
	ArtifactCount  int       `gorm:"not null" json:"artifact_count"`
	Attempts       int       `gorm:"not null" json:"attempts"`
	Output         string    `gorm:"type:text" json:"output"`
	CreatedAt      time.Time `json:"created_at"`
}
