package models

import "time"

// ActivityLog 审计流水，写入失败不影响业务
type ActivityLog struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;index" json:"userId"`
	Action     string    `gorm:"size:255;not null" json:"action"`
	EntityType string    `gorm:"size:30" json:"entityType"`
	EntityID   *string   `gorm:"type:uuid" json:"entityId,omitempty"`
	Details    string    `gorm:"type:text" json:"details,omitempty"`
	IPAddress  string    `gorm:"size:45" json:"-"`
	UserAgent  string    `gorm:"size:255" json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
