package db

import (
	"context"
	"encoding/json"
	"log"

	"office_equipment_borrowing/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// logActivity 业务成功之后的审计流水，写失败只打日志不影响调用方
func (r *Repo) logActivity(userID, action, entityType string, entityID *string, details any) {
	if err := r.logActivityTx(r.DB, userID, action, entityType, entityID, details); err != nil {
		log.Printf("activity log failed: %v", err)
	}
}

func (r *Repo) logActivityTx(tx *gorm.DB, userID, action, entityType string, entityID *string, details any) error {
	entry := models.ActivityLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = string(b)
		}
	}
	return tx.Create(&entry).Error
}

// RecordActivity HTTP 层（登录登出等）用的入口，带上 IP 和 UA
func (r *Repo) RecordActivity(ctx context.Context, entry models.ActivityLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := r.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("activity log failed: %v", err)
	}
}

type ListActivityResult struct {
	Logs  []models.ActivityLog `json:"logs"`
	Total int64                `json:"total"`
}

func (r *Repo) ListActivityLogs(ctx context.Context, userID string, page, size int) (ListActivityResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}

	q := r.DB.WithContext(ctx).Model(&models.ActivityLog{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListActivityResult{}, err
	}

	var logs []models.ActivityLog
	if err := q.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&logs).Error; err != nil {
		return ListActivityResult{}, err
	}
	return ListActivityResult{Logs: logs, Total: total}, nil
}
