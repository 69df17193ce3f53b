package db

import (
	"context"

	"office_equipment_borrowing/models"

	"github.com/google/uuid"
)

func (r *Repo) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var ns []models.Notification
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&ns).Error
	return ns, err
}

func (r *Repo) UnreadNotificationCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = FALSE", userID).
		Count(&n).Error
	return n, err
}

// MarkNotificationRead 只能改自己的
func (r *Repo) MarkNotificationRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotificationNotFound
	}
	var n models.Notification
	if err := r.DB.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repo) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = FALSE", userID).
		Update("is_read", true).Error
}

func (r *Repo) DeleteNotification(ctx context.Context, userID, id string) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// CreateNotificationIfAbsent 逾期提醒去重用：同一用户、同一借用、
// 同一标题还没读完就不再重复发。
func (r *Repo) CreateNotificationIfAbsent(ctx context.Context, n *models.Notification) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND title = ?", n.UserID, n.Type, n.Title)
	if n.RelatedBorrowingID != nil {
		q = q.Where("related_borrowing_id = ?", *n.RelatedBorrowingID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := r.DB.WithContext(ctx).Create(n).Error; err != nil {
		return false, err
	}
	r.Push.PushToUser(n.UserID, "notification", n)
	return true, nil
}
