package db

import (
	"context"
	"errors"
	"strings"

	"office_equipment_borrowing/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pusher 实时推送的出口，ws.Hub 实现它。
// 推送发生在事务提交之后，失败只丢这一帧，不回滚业务。
type Pusher interface {
	PushToUser(userID, event string, payload any)
	Broadcast(event string, payload any)
}

type NopPusher struct{}

func (NopPusher) PushToUser(string, string, any) {}
func (NopPusher) Broadcast(string, any)          {}

type Repo struct {
	DB   *gorm.DB
	Push Pusher
}

func NewRepo(db *gorm.DB, push Pusher) *Repo {
	if push == nil {
		push = NopPusher{}
	}
	return &Repo{DB: db, Push: push}
}

// pendingPush 事务里攒着，提交成功后统一发
type pendingPush struct {
	userID  string // 空串 = 广播
	event   string
	payload any
}

func (r *Repo) flush(pushes []pendingPush) {
	for _, p := range pushes {
		if p.userID == "" {
			r.Push.Broadcast(p.event, p.payload)
		} else {
			r.Push.PushToUser(p.userID, p.event, p.payload)
		}
	}
}

// Users

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindUserByIdentifier 登录时邮箱或 NIP 都行
func (r *Repo) FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).
		Where("email = ? OR nip = ?", strings.ToLower(identifier), identifier).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR nip = ?", u.Email, u.NIP).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrUserExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(u).Error
}

type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

// ListUsers 分页 + 关键词（姓名/邮箱/NIP）
func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(nip) LIKE ?", like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

func (r *Repo) ListUsersByRole(ctx context.Context, roles ...string) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Where("role IN ? AND is_active = TRUE", roles).
		Find(&users).Error
	return users, err
}

func (r *Repo) UpdateUser(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.FindUserByID(ctx, id)
}

// DeleteUser 硬删除，顺带清掉该用户的借用记录和通知
func (r *Repo) DeleteUser(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var borrowingIDs []string
		if err := tx.Model(&models.Borrowing{}).
			Where("user_id = ?", id).
			Pluck("id", &borrowingIDs).Error; err != nil {
			return err
		}
		if len(borrowingIDs) > 0 {
			if err := tx.Where("related_borrowing_id IN ?", borrowingIDs).
				Delete(&models.Notification{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Borrowing{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}

func (r *Repo) TouchUserLogin(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"last_login":   gorm.Expr("NOW()"),
			"last_seen_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}

func (r *Repo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}
