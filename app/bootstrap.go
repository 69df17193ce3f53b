// app/bootstrap.go
package app

import (
	"context"
	"log"

	"office_equipment_borrowing/db"
	"office_equipment_borrowing/models"

	"github.com/google/uuid"
)

// BootstrapFirstAdmin 用户表为空时按环境变量种下第一个管理员
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	n, err := repo.CountUsers(ctx)
	if err != nil {
		log.Printf("bootstrap admin: count users: %v", err)
		return
	}
	if n > 0 {
		return
	}

	admin := &models.User{
		ID:       uuid.NewString(),
		FullName: cfg.AdminName,
		NIP:      cfg.AdminNIP,
		Email:    cfg.AdminEmail,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Printf("bootstrap admin: hash password: %v", err)
		return
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		log.Printf("bootstrap admin failed: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] created first admin %s", cfg.AdminEmail)
}
