package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"office_equipment_borrowing/db"
	"office_equipment_borrowing/models"
)

// OverdueNotifier 周期性扫 borrowed 且过了预计归还时间的记录，
// 给借用人和 officer 发提醒。只发通知，绝不改 status —— overdue
// 一直是推导出来的视图。
type OverdueNotifier struct {
	Repo  *db.Repo
	Every time.Duration
}

func NewOverdueNotifier(repo *db.Repo, every time.Duration) *OverdueNotifier {
	if every <= 0 {
		every = time.Hour
	}
	return &OverdueNotifier{Repo: repo, Every: every}
}

func (n *OverdueNotifier) Start(ctx context.Context) {
	ticker := time.NewTicker(n.Every)
	go func() {
		defer ticker.Stop()
		n.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n.Check(ctx)
			}
		}
	}()
}

func (n *OverdueNotifier) Check(ctx context.Context) {
	overdue, err := n.Repo.FindOverdueBorrowings(ctx, time.Now())
	if err != nil {
		log.Printf("overdue check: %v", err)
		return
	}
	if len(overdue) == 0 {
		return
	}

	officers, err := n.Repo.ListUsersByRole(ctx, models.RoleOfficer)
	if err != nil {
		log.Printf("overdue check: list officers: %v", err)
		return
	}

	for i := range overdue {
		b := &overdue[i]
		itemName := "item"
		if b.Item != nil {
			itemName = b.Item.Name
		}

		// 同一条借用只提醒一次，靠 CreateNotificationIfAbsent 去重
		if _, err := n.Repo.CreateNotificationIfAbsent(ctx, &models.Notification{
			UserID:             b.UserID,
			Title:              "Overdue Warning",
			Message:            fmt.Sprintf("Your borrowing for %s is overdue! Please return it immediately.", itemName),
			Type:               models.NotifySystem,
			Path:               "/my-borrowings",
			RelatedBorrowingID: &b.ID,
		}); err != nil {
			log.Printf("overdue check: notify user: %v", err)
		}

		for _, o := range officers {
			if _, err := n.Repo.CreateNotificationIfAbsent(ctx, &models.Notification{
				UserID:             o.ID,
				Title:              "Overdue Report",
				Message:            fmt.Sprintf("An overdue item is still out: %s", itemName),
				Type:               models.NotifySystem,
				Path:               "/borrowings",
				RelatedBorrowingID: &b.ID,
			}); err != nil {
				log.Printf("overdue check: notify officer: %v", err)
			}
		}
	}
}
