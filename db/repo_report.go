// db/repo_report.go
package db

import (
	"context"

	"office_equipment_borrowing/models"
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type MonthCount struct {
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type DashboardStats struct {
	TotalBorrowings    int64 `json:"totalBorrowings"`
	PendingBorrowings  int64 `json:"pendingBorrowings"`
	BorrowedBorrowings int64 `json:"borrowedBorrowings"`
	ReturnedBorrowings int64 `json:"returnedBorrowings"`
	// 推导值：borrowed 且已过预计归还时间
	OverdueBorrowings int64 `json:"overdueBorrowings"`

	TotalItems int64 `json:"totalItems"`
	TotalUsers int64 `json:"totalUsers"`

	StatusStats   []StatusCount `json:"statusStats"`
	MonthlyTrends []MonthCount  `json:"monthlyTrends"`
}

func (r *Repo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := r.DB.WithContext(ctx)

	counts := []struct {
		dst   *int64
		where []any
	}{
		{&stats.TotalBorrowings, nil},
		{&stats.PendingBorrowings, []any{"status = ?", models.StatusPending}},
		{&stats.BorrowedBorrowings, []any{"status = ?", models.StatusBorrowed}},
		{&stats.ReturnedBorrowings, []any{"status = ?", models.StatusReturned}},
		{&stats.OverdueBorrowings, []any{"status = ? AND expected_return_date < NOW()", models.StatusBorrowed}},
	}
	for _, c := range counts {
		q := db.Model(&models.Borrowing{})
		if c.where != nil {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var err error
	if stats.TotalItems, err = r.CountItems(ctx); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = r.CountUsers(ctx); err != nil {
		return nil, err
	}

	if err := db.Model(&models.Borrowing{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&stats.StatusStats).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Borrowing{}).
		Select("EXTRACT(MONTH FROM created_at)::int AS month, COUNT(*) AS count").
		Group("EXTRACT(MONTH FROM created_at)").
		Order("month ASC").
		Scan(&stats.MonthlyTrends).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
