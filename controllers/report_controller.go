// controllers/report_controller.go
package controllers

import (
	"fmt"
	"net/http"
	"time"

	"office_equipment_borrowing/app"
	"office_equipment_borrowing/db"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// Dashboard 看板数字，overdue 是查询时推导出来的
func (rc *ReportController) Dashboard(c *gin.Context) {
	stats, err := rc.Repo.GetDashboardStats(c.Request.Context())
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportBorrowings 导出 xlsx  ?status=&from=2025-01-01&to=2025-12-31
func (rc *ReportController) ExportBorrowings(c *gin.Context) {
	f := db.BorrowingFilter{Status: c.Query("status")}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid from date, want YYYY-MM-DD"})
			return
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid to date, want YYYY-MM-DD"})
			return
		}
		// 含当天
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}

	bs, err := rc.Repo.ListBorrowings(c.Request.Context(), f)
	if err != nil {
		httpError(c, err)
		return
	}

	xf := excelize.NewFile()
	defer xf.Close()

	const sheet = "Borrowings"
	xf.SetSheetName("Sheet1", sheet)

	headers := []string{"No", "Requester", "Item", "Quantity", "Status",
		"Borrow Date", "Expected Return", "Actual Return", "Approved By", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		xf.SetCellValue(sheet, cell, h)
	}

	fmtDate := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	}
	for row, b := range bs {
		requester, itemName, approver := "", "", ""
		if b.User != nil {
			requester = b.User.FullName
		}
		if b.Item != nil {
			itemName = b.Item.Name
		}
		if b.Approver != nil {
			approver = b.Approver.FullName
		}
		values := []any{
			row + 1, requester, itemName, b.Quantity, b.Status,
			fmtDate(b.BorrowDate),
			b.ExpectedReturnDate.Format("2006-01-02 15:04"),
			fmtDate(b.ActualReturnDate),
			approver, b.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			xf.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("borrowings-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := xf.Write(c.Writer); err != nil {
		httpError(c, err)
	}
}
