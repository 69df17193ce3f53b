// controllers/borrowing_controller.go
package controllers

import (
	"net/http"
	"time"

	"office_equipment_borrowing/app"
	"office_equipment_borrowing/db"

	"github.com/gin-gonic/gin"
)

type BorrowingController struct{ *Srv }

func NewBorrowingController(s *Srv) *BorrowingController { return &BorrowingController{Srv: s} }

// CreateBorrowing 普通用户提交借用申请，此时不扣库存
func (bc *BorrowingController) CreateBorrowing(c *gin.Context) {
	var in struct {
		ItemID             string    `json:"itemId" binding:"required"`
		Quantity           int       `json:"quantity" binding:"required"`
		ExpectedReturnDate time.Time `json:"expectedReturnDate" binding:"required"`
		Purpose            string    `json:"purpose"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	b, err := bc.Repo.CreateBorrowing(c.Request.Context(), currentUser(c), db.CreateBorrowingInput{
		ItemID:             in.ItemID,
		Quantity:           in.Quantity,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Purpose:            in.Purpose,
	})
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBorrowings 普通用户只能看自己的，admin/officer 看全部
func (bc *BorrowingController) ListBorrowings(c *gin.Context) {
	u := currentUser(c)

	f := db.BorrowingFilter{
		ItemID: c.Query("itemId"),
		Status: c.Query("status"),
	}
	if u.IsStaff() {
		f.UserID = c.Query("userId")
	} else {
		f.UserID = u.ID
	}

	bs, err := bc.Repo.ListBorrowings(c.Request.Context(), f)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"borrowings": bs})
}

func (bc *BorrowingController) GetBorrowing(c *gin.Context) {
	b, err := bc.Repo.FindBorrowingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpError(c, err)
		return
	}

	u := currentUser(c)
	if !u.IsStaff() && b.UserID != u.ID {
		c.JSON(http.StatusForbidden, app.H{"error": "not authorized"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (bc *BorrowingController) MyHistory(c *gin.Context) {
	bs, err := bc.Repo.ListBorrowings(c.Request.Context(), db.BorrowingFilter{
		UserID: c.GetString("userID"),
	})
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"borrowings": bs})
}

func (bc *BorrowingController) ApproveBorrowing(c *gin.Context) {
	var in struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&in)

	b, err := bc.Repo.ApproveBorrowing(c.Request.Context(), currentUser(c), c.Param("id"), in.Notes)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "borrowing request approved", "borrowing": b})
}

func (bc *BorrowingController) RejectBorrowing(c *gin.Context) {
	// 前端有的地方发 reason，有的发 notes
	var in struct {
		Reason string `json:"reason"`
		Notes  string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&in)
	reason := in.Reason
	if reason == "" {
		reason = in.Notes
	}

	b, err := bc.Repo.RejectBorrowing(c.Request.Context(), currentUser(c), c.Param("id"), reason)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "borrowing request rejected", "borrowing": b})
}

func (bc *BorrowingController) MarkBorrowed(c *gin.Context) {
	var in struct {
		ConditionBefore string `json:"conditionBefore"`
		Notes           string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&in)

	b, err := bc.Repo.MarkBorrowed(c.Request.Context(), currentUser(c), c.Param("id"), in.ConditionBefore, in.Notes)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "item marked as borrowed", "borrowing": b})
}

func (bc *BorrowingController) RequestReturn(c *gin.Context) {
	var in struct {
		ConditionAfter string `json:"conditionAfter"`
		Notes          string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&in)

	b, err := bc.Repo.RequestReturn(c.Request.Context(), currentUser(c), c.Param("id"), in.ConditionAfter, in.Notes)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "return request submitted", "borrowing": b})
}

func (bc *BorrowingController) ApproveReturn(c *gin.Context) {
	var in struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&in)

	b, err := bc.Repo.ApproveReturn(c.Request.Context(), currentUser(c), c.Param("id"), in.Notes)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "return approved and stock updated", "borrowing": b})
}
