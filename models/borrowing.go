// models/borrowing.go
package models

import "time"

const BorrowingTable = "borrowings"

// Borrowing 状态机：
//
//	pending → approved → borrowed → returning → returned
//	pending → rejected（终态）
//
// overdue 不落库，borrowed 且超过 expected_return_date 时由查询推导。
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusBorrowed  = "borrowed"
	StatusReturning = "returning"
	StatusReturned  = "returned"
)

type Borrowing struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;index:idx_borrowings_user_status;not null" json:"userId"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ItemID string `gorm:"type:uuid;index:idx_borrowings_item_status;not null" json:"itemId"`
	Item   *Item  `gorm:"foreignKey:ItemID" json:"item,omitempty"`

	Quantity int `gorm:"not null" json:"quantity"`

	BorrowDate         *time.Time `json:"borrowDate,omitempty"`
	ExpectedReturnDate time.Time  `gorm:"index;not null" json:"expectedReturnDate"`
	ActualReturnDate   *time.Time `json:"actualReturnDate,omitempty"`

	Purpose string `gorm:"size:255" json:"purpose,omitempty"`
	Status  string `gorm:"size:20;not null;default:'pending';index:idx_borrowings_user_status,priority:2;index:idx_borrowings_item_status,priority:2" json:"status"`

	ApprovedBy *string    `gorm:"type:uuid" json:"approvedBy,omitempty"`
	Approver   *User      `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`

	ReturnApprovedBy *string    `gorm:"type:uuid" json:"returnApprovedBy,omitempty"`
	ReturnApprovedAt *time.Time `json:"returnApprovedAt,omitempty"`

	Notes   string  `gorm:"type:text" json:"notes,omitempty"`
	Penalty float64 `gorm:"type:numeric(10,2);not null;default:0" json:"penalty"`

	ConditionBefore string `gorm:"size:20" json:"conditionBefore,omitempty"`
	ConditionAfter  string `gorm:"size:20" json:"conditionAfter,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Borrowing) TableName() string { return BorrowingTable }

// IsOverdue 推导视图，不写回 status
func (b *Borrowing) IsOverdue(now time.Time) bool {
	return b.Status == StatusBorrowed && now.After(b.ExpectedReturnDate)
}
