package models

import "time"

const NotificationTable = "notifications"

const (
	NotifyBorrowRequest  = "borrow_request"
	NotifyBorrowApproved = "borrow_approved"
	NotifyBorrowRejected = "borrow_rejected"
	NotifyReturnRequest  = "return_request"
	NotifyReturnApproved = "return_approved"
	NotifySystem         = "system"
)

type Notification struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  string `gorm:"type:uuid;index;not null" json:"userId"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Message string `gorm:"type:text;not null" json:"message"`
	Type    string `gorm:"size:30;not null;default:'system'" json:"type"`
	IsRead  bool   `gorm:"not null;default:false" json:"isRead"`

	Path               string  `gorm:"size:255" json:"path,omitempty"`
	RelatedBorrowingID *string `gorm:"type:uuid;index" json:"relatedBorrowingId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Notification) TableName() string { return NotificationTable }
