package db

import "errors"

// 业务错误集中在这里，controller 层按类型映射 HTTP 状态码。
// 事务内任何一个错误都会整体回滚，不会留下半截库存变更。
var (
	ErrItemNotFound         = errors.New("item not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrBorrowingNotFound    = errors.New("borrowing request not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("invalid borrowing status for this operation")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")

	ErrRoleNotAllowed        = errors.New("role not allowed to perform this operation")
	ErrNotOwner              = errors.New("not the owner of this borrowing")
	ErrReturnAlreadyApproved = errors.New("return has already been approved")

	ErrCategoryInUse = errors.New("category still referenced by items")
	ErrSerialTaken   = errors.New("serial number already exists")
	ErrUserExists    = errors.New("user already exists with this email or NIP")
)
