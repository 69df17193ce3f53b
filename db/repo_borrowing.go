// db/repo_borrowing.go
//
// 借用状态机：pending → approved → borrowed → returning → returned，
// pending → rejected 终态。库存只在 approve（扣）和 approve-return（还）动，
// 两处都在同一个事务里先 FOR UPDATE 锁物品行，并发审批串行化，
// 第二个审批看到的是扣减后的数量。冲突不做静默重试，直接把错误抛给调用方。
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"office_equipment_borrowing/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const autoRejectNote = "Automatically rejected due to insufficient stock."

type CreateBorrowingInput struct {
	ItemID             string    `json:"itemId"`
	Quantity           int       `json:"quantity"`
	ExpectedReturnDate time.Time `json:"expectedReturnDate"`
	Purpose            string    `json:"purpose"`
}

// CreateBorrowing 提交申请。此时不占库存，库存在审批时才扣。
func (r *Repo) CreateBorrowing(ctx context.Context, actor *models.User, in CreateBorrowingInput) (*models.Borrowing, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var b *models.Borrowing
	var pushes []pendingPush

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.First(&it, "id = ?", in.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if !it.IsAvailable || it.AvailableQuantity < in.Quantity {
			return fmt.Errorf("%w: only %d available", ErrInsufficientStock, it.AvailableQuantity)
		}

		b = &models.Borrowing{
			ID:                 uuid.NewString(),
			UserID:             actor.ID,
			ItemID:             in.ItemID,
			Quantity:           in.Quantity,
			ExpectedReturnDate: in.ExpectedReturnDate,
			Purpose:            in.Purpose,
			Status:             models.StatusPending,
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}

		// 通知所有 officer 来审批
		var officers []models.User
		if err := tx.Where("role = ? AND is_active = TRUE", models.RoleOfficer).
			Find(&officers).Error; err != nil {
			return err
		}
		for _, officer := range officers {
			n := &models.Notification{
				ID:                 uuid.NewString(),
				UserID:             officer.ID,
				Title:              "New Borrowing Request",
				Message:            fmt.Sprintf("%s requested to borrow %dx %s", actor.FullName, in.Quantity, it.Name),
				Type:               models.NotifyBorrowRequest,
				Path:               "/borrowings",
				RelatedBorrowingID: &b.ID,
			}
			if err := tx.Create(n).Error; err != nil {
				return err
			}
			pushes = append(pushes, pendingPush{userID: officer.ID, event: "notification", payload: n})
		}
		pushes = append(pushes, pendingPush{event: "borrowing:created", payload: map[string]string{"borrowingId": b.ID}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.flush(pushes)
	r.logActivity(actor.ID, fmt.Sprintf("Requested to borrow item %s", in.ItemID), "borrowing", &b.ID,
		map[string]any{"quantity": in.Quantity, "expectedReturnDate": in.ExpectedReturnDate})
	return b, nil
}

// ApproveBorrowing 只有 officer 能审批。同一个事务里：
// 锁借用行 → 锁物品行 → 复核库存 → 扣减 → 剔除养不活的 pending 申请。
func (r *Repo) ApproveBorrowing(ctx context.Context, actor *models.User, borrowingID, notes string) (*models.Borrowing, error) {
	if actor.Role != models.RoleOfficer {
		return nil, fmt.Errorf("%w: only officers may approve borrowing requests", ErrRoleNotAllowed)
	}

	var b models.Borrowing
	var pushes []pendingPush

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, "id = ?", borrowingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowingNotFound
			}
			return err
		}
		if b.Status != models.StatusPending {
			return fmt.Errorf("%w: cannot approve request with status %s", ErrInvalidState, b.Status)
		}

		var it models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&it, "id = ?", b.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		// 申请和审批之间库存可能被别的审批扣掉了，这里以锁内读数为准
		if it.AvailableQuantity < b.Quantity {
			return fmt.Errorf("%w: item no longer available in the requested quantity", ErrInsufficientStock)
		}

		now := time.Now()
		updates := map[string]any{
			"status":      models.StatusApproved,
			"approved_by": actor.ID,
			"approved_at": now,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		if err := tx.Model(&b).Updates(updates).Error; err != nil {
			return err
		}

		remaining := it.AvailableQuantity - b.Quantity
		if err := tx.Model(&models.Item{}).
			Where("id = ?", it.ID).
			Update("available_quantity", remaining).Error; err != nil {
			return err
		}

		n := &models.Notification{
			ID:                 uuid.NewString(),
			UserID:             b.UserID,
			Title:              "Borrowing Approved",
			Message:            fmt.Sprintf("Your request to borrow %s has been approved.", it.Name),
			Type:               models.NotifyBorrowApproved,
			Path:               "/my-borrowings",
			RelatedBorrowingID: &b.ID,
		}
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		pushes = append(pushes, pendingPush{userID: b.UserID, event: "notification", payload: n})

		rejected, rejPushes, err := r.rejectUnsatisfiable(tx, actor, &b, it.Name, remaining, now)
		if err != nil {
			return err
		}
		pushes = append(pushes, rejPushes...)

		r.logActivityTx(tx, actor.ID, fmt.Sprintf("Approved borrowing request for %s", it.Name), "borrowing", &b.ID,
			map[string]any{"requesterId": b.UserID, "autoRejected": rejected})

		pushes = append(pushes, pendingPush{event: "borrowing:approved", payload: map[string]string{"borrowingId": b.ID}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.flush(pushes)
	return &b, nil
}

// rejectUnsatisfiable 审批扣减之后，同一物品下数量已经塞不下的 pending
// 申请直接自动拒绝。只剔除 quantity > 剩余量的申请；几个还放得下的小申请
// 可以继续 pending，由下一次审批再串行化（刻意的惰性裁决）。
//
// SKIP LOCKED：正在被并发审批锁住的行跳过不动，那个事务拿到物品锁之后
// 自己会复核库存，这里去碰它只会和对方的借用行锁互相等死。
func (r *Repo) rejectUnsatisfiable(tx *gorm.DB, actor *models.User, approved *models.Borrowing, itemName string, remaining int, now time.Time) (int, []pendingPush, error) {
	var competing []models.Borrowing
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("item_id = ? AND status = ? AND id <> ? AND quantity > ?",
			approved.ItemID, models.StatusPending, approved.ID, remaining).
		Find(&competing).Error; err != nil {
		return 0, nil, err
	}

	var pushes []pendingPush
	for i := range competing {
		c := &competing[i]
		if err := tx.Model(c).Updates(map[string]any{
			"status":      models.StatusRejected,
			"approved_by": actor.ID,
			"approved_at": now,
			"notes":       autoRejectNote,
		}).Error; err != nil {
			return 0, nil, err
		}

		n := &models.Notification{
			ID:                 uuid.NewString(),
			UserID:             c.UserID,
			Title:              "Borrowing Auto-Rejected",
			Message:            fmt.Sprintf("Your request for %s was automatically rejected due to insufficient stock.", itemName),
			Type:               models.NotifyBorrowRejected,
			Path:               "/my-borrowings",
			RelatedBorrowingID: &c.ID,
		}
		if err := tx.Create(n).Error; err != nil {
			return 0, nil, err
		}
		pushes = append(pushes, pendingPush{userID: c.UserID, event: "notification", payload: n})
	}
	return len(competing), pushes, nil
}

// RejectBorrowing 拒绝 pending 申请。没占过库存，所以不动库存。
func (r *Repo) RejectBorrowing(ctx context.Context, actor *models.User, borrowingID, reason string) (*models.Borrowing, error) {
	if actor.Role != models.RoleOfficer {
		return nil, fmt.Errorf("%w: only officers may reject borrowing requests", ErrRoleNotAllowed)
	}
	if reason == "" {
		reason = "No reason provided"
	}

	var b models.Borrowing
	var pushes []pendingPush

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, "id = ?", borrowingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowingNotFound
			}
			return err
		}
		if b.Status != models.StatusPending {
			return fmt.Errorf("%w: can only reject pending requests", ErrInvalidState)
		}

		var it models.Item
		if err := tx.First(&it, "id = ?", b.ItemID).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&b).Updates(map[string]any{
			"status":      models.StatusRejected,
			"approved_by": actor.ID,
			"approved_at": now,
			"notes":       reason,
		}).Error; err != nil {
			return err
		}

		n := &models.Notification{
			ID:                 uuid.NewString(),
			UserID:             b.UserID,
			Title:              "Borrowing Rejected",
			Message:            fmt.Sprintf("Your request to borrow %s was rejected. Reason: %s", it.Name, reason),
			Type:               models.NotifyBorrowRejected,
			Path:               "/my-borrowings",
			RelatedBorrowingID: &b.ID,
		}
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		pushes = append(pushes, pendingPush{userID: b.UserID, event: "notification", payload: n})

		r.logActivityTx(tx, actor.ID, fmt.Sprintf("Rejected borrowing request for %s", it.Name), "borrowing", &b.ID,
			map[string]any{"reason": reason})

		pushes = append(pushes, pendingPush{event: "borrowing:rejected", payload: map[string]string{"borrowingId": b.ID}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.flush(pushes)
	return &b, nil
}

// MarkBorrowed 物品被取走，approved → borrowed，记录取走时的成色
func (r *Repo) MarkBorrowed(ctx context.Context, actor *models.User, borrowingID, conditionBefore, notes string) (*models.Borrowing, error) {
	if actor.Role != models.RoleOfficer {
		return nil, fmt.Errorf("%w: only officers may mark items as borrowed", ErrRoleNotAllowed)
	}
	if conditionBefore == "" {
		conditionBefore = models.ConditionGood
	}

	var b models.Borrowing
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, "id = ?", borrowingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowingNotFound
			}
			return err
		}
		if b.Status != models.StatusApproved {
			return fmt.Errorf("%w: request must be approved before marking as borrowed", ErrInvalidState)
		}

		updates := map[string]any{
			"status":           models.StatusBorrowed,
			"borrow_date":      time.Now(),
			"condition_before": conditionBefore,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		return tx.Model(&b).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	r.Push.Broadcast("borrowing:borrowed", map[string]string{"borrowingId": b.ID})
	r.logActivity(actor.ID, "Marked borrowing as picked up", "borrowing", &b.ID, nil)
	return &b, nil
}

// RequestReturn 借用人自己发起归还，borrowed → returning
func (r *Repo) RequestReturn(ctx context.Context, actor *models.User, borrowingID, conditionAfter, notes string) (*models.Borrowing, error) {
	if conditionAfter == "" {
		conditionAfter = models.ConditionGood
	}

	var b models.Borrowing
	var pushes []pendingPush

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, "id = ?", borrowingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowingNotFound
			}
			return err
		}
		if b.UserID != actor.ID {
			return ErrNotOwner
		}
		if b.Status != models.StatusBorrowed {
			return fmt.Errorf("%w: can only request return for borrowed items", ErrInvalidState)
		}

		updates := map[string]any{
			"status":          models.StatusReturning,
			"condition_after": conditionAfter,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		if err := tx.Model(&b).Updates(updates).Error; err != nil {
			return err
		}

		// 归还要通知 admin 和 officer 两拨人
		var officials []models.User
		if err := tx.Where("role IN ? AND is_active = TRUE",
			[]string{models.RoleAdmin, models.RoleOfficer}).
			Find(&officials).Error; err != nil {
			return err
		}
		for _, o := range officials {
			n := &models.Notification{
				ID:                 uuid.NewString(),
				UserID:             o.ID,
				Title:              "Return Request",
				Message:            fmt.Sprintf("%s is returning %dx items.", actor.FullName, b.Quantity),
				Type:               models.NotifyReturnRequest,
				Path:               "/borrowings",
				RelatedBorrowingID: &b.ID,
			}
			if err := tx.Create(n).Error; err != nil {
				return err
			}
			pushes = append(pushes, pendingPush{userID: o.ID, event: "notification", payload: n})
		}
		pushes = append(pushes, pendingPush{event: "borrowing:returned", payload: map[string]string{"borrowingId": b.ID}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.flush(pushes)
	r.logActivity(actor.ID, "Requested return", "borrowing", &b.ID, nil)
	return &b, nil
}

// ApproveReturn returning → returned，恢复库存。
// return_approved_at 非空直接拒绝，防止二次审批重复加库存。
func (r *Repo) ApproveReturn(ctx context.Context, actor *models.User, borrowingID, notes string) (*models.Borrowing, error) {
	if actor.Role != models.RoleOfficer {
		return nil, fmt.Errorf("%w: only officers may approve returns", ErrRoleNotAllowed)
	}

	var b models.Borrowing
	var pushes []pendingPush

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, "id = ?", borrowingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowingNotFound
			}
			return err
		}
		if b.ReturnApprovedAt != nil {
			return ErrReturnAlreadyApproved
		}
		if b.Status != models.StatusReturning {
			return fmt.Errorf("%w: item must be in returning state to approve return", ErrInvalidState)
		}

		var it models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&it, "id = ?", b.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		now := time.Now()
		updates := map[string]any{
			"status":             models.StatusReturned,
			"actual_return_date": now,
			"return_approved_by": actor.ID,
			"return_approved_at": now,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		if err := tx.Model(&b).Updates(updates).Error; err != nil {
			return err
		}

		// 恢复库存，封顶到总量
		restored := it.AvailableQuantity + b.Quantity
		if restored > it.Quantity {
			restored = it.Quantity
		}
		if err := tx.Model(&models.Item{}).
			Where("id = ?", it.ID).
			Update("available_quantity", restored).Error; err != nil {
			return err
		}

		n := &models.Notification{
			ID:                 uuid.NewString(),
			UserID:             b.UserID,
			Title:              "Return Approved",
			Message:            fmt.Sprintf("Your return of %s has been approved.", it.Name),
			Type:               models.NotifyReturnApproved,
			Path:               "/my-borrowings",
			RelatedBorrowingID: &b.ID,
		}
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		pushes = append(pushes, pendingPush{userID: b.UserID, event: "notification", payload: n})

		r.logActivityTx(tx, actor.ID, fmt.Sprintf("Approved return for %s", it.Name), "borrowing", &b.ID, nil)

		pushes = append(pushes, pendingPush{event: "borrowing:return_approved", payload: map[string]string{"borrowingId": b.ID}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.flush(pushes)
	return &b, nil
}

// 查询

type BorrowingFilter struct {
	UserID string
	ItemID string
	Status string
	From   *time.Time
	To     *time.Time
}

func (r *Repo) ListBorrowings(ctx context.Context, f BorrowingFilter) ([]models.Borrowing, error) {
	q := r.DB.WithContext(ctx).Model(&models.Borrowing{}).
		Preload("User").
		Preload("Item").
		Preload("Approver").
		Order("created_at DESC")
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ItemID != "" {
		q = q.Where("item_id = ?", f.ItemID)
	}
	if f.Status == "overdue" {
		q = q.Where("status = ? AND expected_return_date < NOW()", models.StatusBorrowed)
	} else if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var bs []models.Borrowing
	if err := q.Find(&bs).Error; err != nil {
		return nil, err
	}
	return bs, nil
}

func (r *Repo) FindBorrowingByID(ctx context.Context, id string) (*models.Borrowing, error) {
	var b models.Borrowing
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Item").
		Preload("Approver").
		First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBorrowingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindOverdueBorrowings borrowed 且过了预计归还时间，推导出来的视图
func (r *Repo) FindOverdueBorrowings(ctx context.Context, now time.Time) ([]models.Borrowing, error) {
	var bs []models.Borrowing
	err := r.DB.WithContext(ctx).
		Preload("Item").
		Where("status = ? AND expected_return_date < ?", models.StatusBorrowed, now).
		Find(&bs).Error
	return bs, err
}
