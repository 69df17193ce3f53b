// db/repo_item.go
package db

import (
	"context"
	"errors"

	"office_equipment_borrowing/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Categories

func (r *Repo) CreateCategory(ctx context.Context, cat *models.Category) error {
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(cat).Error
}

func (r *Repo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (r *Repo) FindCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func (r *Repo) UpdateCategory(ctx context.Context, id string, fields map[string]any) (*models.Category, error) {
	res := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}
	return r.FindCategoryByID(ctx, id)
}

// DeleteCategory 还有物品挂在分类下时拒绝删除
func (r *Repo) DeleteCategory(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Item{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrCategoryInUse
		}
		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// Items（库存台账）
// available_quantity 只有三个入口能动它：审批扣减、归还恢复、管理员改总量。

func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	if it.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if _, err := r.FindCategoryByID(ctx, it.CategoryID); err != nil {
		return err
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.AvailableQuantity = it.Quantity
	if it.Condition == "" {
		it.Condition = models.ConditionGood
	}
	if err := r.DB.WithContext(ctx).Create(it).Error; err != nil {
		return err
	}
	r.Push.Broadcast("item:created", it)
	return nil
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	err := r.DB.WithContext(ctx).Preload("Category").First(&it, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.DB.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&items).Error
	return items, err
}

type UpdateItemInput struct {
	Name           *string
	Description    *string
	CategoryID     *string
	SerialNumber   *string
	Quantity       *int
	Condition      *string
	Location       *string
	Image          *string
	Specifications *string
	IsAvailable    *bool
}

// clampAvailable 管理员改总量时，把差值同步到可借数并夹在 [0, newQty] 内。
// 超出总量是要阻止的缺陷，不是仅仅断言。
func clampAvailable(oldQty, newQty, avail int) int {
	next := avail + (newQty - oldQty)
	if next < 0 {
		next = 0
	}
	if next > newQty {
		next = newQty
	}
	return next
}

// UpdateItem 锁行改库存，总量变化按差值调 available_quantity
func (r *Repo) UpdateItem(ctx context.Context, id string, in UpdateItemInput) (*models.Item, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&it, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		fields := map[string]any{}
		if in.SerialNumber != nil && *in.SerialNumber != it.SerialNumber {
			var n int64
			if err := tx.Model(&models.Item{}).
				Where("serial_number = ? AND id <> ?", *in.SerialNumber, it.ID).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrSerialTaken
			}
			fields["serial_number"] = *in.SerialNumber
		}
		if in.CategoryID != nil && *in.CategoryID != it.CategoryID {
			var n int64
			if err := tx.Model(&models.Category{}).Where("id = ?", *in.CategoryID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrCategoryNotFound
			}
			fields["category_id"] = *in.CategoryID
		}
		if in.Quantity != nil && *in.Quantity != it.Quantity {
			if *in.Quantity < 0 {
				return ErrInvalidQuantity
			}
			fields["quantity"] = *in.Quantity
			fields["available_quantity"] = clampAvailable(it.Quantity, *in.Quantity, it.AvailableQuantity)
		}
		if in.Name != nil {
			fields["name"] = *in.Name
		}
		if in.Description != nil {
			fields["description"] = *in.Description
		}
		if in.Condition != nil {
			fields["condition"] = *in.Condition
		}
		if in.Location != nil {
			fields["location"] = *in.Location
		}
		if in.Image != nil {
			fields["image"] = *in.Image
		}
		if in.Specifications != nil {
			fields["specifications"] = *in.Specifications
		}
		if in.IsAvailable != nil {
			fields["is_available"] = *in.IsAvailable
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&it).Updates(fields).Error
	})
	if err != nil {
		return nil, err
	}

	it, err := r.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Push.Broadcast("item:updated", it)
	return it, nil
}

// DeleteItem 硬删除并级联：通知 → 借用记录 → 物品，一个事务里做完
func (r *Repo) DeleteItem(ctx context.Context, id string) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.First(&it, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		var borrowingIDs []string
		if err := tx.Model(&models.Borrowing{}).
			Where("item_id = ?", id).
			Pluck("id", &borrowingIDs).Error; err != nil {
			return err
		}
		if len(borrowingIDs) > 0 {
			if err := tx.Where("related_borrowing_id IN ?", borrowingIDs).
				Delete(&models.Notification{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.Borrowing{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	r.Push.Broadcast("item:deleted", map[string]string{"id": id})
	return nil
}

func (r *Repo) CountItems(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Item{}).Count(&n).Error
	return n, err
}
