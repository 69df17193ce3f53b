package db

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"office_equipment_borrowing/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 集成测试需要真实 Postgres，DSN 从环境变量拿：
//
//	TEST_DATABASE_DSN="host=localhost user=postgres password=postgres dbname=borrowing_test port=5432 sslmode=disable" go test ./db/
func testRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping database integration test")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	// 每个测试从干净的表开始
	require.NoError(t, gdb.Exec(
		`TRUNCATE activity_logs, notifications, borrowings, items, categories, users`,
	).Error)

	return NewRepo(gdb, NopPusher{})
}

type fixture struct {
	officer *models.User
	alice   *models.User
	bob     *models.User
	carol   *models.User
	item    *models.Item
}

// seedFixture 一个 officer、三个普通用户、一件库存为 quantity 的物品
func seedFixture(t *testing.T, r *Repo, quantity int) fixture {
	t.Helper()
	ctx := context.Background()

	mkUser := func(name, role string) *models.User {
		u := &models.User{
			ID:       uuid.NewString(),
			FullName: name,
			NIP:      uuid.NewString()[:8],
			Email:    uuid.NewString()[:8] + "@test.local",
			Role:     role,
			IsActive: true,
		}
		require.NoError(t, u.SetPassword("pw"))
		require.NoError(t, r.CreateUser(ctx, u))
		return u
	}

	f := fixture{
		officer: mkUser("Officer", models.RoleOfficer),
		alice:   mkUser("Alice", models.RoleUser),
		bob:     mkUser("Bob", models.RoleUser),
		carol:   mkUser("Carol", models.RoleUser),
	}

	cat := &models.Category{ID: uuid.NewString(), Name: "Electronics " + uuid.NewString()[:8], CreatedBy: f.officer.ID}
	require.NoError(t, r.DB.Create(cat).Error)

	f.item = &models.Item{
		ID:                uuid.NewString(),
		Name:              "Projector",
		CategoryID:        cat.ID,
		SerialNumber:      uuid.NewString(),
		Quantity:          quantity,
		AvailableQuantity: quantity,
		Condition:         models.ConditionGood,
		IsAvailable:       true,
		CreatedBy:         f.officer.ID,
	}
	require.NoError(t, r.DB.Create(f.item).Error)
	return f
}

func availableQty(t *testing.T, r *Repo, itemID string) int {
	t.Helper()
	var it models.Item
	require.NoError(t, r.DB.First(&it, "id = ?", itemID).Error)
	return it.AvailableQuantity
}

func request(t *testing.T, r *Repo, u *models.User, itemID string, qty int) *models.Borrowing {
	t.Helper()
	b, err := r.CreateBorrowing(context.Background(), u, CreateBorrowingInput{
		ItemID:             itemID,
		Quantity:           qty,
		ExpectedReturnDate: time.Now().Add(7 * 24 * time.Hour),
		Purpose:            "meeting",
	})
	require.NoError(t, err)
	return b
}

func TestBorrowingLifecycleRestoresStock(t *testing.T) {
	r := testRepo(t)
	f := seedFixture(t, r, 5)
	ctx := context.Background()

	b := request(t, r, f.alice, f.item.ID, 2)
	assert.Equal(t, models.StatusPending, b.Status)
	// 申请阶段不占库存
	assert.Equal(t, 5, availableQty(t, r, f.item.ID))

	b2, err := r.ApproveBorrowing(ctx, f.officer, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, b2.Status)
	assert.Equal(t, 3, availableQty(t, r, f.item.ID))

	b3, err := r.MarkBorrowed(ctx, f.officer, b.ID, models.ConditionExcellent, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusBorrowed, b3.Status)
	assert.NotNil(t, b3.BorrowDate)

	b4, err := r.RequestReturn(ctx, f.alice, b.ID, models.ConditionGood, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturning, b4.Status)
	// 归还要审批确认之后才加库存
	assert.Equal(t, 3, availableQty(t, r, f.item.ID))

	b5, err := r.ApproveReturn(ctx, f.officer, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, b5.Status)
	assert.Equal(t, 5, availableQty(t, r, f.item.ID))
}

func TestApproveAutoRejectsUnsatisfiableCompetitors(t *testing.T) {
	r := testRepo(t)
	f := seedFixture(t, r, 5)
	ctx := context.Background()

	a := request(t, r, f.alice, f.item.ID, 4)
	b := request(t, r, f.bob, f.item.ID, 3)
	c := request(t, r, f.carol, f.item.ID, 1)

	_, err := r.ApproveBorrowing(ctx, f.officer, a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, availableQty(t, r, f.item.ID))

	// Bob 要 3 个但只剩 1 个，自动拒绝
	bAfter, err := r.FindBorrowingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, bAfter.Status)
	assert.Equal(t, autoRejectNote, bAfter.Notes)

	var n models.Notification
	require.NoError(t, r.DB.
		Where("user_id = ? AND related_borrowing_id = ?", f.bob.ID, b.ID).
		Where("type = ?", models.NotifyBorrowRejected).
		First(&n).Error)
	assert.Equal(t, "Borrowing Auto-Rejected", n.Title)

	// Carol 要 1 个还放得下，继续 pending，下一轮审批照常通过
	cAfter, err := r.FindBorrowingByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, cAfter.Status)

	_, err = r.ApproveBorrowing(ctx, f.officer, c.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, availableQty(t, r, f.item.ID))
}

// 并发审批：两个申请加起来超过库存，只能成一个。行锁把两个事务
// 串行化，后到的要么复核库存时拿到 ErrInsufficientStock，要么已经被
// 先到那个的自动拒绝剔掉（ErrInvalidState）。
func TestConcurrentApprovesOnlyOneSucceeds(t *testing.T) {
	r := testRepo(t)
	f := seedFixture(t, r, 5)
	ctx := context.Background()

	a := request(t, r, f.alice, f.item.ID, 3)
	b := request(t, r, f.bob, f.item.ID, 3)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = r.ApproveBorrowing(ctx, f.officer, a.ID, "")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = r.ApproveBorrowing(ctx, f.officer, b.ID, "")
	}()
	wg.Wait()

	var approved, failed int
	for _, err := range errs {
		if err == nil {
			approved++
			continue
		}
		failed++
		// 输家看到的一定是扣减后的库存，绝不是旧值
		if !errors.Is(err, ErrInsufficientStock) && !errors.Is(err, ErrInvalidState) {
			t.Fatalf("loser got unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, approved)
	assert.Equal(t, 1, failed)

	// 库存只扣了一次
	assert.Equal(t, 2, availableQty(t, r, f.item.ID))

	// 赢家 approved；输家要么还 pending（库存复核失败）要么被自动拒绝
	var approvedCount int
	for _, id := range []string{a.ID, b.ID} {
		cur, err := r.FindBorrowingByID(ctx, id)
		require.NoError(t, err)
		switch cur.Status {
		case models.StatusApproved:
			approvedCount++
		case models.StatusPending, models.StatusRejected:
		default:
			t.Fatalf("unexpected final status %s", cur.Status)
		}
	}
	assert.Equal(t, 1, approvedCount)
}

func TestApproveReturnIsNotRepeatable(t *testing.T) {
	r := testRepo(t)
	f := seedFixture(t, r, 5)
	ctx := context.Background()

	b := request(t, r, f.alice, f.item.ID, 2)
	_, err := r.ApproveBorrowing(ctx, f.officer, b.ID, "")
	require.NoError(t, err)
	_, err = r.MarkBorrowed(ctx, f.officer, b.ID, "", "")
	require.NoError(t, err)
	_, err = r.RequestReturn(ctx, f.alice, b.ID, "", "")
	require.NoError(t, err)

	_, err = r.ApproveReturn(ctx, f.officer, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 5, availableQty(t, r, f.item.ID))

	// 二次审批不能把库存加两遍
	_, err = r.ApproveReturn(ctx, f.officer, b.ID, "")
	assert.ErrorIs(t, err, ErrReturnAlreadyApproved)
	assert.Equal(t, 5, availableQty(t, r, f.item.ID))
}

func TestApproveRejectsNonPendingWithoutTouchingStock(t *testing.T) {
	r := testRepo(t)
	f := seedFixture(t, r, 5)
	ctx := context.Background()

	b := request(t, r, f.alice, f.item.ID, 2)
	_, err := r.ApproveBorrowing(ctx, f.officer, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 3, availableQty(t, r, f.item.ID))

	// 已审批的不能再审批，库存不动
	_, err = r.ApproveBorrowing(ctx, f.officer, b.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 3, availableQty(t, r, f.item.ID))

	// 也不能再拒绝
	_, err = r.RejectBorrowing(ctx, f.officer, b.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateMachineRoleAndOwnerGuards(t *testing.T) {
	r := testRepo(t)
	f := seedFixture(t, r, 5)
	ctx := context.Background()

	b := request(t, r, f.alice, f.item.ID, 1)

	// 普通用户不能审批
	_, err := r.ApproveBorrowing(ctx, f.alice, b.ID, "")
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
	_, err = r.RejectBorrowing(ctx, f.alice, b.ID, "nope")
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = r.ApproveBorrowing(ctx, f.officer, b.ID, "")
	require.NoError(t, err)
	_, err = r.MarkBorrowed(ctx, f.officer, b.ID, "", "")
	require.NoError(t, err)

	// 归还只能借用人自己发起
	_, err = r.RequestReturn(ctx, f.bob, b.ID, "", "")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCreateBorrowingRejectsBadRequests(t *testing.T) {
	r := testRepo(t)
	f := seedFixture(t, r, 2)
	ctx := context.Background()

	_, err := r.CreateBorrowing(ctx, f.alice, CreateBorrowingInput{
		ItemID:             f.item.ID,
		Quantity:           3,
		ExpectedReturnDate: time.Now().Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = r.CreateBorrowing(ctx, f.alice, CreateBorrowingInput{
		ItemID:             f.item.ID,
		Quantity:           0,
		ExpectedReturnDate: time.Now().Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = r.CreateBorrowing(ctx, f.alice, CreateBorrowingInput{
		ItemID:             uuid.NewString(),
		Quantity:           1,
		ExpectedReturnDate: time.Now().Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestOverdueIsDerivedNotStored(t *testing.T) {
	r := testRepo(t)
	f := seedFixture(t, r, 5)
	ctx := context.Background()

	b := request(t, r, f.alice, f.item.ID, 1)
	_, err := r.ApproveBorrowing(ctx, f.officer, b.ID, "")
	require.NoError(t, err)
	_, err = r.MarkBorrowed(ctx, f.officer, b.ID, "", "")
	require.NoError(t, err)

	// 把预计归还时间改到过去，状态列保持 borrowed
	require.NoError(t, r.DB.Model(&models.Borrowing{}).
		Where("id = ?", b.ID).
		Update("expected_return_date", time.Now().Add(-48*time.Hour)).Error)

	overdue, err := r.FindOverdueBorrowings(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, b.ID, overdue[0].ID)
	assert.Equal(t, models.StatusBorrowed, overdue[0].Status)

	listed, err := r.ListBorrowings(ctx, BorrowingFilter{Status: "overdue"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, b.ID, listed[0].ID)
}
