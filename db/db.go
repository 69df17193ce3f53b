package db

import (
	"fmt"
	"log"
	"os"

	"office_equipment_borrowing/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Item{},
		&models.Borrowing{},
		&models.Notification{},
		&models.ActivityLog{},
	); err != nil {
		return err
	}

	// 逾期统计走这个部分索引
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_expected_return
	  ON %s (expected_return_date)
	  WHERE status = 'borrowed';
	`, models.BorrowingTable, models.BorrowingTable)).Error; err != nil {
		return err
	}

	// 审批时扫同一物品的 pending 请求
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_pending_item
	  ON %s (item_id, quantity)
	  WHERE status = 'pending';
	`, models.BorrowingTable, models.BorrowingTable)).Error; err != nil {
		return err
	}

	return nil
}
