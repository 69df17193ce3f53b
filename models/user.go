package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin   = "admin"
	RoleOfficer = "officer"
	RoleUser    = "user"
)

type User struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	FullName string `gorm:"size:255;not null" json:"fullName"`
	// NIP 员工编号，和邮箱一样可用于登录
	NIP      string `gorm:"column:nip;size:64;uniqueIndex;not null" json:"nip"`
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
	Role     string `gorm:"size:20;not null;default:'user'" json:"role"`

	Department string `gorm:"size:255" json:"department,omitempty"`
	Position   string `gorm:"size:255" json:"position,omitempty"`
	Phone      string `gorm:"size:64" json:"phone,omitempty"`

	IsActive        bool   `gorm:"not null;default:true" json:"isActive"`
	ThemePreference string `gorm:"size:10;not null;default:'light'" json:"themePreference"`

	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// IsStaff admin 和 officer 都能看全部借用记录
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleOfficer
}

func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleOfficer || r == RoleUser
}
