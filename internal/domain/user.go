package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	FullName     string    `gorm:"size:128" json:"fullName"`
	NationalID   string    `gorm:"size:32" json:"nationalId"`
	City         string    `gorm:"size:64" json:"city"`
	PhoneNumber  string    `gorm:"size:32" json:"phoneNumber"`
	Roles        RoleSet   `gorm:"type:varchar(128);not null;default:''" json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserRef 对外公开的用户摘要（不含证件号/手机号）
type UserRef struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	City     string `json:"city"`
}

func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, FullName: u.FullName, City: u.City}
}

func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
