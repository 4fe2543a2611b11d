package models

import (
	"time"
)

// User model. Email is the login identifier. Deactivation is a soft delete:
// IsActive flips to false and the record stays for audit.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Nickname       string    `gorm:"size:50;not null;uniqueIndex" json:"nickname"`
	Name           string    `gorm:"size:100" json:"name"`
	PhoneNumber    string    `gorm:"size:20" json:"phone_number"`
	HashedPassword []byte    `gorm:"not null" json:"-"`
	IsActive       bool      `gorm:"default:true;not null" json:"-"`
	Accounts       []Account `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string { return "users" }
