package main

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"bankbook/models"
)

// RegisterUser creates a user account. Email and nickname must be unique; the
// pre-check is optimistic and the DB unique indexes settle races.
func RegisterUser(email, nickname, name, phone, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	nickname = strings.TrimSpace(nickname)
	if email == "" {
		return nil, fmt.Errorf("email required")
	}
	if nickname == "" {
		return nil, fmt.Errorf("nickname required")
	}
	if len(password) < 8 { // basic password policy
		return nil, fmt.Errorf("password too short (min 8)")
	}
	var existing models.User
	if err := db.Where("email = ? OR nickname = ?", email, nickname).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("email or nickname already registered")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:          email,
		Nickname:       nickname,
		Name:           name,
		PhoneNumber:    phone,
		HashedPassword: hashedPassword,
		IsActive:       true,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return nil, fmt.Errorf("email or nickname already registered")
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials for an active user. The error never says
// which part was wrong.
func Authenticate(email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := db.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func ChangePassword(user *models.User, current, next string) error {
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(current)); err != nil {
		return fmt.Errorf("current password is incorrect")
	}
	if len(next) < 8 {
		return fmt.Errorf("password too short (min 8)")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Model(user).Update("hashed_password", hashed).Error
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
