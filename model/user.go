package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is the identity record every profile hangs off.
// Users are never hard deleted; Disabled is set instead.
type User struct {
	gorm.Model
	Username       string  `json:"username" gorm:"type:varchar(191);uniqueIndex;not null"`
	Email          string  `json:"email" gorm:"type:varchar(191);uniqueIndex;not null"`
	Password       string  `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	FirstName      string  `json:"firstname" gorm:"column:firstname;type:varchar(255)"`
	LastName       string  `json:"lastname" gorm:"column:lastname;type:varchar(255)"`
	Role           Role    `json:"role" gorm:"type:varchar(16);not null;default:Patient;index"`
	ProfilePicture *string `json:"profile_picture" gorm:"type:varchar(500)"`
	Disabled       bool    `json:"disabled" gorm:"not null;default:false"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserOut is the sanitized representation of a User; it never carries the password hash.
type UserOut struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstname"`
	LastName       string    `json:"lastname"`
	Role           Role      `json:"role"`
	ProfilePicture *string   `json:"profile_picture"`
	Disabled       bool      `json:"disabled"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u User) Out() UserOut {
	return UserOut{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		Disabled:       u.Disabled,
		CreatedAt:      u.CreatedAt,
	}
}

// SeedAdmin creates the admin account with the given pre-hashed password, or promotes and
// re-enables an existing user with that e-mail.
func SeedAdmin(db *gorm.DB, email, passwordHash string) (User, error) {
	var user User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		user.Role = RoleAdmin
		user.Disabled = false
		user.Password = passwordHash
		if err := db.Save(&user).Error; err != nil {
			return User{}, fmt.Errorf("failed to promote %s: %w", email, err)
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, err
	}

	user = User{
		Username:  email,
		Email:     email,
		Password:  passwordHash,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return User{}, fmt.Errorf("failed to seed admin %s: %w", email, err)
	}
	return user, nil
}
