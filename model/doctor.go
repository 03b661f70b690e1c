package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Doctor is the profile of a user with role Doctor. A user may hold one profile per specialization.
type Doctor struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         uint            `json:"user_id" gorm:"not null;uniqueIndex:idx_doctor_user_specialization,priority:1"`
	User           User            `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Specialization string          `json:"specialization" gorm:"type:varchar(191);not null;uniqueIndex:idx_doctor_user_specialization,priority:2"`
	Contact        string          `json:"contact" gorm:"type:varchar(20)"`
	Experience     int             `json:"experience" gorm:"not null;default:0;check:experience >= 0"`
	Fee            decimal.Decimal `json:"fee" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DoctorOut is the API representation of a doctor profile.
type DoctorOut struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"user_id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Contact        string    `json:"contact"`
	Experience     int       `json:"experience"`
	Fee            string    `json:"fee"`
	CreatedAt      time.Time `json:"created_at"`
}

func (d Doctor) Out() DoctorOut {
	return DoctorOut{
		ID:             d.ID,
		UserID:         d.UserID,
		Name:           d.User.FullName(),
		Specialization: d.Specialization,
		Contact:        d.Contact,
		Experience:     d.Experience,
		Fee:            d.Fee.StringFixed(2),
		CreatedAt:      d.CreatedAt,
	}
}

// ValidFee reports whether fee is non-negative with at most two decimal places.
func ValidFee(fee decimal.Decimal) bool {
	return !fee.IsNegative() && fee.Equal(fee.Round(2))
}
