package model

import "time"

// Patient is the profile of a user with role Patient.
// Name and e-mail live on the owning User and are read through it.
type Patient struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	User          User      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Phone         string    `json:"phone" gorm:"type:varchar(20)"`
	InsuranceInfo *string   `json:"insurance_info" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Name is derived from the owning user; the User association must be loaded.
func (p Patient) Name() string {
	return p.User.FullName()
}

// Email is derived from the owning user; the User association must be loaded.
func (p Patient) Email() string {
	return p.User.Email
}

// PatientOut is the API representation of a patient with its derived fields.
type PatientOut struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	InsuranceInfo *string   `json:"insurance_info"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p Patient) Out() PatientOut {
	return PatientOut{
		ID:            p.ID,
		UserID:        p.UserID,
		Name:          p.Name(),
		Email:         p.Email(),
		Phone:         p.Phone,
		InsuranceInfo: p.InsuranceInfo,
		CreatedAt:     p.CreatedAt,
	}
}
