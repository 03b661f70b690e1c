package model

import "time"

// MedicalRecord is the immutable clinical note written for an appointment.
// At most one record exists per appointment.
type MedicalRecord struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	PatientID     uint        `json:"patient_id" gorm:"not null;index"`
	Patient       Patient     `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	AppointmentID uint        `json:"appointment_id" gorm:"not null;uniqueIndex"`
	Appointment   Appointment `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	DoctorID      uint        `json:"doctor_id" gorm:"not null;index"`
	Doctor        Doctor      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Diagnosis     string      `json:"diagnosis" gorm:"type:text;not null"`
	Prescription  string      `json:"prescription" gorm:"type:text;not null"`
	CreatedAt     time.Time   `json:"created_at"`
}
