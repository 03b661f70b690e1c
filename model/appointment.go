package model

import (
	"fmt"
	"strings"
	"time"
)

// MinAppointmentDuration is the shortest bookable slot.
const MinAppointmentDuration = 15 * time.Minute

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Blocking reports whether an appointment in this status occupies the doctor's time.
func (s AppointmentStatus) Blocking() bool {
	return s == StatusScheduled || s == StatusCompleted
}

// BlockingStatuses lists the statuses taking part in overlap detection.
var BlockingStatuses = []AppointmentStatus{StatusScheduled, StatusCompleted}

// ParseStatus normalizes letter case and rejects anything outside the three known statuses.
func ParseStatus(s string) (AppointmentStatus, error) {
	st := AppointmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return st, nil
}

// Appointment is a booked slot [StartTime, EndTime) between a patient and a doctor.
// Appointments are never deleted; cancellation is a status.
type Appointment struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	PatientID uint              `json:"patient_id" gorm:"not null;index"`
	Patient   Patient           `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	DoctorID  uint              `json:"doctor_id" gorm:"not null;index:idx_appointments_doctor_window,priority:1"`
	Doctor    Doctor            `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	StartTime time.Time         `json:"start_time" gorm:"not null;index:idx_appointments_doctor_window,priority:2"`
	EndTime   time.Time         `json:"end_time" gorm:"not null;check:end_time > start_time"`
	Status    AppointmentStatus `json:"status" gorm:"type:varchar(16);not null;default:scheduled;index"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (a Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Overlaps reports whether the appointment's window intersects [start, end).
// Touching endpoints do not overlap.
func (a Appointment) Overlaps(start, end time.Time) bool {
	return Overlaps(a.StartTime, a.EndTime, start, end)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
