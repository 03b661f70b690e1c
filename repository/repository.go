// Package repository persists domain entities. Services depend on the interfaces;
// GormStore implements them for MySQL, PostgreSQL and SQLite.
package repository

import (
	"context"
	"time"

	"github.com/ariebrainware/medibook/model"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// ListOptions paginates list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize applies the default and maximum page size.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	// GetByIdentifier matches either the username or the e-mail address.
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	Update(ctx context.Context, u *model.User) error
	List(ctx context.Context, opts ListOptions) ([]model.User, int64, error)
}

type PatientRepository interface {
	Create(ctx context.Context, p *model.Patient) error
	GetByID(ctx context.Context, id uint) (*model.Patient, error)
	GetByUserID(ctx context.Context, userID uint) (*model.Patient, error)
	Update(ctx context.Context, p *model.Patient) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, opts ListOptions) ([]model.Patient, int64, error)
}

// DoctorFilter narrows doctor listings.
type DoctorFilter struct {
	Specialization string
	UserID         uint
	ListOptions
}

type DoctorRepository interface {
	Create(ctx context.Context, d *model.Doctor) error
	GetByID(ctx context.Context, id uint) (*model.Doctor, error)
	// LockByID loads the doctor and, where the database supports it, holds a row lock
	// until the surrounding transaction ends.
	LockByID(ctx context.Context, id uint) (*model.Doctor, error)
	Update(ctx context.Context, d *model.Doctor) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter DoctorFilter) ([]model.Doctor, int64, error)
}

// AppointmentFilter narrows appointment listings. VisibleToUserID, when set, keeps only
// appointments whose patient or doctor belongs to that user.
type AppointmentFilter struct {
	VisibleToUserID uint
	DoctorID        uint
	PatientID       uint
	Status          model.AppointmentStatus
	From            *time.Time
	To              *time.Time
	ListOptions
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id uint) (*model.Appointment, error)
	// HasOverlap reports whether a blocking appointment of the doctor other than excludeID
	// intersects [start, end).
	HasOverlap(ctx context.Context, doctorID uint, start, end time.Time, excludeID uint) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status model.AppointmentStatus) error
	List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, int64, error)
	CountByPatient(ctx context.Context, patientID uint) (int64, error)
	CountByDoctor(ctx context.Context, doctorID uint) (int64, error)
}

// RecordFilter narrows medical record listings, with the same visibility rule as appointments.
type RecordFilter struct {
	VisibleToUserID uint
	PatientID       uint
	DoctorID        uint
	AppointmentID   uint
	ListOptions
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, r *model.MedicalRecord) error
	GetByID(ctx context.Context, id uint) (*model.MedicalRecord, error)
	ExistsForAppointment(ctx context.Context, appointmentID uint) (bool, error)
	List(ctx context.Context, filter RecordFilter) ([]model.MedicalRecord, int64, error)
}

// Store groups the repositories and runs units of work.
type Store interface {
	Users() UserRepository
	Patients() PatientRepository
	Doctors() DoctorRepository
	Appointments() AppointmentRepository
	Records() MedicalRecordRepository
	// Transaction runs fn against a Store bound to one transaction. Returning an error rolls back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
