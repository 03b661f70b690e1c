package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/policy"
	"github.com/ariebrainware/medibook/repository"
)

// SchedulingService books appointments and moves them through their lifecycle.
// The overlap check and the write it guards run in one transaction holding the doctor's row
// lock, and the check itself is a locking read of the latest committed appointments.
type SchedulingService struct {
	store repository.Store
}

func NewSchedulingService(store repository.Store) *SchedulingService {
	return &SchedulingService{store: store}
}

type CreateAppointmentInput struct {
	PatientID uint
	DoctorID  uint
	StartTime time.Time
	EndTime   time.Time
}

// ValidateWindow checks ordering and minimum length of [start, end).
func ValidateWindow(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidRange
	}
	if end.Sub(start) < model.MinAppointmentDuration {
		return ErrTooShort
	}
	return nil
}

// CreateAppointment books a scheduled appointment. Failures are reported in this order:
// unknown patient or doctor, caller not allowed, end not after start, shorter than
// fifteen minutes, overlap with the doctor's scheduled or completed appointments.
func (s *SchedulingService) CreateAppointment(ctx context.Context, caller policy.Caller, in CreateAppointmentInput) (*model.Appointment, error) {
	var created *model.Appointment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		// The doctor lock is the transaction's first statement, taken before any plain read.
		doctor, lockErr := tx.Doctors().LockByID(ctx, in.DoctorID)
		if lockErr != nil && !errors.Is(lockErr, repository.ErrNotFound) {
			return internal(lockErr)
		}
		if _, err := tx.Patients().GetByID(ctx, in.PatientID); err != nil {
			return notFound(err, ErrPatientNotFound)
		}
		if lockErr != nil {
			return ErrDoctorNotFound
		}
		if err := policy.Require(caller, policy.OpAppointmentsCreate, doctor.UserID); err != nil {
			return err
		}

		start, end := in.StartTime.UTC(), in.EndTime.UTC()
		if err := ValidateWindow(start, end); err != nil {
			return err
		}
		overlap, err := tx.Appointments().HasOverlap(ctx, doctor.ID, start, end, 0)
		if err != nil {
			return internal(err)
		}
		if overlap {
			return ErrConflict
		}

		a := &model.Appointment{
			PatientID: in.PatientID,
			DoctorID:  doctor.ID,
			StartTime: start,
			EndTime:   end,
			Status:    model.StatusScheduled,
		}
		if err := tx.Appointments().Create(ctx, a); err != nil {
			if errors.Is(err, repository.ErrOverlap) {
				return ErrConflict
			}
			return internal(err)
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// TransitionStatus sets the appointment's status. Any transition is allowed; moving a
// cancelled appointment back to a blocking status re-checks it for overlaps.
func (s *SchedulingService) TransitionStatus(ctx context.Context, caller policy.Caller, id uint, status string) (*model.Appointment, error) {
	next, err := model.ParseStatus(status)
	if err != nil {
		return nil, ErrInvalidStatus
	}

	var updated *model.Appointment
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		a, err := tx.Appointments().GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrAppointmentNotFound)
		}
		if err := policy.Require(caller, policy.OpAppointmentsTransition, a.Doctor.UserID); err != nil {
			return err
		}

		if next.Blocking() && !a.Status.Blocking() {
			if _, err := tx.Doctors().LockByID(ctx, a.DoctorID); err != nil {
				return internal(err)
			}
			overlap, err := tx.Appointments().HasOverlap(ctx, a.DoctorID, a.StartTime, a.EndTime, a.ID)
			if err != nil {
				return internal(err)
			}
			if overlap {
				return ErrConflict.WithMessage("appointment cannot be restored: doctor is no longer available in this time slot")
			}
		}

		if a.Status != next {
			if err := tx.Appointments().UpdateStatus(ctx, a.ID, next); err != nil {
				if errors.Is(err, repository.ErrOverlap) {
					return ErrConflict
				}
				return notFound(err, ErrAppointmentNotFound)
			}
			a.Status = next
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetAppointment returns an appointment visible to its patient, its doctor and admins.
func (s *SchedulingService) GetAppointment(ctx context.Context, caller policy.Caller, id uint) (*model.Appointment, error) {
	a, err := s.store.Appointments().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAppointmentNotFound)
	}
	if err := policy.Require(caller, policy.OpAppointmentsRead, a.Patient.UserID, a.Doctor.UserID); err != nil {
		return nil, err
	}
	return a, nil
}

// AppointmentQuery holds the optional list filters.
type AppointmentQuery struct {
	DoctorID  uint
	PatientID uint
	Status    string
	From      *time.Time
	To        *time.Time
	repository.ListOptions
}

// ListAppointments returns every appointment to admins and only the caller's own otherwise.
func (s *SchedulingService) ListAppointments(ctx context.Context, caller policy.Caller, q AppointmentQuery) ([]model.Appointment, int64, error) {
	if err := policy.Require(caller, policy.OpAppointmentsList); err != nil {
		return nil, 0, err
	}
	filter := repository.AppointmentFilter{
		DoctorID:    q.DoctorID,
		PatientID:   q.PatientID,
		From:        q.From,
		To:          q.To,
		ListOptions: q.ListOptions,
	}
	if strings.TrimSpace(q.Status) != "" {
		st, err := model.ParseStatus(q.Status)
		if err != nil {
			return nil, 0, ErrInvalidStatus
		}
		filter.Status = st
	}
	if scope := policy.ListScope(caller); !scope.All {
		filter.VisibleToUserID = scope.UserID
	}
	appts, total, err := s.store.Appointments().List(ctx, filter)
	if err != nil {
		return nil, 0, internal(err)
	}
	return appts, total, nil
}
