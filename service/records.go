package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/policy"
	"github.com/ariebrainware/medibook/repository"
)

// RecordService writes and reads medical records. Records are immutable once created.
type RecordService struct {
	store repository.Store
}

func NewRecordService(store repository.Store) *RecordService {
	return &RecordService{store: store}
}

type CreateRecordInput struct {
	PatientID     uint
	AppointmentID uint
	Diagnosis     string
	Prescription  string
}

// CreateRecord attaches a record to an appointment of the patient. Only the appointment's
// doctor (or an admin) may write it, and each appointment takes at most one record.
func (s *RecordService) CreateRecord(ctx context.Context, caller policy.Caller, in CreateRecordInput) (*model.MedicalRecord, error) {
	var created *model.MedicalRecord
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Patients().GetByID(ctx, in.PatientID); err != nil {
			return notFound(err, ErrPatientNotFound)
		}
		a, err := tx.Appointments().GetByID(ctx, in.AppointmentID)
		if err != nil {
			return notFound(err, ErrInvalidAppointment)
		}
		if a.PatientID != in.PatientID {
			return ErrInvalidAppointment
		}
		if err := policy.Require(caller, policy.OpRecordsCreate, a.Doctor.UserID); err != nil {
			return err
		}

		exists, err := tx.Records().ExistsForAppointment(ctx, a.ID)
		if err != nil {
			return internal(err)
		}
		if exists {
			return ErrRecordExists
		}

		rec := &model.MedicalRecord{
			PatientID:     a.PatientID,
			AppointmentID: a.ID,
			DoctorID:      a.DoctorID,
			Diagnosis:     strings.TrimSpace(in.Diagnosis),
			Prescription:  strings.TrimSpace(in.Prescription),
		}
		if err := tx.Records().Create(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrRecordExists
			}
			return internal(err)
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *RecordService) GetRecord(ctx context.Context, caller policy.Caller, id uint) (*model.MedicalRecord, error) {
	rec, err := s.store.Records().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrRecordNotFound)
	}
	if err := policy.Require(caller, policy.OpRecordsRead, rec.Patient.UserID, rec.Doctor.UserID); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecordQuery holds the optional list filters.
type RecordQuery struct {
	PatientID     uint
	DoctorID      uint
	AppointmentID uint
	repository.ListOptions
}

func (s *RecordService) ListRecords(ctx context.Context, caller policy.Caller, q RecordQuery) ([]model.MedicalRecord, int64, error) {
	if err := policy.Require(caller, policy.OpRecordsList); err != nil {
		return nil, 0, err
	}
	filter := repository.RecordFilter{
		PatientID:     q.PatientID,
		DoctorID:      q.DoctorID,
		AppointmentID: q.AppointmentID,
		ListOptions:   q.ListOptions,
	}
	if scope := policy.ListScope(caller); !scope.All {
		filter.VisibleToUserID = scope.UserID
	}
	records, total, err := s.store.Records().List(ctx, filter)
	if err != nil {
		return nil, 0, internal(err)
	}
	return records, total, nil
}
