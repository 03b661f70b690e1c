package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/policy"
	"github.com/ariebrainware/medibook/repository"
	"github.com/ariebrainware/medibook/util"
	"github.com/shopspring/decimal"
)

// ProfileService manages patient and doctor profiles.
type ProfileService struct {
	store repository.Store
}

func NewProfileService(store repository.Store) *ProfileService {
	return &ProfileService{store: store}
}

// requireUserWithRole loads the user and checks it carries role.
func requireUserWithRole(ctx context.Context, store repository.Store, userID uint, role model.Role) (*model.User, error) {
	user, err := store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if user.Role != role {
		return nil, ErrWrongRole.WithMessage("user must have role " + role.String())
	}
	return user, nil
}

// --- patients ---

type CreatePatientInput struct {
	// UserID defaults to the caller.
	UserID        uint
	Phone         string
	InsuranceInfo *string
}

func (s *ProfileService) CreatePatient(ctx context.Context, caller policy.Caller, in CreatePatientInput) (*model.Patient, error) {
	if in.UserID == 0 {
		in.UserID = caller.ID
	}
	if err := policy.Require(caller, policy.OpPatientsCreate, in.UserID); err != nil {
		return nil, err
	}
	if _, err := requireUserWithRole(ctx, s.store, in.UserID, model.RolePatient); err != nil {
		return nil, err
	}

	patients := s.store.Patients()
	if _, err := patients.GetByUserID(ctx, in.UserID); err == nil {
		return nil, ErrProfileExists.WithMessage("patient profile already exists for this user")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal(err)
	}

	p := &model.Patient{
		UserID:        in.UserID,
		Phone:         strings.TrimSpace(in.Phone),
		InsuranceInfo: in.InsuranceInfo,
	}
	if err := patients.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProfileExists.WithMessage("patient profile already exists for this user")
		}
		return nil, internal(err)
	}
	created, err := patients.GetByID(ctx, p.ID)
	if err != nil {
		return nil, internal(err)
	}
	return created, nil
}

func (s *ProfileService) ListPatients(ctx context.Context, caller policy.Caller, opts repository.ListOptions) ([]model.Patient, int64, error) {
	if err := policy.Require(caller, policy.OpPatientsList); err != nil {
		return nil, 0, err
	}
	patients, total, err := s.store.Patients().List(ctx, opts)
	if err != nil {
		return nil, 0, internal(err)
	}
	return patients, total, nil
}

func (s *ProfileService) GetPatient(ctx context.Context, caller policy.Caller, id uint) (*model.Patient, error) {
	p, err := s.store.Patients().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPatientNotFound)
	}
	if err := policy.Require(caller, policy.OpPatientsRead, p.UserID); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePatientInput changes the profile. Name and Email are written to the owning user;
// Name is split on its first space into first and last name.
type UpdatePatientInput struct {
	Name          *string
	Email         *string
	Phone         *string
	InsuranceInfo *string
}

func (s *ProfileService) UpdatePatient(ctx context.Context, caller policy.Caller, id uint, in UpdatePatientInput) (*model.Patient, error) {
	var updated *model.Patient
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := tx.Patients().GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrPatientNotFound)
		}
		if err := policy.Require(caller, policy.OpPatientsUpdate, p.UserID); err != nil {
			return err
		}

		if in.Name != nil || in.Email != nil {
			user := p.User
			if in.Name != nil {
				user.FirstName, user.LastName = util.SplitFullName(*in.Name)
			}
			if in.Email != nil {
				email := normalizeEmail(*in.Email)
				taken, err := tx.Users().EmailTaken(ctx, email, user.ID)
				if err != nil {
					return internal(err)
				}
				if taken {
					return ErrEmailTaken
				}
				user.Email = email
			}
			if err := tx.Users().Update(ctx, &user); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return ErrEmailTaken
				}
				return internal(err)
			}
		}
		if in.Phone != nil {
			p.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.InsuranceInfo != nil {
			p.InsuranceInfo = in.InsuranceInfo
		}
		if err := tx.Patients().Update(ctx, p); err != nil {
			return internal(err)
		}

		updated, err = tx.Patients().GetByID(ctx, p.ID)
		return internal(err)
	})
	if err != nil {
		return nil, err
	}
	util.UserCacheInvalidate(updated.UserID)
	return updated, nil
}

// DeletePatient removes a profile that no appointment references.
func (s *ProfileService) DeletePatient(ctx context.Context, caller policy.Caller, id uint) error {
	if err := policy.Require(caller, policy.OpPatientsDelete); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Patients().GetByID(ctx, id); err != nil {
			return notFound(err, ErrPatientNotFound)
		}
		n, err := tx.Appointments().CountByPatient(ctx, id)
		if err != nil {
			return internal(err)
		}
		if n > 0 {
			return ErrProfileInUse
		}
		return notFound(tx.Patients().Delete(ctx, id), ErrPatientNotFound)
	})
}

// --- doctors ---

type CreateDoctorInput struct {
	// UserID defaults to the caller.
	UserID         uint
	Specialization string
	Contact        string
	Experience     int
	Fee            decimal.Decimal
}

func validateDoctorFields(specialization string, experience int, fee decimal.Decimal) error {
	if strings.TrimSpace(specialization) == "" {
		return ErrInvalidProfile.WithMessage("specialization is required")
	}
	if experience < 0 {
		return ErrInvalidProfile.WithMessage("experience must be zero or more years")
	}
	if !model.ValidFee(fee) {
		return ErrInvalidProfile.WithMessage("fee must be a non-negative amount with at most two decimals")
	}
	return nil
}

func (s *ProfileService) CreateDoctor(ctx context.Context, caller policy.Caller, in CreateDoctorInput) (*model.Doctor, error) {
	if in.UserID == 0 {
		in.UserID = caller.ID
	}
	if err := policy.Require(caller, policy.OpDoctorsCreate, in.UserID); err != nil {
		return nil, err
	}
	if err := validateDoctorFields(in.Specialization, in.Experience, in.Fee); err != nil {
		return nil, err
	}
	if _, err := requireUserWithRole(ctx, s.store, in.UserID, model.RoleDoctor); err != nil {
		return nil, err
	}

	d := &model.Doctor{
		UserID:         in.UserID,
		Specialization: strings.TrimSpace(in.Specialization),
		Contact:        strings.TrimSpace(in.Contact),
		Experience:     in.Experience,
		Fee:            in.Fee.Round(2),
	}
	doctors := s.store.Doctors()
	if err := doctors.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProfileExists.WithMessage("doctor profile already exists for this specialization")
		}
		return nil, internal(err)
	}
	created, err := doctors.GetByID(ctx, d.ID)
	if err != nil {
		return nil, internal(err)
	}
	return created, nil
}

func (s *ProfileService) ListDoctors(ctx context.Context, caller policy.Caller, filter repository.DoctorFilter) ([]model.Doctor, int64, error) {
	if err := policy.Require(caller, policy.OpDoctorsList); err != nil {
		return nil, 0, err
	}
	doctors, total, err := s.store.Doctors().List(ctx, filter)
	if err != nil {
		return nil, 0, internal(err)
	}
	return doctors, total, nil
}

func (s *ProfileService) GetDoctor(ctx context.Context, caller policy.Caller, id uint) (*model.Doctor, error) {
	d, err := s.store.Doctors().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrDoctorNotFound)
	}
	if err := policy.Require(caller, policy.OpDoctorsRead, d.UserID); err != nil {
		return nil, err
	}
	return d, nil
}

type UpdateDoctorInput struct {
	Specialization *string
	Contact        *string
	Experience     *int
	Fee            *decimal.Decimal
}

func (s *ProfileService) UpdateDoctor(ctx context.Context, caller policy.Caller, id uint, in UpdateDoctorInput) (*model.Doctor, error) {
	doctors := s.store.Doctors()
	d, err := doctors.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrDoctorNotFound)
	}
	if err := policy.Require(caller, policy.OpDoctorsUpdate, d.UserID); err != nil {
		return nil, err
	}

	if in.Specialization != nil {
		d.Specialization = strings.TrimSpace(*in.Specialization)
	}
	if in.Contact != nil {
		d.Contact = strings.TrimSpace(*in.Contact)
	}
	if in.Experience != nil {
		d.Experience = *in.Experience
	}
	if in.Fee != nil {
		d.Fee = *in.Fee
	}
	if err := validateDoctorFields(d.Specialization, d.Experience, d.Fee); err != nil {
		return nil, err
	}
	if err := doctors.Update(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProfileExists.WithMessage("doctor profile already exists for this specialization")
		}
		return nil, internal(err)
	}
	return d, nil
}

// DeleteDoctor removes a profile that no appointment references.
func (s *ProfileService) DeleteDoctor(ctx context.Context, caller policy.Caller, id uint) error {
	if err := policy.Require(caller, policy.OpDoctorsDelete); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Doctors().LockByID(ctx, id); err != nil {
			return notFound(err, ErrDoctorNotFound)
		}
		n, err := tx.Appointments().CountByDoctor(ctx, id)
		if err != nil {
			return internal(err)
		}
		if n > 0 {
			return ErrProfileInUse
		}
		return notFound(tx.Doctors().Delete(ctx, id), ErrDoctorNotFound)
	})
}
