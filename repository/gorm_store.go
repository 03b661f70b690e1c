package repository

import (
	"context"
	"time"

	"github.com/ariebrainware/medibook/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on a gorm connection or transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle for callers that need raw access, such as health checks.
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Users() UserRepository { return &userRepo{db: s.db} }
func (s *GormStore) Patients() PatientRepository { return &patientRepo{db: s.db} }
func (s *GormStore) Doctors() DoctorRepository { return &doctorRepo{db: s.db} }
func (s *GormStore) Appointments() AppointmentRepository { return &appointmentRepo{db: s.db} }
func (s *GormStore) Records() MedicalRecordRepository { return &recordRepo{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// lockingRead adds FOR <strength> to q. SQLite has no row locks; it serializes writers on
// the single connection instead.
func lockingRead(q *gorm.DB, strength string) *gorm.DB {
	if q.Dialector.Name() == "sqlite" {
		return q
	}
	return q.Clauses(clause.Locking{Strength: strength})
}

func paginate(q *gorm.DB, opts ListOptions) *gorm.DB {
	opts = opts.Normalize()
	return q.Limit(opts.Limit).Offset(opts.Offset)
}

// --- users ---

type userRepo struct{ db *gorm.DB }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		Order("id").
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) taken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *userRepo) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.taken(ctx, "email", email, excludeID)
}

func (r *userRepo) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	return r.taken(ctx, "username", username, excludeID)
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

func (r *userRepo) List(ctx context.Context, opts ListOptions) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var users []model.User
	if err := paginate(r.db.WithContext(ctx).Order("id"), opts).Find(&users).Error; err != nil {
		return nil, 0, translate(err)
	}
	return users, total, nil
}

// --- patients ---

type patientRepo struct{ db *gorm.DB }

func (r *patientRepo) Create(ctx context.Context, p *model.Patient) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (r *patientRepo) GetByID(ctx context.Context, id uint) (*model.Patient, error) {
	var p model.Patient
	if err := r.db.WithContext(ctx).Preload("User").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *patientRepo) GetByUserID(ctx context.Context, userID uint) (*model.Patient, error) {
	var p model.Patient
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *patientRepo) Update(ctx context.Context, p *model.Patient) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

func (r *patientRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Patient{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepo) List(ctx context.Context, opts ListOptions) ([]model.Patient, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Patient{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var patients []model.Patient
	q := r.db.WithContext(ctx).Preload("User").Order("id")
	if err := paginate(q, opts).Find(&patients).Error; err != nil {
		return nil, 0, translate(err)
	}
	return patients, total, nil
}

// --- doctors ---

type doctorRepo struct{ db *gorm.DB }

func (r *doctorRepo) Create(ctx context.Context, d *model.Doctor) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error)
}

func (r *doctorRepo) GetByID(ctx context.Context, id uint) (*model.Doctor, error) {
	var d model.Doctor
	if err := r.db.WithContext(ctx).Preload("User").First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *doctorRepo) LockByID(ctx context.Context, id uint) (*model.Doctor, error) {
	var d model.Doctor
	if err := lockingRead(r.db.WithContext(ctx), "UPDATE").First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *doctorRepo) Update(ctx context.Context, d *model.Doctor) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(d).Error)
}

func (r *doctorRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Doctor{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *doctorRepo) List(ctx context.Context, filter DoctorFilter) ([]model.Doctor, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Doctor{})
		if filter.Specialization != "" {
			q = q.Where("LOWER(specialization) = LOWER(?)", filter.Specialization)
		}
		if filter.UserID != 0 {
			q = q.Where("user_id = ?", filter.UserID)
		}
		return q
	}
	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var doctors []model.Doctor
	if err := paginate(scoped().Preload("User").Order("id"), filter.ListOptions).Find(&doctors).Error; err != nil {
		return nil, 0, translate(err)
	}
	return doctors, total, nil
}

// --- appointments ---

type appointmentRepo struct{ db *gorm.DB }

func (r *appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

func (r *appointmentRepo) GetByID(ctx context.Context, id uint) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.db.WithContext(ctx).Preload("Patient").Preload("Doctor").First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *appointmentRepo) HasOverlap(ctx context.Context, doctorID uint, start, end time.Time, excludeID uint) (bool, error) {
	var ids []uint
	if err := overlapQuery(r.db.WithContext(ctx), doctorID, start, end, excludeID).Pluck("id", &ids).Error; err != nil {
		return false, translate(err)
	}
	return len(ids) > 0, nil
}

// overlapQuery selects at most one blocking appointment intersecting [start, end). It is a
// locking read so that, under REPEATABLE READ, it sees rows committed after the
// transaction's snapshot.
func overlapQuery(db *gorm.DB, doctorID uint, start, end time.Time, excludeID uint) *gorm.DB {
	q := db.Model(&model.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("status IN ?", model.BlockingStatuses).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC())
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return lockingRead(q.Limit(1), "SHARE")
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, id uint, status model.AppointmentStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Appointment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepo) List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Appointment{})
		if filter.VisibleToUserID != 0 {
			q = q.Where(
				"patient_id IN (?) OR doctor_id IN (?)",
				r.db.Model(&model.Patient{}).Select("id").Where("user_id = ?", filter.VisibleToUserID),
				r.db.Model(&model.Doctor{}).Select("id").Where("user_id = ?", filter.VisibleToUserID),
			)
		}
		if filter.DoctorID != 0 {
			q = q.Where("doctor_id = ?", filter.DoctorID)
		}
		if filter.PatientID != 0 {
			q = q.Where("patient_id = ?", filter.PatientID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.To != nil {
			q = q.Where("start_time < ?", filter.To.UTC())
		}
		if filter.From != nil {
			q = q.Where("end_time > ?", filter.From.UTC())
		}
		return q
	}
	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var appts []model.Appointment
	if err := paginate(scoped().Order("start_time, id"), filter.ListOptions).Find(&appts).Error; err != nil {
		return nil, 0, translate(err)
	}
	return appts, total, nil
}

func (r *appointmentRepo) count(ctx context.Context, column string, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Appointment{}).Where(column+" = ?", id).Count(&n).Error
	return n, translate(err)
}

func (r *appointmentRepo) CountByPatient(ctx context.Context, patientID uint) (int64, error) {
	return r.count(ctx, "patient_id", patientID)
}

func (r *appointmentRepo) CountByDoctor(ctx context.Context, doctorID uint) (int64, error) {
	return r.count(ctx, "doctor_id", doctorID)
}

// --- medical records ---

type recordRepo struct{ db *gorm.DB }

func (r *recordRepo) Create(ctx context.Context, rec *model.MedicalRecord) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error)
}

func (r *recordRepo) GetByID(ctx context.Context, id uint) (*model.MedicalRecord, error) {
	var rec model.MedicalRecord
	if err := r.db.WithContext(ctx).Preload("Patient").Preload("Doctor").First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *recordRepo) ExistsForAppointment(ctx context.Context, appointmentID uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.MedicalRecord{}).Where("appointment_id = ?", appointmentID).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (r *recordRepo) List(ctx context.Context, filter RecordFilter) ([]model.MedicalRecord, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.MedicalRecord{})
		if filter.VisibleToUserID != 0 {
			q = q.Where(
				"patient_id IN (?) OR doctor_id IN (?)",
				r.db.Model(&model.Patient{}).Select("id").Where("user_id = ?", filter.VisibleToUserID),
				r.db.Model(&model.Doctor{}).Select("id").Where("user_id = ?", filter.VisibleToUserID),
			)
		}
		if filter.PatientID != 0 {
			q = q.Where("patient_id = ?", filter.PatientID)
		}
		if filter.DoctorID != 0 {
			q = q.Where("doctor_id = ?", filter.DoctorID)
		}
		if filter.AppointmentID != 0 {
			q = q.Where("appointment_id = ?", filter.AppointmentID)
		}
		return q
	}
	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var records []model.MedicalRecord
	if err := paginate(scoped().Order("created_at DESC, id DESC"), filter.ListOptions).Find(&records).Error; err != nil {
		return nil, 0, translate(err)
	}
	return records, total, nil
}
