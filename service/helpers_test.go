package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/policy"
	"github.com/ariebrainware/medibook/repository"
	"github.com/ariebrainware/medibook/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type env struct {
	store  *repository.GormStore
	tokens *util.TokenIssuer
	svc    *Services

	admin    policy.Caller
	doctor   policy.Caller
	doctor2  policy.Caller
	patient  policy.Caller
	patient2 policy.Caller

	doctorProfile   model.Doctor
	doctor2Profile  model.Doctor
	patientProfile  model.Patient
	patient2Profile model.Patient
}

func newStore(t *testing.T) *repository.GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%d?mode=memory&cache=shared&_busy_timeout=5000", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, model.Migrate(db))
	return repository.NewGormStore(db)
}

func createUser(t *testing.T, store repository.Store, email string, role model.Role) policy.Caller {
	t.Helper()
	hash, err := util.HashPassword("password123")
	require.NoError(t, err)
	u := model.User{Username: email, Email: email, Password: hash, FirstName: "Test", LastName: string(role), Role: role}
	require.NoError(t, store.Users().Create(context.Background(), &u))
	return policy.CallerFromUser(u)
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := newStore(t)
	tokens := util.NewTokenIssuer([]byte("test-secret"), 30*time.Minute)
	e := &env{store: store, tokens: tokens, svc: New(store, tokens)}
	ctx := context.Background()

	e.admin = createUser(t, store, "admin@example.com", model.RoleAdmin)
	e.doctor = createUser(t, store, "doc@example.com", model.RoleDoctor)
	e.doctor2 = createUser(t, store, "doc2@example.com", model.RoleDoctor)
	e.patient = createUser(t, store, "pat@example.com", model.RolePatient)
	e.patient2 = createUser(t, store, "pat2@example.com", model.RolePatient)

	e.doctorProfile = model.Doctor{UserID: e.doctor.ID, Specialization: "Cardiology", Fee: decimal.RequireFromString("100")}
	require.NoError(t, store.Doctors().Create(ctx, &e.doctorProfile))
	e.doctor2Profile = model.Doctor{UserID: e.doctor2.ID, Specialization: "Dermatology"}
	require.NoError(t, store.Doctors().Create(ctx, &e.doctor2Profile))
	e.patientProfile = model.Patient{UserID: e.patient.ID, Phone: "0811"}
	require.NoError(t, store.Patients().Create(ctx, &e.patientProfile))
	e.patient2Profile = model.Patient{UserID: e.patient2.ID, Phone: "0812"}
	require.NoError(t, store.Patients().Create(ctx, &e.patient2Profile))
	return e
}

var day = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return day.Add(time.Duration(minutes) * time.Minute)
}

func (e *env) book(t *testing.T, patient model.Patient, doctor model.Doctor, startMin, endMin int) *model.Appointment {
	t.Helper()
	a, err := e.svc.Scheduling.CreateAppointment(context.Background(), e.admin, CreateAppointmentInput{
		PatientID: patient.ID, DoctorID: doctor.ID, StartTime: at(startMin), EndTime: at(endMin),
	})
	require.NoError(t, err)
	return a
}
