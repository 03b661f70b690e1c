package model

import (
	"fmt"

	"gorm.io/gorm"
)

// OverlapConstraintName names the PostgreSQL exclusion constraint guarding doctor schedules.
const OverlapConstraintName = "appointments_no_overlap"

// Models returns every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Patient{},
		&Doctor{},
		&Appointment{},
		&MedicalRecord{},
		&SecurityLog{},
	}
}

// Migrate creates or updates the schema. On PostgreSQL it also installs an exclusion
// constraint that rejects overlapping active appointments of one doctor.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		if err := ensureOverlapConstraint(db); err != nil {
			return fmt.Errorf("overlap constraint: %w", err)
		}
	}
	return nil
}

func ensureOverlapConstraint(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return err
	}
	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM pg_constraint WHERE conname = ?", OverlapConstraintName).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Exec(fmt.Sprintf(`ALTER TABLE appointments ADD CONSTRAINT %s
		EXCLUDE USING gist (doctor_id WITH =, tstzrange(start_time, end_time, '[)') WITH &&)
		WHERE (status <> '%s')`, OverlapConstraintName, StatusCancelled)).Error
}
