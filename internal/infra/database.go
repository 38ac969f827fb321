package infra

import (
	"fmt"

	"droseonline/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate for
// all tables, then applies the idempotent SQL patches GORM cannot express
// (partial indexes in particular).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies AutoMigrate plus the schema patches. Also used by
// integration tests against a scratch database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Subject{},
		&model.AcademicYear{},
		&model.Course{},
		&model.Group{},
		&model.ScheduleSlot{},
		&model.GroupStudent{},
		&model.Attendance{},
		&model.AttendanceRecord{},
		&model.FinancialTransaction{},
		&model.StudentPayment{},
		&model.Counter{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot express. Each
// statement guards itself with an existence check, so re-running on an
// already-patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One ACTIVE enrollment per (group, student). Historical rows
		// (dropped/completed/transferred) may repeat the pair, so the index
		// has to be partial.
		{"unique active enrollment", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_active_enrollment') THEN
    CREATE UNIQUE INDEX idx_active_enrollment
        ON group_students (group_id, student_id)
        WHERE status = 'active';
  END IF;
END $$`},
		// Partial index backing the unposted-sessions scan (audit + posting cron).
		{"unposted sessions scan", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_attendance_unposted') THEN
    CREATE INDEX idx_attendance_unposted
        ON attendances (updated_at)
        WHERE is_completed = true AND revenue_posted_at IS NULL;
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
