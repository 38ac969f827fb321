package repository

import (
	"context"
	"time"

	"droseonline/internal/dto"
	"droseonline/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRevenueSum is one row of the posted-revenue fold used by the
// reconciliation pass.
type GroupRevenueSum struct {
	GroupID  uuid.UUID
	CourseID uuid.UUID
	Revenue  decimal.Decimal
	Sessions int
}

type AttendanceRepository interface {
	DB() *gorm.DB

	Create(ctx context.Context, tx *gorm.DB, a *model.Attendance) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Attendance, error)
	// FindByIDForUpdate row-locks the attendance inside tx so that two
	// concurrent revenue postings serialize instead of double-incrementing.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Attendance, error)
	List(ctx context.Context, filter dto.AttendanceFilter) ([]model.Attendance, int64, error)
	ReplaceRecords(ctx context.Context, tx *gorm.DB, attendanceID uuid.UUID, records []model.AttendanceRecord) error
	Update(ctx context.Context, tx *gorm.DB, a *model.Attendance) error
	ExistsForGroupAndDate(ctx context.Context, groupID uuid.UUID, date time.Time) (bool, error)

	// ListUnposted returns completed sessions with revenue that was never
	// posted — the drift set the audit pass and the posting cron act on.
	ListUnposted(ctx context.Context, completedBefore time.Time, limit int) ([]model.Attendance, error)
	// SumPostedByGroup folds posted sessions into per-group totals.
	SumPostedByGroup(ctx context.Context) ([]GroupRevenueSum, error)
}

type attendanceRepo struct{ db *gorm.DB }

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository { return &attendanceRepo{db: db} }

func (r *attendanceRepo) DB() *gorm.DB { return r.db }

func (r *attendanceRepo) Create(ctx context.Context, tx *gorm.DB, a *model.Attendance) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(a).Error
}

func (r *attendanceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Records.Student").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *attendanceRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Attendance, error) {
	var a model.Attendance
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *attendanceRepo) List(ctx context.Context, filter dto.AttendanceFilter) ([]model.Attendance, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Attendance{})
	if filter.GroupID != "" {
		q = q.Where("group_id = ?", filter.GroupID)
	}
	if filter.From != "" {
		q = q.Where("session_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("session_date <= ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var sessions []model.Attendance
	err := q.Preload("Group").
		Order("session_date DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sessions).Error
	return sessions, total, err
}

func (r *attendanceRepo) ReplaceRecords(ctx context.Context, tx *gorm.DB, attendanceID uuid.UUID, records []model.AttendanceRecord) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(ctx).Where("attendance_id = ?", attendanceID).Delete(&model.AttendanceRecord{}).Error; err != nil {
		return err
	}
	for i := range records {
		records[i].AttendanceID = attendanceID
	}
	if len(records) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&records).Error
}

func (r *attendanceRepo) Update(ctx context.Context, tx *gorm.DB, a *model.Attendance) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Omit("Records", "Group").Save(a).Error
}

func (r *attendanceRepo) ExistsForGroupAndDate(ctx context.Context, groupID uuid.UUID, date time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Attendance{}).
		Where("group_id = ? AND session_date = ?", groupID, date.Format("2006-01-02")).
		Count(&n).Error
	return n > 0, err
}

func (r *attendanceRepo) ListUnposted(ctx context.Context, completedBefore time.Time, limit int) ([]model.Attendance, error) {
	var sessions []model.Attendance
	q := r.db.WithContext(ctx).
		Where("is_completed = true AND revenue_posted_at IS NULL AND session_revenue > 0").
		Where("updated_at <= ?", completedBefore).
		Order("session_date")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&sessions).Error
	return sessions, err
}

func (r *attendanceRepo) SumPostedByGroup(ctx context.Context) ([]GroupRevenueSum, error) {
	var sums []GroupRevenueSum
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.group_id, g.course_id,
		       COALESCE(SUM(a.session_revenue), 0) AS revenue,
		       COUNT(*)                            AS sessions
		FROM attendances a
		JOIN groups g ON g.id = a.group_id
		WHERE a.revenue_posted_at IS NOT NULL
		GROUP BY a.group_id, g.course_id
	`).Scan(&sums).Error
	return sums, err
}
