package service

// In-memory repository fakes shared by the service tests. The services run
// with a nil *gorm.DB, so runTx degrades to a plain function call and no
// database is needed.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"droseonline/internal/dto"
	"droseonline/internal/model"
	"droseonline/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errStubNotFound = errors.New("not found")

// ── Counter ───────────────────────────────────────────────────────────────────

type stubCounterRepo struct {
	seqs map[string]int64
}

func newStubCounterRepo() *stubCounterRepo {
	return &stubCounterRepo{seqs: make(map[string]int64)}
}

func (r *stubCounterRepo) Next(_ context.Context, _ *gorm.DB, name string) (int64, error) {
	r.seqs[name]++
	return r.seqs[name], nil
}

func (r *stubCounterRepo) NextCode(ctx context.Context, tx *gorm.DB, prefix string) (string, error) {
	seq, err := r.Next(ctx, tx, prefix)
	if err != nil {
		return "", err
	}
	return model.FormatCode(prefix, seq), nil
}

var _ repository.CounterRepository = (*stubCounterRepo)(nil)

// ── Users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, _ *gorm.DB, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errStubNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubUserRepo) FindStudent(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok || u.Role != model.RoleStudent {
		return nil, errStubNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context, role string, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if role != "" && u.Role != role {
			continue
		}
		if !includeInactive && !u.IsActive {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return errStubNotFound
	}
	u.IsActive = active
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Groups ────────────────────────────────────────────────────────────────────

type stubGroupRepo struct {
	groups      map[uuid.UUID]*model.Group
	enrollments map[uuid.UUID]*model.GroupStudent
	users       *stubUserRepo
}

func newStubGroupRepo(users *stubUserRepo) *stubGroupRepo {
	return &stubGroupRepo{
		groups:      make(map[uuid.UUID]*model.Group),
		enrollments: make(map[uuid.UUID]*model.GroupStudent),
		users:       users,
	}
}

func (r *stubGroupRepo) DB() *gorm.DB { return nil }

func (r *stubGroupRepo) Create(_ context.Context, _ *gorm.DB, g *model.Group) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	r.groups[g.ID] = g
	return nil
}

func (r *stubGroupRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, errStubNotFound
	}
	// Rebuild the active-roster preload the real repository performs.
	g.Students = nil
	for _, gs := range r.enrollments {
		if gs.GroupID == id && gs.Status == model.EnrollmentActive {
			e := *gs
			if r.users != nil {
				if u, ok := r.users.users[gs.StudentID]; ok {
					e.Student = u
				}
			}
			g.Students = append(g.Students, e)
		}
	}
	return g, nil
}

func (r *stubGroupRepo) FindBasic(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, errStubNotFound
	}
	return g, nil
}

func (r *stubGroupRepo) List(_ context.Context, onlyActive bool) ([]model.Group, error) {
	var out []model.Group
	for _, g := range r.groups {
		if onlyActive && !g.IsActive {
			continue
		}
		out = append(out, *g)
	}
	return out, nil
}

func (r *stubGroupRepo) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]model.Group, error) {
	var out []model.Group
	for _, g := range r.groups {
		if g.Course != nil && g.Course.TeacherID == teacherID && g.IsActive {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *stubGroupRepo) Update(_ context.Context, _ *gorm.DB, g *model.Group) error {
	if _, ok := r.groups[g.ID]; !ok {
		return errStubNotFound
	}
	r.groups[g.ID] = g
	return nil
}

func (r *stubGroupRepo) ReplaceSchedule(_ context.Context, _ *gorm.DB, groupID uuid.UUID, slots []model.ScheduleSlot) error {
	g, ok := r.groups[groupID]
	if !ok {
		return errStubNotFound
	}
	g.Schedule = slots
	return nil
}

func (r *stubGroupRepo) FindActiveEnrollment(_ context.Context, groupID, studentID uuid.UUID) (*model.GroupStudent, error) {
	for _, gs := range r.enrollments {
		if gs.GroupID == groupID && gs.StudentID == studentID && gs.Status == model.EnrollmentActive {
			return gs, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubGroupRepo) CreateEnrollment(_ context.Context, _ *gorm.DB, gs *model.GroupStudent) error {
	for _, e := range r.enrollments {
		if e.GroupID == gs.GroupID && e.StudentID == gs.StudentID && e.Status == model.EnrollmentActive {
			// Mirrors the partial unique index.
			return fmt.Errorf("duplicate key value violates unique constraint \"idx_active_enrollment\"")
		}
	}
	if gs.ID == uuid.Nil {
		gs.ID = uuid.New()
	}
	r.enrollments[gs.ID] = gs
	return nil
}

func (r *stubGroupRepo) UpdateEnrollment(_ context.Context, _ *gorm.DB, gs *model.GroupStudent) error {
	if _, ok := r.enrollments[gs.ID]; !ok {
		return errStubNotFound
	}
	r.enrollments[gs.ID] = gs
	return nil
}

func (r *stubGroupRepo) CountActiveEnrollments(_ context.Context, _ *gorm.DB, groupID uuid.UUID) (int64, error) {
	var n int64
	for _, gs := range r.enrollments {
		if gs.GroupID == groupID && gs.Status == model.EnrollmentActive {
			n++
		}
	}
	return n, nil
}

func (r *stubGroupRepo) SetEnrollmentCount(_ context.Context, _ *gorm.DB, groupID uuid.UUID, count int64) error {
	g, ok := r.groups[groupID]
	if !ok {
		return errStubNotFound
	}
	g.CurrentEnrollment = int(count)
	return nil
}

func (r *stubGroupRepo) ListStudentGroups(_ context.Context, studentID uuid.UUID) ([]model.Group, error) {
	var out []model.Group
	for _, gs := range r.enrollments {
		if gs.StudentID == studentID && gs.Status == model.EnrollmentActive {
			if g, ok := r.groups[gs.GroupID]; ok {
				out = append(out, *g)
			}
		}
	}
	return out, nil
}

func (r *stubGroupRepo) IncrementTotals(_ context.Context, _ *gorm.DB, groupID uuid.UUID, revenue decimal.Decimal, sessions int) error {
	g, ok := r.groups[groupID]
	if !ok {
		return errStubNotFound
	}
	g.TotalRevenue = g.TotalRevenue.Add(revenue)
	g.TotalSessionsHeld += sessions
	return nil
}

func (r *stubGroupRepo) SetTotals(_ context.Context, _ *gorm.DB, groupID uuid.UUID, revenue decimal.Decimal, sessions int) error {
	g, ok := r.groups[groupID]
	if !ok {
		return errStubNotFound
	}
	g.TotalRevenue = revenue
	g.TotalSessionsHeld = sessions
	return nil
}

var _ repository.GroupRepository = (*stubGroupRepo)(nil)

// ── Courses ───────────────────────────────────────────────────────────────────

type stubCourseRepo struct {
	courses map[uuid.UUID]*model.Course
}

func newStubCourseRepo() *stubCourseRepo {
	return &stubCourseRepo{courses: make(map[uuid.UUID]*model.Course)}
}

func (r *stubCourseRepo) Create(_ context.Context, _ *gorm.DB, c *model.Course) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.courses[c.ID] = c
	return nil
}

func (r *stubCourseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, errStubNotFound
	}
	return c, nil
}

func (r *stubCourseRepo) List(_ context.Context, onlyActive bool) ([]model.Course, error) {
	var out []model.Course
	for _, c := range r.courses {
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCourseRepo) Update(_ context.Context, c *model.Course) error {
	r.courses[c.ID] = c
	return nil
}

func (r *stubCourseRepo) IncrementTotals(_ context.Context, _ *gorm.DB, courseID uuid.UUID, revenue decimal.Decimal, sessions int) error {
	c, ok := r.courses[courseID]
	if !ok {
		return errStubNotFound
	}
	c.TotalRevenue = c.TotalRevenue.Add(revenue)
	c.TotalSessionsHeld += sessions
	return nil
}

func (r *stubCourseRepo) SetTotals(_ context.Context, _ *gorm.DB, courseID uuid.UUID, revenue decimal.Decimal, sessions int) error {
	c, ok := r.courses[courseID]
	if !ok {
		return errStubNotFound
	}
	c.TotalRevenue = revenue
	c.TotalSessionsHeld = sessions
	return nil
}

var _ repository.CourseRepository = (*stubCourseRepo)(nil)

// ── Attendance ────────────────────────────────────────────────────────────────

type stubAttendanceRepo struct {
	sessions map[uuid.UUID]*model.Attendance
	groups   *stubGroupRepo
}

func newStubAttendanceRepo(groups *stubGroupRepo) *stubAttendanceRepo {
	return &stubAttendanceRepo{sessions: make(map[uuid.UUID]*model.Attendance), groups: groups}
}

func (r *stubAttendanceRepo) DB() *gorm.DB { return nil }

func (r *stubAttendanceRepo) Create(_ context.Context, _ *gorm.DB, a *model.Attendance) error {
	for _, s := range r.sessions {
		if s.GroupID == a.GroupID && s.SessionDate.Equal(a.SessionDate) {
			return fmt.Errorf("duplicate key value violates unique constraint \"idx_attendance_session\"")
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.sessions[a.ID] = a
	return nil
}

func (r *stubAttendanceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Attendance, error) {
	a, ok := r.sessions[id]
	if !ok {
		return nil, errStubNotFound
	}
	if r.groups != nil {
		if g, ok := r.groups.groups[a.GroupID]; ok {
			a.Group = g
		}
	}
	return a, nil
}

func (r *stubAttendanceRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Attendance, error) {
	return r.FindByID(ctx, id)
}

func (r *stubAttendanceRepo) List(_ context.Context, filter dto.AttendanceFilter) ([]model.Attendance, int64, error) {
	var out []model.Attendance
	for _, a := range r.sessions {
		if filter.GroupID != "" && a.GroupID.String() != filter.GroupID {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *stubAttendanceRepo) ReplaceRecords(_ context.Context, _ *gorm.DB, attendanceID uuid.UUID, records []model.AttendanceRecord) error {
	a, ok := r.sessions[attendanceID]
	if !ok {
		return errStubNotFound
	}
	for i := range records {
		records[i].AttendanceID = attendanceID
	}
	a.Records = records
	return nil
}

func (r *stubAttendanceRepo) Update(_ context.Context, _ *gorm.DB, a *model.Attendance) error {
	stored, ok := r.sessions[a.ID]
	if !ok {
		return errStubNotFound
	}
	records := stored.Records
	*stored = *a
	if a.Records == nil {
		stored.Records = records
	}
	return nil
}

func (r *stubAttendanceRepo) ExistsForGroupAndDate(_ context.Context, groupID uuid.UUID, date time.Time) (bool, error) {
	for _, a := range r.sessions {
		if a.GroupID == groupID && a.SessionDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAttendanceRepo) ListUnposted(_ context.Context, completedBefore time.Time, limit int) ([]model.Attendance, error) {
	var out []model.Attendance
	for _, a := range r.sessions {
		if a.IsCompleted && a.RevenuePostedAt == nil && a.SessionRevenue.GreaterThan(decimal.Zero) {
			out = append(out, *a)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *stubAttendanceRepo) SumPostedByGroup(_ context.Context) ([]repository.GroupRevenueSum, error) {
	agg := make(map[uuid.UUID]*repository.GroupRevenueSum)
	for _, a := range r.sessions {
		if a.RevenuePostedAt == nil {
			continue
		}
		sum, ok := agg[a.GroupID]
		if !ok {
			courseID := uuid.Nil
			if r.groups != nil {
				if g, ok := r.groups.groups[a.GroupID]; ok {
					courseID = g.CourseID
				}
			}
			sum = &repository.GroupRevenueSum{GroupID: a.GroupID, CourseID: courseID, Revenue: decimal.Zero}
			agg[a.GroupID] = sum
		}
		sum.Revenue = sum.Revenue.Add(a.SessionRevenue)
		sum.Sessions++
	}
	out := make([]repository.GroupRevenueSum, 0, len(agg))
	for _, s := range agg {
		out = append(out, *s)
	}
	return out, nil
}

var _ repository.AttendanceRepository = (*stubAttendanceRepo)(nil)

// ── Transactions ──────────────────────────────────────────────────────────────

type stubTransactionRepo struct {
	txs []model.FinancialTransaction
}

func (r *stubTransactionRepo) Create(_ context.Context, _ *gorm.DB, t *model.FinancialTransaction) error {
	if t.RelatedType != nil && t.RelatedID != nil {
		for _, existing := range r.txs {
			if existing.RelatedType != nil && *existing.RelatedType == *t.RelatedType &&
				existing.RelatedID != nil && *existing.RelatedID == *t.RelatedID {
				return fmt.Errorf("duplicate key value violates unique constraint \"idx_tx_related\"")
			}
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.txs = append(r.txs, *t)
	return nil
}

func (r *stubTransactionRepo) FindByRelated(_ context.Context, relatedType string, relatedID uuid.UUID) (*model.FinancialTransaction, error) {
	for i := range r.txs {
		t := &r.txs[i]
		if t.RelatedType != nil && *t.RelatedType == relatedType && t.RelatedID != nil && *t.RelatedID == relatedID {
			return t, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubTransactionRepo) List(_ context.Context, filter dto.TransactionFilter) ([]model.FinancialTransaction, int64, error) {
	var out []model.FinancialTransaction
	for _, t := range r.txs {
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTransactionRepo) Sums(_ context.Context, _, _ string) (decimal.Decimal, decimal.Decimal, error) {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range r.txs {
		switch t.Type {
		case model.TxIncome:
			income = income.Add(t.Amount)
		case model.TxExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense, nil
}

var _ repository.TransactionRepository = (*stubTransactionRepo)(nil)

// ── Payments ──────────────────────────────────────────────────────────────────

type stubPaymentRepo struct {
	payments []model.StudentPayment
}

func (r *stubPaymentRepo) Create(_ context.Context, _ *gorm.DB, p *model.StudentPayment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubPaymentRepo) List(_ context.Context, groupID, studentID *uuid.UUID, _, _ int) ([]model.StudentPayment, int64, error) {
	var out []model.StudentPayment
	for _, p := range r.payments {
		if groupID != nil && p.GroupID != *groupID {
			continue
		}
		if studentID != nil && p.StudentID != *studentID {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

// ── Seed helpers ──────────────────────────────────────────────────────────────

func seedStudent(users *stubUserRepo, name, grade string) *model.User {
	u := &model.User{
		ID:           uuid.New(),
		Code:         fmt.Sprintf("ST-%06d", len(users.users)+1),
		Role:         model.RoleStudent,
		FirstName:    name,
		LastName:     "Test",
		Email:        fmt.Sprintf("%s@example.com", name),
		CurrentGrade: &grade,
		IsActive:     true,
	}
	users.users[u.ID] = u
	return u
}

func seedGroup(groups *stubGroupRepo, courses *stubCourseRepo, grade string, price decimal.Decimal, capacity int) *model.Group {
	course := &model.Course{
		ID:        uuid.New(),
		Code:      "CO-000001",
		Name:      "Math",
		TeacherID: uuid.New(),
		IsActive:  true,
	}
	courses.courses[course.ID] = course

	g := &model.Group{
		ID:              uuid.New(),
		Code:            fmt.Sprintf("GR-%06d", len(groups.groups)+1),
		Name:            "Math " + grade,
		CourseID:        course.ID,
		GradeLevel:      grade,
		PricePerSession: price,
		Capacity:        capacity,
		IsActive:        true,
		Course:          course,
	}
	groups.groups[g.ID] = g
	return g
}

func enroll(groups *stubGroupRepo, g *model.Group, student *model.User) {
	gs := &model.GroupStudent{
		ID:             uuid.New(),
		GroupID:        g.ID,
		StudentID:      student.ID,
		EnrollmentDate: time.Now(),
		Status:         model.EnrollmentActive,
	}
	groups.enrollments[gs.ID] = gs
	g.CurrentEnrollment++
}
