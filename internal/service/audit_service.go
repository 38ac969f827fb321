package service

import (
	"context"
	"errors"
	"time"

	"droseonline/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AuditFinding is one consistency problem detected across attendance sessions,
// the ledger, and the aggregate counters.
type AuditFinding struct {
	Kind         string          `json:"kind"` // "unposted_session" | "group_totals_drift" | "course_totals_drift"
	AttendanceID string          `json:"attendanceId,omitempty"`
	GroupID      string          `json:"groupId,omitempty"`
	CourseID     string          `json:"courseId,omitempty"`
	Expected     decimal.Decimal `json:"expected"`
	Actual       decimal.Decimal `json:"actual"`
	Detail       string          `json:"detail"`
}

// AuditReport is the output of one detection pass.
type AuditReport struct {
	RanAt    time.Time      `json:"ranAt"`
	Findings []AuditFinding `json:"findings"`
	Repaired int            `json:"repaired"`
}

const (
	FindingUnpostedSession   = "unposted_session"
	FindingGroupTotalsDrift  = "group_totals_drift"
	FindingCourseTotalsDrift = "course_totals_drift"
)

type AuditService interface {
	// Detect reports drift without writing anything.
	Detect(ctx context.Context) (*AuditReport, error)
	// Repair posts every unposted completed session through the normal posting
	// path and then reconciles the aggregate counters. Safe to run repeatedly.
	Repair(ctx context.Context) (*AuditReport, error)
}

type auditService struct {
	repo       repository.AttendanceRepository
	groupRepo  repository.GroupRepository
	courseRepo repository.CourseRepository
	attendance AttendanceService
}

func NewAuditService(
	repo repository.AttendanceRepository,
	groupRepo repository.GroupRepository,
	courseRepo repository.CourseRepository,
	attendance AttendanceService,
) AuditService {
	return &auditService{repo: repo, groupRepo: groupRepo, courseRepo: courseRepo, attendance: attendance}
}

func (s *auditService) Detect(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{RanAt: time.Now(), Findings: []AuditFinding{}}

	// Completed sessions whose revenue never reached the ledger. Zero-revenue
	// sessions are excluded by the query: nothing to post, nothing to repair.
	unposted, err := s.repo.ListUnposted(ctx, time.Now(), 0)
	if err != nil {
		return nil, err
	}
	for i := range unposted {
		report.Findings = append(report.Findings, AuditFinding{
			Kind:         FindingUnpostedSession,
			AttendanceID: unposted[i].ID.String(),
			GroupID:      unposted[i].GroupID.String(),
			Expected:     unposted[i].SessionRevenue,
			Actual:       decimal.Zero,
			Detail:       "completed session has revenue but no ledger entry",
		})
	}

	groupDrift, courseDrift, err := s.totalsDrift(ctx)
	if err != nil {
		return nil, err
	}
	report.Findings = append(report.Findings, groupDrift...)
	report.Findings = append(report.Findings, courseDrift...)
	return report, nil
}

func (s *auditService) Repair(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{RanAt: time.Now(), Findings: []AuditFinding{}}

	unposted, err := s.repo.ListUnposted(ctx, time.Now(), 0)
	if err != nil {
		return nil, err
	}
	for i := range unposted {
		err := s.attendance.PostSessionRevenue(ctx, unposted[i].ID)
		switch {
		case err == nil:
			report.Repaired++
		case errors.Is(err, ErrRevenueAlreadyPosted):
			// A concurrent posting won the race. Fine either way.
		default:
			report.Findings = append(report.Findings, AuditFinding{
				Kind:         FindingUnpostedSession,
				AttendanceID: unposted[i].ID.String(),
				GroupID:      unposted[i].GroupID.String(),
				Expected:     unposted[i].SessionRevenue,
				Actual:       decimal.Zero,
				Detail:       "posting failed: " + err.Error(),
			})
		}
	}

	// With everything posted, set the counters to the recomputed truth.
	if err := s.reconcileTotals(ctx); err != nil {
		return nil, err
	}

	groupDrift, courseDrift, err := s.totalsDrift(ctx)
	if err != nil {
		return nil, err
	}
	report.Findings = append(report.Findings, groupDrift...)
	report.Findings = append(report.Findings, courseDrift...)
	return report, nil
}

// totalsDrift compares stored aggregate counters against the fold over posted
// sessions.
func (s *auditService) totalsDrift(ctx context.Context) (groups, courses []AuditFinding, err error) {
	sums, err := s.repo.SumPostedByGroup(ctx)
	if err != nil {
		return nil, nil, err
	}
	byCourse := map[string]decimal.Decimal{}

	for _, sum := range sums {
		group, err := s.groupRepo.FindBasic(ctx, nil, sum.GroupID)
		if err != nil {
			continue
		}
		if !group.TotalRevenue.Equal(sum.Revenue) || group.TotalSessionsHeld != sum.Sessions {
			groups = append(groups, AuditFinding{
				Kind:     FindingGroupTotalsDrift,
				GroupID:  sum.GroupID.String(),
				Expected: sum.Revenue,
				Actual:   group.TotalRevenue,
				Detail:   "group counters disagree with posted sessions",
			})
		}
		key := sum.CourseID.String()
		if cur, ok := byCourse[key]; ok {
			byCourse[key] = cur.Add(sum.Revenue)
		} else {
			byCourse[key] = sum.Revenue
		}
	}

	for courseID, expected := range byCourse {
		id, perr := uuid.Parse(courseID)
		if perr != nil {
			continue
		}
		course, err := s.courseRepo.FindByID(ctx, id)
		if err != nil {
			continue
		}
		if !course.TotalRevenue.Equal(expected) {
			courses = append(courses, AuditFinding{
				Kind:     FindingCourseTotalsDrift,
				CourseID: courseID,
				Expected: expected,
				Actual:   course.TotalRevenue,
				Detail:   "course counters disagree with posted sessions",
			})
		}
	}
	return groups, courses, nil
}

// reconcileTotals is set-to-computed, not incremental: it overwrites every
// aggregate with the fold over posted sessions, which makes it idempotent.
func (s *auditService) reconcileTotals(ctx context.Context) error {
	sums, err := s.repo.SumPostedByGroup(ctx)
	if err != nil {
		return err
	}
	type courseAgg struct {
		revenue  decimal.Decimal
		sessions int
	}
	byCourse := map[string]*courseAgg{}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, sum := range sums {
			if err := s.groupRepo.SetTotals(ctx, tx, sum.GroupID, sum.Revenue, sum.Sessions); err != nil {
				return err
			}
			key := sum.CourseID.String()
			agg, ok := byCourse[key]
			if !ok {
				agg = &courseAgg{revenue: decimal.Zero}
				byCourse[key] = agg
			}
			agg.revenue = agg.revenue.Add(sum.Revenue)
			agg.sessions += sum.Sessions
		}
		for key, agg := range byCourse {
			id, perr := uuid.Parse(key)
			if perr != nil {
				continue
			}
			if err := s.courseRepo.SetTotals(ctx, tx, id, agg.revenue, agg.sessions); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}
