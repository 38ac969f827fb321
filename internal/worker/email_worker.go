package worker

// email_worker.go
// Sends the session summary mail to the teacher after an attendance session is
// locked or completed.

import (
	"context"
	"encoding/json"
	"fmt"

	"droseonline/internal/infra"
	"droseonline/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionReportPayload is the job envelope sent to QueueEmail.
type SessionReportPayload struct {
	AttendanceID string `json:"attendance_id"`
	TeacherID    string `json:"teacher_id"`
}

// EmailWorker composes and sends session reports. SMTP goes through the
// circuit breaker so a dead relay fast-fails instead of blocking the pool.
type EmailWorker struct {
	attRepo  repository.AttendanceRepository
	userRepo repository.UserRepository
	mailer   *infra.Mailer
	cb       *infra.CircuitBreaker
}

func NewEmailWorker(attRepo repository.AttendanceRepository, userRepo repository.UserRepository, mailer *infra.Mailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{attRepo: attRepo, userRepo: userRepo, mailer: mailer, cb: cb}
}

// Process sends one session report. A returned error means the job should be
// retried; malformed payloads are dropped with a nil return.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload SessionReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}

	attendanceID, err := uuid.Parse(payload.AttendanceID)
	if err != nil {
		log.Error().Str("attendance_id", payload.AttendanceID).Msg("email_worker: bad attendance id")
		return nil
	}
	teacherID, err := uuid.Parse(payload.TeacherID)
	if err != nil {
		log.Error().Str("teacher_id", payload.TeacherID).Msg("email_worker: bad teacher id")
		return nil
	}

	session, err := w.attRepo.FindByID(ctx, attendanceID)
	if err != nil {
		return fmt.Errorf("email_worker: load session: %w", err)
	}
	teacher, err := w.userRepo.FindByID(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("email_worker: load teacher: %w", err)
	}
	if teacher.Email == "" {
		log.Warn().Str("teacher_id", payload.TeacherID).Msg("email_worker: teacher has no email, skipping")
		return nil
	}

	groupName := ""
	if session.Group != nil {
		groupName = session.Group.Name
	}
	subject := fmt.Sprintf("Session report - %s (%s)", groupName, session.SessionDate.Format("2006-01-02"))
	body := fmt.Sprintf(
		"Session %s for group %s on %s.\n\nStudents marked: %d\nPresent (billable): %d\nSession revenue: %s\n",
		session.Code, groupName, session.SessionDate.Format("2006-01-02"),
		len(session.Records), session.PresentCount, session.SessionRevenue.StringFixed(2),
	)

	sendErr := w.cb.Execute(func() error {
		return w.mailer.Send(teacher.Email, subject, body, "")
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("to", teacher.Email).Msg("email_worker: failed to send session report")
		return sendErr
	}

	log.Info().Str("to", teacher.Email).Str("session", session.Code).Msg("email_worker: session report sent")
	return nil
}
