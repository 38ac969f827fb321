package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"droseonline/internal/dto"
	"droseonline/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// scheduleCacheTTL is short on purpose: the today view tolerates staleness in
// the Marked flag for at most this long.
const scheduleCacheTTL = 60 * time.Second

type ScheduleService interface {
	// TodaySessions lists the teacher's slots scheduled for today, flagging
	// the ones whose attendance is already created.
	TodaySessions(ctx context.Context, teacherID uuid.UUID) ([]dto.TodaySessionResponse, error)
	// InvalidateTeacher drops the cached today view after an attendance write.
	InvalidateTeacher(ctx context.Context, teacherID uuid.UUID)
}

type scheduleService struct {
	groupRepo repository.GroupRepository
	attRepo   repository.AttendanceRepository
	rdb       *redis.Client // nil disables caching
}

func NewScheduleService(groupRepo repository.GroupRepository, attRepo repository.AttendanceRepository, rdb *redis.Client) ScheduleService {
	return &scheduleService{groupRepo: groupRepo, attRepo: attRepo, rdb: rdb}
}

func scheduleCacheKey(teacherID uuid.UUID, day string) string {
	return "schedule:today:" + teacherID.String() + ":" + day
}

func (s *scheduleService) TodaySessions(ctx context.Context, teacherID uuid.UUID) ([]dto.TodaySessionResponse, error) {
	now := time.Now()
	today := strings.ToLower(now.Weekday().String())
	dateKey := now.Format("2006-01-02")

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, scheduleCacheKey(teacherID, dateKey)).Result(); err == nil {
			var out []dto.TodaySessionResponse
			if json.Unmarshal([]byte(cached), &out) == nil {
				return out, nil
			}
		}
	}

	groups, err := s.groupRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	out := []dto.TodaySessionResponse{}
	for i := range groups {
		g := &groups[i]
		for _, slot := range g.Schedule {
			if slot.Day != today {
				continue
			}
			marked, err := s.attRepo.ExistsForGroupAndDate(ctx, g.ID, now)
			if err != nil {
				return nil, err
			}
			out = append(out, dto.TodaySessionResponse{
				GroupID:    g.ID.String(),
				GroupName:  g.Name,
				GroupCode:  g.Code,
				GradeLevel: g.GradeLevel,
				StartTime:  slot.StartTime,
				EndTime:    slot.EndTime,
				Room:       slot.Room,
				Marked:     marked,
			})
		}
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, scheduleCacheKey(teacherID, dateKey), payload, scheduleCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("schedule cache write failed")
			}
		}
	}
	return out, nil
}

func (s *scheduleService) InvalidateTeacher(ctx context.Context, teacherID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	key := scheduleCacheKey(teacherID, time.Now().Format("2006-01-02"))
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Msg("schedule cache invalidation failed")
	}
}
