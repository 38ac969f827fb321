package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"droseonline/internal/model"
	"droseonline/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAlreadyPosted = errors.New("already posted")

// fakeUnpostedRepo embeds the interface so only ListUnposted needs a body;
// the cron never calls anything else on the repository.
type fakeUnpostedRepo struct {
	repository.AttendanceRepository
	sessions []model.Attendance
	gotLimit int
}

func (f *fakeUnpostedRepo) ListUnposted(_ context.Context, _ time.Time, limit int) ([]model.Attendance, error) {
	f.gotLimit = limit
	if limit > 0 && len(f.sessions) > limit {
		return f.sessions[:limit], nil
	}
	return f.sessions, nil
}

type fakePoster struct {
	posted   []uuid.UUID
	failWith map[uuid.UUID]error
}

func (f *fakePoster) PostSessionRevenue(_ context.Context, id uuid.UUID) error {
	if err, ok := f.failWith[id]; ok {
		return err
	}
	f.posted = append(f.posted, id)
	return nil
}

func TestProcessPostings_PostsEverySession(t *testing.T) {
	repo := &fakeUnpostedRepo{sessions: []model.Attendance{
		{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()},
	}}
	poster := &fakePoster{}

	processPostings(context.Background(), PostingCronConfig{
		AttendanceRepo: repo,
		Poster:         poster,
		GracePeriod:    30 * time.Minute,
		AlreadyPosted:  errAlreadyPosted,
	})

	require.Len(t, poster.posted, 3)
	assert.Equal(t, postingBatchSize, repo.gotLimit)
}

func TestProcessPostings_ToleratesLostRaces(t *testing.T) {
	racedID := uuid.New()
	brokenID := uuid.New()
	okID := uuid.New()
	repo := &fakeUnpostedRepo{sessions: []model.Attendance{
		{ID: racedID}, {ID: brokenID}, {ID: okID},
	}}
	poster := &fakePoster{failWith: map[uuid.UUID]error{
		racedID:  errAlreadyPosted,
		brokenID: errors.New("boom"),
	}}

	// Neither a lost race nor a hard failure stops the rest of the batch.
	processPostings(context.Background(), PostingCronConfig{
		AttendanceRepo: repo,
		Poster:         poster,
		AlreadyPosted:  errAlreadyPosted,
	})

	require.Len(t, poster.posted, 1)
	assert.Equal(t, okID, poster.posted[0])
}
