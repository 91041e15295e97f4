package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psymatch/internal/database"
	"psymatch/internal/domain"
)

func newSessionRepo(t *testing.T) (*SessionRepository, int64) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	profile := &domain.PsychologistProfile{UserID: 42, IsVerified: true}
	require.NoError(t, db.Create(profile).Error)

	return NewSessionRepository(db), profile.ID
}

func TestCreateScheduled_ConflictingStartTime(t *testing.T) {
	repo, profileID := newSessionRepo(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	first := &domain.Session{
		ClientProfileID:       1,
		PsychologistProfileID: profileID,
		StartTime:             start,
	}
	require.NoError(t, repo.CreateScheduled(ctx, first))
	assert.Equal(t, domain.SessionScheduled, first.Status)

	second := &domain.Session{
		ClientProfileID:       2,
		PsychologistProfileID: profileID,
		StartTime:             start,
	}
	err := repo.CreateScheduled(ctx, second)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreateScheduled_CanceledSessionFreesTheSlot(t *testing.T) {
	repo, profileID := newSessionRepo(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	first := &domain.Session{
		ClientProfileID:       1,
		PsychologistProfileID: profileID,
		StartTime:             start,
	}
	require.NoError(t, repo.CreateScheduled(ctx, first))
	require.NoError(t, repo.Cancel(ctx, first.ID))

	second := &domain.Session{
		ClientProfileID:       2,
		PsychologistProfileID: profileID,
		StartTime:             start,
	}
	require.NoError(t, repo.CreateScheduled(ctx, second))
}

func TestCreateScheduled_DifferentTimesCoexist(t *testing.T) {
	repo, profileID := newSessionRepo(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateScheduled(ctx, &domain.Session{
		ClientProfileID:       1,
		PsychologistProfileID: profileID,
		StartTime:             start,
	}))
	require.NoError(t, repo.CreateScheduled(ctx, &domain.Session{
		ClientProfileID:       1,
		PsychologistProfileID: profileID,
		StartTime:             start.Add(time.Hour),
	}))
}

func TestCreateScheduled_UniqueIndexBacksTheCheck(t *testing.T) {
	repo, profileID := newSessionRepo(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateScheduled(ctx, &domain.Session{
		ClientProfileID:       1,
		PsychologistProfileID: profileID,
		StartTime:             start,
	}))

	// insert bypassing the transactional check: the partial unique index
	// still rejects a second non-canceled session at the same start time
	err := repo.DB().Create(&domain.Session{
		ClientProfileID:       2,
		PsychologistProfileID: profileID,
		StartTime:             start,
		Status:                domain.SessionScheduled,
	}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	canceled := &domain.Session{
		ClientProfileID:       3,
		PsychologistProfileID: profileID,
		StartTime:             start,
		Status:                domain.SessionCanceled,
	}
	require.NoError(t, repo.DB().Create(canceled).Error)
}

func TestCreateScheduled_UnknownPsychologist(t *testing.T) {
	repo, _ := newSessionRepo(t)

	err := repo.CreateScheduled(context.Background(), &domain.Session{
		ClientProfileID:       1,
		PsychologistProfileID: 9999,
		StartTime:             time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)
}
