package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psymatch/internal/database"
	"psymatch/internal/domain"
)

func newTestDB(t *testing.T) *ReviewRepository {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewReviewRepository(db)
}

func seedReview(t *testing.T, repo *ReviewRepository, profileID int64, requestID int64, rating int) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.Review{
		RequestID:             &requestID,
		ClientUserID:          1,
		PsychologistProfileID: profileID,
		Rating:                rating,
	})
	require.NoError(t, err)
}

func TestAverageRating_RoundsToOneDecimal(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	for i, rating := range []int{4, 5, 4, 5, 4} {
		seedReview(t, repo, 7, int64(100+i), rating)
	}

	avg, err := repo.AverageRating(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 4.4, avg)
}

func TestAverageRating_NoReviews(t *testing.T) {
	repo := newTestDB(t)

	avg, err := repo.AverageRating(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)
}

func TestCreate_DuplicateRequestReview(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	requestID := int64(20)
	require.NoError(t, repo.Create(ctx, &domain.Review{
		RequestID:             &requestID,
		ClientUserID:          1,
		PsychologistProfileID: 7,
		Rating:                5,
	}))

	err := repo.Create(ctx, &domain.Review{
		RequestID:             &requestID,
		ClientUserID:          1,
		PsychologistProfileID: 7,
		Rating:                3,
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestListByPsychologist_Pagination(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedReview(t, repo, 7, int64(200+i), 5)
	}
	seedReview(t, repo, 8, 300, 1)

	first, err := repo.ListByPsychologist(ctx, 7, 3, 0)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	rest, err := repo.ListByPsychologist(ctx, 7, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}
