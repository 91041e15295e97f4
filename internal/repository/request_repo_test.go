package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psymatch/internal/database"
	"psymatch/internal/domain"
)

// newRequestRepo uses a named shared-cache DB so that concurrent claimers
// really run on separate connections against the same data.
func newRequestRepo(t *testing.T) *RequestRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewRequestRepository(db)
}

func seedPendingRequest(t *testing.T, repo *RequestRepository) *domain.ConsultationRequest {
	t.Helper()
	req := &domain.ConsultationRequest{
		Kind:   domain.RequestQuick,
		Name:   "Aigerim",
		Topic:  "anxiety",
		Status: domain.RequestPending,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	return req
}

func TestClaim_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	repo := newRequestRepo(t)
	ctx := context.Background()
	req := seedPendingRequest(t, repo)

	const claimers = 2
	wins := make(chan int64, claimers)
	var wg sync.WaitGroup
	for profileID := int64(1); profileID <= claimers; profileID++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			won, err := repo.Claim(ctx, req.ID, id)
			assert.NoError(t, err)
			if won {
				wins <- id
			}
		}(profileID)
	}
	wg.Wait()
	close(wins)

	var winners []int64
	for id := range wins {
		winners = append(winners, id)
	}
	require.Len(t, winners, 1)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TakenByID)
	assert.Equal(t, winners[0], *got.TakenByID)
	assert.Equal(t, domain.RequestContacted, got.Status)
	assert.NotNil(t, got.TakenAt)
}

func TestClaim_AlreadyTakenLoses(t *testing.T) {
	repo := newRequestRepo(t)
	ctx := context.Background()
	req := seedPendingRequest(t, repo)

	won, err := repo.Claim(ctx, req.ID, 7)
	require.NoError(t, err)
	require.True(t, won)

	won, err = repo.Claim(ctx, req.ID, 8)
	require.NoError(t, err)
	assert.False(t, won)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), *got.TakenByID)
}
