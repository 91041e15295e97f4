package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"psymatch/internal/domain"
)

type fakeReviews struct {
	created   []*domain.Review
	createErr error
}

func (f *fakeReviews) Create(_ context.Context, rv *domain.Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	rv.ID = int64(len(f.created) + 1)
	f.created = append(f.created, rv)
	return nil
}

func (f *fakeReviews) ListByPsychologist(_ context.Context, _ int64, _, _ int) ([]domain.Review, error) {
	return nil, nil
}

func (f *fakeReviews) AverageRating(_ context.Context, _ int64) (float64, error) {
	return 0, nil
}

type fakeSessions struct {
	sessions map[int64]*domain.Session
}

func (f *fakeSessions) GetByID(_ context.Context, id int64) (*domain.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

type fakeRequests struct {
	requests map[int64]*domain.ConsultationRequest
}

func (f *fakeRequests) GetByID(_ context.Context, id int64) (*domain.ConsultationRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

type fakeClients struct {
	byUser map[int64]*domain.ClientProfile
}

func (f *fakeClients) GetByUserID(_ context.Context, userID int64) (*domain.ClientProfile, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func ptr[T any](v T) *T { return &v }

func newFixture() (*Service, *fakeReviews, *fakeSessions, *fakeRequests, *fakeClients) {
	reviews := &fakeReviews{}
	sessions := &fakeSessions{sessions: map[int64]*domain.Session{}}
	requests := &fakeRequests{requests: map[int64]*domain.ConsultationRequest{}}
	clients := &fakeClients{byUser: map[int64]*domain.ClientProfile{}}
	return NewService(reviews, sessions, requests, clients), reviews, sessions, requests, clients
}

func TestCreate_ForCompletedSession(t *testing.T) {
	svc, reviews, sessions, _, clients := newFixture()

	clients.byUser[42] = &domain.ClientProfile{ID: 3, UserID: 42}
	sessions.sessions[10] = &domain.Session{
		ID:                    10,
		ClientProfileID:       3,
		PsychologistProfileID: 7,
		Status:                domain.SessionCompleted,
	}

	rv, err := svc.Create(context.Background(), 42, CreateReviewRequest{
		SessionID: ptr(int64(10)),
		Rating:    5,
		Text:      "very helpful",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), rv.PsychologistProfileID)
	assert.Equal(t, int64(42), rv.ClientUserID)
	require.NotNil(t, rv.SessionID)
	assert.Len(t, reviews.created, 1)
}

func TestCreate_SessionNotCompleted(t *testing.T) {
	svc, _, sessions, _, clients := newFixture()

	clients.byUser[42] = &domain.ClientProfile{ID: 3, UserID: 42}
	sessions.sessions[10] = &domain.Session{
		ID:              10,
		ClientProfileID: 3,
		Status:          domain.SessionScheduled,
	}

	_, err := svc.Create(context.Background(), 42, CreateReviewRequest{SessionID: ptr(int64(10)), Rating: 4})
	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestCreate_SomeoneElsesSession(t *testing.T) {
	svc, _, sessions, _, clients := newFixture()

	clients.byUser[42] = &domain.ClientProfile{ID: 3, UserID: 42}
	sessions.sessions[10] = &domain.Session{
		ID:              10,
		ClientProfileID: 99,
		Status:          domain.SessionCompleted,
	}

	_, err := svc.Create(context.Background(), 42, CreateReviewRequest{SessionID: ptr(int64(10)), Rating: 4})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreate_ForCompletedRequest(t *testing.T) {
	svc, reviews, _, requests, _ := newFixture()

	requests.requests[20] = &domain.ConsultationRequest{
		ID:           20,
		ClientUserID: ptr(int64(42)),
		Status:       domain.RequestCompleted,
		TakenByID:    ptr(int64(7)),
	}

	rv, err := svc.Create(context.Background(), 42, CreateReviewRequest{
		RequestID: ptr(int64(20)),
		Rating:    4,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), rv.PsychologistProfileID)
	require.NotNil(t, rv.RequestID)
	assert.Len(t, reviews.created, 1)
}

func TestCreate_AnonymousRequestCannotBeReviewed(t *testing.T) {
	svc, _, _, requests, _ := newFixture()

	requests.requests[20] = &domain.ConsultationRequest{
		ID:        20,
		Status:    domain.RequestCompleted,
		TakenByID: ptr(int64(7)),
	}

	_, err := svc.Create(context.Background(), 42, CreateReviewRequest{RequestID: ptr(int64(20)), Rating: 4})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreate_ExactlyOneTargetRequired(t *testing.T) {
	svc, _, _, _, _ := newFixture()

	_, err := svc.Create(context.Background(), 42, CreateReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), 42, CreateReviewRequest{
		SessionID: ptr(int64(1)),
		RequestID: ptr(int64(2)),
		Rating:    4,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_DuplicateMapsToAlreadyExists(t *testing.T) {
	svc, reviews, _, requests, _ := newFixture()

	requests.requests[20] = &domain.ConsultationRequest{
		ID:           20,
		ClientUserID: ptr(int64(42)),
		Status:       domain.RequestCompleted,
		TakenByID:    ptr(int64(7)),
	}
	reviews.createErr = errors.New("UNIQUE constraint failed: reviews.request_id")

	_, err := svc.Create(context.Background(), 42, CreateReviewRequest{RequestID: ptr(int64(20)), Rating: 4})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreate_MissingSession(t *testing.T) {
	svc, _, _, _, _ := newFixture()

	_, err := svc.Create(context.Background(), 42, CreateReviewRequest{SessionID: ptr(int64(404)), Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)
}
