package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"psymatch/internal/database"
	"psymatch/internal/domain"
)

func newProfileRepo(t *testing.T) (*PsychologistProfileRepository, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewPsychologistProfileRepository(db), db
}

func seedListedProfile(t *testing.T, db *gorm.DB, userID, appID int64, name string) int64 {
	t.Helper()
	p := &domain.PsychologistProfile{
		UserID:        userID,
		ApplicationID: &appID,
		FirstName:     name,
		IsVerified:    true,
		IsInCatalog:   true,
	}
	require.NoError(t, db.Create(p).Error)
	return p.ID
}

func seedOffer(t *testing.T, db *gorm.DB, appID int64, price float64, published bool) {
	t.Helper()
	require.NoError(t, db.Create(&domain.SessionOffer{
		ApplicationID: appID,
		Type:          "individual",
		Mode:          "online",
		DurationMin:   50,
		Price:         price,
		Currency:      "KZT",
		IsPublished:   published,
	}).Error)
}

func TestGetCatalog_PriceRange(t *testing.T) {
	repo, db := newProfileRepo(t)
	ctx := context.Background()

	inRange := seedListedProfile(t, db, 1, 10, "Maria")
	seedOffer(t, db, 10, 15000, true)

	seedListedProfile(t, db, 2, 20, "Dana")
	seedOffer(t, db, 20, 30000, true)

	// an unpublished offer never qualifies a profile
	seedListedProfile(t, db, 3, 30, "Alia")
	seedOffer(t, db, 30, 15000, false)

	profiles, total, err := repo.GetCatalog(ctx, CatalogFilters{MinPrice: 10000, MaxPrice: 20000, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, profiles, 1)
	assert.Equal(t, inRange, profiles[0].ID)
}

func TestGetCatalog_PriceRangeCountsProfileOnce(t *testing.T) {
	repo, db := newProfileRepo(t)
	ctx := context.Background()

	id := seedListedProfile(t, db, 1, 10, "Maria")
	seedOffer(t, db, 10, 12000, true)
	seedOffer(t, db, 10, 18000, true)

	profiles, total, err := repo.GetCatalog(ctx, CatalogFilters{MinPrice: 10000, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, profiles, 1)
	assert.Equal(t, id, profiles[0].ID)
}

func TestGetCatalog_PriceRangeComposesWithCity(t *testing.T) {
	repo, db := newProfileRepo(t)
	ctx := context.Background()

	almaty := &domain.PsychologistProfile{UserID: 1, ApplicationID: ptrID(10), FirstName: "Maria", City: "Almaty", IsInCatalog: true}
	require.NoError(t, db.Create(almaty).Error)
	seedOffer(t, db, 10, 15000, true)

	astana := &domain.PsychologistProfile{UserID: 2, ApplicationID: ptrID(20), FirstName: "Dana", City: "Astana", IsInCatalog: true}
	require.NoError(t, db.Create(astana).Error)
	seedOffer(t, db, 20, 15000, true)

	profiles, total, err := repo.GetCatalog(ctx, CatalogFilters{City: "Almaty", MinPrice: 10000, MaxPrice: 20000, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, profiles, 1)
	assert.Equal(t, almaty.ID, profiles[0].ID)
}

func ptrID(id int64) *int64 { return &id }
