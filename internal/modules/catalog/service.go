package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"psymatch/internal/domain"
	"psymatch/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// Service serves the public, read-only catalog. Only profiles with
// is_in_catalog set ever leave this package; blocked or unverified
// psychologists are indistinguishable from absent ones.
type Service struct {
	profiles ProfileRepository
	offers   OfferRepository
	reviews  ReviewRepository
}

func NewService(profiles ProfileRepository, offers OfferRepository, reviews ReviewRepository) *Service {
	return &Service{profiles: profiles, offers: offers, reviews: reviews}
}

func (s *Service) Browse(ctx context.Context, q BrowseQuery) (*BrowseResponse, error) {
	page := q.Page
	if page <= 0 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	profiles, total, err := s.profiles.GetCatalog(ctx, repository.CatalogFilters{
		City:           q.City,
		Specialization: q.Specialization,
		NameQuery:      q.Name,
		Gender:         q.Gender,
		Languages:      q.Languages,
		MinPrice:       q.MinPrice,
		MaxPrice:       q.MaxPrice,
		MinRequests:    q.MinRequests,
		MaxRequests:    q.MaxRequests,
		OrderBy:        q.OrderBy,
		Limit:          limit,
		Offset:         (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, len(profiles))
	for i := range profiles {
		entries = append(entries, s.toEntry(ctx, &profiles[i]))
	}

	return &BrowseResponse{
		Psychologists: entries,
		Total:         int(total),
		Page:          page,
		Limit:         limit,
	}, nil
}

// GetProfile returns the public view of one in-catalog psychologist with
// published offers, qualifications and the aggregated rating.
func (s *Service) GetProfile(ctx context.Context, profileID int64) (*PublicProfile, error) {
	p, err := s.visibleProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	rating, err := s.reviews.AverageRating(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	out := &PublicProfile{
		ID:              p.ID,
		FullName:        p.FullName(),
		Gender:          p.Gender,
		BirthYear:       p.BirthYear,
		City:            p.City,
		About:           p.About,
		Specializations: decodeStrings(p.Specializations),
		Languages:       decodeStrings(p.Languages),
		RequestsCount:   p.RequestsCount,
		Rating:          rating,
		Offers:          []domain.SessionOffer{},
	}

	if p.ApplicationID != nil {
		offers, err := s.offers.GetOffers(ctx, *p.ApplicationID)
		if err != nil {
			return nil, err
		}
		for _, o := range offers {
			if o.IsPublished {
				out.Offers = append(out.Offers, o)
			}
		}

		quals, err := s.offers.GetQualifications(ctx, *p.ApplicationID)
		if err != nil {
			return nil, err
		}
		out.Qualifications = quals
	}

	return out, nil
}

func (s *Service) GetPrices(ctx context.Context, profileID int64) ([]domain.SessionOffer, error) {
	p, err := s.visibleProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.ApplicationID == nil {
		return []domain.SessionOffer{}, nil
	}

	offers, err := s.offers.GetOffers(ctx, *p.ApplicationID)
	if err != nil {
		return nil, err
	}
	published := make([]domain.SessionOffer, 0, len(offers))
	for _, o := range offers {
		if o.IsPublished {
			published = append(published, o)
		}
	}
	return published, nil
}

func (s *Service) GetFAQ(ctx context.Context, profileID int64) ([]domain.FAQItem, error) {
	p, err := s.visibleProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.ApplicationID == nil {
		return []domain.FAQItem{}, nil
	}
	return s.offers.GetFAQ(ctx, *p.ApplicationID)
}

func (s *Service) GetReviews(ctx context.Context, profileID int64, page, limit int) ([]domain.Review, float64, error) {
	p, err := s.visibleProfile(ctx, profileID)
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	reviews, err := s.reviews.ListByPsychologist(ctx, p.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	rating, err := s.reviews.AverageRating(ctx, p.ID)
	if err != nil {
		return nil, 0, err
	}
	return reviews, rating, nil
}

func (s *Service) visibleProfile(ctx context.Context, profileID int64) (*domain.PsychologistProfile, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.IsInCatalog {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) toEntry(ctx context.Context, p *domain.PsychologistProfile) CatalogEntry {
	entry := CatalogEntry{
		ID:              p.ID,
		FullName:        p.FullName(),
		Gender:          p.Gender,
		City:            p.City,
		About:           p.About,
		Specializations: decodeStrings(p.Specializations),
		Languages:       decodeStrings(p.Languages),
		RequestsCount:   p.RequestsCount,
	}

	// Rating and cheapest published price are best-effort list decorations;
	// a failed lookup leaves the zero value rather than failing the page.
	if rating, err := s.reviews.AverageRating(ctx, p.ID); err == nil {
		entry.Rating = rating
	}
	if p.ApplicationID != nil {
		if offers, err := s.offers.GetOffers(ctx, *p.ApplicationID); err == nil {
			for _, o := range offers {
				if !o.IsPublished {
					continue
				}
				if entry.MinPrice == 0 || o.Price < entry.MinPrice {
					entry.MinPrice = o.Price
				}
			}
		}
	}
	return entry
}

func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
