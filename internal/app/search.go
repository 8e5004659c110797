package app

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"unihaven/internal/adapters/observability"
	"unihaven/internal/domain"
)

// SearchService answers member searches: scope by the member's university,
// filter through the availability index, then rank.
type SearchService struct {
	store domain.Store
	cache readThrough
}

func NewSearchService(s domain.Store, c domain.Cache, ttl time.Duration) *SearchService {
	return &SearchService{store: s, cache: readThrough{cache: c, ttl: ttl}}
}

func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	if q.MemberID == nil {
		return nil, domain.Invalid("member_id is required for searching accommodations")
	}
	if q.SortBy == "" {
		q.SortBy = domain.SortDistance
	}
	member, err := s.store.Directory().GetMember(ctx, *q.MemberID)
	if err != nil {
		return nil, err
	}

	f := domain.AvailabilityFilter{
		UniversityID:  member.UniversityID,
		Type:          q.Type,
		AvailableFrom: q.AvailableFrom,
		AvailableTo:   q.AvailableTo,
		MinBeds:       q.NumBeds,
		MinBedrooms:   q.NumBedrooms,
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
	}
	accs, err := s.store.Accommodations().Available(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SearchResult, len(accs))
	for i, a := range accs {
		out[i] = domain.SearchResult{Accommodation: a}
	}

	switch q.SortBy {
	case domain.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].MonthlyRent < out[j].MonthlyRent })
	case domain.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].MonthlyRent > out[j].MonthlyRent })
	case domain.SortDistance:
		// Without a campus there is nothing to rank by; keep the index order.
		if q.CampusID != nil {
			if err := s.rankByDistance(ctx, *q.CampusID, out); err != nil {
				return nil, err
			}
		}
	default:
		return nil, domain.Invalid("unsupported sort mode %q", q.SortBy)
	}

	observability.ObserveSearch(string(q.SortBy), len(out))
	log.Debug().
		Int64("member_id", member.ID).
		Int64("university_id", member.UniversityID).
		Str("sort_by", string(q.SortBy)).
		Int("results", len(out)).
		Msg("accommodation search")
	return out, nil
}

func (s *SearchService) rankByDistance(ctx context.Context, campusID int64, rs []domain.SearchResult) error {
	campus, err := s.campus(ctx, campusID)
	if err != nil {
		return err
	}
	exact := make([]float64, len(rs))
	for i := range rs {
		exact[i] = domain.Distance(rs[i].Coords(), campus.Coords())
		d := domain.RoundKm(exact[i])
		rs[i].Distance = &d
	}
	// Sort an index permutation so ties keep insertion order and the exact
	// distances stay aligned with their rows.
	idx := make([]int, len(rs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return exact[idx[i]] < exact[idx[j]] })
	sorted := make([]domain.SearchResult, len(rs))
	for i, k := range idx {
		sorted[i] = rs[k]
	}
	copy(rs, sorted)
	return nil
}

func (s *SearchService) campus(ctx context.Context, id int64) (domain.Campus, error) {
	key := campusKey(id)
	var c domain.Campus
	if s.cache.get(ctx, key, &c) {
		return c, nil
	}
	c, err := s.store.Directory().GetCampus(ctx, id)
	if err != nil {
		return domain.Campus{}, err
	}
	s.cache.set(ctx, key, c)
	return c, nil
}
