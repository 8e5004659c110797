package memory

import (
	"context"
	"sort"

	"unihaven/internal/domain"
)

type ratings struct{ repos }

// Insert enforces one rating per reservation.
func (r ratings) Insert(ctx context.Context, rt domain.Rating) (domain.Rating, error) {
	err := r.write(func(st *state) error {
		if _, ok := st.reservations[rt.ReservationID]; !ok {
			return domain.NotFound("reservation")
		}
		for _, other := range st.ratings {
			if other.ReservationID == rt.ReservationID {
				return domain.Conflict("reservation %d already rated", rt.ReservationID)
			}
		}
		rt.ID = st.next("ratings")
		st.ratings[rt.ID] = rt
		return nil
	})
	return rt, err
}

func (r ratings) Moderate(ctx context.Context, id int64, m domain.Moderation) error {
	return r.write(func(st *state) error {
		rt, ok := st.ratings[id]
		if !ok {
			return domain.NotFound("rating")
		}
		if _, ok := st.specialists[m.SpecialistID]; !ok {
			return domain.NotFound("specialist")
		}
		rt.Apply(m)
		st.ratings[id] = rt
		return nil
	})
}

func (r ratings) Get(ctx context.Context, id int64) (domain.Rating, error) {
	var out domain.Rating
	err := r.read(func(st *state) error {
		rt, ok := st.ratings[id]
		if !ok {
			return domain.NotFound("rating")
		}
		out = rt
		return nil
	})
	return out, err
}

func (r ratings) List(ctx context.Context, accommodationID *int64) ([]domain.Rating, error) {
	out := []domain.Rating{}
	_ = r.read(func(st *state) error {
		for _, id := range sortedIDs(st.ratings) {
			rt := st.ratings[id]
			if accommodationID != nil && rt.AccommodationID != *accommodationID {
				continue
			}
			out = append(out, rt)
		}
		return nil
	})
	return out, nil
}

// ListPending is oldest first.
func (r ratings) ListPending(ctx context.Context, pg domain.PageQuery) (domain.Page[domain.Rating], error) {
	var pending []domain.Rating
	_ = r.read(func(st *state) error {
		for _, rt := range st.ratings {
			if rt.Pending() {
				pending = append(pending, rt)
			}
		}
		return nil
	})
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].ID < pending[j].ID
	})
	return domain.Slice(pending, pg), nil
}
