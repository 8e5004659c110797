package memory

import (
	"context"

	"unihaven/internal/domain"
)

type accommodations struct{ repos }

func (r accommodations) Insert(ctx context.Context, a domain.Accommodation) (domain.Accommodation, error) {
	err := r.write(func(st *state) error {
		if _, ok := st.owners[a.OwnerID]; !ok {
			return domain.NotFound("owner")
		}
		for _, u := range a.UniversityIDs {
			if _, ok := st.universities[u]; !ok {
				return domain.NotFound("university")
			}
		}
		a.ID = st.next("accommodations")
		a.UniversityIDs = append([]int64(nil), a.UniversityIDs...)
		st.accommodations[a.ID] = a
		return nil
	})
	return a, err
}

func (r accommodations) Update(ctx context.Context, a domain.Accommodation) error {
	return r.write(func(st *state) error {
		cur, ok := st.accommodations[a.ID]
		if !ok {
			return domain.NotFound("accommodation")
		}
		for _, u := range a.UniversityIDs {
			if _, ok := st.universities[u]; !ok {
				return domain.NotFound("university")
			}
		}
		a.IsAvailable = cur.IsAvailable
		a.CreatedAt = cur.CreatedAt
		a.UniversityIDs = append([]int64(nil), a.UniversityIDs...)
		st.accommodations[a.ID] = a
		return nil
	})
}

// Delete cascades to the listing's reservations and ratings.
func (r accommodations) Delete(ctx context.Context, id int64) error {
	return r.write(func(st *state) error {
		if _, ok := st.accommodations[id]; !ok {
			return domain.NotFound("accommodation")
		}
		delete(st.accommodations, id)
		for rid, res := range st.reservations {
			if res.AccommodationID == id {
				delete(st.reservations, rid)
			}
		}
		for rid, rt := range st.ratings {
			if rt.AccommodationID == id {
				delete(st.ratings, rid)
			}
		}
		return nil
	})
}

func (r accommodations) Claim(ctx context.Context, id int64) (bool, error) {
	won := false
	err := r.write(func(st *state) error {
		a, ok := st.accommodations[id]
		if !ok {
			return domain.NotFound("accommodation")
		}
		if !a.IsAvailable {
			return nil
		}
		a.IsAvailable = false
		st.accommodations[id] = a
		won = true
		return nil
	})
	return won, err
}

func (r accommodations) Release(ctx context.Context, id int64) error {
	return r.setAvailable(id, true)
}

func (r accommodations) MarkUnavailable(ctx context.Context, id int64) error {
	return r.setAvailable(id, false)
}

func (r accommodations) setAvailable(id int64, v bool) error {
	return r.write(func(st *state) error {
		a, ok := st.accommodations[id]
		if !ok {
			return domain.NotFound("accommodation")
		}
		a.IsAvailable = v
		st.accommodations[id] = a
		return nil
	})
}

func (r accommodations) Get(ctx context.Context, id int64) (domain.Accommodation, error) {
	var out domain.Accommodation
	err := r.read(func(st *state) error {
		a, ok := st.accommodations[id]
		if !ok {
			return domain.NotFound("accommodation")
		}
		out = a
		out.UniversityIDs = append([]int64(nil), a.UniversityIDs...)
		return nil
	})
	return out, err
}

func (r accommodations) List(ctx context.Context, pg domain.PageQuery) (domain.Page[domain.Accommodation], error) {
	var all []domain.Accommodation
	_ = r.read(func(st *state) error {
		for _, id := range sortedIDs(st.accommodations) {
			all = append(all, st.accommodations[id])
		}
		return nil
	})
	return domain.Slice(all, pg), nil
}

func (r accommodations) Available(ctx context.Context, f domain.AvailabilityFilter) ([]domain.Accommodation, error) {
	var out []domain.Accommodation
	err := r.read(func(st *state) error {
		byAcc := map[int64][]domain.Reservation{}
		for _, res := range st.reservations {
			byAcc[res.AccommodationID] = append(byAcc[res.AccommodationID], res)
		}
		for _, id := range sortedIDs(st.accommodations) {
			a := st.accommodations[id]
			if !f.Admits(a) || f.Blocked(byAcc[id]) {
				continue
			}
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

func (r accommodations) RatingSummary(ctx context.Context, id int64) (*float64, int, error) {
	var sum, n int
	_ = r.read(func(st *state) error {
		for _, rt := range st.ratings {
			if rt.AccommodationID == id && rt.IsApproved {
				sum += rt.Score
				n++
			}
		}
		return nil
	})
	if n == 0 {
		return nil, 0, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, n, nil
}
