package memory

import (
	"context"

	"unihaven/internal/domain"
)

type reservations struct{ repos }

func (r reservations) Insert(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	err := r.write(func(st *state) error {
		if _, ok := st.accommodations[res.AccommodationID]; !ok {
			return domain.NotFound("accommodation")
		}
		if _, ok := st.members[res.MemberID]; !ok {
			return domain.NotFound("member")
		}
		res.ID = st.next("reservations")
		res.HasRating = false
		st.reservations[res.ID] = res
		return nil
	})
	return res, err
}

func (r reservations) SetStatus(ctx context.Context, id int64, s domain.ReservationStatus) error {
	return r.write(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return domain.NotFound("reservation")
		}
		res.Status = s
		st.reservations[id] = res
		return nil
	})
}

func (r reservations) Get(ctx context.Context, id int64) (domain.Reservation, error) {
	var out domain.Reservation
	err := r.read(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return domain.NotFound("reservation")
		}
		out = withRating(st, res)
		return nil
	})
	return out, err
}

func (r reservations) ListByMember(ctx context.Context, memberID int64) ([]domain.Reservation, error) {
	out := []domain.Reservation{}
	_ = r.read(func(st *state) error {
		for _, id := range sortedIDs(st.reservations) {
			if res := st.reservations[id]; res.MemberID == memberID {
				out = append(out, withRating(st, res))
			}
		}
		return nil
	})
	return out, nil
}

func (r reservations) CountActive(ctx context.Context, accommodationID int64) (int, error) {
	n := 0
	_ = r.read(func(st *state) error {
		for _, res := range st.reservations {
			if res.AccommodationID == accommodationID && res.Status.Active() {
				n++
			}
		}
		return nil
	})
	return n, nil
}

func withRating(st *state, res domain.Reservation) domain.Reservation {
	for _, rt := range st.ratings {
		if rt.ReservationID == res.ID {
			res.HasRating = true
			break
		}
	}
	return res
}
