package mysql

import (
	"context"
	"errors"

	"unihaven/internal/domain"
)

type reservations struct{ repos }

func scanReservation(s scanner) (domain.Reservation, error) {
	var res domain.Reservation
	var status string
	err := s.Scan(
		&res.ID, &res.AccommodationID, &res.MemberID, &res.ReservedFrom, &res.ReservedTo,
		&res.ContactName, &res.ContactPhone, &status, &res.CreatedAt, &res.UpdatedAt,
		&res.HasRating,
	)
	res.Status = domain.ReservationStatus(status)
	return res, err
}

func (r reservations) Insert(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	id, err := r.insert(ctx, "reservation", insertReservationSQL,
		res.AccommodationID, res.MemberID, res.ReservedFrom, res.ReservedTo,
		res.ContactName, res.ContactPhone, string(res.Status), res.CreatedAt, res.UpdatedAt,
	)
	if errors.Is(err, errNoParent) {
		return domain.Reservation{}, domain.NotFound("accommodation or member")
	}
	if err != nil {
		return domain.Reservation{}, err
	}
	res.ID = id
	res.HasRating = false
	return res, nil
}

func (r reservations) SetStatus(ctx context.Context, id int64, s domain.ReservationStatus) error {
	return r.update(ctx, "reservation", setReservationStatusSQL, string(s), id)
}

func (r reservations) Get(ctx context.Context, id int64) (domain.Reservation, error) {
	res, err := scanReservation(r.q.QueryRowContext(ctx, r.lock(selectReservationSQL+" WHERE r.id = ?"), id))
	if err != nil {
		return domain.Reservation{}, mapErr(err, "reservation")
	}
	return res, nil
}

func (r reservations) ListByMember(ctx context.Context, memberID int64) ([]domain.Reservation, error) {
	rows, err := r.q.QueryContext(ctx, selectReservationSQL+" WHERE r.member_id = ? ORDER BY r.id", memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r reservations) CountActive(ctx context.Context, accommodationID int64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, countActiveReservationsSQL, accommodationID).Scan(&n)
	return n, err
}
