package mysql

import (
	"context"
	"database/sql"
	"errors"

	"unihaven/internal/domain"
)

type ratings struct{ repos }

func scanRating(s scanner) (domain.Rating, error) {
	var rt domain.Rating
	var moderatedBy sql.NullInt64
	var moderatedAt sql.NullTime
	err := s.Scan(
		&rt.ID, &rt.AccommodationID, &rt.MemberID, &rt.ReservationID, &rt.Score, &rt.Comment,
		&rt.IsApproved, &moderatedBy, &moderatedAt, &rt.ModerationNote, &rt.CreatedAt, &rt.UpdatedAt,
	)
	rt.ModeratedBy = ptrInt64(moderatedBy)
	if moderatedAt.Valid {
		t := moderatedAt.Time
		rt.ModerationDate = &t
	}
	return rt, err
}

// Insert relies on the unique reservation_id key for one rating per stay.
func (r ratings) Insert(ctx context.Context, rt domain.Rating) (domain.Rating, error) {
	id, err := r.insert(ctx, "rating", insertRatingSQL,
		rt.AccommodationID, rt.MemberID, rt.ReservationID, rt.Score, rt.Comment,
		rt.IsApproved, rt.CreatedAt, rt.UpdatedAt,
	)
	switch {
	case errors.Is(err, domain.ErrConflict):
		return domain.Rating{}, domain.Conflict("reservation %d already rated", rt.ReservationID)
	case errors.Is(err, errNoParent):
		return domain.Rating{}, domain.NotFound("reservation")
	case err != nil:
		return domain.Rating{}, err
	}
	rt.ID = id
	return rt, nil
}

func (r ratings) Moderate(ctx context.Context, id int64, m domain.Moderation) error {
	err := r.update(ctx, "rating", moderateRatingSQL, m.IsApproved, m.SpecialistID, m.At, m.Note, m.At, id)
	return parentMissing(err, "specialist")
}

func (r ratings) Get(ctx context.Context, id int64) (domain.Rating, error) {
	rt, err := scanRating(r.q.QueryRowContext(ctx, r.lock(selectRatingSQL+" WHERE id = ?"), id))
	if err != nil {
		return domain.Rating{}, mapErr(err, "rating")
	}
	return rt, nil
}

func (r ratings) List(ctx context.Context, accommodationID *int64) ([]domain.Rating, error) {
	if accommodationID != nil {
		return r.query(ctx, selectRatingSQL+" WHERE accommodation_id = ? ORDER BY id", *accommodationID)
	}
	return r.query(ctx, selectRatingSQL+" ORDER BY id")
}

// ListPending is oldest first.
func (r ratings) ListPending(ctx context.Context, pg domain.PageQuery) (domain.Page[domain.Rating], error) {
	page := domain.Page[domain.Rating]{Page: pg.Page, PageSize: pg.Size, Items: []domain.Rating{}}
	if err := r.q.QueryRowContext(ctx, countPendingRatingsSQL).Scan(&page.Total); err != nil {
		return page, err
	}
	items, err := r.query(ctx,
		selectRatingSQL+" WHERE moderated_by IS NULL ORDER BY created_at, id LIMIT ? OFFSET ?", pg.Size, pg.Offset())
	if err != nil {
		return page, err
	}
	page.Items = items
	return page, nil
}

func (r ratings) query(ctx context.Context, query string, args ...any) ([]domain.Rating, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Rating{}
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}
