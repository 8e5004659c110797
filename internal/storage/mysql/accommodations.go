package mysql

import (
	"context"
	"database/sql"
	"strings"

	"unihaven/internal/domain"
)

type accommodations struct{ repos }

func scanAccommodation(s scanner) (domain.Accommodation, error) {
	var a domain.Accommodation
	var typ string
	err := s.Scan(
		&a.ID, &a.Name, &a.BuildingName, &a.Description, &typ,
		&a.RoomNumber, &a.FlatNumber, &a.FloorNumber, &a.NumBedrooms, &a.NumBeds,
		&a.Address, &a.GeoAddress, &a.Latitude, &a.Longitude,
		&a.AvailableFrom, &a.AvailableTo, &a.MonthlyRent,
		&a.OwnerID, &a.IsAvailable, &a.CreatedAt, &a.UpdatedAt,
	)
	a.Type = domain.AccommodationType(typ)
	return a, err
}

func (r accommodations) Insert(ctx context.Context, a domain.Accommodation) (domain.Accommodation, error) {
	err := r.atomic(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, insertAccommodationSQL,
			a.Name, a.BuildingName, a.Description, string(a.Type),
			a.RoomNumber, a.FlatNumber, a.FloorNumber,
			a.NumBedrooms, a.NumBeds, a.Address, a.GeoAddress,
			a.Latitude, a.Longitude, a.AvailableFrom, a.AvailableTo,
			a.MonthlyRent, a.OwnerID, a.IsAvailable, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return parentMissing(mapErr(err, "accommodation"), "owner")
		}
		if a.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		return linkUniversities(ctx, q, a.ID, a.UniversityIDs)
	})
	return a, err
}

func (r accommodations) Update(ctx context.Context, a domain.Accommodation) error {
	return r.atomic(ctx, func(q querier) error {
		err := execOne(ctx, q, "accommodation", updateAccommodationSQL,
			a.Name, a.BuildingName, a.Description, string(a.Type),
			a.RoomNumber, a.FlatNumber, a.FloorNumber,
			a.NumBedrooms, a.NumBeds, a.Address, a.GeoAddress,
			a.Latitude, a.Longitude, a.AvailableFrom, a.AvailableTo,
			a.MonthlyRent, a.OwnerID, a.UpdatedAt, a.ID,
		)
		if err != nil {
			return parentMissing(err, "owner")
		}
		if _, err := q.ExecContext(ctx, deleteAccommodationUniversitiesSQL, a.ID); err != nil {
			return err
		}
		return linkUniversities(ctx, q, a.ID, a.UniversityIDs)
	})
}

func linkUniversities(ctx context.Context, q querier, accommodationID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	values := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids)*2)
	for _, u := range ids {
		values = append(values, "(?,?)")
		args = append(args, accommodationID, u)
	}
	_, err := q.ExecContext(ctx, insertAccommodationUniversityPrefix+strings.Join(values, ","), args...)
	return parentMissing(mapErr(err, "university"), "university")
}

// Delete relies on ON DELETE CASCADE for reservations, ratings and the
// university links.
func (r accommodations) Delete(ctx context.Context, id int64) error {
	return r.update(ctx, "accommodation", deleteAccommodationSQL, id)
}

func (r accommodations) Claim(ctx context.Context, id int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, claimAccommodationSQL, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	return false, r.exists(ctx, existsAccommodationSQL, id, "accommodation")
}

func (r accommodations) Release(ctx context.Context, id int64) error {
	return r.update(ctx, "accommodation", setAvailableSQL, true, id)
}

func (r accommodations) MarkUnavailable(ctx context.Context, id int64) error {
	return r.update(ctx, "accommodation", setAvailableSQL, false, id)
}

func (r accommodations) Get(ctx context.Context, id int64) (domain.Accommodation, error) {
	a, err := scanAccommodation(r.q.QueryRowContext(ctx, r.lock(selectAccommodationSQL+" WHERE a.id = ?"), id))
	if err != nil {
		return domain.Accommodation{}, mapErr(err, "accommodation")
	}
	out := []domain.Accommodation{a}
	if err := r.attachUniversities(ctx, out); err != nil {
		return domain.Accommodation{}, err
	}
	return out[0], nil
}

func (r accommodations) List(ctx context.Context, pg domain.PageQuery) (domain.Page[domain.Accommodation], error) {
	page := domain.Page[domain.Accommodation]{Page: pg.Page, PageSize: pg.Size, Items: []domain.Accommodation{}}
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM accommodations").Scan(&page.Total); err != nil {
		return page, err
	}
	items, err := r.query(ctx, selectAccommodationSQL+" ORDER BY a.id LIMIT ? OFFSET ?", pg.Size, pg.Offset())
	if err != nil {
		return page, err
	}
	page.Items = items
	return page, nil
}

// Available mirrors AvailabilityFilter.Admits and Blocked in SQL.
func (r accommodations) Available(ctx context.Context, f domain.AvailabilityFilter) ([]domain.Accommodation, error) {
	var b strings.Builder
	b.WriteString(selectAccommodationSQL)
	b.WriteString(availableUniversityClause)
	args := []any{f.UniversityID}

	if f.Type != "" {
		b.WriteString(" AND a.type = ?")
		args = append(args, string(f.Type))
	}
	if f.AvailableFrom != nil {
		b.WriteString(" AND a.available_from <= ?")
		args = append(args, *f.AvailableFrom)
	}
	if f.AvailableTo != nil {
		b.WriteString(" AND a.available_to >= ?")
		args = append(args, *f.AvailableTo)
	}
	if f.MinBeds != nil {
		b.WriteString(" AND a.num_beds >= ?")
		args = append(args, *f.MinBeds)
	}
	if f.MinBedrooms != nil {
		b.WriteString(" AND a.num_bedrooms >= ?")
		args = append(args, *f.MinBedrooms)
	}
	if f.MinPrice != nil {
		b.WriteString(" AND a.monthly_rent >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		b.WriteString(" AND a.monthly_rent <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.ExcludesOverlaps() {
		b.WriteString(availableOverlapClause)
		args = append(args, *f.AvailableTo, *f.AvailableFrom)
	}
	b.WriteString(" ORDER BY a.id")
	return r.query(ctx, b.String(), args...)
}

func (r accommodations) RatingSummary(ctx context.Context, id int64) (*float64, int, error) {
	var avg sql.NullFloat64
	var n int
	if err := r.q.QueryRowContext(ctx, ratingSummarySQL, id).Scan(&avg, &n); err != nil {
		return nil, 0, err
	}
	if !avg.Valid || n == 0 {
		return nil, 0, nil
	}
	v := avg.Float64
	return &v, n, nil
}

func (r accommodations) query(ctx context.Context, query string, args ...any) ([]domain.Accommodation, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Accommodation{}
	for rows.Next() {
		a, err := scanAccommodation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, r.attachUniversities(ctx, out)
}

// attachUniversities fills UniversityIDs for all of as with one query.
func (r accommodations) attachUniversities(ctx context.Context, as []domain.Accommodation) error {
	if len(as) == 0 {
		return nil
	}
	idx := make(map[int64]int, len(as))
	marks := make([]string, 0, len(as))
	args := make([]any, 0, len(as))
	for i := range as {
		idx[as[i].ID] = i
		as[i].UniversityIDs = []int64{}
		marks = append(marks, "?")
		args = append(args, as[i].ID)
	}
	rows, err := r.q.QueryContext(ctx,
		"SELECT accommodation_id, university_id FROM accommodation_universities WHERE accommodation_id IN ("+
			strings.Join(marks, ",")+") ORDER BY accommodation_id, university_id", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var accID, uniID int64
		if err := rows.Scan(&accID, &uniID); err != nil {
			return err
		}
		if i, ok := idx[accID]; ok {
			as[i].UniversityIDs = append(as[i].UniversityIDs, uniID)
		}
	}
	return rows.Err()
}
