package mysql

import (
	"context"
	"errors"

	"unihaven/internal/domain"
)

type directory struct{ repos }

// listOf runs query and scans every row with scan.
func listOf[T any](ctx context.Context, q querier, query string, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func oneOf[T any](ctx context.Context, q querier, query string, id int64, what string, scan func(scanner) (T, error)) (T, error) {
	v, err := scan(q.QueryRowContext(ctx, query+" WHERE id = ?", id))
	if err != nil {
		var zero T
		return zero, mapErr(err, what)
	}
	return v, nil
}

// parentMissing rewrites a foreign-key miss into a not-found for the named
// parent.
func parentMissing(err error, parent string) error {
	if errors.Is(err, errNoParent) {
		return domain.NotFound(parent)
	}
	return err
}

// ---- universities ----

func scanUniversity(s scanner) (u domain.University, err error) {
	err = s.Scan(&u.ID, &u.Name, &u.Country, &u.Address, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r directory) InsertUniversity(ctx context.Context, u domain.University) (domain.University, error) {
	id, err := r.insert(ctx, "university", insertUniversitySQL, u.Name, u.Country, u.Address, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return domain.University{}, err
	}
	u.ID = id
	return u, nil
}

func (r directory) UpdateUniversity(ctx context.Context, u domain.University) error {
	return r.update(ctx, "university", updateUniversitySQL, u.Name, u.Country, u.Address, u.UpdatedAt, u.ID)
}

func (r directory) DeleteUniversity(ctx context.Context, id int64) error {
	return r.update(ctx, "university", "DELETE FROM universities WHERE id = ?", id)
}

func (r directory) GetUniversity(ctx context.Context, id int64) (domain.University, error) {
	return oneOf(ctx, r.q, selectUniversitySQL, id, "university", scanUniversity)
}

func (r directory) ListUniversities(ctx context.Context) ([]domain.University, error) {
	return listOf(ctx, r.q, selectUniversitySQL+" ORDER BY id", scanUniversity)
}

// ---- campuses ----

func scanCampus(s scanner) (c domain.Campus, err error) {
	err = s.Scan(&c.ID, &c.Name, &c.UniversityID, &c.Latitude, &c.Longitude, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r directory) InsertCampus(ctx context.Context, c domain.Campus) (domain.Campus, error) {
	id, err := r.insert(ctx, "campus", insertCampusSQL, c.Name, c.UniversityID, c.Latitude, c.Longitude, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return domain.Campus{}, parentMissing(err, "university")
	}
	c.ID = id
	return c, nil
}

func (r directory) UpdateCampus(ctx context.Context, c domain.Campus) error {
	err := r.update(ctx, "campus", updateCampusSQL,
		c.Name, c.UniversityID, c.Latitude, c.Longitude, c.UpdatedAt, c.ID)
	return parentMissing(err, "university")
}

func (r directory) DeleteCampus(ctx context.Context, id int64) error {
	return r.update(ctx, "campus", "DELETE FROM campuses WHERE id = ?", id)
}

func (r directory) GetCampus(ctx context.Context, id int64) (domain.Campus, error) {
	return oneOf(ctx, r.q, selectCampusSQL, id, "campus", scanCampus)
}

func (r directory) ListCampuses(ctx context.Context) ([]domain.Campus, error) {
	return listOf(ctx, r.q, selectCampusSQL+" ORDER BY id", scanCampus)
}

// ---- members ----

func scanMember(s scanner) (m domain.Member, err error) {
	err = s.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.UniversityID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r directory) InsertMember(ctx context.Context, m domain.Member) (domain.Member, error) {
	id, err := r.insert(ctx, "member", insertMemberSQL, m.Name, m.Email, m.Phone, m.UniversityID, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return domain.Member{}, parentMissing(err, "university")
	}
	m.ID = id
	return m, nil
}

func (r directory) UpdateMember(ctx context.Context, m domain.Member) error {
	err := r.update(ctx, "member", updateMemberSQL,
		m.Name, m.Email, m.Phone, m.UniversityID, m.UpdatedAt, m.ID)
	return parentMissing(err, "university")
}

func (r directory) DeleteMember(ctx context.Context, id int64) error {
	return r.update(ctx, "member", "DELETE FROM members WHERE id = ?", id)
}

func (r directory) GetMember(ctx context.Context, id int64) (domain.Member, error) {
	return oneOf(ctx, r.q, selectMemberSQL, id, "member", scanMember)
}

func (r directory) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return listOf(ctx, r.q, selectMemberSQL+" ORDER BY id", scanMember)
}

// ---- specialists ----

func scanSpecialist(s scanner) (sp domain.Specialist, err error) {
	err = s.Scan(&sp.ID, &sp.Name, &sp.Email, &sp.Phone, &sp.UniversityID, &sp.CreatedAt, &sp.UpdatedAt)
	return sp, err
}

func (r directory) InsertSpecialist(ctx context.Context, s domain.Specialist) (domain.Specialist, error) {
	id, err := r.insert(ctx, "specialist", insertSpecialistSQL, s.Name, s.Email, s.Phone, s.UniversityID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return domain.Specialist{}, parentMissing(err, "university")
	}
	s.ID = id
	return s, nil
}

func (r directory) UpdateSpecialist(ctx context.Context, s domain.Specialist) error {
	err := r.update(ctx, "specialist", updateSpecialistSQL,
		s.Name, s.Email, s.Phone, s.UniversityID, s.UpdatedAt, s.ID)
	return parentMissing(err, "university")
}

// DeleteSpecialist leaves moderated ratings behind with moderated_by cleared
// (ON DELETE SET NULL).
func (r directory) DeleteSpecialist(ctx context.Context, id int64) error {
	return r.update(ctx, "specialist", "DELETE FROM specialists WHERE id = ?", id)
}

func (r directory) GetSpecialist(ctx context.Context, id int64) (domain.Specialist, error) {
	return oneOf(ctx, r.q, selectSpecialistSQL, id, "specialist", scanSpecialist)
}

func (r directory) ListSpecialists(ctx context.Context) ([]domain.Specialist, error) {
	return listOf(ctx, r.q, selectSpecialistSQL+" ORDER BY id", scanSpecialist)
}

// ---- owners ----

func scanOwner(s scanner) (o domain.Owner, err error) {
	err = s.Scan(&o.ID, &o.Name, &o.Email, &o.Phone, &o.Address, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r directory) UpsertOwner(ctx context.Context, o domain.Owner) (domain.Owner, error) {
	id, err := r.insert(ctx, "owner", upsertOwnerSQL, o.Name, o.Email, o.Phone, o.Address, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return domain.Owner{}, err
	}
	return r.GetOwner(ctx, id)
}

func (r directory) UpdateOwner(ctx context.Context, o domain.Owner) error {
	return r.update(ctx, "owner", updateOwnerSQL, o.Name, o.Email, o.Phone, o.Address, o.UpdatedAt, o.ID)
}

func (r directory) DeleteOwner(ctx context.Context, id int64) error {
	return r.update(ctx, "owner", "DELETE FROM owners WHERE id = ?", id)
}

func (r directory) GetOwner(ctx context.Context, id int64) (domain.Owner, error) {
	return oneOf(ctx, r.q, selectOwnerSQL, id, "owner", scanOwner)
}

func (r directory) ListOwners(ctx context.Context) ([]domain.Owner, error) {
	return listOf(ctx, r.q, selectOwnerSQL+" ORDER BY id", scanOwner)
}
