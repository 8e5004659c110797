package memory

import (
	"context"
	"strings"

	"unihaven/internal/domain"
)

type directory struct{ repos }

func get[T any](m map[int64]T, id int64, what string) (T, error) {
	v, ok := m[id]
	if !ok {
		var zero T
		return zero, domain.NotFound(what)
	}
	return v, nil
}

func list[T any](m map[int64]T) []T {
	out := make([]T, 0, len(m))
	for _, id := range sortedIDs(m) {
		out = append(out, m[id])
	}
	return out
}

func replace[T any](m map[int64]T, id int64, v T, what string) error {
	if _, ok := m[id]; !ok {
		return domain.NotFound(what)
	}
	m[id] = v
	return nil
}

// ---- universities ----

func (r directory) InsertUniversity(ctx context.Context, u domain.University) (domain.University, error) {
	err := r.write(func(st *state) error {
		for _, o := range st.universities {
			if strings.EqualFold(o.Name, u.Name) && strings.EqualFold(o.Country, u.Country) {
				return domain.Conflict("university %q already exists in %s", u.Name, u.Country)
			}
		}
		u.ID = st.next("universities")
		st.universities[u.ID] = u
		return nil
	})
	return u, err
}

func (r directory) UpdateUniversity(ctx context.Context, u domain.University) error {
	return r.write(func(st *state) error { return replace(st.universities, u.ID, u, "university") })
}

// DeleteUniversity refuses while anything still references the university.
func (r directory) DeleteUniversity(ctx context.Context, id int64) error {
	return r.write(func(st *state) error {
		if _, err := get(st.universities, id, "university"); err != nil {
			return err
		}
		for _, c := range st.campuses {
			if c.UniversityID == id {
				return domain.Conflict("university %d still has campuses", id)
			}
		}
		for _, m := range st.members {
			if m.UniversityID == id {
				return domain.Conflict("university %d still has members", id)
			}
		}
		for _, s := range st.specialists {
			if s.UniversityID == id {
				return domain.Conflict("university %d still has specialists", id)
			}
		}
		for _, a := range st.accommodations {
			if a.ServesUniversity(id) {
				return domain.Conflict("university %d still has accommodations", id)
			}
		}
		delete(st.universities, id)
		return nil
	})
}

func (r directory) GetUniversity(ctx context.Context, id int64) (out domain.University, err error) {
	err = r.read(func(st *state) error { out, err = get(st.universities, id, "university"); return err })
	return out, err
}

func (r directory) ListUniversities(ctx context.Context) (out []domain.University, err error) {
	err = r.read(func(st *state) error { out = list(st.universities); return nil })
	return out, err
}

// ---- campuses ----

func (r directory) InsertCampus(ctx context.Context, c domain.Campus) (domain.Campus, error) {
	err := r.write(func(st *state) error {
		if _, err := get(st.universities, c.UniversityID, "university"); err != nil {
			return err
		}
		c.ID = st.next("campuses")
		st.campuses[c.ID] = c
		return nil
	})
	return c, err
}

func (r directory) UpdateCampus(ctx context.Context, c domain.Campus) error {
	return r.write(func(st *state) error {
		if _, err := get(st.universities, c.UniversityID, "university"); err != nil {
			return err
		}
		return replace(st.campuses, c.ID, c, "campus")
	})
}

func (r directory) DeleteCampus(ctx context.Context, id int64) error {
	return r.write(func(st *state) error {
		if _, err := get(st.campuses, id, "campus"); err != nil {
			return err
		}
		delete(st.campuses, id)
		return nil
	})
}

func (r directory) GetCampus(ctx context.Context, id int64) (out domain.Campus, err error) {
	err = r.read(func(st *state) error { out, err = get(st.campuses, id, "campus"); return err })
	return out, err
}

func (r directory) ListCampuses(ctx context.Context) (out []domain.Campus, err error) {
	err = r.read(func(st *state) error { out = list(st.campuses); return nil })
	return out, err
}

// ---- members ----

func (r directory) InsertMember(ctx context.Context, m domain.Member) (domain.Member, error) {
	err := r.write(func(st *state) error {
		if _, err := get(st.universities, m.UniversityID, "university"); err != nil {
			return err
		}
		for _, o := range st.members {
			if o.Phone == m.Phone {
				return domain.Conflict("member phone %s already registered", m.Phone)
			}
		}
		m.ID = st.next("members")
		st.members[m.ID] = m
		return nil
	})
	return m, err
}

func (r directory) UpdateMember(ctx context.Context, m domain.Member) error {
	return r.write(func(st *state) error {
		if _, err := get(st.universities, m.UniversityID, "university"); err != nil {
			return err
		}
		for _, o := range st.members {
			if o.ID != m.ID && o.Phone == m.Phone {
				return domain.Conflict("member phone %s already registered", m.Phone)
			}
		}
		return replace(st.members, m.ID, m, "member")
	})
}

func (r directory) DeleteMember(ctx context.Context, id int64) error {
	return r.write(func(st *state) error {
		if _, err := get(st.members, id, "member"); err != nil {
			return err
		}
		for _, res := range st.reservations {
			if res.MemberID == id {
				return domain.Conflict("member %d has reservations", id)
			}
		}
		delete(st.members, id)
		return nil
	})
}

func (r directory) GetMember(ctx context.Context, id int64) (out domain.Member, err error) {
	err = r.read(func(st *state) error { out, err = get(st.members, id, "member"); return err })
	return out, err
}

func (r directory) ListMembers(ctx context.Context) (out []domain.Member, err error) {
	err = r.read(func(st *state) error { out = list(st.members); return nil })
	return out, err
}

// ---- specialists ----

func (r directory) InsertSpecialist(ctx context.Context, s domain.Specialist) (domain.Specialist, error) {
	err := r.write(func(st *state) error {
		if _, err := get(st.universities, s.UniversityID, "university"); err != nil {
			return err
		}
		for _, o := range st.specialists {
			if strings.EqualFold(o.Email, s.Email) {
				return domain.Conflict("specialist %s already registered", s.Email)
			}
		}
		s.ID = st.next("specialists")
		st.specialists[s.ID] = s
		return nil
	})
	return s, err
}

func (r directory) UpdateSpecialist(ctx context.Context, s domain.Specialist) error {
	return r.write(func(st *state) error {
		if _, err := get(st.universities, s.UniversityID, "university"); err != nil {
			return err
		}
		for _, o := range st.specialists {
			if o.ID != s.ID && strings.EqualFold(o.Email, s.Email) {
				return domain.Conflict("specialist %s already registered", s.Email)
			}
		}
		return replace(st.specialists, s.ID, s, "specialist")
	})
}

// DeleteSpecialist clears the moderator reference on ratings they moderated.
func (r directory) DeleteSpecialist(ctx context.Context, id int64) error {
	return r.write(func(st *state) error {
		if _, err := get(st.specialists, id, "specialist"); err != nil {
			return err
		}
		for rid, rt := range st.ratings {
			if rt.ModeratedBy != nil && *rt.ModeratedBy == id {
				rt.ModeratedBy = nil
				st.ratings[rid] = rt
			}
		}
		delete(st.specialists, id)
		return nil
	})
}

func (r directory) GetSpecialist(ctx context.Context, id int64) (out domain.Specialist, err error) {
	err = r.read(func(st *state) error { out, err = get(st.specialists, id, "specialist"); return err })
	return out, err
}

func (r directory) ListSpecialists(ctx context.Context) (out []domain.Specialist, err error) {
	err = r.read(func(st *state) error { out = list(st.specialists); return nil })
	return out, err
}

// ---- owners ----

func (r directory) UpsertOwner(ctx context.Context, o domain.Owner) (domain.Owner, error) {
	err := r.write(func(st *state) error {
		for id, cur := range st.owners {
			if strings.EqualFold(cur.Email, o.Email) {
				o.ID = id
				o.CreatedAt = cur.CreatedAt
				st.owners[id] = o
				return nil
			}
		}
		o.ID = st.next("owners")
		st.owners[o.ID] = o
		return nil
	})
	return o, err
}

func (r directory) UpdateOwner(ctx context.Context, o domain.Owner) error {
	return r.write(func(st *state) error {
		for _, cur := range st.owners {
			if cur.ID != o.ID && strings.EqualFold(cur.Email, o.Email) {
				return domain.Conflict("owner %s already registered", o.Email)
			}
		}
		return replace(st.owners, o.ID, o, "owner")
	})
}

func (r directory) DeleteOwner(ctx context.Context, id int64) error {
	return r.write(func(st *state) error {
		if _, err := get(st.owners, id, "owner"); err != nil {
			return err
		}
		for _, a := range st.accommodations {
			if a.OwnerID == id {
				return domain.Conflict("owner %d still has accommodations", id)
			}
		}
		delete(st.owners, id)
		return nil
	})
}

func (r directory) GetOwner(ctx context.Context, id int64) (out domain.Owner, err error) {
	err = r.read(func(st *state) error { out, err = get(st.owners, id, "owner"); return err })
	return out, err
}

func (r directory) ListOwners(ctx context.Context) (out []domain.Owner, err error) {
	err = r.read(func(st *state) error { out = list(st.owners); return nil })
	return out, err
}
