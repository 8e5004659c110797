package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"unihaven/internal/domain"
)

// DirectoryService manages reference data: universities, campuses, members,
// specialists and owners. None of it is audited.
type DirectoryService struct {
	store domain.Store
	cache readThrough
	now   func() time.Time
}

func NewDirectoryService(s domain.Store, c domain.Cache, ttl time.Duration) *DirectoryService {
	return &DirectoryService{store: s, cache: readThrough{cache: c, ttl: ttl}, now: time.Now}
}

func (s *DirectoryService) WithClock(now func() time.Time) *DirectoryService {
	s.now = now
	return s
}

func (s *DirectoryService) dir() domain.DirectoryRepository { return s.store.Directory() }

// ---- universities ----

func (s *DirectoryService) CreateUniversity(ctx context.Context, u domain.University) (domain.University, error) {
	if err := u.Validate(); err != nil {
		return domain.University{}, err
	}
	u.ID = 0
	u.CreatedAt, u.UpdatedAt = s.now(), s.now()
	u, err := s.dir().InsertUniversity(ctx, u)
	if err != nil {
		return domain.University{}, err
	}
	log.Info().Int64("university_id", u.ID).Str("name", u.Name).Msg("university created")
	return u, nil
}

func (s *DirectoryService) UpdateUniversity(ctx context.Context, id int64, u domain.University) (domain.University, error) {
	cur, err := s.dir().GetUniversity(ctx, id)
	if err != nil {
		return domain.University{}, err
	}
	if err := u.Validate(); err != nil {
		return domain.University{}, err
	}
	u.ID, u.CreatedAt, u.UpdatedAt = id, cur.CreatedAt, s.now()
	return u, s.dir().UpdateUniversity(ctx, u)
}

func (s *DirectoryService) DeleteUniversity(ctx context.Context, id int64) error {
	return s.dir().DeleteUniversity(ctx, id)
}

func (s *DirectoryService) GetUniversity(ctx context.Context, id int64) (domain.University, error) {
	return s.dir().GetUniversity(ctx, id)
}

func (s *DirectoryService) ListUniversities(ctx context.Context) ([]domain.University, error) {
	return s.dir().ListUniversities(ctx)
}

// ---- campuses ----

func (s *DirectoryService) CreateCampus(ctx context.Context, c domain.Campus) (domain.Campus, error) {
	if err := c.Validate(); err != nil {
		return domain.Campus{}, err
	}
	c.ID = 0
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	return s.dir().InsertCampus(ctx, c)
}

func (s *DirectoryService) UpdateCampus(ctx context.Context, id int64, c domain.Campus) (domain.Campus, error) {
	cur, err := s.dir().GetCampus(ctx, id)
	if err != nil {
		return domain.Campus{}, err
	}
	if err := c.Validate(); err != nil {
		return domain.Campus{}, err
	}
	c.ID, c.CreatedAt, c.UpdatedAt = id, cur.CreatedAt, s.now()
	if err := s.dir().UpdateCampus(ctx, c); err != nil {
		return domain.Campus{}, err
	}
	s.cache.del(ctx, campusKey(id))
	return c, nil
}

func (s *DirectoryService) DeleteCampus(ctx context.Context, id int64) error {
	if err := s.dir().DeleteCampus(ctx, id); err != nil {
		return err
	}
	s.cache.del(ctx, campusKey(id))
	return nil
}

func (s *DirectoryService) GetCampus(ctx context.Context, id int64) (domain.Campus, error) {
	return s.dir().GetCampus(ctx, id)
}

func (s *DirectoryService) ListCampuses(ctx context.Context) ([]domain.Campus, error) {
	return s.dir().ListCampuses(ctx)
}

// ---- members ----

func (s *DirectoryService) CreateMember(ctx context.Context, m domain.Member) (domain.Member, error) {
	if err := m.Validate(); err != nil {
		return domain.Member{}, err
	}
	m.ID = 0
	m.CreatedAt, m.UpdatedAt = s.now(), s.now()
	return s.dir().InsertMember(ctx, m)
}

func (s *DirectoryService) UpdateMember(ctx context.Context, id int64, m domain.Member) (domain.Member, error) {
	cur, err := s.dir().GetMember(ctx, id)
	if err != nil {
		return domain.Member{}, err
	}
	if err := m.Validate(); err != nil {
		return domain.Member{}, err
	}
	m.ID, m.CreatedAt, m.UpdatedAt = id, cur.CreatedAt, s.now()
	return m, s.dir().UpdateMember(ctx, m)
}

func (s *DirectoryService) DeleteMember(ctx context.Context, id int64) error {
	return s.dir().DeleteMember(ctx, id)
}

func (s *DirectoryService) GetMember(ctx context.Context, id int64) (domain.Member, error) {
	return s.dir().GetMember(ctx, id)
}

func (s *DirectoryService) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return s.dir().ListMembers(ctx)
}

// ---- specialists ----

func (s *DirectoryService) CreateSpecialist(ctx context.Context, sp domain.Specialist) (domain.Specialist, error) {
	if err := sp.Validate(); err != nil {
		return domain.Specialist{}, err
	}
	sp.ID = 0
	sp.CreatedAt, sp.UpdatedAt = s.now(), s.now()
	return s.dir().InsertSpecialist(ctx, sp)
}

func (s *DirectoryService) UpdateSpecialist(ctx context.Context, id int64, sp domain.Specialist) (domain.Specialist, error) {
	cur, err := s.dir().GetSpecialist(ctx, id)
	if err != nil {
		return domain.Specialist{}, err
	}
	if err := sp.Validate(); err != nil {
		return domain.Specialist{}, err
	}
	sp.ID, sp.CreatedAt, sp.UpdatedAt = id, cur.CreatedAt, s.now()
	return sp, s.dir().UpdateSpecialist(ctx, sp)
}

func (s *DirectoryService) DeleteSpecialist(ctx context.Context, id int64) error {
	return s.dir().DeleteSpecialist(ctx, id)
}

func (s *DirectoryService) GetSpecialist(ctx context.Context, id int64) (domain.Specialist, error) {
	return s.dir().GetSpecialist(ctx, id)
}

func (s *DirectoryService) ListSpecialists(ctx context.Context) ([]domain.Specialist, error) {
	return s.dir().ListSpecialists(ctx)
}

// ---- owners ----

// CreateOwner upserts by email, same as accommodation creation does.
func (s *DirectoryService) CreateOwner(ctx context.Context, o domain.Owner) (domain.Owner, error) {
	if err := o.Validate(); err != nil {
		return domain.Owner{}, err
	}
	o.ID = 0
	o.CreatedAt, o.UpdatedAt = s.now(), s.now()
	return s.dir().UpsertOwner(ctx, o)
}

func (s *DirectoryService) UpdateOwner(ctx context.Context, id int64, o domain.Owner) (domain.Owner, error) {
	cur, err := s.dir().GetOwner(ctx, id)
	if err != nil {
		return domain.Owner{}, err
	}
	if err := o.Validate(); err != nil {
		return domain.Owner{}, err
	}
	o.ID, o.CreatedAt, o.UpdatedAt = id, cur.CreatedAt, s.now()
	return o, s.dir().UpdateOwner(ctx, o)
}

func (s *DirectoryService) DeleteOwner(ctx context.Context, id int64) error {
	return s.dir().DeleteOwner(ctx, id)
}

func (s *DirectoryService) GetOwner(ctx context.Context, id int64) (domain.Owner, error) {
	return s.dir().GetOwner(ctx, id)
}

func (s *DirectoryService) ListOwners(ctx context.Context) ([]domain.Owner, error) {
	return s.dir().ListOwners(ctx)
}
