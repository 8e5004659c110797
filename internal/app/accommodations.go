package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"unihaven/internal/domain"
)

type AccommodationService struct {
	store  domain.Store
	lookup domain.AddressLookup
	cache  readThrough
	audit  auditor
	now    func() time.Time
}

func NewAccommodationService(s domain.Store, l domain.AddressLookup, c domain.Cache, ttl time.Duration) *AccommodationService {
	return &AccommodationService{
		store:  s,
		lookup: l,
		cache:  readThrough{cache: c, ttl: ttl},
		audit:  auditor{now: time.Now},
		now:    time.Now,
	}
}

// WithClock replaces the time source; tests use it for deterministic stamps.
func (s *AccommodationService) WithClock(now func() time.Time) *AccommodationService {
	s.now, s.audit.now = now, now
	return s
}

// AccommodationInput carries the writable listing fields plus attribution.
type AccommodationInput struct {
	Accommodation domain.Accommodation
	Owner         domain.Owner
	SpecialistID  *int64
}

func (s *AccommodationService) Create(ctx context.Context, in AccommodationInput) (domain.Accommodation, error) {
	a := in.Accommodation
	if err := s.locate(ctx, &a); err != nil {
		return domain.Accommodation{}, err
	}
	if err := a.Validate(); err != nil {
		return domain.Accommodation{}, err
	}
	if err := in.Owner.Validate(); err != nil {
		return domain.Accommodation{}, err
	}
	now := s.now()
	a.ID = 0
	a.IsAvailable = true
	a.AvailableFrom, a.AvailableTo = domain.Day(a.AvailableFrom), domain.Day(a.AvailableTo)
	a.CreatedAt, a.UpdatedAt = now, now

	err := s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		actor, err := specialistActor(ctx, r, in.SpecialistID)
		if err != nil {
			return err
		}
		owner := in.Owner
		owner.CreatedAt, owner.UpdatedAt = now, now
		if owner, err = r.Directory().UpsertOwner(ctx, owner); err != nil {
			return err
		}
		a.OwnerID = owner.ID
		if a, err = r.Accommodations().Insert(ctx, a); err != nil {
			return err
		}
		e := entry(domain.ActionCreateAccommodation, actor,
			fmt.Sprintf("Created accommodation '%s' with universities %v", a.Name, a.UniversityIDs))
		e.AccommodationID = ref(a.ID)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return domain.Accommodation{}, err
	}
	log.Info().Int64("accommodation_id", a.ID).Str("name", a.Name).Msg("accommodation created")
	return a, nil
}

// Update replaces the listing's mutable fields. Availability is not writable
// here.
func (s *AccommodationService) Update(ctx context.Context, id int64, in AccommodationInput) (domain.Accommodation, error) {
	cur, err := s.store.Accommodations().Get(ctx, id)
	if err != nil {
		return domain.Accommodation{}, err
	}
	a := in.Accommodation
	if err := s.locate(ctx, &a); err != nil {
		return domain.Accommodation{}, err
	}
	if err := a.Validate(); err != nil {
		return domain.Accommodation{}, err
	}
	if err := in.Owner.Validate(); err != nil {
		return domain.Accommodation{}, err
	}
	now := s.now()
	a.ID = cur.ID
	a.IsAvailable = cur.IsAvailable
	a.CreatedAt, a.UpdatedAt = cur.CreatedAt, now
	a.AvailableFrom, a.AvailableTo = domain.Day(a.AvailableFrom), domain.Day(a.AvailableTo)

	err = s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		actor, err := specialistActor(ctx, r, in.SpecialistID)
		if err != nil {
			return err
		}
		owner := in.Owner
		owner.CreatedAt, owner.UpdatedAt = now, now
		if owner, err = r.Directory().UpsertOwner(ctx, owner); err != nil {
			return err
		}
		a.OwnerID = owner.ID
		if err := r.Accommodations().Update(ctx, a); err != nil {
			return err
		}
		e := entry(domain.ActionUpdateAccommodation, actor, fmt.Sprintf("Updated accommodation '%s'", a.Name))
		e.AccommodationID = ref(a.ID)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return domain.Accommodation{}, err
	}
	s.cache.del(ctx, accommodationKey(id))
	return a, nil
}

func (s *AccommodationService) MarkUnavailable(ctx context.Context, id int64, specialistID *int64) error {
	err := s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		a, err := r.Accommodations().Get(ctx, id)
		if err != nil {
			return err
		}
		actor, err := specialistActor(ctx, r, specialistID)
		if err != nil {
			return err
		}
		if err := withdraw(ctx, r, id); err != nil {
			return err
		}
		e := entry(domain.ActionMarkUnavailable, actor, fmt.Sprintf("Marked accommodation '%s' as unavailable", a.Name))
		e.AccommodationID = ref(id)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return err
	}
	s.cache.del(ctx, accommodationKey(id))
	log.Info().Int64("accommodation_id", id).Msg("accommodation marked unavailable")
	return nil
}

// Delete refuses while any PENDING or CONFIRMED reservation exists and
// returns the deleted listing's name.
func (s *AccommodationService) Delete(ctx context.Context, id int64, specialistID *int64) (string, error) {
	var name string
	err := s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		a, err := r.Accommodations().Get(ctx, id)
		if err != nil {
			return err
		}
		n, err := r.Reservations().CountActive(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.Conflict("cannot delete accommodation with active reservations")
		}
		actor, err := specialistActor(ctx, r, specialistID)
		if err != nil {
			return err
		}
		if err := r.Accommodations().Delete(ctx, id); err != nil {
			return err
		}
		name = a.Name
		e := entry(domain.ActionDeleteAccommodation, actor, fmt.Sprintf("Deleted accommodation '%s'", a.Name))
		e.AccommodationID = ref(id)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return "", err
	}
	s.cache.del(ctx, accommodationKey(id))
	log.Info().Int64("accommodation_id", id).Str("name", name).Msg("accommodation deleted")
	return name, nil
}

// Reconcile recomputes is_available from the listing's active reservations.
func (s *AccommodationService) Reconcile(ctx context.Context, id int64, specialistID *int64) (domain.Accommodation, error) {
	var out domain.Accommodation
	err := s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		a, err := r.Accommodations().Get(ctx, id)
		if err != nil {
			return err
		}
		actor, err := specialistActor(ctx, r, specialistID)
		if err != nil {
			return err
		}
		before, after, err := reconcile(ctx, r, a)
		if err != nil {
			return err
		}
		a.IsAvailable = after
		out = a
		if before == after {
			return nil
		}
		e := entry(domain.ActionUpdateAccommodation, actor,
			fmt.Sprintf("Reconciled availability of '%s' from %t to %t", a.Name, before, after))
		e.AccommodationID = ref(id)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return domain.Accommodation{}, err
	}
	s.cache.del(ctx, accommodationKey(id))
	return out, nil
}

func (s *AccommodationService) Get(ctx context.Context, id int64) (domain.AccommodationView, error) {
	key := accommodationKey(id)
	var v domain.AccommodationView
	if s.cache.get(ctx, key, &v) {
		return v, nil
	}
	a, err := s.store.Accommodations().Get(ctx, id)
	if err != nil {
		return domain.AccommodationView{}, err
	}
	avg, n, err := s.store.Accommodations().RatingSummary(ctx, id)
	if err != nil {
		return domain.AccommodationView{}, err
	}
	v = domain.AccommodationView{Accommodation: a, AverageRating: avg, RatingCount: n}
	s.cache.set(ctx, key, v)
	return v, nil
}

func (s *AccommodationService) List(ctx context.Context, pg domain.PageQuery) (domain.Page[domain.Accommodation], error) {
	return s.store.Accommodations().List(ctx, pg.Normalize(domain.AuditPageSize))
}

// locate fills coordinates and geo_address from the lookup service when the
// listing names a building without them.
func (s *AccommodationService) locate(ctx context.Context, a *domain.Accommodation) error {
	if !a.NeedsLookup() {
		return nil
	}
	if s.lookup == nil {
		return fmt.Errorf("%w: lookup service unavailable. Please enter location data manually", domain.ErrLookup)
	}
	loc, err := s.lookup.Lookup(ctx, a.BuildingName)
	if err != nil {
		log.Warn().Err(err).Str("building", a.BuildingName).Msg("address lookup failed")
		return fmt.Errorf("%w: %v. Please enter location data manually", domain.ErrLookup, err)
	}
	a.Latitude, a.Longitude, a.GeoAddress = loc.Latitude, loc.Longitude, loc.GeoAddress
	return nil
}
