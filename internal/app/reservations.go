package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"unihaven/internal/adapters/observability"
	"unihaven/internal/domain"
)

// ReservationService is the reservation state machine. Each operation is one
// transaction covering the status change, the availability flag and the
// audit entry.
type ReservationService struct {
	store domain.Store
	cache readThrough
	audit auditor
	now   func() time.Time
}

func NewReservationService(s domain.Store, c domain.Cache, ttl time.Duration) *ReservationService {
	return &ReservationService{
		store: s,
		cache: readThrough{cache: c, ttl: ttl},
		audit: auditor{now: time.Now},
		now:   time.Now,
	}
}

func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now, s.audit.now = now, now
	return s
}

// ReserveInput dates are YYYY-MM-DD; they are parsed only after the
// availability check.
type ReserveInput struct {
	MemberID     int64
	ReservedFrom string
	ReservedTo   string
	ContactName  string
	ContactPhone string
}

func parseStay(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, domain.Invalid("reserved_from and reserved_to are required")
	}
	f, err := domain.ParseDay(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := domain.ParseDay(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return f, t, nil
}

// Reserve creates a PENDING reservation and takes the accommodation off the
// market. An unavailable accommodation is a conflict whatever the input.
func (s *ReservationService) Reserve(ctx context.Context, accommodationID int64, in ReserveInput) (domain.Reservation, error) {
	acc, err := s.bookable(ctx, accommodationID)
	if err != nil {
		return domain.Reservation{}, err
	}

	from, to, err := parseStay(in.ReservedFrom, in.ReservedTo)
	if err != nil {
		return domain.Reservation{}, err
	}
	now := s.now()
	res := domain.Reservation{
		AccommodationID: accommodationID,
		MemberID:        in.MemberID,
		ReservedFrom:    from,
		ReservedTo:      to,
		ContactName:     in.ContactName,
		ContactPhone:    in.ContactPhone,
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := res.Validate(); err != nil {
		return domain.Reservation{}, err
	}

	err = s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		if _, err := r.Directory().GetMember(ctx, in.MemberID); err != nil {
			return err
		}
		// Compare-and-set: concurrent reservers race here and exactly one wins.
		if err := claim(ctx, r, accommodationID); err != nil {
			return err
		}
		var err error
		if res, err = r.Reservations().Insert(ctx, res); err != nil {
			return err
		}
		e := entry(domain.ActionCreateReservation, domain.MemberActor(res.MemberID),
			fmt.Sprintf("Created reservation for '%s'", acc.Name))
		e.AccommodationID = ref(accommodationID)
		e.ReservationID = ref(res.ID)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.cache.del(ctx, accommodationKey(accommodationID))
	observability.ObserveTransition("", string(domain.StatusPending))
	log.Info().
		Int64("reservation_id", res.ID).
		Int64("accommodation_id", accommodationID).
		Int64("member_id", res.MemberID).
		Msg("reservation created")
	return res, nil
}

// CheckBookable reports NotFound or Conflict for a listing that cannot take a
// reservation right now, whatever the request carries.
func (s *ReservationService) CheckBookable(ctx context.Context, accommodationID int64) error {
	_, err := s.bookable(ctx, accommodationID)
	return err
}

func (s *ReservationService) bookable(ctx context.Context, id int64) (domain.Accommodation, error) {
	acc, err := s.store.Accommodations().Get(ctx, id)
	if err != nil {
		return domain.Accommodation{}, err
	}
	if !acc.IsAvailable {
		return domain.Accommodation{}, domain.Conflict("accommodation not available")
	}
	return acc, nil
}

// Cancel is allowed only while PENDING; it reopens the accommodation.
func (s *ReservationService) Cancel(ctx context.Context, id int64) (domain.Reservation, error) {
	var res domain.Reservation
	err := s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		if res, err = r.Reservations().Get(ctx, id); err != nil {
			return err
		}
		if !res.CanBeCancelled() {
			if res.Status == domain.StatusConfirmed {
				return domain.Conflict("cannot cancel a confirmed reservation")
			}
			return domain.Conflict("cannot cancel a %s reservation", res.Status)
		}
		old := res.Status
		if err := r.Reservations().SetStatus(ctx, id, domain.StatusCancelled); err != nil {
			return err
		}
		if err := release(ctx, r, res.AccommodationID); err != nil {
			return err
		}
		res.Status = domain.StatusCancelled
		res.UpdatedAt = s.now()
		e := entry(domain.ActionCancelReservation, domain.MemberActor(res.MemberID),
			fmt.Sprintf("Reservation cancelled; status changed from %s to %s", old, domain.StatusCancelled))
		e.AccommodationID = ref(res.AccommodationID)
		e.ReservationID = ref(res.ID)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	s.cache.del(ctx, accommodationKey(res.AccommodationID))
	observability.ObserveTransition(string(domain.StatusPending), string(domain.StatusCancelled))
	log.Info().Int64("reservation_id", id).Msg("reservation cancelled")
	return res, nil
}

// UpdateStatus applies a generic transition. Side effects depend only on the
// state being entered.
func (s *ReservationService) UpdateStatus(ctx context.Context, id int64, status string) (domain.Reservation, error) {
	to, err := domain.ParseReservationStatus(status)
	if err != nil {
		return domain.Reservation{}, err
	}

	var res domain.Reservation
	var from domain.ReservationStatus
	err = s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		if res, err = r.Reservations().Get(ctx, id); err != nil {
			return err
		}
		from = res.Status
		if !from.CanTransition(to) {
			if from == domain.StatusConfirmed && to == domain.StatusCancelled {
				return domain.Conflict("cannot cancel a confirmed reservation")
			}
			return domain.Conflict("cannot change reservation status from %s to %s", from, to)
		}
		if err := r.Reservations().SetStatus(ctx, id, to); err != nil {
			return err
		}
		switch domain.EffectOf(to) {
		case domain.EffectReleaseAccommodation:
			if err := release(ctx, r, res.AccommodationID); err != nil {
				return err
			}
		case domain.EffectEnableRating:
			// Eligibility follows from the status itself; see Reservation.CanBeRated.
		case domain.EffectNone:
		}
		res.Status = to
		res.UpdatedAt = s.now()
		e := entry(domain.ActionUpdateReservation, domain.MemberActor(res.MemberID),
			fmt.Sprintf("Reservation status updated from %s to %s", from, to))
		e.AccommodationID = ref(res.AccommodationID)
		e.ReservationID = ref(res.ID)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	s.cache.del(ctx, accommodationKey(res.AccommodationID))
	observability.ObserveTransition(string(from), string(to))
	log.Info().
		Int64("reservation_id", id).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("reservation status updated")
	return res, nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (domain.Reservation, error) {
	return s.store.Reservations().Get(ctx, id)
}

func (s *ReservationService) ListByMember(ctx context.Context, memberID int64) ([]domain.Reservation, error) {
	if _, err := s.store.Directory().GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	return s.store.Reservations().ListByMember(ctx, memberID)
}
