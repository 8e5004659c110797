package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"unihaven/internal/domain"
)

type RatingService struct {
	store domain.Store
	cache readThrough
	audit auditor
	now   func() time.Time
}

func NewRatingService(s domain.Store, c domain.Cache, ttl time.Duration) *RatingService {
	return &RatingService{
		store: s,
		cache: readThrough{cache: c, ttl: ttl},
		audit: auditor{now: time.Now},
		now:   time.Now,
	}
}

func (s *RatingService) WithClock(now func() time.Time) *RatingService {
	s.now, s.audit.now = now, now
	return s
}

type RateInput struct {
	ReservationID int64
	// MemberID, when set, must be the reservation's member.
	MemberID *int64
	Score    int
	Comment  string
}

// Create rates a completed, not yet rated reservation. New ratings are
// approved until a specialist says otherwise.
func (s *RatingService) Create(ctx context.Context, in RateInput) (domain.Rating, error) {
	if in.ReservationID <= 0 {
		return domain.Rating{}, domain.Invalid("reservation_id is required")
	}
	if err := domain.ValidateScore(in.Score); err != nil {
		return domain.Rating{}, err
	}

	var rt domain.Rating
	err := s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		res, err := r.Reservations().Get(ctx, in.ReservationID)
		if err != nil {
			return err
		}
		if in.MemberID != nil && *in.MemberID != res.MemberID {
			return domain.Invalid("reservation %d does not belong to member %d", res.ID, *in.MemberID)
		}
		if !res.CanBeRated() {
			if res.HasRating {
				return domain.Conflict("reservation %d has already been rated", res.ID)
			}
			return domain.Conflict("reservation %d is %s; only completed stays can be rated", res.ID, res.Status)
		}
		now := s.now()
		rt = domain.Rating{
			AccommodationID: res.AccommodationID,
			MemberID:        res.MemberID,
			ReservationID:   res.ID,
			Score:           in.Score,
			Comment:         in.Comment,
			IsApproved:      true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if rt, err = r.Ratings().Insert(ctx, rt); err != nil {
			return err
		}
		e := entry(domain.ActionCreateRating, domain.MemberActor(res.MemberID),
			fmt.Sprintf("Rated accommodation %d with %d/%d", res.AccommodationID, rt.Score, domain.MaxScore))
		e.AccommodationID = ref(res.AccommodationID)
		e.ReservationID = ref(res.ID)
		e.RatingID = ref(rt.ID)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return domain.Rating{}, err
	}
	s.cache.del(ctx, accommodationKey(rt.AccommodationID))
	log.Info().Int64("rating_id", rt.ID).Int64("reservation_id", rt.ReservationID).Int("score", rt.Score).Msg("rating created")
	return rt, nil
}

type ModerateInput struct {
	SpecialistID *int64
	// IsApproved defaults to true when nil.
	IsApproved *bool
	Note       string
}

func (s *RatingService) Moderate(ctx context.Context, id int64, in ModerateInput) (domain.Rating, error) {
	var rt domain.Rating
	err := s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		if rt, err = r.Ratings().Get(ctx, id); err != nil {
			return err
		}
		if in.SpecialistID == nil {
			return domain.Invalid("specialist_id is required")
		}
		sp, err := r.Directory().GetSpecialist(ctx, *in.SpecialistID)
		if err != nil {
			return err
		}
		approved := true
		if in.IsApproved != nil {
			approved = *in.IsApproved
		}
		m := domain.Moderation{SpecialistID: sp.ID, IsApproved: approved, Note: in.Note, At: s.now()}
		if err := r.Ratings().Moderate(ctx, id, m); err != nil {
			return err
		}
		rt.Apply(m)
		e := entry(domain.ActionModerateRating, domain.SpecialistActor(sp.ID),
			fmt.Sprintf("Rating %s: %s", outcome(approved), in.Note))
		e.AccommodationID = ref(rt.AccommodationID)
		e.RatingID = ref(rt.ID)
		return s.audit.emit(ctx, r, e)
	})
	if err != nil {
		return domain.Rating{}, err
	}
	s.cache.del(ctx, accommodationKey(rt.AccommodationID))
	log.Info().Int64("rating_id", id).Str("outcome", outcome(rt.IsApproved)).Msg("rating moderated")
	return rt, nil
}

func outcome(approved bool) string {
	if approved {
		return "approved"
	}
	return "rejected"
}

func (s *RatingService) Get(ctx context.Context, id int64) (domain.Rating, error) {
	return s.store.Ratings().Get(ctx, id)
}

func (s *RatingService) List(ctx context.Context, accommodationID *int64) ([]domain.Rating, error) {
	return s.store.Ratings().List(ctx, accommodationID)
}

// Pending lists ratings no specialist has looked at yet, oldest first.
func (s *RatingService) Pending(ctx context.Context, pg domain.PageQuery) (domain.Page[domain.Rating], error) {
	return s.store.Ratings().ListPending(ctx, pg.Normalize(domain.PendingRatingsPageSize))
}
