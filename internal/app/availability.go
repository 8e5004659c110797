package app

import (
	"context"

	"unihaven/internal/domain"
)

// The helpers below are the only code that changes is_available. All of them
// take transaction-bound Repositories.

// claim takes an available accommodation for a new reservation.
func claim(ctx context.Context, r domain.Repositories, accommodationID int64) error {
	ok, err := r.Accommodations().Claim(ctx, accommodationID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Conflict("accommodation %d is not available", accommodationID)
	}
	return nil
}

func release(ctx context.Context, r domain.Repositories, accommodationID int64) error {
	return r.Accommodations().Release(ctx, accommodationID)
}

func withdraw(ctx context.Context, r domain.Repositories, accommodationID int64) error {
	return r.Accommodations().MarkUnavailable(ctx, accommodationID)
}

// reconcile recomputes the flag from active reservations and reports the
// value before and after.
func reconcile(ctx context.Context, r domain.Repositories, a domain.Accommodation) (before, after bool, err error) {
	n, err := r.Reservations().CountActive(ctx, a.ID)
	if err != nil {
		return false, false, err
	}
	before, after = a.IsAvailable, n == 0
	switch {
	case before == after:
	case after:
		err = release(ctx, r, a.ID)
	default:
		err = withdraw(ctx, r, a.ID)
	}
	return before, after, err
}

// specialistActor resolves an optional specialist attribution; no id means
// the system acted.
func specialistActor(ctx context.Context, r domain.Repositories, id *int64) (domain.Actor, error) {
	if id == nil {
		return domain.System(), nil
	}
	sp, err := r.Directory().GetSpecialist(ctx, *id)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.SpecialistActor(sp.ID), nil
}
