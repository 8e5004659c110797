package domain

import (
	"strings"
	"time"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusCompleted ReservationStatus = "COMPLETED"
)

func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch st := ReservationStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, nil
	}
	return "", Invalid("invalid status value %q", s)
}

// Active reservations hold their accommodation.
func (s ReservationStatus) Active() bool {
	switch s {
	case StatusPending, StatusConfirmed:
		return true
	case StatusCancelled, StatusCompleted:
		return false
	}
	return false
}

// CanTransition encodes the lifecycle:
//
//	PENDING   -> CONFIRMED | CANCELLED | COMPLETED
//	CONFIRMED -> COMPLETED
//	CANCELLED, COMPLETED are terminal.
func (s ReservationStatus) CanTransition(to ReservationStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled || to == StatusCompleted
	case StatusConfirmed:
		return to == StatusCompleted
	case StatusCancelled, StatusCompleted:
		return false
	}
	return false
}

// TransitionEffect is the side effect keyed on the state being entered.
type TransitionEffect int

const (
	EffectNone TransitionEffect = iota
	EffectReleaseAccommodation
	EffectEnableRating
)

func EffectOf(to ReservationStatus) TransitionEffect {
	switch to {
	case StatusCancelled:
		return EffectReleaseAccommodation
	case StatusCompleted:
		return EffectEnableRating
	case StatusPending, StatusConfirmed:
		return EffectNone
	}
	return EffectNone
}

type Reservation struct {
	ID              int64             `json:"id"`
	AccommodationID int64             `json:"accommodation_id"`
	MemberID        int64             `json:"member_id"`
	ReservedFrom    time.Time         `json:"reserved_from"`
	ReservedTo      time.Time         `json:"reserved_to"`
	ContactName     string            `json:"contact_name"`
	ContactPhone    string            `json:"contact_phone"`
	Status          ReservationStatus `json:"status"`
	// HasRating is derived from the ratings table on read.
	HasRating bool      `json:"has_rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanBeRated is the single gate checked before a rating is created.
func (r Reservation) CanBeRated() bool {
	return r.Status == StatusCompleted && !r.HasRating
}

func (r Reservation) CanBeCancelled() bool { return r.Status == StatusPending }

// Overlaps reports whether an active reservation intersects [from, to) using
// the half-open test: touching boundaries do not overlap.
func (r Reservation) Overlaps(from, to time.Time) bool {
	return r.Status.Active() && r.ReservedFrom.Before(to) && r.ReservedTo.After(from)
}

func (r Reservation) Validate() error {
	switch {
	case r.AccommodationID <= 0:
		return Invalid("accommodation is required")
	case r.MemberID <= 0:
		return Invalid("member_id is required")
	case r.ReservedFrom.IsZero() || r.ReservedTo.IsZero():
		return Invalid("reserved_from and reserved_to are required")
	case !r.ReservedFrom.Before(r.ReservedTo):
		return Invalid("reserved_from must be before reserved_to")
	case strings.TrimSpace(r.ContactName) == "":
		return Invalid("contact_name is required")
	case strings.TrimSpace(r.ContactPhone) == "":
		return Invalid("contact_phone is required")
	}
	return nil
}
