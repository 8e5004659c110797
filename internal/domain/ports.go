package domain

import "context"

type AccommodationRepository interface {
	// Write paths
	Insert(ctx context.Context, a Accommodation) (Accommodation, error)
	Update(ctx context.Context, a Accommodation) error
	Delete(ctx context.Context, id int64) error
	// Claim flips is_available true->false and reports whether it won.
	Claim(ctx context.Context, id int64) (bool, error)
	// Release sets is_available back to true.
	Release(ctx context.Context, id int64) error
	MarkUnavailable(ctx context.Context, id int64) error

	// Read paths
	Get(ctx context.Context, id int64) (Accommodation, error)
	List(ctx context.Context, pg PageQuery) (Page[Accommodation], error)
	// Available returns the listings admitted by f, minus those with an
	// overlapping active reservation, in insertion order.
	Available(ctx context.Context, f AvailabilityFilter) ([]Accommodation, error)
	RatingSummary(ctx context.Context, id int64) (avg *float64, count int, err error)
}

type ReservationRepository interface {
	Insert(ctx context.Context, r Reservation) (Reservation, error)
	SetStatus(ctx context.Context, id int64, s ReservationStatus) error

	Get(ctx context.Context, id int64) (Reservation, error)
	ListByMember(ctx context.Context, memberID int64) ([]Reservation, error)
	CountActive(ctx context.Context, accommodationID int64) (int, error)
}

type RatingRepository interface {
	Insert(ctx context.Context, r Rating) (Rating, error)
	Moderate(ctx context.Context, id int64, m Moderation) error

	Get(ctx context.Context, id int64) (Rating, error)
	List(ctx context.Context, accommodationID *int64) ([]Rating, error)
	ListPending(ctx context.Context, pg PageQuery) (Page[Rating], error)
}

// AuditRepository exposes no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, e ActionLog) (ActionLog, error)
	Query(ctx context.Context, q AuditQuery) (Page[ActionLog], error)
}

type DirectoryRepository interface {
	InsertUniversity(ctx context.Context, u University) (University, error)
	UpdateUniversity(ctx context.Context, u University) error
	DeleteUniversity(ctx context.Context, id int64) error
	GetUniversity(ctx context.Context, id int64) (University, error)
	ListUniversities(ctx context.Context) ([]University, error)

	InsertCampus(ctx context.Context, c Campus) (Campus, error)
	UpdateCampus(ctx context.Context, c Campus) error
	DeleteCampus(ctx context.Context, id int64) error
	GetCampus(ctx context.Context, id int64) (Campus, error)
	ListCampuses(ctx context.Context) ([]Campus, error)

	InsertMember(ctx context.Context, m Member) (Member, error)
	UpdateMember(ctx context.Context, m Member) error
	DeleteMember(ctx context.Context, id int64) error
	GetMember(ctx context.Context, id int64) (Member, error)
	ListMembers(ctx context.Context) ([]Member, error)

	InsertSpecialist(ctx context.Context, s Specialist) (Specialist, error)
	UpdateSpecialist(ctx context.Context, s Specialist) error
	DeleteSpecialist(ctx context.Context, id int64) error
	GetSpecialist(ctx context.Context, id int64) (Specialist, error)
	ListSpecialists(ctx context.Context) ([]Specialist, error)

	// UpsertOwner inserts or refreshes the owner keyed by email.
	UpsertOwner(ctx context.Context, o Owner) (Owner, error)
	UpdateOwner(ctx context.Context, o Owner) error
	DeleteOwner(ctx context.Context, id int64) error
	GetOwner(ctx context.Context, id int64) (Owner, error)
	ListOwners(ctx context.Context) ([]Owner, error)
}

// Repositories is one consistent view of the store: either autocommit reads
// or the inside of a transaction.
type Repositories interface {
	Accommodations() AccommodationRepository
	Reservations() ReservationRepository
	Ratings() RatingRepository
	Directory() DirectoryRepository
	Audit() AuditRepository
}

// Store runs fn atomically. Returning an error from fn rolls back every write
// made through the Repositories it was handed.
type Store interface {
	Repositories
	InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}

type AddressLookup interface {
	Lookup(ctx context.Context, buildingName string) (Location, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
