// Package memory is an in-process domain.Store. A transaction works on a
// private copy of the state which replaces the live state only on commit.
package memory

import (
	"context"
	"sort"
	"sync"

	"unihaven/internal/domain"
)

type state struct {
	seq map[string]int64

	accommodations map[int64]domain.Accommodation
	reservations   map[int64]domain.Reservation
	ratings        map[int64]domain.Rating
	logs           []domain.ActionLog

	universities map[int64]domain.University
	campuses     map[int64]domain.Campus
	members      map[int64]domain.Member
	specialists  map[int64]domain.Specialist
	owners       map[int64]domain.Owner
}

func newState() *state {
	return &state{
		seq:            map[string]int64{},
		accommodations: map[int64]domain.Accommodation{},
		reservations:   map[int64]domain.Reservation{},
		ratings:        map[int64]domain.Rating{},
		universities:   map[int64]domain.University{},
		campuses:       map[int64]domain.Campus{},
		members:        map[int64]domain.Member{},
		specialists:    map[int64]domain.Specialist{},
		owners:         map[int64]domain.Owner{},
	}
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *state) clone() *state {
	c := &state{
		seq:            cloneMap(s.seq),
		accommodations: make(map[int64]domain.Accommodation, len(s.accommodations)),
		reservations:   cloneMap(s.reservations),
		ratings:        cloneMap(s.ratings),
		logs:           append([]domain.ActionLog(nil), s.logs...),
		universities:   cloneMap(s.universities),
		campuses:       cloneMap(s.campuses),
		members:        cloneMap(s.members),
		specialists:    cloneMap(s.specialists),
		owners:         cloneMap(s.owners),
	}
	for id, a := range s.accommodations {
		a.UniversityIDs = append([]int64(nil), a.UniversityIDs...)
		c.accommodations[id] = a
	}
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// sortedIDs returns map keys in insertion (id) order.
func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type Store struct {
	mu sync.RWMutex
	st *state
}

func New() *Store { return &Store{st: newState()} }

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, repos{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Accommodations() domain.AccommodationRepository {
	return accommodations{repos{store: s}}
}
func (s *Store) Reservations() domain.ReservationRepository { return reservations{repos{store: s}} }
func (s *Store) Ratings() domain.RatingRepository           { return ratings{repos{store: s}} }
func (s *Store) Directory() domain.DirectoryRepository      { return directory{repos{store: s}} }
func (s *Store) Audit() domain.AuditRepository              { return audit{repos{store: s}} }

// repos is bound either to a transaction's working state (st) or to the
// store, in which case every call locks on its own.
type repos struct {
	store *Store
	st    *state
}

func (r repos) Accommodations() domain.AccommodationRepository { return accommodations{r} }
func (r repos) Reservations() domain.ReservationRepository     { return reservations{r} }
func (r repos) Ratings() domain.RatingRepository               { return ratings{r} }
func (r repos) Directory() domain.DirectoryRepository          { return directory{r} }
func (r repos) Audit() domain.AuditRepository                  { return audit{r} }

func (r repos) read(fn func(st *state) error) error {
	if r.st != nil {
		return fn(r.st)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return fn(r.store.st)
}

// write applies fn to a copy and publishes it only if fn succeeds, so a
// failed autocommit write leaves no trace.
func (r repos) write(fn func(st *state) error) error {
	if r.st != nil {
		return fn(r.st)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	work := r.store.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	r.store.st = work
	return nil
}
