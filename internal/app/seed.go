package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"unihaven/internal/domain"
)

// Dataset is reference data keyed by name; Seeder resolves names to ids.
type Dataset struct {
	Universities   []domain.University
	Campuses       []SeedCampus
	Members        []SeedPerson
	Specialists    []SeedPerson
	Owners         []domain.Owner
	Accommodations []SeedAccommodation
}

type SeedCampus struct {
	Campus     domain.Campus
	University string
}

type SeedPerson struct {
	Name, Email, Phone string
	University         string
}

type SeedAccommodation struct {
	Accommodation domain.Accommodation
	OwnerEmail    string
	Universities  []string
}

// Seeder loads a Dataset straight into the store. It writes no audit
// entries and never calls the address lookup.
type Seeder struct {
	store   domain.Store
	workers int64
	now     func() time.Time
}

func NewSeeder(s domain.Store, workers int) *Seeder {
	if workers <= 0 {
		workers = 1
	}
	return &Seeder{store: s, workers: int64(workers), now: time.Now}
}

type SeedReport struct {
	Skipped        bool
	Accommodations int
	Failed         int
}

// Seed is a no-op when the first university of ds already exists.
func (s *Seeder) Seed(ctx context.Context, ds Dataset) (SeedReport, error) {
	if len(ds.Universities) == 0 {
		return SeedReport{Skipped: true}, nil
	}
	existing, err := s.store.Directory().ListUniversities(ctx)
	if err != nil {
		return SeedReport{}, err
	}
	for _, u := range existing {
		if u.Name == ds.Universities[0].Name && u.Country == ds.Universities[0].Country {
			log.Info().Str("university", u.Name).Msg("dataset already present; skipping seed")
			return SeedReport{Skipped: true}, nil
		}
	}

	unis := map[string]int64{}
	owners := map[string]int64{}
	now := s.now()
	err = s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		d := r.Directory()
		for _, u := range ds.Universities {
			u.CreatedAt, u.UpdatedAt = now, now
			saved, err := d.InsertUniversity(ctx, u)
			if err != nil {
				return fmt.Errorf("university %s: %w", u.Name, err)
			}
			unis[u.Name] = saved.ID
		}
		for _, c := range ds.Campuses {
			campus := c.Campus
			campus.UniversityID = unis[c.University]
			campus.CreatedAt, campus.UpdatedAt = now, now
			if _, err := d.InsertCampus(ctx, campus); err != nil {
				return fmt.Errorf("campus %s: %w", campus.Name, err)
			}
		}
		for _, p := range ds.Members {
			m := domain.Member{Name: p.Name, Email: p.Email, Phone: p.Phone, UniversityID: unis[p.University],
				CreatedAt: now, UpdatedAt: now}
			if _, err := d.InsertMember(ctx, m); err != nil {
				return fmt.Errorf("member %s: %w", p.Name, err)
			}
		}
		for _, p := range ds.Specialists {
			sp := domain.Specialist{Name: p.Name, Email: p.Email, Phone: p.Phone, UniversityID: unis[p.University],
				CreatedAt: now, UpdatedAt: now}
			if _, err := d.InsertSpecialist(ctx, sp); err != nil {
				return fmt.Errorf("specialist %s: %w", p.Name, err)
			}
		}
		for _, o := range ds.Owners {
			o.CreatedAt, o.UpdatedAt = now, now
			saved, err := d.UpsertOwner(ctx, o)
			if err != nil {
				return fmt.Errorf("owner %s: %w", o.Name, err)
			}
			owners[o.Email] = saved.ID
		}
		return nil
	})
	if err != nil {
		return SeedReport{}, err
	}

	// Listings are independent of each other; load them concurrently.
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		rep SeedReport
	)
	sem := semaphore.NewWeighted(s.workers)
	for _, sa := range ds.Accommodations {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, err
		}
		wg.Add(1)
		go func(sa SeedAccommodation) {
			defer wg.Done()
			defer sem.Release(1)

			a := sa.Accommodation
			a.OwnerID = owners[sa.OwnerEmail]
			a.UniversityIDs = make([]int64, 0, len(sa.Universities))
			for _, name := range sa.Universities {
				a.UniversityIDs = append(a.UniversityIDs, unis[name])
			}
			a.IsAvailable = true
			a.CreatedAt, a.UpdatedAt = now, now

			err := s.store.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
				_, err := r.Accommodations().Insert(ctx, a)
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed++
				log.Warn().Err(err).Str("name", a.Name).Msg("seed accommodation failed")
				return
			}
			rep.Accommodations++
			log.Info().Str("name", a.Name).Msg("seed accommodation ok")
		}(sa)
	}
	wg.Wait()
	return rep, nil
}
