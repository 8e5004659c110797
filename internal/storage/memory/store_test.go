package memory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"unihaven/internal/domain"
	"unihaven/internal/storage/memory"
)

func fixture(t *testing.T, s *memory.Store) (domain.Accommodation, domain.Member) {
	t.Helper()
	ctx := context.Background()
	d := s.Directory()
	u, err := d.InsertUniversity(ctx, domain.University{Name: "HKU", Country: "China"})
	if err != nil {
		t.Fatalf("university: %v", err)
	}
	m, err := d.InsertMember(ctx, domain.Member{Name: "Peter", Phone: "12345678", UniversityID: u.ID})
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	o, err := d.UpsertOwner(ctx, domain.Owner{Name: "George", Email: "george@example.com"})
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	a, err := s.Accommodations().Insert(ctx, domain.Accommodation{
		Name: "A Building", BuildingName: "A Building", Type: domain.TypeApartment,
		OwnerID: o.ID, UniversityIDs: []int64{u.ID}, IsAvailable: true,
		AvailableFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		AvailableTo:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("accommodation: %v", err)
	}
	return a, m
}

func TestInTx_RollbackDiscardsEveryWrite(t *testing.T) {
	s := memory.New()
	a, m := fixture(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(ctx context.Context, r domain.Repositories) error {
		if won, err := r.Accommodations().Claim(ctx, a.ID); err != nil || !won {
			t.Fatalf("claim: %v %v", won, err)
		}
		if _, err := r.Reservations().Insert(ctx, domain.Reservation{AccommodationID: a.ID, MemberID: m.ID, Status: domain.StatusPending}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if _, err := r.Audit().Append(ctx, domain.ActionLog{ActionType: domain.ActionCreateReservation, EventID: "e1"}); err != nil {
			t.Fatalf("append: %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v", err)
	}

	got, _ := s.Accommodations().Get(ctx, a.ID)
	if !got.IsAvailable {
		t.Fatalf("claim survived rollback")
	}
	if rs, _ := s.Reservations().ListByMember(ctx, m.ID); len(rs) != 0 {
		t.Fatalf("reservation survived rollback: %+v", rs)
	}
	page, _ := s.Audit().Query(ctx, domain.AuditQuery{Page: domain.PageQuery{Page: 1, Size: 20}})
	if page.Total != 0 {
		t.Fatalf("audit entry survived rollback")
	}
}

func TestClaim_ConcurrentExactlyOneWinner(t *testing.T) {
	s := memory.New()
	a, _ := fixture(t, s)
	ctx := context.Background()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := s.Accommodations().Claim(ctx, a.ID)
			if err == nil && won {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("want 1 winner, got %d", wins)
	}
}

func TestAvailable_ExcludesOverlapOnlyWithBothBounds(t *testing.T) {
	s := memory.New()
	a, m := fixture(t, s)
	ctx := context.Background()
	if _, err := s.Reservations().Insert(ctx, domain.Reservation{
		AccommodationID: a.ID, MemberID: m.ID, Status: domain.StatusConfirmed,
		ReservedFrom: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ReservedTo:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("insert reservation: %v", err)
	}
	from := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	boundary := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	f := domain.AvailabilityFilter{UniversityID: a.UniversityIDs[0], AvailableFrom: &from}
	if got, _ := s.Accommodations().Available(ctx, f); len(got) != 1 {
		t.Fatalf("single bound: want 1, got %d", len(got))
	}
	f.AvailableTo = &to
	if got, _ := s.Accommodations().Available(ctx, f); len(got) != 0 {
		t.Fatalf("overlapping window: want 0, got %d", len(got))
	}
	f.AvailableFrom = &boundary
	if got, _ := s.Accommodations().Available(ctx, f); len(got) != 1 {
		t.Fatalf("boundary window: want 1, got %d", len(got))
	}
}

func TestDirectory_Constraints(t *testing.T) {
	s := memory.New()
	a, m := fixture(t, s)
	ctx := context.Background()
	d := s.Directory()

	if _, err := d.InsertUniversity(ctx, domain.University{Name: "hku", Country: "china"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate university: %v", err)
	}
	if _, err := d.InsertMember(ctx, domain.Member{Name: "Twin", Phone: m.Phone, UniversityID: m.UniversityID}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate phone: %v", err)
	}
	if err := d.DeleteUniversity(ctx, m.UniversityID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("deleting a referenced university: %v", err)
	}
	o, err := d.UpsertOwner(ctx, domain.Owner{Name: "George Jr", Email: "george@example.com"})
	if err != nil || o.ID != a.OwnerID {
		t.Fatalf("upsert should refresh the existing owner: %+v %v", o, err)
	}
	if _, err := d.GetMember(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing member: %v", err)
	}
}
