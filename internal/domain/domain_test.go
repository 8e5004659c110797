package domain_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"unihaven/internal/domain"
)

func day(s string) time.Time {
	t, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func TestDistance_MatchesEquirectangular(t *testing.T) {
	a := domain.Coords{Lat: 22.28405, Lon: 114.13784}
	b := domain.Coords{Lat: 22.2675, Lon: 114.12881}

	rad := func(d float64) float64 { return d * math.Pi / 180 }
	x := (rad(b.Lon) - rad(a.Lon)) * math.Cos((rad(a.Lat)+rad(b.Lat))/2)
	y := rad(b.Lat) - rad(a.Lat)
	want := 6371 * math.Sqrt(x*x+y*y)

	got := domain.Distance(a, b)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Distance = %v, want %v", got, want)
	}
	if got < 1.9 || got > 2.2 {
		t.Fatalf("HKU main to Sassoon Road should be about 2 km, got %v", got)
	}
	if domain.Distance(a, a) != 0 {
		t.Fatalf("distance to self must be 0")
	}
	if d := domain.Distance(b, a); math.Abs(d-got) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", d, got)
	}
	if r := domain.RoundKm(got); math.Abs(r-got) > 0.005 {
		t.Fatalf("RoundKm(%v) = %v", got, r)
	}
}

func TestReservationStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to domain.ReservationStatus
		ok       bool
	}{
		{domain.StatusPending, domain.StatusConfirmed, true},
		{domain.StatusPending, domain.StatusCancelled, true},
		{domain.StatusPending, domain.StatusCompleted, true},
		{domain.StatusConfirmed, domain.StatusCompleted, true},
		{domain.StatusConfirmed, domain.StatusCancelled, false},
		{domain.StatusConfirmed, domain.StatusPending, false},
		{domain.StatusCancelled, domain.StatusPending, false},
		{domain.StatusCompleted, domain.StatusCancelled, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
	if domain.EffectOf(domain.StatusCancelled) != domain.EffectReleaseAccommodation {
		t.Errorf("entering CANCELLED must release the accommodation")
	}
	if domain.EffectOf(domain.StatusCompleted) != domain.EffectEnableRating {
		t.Errorf("entering COMPLETED must enable rating")
	}
}

func TestReservation_OverlapBoundary(t *testing.T) {
	r := domain.Reservation{Status: domain.StatusConfirmed, ReservedFrom: day("2025-03-01"), ReservedTo: day("2025-04-01")}

	if r.Overlaps(day("2025-04-01"), day("2025-05-01")) {
		t.Fatalf("touching boundary must not overlap")
	}
	if !r.Overlaps(day("2025-03-31"), day("2025-05-01")) {
		t.Fatalf("one shared day must overlap")
	}
	r.Status = domain.StatusCancelled
	if r.Overlaps(day("2025-03-10"), day("2025-03-20")) {
		t.Fatalf("cancelled reservations never overlap")
	}
}

func TestAvailabilityFilter_SingleBoundSkipsOverlap(t *testing.T) {
	rs := []domain.Reservation{{Status: domain.StatusPending, ReservedFrom: day("2025-03-01"), ReservedTo: day("2025-04-01")}}

	f := domain.AvailabilityFilter{AvailableFrom: ptr(day("2025-03-10"))}
	if f.Blocked(rs) {
		t.Fatalf("single bound must not exclude overlapping reservations")
	}
	f.AvailableTo = ptr(day("2025-03-20"))
	if !f.Blocked(rs) {
		t.Fatalf("both bounds given: overlapping reservation must block")
	}
}

func TestAvailabilityFilter_Admits(t *testing.T) {
	a := domain.Accommodation{
		Type: domain.TypeApartment, IsAvailable: true, UniversityIDs: []int64{1},
		NumBeds: 4, NumBedrooms: 2, MonthlyRent: 5000,
		AvailableFrom: day("2025-01-01"), AvailableTo: day("2026-01-01"),
	}
	base := domain.AvailabilityFilter{UniversityID: 1}
	if !base.Admits(a) {
		t.Fatalf("base filter should admit listing")
	}

	rejects := map[string]domain.AvailabilityFilter{
		"other university": {UniversityID: 2},
		"type":             {UniversityID: 1, Type: domain.TypeStudio},
		"starts too late":  {UniversityID: 1, AvailableFrom: ptr(day("2024-12-31"))},
		"ends too early":   {UniversityID: 1, AvailableTo: ptr(day("2026-01-02"))},
		"beds":             {UniversityID: 1, MinBeds: ptr(5)},
		"bedrooms":         {UniversityID: 1, MinBedrooms: ptr(3)},
		"min price":        {UniversityID: 1, MinPrice: ptr(5000.01)},
		"max price":        {UniversityID: 1, MaxPrice: ptr(4999.99)},
	}
	for name, f := range rejects {
		if f.Admits(a) {
			t.Errorf("%s: listing should be rejected", name)
		}
	}

	a.IsAvailable = false
	if base.Admits(a) {
		t.Fatalf("unavailable listing admitted")
	}
}

func TestParse_ClosedEnums(t *testing.T) {
	if s, err := domain.ParseReservationStatus(" confirmed "); err != nil || s != domain.StatusConfirmed {
		t.Fatalf("ParseReservationStatus: %v, %v", s, err)
	}
	if _, err := domain.ParseReservationStatus("ARCHIVED"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown status should be a validation error, got %v", err)
	}
	if m, err := domain.ParseSortMode(""); err != nil || m != domain.SortDistance {
		t.Fatalf("empty sort_by should default to distance: %v, %v", m, err)
	}
	if _, err := domain.ParseSortMode("rating"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown sort_by should be a validation error, got %v", err)
	}
	if _, err := domain.ParseAccommodationType("castle"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown type should be a validation error, got %v", err)
	}
	if _, err := domain.ParseDay("2025/01/01"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bad date should be a validation error, got %v", err)
	}
}

func TestValidateScore(t *testing.T) {
	for _, s := range []int{domain.MinScore, 3, domain.MaxScore} {
		if err := domain.ValidateScore(s); err != nil {
			t.Errorf("score %d rejected: %v", s, err)
		}
	}
	for _, s := range []int{-1, domain.MaxScore + 1} {
		if err := domain.ValidateScore(s); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("score %d accepted", s)
		}
	}
}

func TestRating_Apply(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := domain.Rating{IsApproved: true}
	if !r.Pending() {
		t.Fatalf("fresh rating should be pending")
	}
	r.Apply(domain.Moderation{SpecialistID: 7, IsApproved: false, Note: "spam", At: now})
	if r.Pending() || r.IsApproved || *r.ModeratedBy != 7 || !r.ModerationDate.Equal(now) || r.ModerationNote != "spam" {
		t.Fatalf("moderation not applied: %+v", r)
	}
}

func TestSlice_Pages(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}
	p := domain.Slice(all, domain.PageQuery{Page: 2}.Normalize(2))
	if p.Total != 5 || len(p.Items) != 2 || p.Items[0] != 3 {
		t.Fatalf("unexpected page %+v", p)
	}
	p = domain.Slice(all, domain.PageQuery{Page: 9, Size: 2})
	if len(p.Items) != 0 || p.Items == nil {
		t.Fatalf("out-of-range page should be empty, not nil: %+v", p)
	}

	huge := domain.PageQuery{Page: math.MaxInt}.Normalize(domain.AuditPageSize)
	if huge.Offset() < 0 {
		t.Fatalf("offset overflowed: %d", huge.Offset())
	}
	p = domain.Slice(all, huge)
	if len(p.Items) != 0 || p.Total != 5 {
		t.Fatalf("huge page should be empty: %+v", p)
	}
}

func TestReservation_Validate(t *testing.T) {
	r := domain.Reservation{
		AccommodationID: 1, MemberID: 1,
		ReservedFrom: day("2025-03-01"), ReservedTo: day("2025-03-01"),
		ContactName: "Peter", ContactPhone: "12345678",
	}
	if err := r.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("zero-length stay accepted")
	}
	r.ReservedTo = day("2025-03-02")
	if err := r.Validate(); err != nil {
		t.Fatalf("valid reservation rejected: %v", err)
	}
}
