package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"unihaven/internal/app"
	"unihaven/internal/domain"
	"unihaven/internal/shared"
	"unihaven/internal/storage/memory"
)

// ---- helpers ----

type stubLookup struct{ loc domain.Location }

func (s stubLookup) Lookup(ctx context.Context, building string) (domain.Location, error) {
	return s.loc, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New()
	if _, err := app.NewSeeder(store, 2).Seed(context.Background(), shared.SeedData()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	lookup := stubLookup{loc: domain.Location{Latitude: 22.3, Longitude: 114.2, GeoAddress: "3658519520T20050430"}}
	srv := New(5 * time.Second)
	srv.MountHandlers(&Handlers{
		Accommodations: app.NewAccommodationService(store, lookup, nil, time.Minute),
		Search:         app.NewSearchService(store, nil, time.Minute),
		Reservations:   app.NewReservationService(store, nil, time.Minute),
		Ratings:        app.NewRatingService(store, nil, time.Minute),
		Audit:          app.NewAuditService(store),
		Directory:      app.NewDirectoryService(store, nil, time.Minute),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func accommodationID(t *testing.T, ts *httptest.Server, name string) int64 {
	t.Helper()
	var page domain.Page[domain.Accommodation]
	if code := do(t, ts, http.MethodGet, "/api/accommodations?page_size=50", nil, &page); code != http.StatusOK {
		t.Fatalf("list status %d", code)
	}
	for _, a := range page.Items {
		if a.Name == name {
			return a.ID
		}
	}
	t.Fatalf("accommodation %q not seeded", name)
	return 0
}

func stay(from, to string) map[string]any {
	return map[string]any{
		"member_id":     1,
		"reserved_from": from,
		"reserved_to":   to,
		"contact_name":  "Peter",
		"contact_phone": "12345678",
	}
}

// ---- tests ----

func TestHTTP_ReserveThenCancel(t *testing.T) {
	ts := newTestServer(t)
	id := accommodationID(t, ts, "A Building")

	var res domain.Reservation
	if code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/accommodations/%d/reserve", id), stay("2025-03-01", "2025-04-01"), &res); code != http.StatusCreated {
		t.Fatalf("reserve status %d", code)
	}
	if res.Status != domain.StatusPending || res.AccommodationID != id {
		t.Fatalf("unexpected reservation: %+v", res)
	}

	var view domain.AccommodationView
	do(t, ts, http.MethodGet, fmt.Sprintf("/api/accommodations/%d", id), nil, &view)
	if view.IsAvailable {
		t.Fatalf("accommodation still available after reserve")
	}

	var p problem
	if code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/accommodations/%d/reserve", id), stay("2025-05-01", "2025-06-01"), &p); code != http.StatusConflict {
		t.Fatalf("second reserve status %d", code)
	}

	var msg statusMessage
	if code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel/", res.ID), nil, &msg); code != http.StatusOK {
		t.Fatalf("cancel status %d", code)
	}
	if msg.Status != "Reservation cancelled successfully" {
		t.Fatalf("cancel message %q", msg.Status)
	}
	do(t, ts, http.MethodGet, fmt.Sprintf("/api/accommodations/%d", id), nil, &view)
	if !view.IsAvailable {
		t.Fatalf("accommodation not released after cancel")
	}

	if code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel", res.ID), nil, &p); code != http.StatusConflict {
		t.Fatalf("double cancel status %d", code)
	}

	var logs domain.Page[domain.ActionLog]
	if code := do(t, ts, http.MethodGet, fmt.Sprintf("/api/action-logs?accommodation_id=%d", id), nil, &logs); code != http.StatusOK {
		t.Fatalf("action-logs status %d", code)
	}
	if logs.Total != 2 {
		t.Fatalf("want 2 audit entries, got %d", logs.Total)
	}
	seen := map[domain.ActionType]bool{}
	for _, e := range logs.Items {
		seen[e.ActionType] = true
		if e.IPAddress == "" {
			t.Fatalf("audit entry without ip: %+v", e)
		}
	}
	if !seen[domain.ActionCreateReservation] || !seen[domain.ActionCancelReservation] {
		t.Fatalf("unexpected actions: %v", seen)
	}
}

func TestHTTP_UnavailableIsConflictBeforeValidation(t *testing.T) {
	ts := newTestServer(t)
	id := accommodationID(t, ts, "B Building")

	if code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/accommodations/%d/mark_unavailable", id), map[string]any{"specialist_id": 1}, nil); code != http.StatusOK {
		t.Fatalf("mark_unavailable status %d", code)
	}
	var p problem
	if code := do(t, ts, http.MethodPost, "/api/reservations", map[string]any{"accommodation_id": id}, &p); code != http.StatusConflict {
		t.Fatalf("want 409 for unavailable listing, got %d (%+v)", code, p)
	}
}

func TestHTTP_UnavailableIsConflictForMalformedBody(t *testing.T) {
	ts := newTestServer(t)
	a := accommodationID(t, ts, "A Building")
	b := accommodationID(t, ts, "B Building")
	if code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/accommodations/%d/mark_unavailable", b), nil, nil); code != http.StatusOK {
		t.Fatalf("mark_unavailable status %d", code)
	}

	post := func(id int64) int {
		res, err := http.Post(fmt.Sprintf("%s/api/accommodations/%d/reserve", ts.URL, id), "application/json", strings.NewReader(`{"member_id":`))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		res.Body.Close()
		return res.StatusCode
	}
	if code := post(b); code != http.StatusConflict {
		t.Fatalf("unavailable listing: want 409, got %d", code)
	}
	if code := post(a); code != http.StatusBadRequest {
		t.Fatalf("available listing: want 400, got %d", code)
	}
	if code := post(9999); code != http.StatusNotFound {
		t.Fatalf("unknown listing: want 404, got %d", code)
	}
}

func TestHTTP_HugePageIsEmpty(t *testing.T) {
	ts := newTestServer(t)
	var pending domain.Page[domain.Rating]
	if code := do(t, ts, http.MethodGet, "/api/ratings/pending?page=9223372036854775807", nil, &pending); code != http.StatusOK {
		t.Fatalf("pending: want 200, got %d", code)
	}
	if len(pending.Items) != 0 {
		t.Fatalf("huge page should be empty: %+v", pending)
	}
	var p problem
	if code := do(t, ts, http.MethodGet, "/api/action-logs?page=9223372036854775807", nil, &p); code != http.StatusNotFound {
		t.Fatalf("action-logs: want 404, got %d (%+v)", code, p)
	}
}

func TestHTTP_ReserveValidation(t *testing.T) {
	ts := newTestServer(t)
	id := accommodationID(t, ts, "A Building")

	var p problem
	code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/accommodations/%d/reserve", id), stay("2025-04-01", "2025-03-01"), &p)
	if code != http.StatusBadRequest || p.Status != http.StatusBadRequest {
		t.Fatalf("want 400, got %d (%+v)", code, p)
	}
	if code := do(t, ts, http.MethodPost, "/api/reservations", stay("2025-03-01", "2025-04-01"), &p); code != http.StatusBadRequest {
		t.Fatalf("missing accommodation_id: want 400, got %d", code)
	}
	if code := do(t, ts, http.MethodGet, "/api/accommodations/9999", nil, &p); code != http.StatusNotFound {
		t.Fatalf("unknown accommodation: want 404, got %d", code)
	}
}

func TestHTTP_Search(t *testing.T) {
	ts := newTestServer(t)

	var p problem
	if code := do(t, ts, http.MethodGet, "/api/accommodations/search", nil, &p); code != http.StatusBadRequest {
		t.Fatalf("search without member: want 400, got %d", code)
	}
	if code := do(t, ts, http.MethodGet, "/api/accommodations/search?member_id=1&sort_by=cheapest", nil, &p); code != http.StatusBadRequest {
		t.Fatalf("bad sort_by: want 400, got %d", code)
	}

	var out []domain.SearchResult
	if code := do(t, ts, http.MethodGet, "/api/accommodations/search?member_id=1&campus_id=2", nil, &out); code != http.StatusOK {
		t.Fatalf("search status %d", code)
	}
	// Peter is at HKU: buildings A and B only.
	if len(out) != 2 {
		t.Fatalf("want 2 results, got %d", len(out))
	}
	for _, r := range out {
		if r.Name == "C Building" {
			t.Fatalf("HKUST-only listing leaked into HKU search")
		}
		if r.Distance == nil {
			t.Fatalf("distance missing on %s", r.Name)
		}
	}
}

func TestHTTP_RatingLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := accommodationID(t, ts, "A Building")

	var res domain.Reservation
	do(t, ts, http.MethodPost, fmt.Sprintf("/api/accommodations/%d/reserve", id), stay("2025-03-01", "2025-04-01"), &res)

	var p problem
	if code := do(t, ts, http.MethodPost, "/api/ratings", map[string]any{"reservation_id": res.ID, "score": 4}, &p); code != http.StatusConflict {
		t.Fatalf("rating a pending stay: want 409, got %d", code)
	}
	for _, st := range []string{"CONFIRMED", "COMPLETED"} {
		if code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/reservations/%d/update-status", res.ID), map[string]any{"status": st}, &res); code != http.StatusOK {
			t.Fatalf("update-status %s: %d", st, code)
		}
	}

	if code := do(t, ts, http.MethodPost, "/api/ratings", map[string]any{"reservation_id": res.ID, "score": 9}, &p); code != http.StatusBadRequest {
		t.Fatalf("out of range score: want 400, got %d", code)
	}
	var rt domain.Rating
	if code := do(t, ts, http.MethodPost, "/api/ratings", map[string]any{"reservation_id": res.ID, "score": 0}, &rt); code != http.StatusCreated {
		t.Fatalf("create rating status %d", code)
	}
	if rt.Score != 0 || !rt.IsApproved {
		t.Fatalf("unexpected rating %+v", rt)
	}
	if code := do(t, ts, http.MethodPost, "/api/ratings", map[string]any{"reservation_id": res.ID, "score": 3}, &p); code != http.StatusConflict {
		t.Fatalf("second rating: want 409, got %d", code)
	}

	var pending domain.Page[domain.Rating]
	do(t, ts, http.MethodGet, "/api/ratings/pending", nil, &pending)
	if pending.Total != 1 || pending.PageSize != domain.PendingRatingsPageSize {
		t.Fatalf("unexpected pending page %+v", pending)
	}

	if code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/ratings/%d/moderate", rt.ID), map[string]any{"is_approved": false}, &p); code != http.StatusBadRequest {
		t.Fatalf("moderate without specialist: want 400, got %d", code)
	}
	var mod moderateResponse
	body := map[string]any{"specialist_id": 1, "is_approved": false, "moderation_note": "spam"}
	if code := do(t, ts, http.MethodPost, fmt.Sprintf("/api/ratings/%d/moderate", rt.ID), body, &mod); code != http.StatusOK {
		t.Fatalf("moderate status %d", code)
	}
	if mod.Status != "Rating rejected" || mod.Rating.IsApproved || mod.Rating.ModeratedBy == nil {
		t.Fatalf("unexpected moderation %+v", mod)
	}

	var list []domain.Rating
	do(t, ts, http.MethodGet, fmt.Sprintf("/api/ratings?accommodation=%d", id), nil, &list)
	if len(list) != 1 {
		t.Fatalf("want 1 rating for accommodation, got %d", len(list))
	}
}

func TestHTTP_AccommodationCreateAndDelete(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{
		"name":           "D Building",
		"building_name":  "D Building",
		"type":           "studio",
		"num_bedrooms":   1,
		"num_beds":       1,
		"address":        "Pok Fu Lam",
		"available_from": "2025-01-01",
		"available_to":   "2025-12-31",
		"monthly_rent":   4200,
		"owner":          map[string]any{"name": "Mia", "email": "mia@example.com"},
		"university_ids": []int64{1},
		"specialist_id":  1,
	}
	var a domain.Accommodation
	if code := do(t, ts, http.MethodPost, "/api/accommodations", body, &a); code != http.StatusCreated {
		t.Fatalf("create status %d", code)
	}
	if a.GeoAddress != "3658519520T20050430" || a.Latitude == 0 {
		t.Fatalf("lookup result not applied: %+v", a)
	}

	delete(body, "owner")
	var p problem
	if code := do(t, ts, http.MethodPost, "/api/accommodations", body, &p); code != http.StatusBadRequest {
		t.Fatalf("missing owner: want 400, got %d", code)
	}

	var msg statusMessage
	if code := do(t, ts, http.MethodDelete, fmt.Sprintf("/api/accommodations/%d", a.ID), nil, &msg); code != http.StatusOK {
		t.Fatalf("delete status %d", code)
	}
	if msg.Status != "Accommodation 'D Building' successfully deleted" {
		t.Fatalf("delete message %q", msg.Status)
	}
}

func TestHTTP_DirectoryCRUD(t *testing.T) {
	ts := newTestServer(t)

	var p problem
	if code := do(t, ts, http.MethodPost, "/api/universities", map[string]any{"name": "PolyU"}, &p); code != http.StatusBadRequest {
		t.Fatalf("missing country: want 400, got %d", code)
	}
	if !strings.Contains(p.Detail, "country") {
		t.Fatalf("detail should name the field: %q", p.Detail)
	}

	var u domain.University
	if code := do(t, ts, http.MethodPost, "/api/universities/", map[string]any{"name": "PolyU", "country": "China"}, &u); code != http.StatusCreated {
		t.Fatalf("create university status %d", code)
	}
	if code := do(t, ts, http.MethodPost, "/api/universities", map[string]any{"name": "PolyU", "country": "China"}, &p); code != http.StatusConflict {
		t.Fatalf("duplicate university: want 409, got %d", code)
	}

	var c domain.Campus
	campus := map[string]any{"name": "Hung Hom", "university_id": u.ID, "latitude": 22.3045, "longitude": 114.1799}
	if code := do(t, ts, http.MethodPost, "/api/campuses", campus, &c); code != http.StatusCreated {
		t.Fatalf("create campus status %d", code)
	}

	var rs []domain.Reservation
	if code := do(t, ts, http.MethodGet, "/api/members/1/reservations", nil, &rs); code != http.StatusOK {
		t.Fatalf("member reservations status %d", code)
	}
	if code := do(t, ts, http.MethodGet, "/api/members/99/reservations", nil, &p); code != http.StatusNotFound {
		t.Fatalf("unknown member: want 404, got %d", code)
	}
}
