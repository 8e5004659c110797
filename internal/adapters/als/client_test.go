package als_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"unihaven/internal/adapters/als"
)

const hkuBody = `{
  "RequestAddress": {"AddressLine": ["Main Building"]},
  "SuggestedAddress": [{
    "Address": {"PremisesAddress": {
      "GeoAddress": "3658519520T20050430",
      "GeospatialInformation": {"Latitude": "22.28405", "Longitude": "114.13784"}
    }},
    "ValidationInformation": {"Score": 72.0}
  }]
}`

func TestClient_Lookup_RetriesThenSuccess(t *testing.T) {
	var hits int32
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(503)
		default:
			gotQuery = r.URL.Query().Get("q")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(hkuBody))
		}
	}))
	defer ts.Close()

	cl := als.New(ts.URL, 100) // high RPS for tests
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	loc, err := cl.Lookup(ctx, "Main Building")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if loc.Latitude != 22.28405 || loc.Longitude != 114.13784 {
		t.Fatalf("unexpected coords: %+v", loc)
	}
	if loc.GeoAddress != "3658519520T20050430" {
		t.Fatalf("unexpected geo address: %q", loc.GeoAddress)
	}
	if gotQuery != "Main Building" {
		t.Fatalf("query not forwarded: %q", gotQuery)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Lookup_NoSuggestion(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"SuggestedAddress": []}`))
	}))
	defer ts.Close()

	_, err := als.New(ts.URL, 100).Lookup(context.Background(), "Nowhere Tower")
	if !errors.Is(err, als.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestClient_Lookup_404IsNoMatch(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := als.New(ts.URL, 100).Lookup(context.Background(), "Main Building")
	if !errors.Is(err, als.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestClient_Lookup_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := als.New(ts.URL, 100).Lookup(context.Background(), "Main Building")
	if err == nil || errors.Is(err, als.ErrNoMatch) {
		t.Fatalf("expected a plain error for 400, got %v", err)
	}
}
