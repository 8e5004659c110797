//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "unihaven/internal/adapters/http_server"
	redisad "unihaven/internal/adapters/redis"
	"unihaven/internal/app"
	"unihaven/internal/domain"
	"unihaven/internal/shared"
	mysqlstore "unihaven/internal/storage/mysql"
)

// ---------- helpers ----------

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=unihaven",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/unihaven?charset=utf8mb4", resource.GetPort("3306/tcp"))
	pool.MaxWait = 2 * time.Minute

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = mysqlstore.Open(context.Background(), dsn)
		return e
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := mysqlstore.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return res.StatusCode
}

// ---------- the test ----------

func TestHTTP_EndToEnd_SearchReserveAudit(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()
	store := mysqlstore.New(db)

	seeder := app.NewSeeder(store, 3)
	rep, err := seeder.Seed(ctx, shared.SeedData())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if rep.Skipped || rep.Accommodations != 3 || rep.Failed != 0 {
		t.Fatalf("unexpected seed report: %+v", rep)
	}
	if rep, err = seeder.Seed(ctx, shared.SeedData()); err != nil || !rep.Skipped {
		t.Fatalf("second seed should be skipped: %+v, %v", rep, err)
	}

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	srv := server.New(10 * time.Second)
	srv.MountHandlers(&server.Handlers{
		Accommodations: app.NewAccommodationService(store, nil, cache, time.Minute),
		Search:         app.NewSearchService(store, cache, time.Minute),
		Reservations:   app.NewReservationService(store, cache, time.Minute),
		Ratings:        app.NewRatingService(store, cache, time.Minute),
		Audit:          app.NewAuditService(store),
		Directory:      app.NewDirectoryService(store, cache, time.Minute),
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// Peter (member 1) studies at HKU; Sassoon Road is campus 2.
	var results []domain.SearchResult
	if code := getJSON(t, ts.URL+"/api/accommodations/search?member_id=1&campus_id=2&available_from=2025-03-01&available_to=2025-04-01", &results); code != http.StatusOK {
		t.Fatalf("search status %d", code)
	}
	if len(results) != 2 {
		t.Fatalf("want 2 HKU listings, got %d", len(results))
	}
	target := results[0].ID

	// Warm the detail cache so the reservation must invalidate it.
	var view domain.AccommodationView
	getJSON(t, fmt.Sprintf("%s/api/accommodations/%d", ts.URL, target), &view)
	if !view.IsAvailable || !mr.Exists(fmt.Sprintf("%saccommodation:%d", redisad.KeyPrefix, target)) {
		t.Fatalf("detail not cached or not available: %+v", view)
	}

	// Concurrent reservers: exactly one wins.
	const racers = 6
	body, _ := json.Marshal(map[string]any{
		"member_id":     1,
		"reserved_from": "2025-03-01",
		"reserved_to":   "2025-04-01",
		"contact_name":  "Peter",
		"contact_phone": "12345678",
	})
	reserveURL := fmt.Sprintf("%s/api/accommodations/%d/reserve", ts.URL, target)
	var wg sync.WaitGroup
	codes := make(chan int, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := http.Post(reserveURL, "application/json", bytes.NewReader(body))
			if err != nil {
				codes <- 0
				return
			}
			res.Body.Close()
			codes <- res.StatusCode
		}()
	}
	wg.Wait()
	close(codes)
	won := 0
	for c := range codes {
		switch c {
		case http.StatusCreated:
			won++
		case http.StatusConflict:
		default:
			t.Fatalf("unexpected reserve status %d", c)
		}
	}
	if won != 1 {
		t.Fatalf("want exactly one winning reservation, got %d", won)
	}

	getJSON(t, fmt.Sprintf("%s/api/accommodations/%d", ts.URL, target), &view)
	if view.IsAvailable {
		t.Fatalf("stale cached detail after reservation")
	}

	// The reserved listing drops out of an overlapping search.
	getJSON(t, ts.URL+"/api/accommodations/search?member_id=1&available_from=2025-03-15&available_to=2025-05-01", &results)
	for _, r := range results {
		if r.ID == target {
			t.Fatalf("reserved listing %d still returned", target)
		}
	}

	var logs domain.Page[domain.ActionLog]
	if code := getJSON(t, fmt.Sprintf("%s/api/action-logs?action_type=CREATE_RESERVATION&accommodation_id=%d", ts.URL, target), &logs); code != http.StatusOK {
		t.Fatalf("action-logs status %d", code)
	}
	if logs.Total != 1 || logs.Items[0].ActorType != domain.ActorMember {
		t.Fatalf("unexpected audit page: %+v", logs)
	}
}
