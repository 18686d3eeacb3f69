package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/cache"
	"github.com/jmpark/outageboard/internal/config"
	"github.com/jmpark/outageboard/internal/core"
	"github.com/jmpark/outageboard/internal/metrics"
	"github.com/jmpark/outageboard/internal/registry"
)

type fakeScraper struct {
	snaps map[core.Region]*core.Snapshot
	calls int
}

func (f *fakeScraper) Scrape(_ context.Context, region core.Region) (*core.Snapshot, error) {
	f.calls++
	if snap, ok := f.snaps[region]; ok {
		return snap, nil
	}
	return nil, context.DeadlineExceeded
}

func usSnapshot() *core.Snapshot {
	return &core.Snapshot{
		Region:  core.RegionUS,
		CycleID: "test-cycle",
		TakenAt: time.Now(),
		Records: []core.OutageRecord{
			{Name: "Netflix", Severity: core.SeverityDanger, Region: core.RegionUS, Category: core.CategoryOnlineServices, ReportSeries: []int{5, 9, 14}},
			{Name: "Verizon", Severity: core.SeverityDanger, Region: core.RegionUS, Category: core.CategoryTelecom},
			{Name: "Spotify", Severity: core.SeveritySuccess, Region: core.RegionUS, Category: core.CategoryOnlineServices},
		},
	}
}

func newTestRouter(t *testing.T, scraper *fakeScraper) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	statusCache := cache.NewStatusCache(scraper, logger)
	reg := registry.Load(filepath.Join(t.TempDir(), "companies_list.json"), logger)
	collector := metrics.NewCollector(config.RemoteWriteConfig{}, prometheus.NewRegistry())

	h := NewHandler(statusCache, reg, nil, nil, nil, nil, collector, logger)

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/api/v1/regions", h.ListRegions)
	router.GET("/api/v1/regions/:region/snapshot", h.GetSnapshot)
	router.GET("/api/v1/regions/:region/services/:name", h.GetService)
	router.GET("/api/v1/regions/:region/services/:name/history", h.GetServiceHistory)
	router.GET("/api/v1/regions/:region/alarms", h.GetAlarms)
	router.GET("/api/v1/registry/:region", h.GetRegistry)
	router.GET("/api/v1/news", h.SearchNews)
	router.GET("/api/v1/geocode", h.GeocodeLocation)

	return router, h
}

func doGet(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var body map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
		}
	}
	return w, body
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, &fakeScraper{})

	w, body := doGet(t, router, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
}

func TestGetSnapshotBeforeFirstScrape(t *testing.T) {
	router, _ := newTestRouter(t, &fakeScraper{})

	w, body := doGet(t, router, "/api/v1/regions/US/snapshot")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if body["error"] != "no snapshot available" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestGetSnapshotServesCachedRegion(t *testing.T) {
	router, h := newTestRouter(t, &fakeScraper{})
	h.cache.Replace(usSnapshot())

	w, body := doGet(t, router, "/api/v1/regions/us/snapshot")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	records, ok := body["records"].([]any)
	if !ok || len(records) != 3 {
		t.Fatalf("records = %v, want 3 entries", body["records"])
	}
}

func TestGetSnapshotUnknownRegion(t *testing.T) {
	router, _ := newTestRouter(t, &fakeScraper{})

	w, _ := doGet(t, router, "/api/v1/regions/EU/snapshot")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetServiceScrapesOnMiss(t *testing.T) {
	scraper := &fakeScraper{snaps: map[core.Region]*core.Snapshot{core.RegionUS: usSnapshot()}}
	router, _ := newTestRouter(t, scraper)

	w, body := doGet(t, router, "/api/v1/regions/US/services/netflix")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body["found"] != true || body["severity"] != "danger" {
		t.Errorf("body = %v, want found danger entry", body)
	}
	if scraper.calls != 1 {
		t.Fatalf("scraper called %d times, want 1", scraper.calls)
	}

	// Second lookup is served from cache.
	doGet(t, router, "/api/v1/regions/US/services/Netflix")
	if scraper.calls != 1 {
		t.Errorf("scraper called %d times after cached lookup, want 1", scraper.calls)
	}
}

func TestGetServiceUnmonitoredName(t *testing.T) {
	scraper := &fakeScraper{snaps: map[core.Region]*core.Snapshot{core.RegionUS: usSnapshot()}}
	router, _ := newTestRouter(t, scraper)

	w, body := doGet(t, router, "/api/v1/regions/US/services/nosuchservice")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even for unmonitored names", w.Code)
	}
	if body["found"] != false || body["severity"] != "unknown" {
		t.Errorf("body = %v, want found=false severity=unknown", body)
	}
}

func TestGetAlarmsCategoryFilter(t *testing.T) {
	router, h := newTestRouter(t, &fakeScraper{})
	h.cache.Replace(usSnapshot())

	_, body := doGet(t, router, "/api/v1/regions/US/alarms")
	if alarms := body["alarms"].([]any); len(alarms) != 2 {
		t.Errorf("got %d alarms, want 2", len(alarms))
	}

	_, body = doGet(t, router, "/api/v1/regions/US/alarms?category=telecom")
	alarms := body["alarms"].([]any)
	if len(alarms) != 1 {
		t.Fatalf("got %d telecom alarms, want 1", len(alarms))
	}
	if rec := alarms[0].(map[string]any); rec["name"] != "Verizon" {
		t.Errorf("alarm = %v, want Verizon", rec)
	}
}

func TestGetRegistryGrowsWithSnapshots(t *testing.T) {
	router, h := newTestRouter(t, &fakeScraper{})

	_, body := doGet(t, router, "/api/v1/registry/US")
	if names := body["names"].([]any); len(names) != 0 {
		t.Fatalf("fresh registry names = %v, want empty", names)
	}

	snap := usSnapshot()
	h.registry.MergeAndPersist(core.RegionUS, snap.Names())

	_, body = doGet(t, router, "/api/v1/registry/US")
	if names := body["names"].([]any); len(names) != 3 {
		t.Errorf("names = %v, want 3 entries", names)
	}
}

func TestGetServiceHistoryNotConfigured(t *testing.T) {
	router, _ := newTestRouter(t, &fakeScraper{})

	w, _ := doGet(t, router, "/api/v1/regions/US/services/netflix/history")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a history store", w.Code)
	}
}

func TestSearchNewsRequiresService(t *testing.T) {
	router, _ := newTestRouter(t, &fakeScraper{})

	w, _ := doGet(t, router, "/api/v1/news")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGeocodeRequiresLocation(t *testing.T) {
	router, _ := newTestRouter(t, &fakeScraper{})

	w, _ := doGet(t, router, "/api/v1/geocode")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
