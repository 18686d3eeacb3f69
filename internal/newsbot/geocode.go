package newsbot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/config"
)

// Coord is a geocoded point for one outage-map location string.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves free-text outage-map locations via Nominatim,
// with a persisted cache keyed by the raw location string. A miss is
// retried once with the location truncated at its first comma before
// giving up.
type Geocoder struct {
	mu     sync.Mutex
	cfg    config.NewsConfig
	client *http.Client
	cache  map[string]Coord
	pace   time.Duration
	logger *zap.Logger
}

func NewGeocoder(cfg config.NewsConfig, logger *zap.Logger) *Geocoder {
	g := &Geocoder{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		cache:  make(map[string]Coord),
		pace:   200 * time.Millisecond,
		logger: logger,
	}
	g.loadCache()
	return g
}

func (g *Geocoder) loadCache() {
	data, err := os.ReadFile(g.cfg.GeoCachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warn("Failed to read geocode cache", zap.Error(err))
		}
		return
	}
	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.Warn("Geocode cache is corrupt, starting empty", zap.Error(err))
		g.cache = make(map[string]Coord)
	}
}

// Geocode resolves location to coordinates. Not-found after the
// truncated retry returns (zero, false); nothing raises.
func (g *Geocoder) Geocode(ctx context.Context, location string) (Coord, bool) {
	g.mu.Lock()
	if c, ok := g.cache[location]; ok {
		g.mu.Unlock()
		g.logger.Debug("Geocode cache hit", zap.String("location", location))
		return c, true
	}
	g.mu.Unlock()

	coord, found := g.query(ctx, location)
	if !found {
		// Trailing region qualifiers often confuse the lookup; retry
		// on just the leading part.
		if idx := strings.Index(location, ","); idx > 0 {
			coord, found = g.query(ctx, location[:idx])
		}
	}
	if !found {
		g.logger.Warn("Geocode miss", zap.String("location", location))
		return Coord{}, false
	}

	g.store(location, coord)
	return coord, true
}

func (g *Geocoder) query(ctx context.Context, location string) (Coord, bool) {
	endpoint := g.cfg.GeoEndpoint + "?format=json&limit=1&q=" + url.QueryEscape(location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Coord{}, false
	}
	req.Header.Set("User-Agent", g.cfg.GeoUserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("Geocode request failed", zap.String("location", location), zap.Error(err))
		return Coord{}, false
	}
	defer resp.Body.Close()

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		g.logger.Warn("Geocode response malformed", zap.String("location", location), zap.Error(err))
		return Coord{}, false
	}
	if len(results) == 0 {
		return Coord{}, false
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return Coord{}, false
	}

	// Pacing against the public endpoint's usage policy.
	time.Sleep(g.pace)

	return Coord{Lat: lat, Lon: lon}, true
}

func (g *Geocoder) store(location string, c Coord) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cache[location] = c

	data, err := json.Marshal(g.cache)
	if err != nil {
		g.logger.Error("Failed to encode geocode cache", zap.Error(err))
		return
	}
	if err := os.WriteFile(g.cfg.GeoCachePath, data, 0o644); err != nil {
		g.logger.Error("Failed to persist geocode cache", zap.Error(err))
	}
}
