package registry

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/core"
)

// Registry is the durable list of every service name ever observed,
// per region. It grows monotonically: each cycle unions the freshly
// seen names into the stored set and rewrites the whole file. Names
// keep their first-seen casing; deduplication is case-insensitive.
type Registry struct {
	mu     sync.Mutex
	path   string
	names  map[core.Region][]string
	logger *zap.Logger
}

// Load reads the registry file, or starts empty when it does not
// exist yet.
func Load(path string, logger *zap.Logger) *Registry {
	r := &Registry{
		path:   path,
		names:  make(map[core.Region][]string),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read registry file", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("No registry file yet, starting empty", zap.String("path", path))
		}
		return r
	}

	var stored map[core.Region][]string
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn("Registry file is corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return r
	}
	r.names = stored

	logger.Info("Registry loaded", zap.String("path", path), zap.Int("regions", len(stored)))
	return r
}

// MergeAndPersist unions seen into the stored set for region, sorts
// the result case-insensitively, and writes the file back before
// returning. Case-insensitive duplicates collapse to the first-seen
// casing. A write failure is logged only; the in-memory merge sticks
// either way. Merging the same set twice is a no-op.
func (r *Registry) MergeAndPersist(region core.Region, seen []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make(map[string]struct{}, len(r.names[region]))
	for _, n := range r.names[region] {
		existing[strings.ToLower(n)] = struct{}{}
	}

	merged := append([]string(nil), r.names[region]...)
	for _, n := range seen {
		key := strings.ToLower(n)
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}
		merged = append(merged, n)
	}

	sort.Slice(merged, func(i, j int) bool {
		return strings.ToLower(merged[i]) < strings.ToLower(merged[j])
	})
	r.names[region] = merged

	if err := r.persist(); err != nil {
		r.logger.Error("Failed to persist registry", zap.String("path", r.path), zap.Error(err))
	}
}

func (r *Registry) persist() error {
	data, err := json.MarshalIndent(r.names, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

// Names returns a copy of the stored names for region.
func (r *Registry) Names(region core.Region) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names[region]...)
}

// AllNames returns the union of every region's names, sorted
// case-insensitively with exact duplicates collapsed.
func (r *Registry) AllNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	var all []string
	for _, names := range r.names {
		for _, n := range names {
			key := strings.ToLower(n)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return strings.ToLower(all[i]) < strings.ToLower(all[j])
	})
	return all
}
