package core

import (
	"sort"
	"strings"
	"time"
)

type Region string

const (
	RegionUS Region = "US"
	RegionJP Region = "JP"
)

func Regions() []Region {
	return []Region{RegionUS, RegionJP}
}

func ParseRegion(s string) (Region, bool) {
	switch Region(strings.ToUpper(s)) {
	case RegionUS:
		return RegionUS, true
	case RegionJP:
		return RegionJP, true
	}
	return "", false
}

type Category string

const (
	CategoryTelecom        Category = "telecom"
	CategoryOnlineServices Category = "online-services"
	CategorySocialMedia    Category = "social-media"
	CategoryFinance        Category = "finance"
	CategoryGaming         Category = "gaming"
)

func Categories() []Category {
	return []Category{
		CategoryTelecom,
		CategoryOnlineServices,
		CategorySocialMedia,
		CategoryFinance,
		CategoryGaming,
	}
}

// OutageRecord is one normalized row per monitored service per scrape.
// Records are immutable once produced; a new scrape produces a whole
// new snapshot rather than mutating prior records.
type OutageRecord struct {
	Name         string   `json:"name" db:"name"`
	Severity     Severity `json:"severity" db:"severity"`
	ReportSeries []int    `json:"report_series,omitempty" db:"-"`
	Region       Region   `json:"region" db:"region"`
	Category     Category `json:"category" db:"category"`
}

// Snapshot holds the full ordered record set for one region at one
// scrape cycle.
type Snapshot struct {
	Region  Region         `json:"region"`
	CycleID string         `json:"cycle_id"`
	TakenAt time.Time      `json:"taken_at"`
	Records []OutageRecord `json:"records"`
}

// SortBySeverity orders records danger first, then warning, success,
// unknown. The sort is stable so ties keep the aggregator's merge
// order.
func (s *Snapshot) SortBySeverity() {
	sort.SliceStable(s.Records, func(i, j int) bool {
		return s.Records[i].Severity.Rank() > s.Records[j].Severity.Rank()
	})
}

// Find looks a record up by service name, case-insensitively. Stored
// names keep their original casing.
func (s *Snapshot) Find(name string) (OutageRecord, bool) {
	folded := strings.ToLower(name)
	for _, r := range s.Records {
		if strings.ToLower(r.Name) == folded {
			return r, true
		}
	}
	return OutageRecord{}, false
}

// Alarms returns the records currently at danger severity, optionally
// filtered to a single category. Empty category means all categories.
func (s *Snapshot) Alarms(category Category) []OutageRecord {
	var out []OutageRecord
	for _, r := range s.Records {
		if r.Severity != SeverityDanger {
			continue
		}
		if category != "" && r.Category != category {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Names returns every service name in the snapshot, in record order.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		names = append(names, r.Name)
	}
	return names
}
