package registry

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/core"
)

func tempRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.json")
	return Load(path, zap.NewNop()), path
}

func TestMergeAndPersistIdempotent(t *testing.T) {
	r, _ := tempRegistry(t)
	names := []string{"Netflix", "Spotify", "AT&T"}

	r.MergeAndPersist(core.RegionUS, names)
	first := r.Names(core.RegionUS)

	r.MergeAndPersist(core.RegionUS, names)
	second := r.Names(core.RegionUS)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second merge changed the stored set (-first +second):\n%s", diff)
	}
}

func TestMergeSortsCaseInsensitively(t *testing.T) {
	r, _ := tempRegistry(t)

	r.MergeAndPersist(core.RegionUS, []string{"iTunes", "Zoom", "AT&T", "discord"})

	want := []string{"AT&T", "discord", "iTunes", "Zoom"}
	if diff := cmp.Diff(want, r.Names(core.RegionUS)); diff != "" {
		t.Errorf("stored order mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeCollapsesCaseInsensitiveDuplicates(t *testing.T) {
	r, _ := tempRegistry(t)

	r.MergeAndPersist(core.RegionUS, []string{"Netflix"})
	r.MergeAndPersist(core.RegionUS, []string{"netflix", "NETFLIX", "Spotify"})

	want := []string{"Netflix", "Spotify"}
	if diff := cmp.Diff(want, r.Names(core.RegionUS)); diff != "" {
		t.Errorf("first-seen casing should be canonical (-want +got):\n%s", diff)
	}
}

func TestMergeGrowsMonotonically(t *testing.T) {
	r, _ := tempRegistry(t)

	r.MergeAndPersist(core.RegionUS, []string{"Netflix", "Spotify"})
	// A later cycle that no longer sees Spotify must not shrink the set.
	r.MergeAndPersist(core.RegionUS, []string{"Netflix", "Discord"})

	want := []string{"Discord", "Netflix", "Spotify"}
	if diff := cmp.Diff(want, r.Names(core.RegionUS)); diff != "" {
		t.Errorf("registry shrank (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	r, path := tempRegistry(t)
	r.MergeAndPersist(core.RegionUS, []string{"Netflix", "AT&T", "Zoom"})
	r.MergeAndPersist(core.RegionJP, []string{"LINE"})

	// Simulated restart.
	reloaded := Load(path, zap.NewNop())

	if diff := cmp.Diff(r.Names(core.RegionUS), reloaded.Names(core.RegionUS)); diff != "" {
		t.Errorf("US names changed across reload (-orig +reloaded):\n%s", diff)
	}
	if diff := cmp.Diff(r.Names(core.RegionJP), reloaded.Names(core.RegionJP)); diff != "" {
		t.Errorf("JP names changed across reload (-orig +reloaded):\n%s", diff)
	}
}

func TestRegionsAreIsolated(t *testing.T) {
	r, _ := tempRegistry(t)

	r.MergeAndPersist(core.RegionUS, []string{"Verizon Wireless"})
	r.MergeAndPersist(core.RegionJP, []string{"LINE"})

	if got := r.Names(core.RegionJP); len(got) != 1 || got[0] != "LINE" {
		t.Errorf("JP names = %v, want just LINE", got)
	}
}

func TestAllNames(t *testing.T) {
	r, _ := tempRegistry(t)

	r.MergeAndPersist(core.RegionUS, []string{"Netflix", "Zoom"})
	r.MergeAndPersist(core.RegionJP, []string{"Netflix", "LINE"})

	all := r.AllNames()
	want := []string{"LINE", "Netflix", "Zoom"}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("AllNames mismatch (-want +got):\n%s", diff)
	}
}
