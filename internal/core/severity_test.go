package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityDanger, 3},
		{SeverityWarning, 2},
		{SeveritySuccess, 1},
		{SeverityUnknown, 0},
		{Severity("bogus"), 0},
	}

	for _, tt := range tests {
		if got := tt.severity.Rank(); got != tt.want {
			t.Errorf("Rank(%q) = %d, want %d", tt.severity, got, tt.want)
		}
	}

	if !(SeverityDanger.Rank() > SeverityWarning.Rank() &&
		SeverityWarning.Rank() > SeveritySuccess.Rank() &&
		SeveritySuccess.Rank() > SeverityUnknown.Rank()) {
		t.Error("severity ranks are not a strict total order")
	}
}

func TestSeverityFromClasses(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   Severity
	}{
		{"danger token", []string{"sparkline", "danger"}, SeverityDanger},
		{"warning token", []string{"sparkline", "warning", "mb-2"}, SeverityWarning},
		{"success token", []string{"success"}, SeveritySuccess},
		{"first match wins", []string{"warning", "danger"}, SeverityWarning},
		{"no token defaults to success", []string{"sparkline", "mb-2"}, SeveritySuccess},
		{"empty", nil, SeveritySuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeverityFromClasses(tt.tokens); got != tt.want {
				t.Errorf("SeverityFromClasses(%v) = %q, want %q", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestSnapshotSortBySeverity(t *testing.T) {
	snap := &Snapshot{
		Region: RegionUS,
		Records: []OutageRecord{
			{Name: "A", Severity: SeveritySuccess},
			{Name: "B", Severity: SeverityDanger},
			{Name: "C", Severity: SeverityWarning},
			{Name: "D", Severity: SeverityDanger},
			{Name: "E", Severity: SeverityUnknown},
			{Name: "F", Severity: SeverityWarning},
		},
	}
	snap.SortBySeverity()

	var names []string
	for _, r := range snap.Records {
		names = append(names, r.Name)
	}

	// Stable: B before D, C before F.
	want := []string{"B", "D", "C", "F", "A", "E"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("sorted order mismatch (-want +got):\n%s", diff)
	}

	for i := 1; i < len(snap.Records); i++ {
		if snap.Records[i-1].Severity.Rank() < snap.Records[i].Severity.Rank() {
			t.Errorf("record %d outranks record %d", i, i-1)
		}
	}
}

func TestSnapshotFind(t *testing.T) {
	snap := &Snapshot{
		Records: []OutageRecord{
			{Name: "Netflix", Severity: SeverityDanger},
		},
	}

	if _, ok := snap.Find("netflix"); !ok {
		t.Error("Find should be case-insensitive")
	}
	if _, ok := snap.Find("Spotify"); ok {
		t.Error("Find returned a record for an absent name")
	}
}

func TestSnapshotAlarms(t *testing.T) {
	snap := &Snapshot{
		Records: []OutageRecord{
			{Name: "A", Severity: SeverityDanger, Category: CategoryTelecom},
			{Name: "B", Severity: SeverityWarning, Category: CategoryTelecom},
			{Name: "C", Severity: SeverityDanger, Category: CategoryGaming},
		},
	}

	all := snap.Alarms("")
	if len(all) != 2 {
		t.Fatalf("Alarms(\"\") returned %d records, want 2", len(all))
	}

	gaming := snap.Alarms(CategoryGaming)
	if len(gaming) != 1 || gaming[0].Name != "C" {
		t.Errorf("Alarms(gaming) = %v, want just C", gaming)
	}
}
