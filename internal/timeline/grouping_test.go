package timeline

import (
	"testing"
	"time"

	"github.com/codepetca/pika-sub005/internal/history"
)

func TestGroupByDayTorontoBuckets(t *testing.T) {
	// Fixed Eastern offset keeps the test hermetic on hosts without tzdata.
	toronto := time.FixedZone("EST", -5*60*60)
	diffs := ComputeCharDiffs([]history.Entry{
		entryAt("e-3", 300, time.Date(2025, time.January, 16, 15, 0, 0, 0, time.UTC)),
		entryAt("e-2", 200, time.Date(2025, time.January, 15, 20, 0, 0, 0, time.UTC)),
		entryAt("e-1", 100, time.Date(2025, time.January, 15, 15, 0, 0, 0, time.UTC)),
	})

	groups := GroupByDay(diffs, toronto)
	if len(groups) != 2 {
		t.Fatalf("expected 2 date groups, got %d", len(groups))
	}
	if groups[0].Date != "2025-01-16" || groups[1].Date != "2025-01-15" {
		t.Fatalf("expected newest date first, got %s then %s", groups[0].Date, groups[1].Date)
	}
	if len(groups[0].Hours) != 1 || groups[0].Hours[0].Hour != 10 {
		t.Fatalf("unexpected hour buckets for Jan 16: %+v", groups[0].Hours)
	}
	if len(groups[1].Hours) != 2 || groups[1].Hours[0].Hour != 10 || groups[1].Hours[1].Hour != 15 {
		t.Fatalf("expected ascending hour buckets 10 and 15 for Jan 15, got %+v", groups[1].Hours)
	}
	if groups[1].Hours[0].Diffs[0].Entry.ID != "e-1" {
		t.Fatalf("expected e-1 in the 10am bucket, got %s", groups[1].Hours[0].Diffs[0].Entry.ID)
	}
	if groups[1].Hours[1].Diffs[0].Entry.ID != "e-2" {
		t.Fatalf("expected e-2 in the 3pm bucket, got %s", groups[1].Hours[1].Diffs[0].Entry.ID)
	}
}

func TestGroupByDayNilLocationUsesUTC(t *testing.T) {
	diffs := ComputeCharDiffs([]history.Entry{
		entryAt("e-1", 100, time.Date(2025, time.March, 1, 23, 30, 0, 0, time.UTC)),
	})

	groups := GroupByDay(diffs, nil)
	if len(groups) != 1 || groups[0].Date != "2025-03-01" {
		t.Fatalf("unexpected UTC grouping: %+v", groups)
	}
	if groups[0].Hours[0].Hour != 23 {
		t.Fatalf("expected hour 23, got %d", groups[0].Hours[0].Hour)
	}
}

func TestGroupByDayKeepsChronologicalOrderWithinHour(t *testing.T) {
	base := time.Date(2025, time.February, 3, 14, 5, 0, 0, time.UTC)
	diffs := ComputeCharDiffs([]history.Entry{
		entryAt("e-3", 40, base.Add(10*time.Minute)),
		entryAt("e-2", 30, base.Add(5*time.Minute)),
		entryAt("e-1", 20, base),
	})

	groups := GroupByDay(diffs, time.UTC)
	if len(groups) != 1 || len(groups[0].Hours) != 1 {
		t.Fatalf("expected one bucket, got %+v", groups)
	}
	bucket := groups[0].Hours[0]
	for i, want := range []string{"e-1", "e-2", "e-3"} {
		if bucket.Diffs[i].Entry.ID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, bucket.Diffs[i].Entry.ID)
		}
	}
}

func TestGroupByDayEmpty(t *testing.T) {
	if groups := GroupByDay(nil, time.UTC); len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}
