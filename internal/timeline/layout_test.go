package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/codepetca/pika-sub005/internal/history"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeStemLayoutHeightsAndColors(t *testing.T) {
	base := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	diffs := ComputeCharDiffs([]history.Entry{
		entryAt("e-4", 600, base.Add(30*time.Minute)),
		entryAt("e-3", 350, base.Add(20*time.Minute)),
		entryAt("e-2", 550, base.Add(10*time.Minute)),
		entryAt("e-1", 500, base),
	})

	layout := ComputeStemLayout(diffs, 400, time.UTC)
	if len(layout.Stems) != 4 {
		t.Fatalf("expected 4 stems, got %d", len(layout.Stems))
	}
	if !almostEqual(layout.BaselineY, 0.5) {
		t.Fatalf("expected normalized baseline 0.5, got %f", layout.BaselineY)
	}

	baseline := layout.Stems[0]
	if !baseline.IsBaseline || baseline.Color != ColorMuted || !almostEqual(baseline.Height, BaselineStemHeight) {
		t.Fatalf("unexpected baseline stem: %+v", baseline)
	}
	if !almostEqual(baseline.X, TrackPadding) {
		t.Fatalf("expected baseline at the left padding, got %f", baseline.X)
	}

	// +50 chars: sqrt(50/200) = 0.5, ten minutes into the hour on a 396px
	// usable track lands at 68.
	small := layout.Stems[1]
	if !almostEqual(small.Height, 0.5) || small.Direction != DirectionUp || small.Color != ColorSuccess {
		t.Fatalf("unexpected small addition stem: %+v", small)
	}
	if !almostEqual(small.X, 68) {
		t.Fatalf("expected x=68 ten minutes in, got %f", small.X)
	}

	// -200 chars reaches exactly full height and points down.
	deletion := layout.Stems[2]
	if !almostEqual(deletion.Height, 1) || deletion.Direction != DirectionDown || deletion.Color != ColorDanger {
		t.Fatalf("unexpected deletion stem: %+v", deletion)
	}

	// +250 chars clamps to full height and switches to the warning color.
	burst := layout.Stems[3]
	if !almostEqual(burst.Height, 1) || burst.Direction != DirectionUp || burst.Color != ColorWarning {
		t.Fatalf("unexpected oversized stem: %+v", burst)
	}
}

func TestComputeStemLayoutNudgesCrowdedStems(t *testing.T) {
	base := time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)
	diffs := ComputeCharDiffs([]history.Entry{
		entryAt("e-3", 120, base.Add(2*time.Second)),
		entryAt("e-2", 110, base.Add(time.Second)),
		entryAt("e-1", 100, base),
	})

	layout := ComputeStemLayout(diffs, 400, time.UTC)
	for i := 1; i < len(layout.Stems); i++ {
		gap := layout.Stems[i].X - layout.Stems[i-1].X
		if gap < StemWidth+StemGap {
			t.Fatalf("stems %d and %d only %f apart", i-1, i, gap)
		}
	}
}

func TestComputeStemLayoutTinyTrackStaysOrdered(t *testing.T) {
	base := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	diffs := ComputeCharDiffs([]history.Entry{
		entryAt("e-2", 110, base.Add(time.Minute)),
		entryAt("e-1", 100, base),
	})

	// Narrower than twice the padding: every stem starts at the inset and
	// relies on the nudge for separation.
	layout := ComputeStemLayout(diffs, 3, time.UTC)
	if layout.Stems[1].X <= layout.Stems[0].X {
		t.Fatalf("expected left-to-right ordering, got %f then %f", layout.Stems[0].X, layout.Stems[1].X)
	}
	if gap := layout.Stems[1].X - layout.Stems[0].X; !almostEqual(gap, StemWidth+StemGap) {
		t.Fatalf("expected the minimum gap, got %f", gap)
	}
}

func TestBaselineYCentersTrack(t *testing.T) {
	if got := BaselineY(300); !almostEqual(got, 150) {
		t.Fatalf("expected 150, got %f", got)
	}
	if got := BaselineY(0); !almostEqual(got, 0) {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestFindNearestStem(t *testing.T) {
	stems := []Stem{{X: 2}, {X: 10}, {X: 20}}

	if got := FindNearestStem(11, stems); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	// Equidistant between the first two: the lower index wins.
	if got := FindNearestStem(6, stems); got != 0 {
		t.Fatalf("expected tie to resolve to index 0, got %d", got)
	}
	if got := FindNearestStem(100, stems); got != 2 {
		t.Fatalf("expected index 2, got %d", got)
	}
	if got := FindNearestStem(5, nil); got != -1 {
		t.Fatalf("expected -1 for no stems, got %d", got)
	}
}
