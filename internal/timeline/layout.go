package timeline

import (
	"math"
	"time"
)

// StemDirection tells the widget which side of the zero line a stem grows to.
type StemDirection string

// StemColor selects the widget palette entry for a stem.
type StemColor string

const (
	DirectionUp   StemDirection = "up"
	DirectionDown StemDirection = "down"

	ColorMuted   StemColor = "muted"
	ColorSuccess StemColor = "success"
	ColorDanger  StemColor = "danger"
	ColorWarning StemColor = "warning"
)

const (
	// TrackPadding is the horizontal inset, in pixels, on either side of
	// the hour track.
	TrackPadding = 2.0
	// StemWidth and StemGap define the minimum center spacing between
	// adjacent stems.
	StemWidth = 2.0
	StemGap   = 1.0
	// BaselineStemHeight is the fixed normalized height of the marker for
	// the oldest entry.
	BaselineStemHeight = 0.15
	// ReferenceCharMagnitude is the character delta that maps to full stem
	// height. Larger deltas clamp to 1 and switch to the warning color.
	ReferenceCharMagnitude = 200.0
)

// Stem describes one bar in an hour track.
type Stem struct {
	EntryID    string        `json:"entryId"`
	X          float64       `json:"x"`
	Height     float64       `json:"height"`
	Direction  StemDirection `json:"direction"`
	Color      StemColor     `json:"color"`
	IsBaseline bool          `json:"isBaseline"`
}

// StemLayout is the positioned stem set for one hour track. BaselineY is
// normalized; pixel callers use the BaselineY function instead.
type StemLayout struct {
	Stems     []Stem  `json:"stems"`
	BaselineY float64 `json:"baselineY"`
}

// ComputeStemLayout positions one hour bucket's diffs along a track of the
// given pixel width. X grows with seconds into the local hour; height is
// square-root compressed against ReferenceCharMagnitude and clamped to
// [0, 1]. Stems packed tighter than StemWidth+StemGap are nudged right so
// each remains clickable. A nil location falls back to UTC.
func ComputeStemLayout(diffs []CharDiff, trackWidth float64, loc *time.Location) StemLayout {
	if loc == nil {
		loc = time.UTC
	}
	usable := trackWidth - 2*TrackPadding
	if usable < 0 {
		usable = 0
	}

	stems := make([]Stem, 0, len(diffs))
	for _, diff := range diffs {
		local := diff.Entry.CreatedAt.In(loc)
		secondsIntoHour := float64(local.Minute()*60 + local.Second())
		stem := Stem{
			EntryID: diff.Entry.ID,
			X:       TrackPadding + secondsIntoHour/3600*usable,
		}
		if diff.IsBaseline {
			stem.IsBaseline = true
			stem.Height = BaselineStemHeight
			stem.Direction = DirectionUp
			stem.Color = ColorMuted
		} else {
			magnitude := math.Abs(float64(diff.CharDiff))
			stem.Height = clamp(math.Sqrt(magnitude)/math.Sqrt(ReferenceCharMagnitude), 0, 1)
			if diff.CharDiff < 0 {
				stem.Direction = DirectionDown
				stem.Color = ColorDanger
			} else {
				stem.Direction = DirectionUp
				stem.Color = ColorSuccess
			}
			if magnitude > ReferenceCharMagnitude {
				stem.Color = ColorWarning
			}
		}
		stems = append(stems, stem)
	}
	spreadStems(stems)

	return StemLayout{Stems: stems, BaselineY: 0.5}
}

// BaselineY converts the normalized zero line into pixels for a track of the
// given height. The zero line stays vertically centered no matter how lopsided
// the additions and deletions are.
func BaselineY(trackHeight float64) float64 {
	return trackHeight / 2
}

// FindNearestStem returns the index of the stem closest to x, ties going to
// the lower index, or -1 for an empty list.
func FindNearestStem(x float64, stems []Stem) int {
	nearest := -1
	best := math.Inf(1)
	for i, stem := range stems {
		distance := math.Abs(stem.X - x)
		if distance < best {
			best = distance
			nearest = i
		}
	}
	return nearest
}

// spreadStems walks left to right and pushes each stem right until it sits at
// least StemWidth+StemGap past its neighbor. Chronological input keeps the
// pre-nudge X values non-decreasing, so one pass suffices.
func spreadStems(stems []Stem) {
	const minSpacing = StemWidth + StemGap
	for i := 1; i < len(stems); i++ {
		if stems[i].X-stems[i-1].X < minSpacing {
			stems[i].X = stems[i-1].X + minSpacing
		}
	}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
