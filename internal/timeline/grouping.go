package timeline

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// HourBucket holds one local hour's saves in chronological order.
type HourBucket struct {
	Hour  int        `json:"hour"`
	Diffs []CharDiff `json:"diffs"`
}

// DayGroup holds one local calendar date's hour buckets.
type DayGroup struct {
	Date  string       `json:"date"`
	Hours []HourBucket `json:"hours"`
}

// GroupByDay buckets an oldest-first diff list by local calendar date and
// hour of day. Date groups come back newest first, hour buckets within a
// date ascend, and entries within an hour keep their chronological order.
// A nil location falls back to UTC.
func GroupByDay(diffs []CharDiff, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}

	byDate := make(map[string]map[int][]CharDiff)
	for _, diff := range diffs {
		local := diff.Entry.CreatedAt.In(loc)
		date := local.Format(dateLayout)
		hours, ok := byDate[date]
		if !ok {
			hours = make(map[int][]CharDiff)
			byDate[date] = hours
		}
		hours[local.Hour()] = append(hours[local.Hour()], diff)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	groups := make([]DayGroup, 0, len(dates))
	for _, date := range dates {
		hourMap := byDate[date]
		hours := make([]int, 0, len(hourMap))
		for hour := range hourMap {
			hours = append(hours, hour)
		}
		sort.Ints(hours)

		buckets := make([]HourBucket, 0, len(hours))
		for _, hour := range hours {
			buckets = append(buckets, HourBucket{Hour: hour, Diffs: hourMap[hour]})
		}
		groups = append(groups, DayGroup{Date: date, Hours: buckets})
	}
	return groups
}
