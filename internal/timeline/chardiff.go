// Package timeline turns a document's save history into the day and hour
// buckets and stem geometry the history widget renders.
package timeline

import "github.com/codepetca/pika-sub005/internal/history"

// CharDiff pairs a history entry with its signed character delta relative to
// the previous entry in chronological order.
type CharDiff struct {
	Entry      history.Entry `json:"entry"`
	CharDiff   int           `json:"charDiff"`
	IsBaseline bool          `json:"isBaseline"`
}

// ComputeCharDiffs accepts entries in newest-first storage order and returns
// them oldest-first, each annotated with the character delta since the
// previous save. The oldest entry anchors the series with a zero diff.
func ComputeCharDiffs(entriesNewestFirst []history.Entry) []CharDiff {
	diffs := make([]CharDiff, 0, len(entriesNewestFirst))
	for i := len(entriesNewestFirst) - 1; i >= 0; i-- {
		entry := entriesNewestFirst[i]
		diff := CharDiff{Entry: entry}
		if len(diffs) == 0 {
			diff.IsBaseline = true
		} else {
			diff.CharDiff = entry.CharCount - diffs[len(diffs)-1].Entry.CharCount
		}
		diffs = append(diffs, diff)
	}
	return diffs
}
