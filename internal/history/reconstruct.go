package history

import (
	"github.com/codepetca/pika-sub005/internal/document"
	"github.com/codepetca/pika-sub005/internal/patch"
)

const reasonPatchNotApplied = "patch_not_applied"

// ReplayWarning reports one entry whose patch failed to apply during
// reconstruction.
type ReplayWarning struct {
	EntryID string
	Reason  string
}

// Reconstruct replays entries in ascending chronological order and returns
// the content as of the target entry. A snapshot replaces the running
// content outright, acting as a resync anchor; a patch applies fail-soft,
// so a corrupted patch yields the best-effort prior state instead of
// aborting the replay. Returns nil when the target id is not in the log.
func Reconstruct(entries []Entry, targetEntryID string) *document.Node {
	content, _ := ReconstructWithWarnings(entries, targetEntryID)
	return content
}

// ReconstructWithWarnings is Reconstruct with per-entry failure visibility,
// for callers that surface degraded replays instead of silently absorbing
// them.
func ReconstructWithWarnings(entries []Entry, targetEntryID string) (*document.Node, []ReplayWarning) {
	var current *document.Node
	var warnings []ReplayWarning
	for _, entry := range entries {
		switch {
		case entry.Snapshot != nil:
			current = entry.Snapshot.Clone()
		case len(entry.Patch) > 0:
			next, ok := patch.TryApply(current, entry.Patch)
			if !ok {
				warnings = append(warnings, ReplayWarning{EntryID: entry.ID, Reason: reasonPatchNotApplied})
			}
			current = next
		}
		if entry.ID == targetEntryID {
			return current, warnings
		}
	}
	return nil, warnings
}
