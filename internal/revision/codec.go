package revision

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/codepetca/pika-sub005/internal/document"
	"github.com/codepetca/pika-sub005/internal/history"
	"github.com/codepetca/pika-sub005/internal/patch"
)

func encodeEntry(entry history.Entry, seq int64) (EntryRecord, error) {
	record := EntryRecord{
		EntryID:          entry.ID,
		DocumentID:       entry.DocumentID,
		Seq:              seq,
		Trigger:          string(entry.Trigger),
		WordCount:        entry.WordCount,
		CharCount:        entry.CharCount,
		PasteWordCount:   entry.PasteWordCount,
		KeystrokeCount:   entry.KeystrokeCount,
		CreatedAtSeconds: entry.CreatedAt.Unix(),
	}
	if entry.Snapshot != nil {
		payload, err := json.Marshal(entry.Snapshot)
		if err != nil {
			return EntryRecord{}, fmt.Errorf("encode snapshot: %w", err)
		}
		text := string(payload)
		record.SnapshotJSON = &text
	}
	// A present-but-empty patch is kept distinct from an absent one: a no-op
	// save stores "[]", the initial baseline stores NULL.
	if entry.Patch != nil {
		payload, err := json.Marshal(entry.Patch)
		if err != nil {
			return EntryRecord{}, fmt.Errorf("encode patch: %w", err)
		}
		text := string(payload)
		record.PatchJSON = &text
	}
	return record, nil
}

func decodeEntry(record EntryRecord) (history.Entry, error) {
	trigger, err := history.NewTrigger(record.Trigger)
	if err != nil {
		return history.Entry{}, fmt.Errorf("decode trigger: %w", err)
	}
	entry := history.Entry{
		ID:             record.EntryID,
		DocumentID:     record.DocumentID,
		Trigger:        trigger,
		WordCount:      record.WordCount,
		CharCount:      record.CharCount,
		PasteWordCount: record.PasteWordCount,
		KeystrokeCount: record.KeystrokeCount,
		CreatedAt:      time.Unix(record.CreatedAtSeconds, 0).UTC(),
	}
	if record.SnapshotJSON != nil {
		snapshot, err := document.Parse([]byte(*record.SnapshotJSON))
		if err != nil {
			return history.Entry{}, fmt.Errorf("decode snapshot: %w", err)
		}
		entry.Snapshot = snapshot
	}
	if record.PatchJSON != nil {
		var operations patch.Patch
		if err := json.Unmarshal([]byte(*record.PatchJSON), &operations); err != nil {
			return history.Entry{}, fmt.Errorf("decode patch: %w", err)
		}
		entry.Patch = operations
	}
	return entry, nil
}
