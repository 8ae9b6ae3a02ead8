package history

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codepetca/pika-sub005/internal/document"
	"github.com/codepetca/pika-sub005/internal/patch"
)

// Trigger identifies the lifecycle event that produced an entry.
type Trigger string

const (
	// TriggerBaseline is the first entry for a document; it always carries
	// a snapshot.
	TriggerBaseline Trigger = "baseline"
	// TriggerAutosave is an incremental save from the editing session.
	TriggerAutosave Trigger = "autosave"
	// TriggerSubmit captures the content at submission time.
	TriggerSubmit Trigger = "submit"
	// TriggerRestore records the content after a historical version was
	// restored over the current one.
	TriggerRestore Trigger = "restore"
)

// ErrInvalidTrigger indicates an unrecognized trigger value.
var ErrInvalidTrigger = errors.New("history: invalid trigger")

// NewTrigger validates raw input and returns a Trigger.
func NewTrigger(rawInput string) (Trigger, error) {
	trimmed := Trigger(strings.TrimSpace(rawInput))
	switch trimmed {
	case TriggerBaseline, TriggerAutosave, TriggerSubmit, TriggerRestore:
		return trimmed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTrigger, rawInput)
	}
}

// Entry is one immutable record of a document save event. Every entry
// carries a snapshot, a patch against the previous effective content, or
// both. Nil PasteWordCount or KeystrokeCount means the client did not
// report that telemetry, as with saves recorded before telemetry shipped.
type Entry struct {
	ID             string         `json:"id"`
	DocumentID     string         `json:"documentId"`
	Trigger        Trigger        `json:"trigger"`
	Snapshot       *document.Node `json:"snapshot,omitempty"`
	Patch          patch.Patch    `json:"patch,omitempty"`
	WordCount      int            `json:"wordCount"`
	CharCount      int            `json:"charCount"`
	PasteWordCount *int           `json:"pasteWordCount,omitempty"`
	KeystrokeCount *int           `json:"keystrokeCount,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}
