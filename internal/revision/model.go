package revision

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/codepetca/pika-sub005/internal/document"
	"github.com/codepetca/pika-sub005/internal/history"
)

const maxIdentifierLength = 190

var (
	// ErrInvalidDocumentID indicates that a document identifier is empty or exceeds storage bounds.
	ErrInvalidDocumentID = errors.New("revision: invalid document id")
	// ErrInvalidEntryID indicates that an entry identifier is empty or exceeds storage bounds.
	ErrInvalidEntryID = errors.New("revision: invalid entry id")
	// ErrDocumentNotFound indicates that no saves exist for the requested document.
	ErrDocumentNotFound = errors.New("revision: document not found")
	// ErrEntryNotFound indicates that the requested history entry does not exist.
	ErrEntryNotFound = errors.New("revision: entry not found")
)

// DocumentID represents a validated document identifier.
type DocumentID string

// NewDocumentID validates raw input and returns a DocumentID.
func NewDocumentID(rawInput string) (DocumentID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDocumentID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidDocumentID, maxIdentifierLength)
	}
	return DocumentID(trimmed), nil
}

// String returns the underlying string identifier.
func (id DocumentID) String() string {
	return string(id)
}

// EntryID represents a validated history entry identifier.
type EntryID string

// NewEntryID validates raw input and returns an EntryID.
func NewEntryID(rawInput string) (EntryID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEntryID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidEntryID, maxIdentifierLength)
	}
	return EntryID(trimmed), nil
}

// String returns the underlying string identifier.
func (id EntryID) String() string {
	return string(id)
}

// EntryRecord models one persisted history entry row. Snapshot and patch are
// stored as serialized JSON so the log survives schema-free.
type EntryRecord struct {
	EntryID          string  `gorm:"column:entry_id;primaryKey;size:190;not null"`
	DocumentID       string  `gorm:"column:document_id;size:190;not null;index:idx_entries_doc_seq,priority:1"`
	Seq              int64   `gorm:"column:seq;not null;default:0;index:idx_entries_doc_seq,priority:2"`
	Trigger          string  `gorm:"column:save_trigger;size:32;not null"`
	SnapshotJSON     *string `gorm:"column:snapshot_json;type:text"`
	PatchJSON        *string `gorm:"column:patch_json;type:text"`
	WordCount        int     `gorm:"column:word_count;not null;default:0"`
	CharCount        int     `gorm:"column:char_count;not null;default:0"`
	PasteWordCount   *int    `gorm:"column:paste_word_count"`
	KeystrokeCount   *int    `gorm:"column:keystroke_count"`
	CreatedAtSeconds int64   `gorm:"column:created_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (EntryRecord) TableName() string {
	return "revision_entries"
}

// DocumentRecord holds the latest persisted content per document, the state
// every incoming save is diffed against.
type DocumentRecord struct {
	DocumentID       string `gorm:"column:document_id;primaryKey;size:190;not null"`
	ContentJSON      string `gorm:"column:content_json;type:text;not null"`
	WordCount        int    `gorm:"column:word_count;not null;default:0"`
	CharCount        int    `gorm:"column:char_count;not null;default:0"`
	EntrySeq         int64  `gorm:"column:entry_seq;not null;default:0"`
	UpdatedAtSeconds int64  `gorm:"column:updated_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (DocumentRecord) TableName() string {
	return "revision_documents"
}

// SaveRequest describes one save submitted by the editing session.
type SaveRequest struct {
	DocumentID     string
	Content        *document.Node
	Trigger        history.Trigger
	PasteWordCount *int
	KeystrokeCount *int
}

// Validate reports whether the request satisfies the write-path contract.
func (req SaveRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.DocumentID, validation.Required, validation.Length(1, maxIdentifierLength)),
		validation.Field(&req.Content, validation.Required),
		validation.Field(&req.Trigger, validation.Required, validation.In(
			history.TriggerBaseline,
			history.TriggerAutosave,
			history.TriggerSubmit,
			history.TriggerRestore,
		)),
		validation.Field(&req.PasteWordCount, validation.Min(0)),
		validation.Field(&req.KeystrokeCount, validation.Min(0)),
	)
}
