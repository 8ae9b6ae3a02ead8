// Package revision persists a document's save history and serves the derived
// read models: materialized content, authenticity reports, and timeline
// geometry. The append log is the sole source of truth; everything else is
// recomputed from it on demand.
package revision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codepetca/pika-sub005/internal/authenticity"
	"github.com/codepetca/pika-sub005/internal/document"
	"github.com/codepetca/pika-sub005/internal/history"
	"github.com/codepetca/pika-sub005/internal/patch"
	"github.com/codepetca/pika-sub005/internal/timeline"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errReconstructEmpty  = errors.New("reconstruction produced no content")
	noOpLogger           = zap.NewNop()
)

type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "revision.service.new"
	opRecordSave = "revision.record_save"
	opRestoreTo  = "revision.restore_to"
	opHistory    = "revision.history"
	opContentAt  = "revision.content_at"
	opReport     = "revision.report"
	opTimeline   = "revision.timeline"
)

const defaultTrackWidth = 320.0

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

type ServiceConfig struct {
	Database          *gorm.DB
	Clock             func() time.Time
	IDProvider        IDProvider
	Logger            *zap.Logger
	Dispatcher        *Dispatcher
	SnapshotThreshold float64
	Authenticity      authenticity.Config
	Location          *time.Location
}

type IDProvider interface {
	NewID() (string, error)
}

type Service struct {
	db                *gorm.DB
	clock             func() time.Time
	idProvider        IDProvider
	logger            *zap.Logger
	dispatcher        *Dispatcher
	snapshotThreshold float64
	authenticity      authenticity.Config
	location          *time.Location
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}

	location := cfg.Location
	if location == nil {
		location = time.UTC
	}

	return &Service{
		db:                cfg.Database,
		clock:             clock,
		idProvider:        cfg.IDProvider,
		logger:            logger,
		dispatcher:        dispatcher,
		snapshotThreshold: cfg.SnapshotThreshold,
		authenticity:      cfg.Authenticity,
		location:          location,
	}, nil
}

// Dispatcher exposes the append-event fan-out for reader surfaces.
func (s *Service) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// RecordSave appends one save to the document's history. Saves for the same
// document serialize on the document row so every patch is diffed against the
// most recently persisted content. The first save of a document is always
// recorded as a baseline carrying a full snapshot, whatever trigger the
// editor sent.
func (s *Service) RecordSave(ctx context.Context, req SaveRequest) (history.Entry, error) {
	if s.db == nil {
		s.logError(opRecordSave, "missing_database", errMissingDatabase)
		return history.Entry{}, newServiceError(opRecordSave, "missing_database", errMissingDatabase)
	}
	if err := req.Validate(); err != nil {
		s.logError(opRecordSave, "invalid_request", err)
		return history.Entry{}, newServiceError(opRecordSave, "invalid_request", err)
	}
	documentID, err := NewDocumentID(req.DocumentID)
	if err != nil {
		s.logError(opRecordSave, "invalid_document_id", err)
		return history.Entry{}, newServiceError(opRecordSave, "invalid_document_id", err)
	}

	content := req.Content.Clone()
	words := document.WordCount(content)
	chars := document.CharCount(content)

	var entry history.Entry
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc DocumentRecord
		var docPtr *DocumentRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("document_id = ?", documentID.String()).
			Take(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			docPtr = nil
		} else if err != nil {
			s.logError(opRecordSave, "document_select_failed", err,
				zap.String("document_id", documentID.String()))
			return newServiceError(opRecordSave, "document_select_failed", err)
		} else {
			docPtr = &doc
		}

		trigger := req.Trigger
		if docPtr == nil {
			trigger = history.TriggerBaseline
		}

		var operations patch.Patch
		if docPtr != nil {
			previous, err := document.Parse([]byte(docPtr.ContentJSON))
			if err != nil {
				s.logError(opRecordSave, "stored_content_corrupt", err,
					zap.String("document_id", documentID.String()))
				return newServiceError(opRecordSave, "stored_content_corrupt", err)
			}
			operations = patch.Diff(previous, content)
		}

		storeSnapshot := docPtr == nil ||
			trigger == history.TriggerBaseline ||
			trigger == history.TriggerRestore ||
			history.ShouldStoreSnapshot(operations, content, s.snapshotThreshold)

		entryID, err := s.idProvider.NewID()
		if err != nil {
			s.logError(opRecordSave, "id_generation_failed", err,
				zap.String("document_id", documentID.String()))
			return newServiceError(opRecordSave, "id_generation_failed", err)
		}
		now := s.clock().UTC()

		entry = history.Entry{
			ID:             entryID,
			DocumentID:     documentID.String(),
			Trigger:        trigger,
			Patch:          operations,
			WordCount:      words,
			CharCount:      chars,
			PasteWordCount: copyIntPointer(req.PasteWordCount),
			KeystrokeCount: copyIntPointer(req.KeystrokeCount),
			CreatedAt:      now,
		}
		if storeSnapshot {
			entry.Snapshot = content.Clone()
		}

		seq := int64(1)
		if docPtr != nil {
			seq = docPtr.EntrySeq + 1
		}

		record, err := encodeEntry(entry, seq)
		if err != nil {
			s.logError(opRecordSave, "entry_encode_failed", err,
				zap.String("document_id", documentID.String()))
			return newServiceError(opRecordSave, "entry_encode_failed", err)
		}
		if err := tx.Create(&record).Error; err != nil {
			s.logError(opRecordSave, "entry_insert_failed", err,
				zap.String("document_id", documentID.String()),
				zap.String("entry_id", entry.ID))
			return newServiceError(opRecordSave, "entry_insert_failed", err)
		}

		contentJSON, err := json.Marshal(content)
		if err != nil {
			s.logError(opRecordSave, "content_encode_failed", err,
				zap.String("document_id", documentID.String()))
			return newServiceError(opRecordSave, "content_encode_failed", err)
		}
		updated := DocumentRecord{
			DocumentID:       documentID.String(),
			ContentJSON:      string(contentJSON),
			WordCount:        words,
			CharCount:        chars,
			EntrySeq:         seq,
			UpdatedAtSeconds: now.Unix(),
		}
		if err := tx.Save(&updated).Error; err != nil {
			s.logError(opRecordSave, "document_save_failed", err,
				zap.String("document_id", documentID.String()))
			return newServiceError(opRecordSave, "document_save_failed", err)
		}
		return nil
	})
	if txErr != nil {
		return history.Entry{}, txErr
	}

	s.dispatcher.Publish(AppendEvent{
		DocumentID: entry.DocumentID,
		EntryID:    entry.ID,
		Trigger:    entry.Trigger,
		At:         entry.CreatedAt,
	})
	return entry, nil
}

// RestoreTo materializes the document as of a historical entry and records
// that content as a new restore save at the head of the log.
func (s *Service) RestoreTo(ctx context.Context, rawDocumentID, rawEntryID string) (history.Entry, error) {
	documentID, err := NewDocumentID(rawDocumentID)
	if err != nil {
		s.logError(opRestoreTo, "invalid_document_id", err)
		return history.Entry{}, newServiceError(opRestoreTo, "invalid_document_id", err)
	}
	entryID, err := NewEntryID(rawEntryID)
	if err != nil {
		s.logError(opRestoreTo, "invalid_entry_id", err)
		return history.Entry{}, newServiceError(opRestoreTo, "invalid_entry_id", err)
	}

	entries, err := s.loadEntries(ctx, opRestoreTo, documentID)
	if err != nil {
		return history.Entry{}, err
	}
	if len(entries) == 0 {
		s.logError(opRestoreTo, "document_not_found", ErrDocumentNotFound,
			zap.String("document_id", documentID.String()))
		return history.Entry{}, newServiceError(opRestoreTo, "document_not_found", ErrDocumentNotFound)
	}
	if !containsEntry(entries, entryID.String()) {
		s.logError(opRestoreTo, "entry_not_found", ErrEntryNotFound,
			zap.String("document_id", documentID.String()),
			zap.String("entry_id", entryID.String()))
		return history.Entry{}, newServiceError(opRestoreTo, "entry_not_found", ErrEntryNotFound)
	}

	content, warnings := history.ReconstructWithWarnings(entries, entryID.String())
	s.logReplayWarnings(opRestoreTo, documentID, warnings)
	if content == nil {
		s.logError(opRestoreTo, "reconstruct_failed", errReconstructEmpty,
			zap.String("document_id", documentID.String()),
			zap.String("entry_id", entryID.String()))
		return history.Entry{}, newServiceError(opRestoreTo, "reconstruct_failed", errReconstructEmpty)
	}

	return s.RecordSave(ctx, SaveRequest{
		DocumentID: documentID.String(),
		Content:    content,
		Trigger:    history.TriggerRestore,
	})
}

// History returns the document's entries oldest first.
func (s *Service) History(ctx context.Context, rawDocumentID string) ([]history.Entry, error) {
	documentID, err := NewDocumentID(rawDocumentID)
	if err != nil {
		s.logError(opHistory, "invalid_document_id", err)
		return nil, newServiceError(opHistory, "invalid_document_id", err)
	}
	return s.loadEntries(ctx, opHistory, documentID)
}

// ContentAt materializes the document as of the given entry, or as of the
// latest entry when rawEntryID is empty. Corrupted patches degrade to the
// best-effort prior state and are logged, never fatal.
func (s *Service) ContentAt(ctx context.Context, rawDocumentID, rawEntryID string) (*document.Node, error) {
	documentID, err := NewDocumentID(rawDocumentID)
	if err != nil {
		s.logError(opContentAt, "invalid_document_id", err)
		return nil, newServiceError(opContentAt, "invalid_document_id", err)
	}

	entries, err := s.loadEntries(ctx, opContentAt, documentID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		s.logError(opContentAt, "document_not_found", ErrDocumentNotFound,
			zap.String("document_id", documentID.String()))
		return nil, newServiceError(opContentAt, "document_not_found", ErrDocumentNotFound)
	}

	target := rawEntryID
	if target == "" {
		target = entries[len(entries)-1].ID
	} else {
		entryID, err := NewEntryID(rawEntryID)
		if err != nil {
			s.logError(opContentAt, "invalid_entry_id", err)
			return nil, newServiceError(opContentAt, "invalid_entry_id", err)
		}
		target = entryID.String()
		if !containsEntry(entries, target) {
			s.logError(opContentAt, "entry_not_found", ErrEntryNotFound,
				zap.String("document_id", documentID.String()),
				zap.String("entry_id", target))
			return nil, newServiceError(opContentAt, "entry_not_found", ErrEntryNotFound)
		}
	}

	content, warnings := history.ReconstructWithWarnings(entries, target)
	s.logReplayWarnings(opContentAt, documentID, warnings)
	if content == nil {
		s.logError(opContentAt, "reconstruct_failed", errReconstructEmpty,
			zap.String("document_id", documentID.String()),
			zap.String("entry_id", target))
		return nil, newServiceError(opContentAt, "reconstruct_failed", errReconstructEmpty)
	}
	return content, nil
}

// AuthenticityReport scores the document's typing history. A document with
// too little signal reports a nil score rather than an error.
func (s *Service) AuthenticityReport(ctx context.Context, rawDocumentID string) (authenticity.Report, error) {
	documentID, err := NewDocumentID(rawDocumentID)
	if err != nil {
		s.logError(opReport, "invalid_document_id", err)
		return authenticity.Report{}, newServiceError(opReport, "invalid_document_id", err)
	}

	entries, err := s.loadEntries(ctx, opReport, documentID)
	if err != nil {
		return authenticity.Report{}, err
	}
	return authenticity.Analyze(entries, s.authenticity), nil
}

// TimelineHour pairs one local hour's diffs with their positioned stems.
type TimelineHour struct {
	Hour   int                 `json:"hour"`
	Diffs  []timeline.CharDiff `json:"diffs"`
	Layout timeline.StemLayout `json:"layout"`
}

// TimelineDay groups one local calendar date's hour tracks, newest date first.
type TimelineDay struct {
	Date  string         `json:"date"`
	Hours []TimelineHour `json:"hours"`
}

// Timeline shapes the document's history for the timeline widget: day and
// hour buckets in the service's timezone plus stem geometry for a track of
// the given pixel width.
func (s *Service) Timeline(ctx context.Context, rawDocumentID string, trackWidth float64) ([]TimelineDay, error) {
	documentID, err := NewDocumentID(rawDocumentID)
	if err != nil {
		s.logError(opTimeline, "invalid_document_id", err)
		return nil, newServiceError(opTimeline, "invalid_document_id", err)
	}
	if trackWidth <= 0 {
		trackWidth = defaultTrackWidth
	}

	entries, err := s.loadEntries(ctx, opTimeline, documentID)
	if err != nil {
		return nil, err
	}

	newestFirst := make([]history.Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, entries[i])
	}
	diffs := timeline.ComputeCharDiffs(newestFirst)

	days := make([]TimelineDay, 0)
	for _, group := range timeline.GroupByDay(diffs, s.location) {
		day := TimelineDay{Date: group.Date, Hours: make([]TimelineHour, 0, len(group.Hours))}
		for _, bucket := range group.Hours {
			day.Hours = append(day.Hours, TimelineHour{
				Hour:   bucket.Hour,
				Diffs:  bucket.Diffs,
				Layout: timeline.ComputeStemLayout(bucket.Diffs, trackWidth, s.location),
			})
		}
		days = append(days, day)
	}
	return days, nil
}

func (s *Service) loadEntries(ctx context.Context, operation string, documentID DocumentID) ([]history.Entry, error) {
	if s.db == nil {
		s.logError(operation, "missing_database", errMissingDatabase)
		return nil, newServiceError(operation, "missing_database", errMissingDatabase)
	}

	var records []EntryRecord
	if err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID.String()).
		Order("seq ASC").
		Find(&records).Error; err != nil {
		s.logError(operation, "query_failed", err, zap.String("document_id", documentID.String()))
		return nil, newServiceError(operation, "query_failed", err)
	}

	entries := make([]history.Entry, 0, len(records))
	for _, record := range records {
		entry, err := decodeEntry(record)
		if err != nil {
			s.logError(operation, "entry_decode_failed", err,
				zap.String("document_id", documentID.String()),
				zap.String("entry_id", record.EntryID))
			return nil, newServiceError(operation, "entry_decode_failed", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) logReplayWarnings(operation string, documentID DocumentID, warnings []history.ReplayWarning) {
	for _, warning := range warnings {
		s.loggerOrDefault().Warn("replay degraded",
			zap.String("operation", operation),
			zap.String("document_id", documentID.String()),
			zap.String("entry_id", warning.EntryID),
			zap.String("reason", warning.Reason))
	}
}

func containsEntry(entries []history.Entry, entryID string) bool {
	for _, entry := range entries {
		if entry.ID == entryID {
			return true
		}
	}
	return false
}

func copyIntPointer(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("revision service error", attrs...)
}
