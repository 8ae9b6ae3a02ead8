package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationBackfillEntrySequence = "2026-04-21_backfill_entry_sequence"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillEntrySequence, apply: backfillEntrySequence},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// backfillEntrySequence ranks rows written before the seq column existed by
// created_at, entry id breaking ties, and mirrors the per-document head onto
// revision_documents.
func backfillEntrySequence(db *gorm.DB) error {
	const rankEntries = `
UPDATE revision_entries SET seq = (
	SELECT COUNT(*) FROM revision_entries AS earlier
	WHERE earlier.document_id = revision_entries.document_id
	  AND (earlier.created_at_s < revision_entries.created_at_s
	       OR (earlier.created_at_s = revision_entries.created_at_s
	           AND earlier.entry_id <= revision_entries.entry_id))
) WHERE seq = 0;`
	if err := db.Exec(rankEntries).Error; err != nil {
		return err
	}

	const alignDocuments = `
UPDATE revision_documents SET entry_seq = (
	SELECT COALESCE(MAX(seq), 0) FROM revision_entries
	WHERE revision_entries.document_id = revision_documents.document_id
) WHERE entry_seq = 0;`
	return db.Exec(alignDocuments).Error
}
