package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codepetca/pika-sub005/internal/authenticity"
	"github.com/codepetca/pika-sub005/internal/config"
	"github.com/codepetca/pika-sub005/internal/database"
	"github.com/codepetca/pika-sub005/internal/document"
	"github.com/codepetca/pika-sub005/internal/history"
	"github.com/codepetca/pika-sub005/internal/logging"
	"github.com/codepetca/pika-sub005/internal/revision"
)

type environment struct {
	config  config.AppConfig
	logger  *zap.Logger
	db      *gorm.DB
	service *revision.Service
}

func newEnvironment() (*environment, error) {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	location, err := appConfig.Location()
	if err != nil {
		return nil, err
	}

	service, err := revision.NewService(revision.ServiceConfig{
		Database:          db,
		Clock:             time.Now,
		IDProvider:        revision.NewUUIDProvider(),
		Logger:            logger,
		SnapshotThreshold: appConfig.SnapshotThresholdRatio,
		Authenticity: authenticity.Config{
			KeystrokeRatio:        appConfig.KeystrokeRatio,
			WordsPerSecondCeiling: appConfig.WPSCeiling,
		},
		Location: location,
	})
	if err != nil {
		return nil, err
	}

	return &environment{config: appConfig, logger: logger, db: db, service: service}, nil
}

func (e *environment) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close() //nolint:errcheck
	}
	e.logger.Sync() //nolint:errcheck
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func newRecordCommand() *cobra.Command {
	var (
		documentID string
		filePath   string
		trigger    string
		pasteWords int
		keystrokes int
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append a document save to the history log",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			payload, err := os.ReadFile(filePath)
			if err != nil {
				return err
			}
			content, err := document.Parse(payload)
			if err != nil {
				return err
			}
			saveTrigger, err := history.NewTrigger(trigger)
			if err != nil {
				return err
			}

			request := revision.SaveRequest{
				DocumentID: documentID,
				Content:    content,
				Trigger:    saveTrigger,
			}
			if cmd.Flags().Changed("paste-words") {
				request.PasteWordCount = &pasteWords
			}
			if cmd.Flags().Changed("keystrokes") {
				request.KeystrokeCount = &keystrokes
			}

			entry, err := env.service.RecordSave(cmd.Context(), request)
			if err != nil {
				return err
			}
			fmt.Printf("recorded %s (%s): %d words, %d chars\n",
				entry.ID, entry.Trigger, entry.WordCount, entry.CharCount)
			if entry.Snapshot != nil {
				fmt.Println("snapshot stored")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&documentID, "doc", "", "Document identifier")
	cmd.Flags().StringVar(&filePath, "file", "", "Path to the document JSON payload")
	cmd.Flags().StringVar(&trigger, "trigger", string(history.TriggerAutosave), "Save trigger (baseline, autosave, submit, restore)")
	cmd.Flags().IntVar(&pasteWords, "paste-words", 0, "Words the client reported as pasted in this delta")
	cmd.Flags().IntVar(&keystrokes, "keystrokes", 0, "Keystrokes the client reported for this delta")
	_ = cmd.MarkFlagRequired("doc")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newReplayCommand() *cobra.Command {
	var (
		documentID string
		entryID    string
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Materialize document content as of a history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			content, err := env.service.ContentAt(cmd.Context(), documentID, entryID)
			if err != nil {
				return err
			}
			return printJSON(content)
		},
	}

	cmd.Flags().StringVar(&documentID, "doc", "", "Document identifier")
	cmd.Flags().StringVar(&entryID, "entry", "", "Entry identifier (defaults to the latest entry)")
	_ = cmd.MarkFlagRequired("doc")
	return cmd
}

func newReportCommand() *cobra.Command {
	var (
		documentID string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Score how organically a document's history was typed",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			report, err := env.service.AuthenticityReport(cmd.Context(), documentID)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(report)
			}

			if report.Score == nil {
				fmt.Println("score: n/a (not enough typed signal to judge)")
			} else {
				fmt.Printf("score: %d (%d of %d words organic)\n",
					*report.Score, report.OrganicWords, report.TotalWords)
			}
			if len(report.Flags) == 0 {
				fmt.Println("no flagged intervals")
				return nil
			}
			for _, flag := range report.Flags {
				fmt.Printf("  %s  %-14s +%d words in %.0fs (%.1f wps)\n",
					flag.EntryID, flag.Reason, flag.WordDelta, flag.Seconds, flag.WordsPerSecond)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&documentID, "doc", "", "Document identifier")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the report as JSON")
	_ = cmd.MarkFlagRequired("doc")
	return cmd
}

func newTimelineCommand() *cobra.Command {
	var (
		documentID string
		width      float64
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Lay out the save history for the timeline widget",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			days, err := env.service.Timeline(cmd.Context(), documentID, width)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(days)
			}

			for _, day := range days {
				fmt.Println(day.Date)
				for _, hour := range day.Hours {
					fmt.Printf("  %02d:00  %d saves\n", hour.Hour, len(hour.Diffs))
					for i, stem := range hour.Layout.Stems {
						diff := hour.Diffs[i]
						if diff.IsBaseline {
							fmt.Printf("    %-12s baseline  x=%.1f\n", stem.EntryID, stem.X)
							continue
						}
						fmt.Printf("    %-12s %+d chars  x=%.1f h=%.2f %s\n",
							stem.EntryID, diff.CharDiff, stem.X, stem.Height, stem.Color)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&documentID, "doc", "", "Document identifier")
	cmd.Flags().Float64Var(&width, "width", 320, "Track width in pixels")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the layout as JSON")
	_ = cmd.MarkFlagRequired("doc")
	return cmd
}
