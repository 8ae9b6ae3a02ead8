package authenticity

import (
	"math"

	"github.com/codepetca/pika-sub005/internal/history"
)

// Default classification thresholds. They are deliberately configuration,
// not constants buried in the classifier: deployments tune them through
// Config without touching code.
const (
	DefaultKeystrokeRatio        = 0.5
	DefaultWordsPerSecondCeiling = 5.0
)

// Config carries the tunable classification thresholds. Zero values fall
// back to the defaults.
type Config struct {
	// KeystrokeRatio is the minimum keystrokes-per-character ratio an
	// interval must show to count as typed when the client explicitly
	// reported zero pasted words.
	KeystrokeRatio float64
	// WordsPerSecondCeiling flags any interval faster than this rate, no
	// matter what the client-reported telemetry claims.
	WordsPerSecondCeiling float64
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		KeystrokeRatio:        DefaultKeystrokeRatio,
		WordsPerSecondCeiling: DefaultWordsPerSecondCeiling,
	}
}

func (c Config) withDefaults() Config {
	if c.KeystrokeRatio <= 0 {
		c.KeystrokeRatio = DefaultKeystrokeRatio
	}
	if c.WordsPerSecondCeiling <= 0 {
		c.WordsPerSecondCeiling = DefaultWordsPerSecondCeiling
	}
	return c
}

// FlagReason identifies why an interval was classified as non-organic.
type FlagReason string

const (
	// ReasonPaste means the client reported pasted words for the interval.
	ReasonPaste FlagReason = "paste"
	// ReasonLowKeystrokes means too few keystrokes were recorded for the
	// characters the interval added.
	ReasonLowKeystrokes FlagReason = "low_keystrokes"
	// ReasonHighWPS means the interval exceeded the words-per-second
	// ceiling. This is the safety net a client cannot defeat by
	// misreporting paste or keystroke telemetry.
	ReasonHighWPS FlagReason = "high_wps"
)

// Flag records one non-organic interval. The interval's entire word delta
// lands in the flagged bucket; classification is binary, never split.
type Flag struct {
	EntryID        string     `json:"entryId"`
	Reason         FlagReason `json:"reason"`
	WordDelta      int        `json:"wordDelta"`
	CharDelta      int        `json:"charDelta"`
	Seconds        float64    `json:"seconds"`
	WordsPerSecond float64    `json:"wordsPerSecond"`
}

// Report is the outcome of analyzing one document's entry log. A nil Score
// means no interval qualified for scoring, which is a different statement
// than a confirmed-bad score of 0.
type Report struct {
	Score        *int   `json:"score"`
	Flags        []Flag `json:"flags"`
	TotalWords   int    `json:"totalWords"`
	OrganicWords int    `json:"organicWords"`
}

// Analyze walks a document's chronologically ordered entry log and
// classifies each autosave interval as organic typing or injected text.
//
// Baseline, restore, and submit entries move the reference point without
// being scored: a restore's jump must never read as a paste, but its
// endpoint becomes the baseline for whatever follows. Autosave intervals
// that add no net words are skipped entirely. Each scored interval receives
// at most one flag; explicit paste telemetry wins over the keystroke check,
// which wins over the words-per-second ceiling.
func Analyze(entries []history.Entry, cfg Config) Report {
	cfg = cfg.withDefaults()

	report := Report{Flags: []Flag{}}
	if len(entries) == 0 {
		return report
	}

	refWords := entries[0].WordCount
	refChars := entries[0].CharCount
	refTime := entries[0].CreatedAt

	for _, entry := range entries[1:] {
		wordDelta := entry.WordCount - refWords
		charDelta := entry.CharCount - refChars
		seconds := entry.CreatedAt.Sub(refTime).Seconds()
		if seconds < 1 {
			seconds = 1
		}

		// The reference always advances, whether or not this interval
		// scores.
		refWords = entry.WordCount
		refChars = entry.CharCount
		refTime = entry.CreatedAt

		if entry.Trigger != history.TriggerAutosave {
			continue
		}
		if wordDelta <= 0 {
			continue
		}

		wordsPerSecond := float64(wordDelta) / seconds
		report.TotalWords += wordDelta

		reason, flagged := classifyInterval(entry, wordDelta, charDelta, wordsPerSecond, cfg)
		if !flagged {
			report.OrganicWords += wordDelta
			continue
		}
		report.Flags = append(report.Flags, Flag{
			EntryID:        entry.ID,
			Reason:         reason,
			WordDelta:      wordDelta,
			CharDelta:      charDelta,
			Seconds:        seconds,
			WordsPerSecond: wordsPerSecond,
		})
	}

	if report.TotalWords > 0 {
		score := int(math.Round(100 * float64(report.OrganicWords) / float64(report.TotalWords)))
		report.Score = &score
	}
	return report
}

func classifyInterval(entry history.Entry, wordDelta, charDelta int, wordsPerSecond float64, cfg Config) (FlagReason, bool) {
	if entry.PasteWordCount != nil {
		// Cap the reported paste volume at the net new words so a
		// cut-and-paste rearrangement does not overstate the injection.
		pasted := *entry.PasteWordCount
		if pasted > wordDelta {
			pasted = wordDelta
		}
		if pasted > 0 {
			return ReasonPaste, true
		}
		if *entry.PasteWordCount == 0 && entry.KeystrokeCount != nil &&
			float64(*entry.KeystrokeCount) < cfg.KeystrokeRatio*float64(charDelta) {
			return ReasonLowKeystrokes, true
		}
	}
	if wordsPerSecond > cfg.WordsPerSecondCeiling {
		return ReasonHighWPS, true
	}
	return "", false
}
