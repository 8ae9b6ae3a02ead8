package revision

import (
	"errors"
	"strings"
	"testing"

	"github.com/codepetca/pika-sub005/internal/history"
)

func TestNewDocumentIDValidation(t *testing.T) {
	if id := mustDocumentID(t, "  doc-1  "); id.String() != "doc-1" {
		t.Fatalf("expected trimming, got %q", id.String())
	}

	if _, err := NewDocumentID("   "); !errors.Is(err, ErrInvalidDocumentID) {
		t.Fatalf("expected ErrInvalidDocumentID for blank input, got %v", err)
	}
	if _, err := NewDocumentID(strings.Repeat("d", maxIdentifierLength+1)); !errors.Is(err, ErrInvalidDocumentID) {
		t.Fatalf("expected ErrInvalidDocumentID for oversized input, got %v", err)
	}
}

func TestNewEntryIDValidation(t *testing.T) {
	if id := mustEntryID(t, "entry-1"); id.String() != "entry-1" {
		t.Fatalf("unexpected entry id %q", id.String())
	}
	if _, err := NewEntryID(""); !errors.Is(err, ErrInvalidEntryID) {
		t.Fatalf("expected ErrInvalidEntryID, got %v", err)
	}
}

func TestSaveRequestValidate(t *testing.T) {
	valid := SaveRequest{
		DocumentID: "doc-1",
		Content:    docWithText("hello"),
		Trigger:    history.TriggerAutosave,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected a valid request, got %v", err)
	}

	missingContent := valid
	missingContent.Content = nil
	if err := missingContent.Validate(); err == nil {
		t.Fatalf("expected missing content to fail")
	}

	unknownTrigger := valid
	unknownTrigger.Trigger = history.Trigger("publish")
	if err := unknownTrigger.Validate(); err == nil {
		t.Fatalf("expected an unknown trigger to fail")
	}

	negativeTelemetry := valid
	negativeTelemetry.PasteWordCount = intPointer(-1)
	if err := negativeTelemetry.Validate(); err == nil {
		t.Fatalf("expected negative telemetry to fail")
	}

	nilTelemetry := valid
	nilTelemetry.PasteWordCount = nil
	nilTelemetry.KeystrokeCount = nil
	if err := nilTelemetry.Validate(); err != nil {
		t.Fatalf("expected nil telemetry to be allowed, got %v", err)
	}
}
