package revision

import (
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/codepetca/pika-sub005/internal/document"
)

func mustDocumentID(t *testing.T, value string) DocumentID {
	t.Helper()
	id, err := NewDocumentID(value)
	if err != nil {
		t.Fatalf("unexpected document id error: %v", err)
	}
	return id
}

func mustEntryID(t *testing.T, value string) EntryID {
	t.Helper()
	id, err := NewEntryID(value)
	if err != nil {
		t.Fatalf("unexpected entry id error: %v", err)
	}
	return id
}

func docWithText(lines ...string) *document.Node {
	paragraphs := make([]*document.Node, 0, len(lines))
	for _, line := range lines {
		paragraphs = append(paragraphs, &document.Node{
			Type: document.NodeTypeParagraph,
			Content: []*document.Node{
				{Type: document.NodeTypeText, Text: line},
			},
		})
	}
	return &document.Node{Type: document.NodeTypeDoc, Content: paragraphs}
}

func docWithWords(count int) *document.Node {
	words := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		words = append(words, fmt.Sprintf("w%d", i))
	}
	return docWithText(strings.Join(words, " "))
}

func intPointer(value int) *int {
	return &value
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) Set(now time.Time) {
	c.now = now
}

func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, ids []string, snapshotThreshold float64) (*Service, *gorm.DB, *manualClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:revision_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&EntryRecord{}, &DocumentRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	generator := &staticIDGenerator{ids: ids}
	clock := &manualClock{now: time.Unix(1700000000, 0).UTC()}

	service, err := NewService(ServiceConfig{
		Database:          db,
		Clock:             clock.Now,
		IDProvider:        generator,
		SnapshotThreshold: snapshotThreshold,
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service, db, clock
}

func entryIDs(count int) []string {
	ids := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		ids = append(ids, fmt.Sprintf("entry-%d", i))
	}
	return ids
}
