package revision

import (
	"context"
	"sync"
	"time"

	"github.com/codepetca/pika-sub005/internal/history"
)

// AppendEvent announces a newly persisted history entry so reader surfaces
// can recompute their derived views against the grown log.
type AppendEvent struct {
	DocumentID string
	EntryID    string
	Trigger    history.Trigger
	At         time.Time
}

// Dispatcher fans append events out to per-document subscribers.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers map[string]map[int64]*subscriber
	nextID      int64
	bufferSize  int
}

type subscriber struct {
	id     int64
	stream chan AppendEvent
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		subscribers: make(map[string]map[int64]*subscriber),
		bufferSize:  16,
	}
}

// Subscribe registers for append events on one document. The subscription
// ends when ctx is done or the returned cleanup runs.
func (d *Dispatcher) Subscribe(ctx context.Context, documentID string) (<-chan AppendEvent, func()) {
	if documentID == "" {
		ch := make(chan AppendEvent)
		close(ch)
		return ch, func() {}
	}
	sub := &subscriber{
		id:     d.nextSequence(),
		stream: make(chan AppendEvent, d.bufferSize),
	}
	d.register(documentID, sub)
	cleanup := func() {
		d.unregister(documentID, sub.id)
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return sub.stream, cleanup
}

// Publish delivers the event to every subscriber of its document. Slow
// subscribers miss events rather than block the writer.
func (d *Dispatcher) Publish(event AppendEvent) {
	if event.DocumentID == "" {
		return
	}
	d.mu.RLock()
	subscribers := d.subscribers[event.DocumentID]
	if len(subscribers) == 0 {
		d.mu.RUnlock()
		return
	}
	copies := make([]*subscriber, 0, len(subscribers))
	for _, sub := range subscribers {
		copies = append(copies, sub)
	}
	d.mu.RUnlock()
	for _, sub := range copies {
		select {
		case sub.stream <- event:
		default:
		}
	}
}

func (d *Dispatcher) nextSequence() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return d.nextID
}

func (d *Dispatcher) register(documentID string, sub *subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.subscribers[documentID]; !ok {
		d.subscribers[documentID] = make(map[int64]*subscriber)
	}
	d.subscribers[documentID][sub.id] = sub
}

func (d *Dispatcher) unregister(documentID string, subscriberID int64) {
	d.mu.Lock()
	subscribers := d.subscribers[documentID]
	if subscribers != nil {
		delete(subscribers, subscriberID)
		if len(subscribers) == 0 {
			delete(d.subscribers, documentID)
		}
	}
	d.mu.Unlock()
}
