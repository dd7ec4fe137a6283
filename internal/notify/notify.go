// Package notify carries success and failure events from the core to
// whatever renders them.
package notify

import (
	"sync"
	"time"

	"github.com/yourusername/yabai-cli/internal/logging"
)

// Kind is the outcome an event reports
type Kind string

const (
	Success Kind = "success"
	Failure Kind = "failure"
)

// Source names the part of the core that produced an event
type Source string

const (
	SourceCommand Source = "command"
	SourceRefresh Source = "refresh"
)

// DefaultBuffer is the per-subscriber channel capacity
const DefaultBuffer = 32

// Event is one user-visible notification
type Event struct {
	Kind    Kind      `json:"kind" yaml:"kind"`
	Source  Source    `json:"source" yaml:"source"`
	Title   string    `json:"title" yaml:"title"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
	Time    time.Time `json:"time" yaml:"time"`
}

// Bus fans events out to subscribers. Publish never blocks; a subscriber
// that falls behind loses events and the loss is logged.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
	now    func() time.Time
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
		now:  time.Now,
	}
}

// Subscribe returns a channel of future events and a cancel func that
// closes it.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Publish stamps e and delivers it to every subscriber
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = b.now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			logging.Warn().
				Int("subscriber", id).
				Str("kind", string(e.Kind)).
				Str("title", e.Title).
				Msg("notification dropped, subscriber full")
		}
	}
}

// Succeeded publishes a success event
func (b *Bus) Succeeded(src Source, title, message string) {
	b.Publish(Event{Kind: Success, Source: src, Title: title, Message: message})
}

// Failed publishes a failure event
func (b *Bus) Failed(src Source, title string, err error) {
	e := Event{Kind: Failure, Source: src, Title: title}
	if err != nil {
		e.Message = err.Error()
	}
	b.Publish(e)
}

// Close closes every subscriber channel. Later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
