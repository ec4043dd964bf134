package events

import (
	"sync"
	"time"

	"spotivol/pkg/logging"
)

// DefaultBusSize is the buffer size used by NewBus when size <= 0.
const DefaultBusSize = 64

// Bus is a buffered channel of Messages with many producers and one
// consumer. Posting never blocks: when the buffer is full the message is
// logged and dropped so that a slow terminal cannot stall a volume apply.
type Bus struct {
	ch     chan Message
	engine *MessageTemplateEngine

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus with the given buffer size.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = DefaultBusSize
	}
	return &Bus{
		ch:     make(chan Message, size),
		engine: NewMessageTemplateEngine(),
	}
}

// Engine returns the template engine used by Emit.
func (b *Bus) Engine() *MessageTemplateEngine {
	return b.engine
}

// Messages returns the channel the consumer reads from. It is closed by Close.
func (b *Bus) Messages() <-chan Message {
	return b.ch
}

// Post enqueues msg, filling in Time when unset. It reports whether the
// message was accepted.
func (b *Bus) Post(msg Message) bool {
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false
	}

	select {
	case b.ch <- msg:
		return true
	default:
		logging.Warn("Events", "Event bus full, dropping message: %s", msg.Text)
		return false
	}
}

// Emit renders the template for reason and posts the result.
func (b *Bus) Emit(reason EventReason, data EventData) bool {
	return b.Post(Message{
		Type:      TypeFor(reason),
		Reason:    reason,
		Text:      b.engine.Render(reason, data),
		AttemptID: data.AttemptID,
	})
}

// Close closes the message channel. Later posts are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}
