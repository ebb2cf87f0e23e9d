package logsink

import (
	"sync"
	"sync/atomic"
	"time"
)

// Entry is one log line delivered to subscribers.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	KeyVals []any
}

// Broadcaster is a Sink that fans entries out to subscribers. Emission never
// blocks: an entry for a subscriber whose buffer is full is dropped and
// counted. Each subscriber sees entries in emission order.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[uint64]chan Entry
	nextID  uint64
	closed  bool
	dropped atomic.Uint64
	now     func() time.Time
}

// NewBroadcaster creates a Broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[uint64]chan Entry),
		now:  time.Now,
	}
}

// Subscribe registers a subscriber with the given buffer size and returns its
// channel and an unsubscribe func. Unsubscribing closes the channel; calling
// it more than once is safe.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Entry, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Entry, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

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

// Log delivers an entry to every current subscriber.
func (b *Broadcaster) Log(level Level, msg string, keyvals ...any) {
	e := Entry{
		Time:    b.now(),
		Level:   level,
		Message: msg,
		KeyVals: keyvals,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns how many entries were discarded because a subscriber's
// buffer was full.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close unsubscribes everyone. Later Subscribe calls return a closed channel.
func (b *Broadcaster) Close() {
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

// Forward copies entries from ch to dst until ch is closed.
func Forward(ch <-chan Entry, dst Sink) {
	for e := range ch {
		dst.Log(e.Level, e.Message, e.KeyVals...)
	}
}
