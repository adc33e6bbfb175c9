package api

import (
	"sync"

	"github.com/alexanderramin/staffplan/internal/workspace"
)

// Broker fans workspace snapshots out to WebSocket subscribers. It
// satisfies workspace.Publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[chan workspace.Snapshot]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[chan workspace.Snapshot]struct{}{}}
}

func (b *Broker) Subscribe() chan workspace.Snapshot {
	ch := make(chan workspace.Snapshot, 8)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan workspace.Snapshot) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish never blocks: a subscriber whose buffer is full misses the
// snapshot and catches up with the next one.
func (b *Broker) Publish(s workspace.Snapshot) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- s:
		default:
		}
	}
	b.mu.Unlock()
}

// Subscribers reports the number of open subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
