// Package connectivity tracks whether the store of record is reachable.
package connectivity

import "sync"

// Signal reports the current connectivity and publishes transitions.
type Signal interface {
	Online() bool
	// Subscribe returns a channel receiving every transition. The returned
	// func unsubscribes and closes the channel.
	Subscribe() (<-chan bool, func())
}

// broadcaster is the shared state behind Monitor and Static.
type broadcaster struct {
	mu     sync.Mutex
	online bool
	subs   map[chan bool]struct{}
}

func newBroadcaster(online bool) *broadcaster {
	return &broadcaster{online: online, subs: make(map[chan bool]struct{})}
}

func (b *broadcaster) Online() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online
}

func (b *broadcaster) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 8)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// set records online and reports whether it changed. Subscribers that are
// not keeping up miss the edge rather than block the publisher.
func (b *broadcaster) set(online bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.online == online {
		return false
	}
	b.online = online
	for ch := range b.subs {
		select {
		case ch <- online:
		default:
		}
	}
	return true
}

// Static is a Signal driven by hand.
type Static struct {
	*broadcaster
}

func NewStatic(online bool) *Static {
	return &Static{broadcaster: newBroadcaster(online)}
}

// Set changes the state, publishing a transition when it differs.
func (s *Static) Set(online bool) {
	s.set(online)
}
