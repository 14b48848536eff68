package event

import "sync"

// Topics published by the stores. Signals carry no payload; subscribers
// re-read the store that changed.
const (
	TopicSessionChanged = "session.changed"
	TopicCartChanged    = "cart.changed"
)

// Bus is an in-process broadcast of payload-free change signals. Publishing
// never blocks: each subscriber channel holds at most one pending signal and
// further publishes coalesce into it.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]chan struct{})}
}

// Subscribe registers for a topic and returns the signal channel plus an
// unsubscribe func. The channel is closed on unsubscribe.
func (b *Bus) Subscribe(topic string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs[topic] {
			if sub == ch {
				b.subs[topic] = append(b.subs[topic][:i], b.subs[topic][i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, unsubscribe
}

func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
