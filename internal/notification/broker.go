package notification

import "sync"

const subscriberBufferSize = 16

// broker fans newly inserted notifications out to in-process subscribers.
// Slow subscribers are skipped rather than blocking an insert.
type broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Record]struct{}
}

func newBroker() *broker {
	return &broker{subscribers: make(map[string]map[chan Record]struct{})}
}

func (b *broker) subscribe(recipient string) (<-chan Record, func()) {
	channel := make(chan Record, subscriberBufferSize)

	b.mu.Lock()
	if _, exists := b.subscribers[recipient]; !exists {
		b.subscribers[recipient] = make(map[chan Record]struct{})
	}
	b.subscribers[recipient][channel] = struct{}{}
	b.mu.Unlock()

	cleanup := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subscribers, ok := b.subscribers[recipient]; ok {
			if _, present := subscribers[channel]; present {
				delete(subscribers, channel)
				close(channel)
			}
			if len(subscribers) == 0 {
				delete(b.subscribers, recipient)
			}
		}
	}

	return channel, cleanup
}

func (b *broker) broadcast(recipient string, record Record) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers[recipient] {
		select {
		case channel <- record:
		default:
		}
	}
}
