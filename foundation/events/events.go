// Package events fans node activity out to subscribers such as websocket
// clients. Publishing never blocks: a subscriber that falls behind loses
// messages and the losses are counted.
package events

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when subscribing after Shutdown.
var ErrClosed = errors.New("events closed")

// subscriberBuffer is how many messages a subscriber can fall behind by
// before messages are dropped.
const subscriberBuffer = 100

type subscriber struct {
	ch      chan string
	prefix  string
	dropped atomic.Uint64
}

// Events holds the set of subscribers keyed by a caller provided id,
// usually the trace id of the request that subscribed.
type Events struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber
	closed bool
}

// New constructs an empty set of subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]*subscriber),
	}
}

// Subscribe registers the id and returns the channel its messages arrive
// on. Only messages starting with prefix are delivered; an empty prefix
// receives everything.
func (evt *Events) Subscribe(id string, prefix string) (<-chan string, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if evt.closed {
		return nil, ErrClosed
	}

	if _, exists := evt.subs[id]; exists {
		return nil, fmt.Errorf("id %q is already subscribed", id)
	}

	sub := subscriber{
		ch:     make(chan string, subscriberBuffer),
		prefix: prefix,
	}
	evt.subs[id] = &sub

	return sub.ch, nil
}

// Unsubscribe closes the channel of the id and returns how many messages
// the subscriber missed because it was not keeping up.
func (evt *Events) Unsubscribe(id string) (uint64, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.subs[id]
	if !exists {
		return 0, fmt.Errorf("id %q is not subscribed", id)
	}

	delete(evt.subs, id)
	close(sub.ch)

	return sub.dropped.Load(), nil
}

// Publish offers the message to every subscriber whose prefix matches and
// returns how many of them received it.
func (evt *Events) Publish(msg string) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	var delivered int
	for _, sub := range evt.subs {
		if !strings.HasPrefix(msg, sub.prefix) {
			continue
		}

		select {
		case sub.ch <- msg:
			delivered++
		default:
			sub.dropped.Add(1)
		}
	}

	return delivered
}

// Subscribers returns the number of current subscribers.
func (evt *Events) Subscribers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Shutdown closes every subscriber channel. Later calls to Subscribe fail.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	evt.closed = true
	for id, sub := range evt.subs {
		delete(evt.subs, id)
		close(sub.ch)
	}
}
