// Package broadcaster fans out state-change events to live-update
// subscribers. Delivery is best-effort: a subscriber that cannot keep up has
// events dropped rather than stalling the publisher.
package broadcaster

import (
	"encoding/json"
	"fmt"
	"sync"

	"verify-station/config"

	"github.com/sirupsen/logrus"
)

// subscriberBuffer bounds how far a slow client may fall behind before
// events are dropped for it.
const subscriberBuffer = 16

type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]chan string
	nextID uint64
}

func New() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]chan string)}
}

// Subscribe registers a new live-update channel and returns its handle.
func (b *Broadcaster) Subscribe() (uint64, <-chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan string, subscriberBuffer)
	b.subs[id] = ch

	config.GetLogger().WithFields(logrus.Fields{
		"subscriber":  id,
		"subscribers": len(b.subs),
	}).Debug("SSE subscriber connected")
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call more
// than once for the same handle.
func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)

	config.GetLogger().WithFields(logrus.Fields{
		"subscriber":  id,
		"subscribers": len(b.subs),
	}).Debug("SSE subscriber disconnected")
}

// Publish serializes payload and pushes an SSE frame to every subscriber.
// Never blocks: a full subscriber buffer drops this event for that client.
func (b *Broadcaster) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"event": eventType,
		}).Error("Failed to serialize event: " + err.Error())
		return
	}
	message := fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, data)

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- message:
		default:
			config.GetLogger().WithFields(logrus.Fields{
				"subscriber": id,
				"event":      eventType,
			}).Warn("Dropped event for slow subscriber")
		}
	}
}

// Count returns the number of registered subscribers.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
