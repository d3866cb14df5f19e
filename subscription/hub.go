package subscription

import (
	"fmt"
	"sync"

	"github.com/streamingfast/substreams-pcs-pricing/state"
	"go.uber.org/zap"
)

type topicSubscriptions map[string][]*Subscriber

// Hub fans the deltas of state builders out to the subscribers of their
// topic, usually the builder name.
type Hub struct {
	topicSubscriptions topicSubscriptions
	subscribersMutex   sync.Mutex
	closed             bool
}

func NewHub() *Hub {
	return &Hub{
		topicSubscriptions: topicSubscriptions{},
	}
}

func (h *Hub) RegisterTopic(topic string) error {
	h.subscribersMutex.Lock()
	defer h.subscribersMutex.Unlock()

	if _, found := h.topicSubscriptions[topic]; found {
		return fmt.Errorf("topic [%s] already registered", topic)
	}

	h.topicSubscriptions[topic] = []*Subscriber{}
	return nil
}

// BroadcastDeltas blocks while a subscriber input is full.
func (h *Hub) BroadcastDeltas(topic string, deltas []state.StateDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	h.subscribersMutex.Lock()
	defer h.subscribersMutex.Unlock()

	if h.closed {
		return fmt.Errorf("hub closed")
	}

	subscriptions, found := h.topicSubscriptions[topic]
	if !found {
		return fmt.Errorf("topic [%s] not found", topic)
	}

	for _, delta := range deltas {
		for _, subscription := range subscriptions {
			subscription.input <- delta
		}
	}
	zlog.Debug("deltas broadcast", zap.String("topic", topic), zap.Int("deltas", len(deltas)), zap.Int("subscribers", len(subscriptions)))
	return nil
}

func (h *Hub) Subscribe(subscriber *Subscriber, topic string) error {
	h.subscribersMutex.Lock()
	defer h.subscribersMutex.Unlock()

	if subscriptions, found := h.topicSubscriptions[topic]; found {
		h.topicSubscriptions[topic] = append(subscriptions, subscriber)
		return nil
	}

	return fmt.Errorf("topic [%s] not found", topic)
}

// Unsubscribe removes the subscriber from every topic and ends its stream.
func (h *Hub) Unsubscribe(removeSub *Subscriber) {
	h.subscribersMutex.Lock()
	defer h.subscribersMutex.Unlock()

	removed := false
	for topic, subscriptions := range h.topicSubscriptions {
		var kept []*Subscriber
		for _, sub := range subscriptions {
			if sub == removeSub {
				removed = true
				continue
			}
			kept = append(kept, sub)
		}
		h.topicSubscriptions[topic] = kept
	}

	if removed {
		removeSub.close()
	}
}

// Close ends the stream of every subscriber, they still receive what was
// broadcast before.
func (h *Hub) Close() {
	h.subscribersMutex.Lock()
	defer h.subscribersMutex.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	seen := map[*Subscriber]bool{}
	for _, subscriptions := range h.topicSubscriptions {
		for _, sub := range subscriptions {
			if !seen[sub] {
				seen[sub] = true
				sub.close()
			}
		}
	}
}
