package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/adiretotes/store-api/pkg/models"
)

// Cart mutations are pushed over per-owner pub/sub channels so another
// session of the same owner sees the change without polling.

func cartChannel(owner string) string {
	return fmt.Sprintf("cart:events:%s", owner)
}

// EventBus publishes and subscribes to cart change events.
type EventBus struct{}

func (b *EventBus) Publish(ctx context.Context, ev models.CartEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return Client().Publish(ctx, cartChannel(ev.Owner), payload).Err()
}

// Subscribe streams the owner's cart events until ctx is cancelled or
// the returned stop function is called.
func (b *EventBus) Subscribe(ctx context.Context, owner string) (<-chan models.CartEvent, func()) {
	sub := Client().Subscribe(ctx, cartChannel(owner))
	out := make(chan models.CartEvent)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev models.CartEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("Dropping malformed cart event for %s: %v", owner, err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() {
		if err := sub.Close(); err != nil {
			log.Printf("Closing cart subscription for %s: %v", owner, err)
		}
	}
	return out, stop
}
