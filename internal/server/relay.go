package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const relayChannel = "quissme:events"

// Relay publishes couple events through redis so every instance behind a
// load balancer can feed its own local Broker. Run must be running for
// events to reach local subscribers, including the publishing instance's.
type Relay struct {
	rdb    *redis.Client
	local  *Broker
	logger *slog.Logger
}

func NewRelay(rdb *redis.Client, local *Broker, logger *slog.Logger) *Relay {
	return &Relay{rdb: rdb, local: local, logger: logger}
}

type relayMessage struct {
	CoupleID string `json:"coupleId"`
	Event    Event  `json:"event"`
}

func (r *Relay) Publish(coupleID string, event Event) {
	data, err := json.Marshal(relayMessage{CoupleID: coupleID, Event: event})
	if err != nil {
		r.logger.Error("encoding relay message", "error", err)
		return
	}
	if err := r.rdb.Publish(context.Background(), relayChannel, data).Err(); err != nil {
		// Local subscribers still get the event.
		r.logger.Warn("redis publish failed, delivering locally", "error", err)
		r.local.Publish(coupleID, event)
	}
}

// Run forwards relayed events into the local broker until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, relayChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", relayChannel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(msg.Payload)
		}
	}
}

func (r *Relay) forward(payload string) {
	var m relayMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		r.logger.Warn("dropping malformed relay message", "error", err)
		return
	}
	r.local.Publish(m.CoupleID, m.Event)
}
