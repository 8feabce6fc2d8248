package iot

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// SpikeEvent is the payload published when the startup spike fires.
type SpikeEvent struct {
	PropertyID  uint      `json:"propertyId"`
	AvgKWh      float64   `json:"avg_kWh"`
	AvgTemp     float64   `json:"avg_temp"`
	AvgHumidity float64   `json:"avg_humidity"`
	Timestamp   time.Time `json:"timestamp"`
}

// Notifier delivers spike events to an external alerting channel.
type Notifier interface {
	NotifySpike(ctx context.Context, event SpikeEvent) error
}

// RedisNotifier publishes spike events on a redis pub/sub topic.
type RedisNotifier struct {
	Client *redis.Client
	Topic  string
}

func (n *RedisNotifier) NotifySpike(ctx context.Context, event SpikeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.Client.Publish(ctx, n.Topic, payload).Err(); err != nil {
		return err
	}
	log.Printf("iot: spike published to %s for property %d", n.Topic, event.PropertyID)
	return nil
}

// LogNotifier is the fallback when no redis is configured.
type LogNotifier struct{}

func (LogNotifier) NotifySpike(_ context.Context, event SpikeEvent) error {
	log.Printf("iot: spike detected for property %d (%.2f kWh)", event.PropertyID, event.AvgKWh)
	return nil
}
