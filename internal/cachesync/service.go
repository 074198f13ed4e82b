// Package cachesync menjaga cache status order di Redis tetap sinkron
// dengan event stream, supaya GET status tidak selalu jatuh ke DB.
package cachesync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-order-inventory/internal/kafka"
	"github.com/ariefcatur/go-order-inventory/internal/orders"
	"github.com/ariefcatur/go-order-inventory/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	Log         *slog.Logger
	ServiceName string
}

// Handle dipasang sebagai handler consumer untuk semua order topic.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via Redis (pakai event_id); event ulang bukan error
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderID, p.Status)
	case orders.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderID, orders.StatusCancelled)
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderID, p.NewStatus)
	default:
		return nil // ignore
	}
}

func (s *Service) setStatus(ctx context.Context, orderID string, st orders.Status) error {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body := fmt.Sprintf(`{"status":%q}`, st)
	if err := s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
		s.Log.Error("cache set failed", "order_id", orderID, "error", err)
		return err
	}
	return nil
}
