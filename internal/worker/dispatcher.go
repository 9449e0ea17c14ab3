package worker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const QueueOrderNotice = "jobs:order_notice"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OrderNoticePayload is enqueued after an LPO commits; the notice worker
// mails the summary to the fuel desk inbox.
type OrderNoticePayload struct {
	OrderID string `json:"order_id"`
	OrderNo int    `json:"order_no"`
	Station string `json:"station"`
	Trucks  int    `json:"trucks"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueOrderNotice pushes an order-issued notification job to Redis.
func (d *Dispatcher) EnqueueOrderNotice(ctx context.Context, payload OrderNoticePayload) error {
	return d.enqueue(ctx, QueueOrderNotice, "order_notice", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}
