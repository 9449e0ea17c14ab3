package worker

// notice_worker.go
// Processes order-issued notification jobs from QueueOrderNotice.
// Mails a short LPO summary to the fuel desk inbox via SMTP.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/infra"
)

// OrderNoticeWorker processes jobs from QueueOrderNotice.
type OrderNoticeWorker struct {
	mailer *infra.Mailer
	to     string
}

// NewOrderNoticeWorker creates a worker mailing to the configured inbox.
func NewOrderNoticeWorker(mailer *infra.Mailer, to string) *OrderNoticeWorker {
	return &OrderNoticeWorker{mailer: mailer, to: to}
}

// Process sends the order summary email.
func (w *OrderNoticeWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload OrderNoticePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("order notice: invalid payload: %w", err)
	}
	if w.to == "" {
		// No inbox configured — nothing to do.
		return nil
	}

	subject := fmt.Sprintf("LPO #%d issued — %s", payload.OrderNo, payload.Station)
	body := fmt.Sprintf("LPO #%d was issued to %s with %d truck line(s).\nOrder id: %s\n",
		payload.OrderNo, payload.Station, payload.Trucks, payload.OrderID)
	if err := w.mailer.Send(w.to, subject, body); err != nil {
		return fmt.Errorf("order notice: send: %w", err)
	}
	return nil
}
