package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// Heartbeat is the scheduled entry point. It only logs; it is the place for
// future background work.
func Heartbeat(_ context.Context, ev events.CloudWatchEvent) error {
	slog.Info("corporate AI heartbeat",
		"time", time.Now().UTC().Format(time.RFC3339Nano),
		"event_id", ev.ID,
		"scheduled_at", ev.Time,
	)
	return nil
}
