// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

// Task type identifiers
const (
	TypeImageCleanup = "image:cleanup"
	TypeStatsRefresh = "stats:refresh"
)

// ImageCleanupPayload identifies a remote image whose delete must be retried
type ImageCleanupPayload struct {
	ExternalID string `json:"external_id"`
}

// Dispatcher enqueues background tasks through asynq
type Dispatcher struct {
	client *asynq.Client
	logger *slog.Logger
}

var _ ports.TaskDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a new task dispatcher
func NewDispatcher(client *asynq.Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger.With(slog.String("component", "dispatcher")),
	}
}

// EnqueueImageCleanup schedules a retry for a failed remote image delete
func (d *Dispatcher) EnqueueImageCleanup(ctx context.Context, externalID string) error {
	b, err := json.Marshal(ImageCleanupPayload{ExternalID: externalID})
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup payload: %w", err)
	}

	task := asynq.NewTask(TypeImageCleanup, b)
	info, err := d.client.EnqueueContext(ctx, task,
		asynq.Queue("low"),
		asynq.MaxRetry(5),
		asynq.ProcessIn(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue image cleanup: %w", err)
	}

	d.logger.InfoContext(ctx, "image cleanup enqueued",
		slog.String("task_id", info.ID),
		slog.String("external_id", externalID))

	return nil
}

// EnqueueStatsRefresh schedules a stats cache rewarm
func (d *Dispatcher) EnqueueStatsRefresh(ctx context.Context) error {
	task := asynq.NewTask(TypeStatsRefresh, nil)
	info, err := d.client.EnqueueContext(ctx, task, asynq.Queue("low"))
	if err != nil {
		return fmt.Errorf("failed to enqueue stats refresh: %w", err)
	}

	d.logger.DebugContext(ctx, "stats refresh enqueued",
		slog.String("task_id", info.ID))

	return nil
}
