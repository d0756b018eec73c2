// internal/workers/image_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/takeoneapp/takeone-be/internal/core/ports"
)

// ImageCleanupProcessor retries remote image deletes that failed inline.
// Asynq's retry policy provides the backoff between attempts.
type ImageCleanupProcessor struct {
	images ports.ImageStore
	logger *slog.Logger
}

// NewImageCleanupProcessor creates a new image cleanup processor
func NewImageCleanupProcessor(images ports.ImageStore, logger *slog.Logger) *ImageCleanupProcessor {
	return &ImageCleanupProcessor{
		images: images,
		logger: logger.With(slog.String("processor", "image_cleanup")),
	}
}

// CleanupImage deletes the orphaned remote image named by the payload
func (p *ImageCleanupProcessor) CleanupImage(ctx context.Context, t *asynq.Task) error {
	var payload ImageCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.ExternalID == "" {
		p.logger.WarnContext(ctx, "cleanup task without external id, skipping")
		return nil
	}

	if err := p.images.Delete(ctx, payload.ExternalID); err != nil {
		// Returning the error lets asynq retry with backoff
		return fmt.Errorf("image cleanup failed for %s: %w", payload.ExternalID, err)
	}

	p.logger.InfoContext(ctx, "orphaned image cleaned up",
		slog.String("external_id", payload.ExternalID))

	return nil
}
