// internal/core/ports/tasks.go
package ports

import "context"

// TaskDispatcher enqueues background work for the worker process. Image
// cleanup covers remote deletes that failed inline; they are retried with
// the queue's backoff instead of blocking the request.
type TaskDispatcher interface {
	EnqueueImageCleanup(ctx context.Context, externalID string) error
	EnqueueStatsRefresh(ctx context.Context) error
}
