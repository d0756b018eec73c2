// internal/handlers/health.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/takeoneapp/takeone-be/internal/adapters/db"
	"github.com/takeoneapp/takeone-be/internal/pkg/config"
)

// HealthHandler reports liveness and readiness of the API process and
// its dependencies
type HealthHandler struct {
	db        *db.Database
	redis     *redis.Client
	asynq     *asynq.Inspector
	config    *config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	database *db.Database,
	redisClient *redis.Client,
	asynqInspector *asynq.Inspector,
	cfg *config.Config,
	logger *slog.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:        database,
		redis:     redisClient,
		asynq:     asynqInspector,
		config:    cfg,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

// checkResult is the outcome of checking one dependency
type checkResult struct {
	Status  string         `json:"status"`
	Latency string         `json:"latency"`
	Error   string         `json:"error,omitempty"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// healthReport is the body of GET /health
type healthReport struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Checks      map[string]checkResult `json:"checks"`
	Runtime     runtimeStats           `json:"runtime"`
}

type runtimeStats struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	HeapMB     uint64 `json:"heap_mb"`
	GCCycles   uint32 `json:"gc_cycles"`
}

type depCheck struct {
	name string
	run  func(context.Context) (map[string]any, error)
}

// Health handles the /health endpoint. Any failing dependency marks the
// report degraded and the response goes out as 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := []depCheck{
		{name: "database", run: h.checkDatabase},
		{name: "redis", run: h.checkRedis},
	}
	if h.asynq != nil {
		checks = append(checks, depCheck{name: "queue", run: h.checkQueues})
	}

	report := healthReport{
		Status:      "healthy",
		Version:     h.config.App.Version,
		Environment: h.config.App.Environment,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now(),
		Checks:      make(map[string]checkResult, len(checks)),
		Runtime:     collectRuntimeStats(),
	}

	for _, p := range checks {
		start := time.Now()
		detail, err := p.run(ctx)
		result := checkResult{
			Status:  "healthy",
			Latency: time.Since(start).String(),
			Detail:  detail,
		}
		if err != nil {
			result.Status = "unhealthy"
			result.Error = err.Error()
			report.Status = "degraded"
			h.logger.ErrorContext(ctx, "dependency check failed",
				slog.String("dependency", p.name),
				slog.String("error", err.Error()))
		}
		report.Checks[p.name] = result
	}

	statusCode := http.StatusOK
	if report.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode health response",
			slog.String("error", err.Error()))
	}
}

// Readiness handles the /ready endpoint. It only answers whether the
// process can serve traffic, so the queue inspector is not consulted.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ready := true
	details := make(map[string]string)

	if err := h.db.Ping(ctx); err != nil {
		ready = false
		details["database"] = "not ready"
	} else {
		details["database"] = "ready"
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		ready = false
		details["redis"] = "not ready"
	} else {
		details["redis"] = "ready"
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)

	payload := map[string]interface{}{
		"ready":   ready,
		"details": details,
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode readiness response",
			slog.String("error", err.Error()))
	}
}

func (h *HealthHandler) checkDatabase(ctx context.Context) (map[string]any, error) {
	if err := h.db.Ping(ctx); err != nil {
		return nil, err
	}

	detail := make(map[string]any)
	for k, v := range h.db.Health(ctx) {
		detail[k] = v
	}
	return detail, nil
}

func (h *HealthHandler) checkRedis(ctx context.Context) (map[string]any, error) {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	stats := h.redis.PoolStats()
	return map[string]any{
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}, nil
}

// checkQueues reports the backlog per asynq queue so a stuck image
// cleanup or stats refresh shows up in the health report
func (h *HealthHandler) checkQueues(_ context.Context) (map[string]any, error) {
	queues, err := h.asynq.Queues()
	if err != nil {
		return nil, err
	}

	detail := make(map[string]any, len(queues)+1)
	for _, queue := range queues {
		qInfo, err := h.asynq.GetQueueInfo(queue)
		if err != nil {
			continue
		}
		detail[queue] = map[string]any{
			"pending":   qInfo.Pending,
			"active":    qInfo.Active,
			"scheduled": qInfo.Scheduled,
			"retry":     qInfo.Retry,
		}
	}

	if servers, err := h.asynq.Servers(); err == nil {
		detail["servers"] = len(servers)
	}

	return detail, nil
}

func collectRuntimeStats() runtimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return runtimeStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		HeapMB:     mem.HeapAlloc / 1024 / 1024,
		GCCycles:   mem.NumGC,
	}
}
