// Package handlers - Health check handlers.
//
// Health checks позволяют оркестраторам (Kubernetes, Docker Swarm)
// проверять состояние приложения.
//
// Два типа health checks:
// - Liveness: Приложение работает? (если нет - restart)
// - Readiness: Приложение готово принимать трафик? (если нет - no traffic)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/wallethub/eventcore/internal/adapters/http/middleware"
	"github.com/wallethub/eventcore/internal/application/ports"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dispatcherStaleAfter bounds how long the outbox dispatcher can go
// without completing a tick before /healthz reports it unhealthy - a
// few missed ticks past the configured interval, not just one.
const dispatcherStaleAfter = 30 * time.Second

// ============================================
// Health Check Handler
// ============================================

// HealthHandler обрабатывает health check запросы.
type HealthHandler struct {
	pool                *pgxpool.Pool
	sagaStore           ports.SagaStore
	dispatcherHeartbeat func() (time.Time, bool)
	version             string
	buildTime           string
	startTime           time.Time
}

// NewHealthHandler создаёт новый HealthHandler. sagaStore and
// dispatcherHeartbeat may be nil - a process that only serves the HTTP
// API and never runs the event plane reports both as not applicable
// rather than failing the check.
func NewHealthHandler(pool *pgxpool.Pool, sagaStore ports.SagaStore, dispatcherHeartbeat func() (time.Time, bool), version, buildTime string) *HealthHandler {
	return &HealthHandler{
		pool:                pool,
		sagaStore:           sagaStore,
		dispatcherHeartbeat: dispatcherHeartbeat,
		version:             version,
		buildTime:           buildTime,
		startTime:           time.Now(),
	}
}

// ============================================
// Response Types
// ============================================

// HealthResponse - ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`           // "healthy", "unhealthy", "degraded"
	Version   string            `json:"version"`          // Версия приложения
	BuildTime string            `json:"build_time"`       // Время сборки
	Uptime    string            `json:"uptime"`           // Время работы
	Timestamp time.Time         `json:"timestamp"`        // Текущее время
	Checks    map[string]string `json:"checks,omitempty"` // Детали проверок
}

// ReadinessResponse - ответ readiness check.
type ReadinessResponse struct {
	Ready     bool              `json:"ready"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

// ============================================
// HTTP Handlers
// ============================================

// Health возвращает базовый health статус.
//
// @Summary Health check
// @Description Basic health check endpoint (liveness probe)
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	uptime := time.Since(h.startTime).Round(time.Second).String()

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		BuildTime: h.buildTime,
		Uptime:    uptime,
		Timestamp: time.Now().UTC(),
	})
}

// Ready проверяет готовность приложения.
//
// @Summary Readiness check
// @Description Readiness probe - checks all dependencies
// @Tags Health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := make(map[string]string)
	allReady := true

	// Проверяем PostgreSQL
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.pool.Ping(ctx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			allReady = false
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	// Здесь можно добавить проверки других зависимостей:
	// - Redis
	// - Message Queue
	// - External APIs

	statusCode := http.StatusOK
	if !allReady {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, ReadinessResponse{
		Ready:     allReady,
		Checks:    checks,
		Timestamp: time.Now().UTC(),
	})
}

// Healthz reports the operational health of the event plane: the
// outbox dispatcher's tick cadence and the saga store's reachability,
// on top of the database check Ready already performs. Degrades the
// same way Ready does - 503 the moment any dependency it can observe
// is unhealthy, never a "degraded but 200" state.
//
// @Summary Event plane health check
// @Description Checks outbox dispatcher liveness and saga store reachability
// @Tags Health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	checks := make(map[string]string)
	healthy := true

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		if err := h.pool.Ping(ctx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "healthy"
		}
		cancel()
	} else {
		checks["database"] = "not configured"
	}

	switch {
	case h.dispatcherHeartbeat == nil:
		checks["dispatcher"] = "not applicable: event plane not running in this process"
	default:
		lastTick, ran := h.dispatcherHeartbeat()
		switch {
		case !ran:
			checks["dispatcher"] = "not yet ticked"
		case time.Since(lastTick) > dispatcherStaleAfter:
			checks["dispatcher"] = "unhealthy: no tick in " + time.Since(lastTick).Round(time.Second).String()
			healthy = false
		default:
			checks["dispatcher"] = "healthy"
		}
	}

	switch {
	case h.sagaStore == nil:
		checks["saga_store"] = "not applicable: event plane not running in this process"
	default:
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		_, err := h.sagaStore.Load(ctx, "__healthz_probe__")
		cancel()
		if err != nil && !errors.Is(err, ports.ErrSagaNotFound) {
			checks["saga_store"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["saga_store"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, ReadinessResponse{
		Ready:     healthy,
		Checks:    checks,
		Timestamp: time.Now().UTC(),
	})
}

// Live возвращает статус "живости" приложения.
//
// @Summary Liveness check
// @Description Simple liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// DetailedHealth возвращает детальную информацию о состоянии.
//
// @Summary Detailed health check
// @Description Detailed health information including system metrics
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health/detailed [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	checks := make(map[string]string)

	// Проверяем PostgreSQL
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.pool.Ping(ctx); err != nil {
			checks["database"] = "unhealthy"
		} else {
			// Добавляем статистику пула соединений
			stats := h.pool.Stat()
			checks["database"] = "healthy"
			checks["db_total_conns"] = strconv.Itoa(int(stats.TotalConns()))
			checks["db_idle_conns"] = strconv.Itoa(int(stats.IdleConns()))
			checks["db_acquired_conns"] = strconv.Itoa(int(stats.AcquiredConns()))

			// Update Prometheus metrics
			middleware.UpdateDBConnections(stats.IdleConns(), stats.AcquiredConns(), stats.MaxConns())
		}
	}

	status := "healthy"
	for _, v := range checks {
		if v == "unhealthy" {
			status = "unhealthy"
			break
		}
	}

	uptime := time.Since(h.startTime).Round(time.Second).String()

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Version:   h.version,
		BuildTime: h.buildTime,
		Uptime:    uptime,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

// RegisterRoutes регистрирует health check маршруты.
//
// Routes:
// - GET /health          - Basic health check
// - GET /health/detailed - Detailed health with metrics
// - GET /healthz         - Event plane health (dispatcher + saga store)
// - GET /ready           - Readiness probe
// - GET /live            - Liveness probe
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/health/detailed", h.DetailedHealth)
	router.GET("/healthz", h.Healthz)
	router.GET("/ready", h.Ready)
	router.GET("/live", h.Live)
}
