package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const metricsInterval = 7 * time.Second

// DBStatter reports connection pool statistics. *pgxpool.Pool satisfies it.
type DBStatter interface {
	Stat() *pgxpool.Stat
}

// RedisStatter reports client pool statistics. *redis.Client satisfies it.
type RedisStatter interface {
	PoolStats() *redis.PoolStats
}

// SystemHandler streams Go runtime and connection pool metrics via SSE.
type SystemHandler struct {
	db        DBStatter
	rdb       RedisStatter
	startTime time.Time
	interval  time.Duration
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler. Either pool may be nil.
func NewSystemHandler(db DBStatter, rdb RedisStatter, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		rdb:       rdb,
		startTime: time.Now(),
		interval:  metricsInterval,
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// Go Application
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	StackInuse uint64 `json:"stack_inuse"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`

	// Postgres pool
	DBTotalConns    int32 `json:"db_total_conns"`
	DBIdleConns     int32 `json:"db_idle_conns"`
	DBAcquiredConns int32 `json:"db_acquired_conns"`
	DBMaxConns      int32 `json:"db_max_conns"`

	// Redis pool
	RedisTotalConns uint32 `json:"redis_total_conns"`
	RedisIdleConns  uint32 `json:"redis_idle_conns"`
	RedisTimeouts   uint32 `json:"redis_timeouts"`
}

// SystemMetricsSSE godoc
// GET /api/v1/admin/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Msg("Admin connected to system metrics SSE")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	// Send immediately on connect, then every tick
	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Admin disconnected from system metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

// SystemMetrics godoc
// GET /api/v1/admin/system/metrics/snapshot
// One-shot variant of the SSE stream.
func (h *SystemHandler) SystemMetrics(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"system": h.collect()})
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	data, err := json.Marshal(h.collect())
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect() systemMetrics {
	m := systemMetrics{
		Timestamp: time.Now().Unix(),
		Uptime:    formatDuration(time.Since(h.startTime)),
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.Goroutines = runtime.NumGoroutine()
	m.HeapAlloc = ms.HeapAlloc
	m.HeapSys = ms.Sys
	m.StackInuse = ms.StackInuse
	m.NumGC = ms.NumGC

	if h.db != nil {
		if st := h.db.Stat(); st != nil {
			m.DBTotalConns = st.TotalConns()
			m.DBIdleConns = st.IdleConns()
			m.DBAcquiredConns = st.AcquiredConns()
			m.DBMaxConns = st.MaxConns()
		}
	}

	if h.rdb != nil {
		if st := h.rdb.PoolStats(); st != nil {
			m.RedisTotalConns = st.TotalConns
			m.RedisIdleConns = st.IdleConns
			m.RedisTimeouts = st.Timeouts
		}
	}

	return m
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
