package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tasktrack/internal/config"
)

type HealthHandler struct {
	cfg       *config.Config
	db        *gorm.DB
	redis     *redis.Client
	mqConn    *amqp.Connection
	startedAt time.Time
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// NewHealthHandler reports on db always, and on redis and rabbitmq only when
// they are enabled in cfg.
func NewHealthHandler(cfg *config.Config, db *gorm.DB, redisCli *redis.Client, mqConn *amqp.Connection, startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		cfg:       cfg,
		db:        db,
		redis:     redisCli,
		mqConn:    mqConn,
		startedAt: startedAt,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{}
	allOK := true

	dbStatus := h.checkDatabase(ctx)
	deps[h.cfg.Database.Driver] = dbStatus
	allOK = allOK && dbStatus.OK

	if h.cfg.Redis.Enabled {
		redisStatus := h.checkRedis(ctx)
		deps["redis"] = redisStatus
		allOK = allOK && redisStatus.OK
	}
	if h.cfg.RabbitMQ.Enabled {
		rmqStatus := h.checkRabbitMQ()
		deps["rabbitmq"] = rmqStatus
		allOK = allOK && rmqStatus.OK
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":          h.cfg.App.Name,
		"env":          h.cfg.App.Env,
		"uptime_sec":   int(time.Since(h.startedAt).Seconds()),
		"dependencies": deps,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) dependencyStatus {
	if h.db == nil {
		return dependencyStatus{OK: false, Message: "not connected"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if h.redis == nil {
		return dependencyStatus{OK: false, Message: "not connected"}
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.mqConn == nil || h.mqConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
