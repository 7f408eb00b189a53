package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthRegistrar exposes GET /health backed by a database ping.
type HealthRegistrar struct {
	db *gorm.DB
}

func NewHealthRegistrar(db *gorm.DB) *HealthRegistrar {
	return &HealthRegistrar{db: db}
}

func (h *HealthRegistrar) Register(r gin.IRouter) {
	r.GET("/health", h.health)
}

func (h *HealthRegistrar) health(c *gin.Context) {
	status, dbState := http.StatusOK, "ok"
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		status, dbState = http.StatusServiceUnavailable, "unreachable"
	}
	c.JSON(status, gin.H{
		"status":    http.StatusText(status),
		"database":  dbState,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
