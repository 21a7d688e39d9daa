package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"congresswire/app/database"
)

type Handler struct {
	itemRepo database.ItemRepository
}

func NewHandler(itemRepo database.ItemRepository) *Handler {
	return &Handler{
		itemRepo: itemRepo,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if stats, err := h.itemRepo.Stats(); err == nil {
		health["items"] = stats.Total()
		health["status"] = "ok"
	} else {
		health["status"] = "degraded"
		slog.Error("Database error", "operation", "stats", "error", err)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.itemRepo.Stats()
	if err != nil {
		slog.Error("Database error", "operation", "stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	byKind := make(map[string]map[string]int, len(stats.ByKind))
	for kind, counts := range stats.ByKind {
		byKind[string(kind)] = map[string]int{
			"posted":   counts.Posted,
			"unposted": counts.Unposted,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    stats.Total(),
		"unposted": stats.Unposted(),
		"by_kind":  byKind,
	})
}
