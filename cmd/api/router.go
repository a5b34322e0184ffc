package api

import (
	"net/http"

	"reminders-backend/internal/reminder/delivery"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, reminderHandler *delivery.ReminderHandler, registry *prometheus.Registry) {
	// Dispatch trigger. The second path keeps the edge-function URL working.
	r.Any("/send_reminders", reminderHandler.SendReminders)
	r.Any("/functions/v1/send_reminders", reminderHandler.SendReminders)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}
