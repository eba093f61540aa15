package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tbond.backend/internal/interfaces/http/middleware"
	"tbond.backend/pkg/metrics"
)

const (
	healthPath  = "/health"
	metricsPath = "/metrics"

	serviceName    = "tbond-backend"
	serviceVersion = "0.1.0"
)

// applyCORSMiddleware lets the browser page call the API from any origin
func applyCORSMiddleware(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:   []string{middleware.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))
}

func registerHealthRoute(r *gin.Engine) {
	r.GET(healthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET(metricsPath, gin.WrapH(metrics.Handler()))
}
