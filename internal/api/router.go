package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a fresh engine.
func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(SubjectMiddleware(app.Subject()))

	r.GET("/healthz", Healthz(app))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/health-data/sleep", PostSleep(app))
		v1.POST("/health-data/heart-rate", PostHeartRate(app))
		v1.POST("/health-data/weight", PostWeight(app))
		v1.GET("/health-data/daily/:date", GetDailySummary(app))
		v1.GET("/health-data/trends", GetTrends(app))
		v1.GET("/health-data/:metric_type", GetRecentMetrics(app))

		v1.GET("/insights/recent", GetRecentInsights(app))
		v1.GET("/insights/daily/:date", GetDailyInsights(app))
	}

	return r
}
