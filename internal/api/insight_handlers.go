package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourname/healthsync/internal/metrics"
	"github.com/yourname/healthsync/internal/response"
	"github.com/yourname/healthsync/internal/service"
)

// Insight endpoints answer 200 with a usable payload once input validation
// passes: provider failures surface as the fallback insight, not as errors.

func GetRecentInsights(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("subject")

		days, ok := parseDays(c, app.Logger(), 7, 1, 30)
		if !ok {
			return
		}

		entries, err := app.Engine().RecentMetrics(c.Request.Context(), subject, time.Now(), days)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}

		ins, disposition := app.Pipeline().Generate(c.Request.Context(), entries)
		metrics.InsightRequests.WithLabelValues(string(disposition)).Inc()
		c.JSON(http.StatusOK, response.Insights(ins))
	}
}

func GetDailyInsights(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("subject")

		date, ok := parseDate(c, app.Logger())
		if !ok {
			return
		}

		summary, err := app.Engine().DailySummary(c.Request.Context(), subject, date)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}

		ins, disposition := app.Pipeline().Generate(c.Request.Context(), service.SummaryMetrics(summary))
		metrics.InsightRequests.WithLabelValues(string(disposition)).Inc()
		c.JSON(http.StatusOK, response.Insights(ins))
	}
}
