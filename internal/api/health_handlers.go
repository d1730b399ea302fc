package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourname/healthsync/internal"
	"github.com/yourname/healthsync/internal/metrics"
	"github.com/yourname/healthsync/internal/response"
	"github.com/yourname/healthsync/internal/service"
)

func PostSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("subject")

		var body service.SleepRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			BadRequest(c, app.Logger(), "body", "invalid JSON: "+err.Error())
			return
		}

		rec, err := service.CreateSleep(c.Request.Context(), app.Store(), subject, &body)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}
		metrics.RecordsIngested.WithLabelValues(string(internal.KindSleep)).Inc()
		app.Logger().Infof("[request_id=%s] stored sleep record id=%d", c.GetString("request_id"), rec.ID)
		c.JSON(http.StatusOK, response.Message("Sleep data stored successfully"))
	}
}

func PostHeartRate(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("subject")

		var body service.HeartRateRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			BadRequest(c, app.Logger(), "body", "invalid JSON: "+err.Error())
			return
		}

		rec, err := service.CreateHeartRate(c.Request.Context(), app.Store(), subject, &body)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}
		metrics.RecordsIngested.WithLabelValues(string(internal.KindHeartRate)).Inc()
		app.Logger().Infof("[request_id=%s] stored heart rate record id=%d", c.GetString("request_id"), rec.ID)
		c.JSON(http.StatusOK, response.Message("Heart rate data stored successfully"))
	}
}

func PostWeight(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("subject")

		var body service.WeightRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			BadRequest(c, app.Logger(), "body", "invalid JSON: "+err.Error())
			return
		}

		rec, err := service.CreateWeight(c.Request.Context(), app.Store(), subject, &body)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}
		metrics.RecordsIngested.WithLabelValues(string(internal.KindWeight)).Inc()
		app.Logger().Infof("[request_id=%s] stored weight record id=%d", c.GetString("request_id"), rec.ID)
		c.JSON(http.StatusOK, response.Message("Weight data stored successfully"))
	}
}

func GetRecentMetrics(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("subject")

		kind, ok := internal.ParseMetricKind(c.Param("metric_type"))
		if !ok {
			BadRequest(c, app.Logger(), "metric_type", "must be one of sleep, heart_rate, weight")
			return
		}
		days, ok := parseDays(c, app.Logger(), 7, 1, 30)
		if !ok {
			return
		}

		data, err := app.Engine().RecentRecords(c.Request.Context(), subject, kind, time.Now(), days)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}
		c.JSON(http.StatusOK, response.OK(data))
	}
}

func GetDailySummary(app App) gin.HandlerFunc {
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
		c.JSON(http.StatusOK, response.OK(summary))
	}
}

func GetTrends(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("subject")

		days, ok := parseDays(c, app.Logger(), 30, 1, 90)
		if !ok {
			return
		}

		report, err := app.Engine().TrendReport(c.Request.Context(), subject, time.Now(), days)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}
		c.JSON(http.StatusOK, response.OK(report))
	}
}

func Healthz(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Store().Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.Err("store unreachable", nil))
			return
		}
		c.JSON(http.StatusOK, response.Message("ok"))
	}
}

// parseDate accepts a plain day or a full RFC 3339 timestamp; a zoneless
// day is interpreted as UTC midnight.
func parseDate(c *gin.Context, logger internal.Logger) (time.Time, bool) {
	raw := c.Param("date")
	if t, err := time.ParseInLocation("2006-01-02", raw, time.UTC); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	BadRequest(c, logger, "date", "must be YYYY-MM-DD or RFC 3339")
	return time.Time{}, false
}
