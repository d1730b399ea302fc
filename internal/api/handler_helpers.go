package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourname/healthsync/internal"
	"github.com/yourname/healthsync/internal/response"
)

// HandleError maps the error taxonomy onto the wire: validation errors go
// out with field-level detail, storage errors generically. Provider
// failures never reach this function; the insight pipeline absorbs them.
func HandleError(c *gin.Context, logger internal.Logger, err error) {
	requestID := c.GetString("request_id")

	var verr *internal.ValidationError
	if errors.As(err, &verr) {
		logger.Warnf("[request_id=%s] validation failed: %v", requestID, err)
		c.JSON(http.StatusBadRequest, response.Err("validation failed", gin.H{
			"field":  verr.Field,
			"reason": verr.Reason,
		}))
		return
	}

	var serr *internal.StorageError
	if errors.As(err, &serr) {
		logger.Errorf("[request_id=%s] storage failure: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, response.Err("storage failure", nil))
		return
	}

	logger.Errorf("[request_id=%s] internal error: %v", requestID, err)
	c.JSON(http.StatusInternalServerError, response.Err("internal error", nil))
}

// BadRequest reports a boundary-level parameter problem.
func BadRequest(c *gin.Context, logger internal.Logger, field, reason string) {
	requestID := c.GetString("request_id")
	logger.Warnf("[request_id=%s] bad request: %s: %s", requestID, field, reason)
	c.JSON(http.StatusBadRequest, response.Err("validation failed", gin.H{
		"field":  field,
		"reason": reason,
	}))
}

// parseDays reads the days query parameter, rejecting (not clamping)
// values outside [min, max].
func parseDays(c *gin.Context, logger internal.Logger, def, min, max int) (int, bool) {
	raw := c.DefaultQuery("days", strconv.Itoa(def))
	days, err := strconv.Atoi(raw)
	if err != nil {
		BadRequest(c, logger, "days", "must be an integer")
		return 0, false
	}
	if days < min || days > max {
		BadRequest(c, logger, "days", "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
		return 0, false
	}
	return days, true
}
