package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware ensures every request has a correlation/request ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

// SubjectMiddleware stamps the subject whose data this request operates on.
// Identity resolution is an external collaborator; the deployment runs with
// one configured subject, and handlers read it from the context so a real
// resolver can replace this middleware without touching them.
func SubjectMiddleware(subject string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("subject", subject)
		c.Next()
	}
}
