package server

import (
	"time"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in and out.
	RequestIDHeader = "X-Request-ID"

	requestIDContextKey = "request_id"
)

// requestIDMiddleware reuses the caller's X-Request-ID or assigns a new UUID.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}

// loggingMiddleware logs one record per request after it completes.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			log.RequestIDKey, requestID(c),
			log.HTTPMethodKey, c.Request.Method,
			log.HTTPPathKey, c.FullPath(),
			log.HTTPStatusKey, c.Writer.Status(),
			log.ClientIPKey, c.ClientIP(),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
}

// recoveryMiddleware turns handler panics into the 500 error envelope.
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.abortWithError(c, errors.NewPanicError(c.FullPath(), recovered))
	})
}
