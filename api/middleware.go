package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/auth"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxClaims       = "claims"
)

// requestID propagates the caller's request id or assigns a new one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one line per request
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(ctxRequestID)),
		}
		if c.Writer.Status() >= 500 {
			s.logger.Error("request", fields...)
			return
		}
		s.logger.Info("request", fields...)
	}
}

// authenticate verifies the bearer token and stores its claims
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			s.abort(c, errors.Unauthorized("authorization header required"))
			return
		}
		claims, err := s.tokens.Verify(token)
		if err != nil {
			s.abort(c, err)
			return
		}
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// requireRole rejects callers without the role
func requireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || claims.Role != role {
			writeError(c, nil, errors.Forbidden("requires role "+string(role)))
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func (s *Server) abort(c *gin.Context, err error) {
	writeError(c, s.logger, err)
	c.Abort()
}
