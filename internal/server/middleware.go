package server

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bingkai/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bingkai/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	rateLimitReasonClientRate     = "client-rate"
	rateLimitReasonClientInFlight = "client-in-flight"
)

// InvoiceRateLimit throttles invoice generation per client IP and allows one
// in-flight generation per client. Limiter failures are logged and the
// request goes through.
func (s *Server) InvoiceRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		clientIP := c.ClientIP()
		log := logger.FromContext(ctx)

		result, err := s.limiter.AllowClient(ctx, clientIP)
		if err != nil {
			log.Warn("invoice rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			denyInvoiceRateLimit(c, endpoint, rateLimitReasonClientRate, result.RetryAfter, s.obsMetrics)
			return
		}

		token, locked, err := s.limiter.TryLockClient(ctx, clientIP)
		if err != nil {
			log.Warn("invoice concurrency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !locked {
			denyInvoiceRateLimit(c, endpoint, rateLimitReasonClientInFlight, time.Second, s.obsMetrics)
			return
		}
		defer func() {
			if err := s.limiter.ReleaseClient(context.WithoutCancel(ctx), clientIP, token); err != nil {
				log.Warn("invoice concurrency unlock failed", zap.Error(err))
			}
		}()

		recordRateLimitAllowed(ctx, endpoint, s.obsMetrics)
		c.Next()
	}
}

func denyInvoiceRateLimit(c *gin.Context, endpoint, reason string, retryAfter time.Duration, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("invoice rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, reason, metrics)

	seconds := int(retryAfter.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func recordRateLimitAllowed(ctx context.Context, endpoint string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitAllowed(ctx, endpoint)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
