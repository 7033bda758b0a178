package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/school-teachers-api/pkg/errors"
	"github.com/noah-isme/school-teachers-api/pkg/response"
)

type loginAttemptStore interface {
	IsBlocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
	BlockDuration() time.Duration
}

type blockRecorder interface {
	RecordLoginBlocked()
}

// LoginProtection rejects clients that exceeded the failed-login limit with 429.
// It counts 401 responses from the wrapped handler and clears the counter on success.
// Redis errors are logged and the request is let through.
func LoginProtection(store loginAttemptStore, metrics blockRecorder, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.ClientIP()
		if key == "" {
			key = "unknown"
		}

		blocked, err := store.IsBlocked(ctx, key)
		if err != nil {
			logger.Warn("login protection lookup failed", zap.Error(err))
		}
		if blocked {
			c.Header("Retry-After", strconv.Itoa(int(store.BlockDuration().Seconds())))
			response.Error(c, appErrors.Clone(appErrors.ErrTooManyRequests, "too many failed login attempts, try again later"))
			c.Abort()
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			triggered, err := store.RecordFailure(ctx, key)
			if err != nil {
				logger.Warn("failed to record login failure", zap.Error(err))
				return
			}
			if triggered {
				logger.Info("login protection engaged", zap.String("client_ip", key), zap.Duration("block", store.BlockDuration()))
				if metrics != nil {
					metrics.RecordLoginBlocked()
				}
			}
		case http.StatusOK:
			if err := store.Reset(ctx, key); err != nil {
				logger.Warn("failed to reset login failures", zap.Error(err))
			}
		}
	}
}
