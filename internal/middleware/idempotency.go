package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type idempotencyStore interface {
	Check(ctx context.Context, userID, key string) ([]byte, bool, error)
	Set(ctx context.Context, userID, key string, response []byte) error
}

// responseRecorder captures the response body so we can store it.
type responseRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the cached response for a repeated Idempotency-Key,
// which keeps retried assignment mutations from double-binding drivers.
func Idempotency(store idempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}

		userID := c.GetString("sub")
		ctx := c.Request.Context()

		cached, found, err := store.Check(ctx, userID, key)
		if err != nil {
			slog.ErrorContext(ctx, "idempotency check failed",
				slog.String("error", err.Error()),
			)
			// fail open
			c.Next()
			return
		}

		if found {
			c.Data(http.StatusOK, "application/json", cached)
			c.Abort()
			return
		}

		rec := &responseRecorder{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		// Only cache successful responses.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			if err := store.Set(ctx, userID, key, rec.body.Bytes()); err != nil {
				slog.ErrorContext(ctx, "idempotency store failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
