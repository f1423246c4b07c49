package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	inFlightTTL       = 30 * time.Minute
	completedTTL      = 24 * time.Hour
	inFlightMarker    = "PROCESSING"
)

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// responseRecorder tees the response so it can be replayed for a repeated key.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a completed request carrying the
// same Idempotency-Key and rejects a concurrent duplicate with 409. Only 2xx
// responses are stored; failures release the key so the client can retry.
func Idempotency(redisClient *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if redisClient == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(idempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			idemKey := fmt.Sprintf("idempotency:%s", key)
			ctx := r.Context()

			acquired, err := redisClient.SetNX(ctx, idemKey, inFlightMarker, inFlightTTL).Result()
			if err != nil {
				slog.Warn("idempotency store unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				replay(w, redisClient.Get(ctx, idemKey).Val())
				return
			}

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// the client may be gone by now; the key must still be settled
			settleCtx := context.WithoutCancel(ctx)

			if rec.status < 200 || rec.status >= 300 {
				release(settleCtx, redisClient, idemKey)
				return
			}
			stored, err := json.Marshal(storedResponse{Status: rec.status, Body: bytes.TrimSpace(rec.body.Bytes())})
			if err != nil {
				release(settleCtx, redisClient, idemKey)
				return
			}
			if err := redisClient.Set(settleCtx, idemKey, stored, completedTTL).Err(); err != nil {
				slog.Warn("failed to store idempotent response", "key", idemKey, "error", err)
			}
		})
	}
}

func release(ctx context.Context, redisClient *redis.Client, idemKey string) {
	if err := redisClient.Del(ctx, idemKey).Err(); err != nil {
		slog.Warn("failed to release idempotency key", "key", idemKey, "error", err)
	}
}

func replay(w http.ResponseWriter, val string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotency-Hit", "true")

	var stored storedResponse
	if val == "" || val == inFlightMarker || json.Unmarshal([]byte(val), &stored) != nil {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"concurrent request"}`))
		return
	}
	w.WriteHeader(stored.Status)
	w.Write(stored.Body)
}
