package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"bank-reconciliation-service/internal/auth"
	"bank-reconciliation-service/internal/config"
	"bank-reconciliation-service/internal/logging"
	"bank-reconciliation-service/internal/models"
)

type contextKey string

const callerKey = contextKey("caller")

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware attaches a request-scoped logger carrying a request id
// and logs each completed request.
func loggingMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			logger := base.With(
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), logger)))

			logger.Info("Request completed",
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates the bearer token and stores the caller it names
// in the request context.
func authMiddleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			claims, err := auth.ParseToken(cfg.JWTSecret, cfg.JWTIssuer, token)
			if err != nil {
				logger.Warn("Invalid token", "error", err)
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			caller := claims.Caller()
			ctx := context.WithValue(r.Context(), callerKey, caller)
			ctx = logging.WithLogger(ctx, logger.With(
				slog.String("user_id", caller.UserID),
				slog.String("company_id", caller.CompanyID),
			))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// callerFrom returns the caller set by authMiddleware. Routes without it get
// a caller with no user and an impossible company, so they see nothing.
func callerFrom(r *http.Request) models.Caller {
	if caller, ok := r.Context().Value(callerKey).(models.Caller); ok {
		return caller
	}
	return models.Caller{CompanyID: "-"}
}

// rateLimitMiddleware limits requests per client IP using an in-memory store.
func rateLimitMiddleware(formatted string) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	mw := stdlib.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			logging.FromContext(r.Context()).Warn("Rate limit exceeded", "remote_addr", r.RemoteAddr)
			respondWithError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logging.FromContext(r.Context()).Error("Rate limit check failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}),
	)
	return mw.Handler, nil
}
