package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"

	"maturity-report/internal/common/logger"
	"maturity-report/internal/pipeline"
)

const HeaderRequestID = "X-Request-ID"

// requestID tags every request with an id, reusing the caller's when set.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(HeaderRequestID, id)
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(pipeline.ContextWithRequestID(r.Context(), id)))
	})
}

// accessLog writes one structured line per request through log.
func accessLog(log logger.Logger, next http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
		log.Info("HTTP request", map[string]interface{}{
			"method":     p.Request.Method,
			"path":       p.URL.Path,
			"status":     p.StatusCode,
			"size":       p.Size,
			"requestId":  p.Request.Header.Get(HeaderRequestID),
			"remoteAddr": p.Request.RemoteAddr,
			"userAgent":  p.Request.UserAgent(),
			"durationMs": time.Since(p.TimeStamp).Milliseconds(),
		})
	})
}

type recoveryLogger struct {
	log logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("Recovered from panic", map[string]interface{}{
		"panic": fmt.Sprint(v...),
	})
}

func recovery(log logger.Logger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: log}),
		handlers.PrintRecoveryStack(true),
	)
}
