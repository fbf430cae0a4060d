package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 response. When the handler had already
// started the response, the panic is only logged.
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				started := sw.status != 0
				logger.Error("panic recovered",
					zap.String("request_id", w.Header().Get(RequestIDHeader)),
					zap.Bool("response_started", started),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				if started {
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Server Error: internal server error"})
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
