package httpserver

import (
	"net/http"
	"strings"
)

// Routes groups handlers.
type Routes struct {
	SaveBatteries http.HandlerFunc
	GetBatteries  http.HandlerFunc
	Health        http.HandlerFunc
	Metrics       http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()

	batteries := map[string]http.HandlerFunc{}
	if routes.SaveBatteries != nil {
		batteries[http.MethodPost] = routes.SaveBatteries
	}
	if routes.GetBatteries != nil {
		batteries[http.MethodGet] = routes.GetBatteries
	}
	if len(batteries) > 0 {
		mux.Handle("/api/batteries", methods(batteries))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, routes.Metrics.ServeHTTP))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return methods(map[string]http.HandlerFunc{expected: handler})
}

func methods(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	allowed := make([]string, 0, len(handlers))
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		if _, ok := handlers[m]; ok {
			allowed = append(allowed, m)
		}
	}
	allow := strings.Join(allowed, ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
