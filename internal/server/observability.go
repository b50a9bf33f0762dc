// Request interceptor and the HTTP server for metrics, readiness and profiling
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/nainya/docdiff/internal/logger"
	"github.com/nainya/docdiff/internal/metrics"
)

// GrpcMetricsInterceptor counts and times every call by method and status
// code, and logs it.
func GrpcMetricsInterceptor(m *metrics.Metrics, log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		m.GrpcRequestsInFlight.Inc()
		defer m.GrpcRequestsInFlight.Dec()

		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)

		m.RecordGrpcRequest(info.FullMethod, status.Code(err).String(), duration)
		m.UpdateUptime()
		log.GrpcLogger(info.FullMethod).LogGrpcRequest(info.FullMethod, duration, err)

		return resp, err
	}
}

// ReadinessFunc reports the state of the dependencies a server needs. An
// error means the server cannot take requests.
type ReadinessFunc func() (map[string]any, error)

// Profiles served under /debug/pprof/ besides the index handlers
var pprofProfiles = []string{"heap", "goroutine", "threadcreate", "block", "mutex", "allocs"}

// ObservabilityServer serves metrics, health, readiness and pprof over HTTP
type ObservabilityServer struct {
	server *http.Server
	log    *logger.Logger
}

// NewObservabilityServer creates the HTTP server. Metrics are served from
// gatherer; ready may be nil.
func NewObservabilityServer(port int, gatherer prometheus.Gatherer, ready ReadinessFunc, log *logger.Logger) *ObservabilityServer {
	return &ObservabilityServer{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      NewObservabilityHandler(gatherer, ready),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// NewObservabilityHandler routes /metrics, /health, /ready and pprof.
// /ready answers 503 when ready reports an error.
func NewObservabilityHandler(gatherer prometheus.Gatherer, ready ReadinessFunc) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": "docdiff"})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{}
		if ready != nil {
			state, err := ready()
			for k, v := range state {
				body[k] = v
			}
			if err != nil {
				body["status"] = "not ready"
				body["error"] = err.Error()
				writeJSON(w, http.StatusServiceUnavailable, body)
				return
			}
		}
		body["status"] = "ready"
		writeJSON(w, http.StatusOK, body)
	})

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	for _, name := range pprofProfiles {
		mux.Handle("/debug/pprof/"+name, pprof.Handler(name))
	}

	return mux
}

func writeJSON(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// Start serves until Shutdown
func (o *ObservabilityServer) Start() error {
	o.log.Info("Starting observability server").
		Str("addr", o.server.Addr).
		Str("metrics", fmt.Sprintf("http://%s/metrics", o.server.Addr)).
		Str("ready", fmt.Sprintf("http://%s/ready", o.server.Addr)).
		Str("pprof", fmt.Sprintf("http://%s/debug/pprof/", o.server.Addr)).
		Send()

	if err := o.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("observability server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting for open requests up to ctx
func (o *ObservabilityServer) Shutdown(ctx context.Context) error {
	o.log.Info("Shutting down observability server").Send()
	return o.server.Shutdown(ctx)
}
