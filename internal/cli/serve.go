package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/nainya/docdiff/internal/metrics"
	"github.com/nainya/docdiff/internal/server"
	"github.com/nainya/docdiff/pkg/docdiff"
	"github.com/nainya/docdiff/pkg/snapshot"
)

const maxMessageSize = 100 * 1024 * 1024 // 100 MB

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC DocumentDiffService",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 50051, "The gRPC server port")
	cmd.Flags().Int("metrics-port", 9090, "The metrics and health port (0 disables)")
	cmd.Flags().String("store", "docdiff.db", "Snapshot store file path")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)

	service, err := docdiff.NewService(cfg.DiffService(), a.log, m)
	if err != nil {
		return err
	}
	store, err := snapshot.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	a.log.LogServerStart(cfg.Server.Port, store.Path())
	srv := server.NewServer(service, store, a.log, m)
	defer srv.Close()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
		grpc.UnaryInterceptor(server.GrpcMetricsInterceptor(m, a.log)),
	)
	server.RegisterDocumentDiffServer(grpcServer, srv)

	var observability *server.ObservabilityServer
	if cfg.Server.MetricsPort > 0 {
		observability = server.NewObservabilityServer(cfg.Server.MetricsPort, reg, srv.Ready, a.log)
		go func() {
			if err := observability.Start(); err != nil {
				a.log.Error("Observability server stopped").Err(err).Send()
			}
		}()
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// GracefulStop returns once running RPCs are done, so the store is
	// closed only after stopped has been closed
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		a.log.LogServerShutdown()
		grpcServer.GracefulStop()
		if observability != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = observability.Shutdown(shutdownCtx)
		}
	}()

	a.log.LogServerReady(cfg.Server.Port)
	err = grpcServer.Serve(lis)
	stop()
	<-stopped

	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
