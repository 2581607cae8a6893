package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/JoeShih716/go-account-statement/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/in/rest"
	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/out/seedfile"
	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	"github.com/JoeShih716/go-account-statement/internal/app/core/usecase"
	"github.com/JoeShih716/go-account-statement/internal/config"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var engine string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger gRPC and HTTP servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if engine != "" {
				a.cfg.Ledger.Engine = engine
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, nil)
		},
	}
	cmd.Flags().StringVar(&engine, "engine", "", "override ledger.engine (mutex|lmax)")
	return cmd
}

// loadSeeds 讀取 seed 檔，路徑為空時從空帳本開始
func loadSeeds(path string) ([]domain.SeedTransaction, error) {
	if path == "" {
		return nil, nil
	}
	seeds, err := seedfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load seeds: %w", err)
	}
	return seeds, nil
}

// newLedger 依設定建立帳本引擎，lmax 會隨 ctx 結束停止
func newLedger(ctx context.Context, engine string, seeds []domain.SeedTransaction, logger *zap.Logger) (usecase.Ledger, error) {
	switch engine {
	case config.EngineMutex:
		return memory.NewMutexLedger(seeds, logger), nil
	case config.EngineLMAX:
		l := memory.NewLMAXLedger(seeds, logger)
		l.Start(ctx)
		return l, nil
	default:
		return nil, fmt.Errorf("unknown ledger engine %q", engine)
	}
}

// serve 啟動 gRPC 與 HTTP，ctx 結束後 graceful shutdown
// ready 不為 nil 時會在開始 listen 後收到實際位址
func (a *app) serve(ctx context.Context, ready chan<- net.Addr) error {
	cfg, log := a.cfg, a.logger

	seeds, err := loadSeeds(cfg.Ledger.SeedFile)
	if err != nil {
		return err
	}

	// 引擎要比 server 晚停
	engineCtx, stopEngine := context.WithCancel(context.Background())
	defer stopEngine()
	ledger, err := newLedger(engineCtx, cfg.Ledger.Engine, seeds, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	core := usecase.NewCoreUseCase(ledger,
		usecase.WithRenderer(a.renderer()),
		usecase.WithLogger(log),
		usecase.WithMetrics(usecase.NewMetrics(reg)),
	)

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	s := grpc.NewServer(grpc.UnaryInterceptor(grpcadapter.LoggingInterceptor(log)))
	grpcadapter.RegisterLedgerServiceServer(s, grpcadapter.NewGrpcServer(core, log))
	healthpb.RegisterHealthServer(s, health.NewServer())
	if cfg.GRPC.Reflection {
		reflection.Register(s)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting grpc server", zap.String("addr", lis.Addr().String()), zap.String("engine", cfg.Ledger.Engine))
		if err := s.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var httpServer *http.Server
	if cfg.HTTP.Addr != "" {
		opts := []rest.Option{rest.WithLogger(log), rest.WithTimeout(cfg.HTTP.Timeout)}
		if cfg.HTTP.Metrics {
			opts = append(opts, rest.WithMetrics(reg))
		}
		httpLis, err := net.Listen("tcp", cfg.HTTP.Addr)
		if err != nil {
			s.Stop()
			return fmt.Errorf("listen http: %w", err)
		}
		httpServer = &http.Server{
			Handler:           rest.NewServer(core, opts...).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("starting http server", zap.String("addr", httpLis.Addr().String()))
			if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	if ready != nil {
		ready <- lis.Addr()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down server...")
	case serveErr = <-errCh:
		log.Error("server failed", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", zap.Error(err))
		}
	}
	s.GracefulStop()

	if balance, err := core.Balance(shutdownCtx); err == nil {
		log.Info("server exited", zap.String("balance", domain.FormatAmount(balance)))
	}
	stopEngine()
	return serveErr
}
