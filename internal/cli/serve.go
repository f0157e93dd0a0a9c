package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smart-task-tracker/internal/config"
	storeinfra "smart-task-tracker/internal/infrastructure/store"
	httphandler "smart-task-tracker/internal/interface/http"
	"smart-task-tracker/internal/logging"
	"smart-task-tracker/internal/usecase/repository"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, nil)
		},
	}
	cmd.Flags().String("addr", "", "listen address (env HTTP_ADDR, default :8080)")
	cmd.Flags().String("default-project", "", "create this project at startup when missing (env DEFAULT_PROJECT)")
	return cmd
}

// serve は ctx がキャンセルされるまで HTTP サーバを動かし、その後グレースフルに停止する。
// ready が nil でなければ、待ち受けを開始したアドレスを 1 回だけ送る。
func serve(ctx context.Context, cfg *config.Config, ready chan<- string) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	if err := storeinfra.Migrate(ctx, store); err != nil {
		return err
	}

	if cfg.DefaultProject != "" {
		p, created, err := EnsureDefaultProject(ctx, store, cfg.DefaultProject, time.Now())
		if err != nil {
			return fmt.Errorf("ensure default project: %w", err)
		}
		logger.Info("default project ready",
			zap.String("id", p.ID), zap.String("name", p.Name), zap.Bool("created", created))
	}

	router := httphandler.NewRouter(httphandler.RouterOptions{
		Store:       store,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Now:         time.Now,
		NewID:       repository.NewUUIDv7,
	})

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}
	logger.Info("tracker listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("store", cfg.StoreDriver),
		zap.String("env", cfg.AppEnv))
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
		File:       cfg.LogFile,
	})
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	return storeinfra.Open(ctx, storeinfra.Options{
		Driver:  cfg.StoreDriver,
		DSN:     cfg.DatabaseURL,
		Timeout: cfg.StoreTimeout,
	})
}
