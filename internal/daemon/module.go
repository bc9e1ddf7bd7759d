// Package daemon composes the parleyd process: configuration, logging, the
// wire protocol server, the admin API and their lifecycles.
package daemon

import (
	"context"

	"github.com/parley-im/parley/internal/admin"
	"github.com/parley-im/parley/internal/bus"
	"github.com/parley-im/parley/internal/chat"
	"github.com/parley-im/parley/internal/config"
	"github.com/parley-im/parley/internal/lock"
	"github.com/parley-im/parley/internal/logging"
	"github.com/parley-im/parley/internal/paths"
	"github.com/parley-im/parley/internal/server"
	"github.com/parley-im/parley/internal/stats"
	"github.com/parley-im/parley/internal/status"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved daemon configuration passed to the fx module.
type Params struct {
	ConfigPath string // empty = use default path
	ListenAddr string // optional override for testing; empty = use config
	AdminAddr  string // optional override for testing; empty = use config
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideModel,
			provideServer,
			provideCollector,
			provideAdmin,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = paths.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if p.ListenAddr != "" {
		cfg.ListenAddr = p.ListenAddr
	}
	if p.AdminAddr != "" {
		cfg.AdminAddr = p.AdminAddr
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = paths.LogPath()
	}
	return logging.New(logPath)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(logger *zap.Logger) (*lock.Lock, error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	logger.Info("acquiring run lock", zap.String("dir", paths.BaseDir()))
	l, err := lock.Acquire(paths.BaseDir())
	if err != nil {
		return nil, err
	}
	logger.Info("run lock acquired")
	return l, nil
}

func provideModel(logger *zap.Logger) *chat.Model {
	return chat.NewModel(logger)
}

func provideServer(cfg *config.Config, model *chat.Model, b *bus.Bus, logger *zap.Logger) (*server.Server, error) {
	return server.New(cfg.ListenAddr, model, b, logger)
}

func provideCollector(b *bus.Bus, logger *zap.Logger) *stats.Collector {
	return stats.NewCollector(b, logger)
}

func provideAdmin(cfg *config.Config, model *chat.Model, collector *stats.Collector, logger *zap.Logger) *admin.Server {
	return admin.New(cfg.AdminAddr, model, collector, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *server.Server, adminSrv *admin.Server, collector *stats.Collector, lk *lock.Lock, machine *status.Machine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Start the stats collector (subscribes to chat.* bus events).
			collector.Start(context.Background())

			// Start the wire protocol server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("wire server error", zap.Error(err))
					_ = machine.Transition(status.Error)
				}
			}()

			// Start the admin API.
			adminSrv.Start()

			return machine.Transition(status.Listening)
		},
		OnStop: func(ctx context.Context) error {
			_ = machine.Transition(status.Draining)
			if err := adminSrv.Stop(ctx); err != nil {
				logger.Warn("error stopping admin api", zap.Error(err))
			}
			srv.Stop()
			collector.Stop()
			_ = machine.Transition(status.Stopped)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
