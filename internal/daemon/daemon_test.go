package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/parley-im/parley/internal/client"
	"github.com/parley-im/parley/internal/config"
	"github.com/parley-im/parley/internal/server"
	"github.com/parley-im/parley/internal/transport"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TestFxModuleWiring verifies the fx dependency graph resolves and the
// daemon starts and stops cleanly. The wire server gets an ephemeral port
// and the state directory is isolated via PARLEY_HOME.
func TestFxModuleWiring(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("PARLEY_HOME", tmpDir)

	var srv *server.Server
	app := fx.New(
		Module(Params{
			ConfigPath: filepath.Join(tmpDir, "config.toml"),
			ListenAddr: "127.0.0.1:0",
			AdminAddr:  "127.0.0.1:0",
		}),
		fx.Populate(&srv),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		t.Fatalf("fx graph error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The daemon is up; a client call must round-trip.
	c := client.New(transport.NewTCPSource(srv.Addr()), zap.NewNop())
	if user := c.NewUser("smoke"); user == nil {
		t.Error("NewUser over the wire returned nil")
	}

	if err := app.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestProvideConfigOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	if err := config.Save(path, &config.Config{ListenAddr: "0.0.0.0:9000"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := provideConfig(Params{ConfigPath: path, ListenAddr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("provideConfig() error = %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:0" {
		t.Errorf("ListenAddr = %q, want override 127.0.0.1:0", cfg.ListenAddr)
	}
	if cfg.AdminAddr != config.Default().AdminAddr {
		t.Errorf("AdminAddr = %q, want default", cfg.AdminAddr)
	}
}

func TestProvideConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := provideConfig(Params{ConfigPath: "/nonexistent/config.toml"})
	if err != nil {
		t.Fatalf("provideConfig() error = %v", err)
	}
	if cfg.ListenAddr != config.Default().ListenAddr {
		t.Errorf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
}
