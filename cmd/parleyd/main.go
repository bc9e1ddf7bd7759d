package main

import (
	"flag"

	"github.com/parley-im/parley/internal/daemon"
	"go.uber.org/fx"
)

func main() {
	configFlag := flag.String("config", "", "config file path (default ~/.parley/config.toml)")
	listenFlag := flag.String("listen", "", "wire listen address (overrides config)")
	adminFlag := flag.String("admin", "", "admin api address (overrides config)")
	flag.Parse()

	app := fx.New(
		daemon.Module(daemon.Params{
			ConfigPath: *configFlag,
			ListenAddr: *listenFlag,
			AdminAddr:  *adminFlag,
		}),
	)

	app.Run()
}
