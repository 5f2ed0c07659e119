package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/livechat/internal/config"
	"github.com/matheus3301/livechat/internal/daemon"
	"github.com/matheus3301/livechat/internal/session"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	metricsFlag := flag.String("metrics-addr", "", "serve /metrics on this address (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	profile := session.Resolve(*profileFlag, cfg)
	if err := session.ValidateName(profile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	metricsAddr := cfg.Relay.MetricsAddr
	if *metricsFlag != "" {
		metricsAddr = *metricsFlag
	}

	app := fx.New(
		daemon.Module(daemon.Params{Profile: profile, MetricsAddr: metricsAddr}),
	)

	app.Run()
}
