package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophsession/internal/client/cli"
	"github.com/dmitrijs2005/gophsession/internal/client/config"
	"github.com/dmitrijs2005/gophsession/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "err", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
