package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/wahoodash/internal/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/automaxprocs/maxprocs"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := *r.config
	if cmd.IsSet("host") {
		config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Server.Port = cmd.Int("port")
	}

	if missing := config.Wahoo.Missing(); len(missing) > 0 {
		r.logger.Warn("OAuth is not configured; the callback will report an error", "missing", missing)
	}

	// Match GOMAXPROCS to the container CPU quota.
	if _, err := maxprocs.Set(maxprocs.Logger(r.logger.Debugf)); err != nil {
		r.logger.Warn("failed to set GOMAXPROCS", "error", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(server.ServerOpts{
		Config:     &config,
		Logger:     r.logger,
		Exchanger:  r.wahoo,
		Authorizer: r.wahoo,
		Scraper:    r.scraper,
	})

	r.logger.Infof("listening on http://%s", config.Server.Addr())
	return srv.Run(ctx)
}
