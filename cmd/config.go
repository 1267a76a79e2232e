package main

import (
	"context"
	"strings"

	"github.com/desertthunder/wahoodash/internal/shared"
	"github.com/urfave/cli/v3"
)

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "NOT SET"
	}
	return "SET"
}

// ConfigInit writes the built-in config template to --config.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

// ConfigCheck reports which settings are in effect without printing secrets.
func (r *Runner) ConfigCheck(ctx context.Context, cmd *cli.Command) error {
	c := r.config
	source := r.configPath
	if source == "" {
		source = "built-in defaults"
	}

	r.writePlainHeader("Configuration")
	r.writePlain("Source:              %s\n", source)
	r.writePlain("WAHOO_CLIENT_ID:     %s\n", setOrNot(c.Wahoo.ClientID))
	r.writePlain("WAHOO_CLIENT_SECRET: %s\n", setOrNot(c.Wahoo.ClientSecret))
	r.writePlain("WAHOO_REDIRECT_URI:  %s\n", c.Wahoo.RedirectURI)
	r.writePlain("APP_URL:             %s\n", c.App.URL())
	r.writePlain("Listen address:      %s\n", c.Server.Addr())
	r.writePlain("Scraper command:     %s %s\n", c.Scraper.Command, strings.Join(c.Scraper.Args, " "))
	r.writePlain("Scraper timeout:     %s\n", c.Scraper.Timeout())
	r.writePlain("Default limit:       %d\n", c.Scraper.Limit())

	if missing := c.Wahoo.Missing(); len(missing) > 0 {
		return r.writePlainln("✗ OAuth not configured, missing: %s", strings.Join(missing, ", "))
	}
	return r.writePlainln("✓ OAuth configured")
}
