package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wahoodash/internal/formatter"
	"github.com/desertthunder/wahoodash/internal/models"
	"github.com/desertthunder/wahoodash/internal/shared"
	"github.com/desertthunder/wahoodash/internal/tasks"
	"github.com/desertthunder/wahoodash/internal/ui"
	"github.com/urfave/cli/v3"
)

// Scrape runs one export and prints, and optionally saves, the result.
func (r *Runner) Scrape(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := models.ScrapeRequest{AccessToken: cmd.String("token"), Limit: cmd.Int("limit")}

	var result models.ScrapeResult
	if cmd.Bool("interactive") {
		res, err := r.scrapeInteractive(ctx, req)
		if err != nil {
			return err
		}
		result = res
	} else {
		result = r.scrapeWithProgress(ctx, req)
		if err := r.printResult(result, cmd.Bool("json"), cmd.Bool("pretty")); err != nil {
			return err
		}
	}

	switch result.Status {
	case models.StatusFailure:
		return result.Failure
	case models.StatusNoData:
		return nil
	}

	if cmd.IsSet("csv") {
		path, err := formatter.WriteCSVExport(result.Export, cmd.String("csv"))
		switch {
		case errors.Is(err, formatter.ErrNoActivities):
			r.logger.Warn("no activities to write to CSV")
		case err != nil:
			return err
		default:
			r.logger.Info("activities exported", "path", path)
		}
	}

	if path := cmd.String("report"); path != "" {
		if err := formatter.WriteReport(result.Export, path); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path)
	}
	return nil
}

// scrapeWithProgress runs the scrape and logs each progress event.
func (r *Runner) scrapeWithProgress(ctx context.Context, req models.ScrapeRequest) models.ScrapeResult {
	progress := make(chan tasks.ProgressUpdate, 8)
	drained := make(chan struct{})

	go func() {
		defer close(drained)
		for update := range progress {
			r.logger.Infof("[%d/%d] %s", update.Step, update.Total, update.Message)
		}
	}()

	result := r.scraper.Scrape(ctx, progress, req)
	close(progress)
	<-drained
	return result
}

func (r *Runner) scrapeInteractive(ctx context.Context, req models.ScrapeRequest) (models.ScrapeResult, error) {
	model := ui.NewModel(ctx, r.scraper, req)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil &&
		!errors.Is(err, tea.ErrProgramKilled) {
		return models.ScrapeResult{}, fmt.Errorf("terminal UI failed: %w", err)
	}

	result := model.Result()
	if result == nil {
		return models.ScrapeResult{}, shared.ErrCanceled
	}
	return *result, nil
}

func (r *Runner) printResult(result models.ScrapeResult, asJSON, pretty bool) error {
	if !asJSON {
		return r.writePlain("%s\n", ui.RenderResult(result))
	}

	switch result.Status {
	case models.StatusSuccess:
		return r.writeJSON(result.Data, pretty)
	case models.StatusNoData:
		return r.writeJSON(map[string]any{"success": true, "message": result.Message, "output": result.Output}, pretty)
	default:
		f := result.Failure
		body := map[string]any{"error": f.Message, "kind": f.Kind}
		if f.ExitCode != nil {
			body["code"] = *f.ExitCode
		}
		if f.Stdout != "" {
			body["output"] = f.Stdout
		}
		if f.Stderr != "" {
			body["errorOutput"] = f.Stderr
		}
		return r.writeJSON(body, pretty)
	}
}
