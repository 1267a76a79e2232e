package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wahoodash/internal/models"
	"github.com/desertthunder/wahoodash/internal/shared"
)

const (
	noDataMessage = "Scraping completed but no data file found"
	cleanupNotice = "data was read but the result file could not be removed"
)

// Scraper runs one export job per request and turns whatever happens into a [models.ScrapeResult].
type Scraper struct {
	runner    JobRunner
	collector ResultCollector
	config    shared.ScraperConfig
	logger    *log.Logger
	newID     func() string
	now       func() time.Time
}

// ScraperOpts contains the dependencies of a [Scraper].
type ScraperOpts struct {
	Runner    JobRunner
	Collector ResultCollector
	Config    shared.ScraperConfig
	Logger    *log.Logger
	NewID     func() string    // request id generator (default uuid v4)
	Now       func() time.Time // clock used to bound artifact discovery
}

// NewScraper creates a [Scraper]. A nil Runner or Collector is built from Config.
func NewScraper(opts ScraperOpts) *Scraper {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Runner == nil {
		opts.Runner = NewProcessRunner(ProcessRunnerOpts{Timeout: opts.Config.Timeout(), Logger: opts.Logger})
	}
	if opts.Collector == nil {
		opts.Collector = NewFileCollector(opts.Logger)
	}
	if opts.NewID == nil {
		opts.NewID = shared.GenerateID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Scraper{
		runner:    opts.Runner,
		collector: opts.Collector,
		config:    opts.Config,
		logger:    shared.WithLogger(opts.Logger, "component", "scraper"),
		newID:     opts.NewID,
		now:       opts.Now,
	}
}

// Args builds the extractor argument vector for a request.
//
// When an output flag is configured the per-request artifact path is appended and returned;
// otherwise the returned path is empty and the extractor names the file itself.
func (s *Scraper) Args(req models.ScrapeRequest, id string) ([]string, string) {
	args := make([]string, 0, len(s.config.Args)+8)
	args = append(args, s.config.Args...)
	args = append(args,
		"--token", req.AccessToken,
		"--limit", strconv.Itoa(req.Limit),
		"--export-json",
		"--quiet",
	)

	if s.config.OutputFlag == "" {
		return args, ""
	}

	path := filepath.Join(s.artifactDir(), ArtifactName(id))
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return append(args, s.config.OutputFlag, path), path
}

func (s *Scraper) artifactDir() string {
	if s.config.ArtifactDir != "" {
		return s.config.ArtifactDir
	}
	if s.config.WorkDir != "" {
		return s.config.WorkDir
	}
	return "."
}

// Scrape validates the request, runs the extractor, and collects its artifact.
//
// An invalid request never starts a process. Collection only begins after the process has exited.
// Progress events are sent without blocking when progress is non-nil.
func (s *Scraper) Scrape(ctx context.Context, progress chan<- ProgressUpdate, req models.ScrapeRequest) models.ScrapeResult {
	req = req.Normalize(s.config.Limit())
	if err := req.Validate(); err != nil {
		var se *shared.Error
		errors.As(err, &se)
		s.logger.Warn("rejected scrape request", "kind", se.Kind)
		return models.Failed(models.Failure{Kind: se.Kind, Message: se.UserMessage()})
	}

	id := s.newID()
	logger := s.logger.With("request_id", id)
	sendProgress(progress, validateUpdate(req.Limit))

	args, artifactPath := s.Args(req, id)
	started := s.now()

	logger.Info("scrape started", "limit", req.Limit, "command", s.config.Command)
	sendProgress(progress, spawnUpdate(s.config.Command, id))

	outcome, err := s.runner.Run(ctx, Job{Executable: s.config.Command, Args: args, Dir: s.config.WorkDir})
	if err != nil {
		return s.runFailure(logger, progress, outcome, err)
	}
	sendProgress(progress, waitUpdate(outcome))

	if outcome.TimedOut {
		logger.Warn("scrape timed out", "duration", outcome.Duration)
		sendProgress(progress, doneUpdate("timed out"))
		return models.Failed(models.Failure{
			Kind:    shared.KindTimedOut,
			Message: "Scraper timed out",
			Stdout:  outcome.Stdout,
			Stderr:  outcome.Stderr,
		})
	}

	if !outcome.Succeeded() {
		logger.Warn("scrape process failed", "code", *outcome.ExitCode)
		sendProgress(progress, doneUpdate("failed"))
		return models.Failed(models.Failure{
			Kind:     shared.KindProcessFailed,
			Message:  "Scraper failed",
			ExitCode: outcome.ExitCode,
			Stdout:   outcome.Stdout,
			Stderr:   outcome.Stderr,
		})
	}

	if artifactPath == "" {
		found, err := FindArtifact(s.artifactDir(), started)
		if err != nil {
			logger.Info("scrape finished without data")
			sendProgress(progress, doneUpdate("no data"))
			return models.NoData(noDataMessage, outcome.Stdout)
		}
		artifactPath = found
	}

	sendProgress(progress, collectUpdate(artifactPath))
	artifact, err := s.collector.Collect(ctx, artifactPath)

	var corrupt *CorruptArtifactError
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrArtifactMissing):
		logger.Info("scrape finished without data")
		sendProgress(progress, doneUpdate("no data"))
		return models.NoData(noDataMessage, outcome.Stdout)
	case errors.As(err, &corrupt):
		logger.Error("scrape artifact corrupt", "path", corrupt.Path, "err", corrupt.Err)
		sendProgress(progress, doneUpdate("corrupt artifact"))
		return models.Failed(models.Failure{
			Kind:    shared.KindArtifactCorrupt,
			Message: "Scraper output could not be parsed",
			Stdout:  outcome.Stdout,
			Stderr:  outcome.Stderr,
			Raw:     string(corrupt.Raw),
		})
	case errors.Is(err, shared.ErrCanceled):
		sendProgress(progress, doneUpdate("canceled"))
		return models.Failed(models.Failure{Kind: shared.KindCanceled, Message: "Scrape was canceled"})
	default:
		logger.Error("failed to collect artifact", "err", err)
		sendProgress(progress, doneUpdate("failed"))
		return models.Failed(models.Failure{
			Kind:    shared.KindArtifactCorrupt,
			Message: err.Error(),
			Stdout:  outcome.Stdout,
			Stderr:  outcome.Stderr,
		})
	}

	result := models.Succeeded(artifact.Raw, artifact.Export)
	if artifact.CleanupErr != nil {
		result.Warning = fmt.Sprintf("%s: %v", cleanupNotice, artifact.CleanupErr)
	}

	logger.Info("scrape succeeded", "activities", artifact.Export.Summary.TotalActivities, "duration", outcome.Duration)
	sendProgress(progress, doneUpdate("done"))
	return result
}

func (s *Scraper) runFailure(logger *log.Logger, progress chan<- ProgressUpdate, outcome *Outcome, err error) models.ScrapeResult {
	f := models.Failure{Kind: shared.KindProcessFailed, Message: "Scraper failed", Stderr: err.Error()}
	if outcome != nil {
		f.Stdout = outcome.Stdout
		f.Stderr = outcome.Stderr
	}

	if errors.Is(err, shared.ErrCanceled) {
		f.Kind = shared.KindCanceled
		f.Message = "Scrape was canceled"
		logger.Warn("scrape canceled")
	} else {
		logger.Error("scrape could not run", "err", err)
	}

	sendProgress(progress, doneUpdate(string(f.Kind)))
	return models.Failed(f)
}
