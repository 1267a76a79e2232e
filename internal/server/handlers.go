package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wahoodash/internal/models"
	"github.com/desertthunder/wahoodash/internal/shared"
	"github.com/desertthunder/wahoodash/internal/tasks"
)

const (
	ScrapePath = "/api/wahoo/scrape"
	DebugPath  = "/api/debug"
	HealthPath = "/health"

	maxBodyBytes = 1 << 20
)

// Scraper runs a scrape for one request.
type Scraper interface {
	Scrape(ctx context.Context, progress chan<- tasks.ProgressUpdate, req models.ScrapeRequest) models.ScrapeResult
}

// ScrapeHandler serves POST /api/wahoo/scrape.
type ScrapeHandler struct {
	scraper Scraper
	logger  *log.Logger
}

// NewScrapeHandler creates a new [ScrapeHandler].
func NewScrapeHandler(scraper Scraper, logger *log.Logger) *ScrapeHandler {
	return &ScrapeHandler{scraper: scraper, logger: shared.WithLogger(logger, "handler", "scrape")}
}

type scrapeSuccess struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Output  string          `json:"output,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

type scrapeFailure struct {
	Error       string           `json:"error"`
	Kind        shared.ErrorKind `json:"kind"`
	Code        *int             `json:"code,omitempty"`
	Output      string           `json:"output,omitempty"`
	ErrorOutput string           `json:"errorOutput,omitempty"`
}

func (h *ScrapeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.ScrapeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid scrape request body", "err", err)
		writeJSON(w, http.StatusBadRequest, scrapeFailure{Error: "Invalid request body", Kind: shared.KindInvalidRequest})
		return
	}

	result := h.scraper.Scrape(r.Context(), nil, req)

	switch result.Status {
	case models.StatusSuccess:
		writeJSON(w, http.StatusOK, scrapeSuccess{Success: true, Data: result.Data, Warning: result.Warning})
	case models.StatusNoData:
		writeJSON(w, http.StatusOK, scrapeSuccess{Success: true, Message: result.Message, Output: result.Output})
	default:
		f := result.Failure
		if f == nil {
			f = &models.Failure{Kind: shared.KindProcessFailed, Message: "Scraper failed"}
		}
		writeJSON(w, failureStatus(f.Kind), scrapeFailure{
			Error:       f.Message,
			Kind:        f.Kind,
			Code:        f.ExitCode,
			Output:      f.Stdout,
			ErrorOutput: f.Stderr,
		})
	}
}

func failureStatus(kind shared.ErrorKind) int {
	switch kind {
	case shared.KindMissingCredential, shared.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DebugHandler reports which OAuth settings are configured without revealing secrets.
func DebugHandler(cfg shared.Config) http.Handler {
	setOrNot := func(v string) string {
		if v == "" {
			return "NOT SET"
		}
		return "SET"
	}
	valueOrNot := func(v string) string {
		if v == "" {
			return "NOT SET"
		}
		return v
	}

	body := map[string]map[string]string{
		"serverEnv": {
			"WAHOO_CLIENT_ID":     setOrNot(cfg.Wahoo.ClientID),
			"WAHOO_CLIENT_SECRET": setOrNot(cfg.Wahoo.ClientSecret),
			"WAHOO_REDIRECT_URI":  valueOrNot(cfg.Wahoo.RedirectURI),
			"APP_URL":             cfg.App.URL(),
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	})
}

// HealthHandler answers liveness probes.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
