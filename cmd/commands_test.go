package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/wahoodash/internal/models"
	"github.com/desertthunder/wahoodash/internal/services"
	"github.com/desertthunder/wahoodash/internal/shared"
	"github.com/desertthunder/wahoodash/internal/tasks"
	tu "github.com/desertthunder/wahoodash/internal/testing"
	"github.com/urfave/cli/v3"
)

type stubScraper struct {
	result   models.ScrapeResult
	requests []models.ScrapeRequest
}

func (s *stubScraper) Scrape(ctx context.Context, progress chan<- tasks.ProgressUpdate, req models.ScrapeRequest) models.ScrapeResult {
	s.requests = append(s.requests, req)
	if progress != nil {
		progress <- tasks.ProgressUpdate{Phase: tasks.Done, Step: 4, Total: 4, Message: "done"}
	}
	return s.result
}

func successResult(t *testing.T) models.ScrapeResult {
	t.Helper()
	export, err := models.ParseExport([]byte(tu.SampleExport))
	if err != nil {
		t.Fatalf("failed to parse sample export: %v", err)
	}
	return models.Succeeded(json.RawMessage(tu.SampleExport), export)
}

func testConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Wahoo.ClientID = "client-123"
	config.Wahoo.ClientSecret = "secret-456"
	config.Wahoo.RedirectURI = "http://localhost:3000/api/wahoo_callback"
	return config
}

// run executes args against the full command tree and returns what was written to the runner output.
func run(t *testing.T, opts RunnerOpts, args ...string) (string, error) {
	t.Helper()
	output := &bytes.Buffer{}
	opts.Output = output
	opts.Logger = shared.NewLogger(io.Discard)
	if opts.Config == nil {
		opts.Config = testConfig()
	}

	runner := NewRunner(opts)
	app := &cli.Command{
		Name:      "wahoodash",
		Commands:  runner.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	err := app.Run(context.Background(), append([]string{"wahoodash"}, args...))
	return output.String(), err
}

func TestScrapeCommand(t *testing.T) {
	t.Run("prints the summary and passes flags through", func(t *testing.T) {
		scraper := &stubScraper{result: successResult(t)}

		out, err := run(t, RunnerOpts{Scraper: scraper}, "scrape", "--token", "tok", "--limit", "5")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(scraper.requests) != 1 {
			t.Fatalf("expected one scrape, got %d", len(scraper.requests))
		}
		if req := scraper.requests[0]; req.AccessToken != "tok" || req.Limit != 5 {
			t.Errorf("unexpected request %+v", req)
		}
		if !strings.Contains(out, "Morning Ride") {
			t.Errorf("expected rendered summary, got %q", out)
		}
	})

	t.Run("json prints the export verbatim", func(t *testing.T) {
		scraper := &stubScraper{result: successResult(t)}

		out, err := run(t, RunnerOpts{Scraper: scraper}, "scrape", "--token", "tok", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if got["scraped_at"] != "2025-01-04T10:00:00Z" {
			t.Errorf("expected export document, got %v", got)
		}
	})

	t.Run("failure is returned as an error", func(t *testing.T) {
		code := 2
		scraper := &stubScraper{result: models.Failed(models.Failure{
			Kind:     shared.KindProcessFailed,
			Message:  "Scraper failed",
			ExitCode: &code,
			Stderr:   "boom",
		})}

		out, err := run(t, RunnerOpts{Scraper: scraper}, "scrape", "--token", "tok", "--json")

		var f *models.Failure
		if !errors.As(err, &f) {
			t.Fatalf("expected *models.Failure, got %v", err)
		}
		if f.Kind != shared.KindProcessFailed {
			t.Errorf("expected process_failed, got %s", f.Kind)
		}
		if !strings.Contains(out, `"errorOutput":"boom"`) || !strings.Contains(out, `"code":2`) {
			t.Errorf("expected failure body, got %q", out)
		}
	})

	t.Run("no data is not an error", func(t *testing.T) {
		scraper := &stubScraper{result: models.NoData("Scraping completed but no data file found", "log line")}

		out, err := run(t, RunnerOpts{Scraper: scraper}, "scrape", "--token", "tok")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "no data file found") {
			t.Errorf("expected no-data message, got %q", out)
		}
	})

	t.Run("writes csv and report files", func(t *testing.T) {
		dir := t.TempDir()
		csvPath := filepath.Join(dir, "activities.csv")
		reportPath := filepath.Join(dir, "report.md")
		scraper := &stubScraper{result: successResult(t)}

		_, err := run(t, RunnerOpts{Scraper: scraper},
			"scrape", "--token", "tok", "--csv", csvPath, "--report", reportPath)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if csv := tu.MustReadFile(t, csvPath); !strings.Contains(csv, "Evening Run") {
			t.Errorf("expected activities in CSV, got %q", csv)
		}
		tu.AssertFileExists(t, reportPath)
	})

	t.Run("files are not written on failure", func(t *testing.T) {
		dir := t.TempDir()
		csvPath := filepath.Join(dir, "activities.csv")
		scraper := &stubScraper{result: models.Failed(models.Failure{Kind: shared.KindTimedOut, Message: "Scraper timed out"})}

		if _, err := run(t, RunnerOpts{Scraper: scraper}, "scrape", "--token", "tok", "--csv", csvPath); err == nil {
			t.Fatal("expected error")
		}
		tu.AssertFileNotExists(t, csvPath)
	})
}

func TestAuthCommand(t *testing.T) {
	t.Run("url includes the client registration", func(t *testing.T) {
		out, err := run(t, RunnerOpts{}, "auth", "url")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "client_id=client-123") {
			t.Errorf("expected client id in URL, got %q", out)
		}
		if strings.Contains(out, "secret-456") {
			t.Error("client secret leaked into authorization URL")
		}
	})

	t.Run("url requires configuration", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Wahoo.ClientID = ""

		_, err := run(t, RunnerOpts{Config: config}, "auth", "url")
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("exchange prints the token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"access-abc","token_type":"bearer","refresh_token":"refresh-xyz"}`))
		}))
		defer srv.Close()

		wahoo := services.NewWahooService(services.WahooOpts{TokenURL: srv.URL, HTTPClient: srv.Client()})
		out, err := run(t, RunnerOpts{Wahoo: wahoo}, "auth", "exchange", "--code", "code-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var got tokenOutput
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if got.AccessToken != "access-abc" || got.RefreshToken != "refresh-xyz" {
			t.Errorf("unexpected token %+v", got)
		}
	})

	t.Run("verify reports the user", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}`))
		}))
		defer srv.Close()

		wahoo := services.NewWahooService(services.WahooOpts{APIURL: srv.URL, HTTPClient: srv.Client()})
		out, err := run(t, RunnerOpts{Wahoo: wahoo}, "auth", "verify", "--token", "tok")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Ada Lovelace <ada@example.com>") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("verify rejects bad token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		wahoo := services.NewWahooService(services.WahooOpts{APIURL: srv.URL, HTTPClient: srv.Client()})
		_, err := run(t, RunnerOpts{Wahoo: wahoo}, "auth", "verify", "--token", "bad")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}

func TestConfigCommand(t *testing.T) {
	t.Run("init writes the template once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if _, err := run(t, RunnerOpts{}, "config", "init", "--config", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("written config does not load: %v", err)
		}

		if _, err := run(t, RunnerOpts{}, "config", "init", "--config", path); err == nil {
			t.Error("expected error when file exists")
		}
	})

	t.Run("check does not print secrets", func(t *testing.T) {
		out, err := run(t, RunnerOpts{}, "config", "check")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if strings.Contains(out, "secret-456") || strings.Contains(out, "client-123") {
			t.Errorf("credentials leaked: %q", out)
		}
		if !strings.Contains(out, "WAHOO_CLIENT_SECRET: SET") {
			t.Errorf("expected SET marker, got %q", out)
		}
		if !strings.Contains(out, "✓ OAuth configured") {
			t.Errorf("expected configured status, got %q", out)
		}
	})

	t.Run("check lists missing settings", func(t *testing.T) {
		config := shared.DefaultConfig()

		out, err := run(t, RunnerOpts{Config: config}, "config", "check")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "missing: client_id, client_secret") {
			t.Errorf("expected missing fields, got %q", out)
		}
	})
}
