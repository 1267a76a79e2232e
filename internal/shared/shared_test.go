package shared

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestRedactArgs(t *testing.T) {
	tc := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "token redacted",
			args: []string{"scraper.py", "--token", "secret", "--limit", "10"},
			want: []string{"scraper.py", "--token", Redacted, "--limit", "10"},
		},
		{
			name: "trailing flag without value",
			args: []string{"--quiet", "--token"},
			want: []string{"--quiet", "--token"},
		},
		{
			name: "no secrets",
			args: []string{"--export-json"},
			want: []string{"--export-json"},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactArgs(tt.args, "--token")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RedactArgs() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("does not modify input", func(t *testing.T) {
		args := []string{"--token", "secret"}
		RedactArgs(args, "--token")
		if args[1] != "secret" {
			t.Error("expected input slice to be left untouched")
		}
	})
}

func TestError(t *testing.T) {
	cause := fmt.Errorf("exit status 2")
	err := NewError(KindProcessFailed, "scraper exited with code 2", cause)

	if !errors.Is(err, cause) {
		t.Error("expected error to unwrap to its cause")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if KindOf(wrapped) != KindProcessFailed {
		t.Errorf("expected kind %s, got %s", KindProcessFailed, KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != "" {
		t.Error("unclassified errors should have an empty kind")
	}

	if !strings.Contains(err.Error(), "process_failed") {
		t.Errorf("expected kind in message, got %s", err.Error())
	}

	if err.UserMessage() != "Scraper failed" {
		t.Errorf("unexpected user message %q", err.UserMessage())
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	if err := SetLogLevel(logger, "warn"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	logger.Info("hidden")
	WithLogger(logger, "component", "test").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=test") {
		t.Errorf("expected warn message with fields, got %q", out)
	}

	if err := SetLogLevel(logger, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %q", a)
	}
}

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	t.Cleanup(func() { getRuntime = original })

	tc := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "cmd"},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }
			name, args, err := browserCommand("https://example.com")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unsupported platform")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.want {
				t.Errorf("expected %s, got %s", tt.want, name)
			}
			if args[len(args)-1] != "https://example.com" {
				t.Errorf("expected url as last argument, got %v", args)
			}
		})
	}
}
