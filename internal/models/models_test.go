package models

import (
	"errors"
	"testing"

	"github.com/desertthunder/wahoodash/internal/shared"
)

func TestScrapeRequest(t *testing.T) {
	t.Run("Normalize applies default limit", func(t *testing.T) {
		req := ScrapeRequest{AccessToken: "  tok  "}.Normalize(100)
		if req.AccessToken != "tok" {
			t.Errorf("expected trimmed token, got %q", req.AccessToken)
		}
		if req.Limit != 100 {
			t.Errorf("expected limit 100, got %d", req.Limit)
		}
	})

	t.Run("Normalize keeps explicit limit", func(t *testing.T) {
		req := ScrapeRequest{AccessToken: "tok", Limit: 5}.Normalize(100)
		if req.Limit != 5 {
			t.Errorf("expected limit 5, got %d", req.Limit)
		}
	})

	tc := []struct {
		name string
		req  ScrapeRequest
		kind shared.ErrorKind
	}{
		{name: "valid", req: ScrapeRequest{AccessToken: "tok", Limit: 1}},
		{name: "missing token", req: ScrapeRequest{Limit: 1}, kind: shared.KindMissingCredential},
		{name: "negative limit", req: ScrapeRequest{AccessToken: "tok", Limit: -3}, kind: shared.KindInvalidRequest},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if shared.KindOf(err) != tt.kind {
				t.Errorf("expected kind %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestParseExport(t *testing.T) {
	t.Run("summary and activities", func(t *testing.T) {
		data := []byte(`{
			"summary": {"total_activities": 25, "total_distance_km": 412.5, "activities_by_sport": {"cycling": 20, "running": 5}},
			"activities": [{"id": 1234, "name": "Morning Ride", "distance": 25000.5, "sport": "cycling"}],
			"user": {"first_name": "Ada"},
			"scraped_at": "2024-05-01T10:00:00"
		}`)

		export, err := ParseExport(data)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if export.Summary.TotalActivities != 25 {
			t.Errorf("expected 25 activities, got %d", export.Summary.TotalActivities)
		}
		if export.Summary.ActivitiesBySport["running"] != 5 {
			t.Errorf("expected 5 runs, got %d", export.Summary.ActivitiesBySport["running"])
		}
		if len(export.Activities) != 1 {
			t.Fatalf("expected 1 activity, got %d", len(export.Activities))
		}
		if got := export.Activities[0].Field("id"); got != "1234" {
			t.Errorf("expected integer id formatting, got %q", got)
		}
		if got := export.Activities[0].Field("distance"); got != "25000.5" {
			t.Errorf("expected float formatting, got %q", got)
		}
		if got := export.Activities[0].Field("calories"); got != "" {
			t.Errorf("expected empty string for missing field, got %q", got)
		}
	})

	malformed := []struct {
		name string
		data string
	}{
		{name: "truncated", data: `{"summary": {"total_activities": 2`},
		{name: "empty", data: ``},
		{name: "whitespace", data: "  \n"},
		{name: "trailing garbage", data: `{} x`},
	}

	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseExport([]byte(tt.data)); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for %s input, got %v", tt.name, err)
			}
		})
	}

	t.Run("schema drift is tolerated", func(t *testing.T) {
		tc := []struct {
			name       string
			data       string
			activities int
			devices    int
		}{
			{name: "string where number expected", data: `{"summary": {"total_calories": "990"}, "activities": [{"id": 1}]}`, activities: 1},
			{name: "devices as object", data: `{"devices": {"bolt": {"name": "ELEMNT"}}, "activities": [{"id": 1}, {"id": 2}]}`, activities: 2},
			{name: "top-level array", data: `[1, 2, 3]`},
			{name: "null", data: `null`},
			{name: "string", data: `"text"`},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				export, err := ParseExport([]byte(tt.data))
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if export == nil {
					t.Fatal("expected a non-nil export")
				}
				if len(export.Activities) != tt.activities {
					t.Errorf("expected %d activities, got %d", tt.activities, len(export.Activities))
				}
				if len(export.Devices) != tt.devices {
					t.Errorf("expected %d devices, got %d", tt.devices, len(export.Devices))
				}
			})
		}
	})

	t.Run("mismatched summary field keeps the others", func(t *testing.T) {
		export, err := ParseExport([]byte(`{"summary": {"total_activities": 3, "total_calories": "lots"}}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if export.Summary.TotalActivities != 3 {
			t.Errorf("expected 3 activities, got %d", export.Summary.TotalActivities)
		}
	})
}

func TestFailure(t *testing.T) {
	code := 2
	f := &Failure{Kind: shared.KindProcessFailed, Message: "Scraper failed", ExitCode: &code}
	if f.Error() != "process_failed: Scraper failed (exit code 2)" {
		t.Errorf("unexpected message %q", f.Error())
	}

	var err error = f
	var target *Failure
	if !errors.As(err, &target) {
		t.Error("expected Failure to satisfy errors.As")
	}

	res := Failed(*f)
	if res.Status != StatusFailure || res.Failure == nil {
		t.Errorf("expected failure result, got %+v", res)
	}
}

func TestExportHelpers(t *testing.T) {
	t.Run("Profile", func(t *testing.T) {
		export := &Export{User: []byte(`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","id":7}`)}
		p := export.Profile()
		if p.Name() != "Ada Lovelace" || p.Email != "ada@example.com" {
			t.Errorf("unexpected profile %+v", p)
		}

		if (&Export{}).Profile().Name() != "" {
			t.Error("expected empty profile without user")
		}
		if (&Export{User: []byte(`[1]`)}).Profile().Name() != "" {
			t.Error("expected empty profile for unexpected shape")
		}
	})

	t.Run("Sports ordered by count", func(t *testing.T) {
		s := Summary{ActivitiesBySport: map[string]int{"running": 2, "cycling": 5, "swimming": 2}}
		got := s.Sports()
		want := []string{"cycling", "running", "swimming"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("Recent", func(t *testing.T) {
		s := Summary{RecentActivities: []Record{{"id": 1.0}, {"id": 2.0}, {"id": 3.0}, {"id": 4.0}}}
		if len(s.Recent(3)) != 3 {
			t.Errorf("expected 3, got %d", len(s.Recent(3)))
		}
		if len(s.Recent(10)) != 4 {
			t.Errorf("expected all 4, got %d", len(s.Recent(10)))
		}
	})
}
