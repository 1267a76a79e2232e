package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/wahoodash/internal/shared"
)

// ScrapeRequest is the body accepted by the scrape endpoint.
type ScrapeRequest struct {
	AccessToken string `json:"access_token"`
	Limit       int    `json:"limit,omitempty"`
}

// Normalize trims the token and applies defaultLimit when no limit was given.
func (r ScrapeRequest) Normalize(defaultLimit int) ScrapeRequest {
	r.AccessToken = strings.TrimSpace(r.AccessToken)
	if r.Limit == 0 {
		r.Limit = defaultLimit
	}
	return r
}

// Validate checks the token is present and the limit is positive.
func (r ScrapeRequest) Validate() error {
	if r.AccessToken == "" {
		return shared.NewError(shared.KindMissingCredential, "Missing access token", shared.ErrMissingCredentials)
	}
	if r.Limit <= 0 {
		return shared.NewError(shared.KindInvalidRequest, fmt.Sprintf("limit must be positive, got %d", r.Limit), shared.ErrInvalidInput)
	}
	return nil
}

// ResultStatus discriminates [ScrapeResult].
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusNoData  ResultStatus = "no_data"
	StatusFailure ResultStatus = "failure"
)

// ScrapeResult is the outcome of one scrape.
//
// Exactly one of Data (success), Message (no data) or Failure (failure) is meaningful for a given Status.
type ScrapeResult struct {
	Status  ResultStatus
	Data    json.RawMessage // verbatim artifact contents
	Export  *Export         // parsed form of Data
	Message string
	Output  string // job stdout, kept for no-data results
	Warning string // non-fatal problems such as a failed artifact cleanup
	Failure *Failure
}

// Failure describes a failed scrape.
type Failure struct {
	Kind     shared.ErrorKind
	Message  string
	ExitCode *int
	Stdout   string
	Stderr   string
	Raw      string // artifact contents when the artifact was corrupt
}

func (f *Failure) Error() string {
	if f.ExitCode != nil {
		return fmt.Sprintf("%s: %s (exit code %d)", f.Kind, f.Message, *f.ExitCode)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Succeeded returns a success result.
func Succeeded(raw json.RawMessage, export *Export) ScrapeResult {
	return ScrapeResult{Status: StatusSuccess, Data: raw, Export: export}
}

// NoData returns a result for a job that exited cleanly without an artifact.
func NoData(message, output string) ScrapeResult {
	return ScrapeResult{Status: StatusNoData, Message: message, Output: output}
}

// Failed returns a failure result.
func Failed(f Failure) ScrapeResult {
	return ScrapeResult{Status: StatusFailure, Failure: &f}
}

// Export is the document written by the extraction job with --export-json.
type Export struct {
	User       json.RawMessage `json:"user,omitempty"`
	Devices    []Record        `json:"devices,omitempty"`
	Activities []Record        `json:"activities,omitempty"`
	Workouts   json.RawMessage `json:"workouts,omitempty"`
	Metrics    json.RawMessage `json:"metrics,omitempty"`
	Summary    Summary         `json:"summary"`
	ScrapedAt  string          `json:"scraped_at,omitempty"`
}

// Summary holds the aggregate statistics computed by the extractor.
type Summary struct {
	TotalActivities    int            `json:"total_activities"`
	TotalDistanceKM    float64        `json:"total_distance_km"`
	TotalCalories      float64        `json:"total_calories"`
	TotalDurationHours float64        `json:"total_duration_hours"`
	AvgHeartRate       float64        `json:"avg_heart_rate"`
	ActivitiesBySport  map[string]int `json:"activities_by_sport,omitempty"`
	RecentActivities   []Record       `json:"recent_activities,omitempty"`
}

// Record is a loosely typed object from the Wahoo API (an activity or a device).
//
// The API is inconsistent about numeric vs string identifiers, so fields are decoded generically.
type Record map[string]any

// ActivityFields lists the columns exported for each activity, in order.
var ActivityFields = []string{
	"id", "name", "start_time", "end_time", "duration", "distance",
	"calories", "avg_heart_rate", "max_heart_rate", "avg_speed",
	"max_speed", "elevation_gain", "sport", "device_name",
}

// Field returns the named field formatted for display, or "" when absent.
func (r Record) Field(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// ParseExport checks that data is well-formed JSON and decodes what it can of the export document.
//
// Only malformed JSON is an error. Sections whose shape does not match [Export] are left at their
// zero value (or partially filled), and a document that is not an object yields an empty [Export].
// The caller keeps data itself as the authoritative copy.
func ParseExport(data []byte) (*Export, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: export document is not valid JSON", shared.ErrInvalidInput)
	}

	export := &Export{}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return export, nil
	}

	decode := func(key string, dst any) {
		if raw, ok := sections[key]; ok {
			_ = json.Unmarshal(raw, dst)
		}
	}
	decode("user", &export.User)
	decode("devices", &export.Devices)
	decode("activities", &export.Activities)
	decode("workouts", &export.Workouts)
	decode("metrics", &export.Metrics)
	decode("summary", &export.Summary)
	decode("scraped_at", &export.ScrapedAt)

	return export, nil
}

// Profile is the subset of the Wahoo user object shown in summaries.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Name returns the full name, or "" when neither part is known.
func (p Profile) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Profile decodes the user object. Unknown shapes yield an empty [Profile].
func (e *Export) Profile() Profile {
	var p Profile
	if len(e.User) > 0 {
		_ = json.Unmarshal(e.User, &p)
	}
	return p
}

// Recent returns up to n of the most recent activities listed in the summary.
func (s Summary) Recent(n int) []Record {
	if n < 0 || n >= len(s.RecentActivities) {
		return s.RecentActivities
	}
	return s.RecentActivities[:n]
}

// Sports returns the sport names in ActivitiesBySport, sorted by descending count then name.
func (s Summary) Sports() []string {
	sports := make([]string, 0, len(s.ActivitiesBySport))
	for sport := range s.ActivitiesBySport {
		sports = append(sports, sport)
	}
	sort.Slice(sports, func(i, j int) bool {
		ci, cj := s.ActivitiesBySport[sports[i]], s.ActivitiesBySport[sports[j]]
		if ci != cj {
			return ci > cj
		}
		return sports[i] < sports[j]
	})
	return sports
}
