// package formatter provides functions to export scraped Wahoo data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/wahoodash/internal/models"
)

// ErrNoActivities is returned when an export has no activities to write.
var ErrNoActivities = errors.New("no activities to export")

const recentLimit = 3

// ExportToCSV converts the activities of an export to CSV with the columns in [models.ActivityFields].
//
// Fields absent from an activity are written as empty cells.
func ExportToCSV(export *models.Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(models.ActivityFields); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, activity := range export.Activities {
		record := make([]string, len(models.ActivityFields))
		for i, field := range models.ActivityFields {
			record[i] = activity.Field(field)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText converts an export summary to plain text.
func ExportToText(export *models.Export) ([]byte, error) {
	var buf bytes.Buffer
	s := export.Summary
	profile := export.Profile()

	rule := strings.Repeat("=", 50)
	buf.WriteString(rule + "\n")
	buf.WriteString("WAHOO FITNESS DATA SUMMARY\n")
	buf.WriteString(rule + "\n")
	if name := profile.Name(); name != "" {
		buf.WriteString(fmt.Sprintf("User: %s\n", name))
	}
	if profile.Email != "" {
		buf.WriteString(fmt.Sprintf("Email: %s\n", profile.Email))
	}
	if export.ScrapedAt != "" {
		buf.WriteString(fmt.Sprintf("Scraped: %s\n", export.ScrapedAt))
	}

	buf.WriteString("\nOVERALL STATISTICS:\n")
	buf.WriteString(fmt.Sprintf("  Total Activities: %d\n", s.TotalActivities))
	buf.WriteString(fmt.Sprintf("  Total Distance: %s km\n", FormatNumber(s.TotalDistanceKM)))
	buf.WriteString(fmt.Sprintf("  Total Calories: %s\n", FormatNumber(s.TotalCalories)))
	buf.WriteString(fmt.Sprintf("  Total Duration: %s hours\n", FormatNumber(s.TotalDurationHours)))
	buf.WriteString(fmt.Sprintf("  Average Heart Rate: %s bpm\n", FormatNumber(s.AvgHeartRate)))

	buf.WriteString("\nACTIVITIES BY SPORT:\n")
	for _, sport := range s.Sports() {
		buf.WriteString(fmt.Sprintf("  %s: %d\n", sport, s.ActivitiesBySport[sport]))
	}

	buf.WriteString(fmt.Sprintf("\nCONNECTED DEVICES: %d\n", len(export.Devices)))
	for _, d := range export.Devices {
		buf.WriteString("  " + DeviceLine(d) + "\n")
	}

	buf.WriteString("\nRECENT ACTIVITIES:\n")
	for _, a := range s.Recent(recentLimit) {
		buf.WriteString("  " + ActivityLine(a) + "\n")
	}
	buf.WriteString(rule + "\n")

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an export summary to Markdown.
func ExportToMarkdown(export *models.Export) ([]byte, error) {
	var buf bytes.Buffer
	s := export.Summary
	profile := export.Profile()

	title := "Wahoo Fitness Summary"
	if name := profile.Name(); name != "" {
		title += ": " + name
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	if export.ScrapedAt != "" {
		buf.WriteString(fmt.Sprintf("**Scraped**: %s\n\n", export.ScrapedAt))
	}

	buf.WriteString("## Statistics\n\n")
	buf.WriteString("| Metric | Value |\n|---|---|\n")
	buf.WriteString(fmt.Sprintf("| Activities | %d |\n", s.TotalActivities))
	buf.WriteString(fmt.Sprintf("| Distance | %s km |\n", FormatNumber(s.TotalDistanceKM)))
	buf.WriteString(fmt.Sprintf("| Calories | %s |\n", FormatNumber(s.TotalCalories)))
	buf.WriteString(fmt.Sprintf("| Duration | %s h |\n", FormatNumber(s.TotalDurationHours)))
	buf.WriteString(fmt.Sprintf("| Avg heart rate | %s bpm |\n\n", FormatNumber(s.AvgHeartRate)))

	if sports := s.Sports(); len(sports) > 0 {
		buf.WriteString("## Sports\n\n")
		for _, sport := range sports {
			buf.WriteString(fmt.Sprintf("- %s: %d\n", sport, s.ActivitiesBySport[sport]))
		}
		buf.WriteString("\n")
	}

	if recent := s.Recent(recentLimit); len(recent) > 0 {
		buf.WriteString("## Recent Activities\n\n")
		for i, a := range recent {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, ActivityLine(a)))
		}
	}

	return buf.Bytes(), nil
}

// ActivityLine formats an activity as "name (sport) - YYYY-MM-DD".
func ActivityLine(a models.Record) string {
	name := a.Field("name")
	if name == "" {
		name = "Untitled"
	}
	line := name
	if sport := a.Field("sport"); sport != "" {
		line += fmt.Sprintf(" (%s)", sport)
	}
	if date := FormatDate(a.Field("start_time")); date != "" {
		line += " - " + date
	}
	return line
}

// DeviceLine formats a device as "name (type) - Battery: n%".
func DeviceLine(d models.Record) string {
	line := d.Field("name")
	if typ := d.Field("type"); typ != "" {
		line += fmt.Sprintf(" (%s)", typ)
	}
	if battery := d.Field("battery_level"); battery != "" {
		line += fmt.Sprintf(" - Battery: %s%%", battery)
	}
	return line
}

// FormatDate returns the date part of an RFC 3339 timestamp, or the input unchanged if it does not parse.
func FormatDate(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format(time.DateOnly)
}

// FormatNumber prints whole numbers without decimals and everything else with up to two.
func FormatNumber(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// WriteCSVExport writes the activities of an export to path.
//
// Defaults to wahoo_activities_{timestamp}.csv when path is empty.
func WriteCSVExport(export *models.Export, path string) (string, error) {
	if len(export.Activities) == 0 {
		return "", ErrNoActivities
	}
	if path == "" {
		path = fmt.Sprintf("wahoo_activities_%s.csv", time.Now().Format("20060102_150405"))
	}

	data, err := ExportToCSV(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}

// WriteReport writes the summary to path, as Markdown when path ends in .md and plain text otherwise.
func WriteReport(export *models.Export, path string) error {
	render := ExportToText
	if strings.HasSuffix(strings.ToLower(path), ".md") {
		render = ExportToMarkdown
	}

	data, err := render(export)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
