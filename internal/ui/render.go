package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/wahoodash/internal/formatter"
	"github.com/desertthunder/wahoodash/internal/models"
)

const recentLimit = 3

// RenderResult renders any scrape result for a terminal.
func RenderResult(result models.ScrapeResult) string {
	switch result.Status {
	case models.StatusSuccess:
		out := RenderSummary(result.Export)
		if result.Warning != "" {
			out += "\n" + styles.warn.Render("Warning: "+result.Warning)
		}
		return out
	case models.StatusNoData:
		out := styles.warn.Render(result.Message)
		if o := strings.TrimSpace(result.Output); o != "" {
			out += "\n\n" + styles.help.Render(o)
		}
		return out
	default:
		return RenderFailure(result.Failure)
	}
}

// RenderSummary renders the statistics of an export in a bordered box.
func RenderSummary(export *models.Export) string {
	if export == nil {
		return styles.err.Render("No data available")
	}

	s := export.Summary
	var b strings.Builder

	title := "Wahoo Fitness Summary"
	if name := export.Profile().Name(); name != "" {
		title += " · " + name
	}
	b.WriteString(styles.title.Render(title) + "\n")

	row := func(label, value string) {
		b.WriteString(styles.label.Render(label) + value + "\n")
	}
	row("Activities", fmt.Sprintf("%d", s.TotalActivities))
	row("Distance", formatter.FormatNumber(s.TotalDistanceKM)+" km")
	row("Calories", formatter.FormatNumber(s.TotalCalories))
	row("Duration", formatter.FormatNumber(s.TotalDurationHours)+" h")
	row("Avg heart rate", formatter.FormatNumber(s.AvgHeartRate)+" bpm")
	if export.ScrapedAt != "" {
		row("Scraped", export.ScrapedAt)
	}

	if sports := s.Sports(); len(sports) > 0 {
		b.WriteString("\n" + styles.ok.Render("By sport") + "\n")
		for _, sport := range sports {
			row("  "+sport, fmt.Sprintf("%d", s.ActivitiesBySport[sport]))
		}
	}

	if len(export.Devices) > 0 {
		b.WriteString("\n" + styles.ok.Render(fmt.Sprintf("Devices (%d)", len(export.Devices))) + "\n")
		for _, d := range export.Devices {
			b.WriteString("  " + formatter.DeviceLine(d) + "\n")
		}
	}

	if recent := s.Recent(recentLimit); len(recent) > 0 {
		b.WriteString("\n" + styles.ok.Render("Recent") + "\n")
		for _, a := range recent {
			b.WriteString("  " + formatter.ActivityLine(a) + "\n")
		}
	}

	return styles.box.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderFailure renders a failed scrape with whatever output the job produced.
func RenderFailure(f *models.Failure) string {
	if f == nil {
		return styles.err.Render("Scrape failed")
	}

	var b strings.Builder
	b.WriteString(styles.err.Render(fmt.Sprintf("✗ %s", f.Message)))
	b.WriteString(styles.help.Render(fmt.Sprintf(" [%s]", f.Kind)))
	if f.ExitCode != nil {
		b.WriteString(fmt.Sprintf("\nexit code: %d", *f.ExitCode))
	}
	if s := strings.TrimSpace(f.Stderr); s != "" {
		b.WriteString("\n\n" + styles.warn.Render("stderr:") + "\n" + s)
	}
	if s := strings.TrimSpace(f.Stdout); s != "" {
		b.WriteString("\n\n" + styles.help.Render("stdout:") + "\n" + s)
	}
	return b.String()
}
