package ui

import (
	"github.com/desertthunder/wahoodash/internal/models"
	"github.com/desertthunder/wahoodash/internal/tasks"
)

// progressUpdateMsg carries a [tasks.ProgressUpdate] from the running scrape.
type progressUpdateMsg tasks.ProgressUpdate

// scrapeCompleteMsg is sent once the scrape has returned.
type scrapeCompleteMsg struct {
	result models.ScrapeResult
}
