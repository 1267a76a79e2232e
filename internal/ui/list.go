package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/wahoodash/internal/formatter"
	"github.com/desertthunder/wahoodash/internal/models"
)

var _ list.Item = activityItem{}

// activityItem wraps an activity [models.Record] to implement [list.Item].
type activityItem struct {
	activity models.Record
}

func (i activityItem) FilterValue() string { return i.activity.Field("name") }
func (i activityItem) Title() string {
	if name := i.activity.Field("name"); name != "" {
		return name
	}
	return "Untitled"
}

func (i activityItem) Description() string {
	var parts []string
	if sport := i.activity.Field("sport"); sport != "" {
		parts = append(parts, sport)
	}
	if date := formatter.FormatDate(i.activity.Field("start_time")); date != "" {
		parts = append(parts, date)
	}
	if d := i.activity.Field("distance"); d != "" {
		parts = append(parts, fmt.Sprintf("%s m", d))
	}
	return strings.Join(parts, " • ")
}

func activityItems(export *models.Export) []list.Item {
	if export == nil {
		return nil
	}
	items := make([]list.Item, len(export.Activities))
	for i, a := range export.Activities {
		items[i] = activityItem{activity: a}
	}
	return items
}
