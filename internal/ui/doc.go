// Package ui renders scrape results for the terminal.
//
// [RenderResult], [RenderSummary] and [RenderFailure] produce static lipgloss output for the scrape command.
//
// The interactive [Model] implements bubbletea's Init/Update/View pattern for a single scrape:
//  1. [ScrapeView] : spinner and phase while the extractor runs
//  2. [SummaryView] : statistics, devices and recent activities
//  3. [ActivityListView] : browse and filter every exported activity
//
// Progress updates flow through a channel from [tasks.Scraper]. Quitting during a scrape cancels it
// and waits for the process to be killed before the program exits.
package ui
