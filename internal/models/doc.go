// Package models defines the data exchanged between the scrape pipeline, the HTTP layer and the CLI.
//
// The package contains two categories of types:
//
// 1. Request/response values for the scrape endpoint
//   - [ScrapeRequest] : access token and activity limit
//   - [ScrapeResult] : discriminated outcome (success, no data, failure)
//   - [Failure] : classified error with captured process output
//
// 2. The export document written by the extraction job
//   - [Export] : user, devices, activities, workouts, metrics and summary
//   - [Summary] : aggregate statistics rendered by the dashboard
//
// Sections the dashboard only passes through are kept as raw JSON so that the
// response echoes exactly what the extractor wrote.
package models
