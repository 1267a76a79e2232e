// Package tasks runs the Wahoo extraction job and turns its output into a scrape result.
//
// # Core Operations
//
// A scrape is three steps, each behind an interface so it can be replaced in tests:
//
//  1. [JobRunner.Run] : spawn the extractor and wait for it
//     - [ProcessRunner] applies a hard timeout (60s by default)
//     - On timeout the process group is killed and reaped; no process outlives the call
//     - Stdout and stderr are captured in full
//
//  2. [ResultCollector.Collect] : read the artifact the job left behind
//     - [FileCollector] parses the export document, then removes the file
//     - A missing file is not an error for the caller; a corrupt one is left in place
//
//  3. [Scraper.Scrape] : validate, run, collect, and classify
//     - Returns a [models.ScrapeResult] in every case
//
// # Artifacts
//
// Each request gets its own artifact path, named with [ArtifactName] and passed to the
// extractor through the configured output flag. Extractors that cannot take an output path
// are supported with [FindArtifact], which picks the newest matching file written after the
// job started.
//
// # Progress Reporting
//
// [Scraper.Scrape] accepts an optional channel of [ProgressUpdate]. Sends use select with
// default so a slow consumer never stalls a scrape.
package tasks
