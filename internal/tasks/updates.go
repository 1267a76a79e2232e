package tasks

import (
	"fmt"
	"time"
)

// ProgressUpdate represents a progress event during a scrape.
//
// Used to send status lines to the CLI; the HTTP handler passes a nil channel.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number
	Total   int    // Total steps
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Validate Phase = iota
	Spawn
	Wait
	Collect
	Done
)

const totalSteps = 4

func (p Phase) String() string {
	switch p {
	case Validate:
		return "validate"
	case Spawn:
		return "spawn"
	case Wait:
		return "wait"
	case Collect:
		return "collect"
	case Done:
		return "done"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func validateUpdate(limit int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    1,
		Total:   totalSteps,
		Message: fmt.Sprintf("Preparing export of up to %d activities...", limit),
	}
}

func spawnUpdate(executable, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Spawn,
		Step:    2,
		Total:   totalSteps,
		Message: fmt.Sprintf("Starting %s (request %s)...", executable, id),
	}
}

func waitUpdate(outcome *Outcome) ProgressUpdate {
	msg := fmt.Sprintf("Extractor finished in %s", outcome.Duration.Round(time.Millisecond))
	switch {
	case outcome.TimedOut:
		msg = fmt.Sprintf("Extractor timed out after %s", outcome.Duration.Round(time.Millisecond))
	case outcome.ExitCode != nil && *outcome.ExitCode != 0:
		msg = fmt.Sprintf("Extractor exited with code %d", *outcome.ExitCode)
	}
	return ProgressUpdate{
		Phase:   Wait,
		Step:    3,
		Total:   totalSteps,
		Message: msg,
		Data:    outcome,
	}
}

func collectUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Collect,
		Step:    4,
		Total:   totalSteps,
		Message: fmt.Sprintf("Reading %s...", path),
	}
}

func doneUpdate(status string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    totalSteps,
		Total:   totalSteps,
		Message: status,
	}
}
