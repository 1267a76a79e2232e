package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wahoodash/internal/models"
	"github.com/desertthunder/wahoodash/internal/shared"
)

// ArtifactPattern matches files written by the extractor's own timestamp naming.
const ArtifactPattern = "wahoo_data_*.json"

// ArtifactName returns the artifact file name for a request id.
func ArtifactName(id string) string {
	return fmt.Sprintf("wahoo_data_%s.json", id)
}

// Artifact is a result file that was read and parsed.
type Artifact struct {
	Path       string
	Raw        json.RawMessage
	Export     *models.Export
	CleanupErr error // set when the file could not be removed after reading
}

// ResultCollector reads the artifact a finished job left behind.
type ResultCollector interface {
	// Collect returns the parsed artifact at path.
	//
	// A missing file yields an error wrapping [shared.ErrArtifactMissing]; an unparsable one a [*CorruptArtifactError].
	Collect(ctx context.Context, path string) (*Artifact, error)
}

var errCorrupt = shared.NewError(shared.KindArtifactCorrupt, "artifact is not a valid export document", nil)

// CorruptArtifactError is returned when the artifact exists but cannot be parsed.
// The file is left in place.
type CorruptArtifactError struct {
	Path string
	Raw  []byte
	Err  error
}

func (e *CorruptArtifactError) Error() string {
	return fmt.Sprintf("corrupt artifact %s: %v", e.Path, e.Err)
}

// Unwrap exposes both the parse error and the classified [shared.Error].
func (e *CorruptArtifactError) Unwrap() []error {
	return []error{errCorrupt, e.Err}
}

// FileCollector implements [ResultCollector] on the local filesystem.
type FileCollector struct {
	logger *log.Logger
	remove func(string) error
}

// NewFileCollector creates a new [FileCollector].
func NewFileCollector(logger *log.Logger) *FileCollector {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FileCollector{
		logger: shared.WithLogger(logger, "component", "collector"),
		remove: os.Remove,
	}
}

// Collect reads, parses and then deletes the artifact at path.
//
// Deletion is best-effort: a failure is logged and recorded on the returned [Artifact].
func (c *FileCollector) Collect(ctx context.Context, path string) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCanceled, err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Info("no artifact produced", "path", path)
		return nil, fmt.Errorf("%w: %s", shared.ErrArtifactMissing, path)
	}
	if err != nil {
		return nil, &CorruptArtifactError{Path: path, Err: fmt.Errorf("failed to read artifact: %w", err)}
	}

	export, err := models.ParseExport(data)
	if err != nil {
		c.logger.Warn("artifact could not be parsed, leaving it in place", "path", path, "err", err)
		return nil, &CorruptArtifactError{Path: path, Raw: data, Err: err}
	}

	artifact := &Artifact{Path: path, Raw: json.RawMessage(data), Export: export}

	if err := c.remove(path); err != nil {
		c.logger.Warn("failed to remove artifact", "path", path, "err", err)
		artifact.CleanupErr = err
	}

	return artifact, nil
}

// FindArtifact returns the newest file in dir matching [ArtifactPattern] that was modified at or after since.
//
// It supports extractors that name their output by timestamp instead of accepting an output path.
// Concurrent jobs writing to the same dir can pick up each other's files.
func FindArtifact(dir string, since time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}

	matches, err := filepath.Glob(filepath.Join(dir, ArtifactPattern))
	if err != nil {
		return "", fmt.Errorf("invalid artifact pattern: %w", err)
	}

	var newest string
	var newestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		// Filesystem timestamps can be coarser than the wall clock.
		if info.ModTime().Before(since.Truncate(time.Second)) {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest, newestMod = m, info.ModTime()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("%w: no %s in %s", shared.ErrArtifactMissing, ArtifactPattern, dir)
	}
	return newest, nil
}
