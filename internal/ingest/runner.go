// Package ingest replays archived webhook payload files through the same
// normalization and reconciliation path as the live webhook.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/config"
	"github.com/ppopeskul/wa-inbox/internal/metrics"
	"github.com/ppopeskul/wa-inbox/internal/scheduler"
	"github.com/ppopeskul/wa-inbox/internal/service"
	"github.com/ppopeskul/wa-inbox/internal/webhook"
)

// FileResult is the outcome of one payload file. Err is set when the file
// could not be read or parsed; entry-level failures only count in Failed.
// Rejected is the part of Failed that failed validation and would fail
// again on a retry.
type FileResult struct {
	File     string
	Created  int
	Updated  int
	NoMatch  int
	Failed   int
	Rejected int
	Err      error

	// Archived and Quarantined report where the file was moved. A file that
	// stays in the payload directory for the next run has Retry set.
	Archived    bool
	Quarantined bool
	Retry       bool
}

// Skipped reports whether nothing in the file was applied.
func (r FileResult) Skipped() bool {
	return r.Err != nil
}

// Summary totals a run. Pending counts files left in place for a retry.
type Summary struct {
	Files   int
	Skipped int
	Pending int
	Created int
	Updated int
	NoMatch int
	Failed  int
}

func Summarize(results []FileResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r.Skipped() {
			s.Skipped++
		}
		if r.Retry {
			s.Pending++
		}
		s.Created += r.Created
		s.Updated += r.Updated
		s.NoMatch += r.NoMatch
		s.Failed += r.Failed
	}
	return s
}

// failedDir collects files under the archive that will never apply cleanly.
const failedDir = "failed"

type Runner struct {
	svc        service.MessageService
	dir        string
	archiveDir string
	pause      time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewRunner(svc service.MessageService, cfg *config.IngestConfig, logger *zap.Logger) *Runner {
	return &Runner{
		svc:        svc,
		dir:        cfg.Dir,
		archiveDir: cfg.ArchiveDir,
		pause:      cfg.Pause(),
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes every *.json file in the payload directory once, in
// lexical order and one at a time. A bad file never stops the run.
func (r *Runner) Run(ctx context.Context) ([]FileResult, error) {
	files, err := r.listFiles()
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		r.logger.Info("No payload files to process", zap.String("dir", r.dir))
		return []FileResult{}, nil
	}

	results := make([]FileResult, 0, len(files))
	for i, name := range files {
		if i > 0 && r.pause > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(r.pause):
			}
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, r.processFile(ctx, name))
	}

	summary := Summarize(results)
	r.logger.Info("Finished processing payloads",
		zap.Int("files", summary.Files),
		zap.Int("skipped", summary.Skipped),
		zap.Int("pending", summary.Pending),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("no_match", summary.NoMatch),
		zap.Int("failed", summary.Failed))

	return results, nil
}

// Watch runs the directory on every interval until ctx is cancelled.
// Processed files are moved to the archive directory so each file is
// ingested once.
func (r *Runner) Watch(ctx context.Context, interval time.Duration) error {
	if r.archiveDir == "" {
		return ErrArchiveRequired
	}
	if _, err := r.listFiles(); err != nil {
		return err
	}

	s := scheduler.NewScheduler(r.logger, "ingest", interval, func(ctx context.Context) error {
		_, err := r.Run(ctx)
		return err
	})
	if err := s.Start(ctx); err != nil {
		return err
	}

	<-s.Done()
	return nil
}

func (r *Runner) listFiles() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDirNotFound, r.dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload directory: %w", err)
	}

	// os.ReadDir returns entries sorted by name.
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

func (r *Runner) processFile(ctx context.Context, name string) FileResult {
	result := FileResult{File: name}
	logger := r.logger.With(zap.String("file", name))
	path := filepath.Join(r.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		result.Err = fmt.Errorf("failed to read file: %w", err)
		metrics.IngestFiles.WithLabelValues("failed").Inc()
		logger.Error("Failed to read payload file", zap.Error(err))
		return result
	}

	change, err := parse(data)
	if err != nil {
		result.Err = err
		metrics.IngestFiles.WithLabelValues("skipped").Inc()
		logger.Warn("Skipping payload file", zap.Error(err))
	} else {
		r.apply(ctx, logger, change, &result)
		metrics.IngestFiles.WithLabelValues("processed").Inc()
		logger.Info("Processed payload file",
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("no_match", result.NoMatch),
			zap.Int("failed", result.Failed))
	}

	r.settle(logger, path, &result)

	return result
}

// settle decides where a read file goes. Without an archive directory
// files are never moved. Otherwise a clean file is archived, a file that
// can never apply cleanly (unparseable, or only validation failures) is
// moved to the failed/ folder under the archive, and a file with failed
// writes stays put so the next run retries it.
func (r *Runner) settle(logger *zap.Logger, path string, result *FileResult) {
	if r.archiveDir == "" {
		return
	}

	if result.Err == nil && result.Failed > result.Rejected {
		result.Retry = true
		metrics.IngestFiles.WithLabelValues("retry").Inc()
		logger.Warn("Leaving payload file for retry",
			zap.Int("failed", result.Failed),
			zap.Int("rejected", result.Rejected))
		return
	}

	dest := r.archiveDir
	if result.Err != nil || result.Failed > 0 {
		dest = filepath.Join(r.archiveDir, failedDir)
	}

	if err := moveFile(path, dest); err != nil {
		logger.Error("Failed to archive payload file", zap.Error(err))
		result.Retry = true
		return
	}

	if dest == r.archiveDir {
		result.Archived = true
	} else {
		result.Quarantined = true
	}
}

func parse(data []byte) (*webhook.Change, error) {
	env, err := webhook.ParseEnvelope(data)
	if err != nil {
		return nil, err
	}
	return env.ChangeOrEntry()
}

// apply handles both lists of a change. Unlike the live webhook, a file
// carrying messages and statuses has both applied.
func (r *Runner) apply(ctx context.Context, logger *zap.Logger, change *webhook.Change, result *FileResult) {
	msgs := webhook.Normalize(change, r.now().UTC())
	for i := range msgs {
		if _, err := r.svc.CreateMessage(ctx, &msgs[i]); err != nil {
			result.Failed++
			if errors.Is(err, service.ErrValidation) {
				result.Rejected++
			}
			logger.Error("Failed to insert message", zap.Int("index", i), zap.Error(err))
			continue
		}
		result.Created++
	}

	updates := webhook.ParseStatuses(change)
	if len(updates) == 0 {
		return
	}
	for _, outcome := range r.svc.ApplyStatuses(ctx, updates) {
		switch {
		case outcome.Err != nil:
			result.Failed++
		case outcome.Updated():
			result.Updated++
		default:
			result.NoMatch++
		}
	}
}

func moveFile(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.Rename(path, filepath.Join(dir, filepath.Base(path))); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}
	return nil
}
