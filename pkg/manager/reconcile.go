package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasuboski/medialink/config"
	"github.com/kasuboski/medialink/pkg/library"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MappingSummary counts what one tick did for one folder mapping
type MappingSummary struct {
	Source    string `json:"source"`
	Skipped   bool   `json:"skipped"`
	Untracked int    `json:"untracked"`
	Vanished  int    `json:"vanished"`
	Resumed   int    `json:"resumed"`
	Removed   int64  `json:"removed"`
	DeadLinks int    `json:"deadLinks"`
	Failures  int    `json:"failures"`
}

// TickSummary is the result of one reconciliation pass
type TickSummary struct {
	ID       string           `json:"id"`
	Started  time.Time        `json:"started"`
	Duration time.Duration    `json:"duration"`
	Mappings []MappingSummary `json:"mappings"`
	Resynced int              `json:"resynced"`
}

func (s TickSummary) Untracked() int {
	n := 0
	for _, m := range s.Mappings {
		n += m.Untracked
	}
	return n
}

func (s TickSummary) Removed() int64 {
	var n int64
	for _, m := range s.Mappings {
		n += m.Removed
	}
	return n
}

// Reconcile runs one reconciliation pass over every folder mapping and then
// resyncs rows that are due.
func (m *MediaManager) Reconcile(ctx context.Context) (TickSummary, error) {
	cfg := m.config.Current()

	summary := TickSummary{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}

	log := logger.FromCtx(ctx, zap.String("tick_id", summary.ID))
	ctx = logger.WithCtx(ctx, log)
	log.Debug("starting reconciliation")

	if purged := m.metadata.Purge(); purged > 0 {
		log.Debugw("purged expired metadata", "entries", purged)
	}

	for _, mp := range mappings(cfg) {
		ms, err := m.reconcileMapping(ctx, cfg, mp)
		if err != nil {
			log.Errorw("failed to reconcile mapping", zap.String("source", mp.source), zap.Error(err))
		}
		summary.Mappings = append(summary.Mappings, ms)
	}

	resynced, err := m.ResyncDue(ctx)
	if err != nil {
		log.Errorw("failed to resync due files", zap.Error(err))
	}
	summary.Resynced = resynced

	summary.Duration = time.Since(summary.Started)
	m.metrics.tickFinished(summary.Duration)

	log.Infow("reconciliation finished",
		"untracked", summary.Untracked(),
		"removed", summary.Removed(),
		"resynced", summary.Resynced,
		"duration", summary.Duration)

	return summary, nil
}

func (m *MediaManager) reconcileMapping(ctx context.Context, cfg config.Config, mp mapping) (MappingSummary, error) {
	log := logger.FromCtx(ctx, zap.String("mapping", mp.source))
	ctx = logger.WithCtx(ctx, log)

	summary := MappingSummary{Source: mp.source}

	info, err := m.fs.Stat(mp.source)
	if err != nil || !info.IsDir() {
		log.Warnw("source folder unavailable, skipping mapping", zap.Error(err))
		summary.Skipped = true
		return summary, nil
	}

	tracked, err := m.storage.ListScannedFilesUnder(ctx, mp.source)
	if err != nil {
		return summary, fmt.Errorf("failed to list tracked files: %w", err)
	}

	onDisk, err := m.mediaLibrary(cfg).FindMediaFiles(ctx, library.FileSystem{
		FS:   m.fs.DirFS(mp.source),
		Path: mp.source,
	})
	if err != nil {
		return summary, fmt.Errorf("failed to list source files: %w", err)
	}

	untracked, vanished, stalled := diff(tracked, onDisk)
	summary.Untracked = len(untracked)
	summary.Vanished = len(vanished)
	summary.Resumed = len(stalled)

	tasks := make([]task, 0, len(untracked)+len(stalled))
	for _, row := range stalled {
		tasks = append(tasks, task{source: row.SourceFile, row: row})
	}
	for _, f := range untracked {
		tasks = append(tasks, task{source: f})
	}
	summary.Failures = m.processFiles(ctx, tasks, mp, workers(cfg))

	removed, err := m.removeVanished(ctx, vanished)
	if err != nil {
		log.Errorw("failed to remove vanished files", zap.Error(err))
	}
	summary.Removed = removed

	cleanup, err := m.links.CleanupDeadSymlinks(ctx, mp.destination)
	if err != nil {
		log.Warnw("failed to sweep dead symlinks", zap.String("destination", mp.destination), zap.Error(err))
	}
	summary.DeadLinks = cleanup.Links

	return summary, nil
}

// diff splits a mapping into files on disk without a row, rows whose file
// is gone and rows of files still on disk that were left in processing.
func diff(tracked []*model.ScannedFile, onDisk []string) ([]string, []*model.ScannedFile, []*model.ScannedFile) {
	disk := make(map[string]struct{}, len(onDisk))
	for _, f := range onDisk {
		disk[f] = struct{}{}
	}

	known := make(map[string]struct{}, len(tracked))
	var vanished, stalled []*model.ScannedFile
	for _, row := range tracked {
		known[row.SourceFile] = struct{}{}
		if _, ok := disk[row.SourceFile]; !ok {
			vanished = append(vanished, row)
			continue
		}
		if storage.FileStatus(row.Status) == storage.FileStatusProcessing {
			stalled = append(stalled, row)
		}
	}

	var untracked []string
	for _, f := range onDisk {
		if _, ok := known[f]; !ok {
			untracked = append(untracked, f)
		}
	}

	return untracked, vanished, stalled
}

// task is one source file for the pipeline. row is set when an existing row
// is resumed instead of a new one being created.
type task struct {
	source string
	row    *model.ScannedFile
}

// processFiles feeds tasks to a fixed number of workers and waits for all of
// them. It returns how many tasks hit an unexpected error.
func (m *MediaManager) processFiles(ctx context.Context, tasks []task, mp mapping, limit int) int {
	if len(tasks) == 0 {
		return 0
	}
	log := logger.FromCtx(ctx)

	queue := make(chan task)
	failures := make(chan struct{}, len(tasks))

	var g errgroup.Group
	for range min(limit, len(tasks)) {
		g.Go(func() error {
			for t := range queue {
				var err error
				if t.row != nil {
					err = m.resumeFile(ctx, *t.row, mp)
				} else {
					err = m.processFile(ctx, t.source, mp)
				}
				if err != nil {
					log.Errorw("failed to process file", zap.String("source", t.source), zap.Error(err))
					failures <- struct{}{}
				}
			}
			return nil
		})
	}

	for _, t := range tasks {
		queue <- t
	}
	close(queue)

	_ = g.Wait()
	return len(failures)
}

// removeVanished deletes the links and rows of files that left the source folder
func (m *MediaManager) removeVanished(ctx context.Context, vanished []*model.ScannedFile) (int64, error) {
	if len(vanished) == 0 {
		return 0, nil
	}
	log := logger.FromCtx(ctx)

	for _, row := range vanished {
		if row.DestFile == nil || !m.links.PointsTo(*row.DestFile, row.SourceFile) {
			continue
		}
		if err := m.links.RemoveSymlinkIfExists(ctx, *row.DestFile); err != nil {
			log.Warnw("failed to remove symlink", zap.String("destination", *row.DestFile), zap.Error(err))
		}
	}

	return m.ledger.Remove(ctx, vanished...)
}
