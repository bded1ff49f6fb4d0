package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

var schedulerLog = logger.For("scheduler")

// DefaultContentsMaxAge is how long cached contents survive the
// contents-expire task.
const DefaultContentsMaxAge = 7 * 24 * time.Hour

// Housekeeping names the stores the built-in tasks operate on.
// Either store may be nil, in which case its task is a no-op.
type Housekeeping struct {
	Artifacts       driven.ArtifactStore
	Contents        driven.ContentsStore
	KeepGenerations int
	ContentsMaxAge  time.Duration
}

// Scheduler manages background task execution.
// It is a pure core service with no external control API.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	house  Housekeeping
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	house Housekeeping,
) *Scheduler {
	if house.ContentsMaxAge <= 0 {
		house.ContentsMaxAge = DefaultContentsMaxAge
	}
	return &Scheduler{
		config: config,
		store:  store,
		house:  house,
		now:    time.Now,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running || !s.config.Enabled {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		schedulerLog.Warn("failed to initialise tasks: %v", err)
	}

	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	for _, t := range domain.BuiltinTasks() {
		cfg := s.config.GetTaskConfig(t.ID)
		if !cfg.Enabled {
			continue
		}
		if cfg.Interval <= 0 {
			cfg.Interval = t.DefaultInterval
		}
		if err := s.ensureTask(ctx, t.ID, t.Name, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  s.now(),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = s.now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		schedulerLog.Warn("failed to list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask executes a single task.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: s.now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDArtifactPrune:
			result.ItemsProcessed, err = s.runArtifactPrune(ctx)
		case domain.TaskIDContentsExpire:
			result.ItemsProcessed, err = s.runContentsExpire(ctx)
		default:
			schedulerLog.Warn("unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = s.now()
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
		}
		task.Record(result)
		schedulerLog.Debug("%s processed %d items in %s", task.ID, result.ItemsProcessed, result.Duration())

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			schedulerLog.Warn("failed to save task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			schedulerLog.Warn("failed to record result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, 100); pruneErr != nil {
			schedulerLog.Warn("failed to prune history: %v", pruneErr)
		}
	}()
}

// runArtifactPrune drops all but the newest generations.
func (s *Scheduler) runArtifactPrune(ctx context.Context) (int, error) {
	if s.house.Artifacts == nil {
		return 0, nil
	}
	return s.house.Artifacts.PruneGenerations(ctx, s.house.KeepGenerations)
}

// runContentsExpire drops cached contents older than the max age.
func (s *Scheduler) runContentsExpire(ctx context.Context) (int, error) {
	if s.house.Contents == nil {
		return 0, nil
	}
	return s.house.Contents.DeleteContentsBefore(ctx, s.now().Add(-s.house.ContentsMaxAge))
}
