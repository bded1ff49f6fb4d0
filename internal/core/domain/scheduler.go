package domain

import "time"

// Housekeeping task IDs.
const (
	TaskIDArtifactPrune  = "artifact-prune"
	TaskIDContentsExpire = "contents-expire"
)

// BuiltinTask describes a housekeeping task the scheduler knows how to run.
type BuiltinTask struct {
	ID              string
	Name            string
	DefaultInterval time.Duration
}

// BuiltinTasks lists the housekeeping tasks in the order they are scheduled.
func BuiltinTasks() []BuiltinTask {
	return []BuiltinTask{
		{ID: TaskIDArtifactPrune, Name: "Artifact Prune", DefaultInterval: time.Hour},
		{ID: TaskIDContentsExpire, Name: "Contents Expiry", DefaultInterval: 24 * time.Hour},
	}
}

// ScheduledTask is the persisted state of a recurring task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError is empty after a successful run.
	LastError string
}

// Due reports whether an enabled task should run at now. A task that has
// never been scheduled is due immediately.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// Record applies the outcome of a run and schedules the next one.
func (t *ScheduledTask) Record(result *TaskResult) {
	t.LastRun = result.StartedAt
	t.NextRun = result.EndedAt.Add(t.Interval)
	if result.Success {
		t.LastError = ""
		t.LastSuccess = result.EndedAt
		return
	}
	t.LastError = result.Error
}

// TaskResult is one entry of a task's run history.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts generations pruned or contents expired.
	ItemsProcessed int
}

// Duration returns how long the run took.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// TaskConfig enables and paces a single task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// SchedulerConfig holds the master switch and per-task settings.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// GetTaskConfig returns the configuration for a task, or the zero value when
// the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig enables every built-in task at its default interval.
func DefaultSchedulerConfig() SchedulerConfig {
	cfg := SchedulerConfig{Enabled: true, TaskConfigs: make(map[string]TaskConfig)}
	for _, t := range BuiltinTasks() {
		cfg.TaskConfigs[t.ID] = TaskConfig{Enabled: true, Interval: t.DefaultInterval}
	}
	return cfg
}
