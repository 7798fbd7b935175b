// Package scheduler implements the cron-style scheduler (spec §4.8): a
// singleton daemon that sleeps until each schedules.yaml entry's next fire
// time and drives the worktree engine's spawn/swarm-spawn operations.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ppgtool/ppg/internal/config"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/prompt"
	"github.com/ppgtool/ppg/internal/worktree"
)

// idleRecheck bounds how long the daemon sleeps when no schedule entries
// exist yet, so a concurrently edited schedule file is picked up promptly
// (the daemon has no in-memory cache and re-reads the file every tick).
const idleRecheck = time.Minute

// Daemon drives one project's schedule file.
type Daemon struct {
	ProjectRoot string
	Paths       ids.Paths
	Worktree    *worktree.Engine
	SessionName string
}

// New returns a Daemon for projectRoot.
func New(projectRoot string, paths ids.Paths, wt *worktree.Engine, sessionName string) *Daemon {
	return &Daemon{ProjectRoot: projectRoot, Paths: paths, Worktree: wt, SessionName: sessionName}
}

type job struct {
	entry    config.ScheduleEntry
	schedule cron.Schedule
}

func buildJobs(entries []config.ScheduleEntry) ([]job, error) {
	jobs := make([]job, 0, len(entries))
	for _, e := range entries {
		sched, err := cron.ParseStandard(e.Cron)
		if err != nil {
			return nil, fmt.Errorf("parsing cron expression for %q: %w", e.Name, err)
		}
		jobs = append(jobs, job{entry: e, schedule: sched})
	}
	return jobs, nil
}

// nextFire returns the job with the earliest Next(now) and that time.
func nextFire(jobs []job, now time.Time) (job, time.Time, bool) {
	var (
		best     job
		bestTime time.Time
		found    bool
	)
	for _, j := range jobs {
		t := j.schedule.Next(now)
		if !found || t.Before(bestTime) {
			best, bestTime, found = j, t, true
		}
	}
	return best, bestTime, found
}

// Run claims the PID singleton and loops until ctx is cancelled, at which
// point it finishes any in-flight fire and releases the singleton before
// returning (spec §4.8: daemons "treat OS termination signals as a request
// to run outstanding updates to completion, then exit").
func (d *Daemon) Run(ctx context.Context) error {
	pidPath := d.Paths.SchedulerPIDPath()
	if err := acquireSingleton(pidPath); err != nil {
		return err
	}
	defer releaseSingleton(pidPath)

	_ = appendLog(d.Paths.SchedulerLogPath(), "scheduler starting")
	defer appendLog(d.Paths.SchedulerLogPath(), "scheduler stopping")

	timer := time.NewTimer(idleRecheck)
	defer timer.Stop()

	for {
		entries, err := config.LoadScheduleFile(d.Paths.ScheduleFilePath())
		if err != nil {
			_ = appendLog(d.Paths.SchedulerLogPath(), "loading schedule file: %v", err)
			return err
		}

		jobs, err := buildJobs(entries.Schedules)
		if err != nil {
			_ = appendLog(d.Paths.SchedulerLogPath(), "parsing schedule file: %v", err)
			return err
		}

		var wait time.Duration
		next, fireAt, ok := nextFire(jobs, time.Now())
		if ok {
			wait = time.Until(fireAt)
			if wait < 0 {
				wait = 0
			}
		} else {
			wait = idleRecheck
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if ok {
				d.fire(ctx, next.entry)
			}
		}
	}
}

// fire invokes the matching worktree operation for entry and logs the
// outcome, never returning an error — a single bad entry must not stop the
// daemon from serving the rest of the schedule.
func (d *Daemon) fire(ctx context.Context, entry config.ScheduleEntry) {
	var err error
	switch {
	case entry.Swarm != "":
		_, err = d.Worktree.PerformSwarmSpawn(ctx, worktree.SwarmSpawnOptions{
			ProjectRoot: d.ProjectRoot,
			SessionName: d.SessionName,
			Name:        entry.Swarm,
			Vars:        entry.Vars,
		})
	case entry.Prompt != "":
		branch := fmt.Sprintf("sched/%s-%s", entry.Name, time.Now().UTC().Format("20060102-150405"))
		_, err = d.Worktree.PerformSpawn(ctx, worktree.SpawnOptions{
			ProjectRoot: d.ProjectRoot,
			SessionName: d.SessionName,
			Name:        entry.Name,
			Branch:      branch,
			Prompt:      prompt.Source{Prompt: entry.Prompt},
			Vars:        entry.Vars,
		})
	default:
		err = kerrors.New(kerrors.InvalidArgs, fmt.Sprintf("schedule entry %q has neither swarm nor prompt", entry.Name))
	}

	if err != nil {
		_ = appendLog(d.Paths.SchedulerLogPath(), "%s: failed: %v", entry.Name, err)
		return
	}
	_ = appendLog(d.Paths.SchedulerLogPath(), "%s: fired", entry.Name)
}

// Status reports whether a scheduler daemon is currently running for paths
// and its PID if so (spec §6: `cron status`).
func Status(paths ids.Paths) (bool, int) {
	return running(paths.SchedulerPIDPath())
}
