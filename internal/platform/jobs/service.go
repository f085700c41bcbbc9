package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"epms/internal/domain/appraisal"
	"epms/internal/domain/notifications"
	"epms/internal/platform/config"
	"epms/internal/platform/metrics"
)

const (
	JobDeadlineReminder = "deadline_reminder"
	JobCycleSweep       = "cycle_sweep"
)

// reminderWindow is how far ahead the reminder job looks for due dates.
const reminderWindow = 72 * time.Hour

type Service struct {
	DB        *pgxpool.Pool
	Cfg       config.Config
	Appraisal *appraisal.Service
	Notify    *notifications.Service
	Metrics   *metrics.Collector
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, appraisalSvc *appraisal.Service, notify *notifications.Service, collector *metrics.Collector) *Service {
	return &Service{
		DB:        db,
		Cfg:       cfg,
		Appraisal: appraisalSvc,
		Notify:    notify,
		Metrics:   collector,
		queue:     make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.DeadlineReminderInterval > 0 {
		go s.schedule(ctx, s.Cfg.DeadlineReminderInterval, JobDeadlineReminder, s.runDeadlineReminders)
	}
	if s.Cfg.CycleSweepInterval > 0 {
		go s.schedule(ctx, s.Cfg.CycleSweepInterval, JobCycleSweep, s.runCycleSweep)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	if s.Metrics != nil {
		s.Metrics.RecordJobRun(j.Type, status)
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details = $2, completed_at = now()
      WHERE id = $3
    `, status, string(detailsJSON), runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, jobType string, run func(context.Context) (any, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(jobType, run)
		}
	}
}

// runDeadlineReminders notifies the party whose submission is due. Deadlines
// are enforced at submission time; this job only nudges.
func (s *Service) runDeadlineReminders(ctx context.Context) (any, error) {
	reminders, err := s.Appraisal.ListPendingDeadlines(ctx, reminderWindow)
	if err != nil {
		return nil, err
	}

	sent := 0
	for _, r := range reminders {
		title := fmt.Sprintf("Reminder: %s deadline for %s", r.Kind, r.CycleName)
		body := fmt.Sprintf("Your %s for the %s cycle is due on %s.",
			r.Kind, r.CycleName, r.Due.Format("2006-01-02"))

		target := r.EmployeeID
		if r.Kind == "manager_review" {
			target = r.ManagerID
		}
		if target == "" {
			continue
		}
		if err := s.Notify.NotifyEmployee(ctx, target, notifications.TypeDeadlineReminder, title, body); err != nil {
			slog.Warn("deadline reminder failed", "appraisalId", r.AppraisalID, "err", err)
			continue
		}
		sent++
	}
	return map[string]any{"due": len(reminders), "sent": sent}, nil
}

func (s *Service) runCycleSweep(ctx context.Context) (any, error) {
	completed, err := s.Appraisal.CompleteExpiredCycles(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return map[string]any{"cyclesCompleted": completed}, nil
}
