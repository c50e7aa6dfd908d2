// Package jobs runs the scheduled background work: the daily vacation
// report and push-token cleanup. Jobs are run-to-completion batch scans;
// per-item failures are logged and skipped, never retried.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nomina/internal/domain/notifications"
	"nomina/internal/domain/vacation"
	"nomina/internal/platform/config"
	"nomina/internal/platform/db"
)

const (
	JobDailyVacationReport = "daily_vacation_report"
	JobTokenCleanup        = "push_token_cleanup"
	JobBalanceReconcile    = "balance_reconcile"
)

type Service struct {
	DB        *pgxpool.Pool
	Cfg       config.Config
	Vacations *vacation.Service
	Notify    *notifications.Service
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, vacations *vacation.Service, notify *notifications.Service) *Service {
	return &Service{
		DB:        db,
		Cfg:       cfg,
		Vacations: vacations,
		Notify:    notify,
		queue:     make(chan job, 64),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.DailyReportInterval > 0 {
		go s.schedule(ctx, s.Cfg.DailyReportInterval, JobDailyVacationReport, s.RunDailyVacationReport)
	}
	if s.Cfg.TokenCleanupInterval > 0 {
		go s.schedule(ctx, s.Cfg.TokenCleanupInterval, JobTokenCleanup, s.RunTokenCleanup)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

// RunNow executes a job synchronously, used by the admin trigger routes.
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
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// RunDailyVacationReport pushes a summary of who is off today to every
// admin.
func (s *Service) RunDailyVacationReport(ctx context.Context) (any, error) {
	today := time.Now().UTC().Format("2006-01-02")
	off, err := s.Vacations.OffToday(ctx, today)
	if err != nil {
		return nil, err
	}

	body := "Nobody is on vacation today."
	if len(off) > 0 {
		body = fmt.Sprintf("%d employee(s) on vacation today:", len(off))
		for _, req := range off {
			body += " " + req.Requester + ";"
		}
	}
	s.Notify.NotifyAdmins(ctx, notifications.Payload{
		Title: "Daily vacation report " + today,
		Body:  body,
		URL:   "/vacations",
		Type:  notifications.TypeDailyReport,
	})

	return map[string]any{"date": today, "onVacation": len(off)}, nil
}

// RunBalanceReconcile replays every employee's vacation history and
// rewrites the stored balance columns. Used after data imports; the API
// never reads the stored columns.
func (s *Service) RunBalanceReconcile(ctx context.Context) (any, error) {
	updated, err := db.ReconcileBalances(ctx, s.DB, vacation.ReplayOptions{CapRefunds: s.Cfg.VacationCapRefunds})
	if err != nil {
		return nil, err
	}
	return map[string]any{"updated": updated}, nil
}

// RunTokenCleanup prunes device tokens past their 60-day lifetime.
func (s *Service) RunTokenCleanup(ctx context.Context) (any, error) {
	deleted, err := s.Notify.CleanupExpiredTokens(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return map[string]any{"deleted": deleted}, nil
}
