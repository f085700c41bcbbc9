package reports

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("report subject not found")
	ErrNotFinal = errors.New("appraisal has not reached a final status")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type EmployeeStats struct {
	TotalGoals      int     `json:"totalGoals"`
	ApprovedGoals   int     `json:"approvedGoals"`
	CompletedGoals  int     `json:"completedGoals"`
	AverageProgress float64 `json:"averageProgress"`
}

func (s *Store) EmployeeStats(ctx context.Context, employeeID string) (EmployeeStats, error) {
	var stats EmployeeStats
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE approval_status = 'approved'),
           COUNT(1) FILTER (WHERE status = 'completed'),
           COALESCE(AVG(progress), 0)
    FROM goals
    WHERE employee_id = $1
  `, employeeID).Scan(&stats.TotalGoals, &stats.ApprovedGoals, &stats.CompletedGoals, &stats.AverageProgress)
	return stats, err
}

type ManagerStats struct {
	TeamSize         int `json:"teamSize"`
	AwaitingReview   int `json:"awaitingReview"`
	TeamGoalsPending int `json:"teamGoalsPending"`
}

func (s *Store) ManagerStats(ctx context.Context, managerEmployeeID string) (ManagerStats, error) {
	var stats ManagerStats
	if err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM employees WHERE manager_id = $1 AND is_active",
		managerEmployeeID).Scan(&stats.TeamSize); err != nil {
		return stats, err
	}
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM appraisals a
    JOIN employees e ON e.id = a.employee_id
    WHERE e.manager_id = $1 AND a.status = 'manager_review'
  `, managerEmployeeID).Scan(&stats.AwaitingReview); err != nil {
		return stats, err
	}
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM goals g
    JOIN employees e ON e.id = g.employee_id
    WHERE e.manager_id = $1 AND g.approval_status = 'pending_approval'
  `, managerEmployeeID).Scan(&stats.TeamGoalsPending)
	return stats, err
}

type CycleStats struct {
	ActiveCycles    int            `json:"activeCycles"`
	TotalAppraisals int            `json:"totalAppraisals"`
	ByStatus        map[string]int `json:"byStatus"`
	AverageRating   float64        `json:"averageRating"`
	CompletionRate  float64        `json:"completionRate"`
}

// CycleStats aggregates over the appraisals of currently active cycles.
func (s *Store) CycleStats(ctx context.Context) (CycleStats, error) {
	stats := CycleStats{ByStatus: map[string]int{}}

	if err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM appraisal_cycles WHERE status = 'active'").Scan(&stats.ActiveCycles); err != nil {
		return stats, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT a.status, COUNT(1)
    FROM appraisals a
    JOIN appraisal_cycles c ON c.id = a.cycle_id
    WHERE c.status = 'active'
    GROUP BY a.status
  `)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.ByStatus[status] = count
		stats.TotalAppraisals += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	completed := stats.ByStatus["completed"] + stats.ByStatus["acknowledged"] + stats.ByStatus["meeting_completed"]
	if stats.TotalAppraisals > 0 {
		stats.CompletionRate = float64(completed) / float64(stats.TotalAppraisals) * 100
	}

	err = s.DB.QueryRow(ctx, `
    SELECT COALESCE(AVG(a.overall_rating), 0)
    FROM appraisals a
    JOIN appraisal_cycles c ON c.id = a.cycle_id
    WHERE c.status = 'active' AND a.overall_rating IS NOT NULL
  `).Scan(&stats.AverageRating)
	return stats, err
}

type AppraisalSummary struct {
	AppraisalID   string
	EmployeeName  string
	EmployeeEmail string
	CycleName     string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Status        string
	OverallRating *int
	Goals         []GoalSummary
}

type GoalSummary struct {
	Title          string
	Category       string
	ApprovalStatus string
	Progress       float64
}

func (s *Store) AppraisalSummary(ctx context.Context, appraisalID string) (AppraisalSummary, error) {
	var sum AppraisalSummary
	err := s.DB.QueryRow(ctx, `
    SELECT a.id, e.first_name || ' ' || e.last_name, e.email,
           c.name, c.start_date, c.end_date, a.status, a.overall_rating
    FROM appraisals a
    JOIN employees e ON e.id = a.employee_id
    JOIN appraisal_cycles c ON c.id = a.cycle_id
    WHERE a.id = $1
  `, appraisalID).Scan(&sum.AppraisalID, &sum.EmployeeName, &sum.EmployeeEmail,
		&sum.CycleName, &sum.PeriodStart, &sum.PeriodEnd, &sum.Status, &sum.OverallRating)
	if errors.Is(err, pgx.ErrNoRows) {
		return AppraisalSummary{}, ErrNotFound
	}
	if err != nil {
		return AppraisalSummary{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT title, category, approval_status, progress
    FROM goals
    WHERE appraisal_id = $1
    ORDER BY created_at
  `, appraisalID)
	if err != nil {
		return AppraisalSummary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var g GoalSummary
		if err := rows.Scan(&g.Title, &g.Category, &g.ApprovalStatus, &g.Progress); err != nil {
			return AppraisalSummary{}, err
		}
		sum.Goals = append(sum.Goals, g)
	}
	return sum, rows.Err()
}

type JobRunFilter struct {
	JobType     string
	Status      string
	StartedFrom *time.Time
	StartedTo   *time.Time
}

type JobRun struct {
	ID          string     `json:"id"`
	JobType     string     `json:"jobType"`
	Status      string     `json:"status"`
	Details     string     `json:"details"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (s *Store) ListJobRuns(ctx context.Context, filter JobRunFilter, limit, offset int) ([]JobRun, error) {
	query, args := buildJobRunsBaseQuery(filter)
	query += " ORDER BY started_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []JobRun
	for rows.Next() {
		var run JobRun
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &run.Details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) CountJobRuns(ctx context.Context, filter JobRunFilter) (int, error) {
	query, args := buildJobRunsBaseQuery(filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM ("+query+") job_runs", args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func buildJobRunsBaseQuery(filter JobRunFilter) (string, []any) {
	query := `
    SELECT id, job_type, status, COALESCE(details, ''), started_at, completed_at
    FROM job_runs
    WHERE TRUE
  `
	args := []any{}

	if value := strings.TrimSpace(filter.JobType); value != "" {
		query += " AND job_type = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		query += " AND status = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if filter.StartedFrom != nil && !filter.StartedFrom.IsZero() {
		query += " AND started_at >= $" + strconv.Itoa(len(args)+1)
		args = append(args, *filter.StartedFrom)
	}
	if filter.StartedTo != nil && !filter.StartedTo.IsZero() {
		query += " AND started_at <= $" + strconv.Itoa(len(args)+1)
		args = append(args, *filter.StartedTo)
	}

	return query, args
}
