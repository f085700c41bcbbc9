package appraisal

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var employeeID string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return employeeID, err
}

func (s *Store) EmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error) {
	var p EmployeeProfile
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, department, employment_type, on_probation, start_date, COALESCE(manager_id::text, '')
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&p.EmployeeID, &p.UserID, &p.Department, &p.EmploymentType, &p.OnProbation, &p.StartDate, &p.ManagerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeProfile{}, ErrNotFound
	}
	return p, err
}

func (s *Store) IsManagerOfEmployee(ctx context.Context, employeeID, managerID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE id = $1 AND manager_id = $2
  `, employeeID, managerID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListActiveEmployees(ctx context.Context) ([]EmployeeProfile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, department, employment_type, on_probation, start_date, COALESCE(manager_id::text, '')
    FROM employees
    WHERE is_active
    ORDER BY start_date
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeProfile
	for rows.Next() {
		var p EmployeeProfile
		if err := rows.Scan(&p.EmployeeID, &p.UserID, &p.Department, &p.EmploymentType, &p.OnProbation, &p.StartDate, &p.ManagerID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const cycleColumns = `
  id, name, description, cycle_type, status, review_track, start_date, end_date,
  self_assessment_deadline, manager_review_deadline, minimum_service_months,
  eligibility_cutoff_date, include_probation, prorated_allowed, new_joiner_policy,
  COALESCE(created_by::text, ''), created_at`

func scanCycle(row pgx.Row) (Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Type, &c.Status, &c.ReviewTrack,
		&c.StartDate, &c.EndDate, &c.SelfAssessmentDeadline, &c.ManagerReviewDeadline,
		&c.MinimumServiceMonths, &c.EligibilityCutoffDate, &c.IncludeProbation,
		&c.ProratedAllowed, &c.NewJoinerPolicy, &c.CreatedBy, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cycle{}, ErrNotFound
	}
	return c, err
}

func (s *Store) CreateCycle(ctx context.Context, c Cycle) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO appraisal_cycles (
      name, description, cycle_type, status, review_track, start_date, end_date,
      self_assessment_deadline, manager_review_deadline, minimum_service_months,
      eligibility_cutoff_date, include_probation, prorated_allowed, new_joiner_policy, created_by
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,NULLIF($15,'')::uuid)
    RETURNING id
  `, c.Name, c.Description, c.Type, CycleStatusDraft, c.ReviewTrack, c.StartDate, c.EndDate,
		c.SelfAssessmentDeadline, c.ManagerReviewDeadline, c.MinimumServiceMonths,
		c.EligibilityCutoffDate, c.IncludeProbation, c.ProratedAllowed, c.NewJoinerPolicy, c.CreatedBy).Scan(&id)
	return id, err
}

func (s *Store) UpdateCycle(ctx context.Context, c Cycle) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisal_cycles
    SET name = $1, description = $2, cycle_type = $3, review_track = $4,
        start_date = $5, end_date = $6, self_assessment_deadline = $7,
        manager_review_deadline = $8, minimum_service_months = $9,
        eligibility_cutoff_date = $10, include_probation = $11,
        prorated_allowed = $12, new_joiner_policy = $13, updated_at = now()
    WHERE id = $14
  `, c.Name, c.Description, c.Type, c.ReviewTrack, c.StartDate, c.EndDate,
		c.SelfAssessmentDeadline, c.ManagerReviewDeadline, c.MinimumServiceMonths,
		c.EligibilityCutoffDate, c.IncludeProbation, c.ProratedAllowed, c.NewJoinerPolicy, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetCycle(ctx context.Context, cycleID string) (Cycle, error) {
	return scanCycle(s.DB.QueryRow(ctx, "SELECT "+cycleColumns+" FROM appraisal_cycles WHERE id = $1", cycleID))
}

func (s *Store) ListCycles(ctx context.Context) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+cycleColumns+" FROM appraisal_cycles ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (s *Store) ActiveCycle(ctx context.Context) (Cycle, error) {
	return scanCycle(s.DB.QueryRow(ctx, "SELECT "+cycleColumns+" FROM appraisal_cycles WHERE status = $1 ORDER BY start_date DESC LIMIT 1", CycleStatusActive))
}

// SetCycleStatus is compare-and-swap: it only moves the cycle if it is still
// in the expected status.
func (s *Store) SetCycleStatus(ctx context.Context, cycleID, from, to string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisal_cycles SET status = $1, updated_at = now() WHERE id = $2 AND status = $3
  `, to, cycleID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var count int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM appraisal_cycles WHERE id = $1", cycleID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

func (s *Store) CompleteExpiredCycles(ctx context.Context, asOf time.Time) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisal_cycles SET status = $1, updated_at = now()
    WHERE status = $2 AND end_date < $3
  `, CycleStatusCompleted, CycleStatusActive, asOf)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) CreateAppraisalIfAbsent(ctx context.Context, cycleID, employeeID, managerID string) (string, bool, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO appraisals (cycle_id, employee_id, manager_id, status)
    VALUES ($1, $2, NULLIF($3,'')::uuid, $4)
    ON CONFLICT (cycle_id, employee_id) DO NOTHING
    RETURNING id
  `, cycleID, employeeID, managerID, StatusNotStarted).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		existing := s.DB.QueryRow(ctx, "SELECT id FROM appraisals WHERE cycle_id = $1 AND employee_id = $2", cycleID, employeeID)
		if err := existing.Scan(&id); err != nil {
			return "", false, err
		}
		return id, false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

const appraisalColumns = `
  id, cycle_id, employee_id, COALESCE(manager_id::text, ''), status,
  self_assessment, manager_assessment, goal_ratings, overall_rating,
  self_submitted, self_submitted_at, manager_submitted, manager_submitted_at,
  meeting_date, acknowledged, acknowledged_at, COALESCE(acknowledge_comments, ''),
  created_at, updated_at`

func scanAppraisal(row pgx.Row) (Appraisal, error) {
	var a Appraisal
	err := row.Scan(&a.ID, &a.CycleID, &a.EmployeeID, &a.ManagerID, &a.Status,
		&a.SelfAssessment, &a.ManagerAssessment, &a.GoalRatings, &a.OverallRating,
		&a.SelfSubmitted, &a.SelfSubmittedAt, &a.ManagerSubmitted, &a.ManagerSubmittedAt,
		&a.MeetingDate, &a.Acknowledged, &a.AcknowledgedAt, &a.AcknowledgeComments,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, ErrNotFound
	}
	return a, err
}

func (s *Store) GetAppraisal(ctx context.Context, appraisalID string) (Appraisal, error) {
	return scanAppraisal(s.DB.QueryRow(ctx, "SELECT "+appraisalColumns+" FROM appraisals WHERE id = $1", appraisalID))
}

func (s *Store) AppraisalForEmployee(ctx context.Context, cycleID, employeeID string) (Appraisal, error) {
	return scanAppraisal(s.DB.QueryRow(ctx,
		"SELECT "+appraisalColumns+" FROM appraisals WHERE cycle_id = $1 AND employee_id = $2", cycleID, employeeID))
}

func (s *Store) ListAppraisals(ctx context.Context, cycleID, employeeID, managerID string) ([]Appraisal, error) {
	query := "SELECT " + appraisalColumns + " FROM appraisals WHERE 1=1"
	var args []any
	if cycleID != "" {
		args = append(args, cycleID)
		query += " AND cycle_id = $" + strconv.Itoa(len(args))
	}
	if employeeID != "" {
		args = append(args, employeeID)
		query += " AND employee_id = $" + strconv.Itoa(len(args))
	}
	if managerID != "" {
		args = append(args, managerID)
		query += " AND manager_id = $" + strconv.Itoa(len(args)) + "::uuid"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Appraisal
	for rows.Next() {
		a, err := scanAppraisal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const readinessQuery = `
  SELECT
    COUNT(*) FILTER (WHERE approval_status = 'approved'),
    COUNT(*) FILTER (WHERE approval_status = 'pending_approval'),
    COUNT(*) FILTER (WHERE approval_status = 'rejected')
  FROM goals
  WHERE appraisal_id = $1
    AND approval_status IN ('pending_approval', 'approved', 'rejected')`

func (s *Store) Readiness(ctx context.Context, appraisalID string) (Readiness, error) {
	return readinessCounts(ctx, s.DB, appraisalID)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func readinessCounts(ctx context.Context, q queryRower, appraisalID string) (Readiness, error) {
	var approved, pending, rejected int
	if err := q.QueryRow(ctx, readinessQuery, appraisalID).Scan(&approved, &pending, &rejected); err != nil {
		return Readiness{}, err
	}
	return NewReadiness(approved+pending+rejected, approved, pending, rejected), nil
}

// TransitionStatus applies one CAS-gated edge. Zero rows affected means the
// row moved underneath the caller (or never existed).
func (s *Store) TransitionStatus(ctx context.Context, appraisalID, from, to string) error {
	if !CanTransition(from, to) {
		return transitionError(from, to)
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals SET status = $1, updated_at = now() WHERE id = $2 AND status = $3
  `, to, appraisalID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var count int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM appraisals WHERE id = $1", appraisalID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return transitionError(from, to)
	}
	return nil
}

// SyncStatusWithReadiness recomputes the goal-approval leg inside one
// transaction with the counts it is derived from.
func (s *Store) SyncStatusWithReadiness(ctx context.Context, appraisalID string) (string, Readiness, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", Readiness{}, err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, "SELECT status FROM appraisals WHERE id = $1 FOR UPDATE", appraisalID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", Readiness{}, ErrNotFound
		}
		return "", Readiness{}, err
	}

	readiness, err := readinessCounts(ctx, tx, appraisalID)
	if err != nil {
		return "", Readiness{}, err
	}

	target := StatusForReadiness(status, readiness.Total, readiness.Pending)
	if target == "" || target == NormalizeStatus(status) {
		return status, readiness, tx.Commit(ctx)
	}
	if !CanTransition(status, target) {
		return status, readiness, tx.Commit(ctx)
	}
	if _, err := tx.Exec(ctx, "UPDATE appraisals SET status = $1, updated_at = now() WHERE id = $2", target, appraisalID); err != nil {
		return "", Readiness{}, err
	}
	return target, readiness, tx.Commit(ctx)
}

// SubmitSelfAssessment checks readiness and writes the submission in one
// transaction so a concurrent goal edit cannot slip between the check and
// the status change.
func (s *Store) SubmitSelfAssessment(ctx context.Context, appraisalID string, content json.RawMessage) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, "SELECT status FROM appraisals WHERE id = $1 FOR UPDATE", appraisalID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}

	// goals_approved is accepted as an implicit start of the self-assessment.
	normalized := NormalizeStatus(status)
	if normalized != StatusSelfAssessmentInProgress && normalized != StatusGoalsApproved {
		return "", transitionError(status, StatusManagerReview)
	}

	readiness, err := readinessCounts(ctx, tx, appraisalID)
	if err != nil {
		return "", err
	}
	if !readiness.Ready {
		return "", ErrNotReady
	}

	tag, err := tx.Exec(ctx, `
    UPDATE appraisals
    SET self_assessment = $1, self_submitted = true, self_submitted_at = now(),
        status = $2, updated_at = now()
    WHERE id = $3 AND status = $4
  `, content, StatusManagerReview, appraisalID, status)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return "", transitionError(status, StatusManagerReview)
	}
	return StatusManagerReview, tx.Commit(ctx)
}

func (s *Store) SubmitManagerReview(ctx context.Context, appraisalID string, assessment, goalRatings json.RawMessage, rating int, toStatus string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, "SELECT status FROM appraisals WHERE id = $1 FOR UPDATE", appraisalID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if NormalizeStatus(status) != StatusManagerReview || !CanTransition(status, toStatus) {
		return transitionError(status, toStatus)
	}

	tag, err := tx.Exec(ctx, `
    UPDATE appraisals
    SET manager_assessment = $1, goal_ratings = $2, overall_rating = $3,
        manager_submitted = true, manager_submitted_at = now(),
        status = $4, updated_at = now()
    WHERE id = $5 AND status = $6
  `, assessment, goalRatings, rating, toStatus, appraisalID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return transitionError(status, toStatus)
	}
	return tx.Commit(ctx)
}

func (s *Store) SetMeetingDate(ctx context.Context, appraisalID string, when time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisals SET meeting_date = $1, updated_at = now()
    WHERE id = $2 AND status = $3
  `, when, appraisalID, StatusMeetingScheduled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Store) CompleteMeeting(ctx context.Context, appraisalID string) error {
	return s.TransitionStatus(ctx, appraisalID, StatusMeetingScheduled, StatusMeetingCompleted)
}

// Acknowledge records the employee's sign-off. On the standard track the
// appraisal is already completed and only the flag is set; on the meeting
// track it is the final transition.
func (s *Store) Acknowledge(ctx context.Context, appraisalID, comments string) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var status string
	var acknowledged bool
	if err := tx.QueryRow(ctx, "SELECT status, acknowledged FROM appraisals WHERE id = $1 FOR UPDATE", appraisalID).Scan(&status, &acknowledged); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if acknowledged {
		return status, tx.Commit(ctx)
	}

	newStatus := status
	switch NormalizeStatus(status) {
	case StatusCompleted:
	case StatusMeetingCompleted:
		newStatus = StatusAcknowledged
	default:
		return "", transitionError(status, StatusAcknowledged)
	}

	if _, err := tx.Exec(ctx, `
    UPDATE appraisals
    SET acknowledged = true, acknowledged_at = now(), acknowledge_comments = $1,
        status = $2, updated_at = now()
    WHERE id = $3
  `, comments, newStatus, appraisalID); err != nil {
		return "", err
	}
	return newStatus, tx.Commit(ctx)
}

func (s *Store) ListPendingDeadlines(ctx context.Context, within time.Duration) ([]DeadlineReminder, error) {
	until := time.Now().Add(within)
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, c.name, a.employee_id, COALESCE(a.manager_id::text, ''), a.status,
           'self_assessment', c.self_assessment_deadline
    FROM appraisals a
    JOIN appraisal_cycles c ON a.cycle_id = c.id
    WHERE c.status = 'active' AND NOT a.self_submitted
      AND c.self_assessment_deadline IS NOT NULL
      AND c.self_assessment_deadline <= $1
    UNION ALL
    SELECT a.id, c.name, a.employee_id, COALESCE(a.manager_id::text, ''), a.status,
           'manager_review', c.manager_review_deadline
    FROM appraisals a
    JOIN appraisal_cycles c ON a.cycle_id = c.id
    WHERE c.status = 'active' AND NOT a.manager_submitted
      AND c.manager_review_deadline IS NOT NULL
      AND c.manager_review_deadline <= $1
  `, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DeadlineReminder
	for rows.Next() {
		var r DeadlineReminder
		if err := rows.Scan(&r.AppraisalID, &r.CycleName, &r.EmployeeID, &r.ManagerID, &r.Status, &r.Kind, &r.Due); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

