package goal

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const goalColumns = `
  id, employee_id, COALESCE(appraisal_id::text, ''), COALESCE(cycle_id::text, ''),
  title, description, category, priority, status, approval_status, progress,
  start_date, target_date, completed_date, version_number,
  COALESCE(created_by::text, ''), COALESCE(approved_by::text, ''), approved_at,
  COALESCE(rejected_reason, ''), created_at, updated_at`

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	err := row.Scan(&g.ID, &g.EmployeeID, &g.AppraisalID, &g.CycleID,
		&g.Title, &g.Description, &g.Category, &g.Priority, &g.Status, &g.ApprovalStatus, &g.Progress,
		&g.StartDate, &g.TargetDate, &g.CompletedDate, &g.VersionNumber,
		&g.CreatedBy, &g.ApprovedBy, &g.ApprovedAt,
		&g.RejectedReason, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, ErrNotFound
	}
	return g, err
}

func (s *Store) CreateGoal(ctx context.Context, g Goal) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO goals (
      employee_id, appraisal_id, cycle_id, title, description, category, priority,
      status, approval_status, start_date, target_date, created_by
    )
    VALUES ($1, NULLIF($2,'')::uuid, NULLIF($3,'')::uuid, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12,'')::uuid)
    RETURNING id
  `, g.EmployeeID, g.AppraisalID, g.CycleID, g.Title, g.Description, g.Category, g.Priority,
		g.Status, g.ApprovalStatus, g.StartDate, g.TargetDate, g.CreatedBy).Scan(&id)
	return id, err
}

func (s *Store) GetGoal(ctx context.Context, goalID string) (Goal, error) {
	return scanGoal(s.DB.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1", goalID))
}

func (s *Store) UpdateGoalDetails(ctx context.Context, g Goal) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET title = $1, description = $2, category = $3, priority = $4, status = $5,
        start_date = $6, target_date = $7, updated_at = now()
    WHERE id = $8
  `, g.Title, g.Description, g.Category, g.Priority, g.Status, g.StartDate, g.TargetDate, g.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, goalID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM goals WHERE id = $1", goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListGoalsByAppraisal(ctx context.Context, appraisalID string) ([]Goal, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE appraisal_id = $1 ORDER BY created_at", appraisalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGoals(rows)
}

func (s *Store) ListGoalsByEmployee(ctx context.Context, employeeID, cycleID string) ([]Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE employee_id = $1"
	args := []any{employeeID}
	if cycleID != "" {
		query += " AND cycle_id = $2"
		args = append(args, cycleID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGoals(rows)
}

func collectGoals(rows pgx.Rows) ([]Goal, error) {
	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// SubmitForApproval snapshots the current revision, bumps the version number
// and moves the goal to pending_approval, all in one transaction.
func (s *Store) SubmitForApproval(ctx context.Context, goalID, actorID, actorRole string) (Goal, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Goal{}, err
	}
	defer tx.Rollback(ctx)

	current, err := scanGoal(tx.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1 FOR UPDATE", goalID))
	if err != nil {
		return Goal{}, err
	}
	if !CanSubmitForApproval(current.ApprovalStatus) {
		return Goal{}, ErrInvalidState
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO goal_versions (goal_id, version_number, title, description, category, priority,
                               start_date, target_date, approval_status, rejected_reason)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''))
  `, current.ID, current.VersionNumber, current.Title, current.Description, current.Category,
		current.Priority, current.StartDate, current.TargetDate, current.ApprovalStatus, current.RejectedReason); err != nil {
		return Goal{}, err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE goals
    SET approval_status = $1, rejected_reason = NULL, approved_by = NULL, approved_at = NULL,
        version_number = version_number + 1, updated_at = now()
    WHERE id = $2
  `, ApprovalPending, goalID); err != nil {
		return Goal{}, err
	}

	if err := insertApprovalAudit(ctx, tx, goalID, current.ApprovalStatus, ApprovalPending, actorID, actorRole, "", current.VersionNumber+1); err != nil {
		return Goal{}, err
	}

	updated, err := scanGoal(tx.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1", goalID))
	if err != nil {
		return Goal{}, err
	}
	return updated, tx.Commit(ctx)
}

// Approve is idempotent: approving an already-approved goal reports
// changed=false and leaves the row untouched.
func (s *Store) Approve(ctx context.Context, goalID, actorID, actorRole string) (Goal, bool, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Goal{}, false, err
	}
	defer tx.Rollback(ctx)

	current, err := scanGoal(tx.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1 FOR UPDATE", goalID))
	if err != nil {
		return Goal{}, false, err
	}
	if current.ApprovalStatus == ApprovalApproved {
		return current, false, tx.Commit(ctx)
	}
	if !CanApprove(current.ApprovalStatus) {
		return Goal{}, false, ErrInvalidState
	}

	if _, err := tx.Exec(ctx, `
    UPDATE goals
    SET approval_status = $1, approved_by = $2, approved_at = now(),
        status = CASE WHEN status = $3 THEN $4 ELSE status END,
        updated_at = now()
    WHERE id = $5
  `, ApprovalApproved, actorID, StatusDraft, StatusActive, goalID); err != nil {
		return Goal{}, false, err
	}

	if err := insertApprovalAudit(ctx, tx, goalID, current.ApprovalStatus, ApprovalApproved, actorID, actorRole, "", current.VersionNumber); err != nil {
		return Goal{}, false, err
	}

	updated, err := scanGoal(tx.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1", goalID))
	if err != nil {
		return Goal{}, false, err
	}
	return updated, true, tx.Commit(ctx)
}

func (s *Store) Reject(ctx context.Context, goalID, actorID, actorRole, reason string) (Goal, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Goal{}, err
	}
	defer tx.Rollback(ctx)

	current, err := scanGoal(tx.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1 FOR UPDATE", goalID))
	if err != nil {
		return Goal{}, err
	}
	if !CanReject(current.ApprovalStatus) {
		return Goal{}, ErrInvalidState
	}

	if _, err := tx.Exec(ctx, `
    UPDATE goals SET approval_status = $1, rejected_reason = $2, updated_at = now() WHERE id = $3
  `, ApprovalRejected, reason, goalID); err != nil {
		return Goal{}, err
	}

	if err := insertApprovalAudit(ctx, tx, goalID, current.ApprovalStatus, ApprovalRejected, actorID, actorRole, reason, current.VersionNumber); err != nil {
		return Goal{}, err
	}

	updated, err := scanGoal(tx.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1", goalID))
	if err != nil {
		return Goal{}, err
	}
	return updated, tx.Commit(ctx)
}

func insertApprovalAudit(ctx context.Context, tx pgx.Tx, goalID, oldStatus, newStatus, actorID, actorRole, comments string, version int) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO goal_approval_audit (goal_id, old_status, new_status, changed_by, changed_by_role, comments, version_number)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7)
  `, goalID, oldStatus, newStatus, actorID, actorRole, comments, version)
	return err
}

func (s *Store) ListVersions(ctx context.Context, goalID string) ([]Version, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, goal_id, version_number, title, description, category, priority,
           start_date, target_date, approval_status, COALESCE(rejected_reason, ''), created_at
    FROM goal_versions
    WHERE goal_id = $1
    ORDER BY version_number DESC
  `, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.GoalID, &v.VersionNumber, &v.Title, &v.Description, &v.Category,
			&v.Priority, &v.StartDate, &v.TargetDate, &v.ApprovalStatus, &v.RejectedReason, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *Store) ListApprovalAudit(ctx context.Context, goalID string) ([]ApprovalAudit, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, goal_id, old_status, new_status, changed_by, changed_by_role,
           COALESCE(comments, ''), version_number, created_at
    FROM goal_approval_audit
    WHERE goal_id = $1
    ORDER BY created_at
  `, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ApprovalAudit
	for rows.Next() {
		var a ApprovalAudit
		if err := rows.Scan(&a.ID, &a.GoalID, &a.OldStatus, &a.NewStatus, &a.ChangedBy, &a.ChangedByRole,
			&a.Comments, &a.VersionNumber, &a.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

const keyResultColumns = `id, goal_id, title, target_value, current_value, unit, status, due_date, created_at, updated_at`

func scanKeyResult(row pgx.Row) (KeyResult, error) {
	var kr KeyResult
	err := row.Scan(&kr.ID, &kr.GoalID, &kr.Title, &kr.TargetValue, &kr.CurrentValue, &kr.Unit,
		&kr.Status, &kr.DueDate, &kr.CreatedAt, &kr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return KeyResult{}, ErrNotFound
	}
	return kr, err
}

func (s *Store) AddKeyResult(ctx context.Context, kr KeyResult) (KeyResult, error) {
	return scanKeyResult(s.DB.QueryRow(ctx, `
    INSERT INTO key_results (goal_id, title, target_value, current_value, unit, status, due_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING `+keyResultColumns+`
  `, kr.GoalID, kr.Title, kr.TargetValue, kr.CurrentValue, kr.Unit, KeyResultStatusActive, kr.DueDate))
}

// UpdateKeyResultValue writes the new measurement and recomputes the parent
// goal's progress in the same transaction. A goal reaching 100% while active
// auto-completes. The key result must belong to goalID; a mismatched pair is
// treated as not found so callers cannot reach another goal's key results.
func (s *Store) UpdateKeyResultValue(ctx context.Context, goalID, keyResultID string, current float64) (Goal, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Goal{}, err
	}
	defer tx.Rollback(ctx)

	kr, err := scanKeyResult(tx.QueryRow(ctx,
		"SELECT "+keyResultColumns+" FROM key_results WHERE id = $1 AND goal_id = $2 FOR UPDATE",
		keyResultID, goalID))
	if err != nil {
		return Goal{}, err
	}

	status := KeyResultStatusActive
	if KeyResultProgress(current, kr.TargetValue) >= 100 {
		status = KeyResultStatusCompleted
	}
	if _, err := tx.Exec(ctx, `
    UPDATE key_results SET current_value = $1, status = $2, updated_at = now() WHERE id = $3
  `, current, status, keyResultID); err != nil {
		return Goal{}, err
	}

	rows, err := tx.Query(ctx, "SELECT "+keyResultColumns+" FROM key_results WHERE goal_id = $1", kr.GoalID)
	if err != nil {
		return Goal{}, err
	}
	var results []KeyResult
	for rows.Next() {
		r, err := scanKeyResult(rows)
		if err != nil {
			rows.Close()
			return Goal{}, err
		}
		results = append(results, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Goal{}, err
	}

	progress := ProgressFromKeyResults(results)
	if _, err := tx.Exec(ctx, `
    UPDATE goals
    SET progress = $1,
        status = CASE WHEN $1 >= 100 AND status IN ($2, $3) THEN $4 ELSE status END,
        completed_date = CASE WHEN $1 >= 100 AND status IN ($2, $3) THEN now() ELSE completed_date END,
        updated_at = now()
    WHERE id = $5
  `, progress, StatusActive, StatusInProgress, StatusCompleted, kr.GoalID); err != nil {
		return Goal{}, err
	}

	updated, err := scanGoal(tx.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1", kr.GoalID))
	if err != nil {
		return Goal{}, err
	}
	return updated, tx.Commit(ctx)
}

func (s *Store) ListKeyResults(ctx context.Context, goalID string) ([]KeyResult, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+keyResultColumns+" FROM key_results WHERE goal_id = $1 ORDER BY created_at", goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []KeyResult
	for rows.Next() {
		kr, err := scanKeyResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, kr)
	}
	return results, rows.Err()
}

func (s *Store) AddComment(ctx context.Context, c Comment) (Comment, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO goal_comments (goal_id, author_id, content, comment_type)
    VALUES ($1,$2,$3,$4)
    RETURNING id, created_at
  `, c.GoalID, c.AuthorID, c.Content, c.Type).Scan(&c.ID, &c.CreatedAt)
	return c, err
}

func (s *Store) ListComments(ctx context.Context, goalID string) ([]Comment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, goal_id, author_id, content, comment_type, created_at
    FROM goal_comments
    WHERE goal_id = $1
    ORDER BY created_at DESC
  `, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.GoalID, &c.AuthorID, &c.Content, &c.Type, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
