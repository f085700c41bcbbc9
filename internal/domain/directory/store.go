package directory

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"epms/internal/domain/auth"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  id, user_id,
  COALESCE(employee_number, ''),
  first_name, last_name, email,
  COALESCE(phone, ''),
  department,
  COALESCE(position, ''),
  employment_type, on_probation,
  COALESCE(manager_id::text, ''),
  start_date, end_date, is_active, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.Department, &emp.Position, &emp.EmploymentType, &emp.OnProbation, &emp.ManagerID,
		&emp.StartDate, &emp.EndDate, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = $1", employeeID))
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, userID string) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE user_id = $1", userID))
}

// EmployeeFilter narrows directory listings; zero values match everything.
type EmployeeFilter struct {
	Department     string
	EmploymentType string
	ActiveOnly     bool
}

func (s *Store) ListEmployees(ctx context.Context, filter EmployeeFilter, limit, offset int) ([]Employee, error) {
	query := "SELECT " + employeeColumns + " FROM employees WHERE 1=1"
	var args []any
	if filter.Department != "" {
		args = append(args, filter.Department)
		query += " AND department = $" + strconv.Itoa(len(args))
	}
	if filter.EmploymentType != "" {
		args = append(args, filter.EmploymentType)
		query += " AND employment_type = $" + strconv.Itoa(len(args))
	}
	if filter.ActiveOnly {
		query += " AND is_active"
	}
	query += " ORDER BY last_name, first_name"
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
		args = append(args, offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func (s *Store) ListTeam(ctx context.Context, managerEmployeeID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE manager_id = $1 AND is_active ORDER BY last_name, first_name",
		managerEmployeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func collectEmployees(rows pgx.Rows) ([]Employee, error) {
	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) IsManagerOf(ctx context.Context, managerEmployeeID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE id = $1 AND manager_id = $2
  `, employeeID, managerEmployeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EmployeeIDByEmail resolves an active employee by email address. Bulk goal
// upload rows identify employees this way.
func (s *Store) EmployeeIDByEmail(ctx context.Context, email string) (string, error) {
	var employeeID string
	err := s.DB.QueryRow(ctx,
		"SELECT id FROM employees WHERE LOWER(email) = LOWER($1) AND is_active", email).Scan(&employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return employeeID, err
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var employeeID string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return employeeID, err
}

// CreateEmployeeWithUser provisions the login and the employee record in one
// transaction so an onboarding failure never leaves an orphaned account.
func (s *Store) CreateEmployeeWithUser(ctx context.Context, emp Employee, role, password string) (string, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", "", err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", "", err
	}
	defer tx.Rollback(ctx)

	var userID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role, display_name)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, emp.Email, hash, role, emp.FirstName+" "+emp.LastName).Scan(&userID); err != nil {
		return "", "", err
	}

	var employeeID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO employees (user_id, employee_number, first_name, last_name, email, phone,
      department, position, employment_type, on_probation, manager_id, start_date, end_date, is_active)
    VALUES ($1, NULLIF($2,''), $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11,'')::uuid, $12, $13, TRUE)
    RETURNING id
  `, userID, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.Department, emp.Position, emp.EmploymentType, emp.OnProbation, emp.ManagerID,
		emp.StartDate, emp.EndDate).Scan(&employeeID); err != nil {
		return "", "", err
	}

	return employeeID, userID, tx.Commit(ctx)
}

func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, emp Employee) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET employee_number = NULLIF($1,''),
        first_name = $2,
        last_name = $3,
        email = $4,
        phone = $5,
        department = $6,
        position = $7,
        employment_type = $8,
        on_probation = $9,
        manager_id = NULLIF($10,'')::uuid,
        start_date = $11,
        end_date = $12,
        updated_at = now()
    WHERE id = $13
  `, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.Department, emp.Position, emp.EmploymentType, emp.OnProbation, emp.ManagerID,
		emp.StartDate, emp.EndDate, employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateEmployee offboards: the employee stops being picked up by cycle
// activation and their login is disabled.
func (s *Store) DeactivateEmployee(ctx context.Context, employeeID string, endDate *time.Time) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID string
	if err := tx.QueryRow(ctx, `
    UPDATE employees SET is_active = FALSE, end_date = COALESCE($1, end_date, now()), updated_at = now()
    WHERE id = $2
    RETURNING user_id
  `, endDate, employeeID).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, "UPDATE users SET is_active = FALSE WHERE id = $1", userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
