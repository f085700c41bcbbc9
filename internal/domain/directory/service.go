package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"epms/internal/domain/auth"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type CreateEmployeeInput struct {
	Employee
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (Employee, error) {
	if err := validateEmployee(in.Employee); err != nil {
		return Employee{}, err
	}
	if in.Role == "" {
		in.Role = auth.RoleEmployee
	}
	if !auth.ValidRole(in.Role) {
		return Employee{}, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	if len(in.Password) < 8 {
		return Employee{}, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if in.EmploymentType == "" {
		in.EmploymentType = EmploymentFullTime
	}

	employeeID, _, err := s.store.CreateEmployeeWithUser(ctx, in.Employee, in.Role, in.Password)
	if err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) UpdateEmployee(ctx context.Context, employeeID string, emp Employee) (Employee, error) {
	if err := validateEmployee(emp); err != nil {
		return Employee{}, err
	}
	if err := s.store.UpdateEmployee(ctx, employeeID, emp); err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) DeactivateEmployee(ctx context.Context, employeeID string, endDate *time.Time) error {
	return s.store.DeactivateEmployee(ctx, employeeID, endDate)
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) GetEmployeeByUserID(ctx context.Context, userID string) (Employee, error) {
	return s.store.GetEmployeeByUserID(ctx, userID)
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, userID)
}

func (s *Service) EmployeeIDByEmail(ctx context.Context, email string) (string, error) {
	return s.store.EmployeeIDByEmail(ctx, email)
}

func (s *Service) ListEmployees(ctx context.Context, filter EmployeeFilter, limit, offset int) ([]Employee, error) {
	return s.store.ListEmployees(ctx, filter, limit, offset)
}

func (s *Service) ListTeam(ctx context.Context, managerEmployeeID string) ([]Employee, error) {
	return s.store.ListTeam(ctx, managerEmployeeID)
}

func (s *Service) IsManagerOf(ctx context.Context, managerEmployeeID, employeeID string) (bool, error) {
	return s.store.IsManagerOf(ctx, managerEmployeeID, employeeID)
}

func validateEmployee(emp Employee) error {
	if strings.TrimSpace(emp.FirstName) == "" || strings.TrimSpace(emp.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	if !strings.Contains(emp.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if strings.TrimSpace(emp.Department) == "" {
		return fmt.Errorf("%w: department is required", ErrValidation)
	}
	if emp.EmploymentType != "" && !ValidEmploymentType(emp.EmploymentType) {
		return fmt.Errorf("%w: unknown employment type %q", ErrValidation, emp.EmploymentType)
	}
	return nil
}
