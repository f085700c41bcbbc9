package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"epms/internal/domain/appraisal"
)

type Service struct {
	store      *Store
	storageDir string
}

func NewService(store *Store) *Service {
	return &Service{store: store, storageDir: "storage/appraisals"}
}

func (s *Service) EmployeeStats(ctx context.Context, employeeID string) (EmployeeStats, error) {
	return s.store.EmployeeStats(ctx, employeeID)
}

func (s *Service) ManagerStats(ctx context.Context, managerEmployeeID string) (ManagerStats, error) {
	return s.store.ManagerStats(ctx, managerEmployeeID)
}

func (s *Service) CycleStats(ctx context.Context) (CycleStats, error) {
	return s.store.CycleStats(ctx)
}

func (s *Service) ListJobRuns(ctx context.Context, filter JobRunFilter, limit, offset int) ([]JobRun, int, error) {
	runs, err := s.store.ListJobRuns(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountJobRuns(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// GenerateAppraisalPDF renders a completed appraisal as a one-page summary
// and returns the path of the written file. Only appraisals that reached a
// final status can be exported.
func (s *Service) GenerateAppraisalPDF(ctx context.Context, appraisalID string) (string, error) {
	sum, err := s.store.AppraisalSummary(ctx, appraisalID)
	if err != nil {
		return "", err
	}
	switch sum.Status {
	case appraisal.StatusCompleted, appraisal.StatusMeetingCompleted, appraisal.StatusAcknowledged:
	default:
		return "", fmt.Errorf("%w: status %s", ErrNotFinal, sum.Status)
	}

	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.storageDir, sum.AppraisalID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Appraisal Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", sum.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", sum.EmployeeEmail))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s (%s to %s)", sum.CycleName,
		sum.PeriodStart.Format("2006-01-02"), sum.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", sum.Status))
	pdf.Ln(7)
	if sum.OverallRating != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Overall rating: %d / 5", *sum.OverallRating))
	} else {
		pdf.Cell(0, 8, "Overall rating: not recorded")
	}
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Goals")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	if len(sum.Goals) == 0 {
		pdf.Cell(0, 7, "No goals recorded for this appraisal.")
		pdf.Ln(7)
	}
	for _, g := range sum.Goals {
		pdf.Cell(0, 7, fmt.Sprintf("- %s [%s] %s, %.0f%% complete", g.Title, g.Category, g.ApprovalStatus, g.Progress))
		pdf.Ln(6)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
