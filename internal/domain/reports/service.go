package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type Summary struct {
	Year              int            `json:"year"`
	AppraisalsByState map[string]int `json:"appraisalsByState"`
	AverageFinalScore float64        `json:"averageFinalScore"`
	PendingDisputes   int            `json:"pendingDisputes"`
	PendingKpis       int            `json:"pendingKpiRequests"`
	ActiveKpis        int            `json:"activeKpis"`
}

func (s *Service) Summary(ctx context.Context, year int) (Summary, error) {
	counts, err := s.Store.AppraisalCountsByStatus(ctx, year)
	if err != nil {
		return Summary{}, err
	}
	avg, err := s.Store.AverageFinalScore(ctx, year)
	if err != nil {
		return Summary{}, err
	}
	disputes, err := s.Store.PendingDisputeCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	pendingKpis, err := s.Store.PendingKpiRequestCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	activeKpis, err := s.Store.ActiveKpiCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Year:              year,
		AppraisalsByState: counts,
		AverageFinalScore: avg,
		PendingDisputes:   disputes,
		PendingKpis:       pendingKpis,
		ActiveKpis:        activeKpis,
	}, nil
}

// AppraisalPDF renders a one-page summary of an appraisal for printing or
// filing.
func (s *Service) AppraisalPDF(ctx context.Context, appraisalID string) ([]byte, error) {
	row, err := s.Store.AppraisalReport(ctx, appraisalID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Appraisal Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Teacher: %s", row.TeacherName))
	pdf.Ln(7)
	if row.Department != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Department: %s", row.Department))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Year: %d", row.Year))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", row.Status))
	pdf.Ln(10)
	if row.FinalWeightedScore != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Final score: %.1f", *row.FinalWeightedScore))
		pdf.Ln(7)
	}
	if row.OriginalFinalScore != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Pre-dispute score: %.1f", *row.OriginalFinalScore))
		pdf.Ln(7)
	}
	if row.PrincipalComment != "" {
		pdf.MultiCell(0, 8, fmt.Sprintf("Principal: %s", row.PrincipalComment), "", "L", false)
	}
	if row.HRComment != "" {
		pdf.MultiCell(0, 8, fmt.Sprintf("HR: %s", row.HRComment), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
