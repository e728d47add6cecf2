package statistics

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []any{
	"month",
	"hub",
	"plan",
	"plan_type",
	"price",
	"new_count",
	"new_revenue",
	"retain_count",
	"retain_revenue",
	"leave_count",
	"leave_revenue",
}

// ExportXLSX renders ListReports as a single-sheet workbook.
func (s *Service) ExportXLSX(ctx context.Context, q ReportQuery) ([]byte, error) {
	items, err := s.ListReports(ctx, q)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := exportHeader
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	for i, it := range items {
		row := []any{
			it.Month,
			it.Hub,
			it.Plan,
			string(it.PlanType),
			it.Price.InexactFloat64(),
			it.NewCount,
			it.NewRevenue.InexactFloat64(),
			it.RetainCount,
			it.RetainRevenue.InexactFloat64(),
			it.LeaveCount,
			it.LeaveRevenue.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address report row: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write report row: %w", err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
