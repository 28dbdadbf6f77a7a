package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ppm/internal/domain"
)

const (
	sheetSummary   = "Summary"
	sheetLineItems = "Line Items"
)

var lineItemHeader = []interface{}{
	"Concept", "Unit", "Quantity", "Contract Cost", "Market Price", "Difference", "Difference %",
}

// WriteXLSX writes result as a workbook with a summary sheet and a line-item
// sheet. Numbers are written as numbers so they stay usable in formulas.
func WriteXLSX(w io.Writer, result *domain.AnalysisResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := writeSummarySheet(f, result); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetLineItems); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetSheetRow(sheetLineItems, "A1", &lineItemHeader); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}
	if result != nil {
		for i, item := range result.LineItems {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return fmt.Errorf("xlsx: %w", err)
			}
			row := []interface{}{
				item.Concept, item.Unit, item.Quantity,
				item.ContractCost, item.MarketPrice, item.Difference, item.DifferencePercent,
			}
			if err := f.SetSheetRow(sheetLineItems, cell, &row); err != nil {
				return fmt.Errorf("xlsx: row %d: %w", i+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: writing workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, result *domain.AnalysisResult) error {
	if !result.HasSummary() {
		return f.SetCellValue(sheetSummary, "A1", NoAnalysis)
	}
	s := result.Summary
	rows := [][]interface{}{
		{"Contract cost", s.ContractCost},
		{"Estimated market price", s.MarketPrice},
		{"Total difference", s.Difference},
		{"Difference %", s.DifferencePercent},
		{"Credibility %", s.Credibility},
		{"Alerts", len(result.Alerts)},
		{"Recommendations", len(result.Recommendations)},
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &rows[i]); err != nil {
			return fmt.Errorf("xlsx: summary: %w", err)
		}
	}
	return nil
}
