package overview

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/domain/models"
	"github.com/dairyops/milkledger/internal/repository/mongodb"
	"github.com/dairyops/milkledger/internal/repository/sheets"
	"github.com/dairyops/milkledger/internal/service/identity"
)

// Service builds the month matrix that backs monthly bills, and optionally
// exports it to a spreadsheet.
type Service struct {
	ledger   mongodb.LedgerStore
	resolver *identity.Resolver
	exporter sheets.Repository
	logger   *zap.Logger
}

// NewService wires the overview service. exporter may be nil, which disables
// spreadsheet export.
func NewService(ledger mongodb.LedgerStore, resolver *identity.Resolver, exporter sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:   ledger,
		resolver: resolver,
		exporter: exporter,
		logger:   logger,
	}
}

// BuildMonthReport aggregates one month of ledger entries into the
// day-by-customer matrix with row, column and grand totals. The active
// customer set fixes the columns; entries whose name resolves to no active
// customer are dropped from the matrix (they stay in storage). Multiple
// entries landing on one (day, customer) cell are summed.
func (s *Service) BuildMonthReport(ctx context.Context, ownerID, shift string, year, month int) (*models.MonthReport, error) {
	if shift == "" {
		return nil, models.NewValidationError("shift", "shift is required")
	}
	if month < 1 || month > 12 {
		return nil, models.NewValidationError("month", "month must be between 1 and 12")
	}
	if year < 1 {
		return nil, models.NewValidationError("year", "year is required")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	daysInMonth := last.Day()

	ix, err := s.resolver.Index(ctx, ownerID, shift)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledger.Query(ctx, ownerID, shift,
		first.Format(models.DateLayout), last.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("load month entries: %w", err)
	}

	matrix := make(map[int]map[string]models.ReportCell, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		matrix[d] = map[string]models.ReportCell{}
	}

	for _, entry := range entries {
		day := entry.Day()
		if day < 1 || day > daysInMonth {
			continue
		}

		customer, ok := ix.Resolve(entry.CustomerName)
		if !ok {
			s.logger.Debug("dropping unresolved customer name from matrix",
				zap.String("shift", shift),
				zap.String("name", entry.CustomerName),
				zap.String("date", entry.Date))
			continue
		}

		id := customer.ID.Hex()
		cell := matrix[day][id]
		cell.Quantity += entry.Quantity
		cell.Amount += entry.Amount
		matrix[day][id] = cell
	}

	report := &models.MonthReport{
		Year:                     year,
		Month:                    month,
		DaysInMonth:              daysInMonth,
		Matrix:                   matrix,
		TotalsByCustomerQuantity: map[string]float64{},
		TotalsByCustomerAmount:   map[string]float64{},
		TotalsByDay:              map[int]float64{},
	}

	for _, c := range ix.Customers() {
		report.Customers = append(report.Customers, models.ReportCustomer{
			ID:           c.ID.Hex(),
			Name:         c.DisplayName(),
			PricePerUnit: c.PricePerUnit,
		})
	}

	for d := 1; d <= daysInMonth; d++ {
		var dayTotal float64
		for id, cell := range matrix[d] {
			report.TotalsByCustomerQuantity[id] += cell.Quantity
			report.TotalsByCustomerAmount[id] += cell.Amount
			dayTotal += cell.Amount
			report.GrandTotal += cell.Amount
		}
		report.TotalsByDay[d] = dayTotal
	}

	return report, nil
}

// ExportMonthReport writes the month matrix to the configured spreadsheet,
// one row per calendar day plus header and totals rows.
func (s *Service) ExportMonthReport(ctx context.Context, ownerID, shift string, year, month int) error {
	if s.exporter == nil {
		return fmt.Errorf("spreadsheet export is not configured")
	}

	report, err := s.BuildMonthReport(ctx, ownerID, shift, year, month)
	if err != nil {
		return err
	}

	header := []interface{}{"Date"}
	for _, c := range report.Customers {
		header = append(header, c.Name)
	}
	header = append(header, "Day Total")

	rows := [][]interface{}{header}
	for d := 1; d <= report.DaysInMonth; d++ {
		row := []interface{}{fmt.Sprintf("%04d-%02d-%02d", year, month, d)}
		for _, c := range report.Customers {
			if cell, ok := report.Matrix[d][c.ID]; ok {
				row = append(row, cell.Quantity)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, report.TotalsByDay[d])
		rows = append(rows, row)
	}

	totals := []interface{}{"Total"}
	for _, c := range report.Customers {
		totals = append(totals, report.TotalsByCustomerAmount[c.ID])
	}
	totals = append(totals, report.GrandTotal)
	rows = append(rows, totals)

	sheetRange := fmt.Sprintf("%s!A1", shift)
	if err := s.exporter.WriteGrid(ctx, sheetRange, rows); err != nil {
		return fmt.Errorf("export month report: %w", err)
	}

	s.logger.Info("month report exported",
		zap.String("shift", shift),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("rows", len(rows)))
	return nil
}
