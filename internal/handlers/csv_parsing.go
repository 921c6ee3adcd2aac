package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/epeers/fundledger/internal/models"
)

// csvColumns reads the header row and maps each lower-cased column name to
// its index, failing when a required column is absent
func csvColumns(reader *csv.Reader, required ...string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIdx := make(map[string]int)
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}

	for _, col := range required {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}
	return colIdx, nil
}

// ParseFundReturnsCSV parses a fund return import CSV.
// Required columns: date, dollar_change, total_fund_value
// Amounts may carry "$", thousands separators or accounting parentheses.
// Rows with an empty date are skipped.
func ParseFundReturnsCSV(r io.Reader) ([]models.FundReturn, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIdx, err := csvColumns(reader, "date", "dollar_change", "total_fund_value")
	if err != nil {
		return nil, err
	}

	var returns []models.FundReturn
	rowNum := 1 // header is row 1, data starts at row 2
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to read CSV record: %w", rowNum+1, err)
		}
		rowNum++

		dateStr := strings.TrimSpace(record[colIdx["date"]])
		if dateStr == "" {
			continue
		}
		date, err := models.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		dollarChange, err := models.ParseAmount(record[colIdx["dollar_change"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: dollar_change: %w", rowNum, err)
		}
		totalFundValue, err := models.ParseAmount(record[colIdx["total_fund_value"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: total_fund_value: %w", rowNum, err)
		}

		returns = append(returns, models.FundReturn{
			Date:           date,
			DollarChange:   dollarChange,
			TotalFundValue: totalFundValue,
		})
	}

	return returns, nil
}

// ParseCalendarCSV parses a trading calendar CSV.
// Required column: date. Optional column: is_half_day (true/false/1/0, empty means false).
func ParseCalendarCSV(r io.Reader) ([]models.TradingDay, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIdx, err := csvColumns(reader, "date")
	if err != nil {
		return nil, err
	}
	halfIdx, hasHalf := colIdx["is_half_day"]

	var days []models.TradingDay
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to read CSV record: %w", rowNum+1, err)
		}
		rowNum++

		date, err := models.ParseDate(strings.TrimSpace(record[colIdx["date"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		day := models.TradingDay{Date: date}
		if hasHalf && halfIdx < len(record) {
			if raw := strings.TrimSpace(record[halfIdx]); raw != "" {
				day.IsHalfDay, err = strconv.ParseBool(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d: invalid is_half_day %q", rowNum, raw)
				}
			}
		}
		days = append(days, day)
	}

	return days, nil
}
