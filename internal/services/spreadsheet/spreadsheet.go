// Package spreadsheet reads and writes transaction ledgers as xlsx or csv.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/folio/internal/models"
)

// Format is a supported ledger file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv" (case-insensitive, leading dot allowed).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("format %q: %w", s, models.ErrUnsupportedFormat)
	}
}

// Columns is the ledger header, in export order.
var Columns = []string{"date", "symbol", "name", "asset_class", "type", "quantity", "unit_price", "total_amount", "notes"}

const sheetName = "Transactions"

// RowError reports a bad data row. Row is 1-based and counts the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Read parses a ledger. The first row must be a header naming at least date,
// symbol and type; other known columns are optional and unknown ones are ignored.
// Blank rows are skipped. The first malformed row aborts the read.
func Read(r io.Reader, format Format) ([]models.Transaction, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("format %q: %w", format, models.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &RowError{Row: 1, Err: errors.New("missing header row")}
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, &RowError{Row: 1, Err: err}
	}

	var txs []models.Transaction
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		tx, err := parseRow(row, index)
		if err != nil {
			return nil, &RowError{Row: i + 2, Err: err}
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Write renders transactions with the Columns header.
func Write(w io.Writer, format Format, txs []models.Transaction) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(w, txs)
	case FormatCSV:
		return writeCSV(w, txs)
	default:
		return fmt.Errorf("format %q: %w", format, models.ErrUnsupportedFormat)
	}
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	sheet := sheets[0]
	if idx, err := f.GetSheetIndex(sheetName); err == nil && idx >= 0 {
		sheet = sheetName
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		if _, dup := index[key]; !dup && key != "" {
			index[key] = i
		}
	}
	for _, required := range []string{"date", "symbol", "type"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("header is missing column %q", required)
		}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) (models.Transaction, error) {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var tx models.Transaction
	date, err := models.ParseDate(cell("date"))
	if err != nil {
		return tx, fmt.Errorf("invalid date %q", cell("date"))
	}
	txType, ok := models.ParseTransactionType(cell("type"))
	if !ok {
		return tx, fmt.Errorf("invalid type %q", cell("type"))
	}
	symbol := strings.ToUpper(cell("symbol"))
	if symbol == "" {
		return tx, errors.New("symbol is required")
	}

	qty, err := parseAmount(cell("quantity"))
	if err != nil {
		return tx, fmt.Errorf("invalid quantity: %w", err)
	}
	price, err := parseAmount(cell("unit_price"))
	if err != nil {
		return tx, fmt.Errorf("invalid unit_price: %w", err)
	}
	total, err := parseAmount(cell("total_amount"))
	if err != nil {
		return tx, fmt.Errorf("invalid total_amount: %w", err)
	}

	tx = models.Transaction{
		Symbol:      symbol,
		Name:        cell("name"),
		AssetClass:  models.ParseAssetClass(cell("asset_class")),
		Type:        txType,
		Quantity:    qty.InexactFloat64(),
		UnitPrice:   price.InexactFloat64(),
		TotalAmount: total.InexactFloat64(),
		Date:        date,
		Notes:       cell("notes"),
	}
	return tx, nil
}

// parseAmount reads a number that may carry thousands separators or a currency
// sign. Empty cells are zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(",", "", "$", "", "₹", "", "€", "", "£", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// record renders a transaction as string cells in Columns order.
func record(tx models.Transaction) []string {
	return []string{
		tx.Date.Format(models.DateLayout),
		tx.Symbol,
		tx.Name,
		string(tx.AssetClass),
		string(tx.Type),
		formatAmount(tx.Quantity),
		formatAmount(tx.UnitPrice),
		formatAmount(tx.TotalAmount),
		tx.Notes,
	}
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func writeCSV(w io.Writer, txs []models.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := cw.Write(record(tx)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, txs []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, tx := range txs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			tx.Date.Format(models.DateLayout),
			tx.Symbol,
			tx.Name,
			string(tx.AssetClass),
			string(tx.Type),
			tx.Quantity,
			tx.UnitPrice,
			tx.TotalAmount,
			tx.Notes,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}
