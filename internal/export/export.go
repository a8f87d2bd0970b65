// Package export writes the attempt log as a spreadsheet for parents.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/mathemmita/internal/store"
)

// Sheet is the name of the worksheet holding the attempts.
const Sheet = "Intentos"

// Header is the first row of the sheet.
var Header = []any{"Fecha", "Problema", "Operación", "Respuesta", "Correcto"}

// Attempts lists the attempts of userID matching opts, oldest first.
func Attempts(ctx context.Context, repo store.AttemptRepo, userID string, opts store.QueryOpts) ([]store.AttemptRecord, error) {
	recs, err := repo.Query(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// Build lays out one row per attempt followed by a totals row. Times are
// shown in loc.
func Build(records []store.AttemptRecord, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	rows := make([][]any, 0, len(records)+2)
	rows = append(rows, Header)
	correct := 0
	for _, r := range records {
		yes := "no"
		if r.Correct {
			yes = "sí"
			correct++
		}
		rows = append(rows, []any{
			r.Timestamp.In(loc).Format("2006-01-02 15:04:05"),
			r.DisplayText,
			r.Operator,
			r.Answer,
			yes,
		})
	}
	accuracy := "0%"
	if len(records) > 0 {
		accuracy = fmt.Sprintf("%.0f%%", float64(correct)/float64(len(records))*100)
	}
	rows = append(rows, []any{"Total", len(records), "", correct, accuracy})

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(Sheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(Sheet, "A", "A", 20); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, records []store.AttemptRecord, loc *time.Location) error {
	f, err := Build(records, loc)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ToFile builds the workbook and saves it at path.
func ToFile(path string, records []store.AttemptRecord, loc *time.Location) error {
	f, err := Build(records, loc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
