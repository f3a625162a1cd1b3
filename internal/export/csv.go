package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// RenderCSV writes the sheet in spreadsheet form at path.
func RenderCSV(sheet *Timesheet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	if err := writeCSV(sheet, f); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(sheet *Timesheet, w io.Writer) error {
	cw := csv.NewWriter(w)

	title := []string{fmt.Sprintf("ARBEITSZEITLISTE - %s %d", sheet.MonthName(), sheet.Year)}
	if err := cw.Write(title); err != nil {
		return err
	}
	if err := cw.Write(tableHeaders); err != nil {
		return err
	}
	for _, row := range sheetRows(sheet) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", "", "", "", "", "", "", "MONATSGESAMT", sheet.MonthlyTotal}); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
