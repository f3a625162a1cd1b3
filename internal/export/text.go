package export

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderText writes the sheet as an aligned plain-text table at path.
func RenderText(sheet *Timesheet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create text export: %w", err)
	}
	defer f.Close()

	if err := writeText(sheet, f); err != nil {
		return err
	}
	return f.Close()
}

func writeText(sheet *Timesheet, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "ARBEITSZEITLISTE - %s %d\n\n", sheet.MonthName(), sheet.Year); err != nil {
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(tableHeaders)
	for _, row := range sheetRows(sheet) {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nMONATSGESAMT: %s\n", sheet.MonthlyTotal)
	return err
}
