package export

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

var tableGrid = []uint{1, 1, 1, 1, 2, 2, 1, 1, 2}

// RenderPDF writes the sheet as a PDF file at path.
func RenderPDF(sheet *Timesheet, path string) error {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(15, 10, 15)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("ARBEITSZEITLISTE", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("%s %d", sheet.MonthName(), sheet.Year), props.Text{
					Top:   2,
					Align: consts.Center,
					Size:  12,
				})
			})
		})
	})

	m.TableList(tableHeaders, sheetRows(sheet), props.TableList{
		HeaderProp: props.TableListContent{
			Size:      8,
			GridSizes: tableGrid,
		},
		ContentProp: props.TableListContent{
			Size:      8,
			GridSizes: tableGrid,
		},
		Align:                consts.Center,
		AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
		HeaderContentSpace:   1,
		Line:                 false,
	})

	m.Row(15, func() {
		m.Col(12, func() {
			m.Text("MONATSGESAMT: "+sheet.MonthlyTotal, props.Text{
				Top:   8,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})

	return m.OutputFileAndClose(path)
}

// sheetRows interleaves the day rows with a weekly total row after each ISO
// week, matching the printed sheet layout.
func sheetRows(sheet *Timesheet) [][]string {
	var rows [][]string
	lastWeek := -1

	for i := range sheet.Entries {
		entry := &sheet.Entries[i]
		if lastWeek != -1 && entry.WeekNumber != lastWeek {
			rows = append(rows, weeklyTotalRow(lastWeek, sheet.WeeklyTotals[lastWeek]))
		}
		lastWeek = entry.WeekNumber
		rows = append(rows, entryRow(entry))
	}
	if lastWeek != -1 {
		rows = append(rows, weeklyTotalRow(lastWeek, sheet.WeeklyTotals[lastWeek]))
	}
	return rows
}

func weeklyTotalRow(week int, total string) []string {
	if total == "" {
		total = "00:00"
	}
	return []string{"", "", "", "", "", "", "", fmt.Sprintf("Woche %d", week), total}
}
