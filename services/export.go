package services

import (
	"agency_site_go/models"
	"agency_site_go/services/i18n"
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportContentType is the MIME type of ExportSubmissionsXLSX output
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportSubmissionsXLSX writes submissions into a single-sheet workbook, in
// the order given
func ExportSubmissionsXLSX(subs []models.ContactSubmission, lang string, loc *time.Location) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := i18n.Translate(lang, "export.sheet")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{
		i18n.Translate(lang, "export.headers.received"),
		i18n.Translate(lang, "export.headers.name"),
		i18n.Translate(lang, "export.headers.email"),
		i18n.Translate(lang, "export.headers.company"),
		i18n.Translate(lang, "export.headers.phone"),
		i18n.Translate(lang, "export.headers.service"),
		i18n.Translate(lang, "export.headers.message"),
		i18n.Translate(lang, "export.headers.status"),
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F2937"}, Pattern: 1},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	statusRead := i18n.Translate(lang, "export.status_read")
	statusUnread := i18n.Translate(lang, "export.status_unread")

	for i, sub := range subs {
		row := i + 2
		status := statusUnread
		if sub.Read {
			status = statusRead
		}
		values := []interface{}{
			FormatTimestamp(sub.Timestamp, loc),
			sub.Name,
			sub.Email,
			sub.Company,
			sub.Phone,
			ServiceLabel(lang, sub.Service),
			sub.Message,
			status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "F", 24)
	f.SetColWidth(sheet, "G", "G", 60)
	f.SetColWidth(sheet, "H", "H", 12)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// ExportFileName names an export generated at t
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("submissions_%s.xlsx", t.UTC().Format("2006-01-02_150405"))
}
