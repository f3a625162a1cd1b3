package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Uploader pushes a rendered artifact to the cloud store. Implemented by
// upload.S3Uploader; nil disables uploading.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType, name string) (string, error)
}

// Result lists everything one export produced.
type Result struct {
	PDFPath  string `json:"pdf_path"`
	CSVPath  string `json:"csv_path"`
	TextPath string `json:"text_path"`
	RemoteID string `json:"remote_id,omitempty"`
}

// Exporter renders monthly sheets into a directory and optionally uploads
// the PDF.
type Exporter struct {
	sessions SessionReader
	pauses   PauseReader
	dir      string
	uploader Uploader
}

// NewExporter creates an exporter writing into dir. uploader may be nil.
func NewExporter(sessions SessionReader, pauses PauseReader, dir string, uploader Uploader) *Exporter {
	return &Exporter{sessions: sessions, pauses: pauses, dir: dir, uploader: uploader}
}

// ExportMonth renders the sheet for yearMonth ("2026-08") in all three
// formats. With upload set and an uploader wired, the PDF also goes to the
// cloud store; an upload failure does not fail the export.
func (e *Exporter) ExportMonth(ctx context.Context, yearMonth string, upload bool) (*Result, error) {
	sheet, err := BuildTimesheet(ctx, e.sessions, e.pauses, yearMonth)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	result := &Result{
		PDFPath:  filepath.Join(e.dir, FileName(sheet.Year, sheet.Month, "pdf")),
		CSVPath:  filepath.Join(e.dir, FileName(sheet.Year, sheet.Month, "csv")),
		TextPath: filepath.Join(e.dir, FileName(sheet.Year, sheet.Month, "txt")),
	}

	if err := RenderPDF(sheet, result.PDFPath); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	if err := RenderCSV(sheet, result.CSVPath); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	if err := RenderText(sheet, result.TextPath); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}

	log.Info().
		Str("month", yearMonth).
		Int("days", len(sheet.Entries)).
		Str("total", sheet.MonthlyTotal).
		Msg("Timesheet exported")

	if upload && e.uploader != nil {
		data, err := os.ReadFile(result.PDFPath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to read rendered PDF for upload")
			return result, nil
		}
		remoteID, err := e.uploader.Upload(ctx, data, "application/pdf", filepath.Base(result.PDFPath))
		if err != nil {
			log.Error().Err(err).Str("month", yearMonth).Msg("Timesheet upload failed")
			return result, nil
		}
		result.RemoteID = remoteID
		log.Info().Str("remoteId", remoteID).Msg("Timesheet uploaded")
	}

	return result, nil
}
