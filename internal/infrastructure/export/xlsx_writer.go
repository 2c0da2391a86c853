package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

const (
	archiveSheet = "Arsip Surat"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout   = "2006-01-02 15:04"
)

var archiveHeaders = []string{
	"No. Surat", "Jenis", "Perihal", "Dari", "Kepada", "Status", "Dibuat", "Dikirim", "Penyetuju",
}

// XLSXWriter renders archived letters into a single-sheet workbook
type XLSXWriter struct {
	logger *zap.Logger
}

func NewXLSXWriter(logger *zap.Logger) port.ArchiveWriter {
	return &XLSXWriter{logger: logger}
}

func (w *XLSXWriter) ContentType() string {
	return xlsxMIME
}

// WriteLetters returns the workbook bytes, one row per letter after the header.
func (w *XLSXWriter) WriteLetters(letters []*entity.Letter) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), archiveSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range archiveHeaders {
		w.setCell(f, col+1, 1, title)
	}
	last, _ := excelize.CoordinatesToCellName(len(archiveHeaders), 1)
	if err := f.SetCellStyle(archiveSheet, "A1", last, headerStyle); err != nil {
		w.logger.Warn("Failed to style archive header", zap.Error(err))
	}

	for i, l := range letters {
		row := i + 2
		for col, value := range letterColumns(l) {
			w.setCell(f, col+1, row, value)
		}
	}

	if err := f.SetColWidth(archiveSheet, "A", "A", 18); err != nil {
		w.logger.Warn("Failed to set column width", zap.Error(err))
	}
	if err := f.SetColWidth(archiveSheet, "C", "E", 32); err != nil {
		w.logger.Warn("Failed to set column width", zap.Error(err))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		w.logger.Error("Failed to write archive workbook", zap.Error(err))
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("Archive workbook generated", zap.Int("letters", len(letters)))
	return buf.Bytes(), nil
}

func (w *XLSXWriter) setCell(f *excelize.File, col, row int, value string) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err == nil {
		err = f.SetCellValue(archiveSheet, cell, value)
	}
	if err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.Int("col", col),
			zap.Int("row", row),
			zap.Error(err))
	}
}

func letterColumns(l *entity.Letter) []string {
	sent := ""
	if l.SentAt != nil {
		sent = l.SentAt.Format(dateLayout)
	}

	approvers := make([]string, 0, len(l.ApprovalSteps))
	for _, step := range l.ApprovalSteps {
		name := step.ApproverID
		if step.Approver != nil && step.Approver.Name != "" {
			name = step.Approver.Name
		}
		approvers = append(approvers, name)
	}

	created := ""
	if !l.CreatedAt.IsZero() {
		created = l.CreatedAt.Format(dateLayout)
	}

	return []string{
		l.ReferenceNumber,
		l.Type,
		l.Subject,
		l.From,
		l.To,
		l.Status,
		created,
		sent,
		strings.Join(approvers, ", "),
	}
}
