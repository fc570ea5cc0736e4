package service

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/ects-quest/internal/dto"
	"github.com/noah-isme/ects-quest/internal/models"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
	"github.com/noah-isme/ects-quest/pkg/export"
)

type csvRenderer interface {
	Render(grid export.Grid) ([]byte, error)
}

type pdfRenderer interface {
	Render(grid export.Grid) ([]byte, error)
}

// ExportService renders weekly timetables.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// Timetable renders slots as a weekday by hour grid. An empty format means CSV.
func (s *ExportService) Timetable(name, title string, slots []models.ScheduleSlot, format dto.ExportFormat) (*dto.ExportFile, error) {
	grid := BuildGrid(title, slots)

	var (
		data []byte
		err  error
		file = &dto.ExportFile{}
	)
	switch format {
	case dto.ExportFormatCSV, "":
		data, err = s.csv.Render(grid)
		file.ContentType = "text/csv"
		file.Filename = name + ".csv"
	case dto.ExportFormatPDF:
		data, err = s.pdf.Render(grid)
		file.ContentType = "application/pdf"
		file.Filename = name + ".pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	if err != nil {
		s.logger.Error("render timetable", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render timetable")
	}
	file.Data = data
	return file, nil
}

// BuildGrid lays slots out with weekdays as columns and campus hours as rows.
// Overlapping courses share a cell.
func BuildGrid(title string, slots []models.ScheduleSlot) export.Grid {
	columns := make([]string, len(models.Weekdays))
	col := make(map[models.Weekday]int, len(models.Weekdays))
	for i, d := range models.Weekdays {
		columns[i] = d.String()
		col[d] = i
	}

	hours := models.ClosingHour - models.OpeningHour
	labels := make([]string, hours)
	cells := make([][]string, hours)
	occupants := make([][][]string, hours)
	for i := range labels {
		labels[i] = fmt.Sprintf("%02d:00", models.OpeningHour+i)
		cells[i] = make([]string, len(columns))
		occupants[i] = make([][]string, len(columns))
	}

	for _, slot := range slots {
		row := slot.Hour - models.OpeningHour
		c, ok := col[slot.Day]
		if !ok || row < 0 || row >= hours {
			continue
		}
		occupants[row][c] = append(occupants[row][c], slotLabel(slot))
	}
	for r := range occupants {
		for c, names := range occupants[r] {
			sort.Strings(names)
			cells[r][c] = strings.Join(names, " / ")
		}
	}

	return export.Grid{Title: title, Corner: "Hour", Columns: columns, Labels: labels, Cells: cells}
}

func slotLabel(slot models.ScheduleSlot) string {
	if slot.Course == nil {
		return slot.CourseID
	}
	return fmt.Sprintf("%s (%s)", slot.Course.Name, slot.Course.Type)
}
