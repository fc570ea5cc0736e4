package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ects-quest/internal/dto"
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/scheduling"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
	"github.com/noah-isme/ects-quest/pkg/export"
)

func TestBuildGridPlacesOverlaps(t *testing.T) {
	courses := []models.Course{
		{ID: "A", Name: "Alpha", Type: models.CourseTypeLecture, Block: models.TimeBlock{Day: models.Monday, StartHour: 8, Duration: 2}},
		{ID: "B", Name: "Beta", Type: models.CourseTypeLaboratory, Block: models.TimeBlock{Day: models.Monday, StartHour: 9, Duration: 1}},
		{ID: "C", Name: "Gamma", Type: models.CourseTypeSeminar, Block: models.TimeBlock{Day: models.Friday, StartHour: 19, Duration: 1}},
	}
	grid := BuildGrid("Week", scheduling.ProjectSlots(courses))

	require.NoError(t, grid.Validate())
	assert.Equal(t, []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}, grid.Columns)
	require.Len(t, grid.Labels, models.ClosingHour-models.OpeningHour)
	assert.Equal(t, "08:00", grid.Labels[0])
	assert.Equal(t, "19:00", grid.Labels[len(grid.Labels)-1])

	assert.Equal(t, "Alpha (LECTURE)", grid.Cells[0][0])
	assert.Equal(t, "Alpha (LECTURE) / Beta (LABORATORY)", grid.Cells[1][0])
	assert.Equal(t, "", grid.Cells[2][0])
	assert.Equal(t, "Gamma (SEMINAR)", grid.Cells[11][4])
}

type failingRenderer struct{}

func (failingRenderer) Render(export.Grid) ([]byte, error) {
	return nil, errors.New("disk full")
}

func TestExportServiceWrapsRenderFailure(t *testing.T) {
	svc := NewExportService(nil, failingRenderer{}, nil)

	_, err := svc.Timetable("t", "T", nil, dto.ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	file, err := svc.Timetable("t", "T", nil, dto.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "t.pdf", file.Filename)
}
