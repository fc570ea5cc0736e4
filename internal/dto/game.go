package dto

import (
	"time"

	"github.com/noah-isme/ects-quest/internal/metadata"
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/solver"
)

// CreateSessionRequest starts a new game. A seed makes every solve of the session reproducible.
type CreateSessionRequest struct {
	Seed *int64 `json:"seed"`
}

// CourseRequest names a catalog course.
type CourseRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

// RestoreSessionRequest replaces a session's state wholesale.
type RestoreSessionRequest struct {
	Level     int                    `json:"level" validate:"min=1"`
	History   []models.HistoryRecord `json:"history" validate:"dive"`
	Selection []string               `json:"selection"`
}

// SessionState is the public view of a session.
type SessionState struct {
	ID         string                 `json:"id"`
	Level      int                    `json:"level"`
	LevelTitle string                 `json:"levelTitle,omitempty"`
	Budget     int                    `json:"budget"`
	Finished   bool                   `json:"finished"`
	Selection  []models.Course        `json:"selection"`
	History    []models.HistoryRecord `json:"history"`
	BankedECTS int                    `json:"bankedEcts"`
	TotalScore int                    `json:"totalScore"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// CanAddResponse reports whether a course fits next to the selection.
type CanAddResponse struct {
	CourseID    string   `json:"courseId"`
	Allowed     bool     `json:"allowed"`
	Conflicting []string `json:"conflicting"`
}

// MetadataResponse bundles both metadata layers with the slot grid.
type MetadataResponse struct {
	Level   int                   `json:"level"`
	Simple  metadata.Simple       `json:"simple"`
	Complex metadata.Complex      `json:"complex"`
	Slots   []models.ScheduleSlot `json:"slots"`
}

// ValidationResponse is the rule report with both completion gates.
type ValidationResponse struct {
	Level      int              `json:"level"`
	Report     rules.Report     `json:"report"`
	Assessment rules.Assessment `json:"assessment"`
}

// SolveResponse returns the solver outcome and the resulting session.
type SolveResponse struct {
	Outcome solver.Outcome `json:"outcome"`
	Session SessionState   `json:"session"`
}

// CompleteLevelResponse returns the banked record and the advanced session.
type CompleteLevelResponse struct {
	Record  models.HistoryRecord `json:"record"`
	Session SessionState         `json:"session"`
}

// CatalogResponse lists subjects and courses.
type CatalogResponse struct {
	Subjects []models.Subject `json:"subjects"`
	Courses  []models.Course  `json:"courses"`
}

// ExportFormat selects the timetable rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportQuery is bound from the query string.
type ExportQuery struct {
	Format ExportFormat `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportFile is a rendered timetable.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
