// Package game wires the catalog, rules and solver into a playable session.
package game

import (
	"fmt"
	"time"

	"github.com/noah-isme/ects-quest/internal/metadata"
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/scheduling"
	"github.com/noah-isme/ects-quest/internal/solver"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
)

// Catalog is the course source a session plays against.
type Catalog interface {
	solver.Courses
	Resolve(ids []string) ([]models.Course, error)
}

// Validation bundles the rule report with both completion gates.
type Validation struct {
	Level      int              `json:"level"`
	Report     rules.Report     `json:"report"`
	Assessment rules.Assessment `json:"assessment"`
}

// Session is one player's run through the levels. It is not safe for concurrent use.
type Session struct {
	catalog   Catalog
	book      *rules.Catalog
	solver    *solver.Solver
	level     int
	history   models.History
	selection *scheduling.Selection
	now       func() time.Time
}

// NewSession starts at level 1 with an empty history.
func NewSession(catalog Catalog, book *rules.Catalog, s *solver.Solver) *Session {
	return &Session{
		catalog:   catalog,
		book:      book,
		solver:    s,
		level:     1,
		selection: scheduling.NewSelection(),
		now:       time.Now,
	}
}

// Level returns the level being played.
func (s *Session) Level() int {
	return s.level
}

// Finished reports whether every level has been completed.
func (s *Session) Finished() bool {
	return s.level > s.book.LevelCount()
}

// History returns the completed levels.
func (s *Session) History() models.History {
	return append(models.History(nil), s.history...)
}

func (s *Session) course(id string) (models.Course, error) {
	c, ok := s.catalog.Course(id)
	if !ok {
		return models.Course{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", id))
	}
	return c, nil
}

// CanAdd checks a catalog course against the current selection.
func (s *Session) CanAdd(courseID string) (scheduling.AddCheck, error) {
	c, err := s.course(courseID)
	if err != nil {
		return scheduling.AddCheck{}, err
	}
	return s.selection.CanAdd(c), nil
}

// AddCourse selects a course, failing on duplicates and collisions without changing state.
func (s *Session) AddCourse(courseID string) error {
	c, err := s.course(courseID)
	if err != nil {
		return err
	}
	return s.selection.Add(c)
}

// RemoveCourse deselects a course.
func (s *Session) RemoveCourse(courseID string) error {
	if !s.selection.Remove(courseID) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s is not selected", courseID))
	}
	return nil
}

// ClearAll empties the selection.
func (s *Session) ClearAll() {
	s.selection.Clear()
}

// Selection returns the selected courses in insertion order.
func (s *Session) Selection() []models.Course {
	return s.selection.Courses()
}

// Slots returns the hourly projection of the selection.
func (s *Session) Slots() []models.ScheduleSlot {
	return s.selection.Slots()
}

// SimpleMetadata derives the linear aggregates of the selection.
func (s *Session) SimpleMetadata() metadata.Simple {
	return metadata.CalculateSimple(s.selection.Courses())
}

// ComplexMetadata derives the schedule shape and willpower cost.
func (s *Session) ComplexMetadata() metadata.Complex {
	return metadata.CalculateComplex(s.selection.Slots(), s.level)
}

// Context builds a fresh validation context.
func (s *Session) Context() rules.Context {
	return rules.NewContext(s.level, s.history, s.selection.Courses(), s.catalog)
}

// Validation evaluates the active rules and both gates.
func (s *Session) Validation() Validation {
	ctx := s.Context()
	report := rules.Validate(s.book.Active(ctx), ctx)
	return Validation{
		Level:      s.level,
		Report:     report,
		Assessment: rules.Assess(report, ctx.Complex, s.book.Budget(s.level)),
	}
}

// Solve replaces the selection with a solver result for the current level.
func (s *Session) Solve() solver.Outcome {
	return s.solver.Solve(s.selection, s.level, s.history)
}

// CompleteLevel banks a passable selection into history and moves to the next level.
func (s *Session) CompleteLevel() (models.HistoryRecord, error) {
	if s.Finished() {
		return models.HistoryRecord{}, appErrors.Clone(appErrors.ErrConflict, "all levels are already completed")
	}
	v := s.Validation()
	if !v.Assessment.Passable {
		msg := fmt.Sprintf("level %d is not passable", s.level)
		switch {
		case !v.Assessment.RulesPassed:
			msg = fmt.Sprintf("level %d: %d mandatory rule(s) violated", s.level, len(v.Report.BlockingViolations()))
		case !v.Assessment.WithinBudget:
			msg = fmt.Sprintf("level %d: willpower %d exceeds budget %d", s.level, v.Assessment.EffectiveWillpower, v.Assessment.Budget)
		}
		return models.HistoryRecord{}, appErrors.Clone(appErrors.ErrLevelNotPassable, msg)
	}

	record := models.HistoryRecord{
		Level:         s.level,
		CourseIDs:     s.selection.IDs(),
		ECTSEarned:    metadata.CalculateSimple(s.selection.Courses()).CurrentSemesterECTS,
		ScoreEarned:   v.Assessment.Score,
		WillpowerCost: v.Assessment.EffectiveWillpower,
	}
	s.history = append(s.history, record)
	s.level++
	s.selection.Clear()
	return record, nil
}

// Snapshot captures level, history and selection.
func (s *Session) Snapshot() models.Snapshot {
	return models.Snapshot{
		Level:     s.level,
		History:   s.History(),
		Selection: s.selection.IDs(),
		SavedAt:   s.now().UTC(),
	}
}

// Restore replaces level, history and selection wholesale. Nothing changes on error.
func (s *Session) Restore(snap models.Snapshot) error {
	if snap.Level < 1 || snap.Level > s.book.LevelCount()+1 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("level %d is out of range", snap.Level))
	}
	for _, rec := range snap.History {
		if _, err := s.catalog.Resolve(rec.CourseIDs); err != nil {
			return err
		}
	}
	courses, err := s.catalog.Resolve(snap.Selection)
	if err != nil {
		return err
	}

	s.level = snap.Level
	s.history = append(models.History(nil), snap.History...)
	s.selection = scheduling.NewSelection(courses...)
	return nil
}
