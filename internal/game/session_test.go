package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ects-quest/internal/catalog"
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/scheduling"
	"github.com/noah-isme/ects-quest/internal/solver"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
	"github.com/noah-isme/ects-quest/pkg/random"
)

func defaultSession(seed int64) *Session {
	cat := catalog.Default()
	book := rules.Default()
	return NewSession(cat, book, solver.New(cat, book, random.NewSeeded(seed), solver.Config{}, nil))
}

func mondayCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	block := func(start int) models.TimeBlock {
		return models.TimeBlock{Day: models.Monday, StartHour: start, Duration: 2}
	}
	cat, err := catalog.New(
		[]models.Subject{
			{ID: "A", Name: "A", Components: []models.CourseType{models.CourseTypeLecture}},
			{ID: "B", Name: "B", Components: []models.CourseType{models.CourseTypeLecture}},
			{ID: "C", Name: "C", Components: []models.CourseType{models.CourseTypeLecture}},
		},
		[]models.Course{
			{ID: "a", SubjectID: "A", Name: "Alpha", ECTS: 3, Type: models.CourseTypeLecture, Block: block(9)},
			{ID: "b", SubjectID: "B", Name: "Beta", ECTS: 3, Type: models.CourseTypeLecture, Block: block(10)},
			{ID: "c", SubjectID: "C", Name: "Gamma", ECTS: 3, Type: models.CourseTypeLecture, Block: block(11)},
		},
	)
	require.NoError(t, err)
	return cat
}

func TestAddCourseCollisionNamesBoth(t *testing.T) {
	cat := mondayCatalog(t)
	book := rules.MustCatalog([]rules.Level{{Number: 1, Budget: 50}})
	s := NewSession(cat, book, solver.New(cat, book, random.NewSeeded(1), solver.Config{}, nil))

	require.NoError(t, s.AddCourse("a"))
	err := s.AddCourse("b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCourseCollision))
	var collision *scheduling.CollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, "b", collision.Candidate.ID)
	assert.Equal(t, []string{"a"}, collision.ConflictingIDs())
	assert.Contains(t, err.Error(), "Alpha")
	assert.Contains(t, err.Error(), "Beta")
	assert.Len(t, s.Selection(), 1)

	require.NoError(t, s.AddCourse("c"))
	assert.Len(t, s.Selection(), 2)
}

func TestAddCourseDuplicateAndUnknown(t *testing.T) {
	s := defaultSession(1)
	require.NoError(t, s.AddCourse("PROG1-LEC"))

	err := s.AddCourse("PROG1-LEC")
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateCourse))
	assert.Len(t, s.Selection(), 1)

	assert.True(t, errors.Is(s.AddCourse("NOPE"), appErrors.ErrNotFound))
	assert.True(t, errors.Is(s.RemoveCourse("CALC1-LEC"), appErrors.ErrNotFound))

	check, err := s.CanAdd("CALC1-LEC")
	require.NoError(t, err)
	assert.True(t, check.Allowed)
}

func TestSlotsMirrorSelection(t *testing.T) {
	s := defaultSession(1)
	require.NoError(t, s.AddCourse("PROG1-LEC"))
	require.NoError(t, s.AddCourse("CALC1-LEC"))
	assert.Len(t, s.Slots(), 4)

	require.NoError(t, s.RemoveCourse("PROG1-LEC"))
	assert.Len(t, s.Slots(), 2)
	assert.Equal(t, 4, s.SimpleMetadata().CurrentSemesterECTS)
	assert.Equal(t, 2, s.ComplexMetadata().TotalContactHours)

	s.ClearAll()
	assert.Empty(t, s.Slots())
	assert.Equal(t, 5, s.ComplexMetadata().FreeDays)
}

func TestValidationCoversActiveRules(t *testing.T) {
	s := defaultSession(1)
	lvl, ok := rules.Default().Level(1)
	require.True(t, ok)

	v := s.Validation()

	assert.Equal(t, 1, v.Level)
	assert.Len(t, append(v.Report.Satisfied, v.Report.Violated...), len(lvl.Rules)+len(rules.GlobalRules()))
	assert.False(t, v.Assessment.Passable)
}

func TestCompleteLevelRequiresPassable(t *testing.T) {
	s := defaultSession(3)

	_, err := s.CompleteLevel()
	assert.True(t, errors.Is(err, appErrors.ErrLevelNotPassable))
	assert.Equal(t, 1, s.Level())

	out := s.Solve()
	require.True(t, out.Solved)
	selected := s.Selection()

	record, err := s.CompleteLevel()
	require.NoError(t, err)
	assert.Equal(t, 1, record.Level)
	assert.Len(t, record.CourseIDs, len(selected))
	assert.GreaterOrEqual(t, record.ECTSEarned, 20)
	assert.Equal(t, 2, s.Level())
	assert.Empty(t, s.Selection())
	require.Len(t, s.History(), 1)
	assert.Equal(t, record.ECTSEarned, s.History().TotalECTS())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := defaultSession(5)
	require.True(t, s.Solve().Solved)
	_, err := s.CompleteLevel()
	require.NoError(t, err)
	require.NoError(t, s.AddCourse("DISCRETE-LEC"))

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Level)
	assert.Equal(t, []string{"DISCRETE-LEC"}, snap.Selection)

	restored := defaultSession(6)
	require.NoError(t, restored.Restore(snap))
	assert.Equal(t, s.Level(), restored.Level())
	assert.Equal(t, s.History(), restored.History())
	assert.Equal(t, s.Selection(), restored.Selection())
	assert.Equal(t, s.Validation(), restored.Validation())
}

func TestRestoreRejectsUnknownCourses(t *testing.T) {
	s := defaultSession(1)
	require.NoError(t, s.AddCourse("PROG1-LEC"))

	err := s.Restore(models.Snapshot{Level: 2, Selection: []string{"GHOST"}})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 1, s.Level())
	assert.Len(t, s.Selection(), 1)

	err = s.Restore(models.Snapshot{Level: 0})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
