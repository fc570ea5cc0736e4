package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ects-quest/internal/catalog"
	"github.com/noah-isme/ects-quest/internal/metadata"
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/scheduling"
	"github.com/noah-isme/ects-quest/pkg/random"
)

type offering struct {
	subject string
	typ     models.CourseType
	day     models.Weekday
	start   int
	ects    int
	tags    []models.Tag
}

func smallCatalog(t *testing.T, offerings ...offering) *catalog.Catalog {
	t.Helper()
	var subjects []models.Subject
	seen := map[string]int{}
	var courses []models.Course
	for i, o := range offerings {
		idx, ok := seen[o.subject]
		if !ok {
			idx = len(subjects)
			seen[o.subject] = idx
			subjects = append(subjects, models.Subject{ID: o.subject, Name: o.subject})
		}
		has := false
		for _, c := range subjects[idx].Components {
			if c == o.typ {
				has = true
			}
		}
		if !has {
			subjects[idx].Components = append(subjects[idx].Components, o.typ)
		}
		courses = append(courses, models.Course{
			ID:        o.subject + "-" + string(rune('a'+i)),
			SubjectID: o.subject,
			Name:      "Course of " + o.subject,
			ECTS:      o.ects,
			Type:      o.typ,
			Tags:      o.tags,
			Block:     models.TimeBlock{Day: o.day, StartHour: o.start, Duration: 2},
		})
	}
	c, err := catalog.New(subjects, courses)
	require.NoError(t, err)
	return c
}

func book(budget int, levelRules ...rules.Rule) *rules.Catalog {
	return rules.MustCatalog([]rules.Level{{Number: 1, Title: "test", Budget: budget, Rules: levelRules}}, rules.GlobalRules()...)
}

func TestLevelOneIsSolvable(t *testing.T) {
	s := New(catalog.Default(), rules.Default(), random.NewSeeded(7), Config{}, nil)
	sel := scheduling.NewSelection()

	out := s.Solve(sel, 1, nil)

	require.True(t, out.Solved)
	assert.LessOrEqual(t, out.Attempts, DefaultMaxAttempts)
	assert.True(t, out.Assessment.Passable)
	assert.True(t, out.Report.RequiredSatisfied())

	simple := metadata.CalculateSimple(sel.Courses())
	assert.GreaterOrEqual(t, simple.CurrentSemesterECTS, 20)
	assert.Zero(t, simple.ECTSByTag[models.TagAdvanced])
	assert.Empty(t, scheduling.FindAllCollisions(sel.Courses()))
	assert.Contains(t, simple.SubjectIDs, "PROG1")
	assert.Contains(t, simple.SubjectIDs, "CALC1")
}

func TestSolveIsDeterministicForSeed(t *testing.T) {
	run := func() ([]string, int) {
		s := New(catalog.Default(), rules.Default(), random.NewSeeded(42), Config{}, nil)
		sel := scheduling.NewSelection()
		out := s.Solve(sel, 1, nil)
		require.True(t, out.Solved)
		return sel.IDs(), out.Attempts
	}
	firstIDs, firstAttempts := run()
	secondIDs, secondAttempts := run()

	assert.Equal(t, firstIDs, secondIDs)
	assert.Equal(t, firstAttempts, secondAttempts)
}

func TestExhaustionClearsSelection(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "A", typ: models.CourseTypeLecture, day: models.Monday, start: 10, ects: 4},
		offering{subject: "B", typ: models.CourseTypeLecture, day: models.Tuesday, start: 10, ects: 4},
	)
	s := New(cat, book(100, rules.MinECTS("min", 100)), random.NewSeeded(1), Config{MaxAttempts: 25}, nil)
	sel := scheduling.NewSelection()
	first, _ := cat.Course("A-a")
	require.NoError(t, sel.Add(first))

	out := s.Solve(sel, 1, nil)

	assert.False(t, out.Solved)
	assert.Equal(t, 25, out.Attempts)
	assert.Zero(t, sel.Len())
}

func TestBudgetGateBlocksSolve(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "A", typ: models.CourseTypeLecture, day: models.Monday, start: 8, ects: 4},
	)
	s := New(cat, book(0, rules.MinECTS("min", 4)), random.NewSeeded(1), Config{MaxAttempts: 10}, nil)
	sel := scheduling.NewSelection()

	out := s.Solve(sel, 1, nil)

	assert.False(t, out.Solved)
	assert.True(t, out.Assessment.RulesPassed)
	assert.False(t, out.Assessment.WithinBudget)
}

func TestSynergyPartnerIsAddedWithTrigger(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "CORE", typ: models.CourseTypeLecture, day: models.Monday, start: 10, ects: 4, tags: []models.Tag{models.TagCS}},
		offering{subject: "TOOL", typ: models.CourseTypeLaboratory, day: models.Tuesday, start: 10, ects: 2, tags: []models.Tag{models.TagTools}},
		offering{subject: "OTHER", typ: models.CourseTypeSeminar, day: models.Wednesday, start: 10, ects: 2},
	)
	s := New(cat, book(100,
		rules.RequiredSubjects("core", "CORE"),
		rules.TagSynergy("syn", models.TagCS, models.TagTools),
		rules.MinECTS("min", 4),
	), random.NewSeeded(3), Config{MaxAttempts: 50}, nil)
	sel := scheduling.NewSelection()

	out := s.Solve(sel, 1, nil)

	require.True(t, out.Solved)
	assert.True(t, sel.Has("CORE-a"))
	assert.True(t, sel.Has("TOOL-b"))
}

func TestSynergyWithoutPlaceablePartnerFails(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "CORE", typ: models.CourseTypeLecture, day: models.Monday, start: 10, ects: 4, tags: []models.Tag{models.TagCS}},
		offering{subject: "TOOL", typ: models.CourseTypeLaboratory, day: models.Monday, start: 11, ects: 2, tags: []models.Tag{models.TagTools}},
	)
	s := New(cat, book(100,
		rules.RequiredSubjects("core", "CORE"),
		rules.TagSynergy("syn", models.TagCS, models.TagTools),
	), random.NewSeeded(3), Config{MaxAttempts: 20}, nil)
	sel := scheduling.NewSelection()

	assert.False(t, s.Solve(sel, 1, nil).Solved)
	assert.Zero(t, sel.Len())
}

func TestExclusionIsHonoured(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "AI", typ: models.CourseTypeLecture, day: models.Monday, start: 10, ects: 4, tags: []models.Tag{models.TagAI}},
		offering{subject: "HUM", typ: models.CourseTypeSeminar, day: models.Tuesday, start: 10, ects: 4, tags: []models.Tag{models.TagHumanities}},
		offering{subject: "PLAIN", typ: models.CourseTypeClasses, day: models.Wednesday, start: 10, ects: 4},
	)
	levelRules := []rules.Rule{
		rules.RequiredTag("ai", models.TagAI),
		rules.TagExclusion("excl", models.TagAI, models.TagHumanities),
		rules.MinECTS("min", 8),
	}
	for seed := int64(1); seed <= 10; seed++ {
		s := New(cat, book(100, levelRules...), random.NewSeeded(seed), Config{MaxAttempts: 50}, nil)
		sel := scheduling.NewSelection()

		require.True(t, s.Solve(sel, 1, nil).Solved, seed)
		assert.ElementsMatch(t, []string{"AI-a", "PLAIN-c"}, sel.IDs(), seed)
	}
}

func TestComponentsAreBundled(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "A", typ: models.CourseTypeLecture, day: models.Monday, start: 10, ects: 4},
		offering{subject: "A", typ: models.CourseTypeLaboratory, day: models.Monday, start: 11, ects: 2},
		offering{subject: "A", typ: models.CourseTypeLaboratory, day: models.Tuesday, start: 10, ects: 2},
	)
	s := New(cat, book(100, rules.MinECTS("min", 6)), random.NewSeeded(9), Config{MaxAttempts: 50}, nil)
	sel := scheduling.NewSelection()

	require.True(t, s.Solve(sel, 1, nil).Solved)
	assert.ElementsMatch(t, []string{"A-a", "A-c"}, sel.IDs())
}

func TestNumericGoalIsWaivedLate(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "A", typ: models.CourseTypeLecture, day: models.Tuesday, start: 10, ects: 4},
		offering{subject: "B", typ: models.CourseTypeLecture, day: models.Wednesday, start: 10, ects: 4},
	)
	s := New(cat, book(100, rules.MinECTS("min", 4), rules.ECTSPrime("prime").AsGoal()),
		random.NewSeeded(5), Config{MaxAttempts: 10, GoalWaiverRatio: 0.9}, nil)
	sel := scheduling.NewSelection()

	out := s.Solve(sel, 1, nil)

	require.True(t, out.Solved)
	assert.True(t, out.GoalsWaived)
	assert.Equal(t, 10, out.Attempts)
}

func TestLateWaiverKeepsGoalFilters(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "A", typ: models.CourseTypeLecture, day: models.Tuesday, start: 10, ects: 4},
		offering{subject: "B", typ: models.CourseTypeLecture, day: models.Wednesday, start: 10, ects: 4},
		offering{subject: "C", typ: models.CourseTypeLecture, day: models.Friday, start: 10, ects: 4},
	)
	s := New(cat, book(100,
		rules.MinECTS("min", 4),
		rules.ECTSPrime("prime").AsGoal(),
		rules.FreeDays("free-friday", models.Friday).AsGoal(),
	), random.NewSeeded(5), Config{MaxAttempts: 10, GoalWaiverRatio: 0.9}, nil)
	sel := scheduling.NewSelection()

	out := s.Solve(sel, 1, nil)

	require.True(t, out.Solved)
	assert.True(t, out.GoalsWaived)
	for _, c := range sel.Courses() {
		assert.NotEqual(t, models.Friday, c.Block.Day, c.ID)
	}
}

func TestMinFreeDaysHint(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "A", typ: models.CourseTypeLecture, day: models.Monday, start: 10, ects: 4},
		offering{subject: "B", typ: models.CourseTypeLecture, day: models.Tuesday, start: 10, ects: 4},
		offering{subject: "C", typ: models.CourseTypeLecture, day: models.Wednesday, start: 10, ects: 4},
	)
	s := New(cat, book(100, rules.MinECTS("min", 8), rules.MinFreeDays("free", 3)),
		random.NewSeeded(11), Config{MaxAttempts: 200}, nil)
	sel := scheduling.NewSelection()

	require.True(t, s.Solve(sel, 1, nil).Solved)
	cx := metadata.CalculateComplex(sel.Slots(), 1)
	assert.GreaterOrEqual(t, cx.FreeDays, 3)
	assert.Equal(t, 2, sel.Len())
}

func TestHistoryPrunesPool(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "A", typ: models.CourseTypeLecture, day: models.Monday, start: 10, ects: 4},
		offering{subject: "B", typ: models.CourseTypeLecture, day: models.Tuesday, start: 10, ects: 4},
	)
	book := rules.MustCatalog([]rules.Level{
		{Number: 1, Budget: 100, Title: "one"},
		{Number: 2, Budget: 100, Title: "two", Rules: []rules.Rule{rules.MinECTS("min", 4)}},
	}, rules.GlobalRules()...)
	s := New(cat, book, random.NewSeeded(2), Config{MaxAttempts: 20}, nil)
	sel := scheduling.NewSelection()
	history := models.History{{Level: 1, CourseIDs: []string{"A-a"}, ECTSEarned: 4}}

	require.True(t, s.Solve(sel, 2, history).Solved)
	assert.Equal(t, []string{"B-b"}, sel.IDs())
}
