package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/scheduling"
)

func mkCourse(id, subject string, day models.Weekday, start, duration, ects int, exam bool, tags ...models.Tag) models.Course {
	return models.Course{
		ID:        id,
		SubjectID: subject,
		Name:      "Course " + id,
		ECTS:      ects,
		Type:      models.CourseTypeLecture,
		Tags:      tags,
		HasExam:   exam,
		Block:     models.TimeBlock{Day: day, StartHour: start, Duration: duration},
	}
}

func kinds(items []CostItem) []CostKind {
	out := make([]CostKind, 0, len(items))
	for _, it := range items {
		out = append(out, it.Kind)
	}
	return out
}

func complexOf(level int, courses ...models.Course) Complex {
	return CalculateComplex(scheduling.ProjectSlots(courses), level)
}

func TestEmptySelection(t *testing.T) {
	simple := CalculateSimple(nil)
	assert.Zero(t, simple.CurrentSemesterECTS)
	assert.Zero(t, simple.ExamCount)
	assert.Zero(t, simple.UniqueCourseCount)
	assert.Empty(t, simple.ECTSByTag)
	assert.Empty(t, simple.ECTSByType)
	assert.Empty(t, simple.MandatoryCourseIDs)

	cx := CalculateComplex(nil, 1)
	assert.Equal(t, 5, cx.FreeDays)
	assert.Zero(t, cx.WillpowerCost)
	assert.Zero(t, cx.TotalContactHours)
	assert.Zero(t, cx.TotalGapHours)
	assert.Empty(t, cx.Breakdown)
	assert.Len(t, cx.FreeWeekdays(), 5)
}

func TestSimpleIsOrderIndependent(t *testing.T) {
	a := mkCourse("a", "s1", models.Monday, 8, 2, 4, true, models.TagCore, models.TagCS)
	b := mkCourse("b", "s1", models.Tuesday, 10, 2, 2, false, models.TagCS)
	c := mkCourse("c", "s2", models.Friday, 12, 3, 5, true, models.TagMath)
	c.Mandatory = true
	b.Mandatory = true
	b.Type = models.CourseTypeLaboratory

	first := CalculateSimple([]models.Course{a, b, c})
	second := CalculateSimple([]models.Course{c, a, b})
	third := CalculateSimple([]models.Course{b, c, a})

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Equal(t, 11, first.CurrentSemesterECTS)
	assert.Equal(t, 6, first.ECTSByTag[models.TagCS])
	assert.Equal(t, 4, first.ECTSByTag[models.TagCore])
	assert.Equal(t, 9, first.ECTSByType[models.CourseTypeLecture])
	assert.Equal(t, 2, first.ECTSByType[models.CourseTypeLaboratory])
	assert.Equal(t, 2, first.ExamCount)
	assert.Equal(t, 3, first.UniqueCourseCount)
	assert.Equal(t, []string{"b", "c"}, first.MandatoryCourseIDs)
	assert.Equal(t, []string{"s1", "s2"}, first.SubjectIDs)
}

func TestSingleEarlyExamCourse(t *testing.T) {
	cx := complexOf(1, mkCourse("a", "s1", models.Tuesday, 8, 2, 4, true))

	tariff := TariffFor(1)
	assert.Equal(t, tariff.EarlyRiser+tariff.CommuterTax+tariff.ExamStress, cx.WillpowerCost)
	assert.ElementsMatch(t, []CostKind{CostEarlyRiser, CostCommuterTax, CostExamStress}, kinds(cx.Breakdown))
	assert.Equal(t, 2, cx.TotalContactHours)
	assert.Equal(t, 4, cx.FreeDays)
	assert.Equal(t, 8.0, cx.AverageStartHour)
}

func TestSixConsecutiveHoursIsStarvation(t *testing.T) {
	cx := complexOf(1,
		mkCourse("a", "s1", models.Wednesday, 9, 3, 3, false),
		mkCourse("b", "s2", models.Wednesday, 12, 3, 3, false),
	)

	var starvation []CostItem
	for _, item := range cx.Breakdown {
		if item.Kind == CostStarvation {
			starvation = append(starvation, item)
		}
	}
	require.Len(t, starvation, 1)
	assert.Equal(t, models.Wednesday, starvation[0].Day)
	assert.Zero(t, cx.TotalGapHours)
	assert.Equal(t, 6, cx.Days[0].LongestRun)
}

func TestFiveHoursIsNotStarvation(t *testing.T) {
	cx := complexOf(1, mkCourse("a", "s1", models.Wednesday, 9, 5, 3, false))
	assert.NotContains(t, kinds(cx.Breakdown), CostStarvation)
}

func TestGapsAndHugeGap(t *testing.T) {
	cx := complexOf(1,
		mkCourse("a", "s1", models.Tuesday, 9, 1, 2, false),
		mkCourse("b", "s2", models.Tuesday, 13, 1, 2, false),
		mkCourse("c", "s3", models.Tuesday, 15, 1, 2, false),
	)

	assert.Equal(t, 4, cx.TotalGapHours)
	assert.Equal(t, 4, cx.MaxDailyGap)
	assert.Equal(t, 3, cx.LongestGap)
	count := 0
	for _, k := range kinds(cx.Breakdown) {
		if k == CostHugeGap {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestClopenNightShiftAndFridayDrag(t *testing.T) {
	cx := complexOf(1,
		mkCourse("thu", "s1", models.Thursday, 16, 3, 3, false),
		mkCourse("fri", "s2", models.Friday, 9, 1, 2, false),
		mkCourse("fri2", "s3", models.Friday, 15, 2, 2, false),
	)

	got := kinds(cx.Breakdown)
	assert.Contains(t, got, CostNightShift)
	assert.Contains(t, got, CostClopen)
	assert.Contains(t, got, CostFridayDrag)
	assert.Contains(t, got, CostHugeGap)
}

func TestClopenSkipsInactiveDaysButTracksPreviousActive(t *testing.T) {
	cx := complexOf(1,
		mkCourse("mon", "s1", models.Monday, 17, 2, 3, false),
		mkCourse("wed", "s2", models.Wednesday, 10, 3, 3, false),
	)
	assert.Contains(t, kinds(cx.Breakdown), CostClopen)
}

func TestExamChargedOncePerSubject(t *testing.T) {
	cx := complexOf(1,
		mkCourse("lec", "s1", models.Monday, 10, 2, 4, true),
		mkCourse("cls", "s1", models.Tuesday, 10, 2, 2, true),
		mkCourse("other", "s2", models.Wednesday, 10, 2, 2, true),
	)
	count := 0
	for _, k := range kinds(cx.Breakdown) {
		if k == CostExamStress {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestOverlapCountsContactHoursTwice(t *testing.T) {
	cx := complexOf(1,
		mkCourse("a", "s1", models.Monday, 10, 2, 2, false),
		mkCourse("b", "s2", models.Monday, 11, 2, 2, false),
	)
	assert.Equal(t, 4, cx.TotalContactHours)
	assert.Equal(t, 10, cx.Days[0].Start)
	assert.Equal(t, 13, cx.Days[0].End)
	assert.Equal(t, 2, cx.Days[0].CourseCount)
}

func TestLaterLevelsDiscountTariff(t *testing.T) {
	early := complexOf(1, mkCourse("a", "s1", models.Monday, 8, 2, 2, false))
	late := complexOf(5, mkCourse("a", "s1", models.Monday, 8, 2, 2, false))
	assert.Equal(t, early.WillpowerCost-1, late.WillpowerCost)
	assert.Equal(t, BaseTariff.EarlyRiser-1, TariffFor(6).EarlyRiser)
	assert.Equal(t, BaseTariff.NightShift-1, TariffFor(5).NightShift)
	assert.Equal(t, BaseTariff, TariffFor(4))
}

func TestCalculationIsDeterministic(t *testing.T) {
	courses := []models.Course{
		mkCourse("a", "s1", models.Monday, 8, 3, 2, true),
		mkCourse("b", "s2", models.Thursday, 14, 5, 2, true),
	}
	assert.Equal(t, complexOf(2, courses...), complexOf(2, courses[1], courses[0]))
}
