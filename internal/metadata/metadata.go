// Package metadata derives the aggregates rules and the solver reason about.
// Everything here is a pure function of the selection; nothing is cached.
package metadata

import (
	"fmt"
	"sort"

	"github.com/noah-isme/ects-quest/internal/models"
)

// Simple holds linear, order-independent aggregates over the selection.
type Simple struct {
	CurrentSemesterECTS int                       `json:"currentSemesterEcts"`
	ECTSByTag           map[models.Tag]int        `json:"ectsByTag"`
	ECTSByType          map[models.CourseType]int `json:"ectsByType"`
	ExamCount           int                       `json:"examCount"`
	UniqueCourseCount   int                       `json:"uniqueCourseCount"`
	MandatoryCourseIDs  []string                  `json:"mandatoryCourseIds"`
	SubjectIDs          []string                  `json:"subjectIds"`
}

// CalculateSimple folds the selection into Simple metadata.
func CalculateSimple(courses []models.Course) Simple {
	meta := Simple{
		ECTSByTag:          make(map[models.Tag]int),
		ECTSByType:         make(map[models.CourseType]int),
		MandatoryCourseIDs: []string{},
		SubjectIDs:         []string{},
	}
	seenCourses := make(map[string]struct{}, len(courses))
	seenSubjects := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		if _, dup := seenCourses[c.ID]; dup {
			continue
		}
		seenCourses[c.ID] = struct{}{}

		meta.CurrentSemesterECTS += c.ECTS
		meta.ECTSByType[c.Type] += c.ECTS
		for _, tag := range uniqueTags(c.Tags) {
			meta.ECTSByTag[tag] += c.ECTS
		}
		if c.HasExam {
			meta.ExamCount++
		}
		if c.Mandatory {
			meta.MandatoryCourseIDs = append(meta.MandatoryCourseIDs, c.ID)
		}
		if _, ok := seenSubjects[c.SubjectID]; !ok {
			seenSubjects[c.SubjectID] = struct{}{}
			meta.SubjectIDs = append(meta.SubjectIDs, c.SubjectID)
		}
	}
	meta.UniqueCourseCount = len(seenCourses)
	sort.Strings(meta.MandatoryCourseIDs)
	sort.Strings(meta.SubjectIDs)
	return meta
}

func uniqueTags(tags []models.Tag) []models.Tag {
	if len(tags) < 2 {
		return tags
	}
	seen := make(map[models.Tag]struct{}, len(tags))
	out := make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// CostItem is one itemised willpower charge.
type CostItem struct {
	Kind   CostKind       `json:"kind"`
	Day    models.Weekday `json:"day,omitempty"`
	Cost   int            `json:"cost"`
	Detail string         `json:"detail"`
}

// DaySummary describes the shape of one active day.
type DaySummary struct {
	Day         models.Weekday `json:"day"`
	Start       int            `json:"start"`
	End         int            `json:"end"`
	Hours       int            `json:"hours"`
	GapHours    int            `json:"gapHours"`
	LongestGap  int            `json:"longestGap"`
	LongestRun  int            `json:"longestRun"`
	CourseCount int            `json:"courseCount"`
}

// Complex holds schedule-shape aggregates that need per-day reconstruction.
type Complex struct {
	TotalContactHours int          `json:"totalContactHours"`
	TotalGapHours     int          `json:"totalGapHours"`
	MaxDailyGap       int          `json:"maxDailyGap"`
	LongestGap        int          `json:"longestGap"`
	MaxDailyHours     int          `json:"maxDailyHours"`
	AverageStartHour  float64      `json:"averageStartHour"`
	EarliestStart     int          `json:"earliestStart"`
	ActiveDays        int          `json:"activeDays"`
	FreeDays          int          `json:"freeDays"`
	Days              []DaySummary `json:"days"`
	WillpowerCost     int          `json:"willpowerCost"`
	Breakdown         []CostItem   `json:"breakdown"`
}

// FreeWeekdays lists days without any slot.
func (c Complex) FreeWeekdays() []models.Weekday {
	active := make(map[models.Weekday]bool, len(c.Days))
	for _, d := range c.Days {
		active[d.Day] = true
	}
	var free []models.Weekday
	for _, d := range models.Weekdays {
		if !active[d] {
			free = append(free, d)
		}
	}
	return free
}

// CalculateComplex derives schedule shape and willpower cost from the slot projection
// using the tariff of level.
func CalculateComplex(slots []models.ScheduleSlot, level int) Complex {
	meta := Complex{
		FreeDays:  len(models.Weekdays),
		Days:      []DaySummary{},
		Breakdown: []CostItem{},
	}
	if len(slots) == 0 {
		return meta
	}
	tariff := TariffFor(level)

	byDay := make(map[models.Weekday][]int, len(models.Weekdays))
	coursesByDay := make(map[models.Weekday]map[string]struct{}, len(models.Weekdays))
	for _, slot := range slots {
		byDay[slot.Day] = append(byDay[slot.Day], slot.Hour)
		if coursesByDay[slot.Day] == nil {
			coursesByDay[slot.Day] = make(map[string]struct{})
		}
		coursesByDay[slot.Day][slot.CourseID] = struct{}{}
	}
	meta.TotalContactHours = len(slots)

	charge := func(kind CostKind, day models.Weekday, detail string) {
		cost := tariff.Price(kind)
		meta.Breakdown = append(meta.Breakdown, CostItem{Kind: kind, Day: day, Cost: cost, Detail: detail})
		meta.WillpowerCost += cost
	}

	prevEnd := -1
	startSum := 0
	meta.EarliestStart = models.ClosingHour
	for _, day := range models.Weekdays {
		raw := byDay[day]
		if len(raw) == 0 {
			continue
		}
		hours := dedupeSorted(raw)
		summary := DaySummary{
			Day:         day,
			Start:       hours[0],
			End:         hours[len(hours)-1] + 1,
			Hours:       len(raw),
			CourseCount: len(coursesByDay[day]),
		}

		if len(hours) <= CommuterMaxHours {
			charge(CostCommuterTax, day, fmt.Sprintf("only %dh on campus", len(hours)))
		}
		if summary.Start == models.OpeningHour {
			charge(CostEarlyRiser, day, fmt.Sprintf("first class at %d:00", summary.Start))
		}
		if summary.End > NightShiftAfter {
			charge(CostNightShift, day, fmt.Sprintf("last class ends at %d:00", summary.End))
		}
		if day == models.Friday && summary.End > FridayDragAfter {
			charge(CostFridayDrag, day, fmt.Sprintf("friday ends at %d:00", summary.End))
		}
		if prevEnd >= ClopenPrevEndAtLeast && summary.Start <= ClopenStartAtMost {
			charge(CostClopen, day, fmt.Sprintf("previous day ended at %d:00, back at %d:00", prevEnd, summary.Start))
		}

		run := 1
		flushRun := func(endHour int) {
			if run > summary.LongestRun {
				summary.LongestRun = run
			}
			if run >= StarvationRunHours {
				charge(CostStarvation, day, fmt.Sprintf("%dh without a break until %d:00", run, endHour))
			}
		}
		for i := 1; i < len(hours); i++ {
			gap := hours[i] - hours[i-1] - 1
			if gap == 0 {
				run++
				continue
			}
			flushRun(hours[i-1] + 1)
			run = 1
			summary.GapHours += gap
			if gap > summary.LongestGap {
				summary.LongestGap = gap
			}
			if gap >= HugeGapHours {
				charge(CostHugeGap, day, fmt.Sprintf("%dh gap from %d:00", gap, hours[i-1]+1))
			}
		}
		flushRun(summary.End)

		meta.TotalGapHours += summary.GapHours
		if summary.GapHours > meta.MaxDailyGap {
			meta.MaxDailyGap = summary.GapHours
		}
		if summary.LongestGap > meta.LongestGap {
			meta.LongestGap = summary.LongestGap
		}
		if summary.Hours > meta.MaxDailyHours {
			meta.MaxDailyHours = summary.Hours
		}
		if summary.Start < meta.EarliestStart {
			meta.EarliestStart = summary.Start
		}
		startSum += summary.Start
		prevEnd = summary.End
		meta.Days = append(meta.Days, summary)
	}
	meta.ActiveDays = len(meta.Days)
	meta.FreeDays = len(models.Weekdays) - meta.ActiveDays
	if meta.ActiveDays > 0 {
		meta.AverageStartHour = float64(startSum) / float64(meta.ActiveDays)
	}

	for _, subject := range examSubjects(slots) {
		charge(CostExamStress, 0, fmt.Sprintf("exam in %s", subject))
	}
	return meta
}

func dedupeSorted(hours []int) []int {
	cp := make([]int, len(hours))
	copy(cp, hours)
	sort.Ints(cp)
	out := make([]int, 0, len(cp))
	for _, h := range cp {
		if len(out) > 0 && out[len(out)-1] == h {
			continue
		}
		out = append(out, h)
	}
	return out
}

func examSubjects(slots []models.ScheduleSlot) []string {
	seen := make(map[string]struct{})
	var subjects []string
	for _, slot := range slots {
		if slot.Course == nil || !slot.Course.HasExam {
			continue
		}
		if _, ok := seen[slot.Course.SubjectID]; ok {
			continue
		}
		seen[slot.Course.SubjectID] = struct{}{}
		subjects = append(subjects, slot.Course.SubjectID)
	}
	sort.Strings(subjects)
	return subjects
}
