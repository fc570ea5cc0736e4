package rules

import (
	"sort"

	"github.com/noah-isme/ects-quest/internal/metadata"
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/scheduling"
)

// CourseIndex resolves catalog ids.
type CourseIndex interface {
	Course(id string) (models.Course, bool)
	Subject(id string) (models.Subject, bool)
}

// Context is the immutable snapshot a validation pass runs against.
type Context struct {
	Level         int
	History       models.History
	Selection     []models.Course
	Slots         []models.ScheduleSlot
	Simple        metadata.Simple
	Complex       metadata.Complex
	BankedECTS    int
	TakenSubjects map[string]struct{}
	index         CourseIndex
}

// NewContext derives slots and metadata from selection and resolves history
// through index.
func NewContext(level int, history models.History, selection []models.Course, index CourseIndex) Context {
	courses := make([]models.Course, len(selection))
	copy(courses, selection)
	slots := scheduling.ProjectSlots(courses)

	taken := make(map[string]struct{})
	if index != nil {
		for _, id := range history.CourseIDs() {
			if course, ok := index.Course(id); ok {
				taken[course.SubjectID] = struct{}{}
			}
		}
	}

	return Context{
		Level:         level,
		History:       history,
		Selection:     courses,
		Slots:         slots,
		Simple:        metadata.CalculateSimple(courses),
		Complex:       metadata.CalculateComplex(slots, level),
		BankedECTS:    history.TotalECTS(),
		TakenSubjects: taken,
		index:         index,
	}
}

// Taken reports whether subject was passed in an earlier level.
func (c Context) Taken(subject string) bool {
	_, ok := c.TakenSubjects[subject]
	return ok
}

// TakenSubjectIDs lists passed subjects in sorted order.
func (c Context) TakenSubjectIDs() []string {
	ids := make([]string, 0, len(c.TakenSubjects))
	for id := range c.TakenSubjects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Subject resolves a subject definition.
func (c Context) Subject(id string) (models.Subject, bool) {
	if c.index == nil {
		return models.Subject{}, false
	}
	return c.index.Subject(id)
}

func (c Context) selectedSubjects() map[string]struct{} {
	out := make(map[string]struct{}, len(c.Selection))
	for _, course := range c.Selection {
		out[course.SubjectID] = struct{}{}
	}
	return out
}

func (c Context) hasTag(tag models.Tag) bool {
	for _, course := range c.Selection {
		if course.HasTag(tag) {
			return true
		}
	}
	return false
}
