package scheduling

import (
	"fmt"
	"sort"

	"github.com/noah-isme/ects-quest/internal/models"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
)

// AddStatus classifies the result of TryAdd.
type AddStatus int

const (
	AddOK AddStatus = iota
	AddDuplicate
	AddCollision
)

// AddOutcome reports whether a course was added and, if not, why.
type AddOutcome struct {
	Status      AddStatus
	Conflicting []models.Course
}

// OK reports a successful add.
func (o AddOutcome) OK() bool {
	return o.Status == AddOK
}

// Selection is the mutable set of chosen courses, unique by course id.
// Overlapping entries are representable (see Insert); TryAdd and Add refuse them.
type Selection struct {
	courses []models.Course
	index   map[string]int
}

// NewSelection returns an empty selection.
func NewSelection(courses ...models.Course) *Selection {
	s := &Selection{index: make(map[string]int)}
	for _, c := range courses {
		s.Insert(c)
	}
	return s
}

// Len returns the number of selected courses.
func (s *Selection) Len() int {
	return len(s.courses)
}

// Has reports whether the course id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Courses returns a copy of the selection in insertion order.
func (s *Selection) Courses() []models.Course {
	out := make([]models.Course, len(s.courses))
	copy(out, s.courses)
	return out
}

// IDs returns the selected course ids in insertion order.
func (s *Selection) IDs() []string {
	ids := make([]string, 0, len(s.courses))
	for _, c := range s.courses {
		ids = append(ids, c.ID)
	}
	return ids
}

// CanAdd checks the candidate against the current selection.
func (s *Selection) CanAdd(candidate models.Course) AddCheck {
	return CanAdd(candidate, s.courses)
}

// TryAdd adds the course unless it is already present or overlaps a selected course.
// The selection is left untouched on failure.
func (s *Selection) TryAdd(candidate models.Course) AddOutcome {
	if s.Has(candidate.ID) {
		return AddOutcome{Status: AddDuplicate}
	}
	check := s.CanAdd(candidate)
	if !check.Allowed {
		return AddOutcome{Status: AddCollision, Conflicting: check.Conflicting}
	}
	s.append(candidate)
	return AddOutcome{Status: AddOK}
}

// Add is TryAdd reporting failures as descriptive errors.
func (s *Selection) Add(candidate models.Course) error {
	outcome := s.TryAdd(candidate)
	switch outcome.Status {
	case AddDuplicate:
		return appErrors.Clone(appErrors.ErrDuplicateCourse, fmt.Sprintf("course %s (%s) is already selected", candidate.Name, candidate.ID))
	case AddCollision:
		collision := &CollisionError{Candidate: candidate, Conflicting: outcome.Conflicting}
		return appErrors.Wrap(collision, appErrors.ErrCourseCollision.Code, appErrors.ErrCourseCollision.Status, collision.Error())
	}
	return nil
}

// Insert adds the course ignoring collisions; duplicates are rejected.
func (s *Selection) Insert(c models.Course) bool {
	if s.Has(c.ID) {
		return false
	}
	s.append(c)
	return true
}

// Remove drops the course id, reporting whether it was present.
func (s *Selection) Remove(id string) bool {
	pos, ok := s.index[id]
	if !ok {
		return false
	}
	s.courses = append(s.courses[:pos], s.courses[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.courses); i++ {
		s.index[s.courses[i].ID] = i
	}
	return true
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.courses = s.courses[:0]
	s.index = make(map[string]int)
}

func (s *Selection) append(c models.Course) {
	s.index[c.ID] = len(s.courses)
	s.courses = append(s.courses, c)
}

// Slots projects the selection onto the hourly grid.
func (s *Selection) Slots() []models.ScheduleSlot {
	return ProjectSlots(s.courses)
}

// ProjectSlots emits one slot per (day, hour) a course occupies, ordered by day, hour, course id.
func ProjectSlots(courses []models.Course) []models.ScheduleSlot {
	slots := make([]models.ScheduleSlot, 0, len(courses)*2)
	for i := range courses {
		course := courses[i]
		for h := course.Block.StartHour; h < course.Block.EndHour(); h++ {
			slots = append(slots, models.ScheduleSlot{
				Day:      course.Block.Day,
				Hour:     h,
				CourseID: course.ID,
				Course:   &course,
			})
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		if slots[i].Hour != slots[j].Hour {
			return slots[i].Hour < slots[j].Hour
		}
		return slots[i].CourseID < slots[j].CourseID
	})
	return slots
}
