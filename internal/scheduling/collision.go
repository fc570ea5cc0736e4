// Package scheduling holds the weekly grid primitives: collision detection,
// the player's course selection and its hourly slot projection.
package scheduling

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/ects-quest/internal/models"
)

// Collide reports whether two blocks share a day and their half-open hour ranges
// intersect. Touching blocks (a ends when b starts) do not collide.
func Collide(a, b models.TimeBlock) bool {
	if a.Day != b.Day {
		return false
	}
	return a.StartHour < b.EndHour() && b.StartHour < a.EndHour()
}

// FindAllCollisions returns the ids of every course overlapping at least one other.
func FindAllCollisions(courses []models.Course) map[string]struct{} {
	result := make(map[string]struct{})
	for i := 0; i < len(courses); i++ {
		for j := i + 1; j < len(courses); j++ {
			if Collide(courses[i].Block, courses[j].Block) {
				result[courses[i].ID] = struct{}{}
				result[courses[j].ID] = struct{}{}
			}
		}
	}
	return result
}

// AddCheck is the outcome of CanAdd.
type AddCheck struct {
	Allowed     bool
	Conflicting []models.Course
}

// CanAdd checks candidate against every course of selection.
func CanAdd(candidate models.Course, selection []models.Course) AddCheck {
	var conflicts []models.Course
	for _, existing := range selection {
		if Collide(candidate.Block, existing.Block) {
			conflicts = append(conflicts, existing)
		}
	}
	return AddCheck{Allowed: len(conflicts) == 0, Conflicting: conflicts}
}

// CollisionError names the course that could not be placed and everything it overlaps.
type CollisionError struct {
	Candidate   models.Course
	Conflicting []models.Course
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	names := make([]string, 0, len(e.Conflicting))
	for _, c := range e.Conflicting {
		names = append(names, fmt.Sprintf("%s (%s, %s)", c.Name, c.ID, c.Block))
	}
	sort.Strings(names)
	return fmt.Sprintf("%s (%s, %s) collides with %s", e.Candidate.Name, e.Candidate.ID, e.Candidate.Block, strings.Join(names, ", "))
}

// ConflictingIDs lists the ids of the overlapped courses.
func (e *CollisionError) ConflictingIDs() []string {
	ids := make([]string, 0, len(e.Conflicting))
	for _, c := range e.Conflicting {
		ids = append(ids, c.ID)
	}
	return ids
}
