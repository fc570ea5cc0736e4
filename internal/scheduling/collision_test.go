package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ects-quest/internal/models"
)

func course(id string, day models.Weekday, start, duration int) models.Course {
	return models.Course{
		ID:        id,
		SubjectID: "subj-" + id,
		Name:      "Course " + id,
		ECTS:      2,
		Type:      models.CourseTypeLecture,
		Block:     models.TimeBlock{Day: day, StartHour: start, Duration: duration},
	}
}

func TestCollideSameDay(t *testing.T) {
	cases := []struct {
		name string
		a, b models.TimeBlock
		want bool
	}{
		{"overlap", models.TimeBlock{Day: models.Monday, StartHour: 9, Duration: 2}, models.TimeBlock{Day: models.Monday, StartHour: 10, Duration: 2}, true},
		{"touching", models.TimeBlock{Day: models.Monday, StartHour: 9, Duration: 2}, models.TimeBlock{Day: models.Monday, StartHour: 11, Duration: 2}, false},
		{"touching reversed", models.TimeBlock{Day: models.Monday, StartHour: 11, Duration: 2}, models.TimeBlock{Day: models.Monday, StartHour: 9, Duration: 2}, false},
		{"contained", models.TimeBlock{Day: models.Tuesday, StartHour: 8, Duration: 6}, models.TimeBlock{Day: models.Tuesday, StartHour: 10, Duration: 1}, true},
		{"identical", models.TimeBlock{Day: models.Friday, StartHour: 12, Duration: 2}, models.TimeBlock{Day: models.Friday, StartHour: 12, Duration: 2}, true},
		{"disjoint", models.TimeBlock{Day: models.Monday, StartHour: 8, Duration: 1}, models.TimeBlock{Day: models.Monday, StartHour: 15, Duration: 2}, false},
		{"other day", models.TimeBlock{Day: models.Monday, StartHour: 9, Duration: 2}, models.TimeBlock{Day: models.Tuesday, StartHour: 9, Duration: 2}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Collide(tc.a, tc.b))
			assert.Equal(t, tc.want, Collide(tc.b, tc.a))
		})
	}
}

func TestFindAllCollisionsIsSymmetric(t *testing.T) {
	courses := []models.Course{
		course("a", models.Monday, 9, 2),
		course("b", models.Monday, 10, 2),
		course("c", models.Monday, 12, 2),
		course("d", models.Wednesday, 9, 2),
	}

	got := FindAllCollisions(courses)

	assert.Len(t, got, 2)
	assert.Contains(t, got, "a")
	assert.Contains(t, got, "b")
	assert.NotContains(t, got, "c")
	assert.NotContains(t, got, "d")
}

func TestCanAddReportsEveryConflict(t *testing.T) {
	selection := []models.Course{
		course("a", models.Monday, 9, 2),
		course("b", models.Monday, 11, 2),
		course("c", models.Tuesday, 9, 2),
	}

	check := CanAdd(course("x", models.Monday, 10, 2), selection)
	require.False(t, check.Allowed)
	ids := []string{}
	for _, c := range check.Conflicting {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	assert.True(t, CanAdd(course("y", models.Monday, 13, 1), selection).Allowed)
}

func TestCollisionErrorNamesCourses(t *testing.T) {
	err := &CollisionError{
		Candidate:   course("x", models.Monday, 10, 2),
		Conflicting: []models.Course{course("a", models.Monday, 9, 2)},
	}
	assert.Contains(t, err.Error(), "Course x")
	assert.Contains(t, err.Error(), "Course a")
	assert.Equal(t, []string{"a"}, err.ConflictingIDs())
}
