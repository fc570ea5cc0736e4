package scheduling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ects-quest/internal/models"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
)

func TestSelectionAddOverlappingFailsNamingBoth(t *testing.T) {
	sel := NewSelection()
	first := course("mon-9", models.Monday, 9, 2)
	second := course("mon-10", models.Monday, 10, 2)

	require.NoError(t, sel.Add(first))
	err := sel.Add(second)
	require.Error(t, err)

	assert.True(t, errors.Is(err, appErrors.ErrCourseCollision))
	var collision *CollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, "mon-10", collision.Candidate.ID)
	assert.Equal(t, []string{"mon-9"}, collision.ConflictingIDs())
	assert.Contains(t, err.Error(), "Course mon-9")
	assert.Contains(t, err.Error(), "Course mon-10")
	assert.Equal(t, []string{"mon-9"}, sel.IDs())
}

func TestSelectionAddTouchingSucceeds(t *testing.T) {
	sel := NewSelection()
	require.NoError(t, sel.Add(course("mon-9", models.Monday, 9, 2)))
	require.NoError(t, sel.Add(course("mon-11", models.Monday, 11, 2)))
	assert.Equal(t, 2, sel.Len())
}

func TestSelectionDuplicateDoesNotMutate(t *testing.T) {
	sel := NewSelection()
	c := course("a", models.Monday, 9, 2)
	require.NoError(t, sel.Add(c))

	outcome := sel.TryAdd(c)
	assert.Equal(t, AddDuplicate, outcome.Status)

	err := sel.Add(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateCourse))
	assert.Contains(t, err.Error(), "Course a")
	assert.Equal(t, 1, sel.Len())
}

func TestSelectionRemoveAndClear(t *testing.T) {
	sel := NewSelection(
		course("a", models.Monday, 8, 1),
		course("b", models.Monday, 9, 1),
		course("c", models.Monday, 10, 1),
	)

	assert.True(t, sel.Remove("b"))
	assert.False(t, sel.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, sel.IDs())
	assert.True(t, sel.Has("c"))
	assert.True(t, sel.Remove("c"))
	assert.Equal(t, []string{"a"}, sel.IDs())

	sel.Clear()
	assert.Equal(t, 0, sel.Len())
	assert.Empty(t, sel.Slots())
}

func TestSelectionInsertAllowsOverlap(t *testing.T) {
	sel := NewSelection()
	assert.True(t, sel.Insert(course("a", models.Monday, 9, 2)))
	assert.True(t, sel.Insert(course("b", models.Monday, 10, 2)))
	assert.False(t, sel.Insert(course("a", models.Monday, 9, 2)))
	assert.Equal(t, 2, sel.Len())
}

func TestSlotsMirrorSelection(t *testing.T) {
	sel := NewSelection()
	require.NoError(t, sel.Add(course("b", models.Tuesday, 8, 1)))
	require.NoError(t, sel.Add(course("a", models.Monday, 10, 3)))

	slots := sel.Slots()
	require.Len(t, slots, 4)
	assert.Equal(t, models.Monday, slots[0].Day)
	assert.Equal(t, 10, slots[0].Hour)
	assert.Equal(t, 12, slots[2].Hour)
	assert.Equal(t, "b", slots[3].CourseID)
	require.NotNil(t, slots[3].Course)
	assert.Equal(t, "b", slots[3].Course.ID)

	sel.Remove("a")
	assert.Len(t, sel.Slots(), 1)
}
