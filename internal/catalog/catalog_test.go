package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/scheduling"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()

	require.NotEmpty(t, c.Courses())
	require.NotEmpty(t, c.Subjects())

	prog, ok := c.Course("PROG1-LEC")
	require.True(t, ok)
	assert.Equal(t, "PROG1", prog.SubjectID)
	assert.Equal(t, models.Monday, prog.Block.Day)
	assert.Equal(t, 10, prog.Block.StartHour)
	assert.True(t, prog.Mandatory)
	assert.True(t, prog.HasExam)
	assert.True(t, prog.HasTag(models.TagCS))

	subject, ok := c.Subject("OS")
	require.True(t, ok)
	assert.Equal(t, []string{"PROG1"}, subject.Prerequisites)
	assert.Len(t, c.CoursesBySubject("OS"), 3)

	_, ok = c.Course("nope")
	assert.False(t, ok)
}

func TestMandatoryFirstYearFitsTogether(t *testing.T) {
	c := Default()
	sel := scheduling.NewSelection()
	for _, id := range []string{"PROG1-LEC", "PROG1-LAB-A", "CALC1-LEC", "CALC1-CLS-A"} {
		course, ok := c.Course(id)
		require.True(t, ok, id)
		require.NoError(t, sel.Add(course), id)
	}
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"unknown subject": `
subjects:
  - {id: A, name: A, components: [LECTURE]}
courses:
  - {id: A-1, subject: B, name: A one, ects: 2, type: LECTURE, block: {day: MONDAY, start: 8, duration: 2}}
`,
		"after closing": `
subjects:
  - {id: A, name: A, components: [LECTURE]}
courses:
  - {id: A-1, subject: A, name: A one, ects: 2, type: LECTURE, block: {day: MONDAY, start: 19, duration: 2}}
`,
		"missing component": `
subjects:
  - {id: A, name: A, components: [LECTURE, CLASSES]}
courses:
  - {id: A-1, subject: A, name: A one, ects: 2, type: LECTURE, block: {day: MONDAY, start: 8, duration: 2}}
`,
		"duplicate course": `
subjects:
  - {id: A, name: A, components: [LECTURE]}
courses:
  - {id: A-1, subject: A, name: A one, ects: 2, type: LECTURE, block: {day: MONDAY, start: 8, duration: 2}}
  - {id: A-1, subject: A, name: A two, ects: 2, type: LECTURE, block: {day: TUESDAY, start: 8, duration: 2}}
`,
		"bad weekday": `
subjects:
  - {id: A, name: A, components: [LECTURE]}
courses:
  - {id: A-1, subject: A, name: A one, ects: 2, type: LECTURE, block: {day: SUNDAY, start: 8, duration: 2}}
`,
		"zero ects": `
subjects:
  - {id: A, name: A, components: [LECTURE]}
courses:
  - {id: A-1, subject: A, name: A one, ects: 0, type: LECTURE, block: {day: MONDAY, start: 8, duration: 2}}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}
}

func TestResolve(t *testing.T) {
	c := Default()

	courses, err := c.Resolve([]string{"CALC1-LEC", "PROG1-LEC"})
	require.NoError(t, err)
	assert.Equal(t, "CALC1-LEC", courses[0].ID)

	_, err = c.Resolve([]string{"CALC1-LEC", "missing"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/definitely/not/here.yaml")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
