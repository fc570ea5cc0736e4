// Package catalog provides the static course and subject catalog.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/ects-quest/internal/models"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
)

//go:embed data/catalog.yaml
var embedded []byte

type document struct {
	Subjects []models.Subject `yaml:"subjects" validate:"required,min=1,dive"`
	Courses  []models.Course  `yaml:"courses" validate:"required,min=1,dive"`
}

// Catalog is an immutable, indexed collection of courses and subjects.
type Catalog struct {
	courses   []models.Course
	subjects  []models.Subject
	courseIdx map[string]int
	subjIdx   map[string]int
	bySubject map[string][]models.Course
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog. It panics if the embedded document is invalid.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(bytes.NewReader(embedded))
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultCat
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "open catalog")
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates a YAML catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "decode catalog")
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid catalog")
	}
	return New(doc.Subjects, doc.Courses)
}

// New indexes subjects and courses after checking their cross references.
func New(subjects []models.Subject, courses []models.Course) (*Catalog, error) {
	c := &Catalog{
		courses:   make([]models.Course, len(courses)),
		subjects:  make([]models.Subject, len(subjects)),
		courseIdx: make(map[string]int, len(courses)),
		subjIdx:   make(map[string]int, len(subjects)),
		bySubject: make(map[string][]models.Course, len(subjects)),
	}
	copy(c.courses, courses)
	copy(c.subjects, subjects)

	for i, s := range c.subjects {
		if _, dup := c.subjIdx[s.ID]; dup {
			return nil, invalid("subject %s declared twice", s.ID)
		}
		c.subjIdx[s.ID] = i
	}
	for _, s := range c.subjects {
		for _, pre := range s.Prerequisites {
			if _, ok := c.subjIdx[pre]; !ok {
				return nil, invalid("subject %s requires unknown subject %s", s.ID, pre)
			}
		}
	}

	for i, course := range c.courses {
		if _, dup := c.courseIdx[course.ID]; dup {
			return nil, invalid("course %s declared twice", course.ID)
		}
		subject, ok := c.Subject(course.SubjectID)
		if !ok {
			return nil, invalid("course %s belongs to unknown subject %s", course.ID, course.SubjectID)
		}
		if !course.Block.Day.Valid() {
			return nil, invalid("course %s is not on a weekday", course.ID)
		}
		if course.Block.StartHour < models.OpeningHour || course.Block.EndHour() > models.ClosingHour {
			return nil, invalid("course %s (%s) is outside campus hours", course.ID, course.Block)
		}
		if !hasComponent(subject, course.Type) {
			return nil, invalid("course %s has type %s which %s does not list", course.ID, course.Type, subject.ID)
		}
		for _, pre := range course.Prerequisites {
			if _, ok := c.subjIdx[pre]; !ok {
				return nil, invalid("course %s requires unknown subject %s", course.ID, pre)
			}
		}
		c.courseIdx[course.ID] = i
		c.bySubject[course.SubjectID] = append(c.bySubject[course.SubjectID], course)
	}

	for _, s := range c.subjects {
		for _, component := range s.Components {
			found := false
			for _, course := range c.bySubject[s.ID] {
				if course.Type == component {
					found = true
					break
				}
			}
			if !found {
				return nil, invalid("subject %s has no %s offering", s.ID, component)
			}
		}
	}
	return c, nil
}

func invalid(format string, args ...any) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(format, args...))
}

func hasComponent(s models.Subject, t models.CourseType) bool {
	for _, c := range s.Components {
		if c == t {
			return true
		}
	}
	return false
}

// Courses returns every course in catalog order.
func (c *Catalog) Courses() []models.Course {
	out := make([]models.Course, len(c.courses))
	copy(out, c.courses)
	return out
}

// Subjects returns every subject in catalog order.
func (c *Catalog) Subjects() []models.Subject {
	out := make([]models.Subject, len(c.subjects))
	copy(out, c.subjects)
	return out
}

// Course looks up a course by id.
func (c *Catalog) Course(id string) (models.Course, bool) {
	i, ok := c.courseIdx[id]
	if !ok {
		return models.Course{}, false
	}
	return c.courses[i], true
}

// Subject looks up a subject by id.
func (c *Catalog) Subject(id string) (models.Subject, bool) {
	i, ok := c.subjIdx[id]
	if !ok {
		return models.Subject{}, false
	}
	return c.subjects[i], true
}

// CoursesBySubject lists the offerings of a subject in catalog order.
func (c *Catalog) CoursesBySubject(id string) []models.Course {
	src := c.bySubject[id]
	out := make([]models.Course, len(src))
	copy(out, src)
	return out
}

// Resolve maps ids to courses, failing on the first unknown id.
func (c *Catalog) Resolve(ids []string) ([]models.Course, error) {
	out := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		course, ok := c.Course(id)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", id))
		}
		out = append(out, course)
	}
	return out, nil
}
