package models

import (
	"fmt"
	"strings"
)

// Campus opening hours. Courses never start before OpeningHour nor end after ClosingHour.
const (
	OpeningHour = 8
	ClosingHour = 20
)

// Weekday is a teaching day, Monday=1 through Friday=5.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Weekdays lists teaching days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayNames = map[Weekday]string{
	Monday:    "MONDAY",
	Tuesday:   "TUESDAY",
	Wednesday: "WEDNESDAY",
	Thursday:  "THURSDAY",
	Friday:    "FRIDAY",
}

var weekdayIndex = map[string]Weekday{
	"MONDAY":    Monday,
	"TUESDAY":   Tuesday,
	"WEDNESDAY": Wednesday,
	"THURSDAY":  Thursday,
	"FRIDAY":    Friday,
}

// String returns the upper-case day name.
func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DAY(%d)", int(d))
}

// Valid reports whether d is a teaching day.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Friday
}

// ParseWeekday maps a day name (case-insensitive) to a Weekday; 0 when unknown.
func ParseWeekday(name string) Weekday {
	return weekdayIndex[strings.ToUpper(strings.TrimSpace(name))]
}

// MarshalText encodes the day by name.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a day name.
func (d *Weekday) UnmarshalText(text []byte) error {
	day := ParseWeekday(string(text))
	if day == 0 {
		return fmt.Errorf("unknown weekday %q", string(text))
	}
	*d = day
	return nil
}

// CourseType is the delivery form of a course.
type CourseType string

const (
	CourseTypeLecture    CourseType = "LECTURE"
	CourseTypeClasses    CourseType = "CLASSES"
	CourseTypeLaboratory CourseType = "LABORATORY"
	CourseTypeProject    CourseType = "PROJECT"
	CourseTypeSeminar    CourseType = "SEMINAR"
)

// Tag is a closed-vocabulary label attached to courses.
type Tag string

const (
	TagCore       Tag = "CORE"
	TagCS         Tag = "CS"
	TagMath       Tag = "MATH"
	TagTools      Tag = "TOOLS"
	TagStats      Tag = "STATS"
	TagAI         Tag = "AI"
	TagOS         Tag = "OS"
	TagAdvanced   Tag = "ADVANCED"
	TagHumanities Tag = "HUMANITIES"
	TagNetworks   Tag = "NETWORKS"
	TagData       Tag = "DATA"
	TagSoft       Tag = "SOFT"
)

// TimeBlock places a course on the weekly grid.
type TimeBlock struct {
	Day       Weekday `json:"day" yaml:"day" validate:"min=1,max=5"`
	StartHour int     `json:"startHour" yaml:"start" validate:"min=8,max=19"`
	Duration  int     `json:"duration" yaml:"duration" validate:"min=1,max=12"`
}

// EndHour is the exclusive end of the block.
func (b TimeBlock) EndHour() int {
	return b.StartHour + b.Duration
}

// String renders e.g. "MONDAY 10-12".
func (b TimeBlock) String() string {
	return fmt.Sprintf("%s %d-%d", b.Day, b.StartHour, b.EndHour())
}

// Course is an immutable catalog entry.
type Course struct {
	ID            string     `json:"id" yaml:"id" validate:"required"`
	SubjectID     string     `json:"subjectId" yaml:"subject" validate:"required"`
	Name          string     `json:"name" yaml:"name" validate:"required"`
	ECTS          int        `json:"ects" yaml:"ects" validate:"min=1"`
	Type          CourseType `json:"type" yaml:"type" validate:"oneof=LECTURE CLASSES LABORATORY PROJECT SEMINAR"`
	Tags          []Tag      `json:"tags" yaml:"tags"`
	Mandatory     bool       `json:"mandatory" yaml:"mandatory"`
	HasExam       bool       `json:"hasExam" yaml:"exam"`
	Prerequisites []string   `json:"prerequisites,omitempty" yaml:"prerequisites"`
	Block         TimeBlock  `json:"block" yaml:"block"`
}

// HasTag reports whether the course carries tag.
func (c Course) HasTag(tag Tag) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Subject groups the courses that together form one subject.
type Subject struct {
	ID            string       `json:"id" yaml:"id" validate:"required"`
	Name          string       `json:"name" yaml:"name" validate:"required"`
	Components    []CourseType `json:"components" yaml:"components" validate:"required,min=1,dive,oneof=LECTURE CLASSES LABORATORY PROJECT SEMINAR"`
	Prerequisites []string     `json:"prerequisites,omitempty" yaml:"prerequisites"`
}

// ScheduleSlot is one occupied hour of the weekly grid.
type ScheduleSlot struct {
	Day      Weekday `json:"day"`
	Hour     int     `json:"hour"`
	CourseID string  `json:"courseId"`
	Course   *Course `json:"-"`
}
