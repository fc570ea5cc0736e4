// Package rules holds the declarative rule catalog, the activation resolver and
// the validation engine that judges a timetable against the active rules.
package rules

import (
	"strconv"
	"strings"

	"github.com/noah-isme/ects-quest/internal/models"
)

// AllLevels marks a rule that applies to every level.
const AllLevels = 0

// Category controls whether a violation blocks level completion.
type Category string

const (
	Mandatory Category = "MANDATORY"
	Goal      Category = "GOAL"
)

// Kind selects the check a rule runs.
type Kind string

const (
	KindMinECTS            Kind = "MIN_ECTS"
	KindCumulativeECTS     Kind = "CUMULATIVE_ECTS"
	KindRequiredSubjects   Kind = "REQUIRED_SUBJECTS"
	KindBannedTag          Kind = "BANNED_TAG"
	KindRequiredTag        Kind = "REQUIRED_TAG"
	KindTagSpecialist      Kind = "TAG_SPECIALIST"
	KindTagExclusion       Kind = "TAG_EXCLUSION"
	KindTagSynergy         Kind = "TAG_SYNERGY"
	KindMaxGap             Kind = "MAX_GAP"
	KindMaxDailyHours      Kind = "MAX_DAILY_HOURS"
	KindMaxContactHours    Kind = "MAX_CONTACT_HOURS"
	KindBannedWindow       Kind = "BANNED_WINDOW"
	KindFreeDays           Kind = "FREE_DAYS"
	KindMinFreeDays        Kind = "MIN_FREE_DAYS"
	KindMinStartHour       Kind = "MIN_START_HOUR"
	KindStartParity        Kind = "START_PARITY"
	KindNameLength         Kind = "NAME_LENGTH"
	KindNameVowels         Kind = "NAME_VOWELS"
	KindNameNoDigits       Kind = "NAME_NO_DIGITS"
	KindECTSPrime          Kind = "ECTS_PRIME"
	KindContactPalindrome  Kind = "CONTACT_PALINDROME"
	KindPrerequisites      Kind = "PREREQUISITES"
	KindComponentsComplete Kind = "COMPONENTS_COMPLETE"
	KindNoCollisions       Kind = "NO_COLLISIONS"
	KindNoRepeats          Kind = "NO_REPEATS"
)

// Parity constrains start hours to even or odd values.
type Parity string

const (
	ParityEven Parity = "EVEN"
	ParityOdd  Parity = "ODD"
)

// Matches reports whether hour has the parity.
func (p Parity) Matches(hour int) bool {
	switch p {
	case ParityEven:
		return hour%2 == 0
	case ParityOdd:
		return hour%2 != 0
	}
	return true
}

// Window is a banned stretch of hours [From, To) on one day.
type Window struct {
	Day  models.Weekday `json:"day"`
	From int            `json:"from"`
	To   int            `json:"to"`
}

// Overlaps reports whether the block touches any hour of the window.
func (w Window) Overlaps(b models.TimeBlock) bool {
	return w.Day == b.Day && b.StartHour < w.To && w.From < b.EndHour()
}

// String renders e.g. "WEDNESDAY 12-16".
func (w Window) String() string {
	return w.Day.String() + " " + strconv.Itoa(w.From) + "-" + strconv.Itoa(w.To)
}

// Params carries the arguments of a rule kind. Unused fields stay zero.
type Params struct {
	Threshold int              `json:"threshold,omitempty"`
	Tag       models.Tag       `json:"tag,omitempty"`
	Partner   models.Tag       `json:"partner,omitempty"`
	Subjects  []string         `json:"subjects,omitempty"`
	Days      []models.Weekday `json:"days,omitempty"`
	Windows   []Window         `json:"windows,omitempty"`
	Parity    Parity           `json:"parity,omitempty"`
}

// ActivationKind names a predicate that can pull a rule into a level it was not declared for.
type ActivationKind string

const (
	ActivateFromLevel       ActivationKind = "FROM_LEVEL"
	ActivateBankedECTS      ActivationKind = "BANKED_ECTS"
	ActivateCompletedLevels ActivationKind = "COMPLETED_LEVELS"
)

// Activation is a declarative predicate over the validation context.
type Activation struct {
	Kind  ActivationKind `json:"kind" validate:"oneof=FROM_LEVEL BANKED_ECTS COMPLETED_LEVELS"`
	Value int            `json:"value" validate:"min=0"`
}

// Rule is an immutable catalog record.
type Rule struct {
	ID             string      `json:"id" validate:"required"`
	Title          string      `json:"title" validate:"required"`
	Category       Category    `json:"category" validate:"oneof=MANDATORY GOAL"`
	Level          int         `json:"level" validate:"min=0"`
	Activation     *Activation `json:"activation,omitempty"`
	Kind           Kind        `json:"kind" validate:"required"`
	Params         Params      `json:"params"`
	Reward         int         `json:"reward,omitempty"`
	StressModifier int         `json:"stressModifier,omitempty"`
	Hint           *Hint       `json:"hint,omitempty"`
	SuccessMessage string      `json:"-"`
	FailureMessage string      `json:"-"`
}

// Blocking reports whether a violation of r blocks level completion.
func (r Rule) Blocking() bool {
	return r.Category == Mandatory
}

// AsGoal returns a copy of r in the Goal category.
func (r Rule) AsGoal() Rule {
	r.Category = Goal
	return r
}

// AtLevel returns a copy of r bound to level.
func (r Rule) AtLevel(level int) Rule {
	r.Level = level
	return r
}

// WithReward returns a copy of r granting score on success.
func (r Rule) WithReward(points int) Rule {
	r.Reward = points
	return r
}

// WithStress returns a copy of r adjusting willpower on success. Negative values relieve.
func (r Rule) WithStress(delta int) Rule {
	r.StressModifier = delta
	return r
}

// WithMessages returns a copy of r with custom templates. {current} and {required}
// are replaced with the measured and required values.
func (r Rule) WithMessages(success, failure string) Rule {
	r.SuccessMessage = success
	r.FailureMessage = failure
	return r
}

// ActiveWhen returns a copy of r with an activation predicate.
func (r Rule) ActiveWhen(kind ActivationKind, value int) Rule {
	r.Activation = &Activation{Kind: kind, Value: value}
	return r
}

// Titled returns a copy of r with a different title.
func (r Rule) Titled(title string) Rule {
	r.Title = title
	return r
}

// Severity grades a result for presentation.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Progress carries the numbers behind a threshold check.
type Progress struct {
	Current  int `json:"current"`
	Required int `json:"required"`
}

// Result is what a rule check returns.
type Result struct {
	Satisfied bool      `json:"satisfied"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Progress  *Progress `json:"progress,omitempty"`
}

func render(template string, progress *Progress) string {
	if progress == nil {
		return template
	}
	return strings.NewReplacer(
		"{current}", strconv.Itoa(progress.Current),
		"{required}", strconv.Itoa(progress.Required),
	).Replace(template)
}
