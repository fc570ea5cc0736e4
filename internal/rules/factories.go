package rules

import (
	"fmt"
	"strings"

	"github.com/noah-isme/ects-quest/internal/models"
)

func newRule(id, title string, kind Kind, params Params) Rule {
	return Rule{
		ID:       id,
		Title:    title,
		Category: Mandatory,
		Level:    AllLevels,
		Kind:     kind,
		Params:   params,
		Hint:     hintFor(kind, params),
	}
}

// MinECTS requires at least min credits in the current semester.
func MinECTS(id string, min int) Rule {
	return newRule(id, fmt.Sprintf("Earn at least %d ECTS", min), KindMinECTS, Params{Threshold: min})
}

// CumulativeECTS requires banked plus current credits to reach min.
func CumulativeECTS(id string, min int) Rule {
	return newRule(id, fmt.Sprintf("Reach %d ECTS in total", min), KindCumulativeECTS, Params{Threshold: min})
}

// RequiredSubjects requires each subject to be taken now or in an earlier level.
func RequiredSubjects(id string, subjects ...string) Rule {
	return newRule(id, "Take "+strings.Join(subjects, ", "), KindRequiredSubjects, Params{Subjects: subjects})
}

// BannedTag forbids courses carrying tag.
func BannedTag(id string, tag models.Tag) Rule {
	return newRule(id, fmt.Sprintf("No %s courses", tag), KindBannedTag, Params{Tag: tag})
}

// RequiredTag requires at least one course carrying tag.
func RequiredTag(id string, tag models.Tag) Rule {
	return newRule(id, fmt.Sprintf("At least one %s course", tag), KindRequiredTag, Params{Tag: tag})
}

// TagSpecialist requires at least min credits from courses carrying tag.
func TagSpecialist(id string, tag models.Tag, min int) Rule {
	return newRule(id, fmt.Sprintf("%d ECTS of %s", min, tag), KindTagSpecialist, Params{Tag: tag, Threshold: min})
}

// TagExclusion forbids mixing courses tagged a with courses tagged b.
func TagExclusion(id string, a, b models.Tag) Rule {
	return newRule(id, fmt.Sprintf("Either %s or %s, never both", a, b), KindTagExclusion, Params{Tag: a, Partner: b})
}

// TagSynergy requires a course tagged partner whenever one tagged trigger is selected.
func TagSynergy(id string, trigger, partner models.Tag) Rule {
	return newRule(id, fmt.Sprintf("%s needs %s", trigger, partner), KindTagSynergy, Params{Tag: trigger, Partner: partner})
}

// MaxGap caps the longest idle stretch between two classes of a day.
func MaxGap(id string, hours int) Rule {
	return newRule(id, fmt.Sprintf("No gap longer than %dh", hours), KindMaxGap, Params{Threshold: hours})
}

// MaxDailyHours caps the contact hours of any single day.
func MaxDailyHours(id string, hours int) Rule {
	return newRule(id, fmt.Sprintf("At most %dh per day", hours), KindMaxDailyHours, Params{Threshold: hours})
}

// MaxContactHours caps the weekly contact hours.
func MaxContactHours(id string, hours int) Rule {
	return newRule(id, fmt.Sprintf("At most %dh per week", hours), KindMaxContactHours, Params{Threshold: hours})
}

// BannedWindow forbids classes inside any of the windows.
func BannedWindow(id string, windows ...Window) Rule {
	names := make([]string, 0, len(windows))
	for _, w := range windows {
		names = append(names, w.String())
	}
	return newRule(id, "Keep "+strings.Join(names, ", ")+" free", KindBannedWindow, Params{Windows: windows})
}

// FreeDays requires every listed day to stay empty.
func FreeDays(id string, days ...models.Weekday) Rule {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, d.String())
	}
	return newRule(id, "Free "+strings.Join(names, ", "), KindFreeDays, Params{Days: days})
}

// MinFreeDays requires at least count weekdays without classes.
func MinFreeDays(id string, count int) Rule {
	return newRule(id, fmt.Sprintf("At least %d free days", count), KindMinFreeDays, Params{Threshold: count})
}

// MinStartHour forbids classes starting before hour.
func MinStartHour(id string, hour int) Rule {
	return newRule(id, fmt.Sprintf("Nothing before %d:00", hour), KindMinStartHour, Params{Threshold: hour})
}

// StartParity requires every class to start on an hour of the given parity.
func StartParity(id string, parity Parity) Rule {
	return newRule(id, fmt.Sprintf("Only %s start hours", strings.ToLower(string(parity))), KindStartParity, Params{Parity: parity})
}

// NameLength requires every selected course name to have at least min letters.
func NameLength(id string, min int) Rule {
	return newRule(id, fmt.Sprintf("Course names of %d+ characters", min), KindNameLength, Params{Threshold: min})
}

// NameVowels requires every selected course name to hold at least min vowels.
func NameVowels(id string, min int) Rule {
	return newRule(id, fmt.Sprintf("Course names with %d+ vowels", min), KindNameVowels, Params{Threshold: min})
}

// NameNoDigits forbids digits in selected course names.
func NameNoDigits(id string) Rule {
	return newRule(id, "No digits in course names", KindNameNoDigits, Params{})
}

// ECTSPrime requires the semester credit total to be prime.
func ECTSPrime(id string) Rule {
	return newRule(id, "Prime ECTS total", KindECTSPrime, Params{})
}

// ContactPalindrome requires the weekly contact hours to read the same backwards.
func ContactPalindrome(id string) Rule {
	return newRule(id, "Palindromic contact hours", KindContactPalindrome, Params{})
}

// Prerequisites requires every prerequisite of a selected course to be banked.
func Prerequisites(id string) Rule {
	return newRule(id, "Prerequisites passed", KindPrerequisites, Params{})
}

// ComponentsComplete requires all delivery components of every picked subject.
func ComponentsComplete(id string) Rule {
	return newRule(id, "Complete subjects", KindComponentsComplete, Params{})
}

// NoCollisions forbids overlapping classes.
func NoCollisions(id string) Rule {
	return newRule(id, "No overlapping classes", KindNoCollisions, Params{})
}

// NoRepeats forbids subjects passed in an earlier level.
func NoRepeats(id string) Rule {
	return newRule(id, "No repeated subjects", KindNoRepeats, Params{})
}
