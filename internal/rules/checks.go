package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/scheduling"
)

type verdict struct {
	ok       bool
	progress *Progress
	detail   string
}

func threshold(current, required int, atLeast bool) verdict {
	ok := current >= required
	if !atLeast {
		ok = current <= required
	}
	return verdict{ok: ok, progress: &Progress{Current: current, Required: required}}
}

func offenders(ids []string, what string) verdict {
	if len(ids) == 0 {
		return verdict{ok: true}
	}
	sort.Strings(ids)
	return verdict{
		progress: &Progress{Current: len(ids), Required: 0},
		detail:   what + ": " + strings.Join(ids, ", "),
	}
}

// Evaluate runs the check of r against ctx. It never panics on unknown kinds.
func Evaluate(r Rule, ctx Context) Result {
	v := dispatch(r, ctx)

	res := Result{Satisfied: v.ok, Progress: v.progress}
	switch {
	case v.ok:
		res.Severity = SeverityInfo
	case r.Blocking():
		res.Severity = SeverityError
	default:
		res.Severity = SeverityWarning
	}

	switch {
	case v.ok && r.SuccessMessage != "":
		res.Message = render(r.SuccessMessage, v.progress)
	case !v.ok && r.FailureMessage != "":
		res.Message = render(r.FailureMessage, v.progress)
	default:
		res.Message = defaultMessage(r, v)
	}
	return res
}

func defaultMessage(r Rule, v verdict) string {
	status := "met"
	if !v.ok {
		status = "not met"
	}
	msg := r.Title + ": " + status
	if v.progress != nil && v.detail == "" {
		msg += fmt.Sprintf(" (%d/%d)", v.progress.Current, v.progress.Required)
	}
	if v.detail != "" {
		msg += " (" + v.detail + ")"
	}
	return msg
}

func dispatch(r Rule, ctx Context) verdict {
	p := r.Params
	switch r.Kind {
	case KindMinECTS:
		return threshold(ctx.Simple.CurrentSemesterECTS, p.Threshold, true)
	case KindCumulativeECTS:
		return threshold(ctx.BankedECTS+ctx.Simple.CurrentSemesterECTS, p.Threshold, true)
	case KindRequiredSubjects:
		return checkRequiredSubjects(p.Subjects, ctx)
	case KindBannedTag:
		return offenders(coursesWhere(ctx, func(c models.Course) bool { return c.HasTag(p.Tag) }), "banned")
	case KindRequiredTag:
		return threshold(len(coursesWhere(ctx, func(c models.Course) bool { return c.HasTag(p.Tag) })), 1, true)
	case KindTagSpecialist:
		return threshold(ctx.Simple.ECTSByTag[p.Tag], p.Threshold, true)
	case KindTagExclusion:
		if ctx.hasTag(p.Tag) && ctx.hasTag(p.Partner) {
			return verdict{detail: fmt.Sprintf("both %s and %s selected", p.Tag, p.Partner)}
		}
		return verdict{ok: true}
	case KindTagSynergy:
		if ctx.hasTag(p.Tag) && !ctx.hasTag(p.Partner) {
			return verdict{detail: fmt.Sprintf("%s selected without %s", p.Tag, p.Partner)}
		}
		return verdict{ok: true}
	case KindMaxGap:
		return threshold(ctx.Complex.LongestGap, p.Threshold, false)
	case KindMaxDailyHours:
		return threshold(ctx.Complex.MaxDailyHours, p.Threshold, false)
	case KindMaxContactHours:
		return threshold(ctx.Complex.TotalContactHours, p.Threshold, false)
	case KindBannedWindow:
		return offenders(coursesWhere(ctx, func(c models.Course) bool {
			for _, w := range p.Windows {
				if w.Overlaps(c.Block) {
					return true
				}
			}
			return false
		}), "inside banned window")
	case KindFreeDays:
		return offenders(coursesWhere(ctx, func(c models.Course) bool {
			for _, d := range p.Days {
				if c.Block.Day == d {
					return true
				}
			}
			return false
		}), "on a free day")
	case KindMinFreeDays:
		return threshold(ctx.Complex.FreeDays, p.Threshold, true)
	case KindMinStartHour:
		return offenders(coursesWhere(ctx, func(c models.Course) bool { return c.Block.StartHour < p.Threshold }), "too early")
	case KindStartParity:
		return offenders(coursesWhere(ctx, func(c models.Course) bool { return !p.Parity.Matches(c.Block.StartHour) }), "wrong start hour")
	case KindNameLength:
		return offenders(coursesWhere(ctx, func(c models.Course) bool { return len([]rune(c.Name)) < p.Threshold }), "name too short")
	case KindNameVowels:
		return offenders(coursesWhere(ctx, func(c models.Course) bool { return countVowels(c.Name) < p.Threshold }), "too few vowels")
	case KindNameNoDigits:
		return offenders(coursesWhere(ctx, func(c models.Course) bool { return strings.IndexFunc(c.Name, unicode.IsDigit) >= 0 }), "digits in name")
	case KindECTSPrime:
		ects := ctx.Simple.CurrentSemesterECTS
		return verdict{ok: IsPrime(ects), detail: strconv.Itoa(ects) + " ECTS"}
	case KindContactPalindrome:
		hours := ctx.Complex.TotalContactHours
		return verdict{ok: hours > 0 && IsPalindrome(hours), detail: strconv.Itoa(hours) + "h"}
	case KindPrerequisites:
		return offenders(coursesWhere(ctx, func(c models.Course) bool { return len(MissingPrerequisites(c, ctx)) > 0 }), "prerequisites missing")
	case KindComponentsComplete:
		return offenders(incompleteSubjects(ctx), "incomplete subjects")
	case KindNoCollisions:
		ids := make([]string, 0)
		for id := range scheduling.FindAllCollisions(ctx.Selection) {
			ids = append(ids, id)
		}
		return offenders(ids, "overlapping")
	case KindNoRepeats:
		return offenders(coursesWhere(ctx, func(c models.Course) bool { return ctx.Taken(c.SubjectID) }), "already passed")
	}
	return verdict{detail: "unknown rule kind " + string(r.Kind)}
}

func coursesWhere(ctx Context, pred func(models.Course) bool) []string {
	ids := make([]string, 0)
	for _, c := range ctx.Selection {
		if pred(c) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func checkRequiredSubjects(subjects []string, ctx Context) verdict {
	selected := ctx.selectedSubjects()
	var missing []string
	for _, s := range subjects {
		if _, ok := selected[s]; ok || ctx.Taken(s) {
			continue
		}
		missing = append(missing, s)
	}
	v := verdict{
		ok:       len(missing) == 0,
		progress: &Progress{Current: len(subjects) - len(missing), Required: len(subjects)},
	}
	if len(missing) > 0 {
		v.detail = "missing " + strings.Join(missing, ", ")
	}
	return v
}

// MissingPrerequisites lists prerequisite subjects of c not yet passed.
func MissingPrerequisites(c models.Course, ctx Context) []string {
	required := append([]string(nil), c.Prerequisites...)
	if subject, ok := ctx.Subject(c.SubjectID); ok {
		required = append(required, subject.Prerequisites...)
	}
	var missing []string
	for _, id := range required {
		if !ctx.Taken(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

func incompleteSubjects(ctx Context) []string {
	present := make(map[string]map[models.CourseType]struct{})
	for _, c := range ctx.Selection {
		if present[c.SubjectID] == nil {
			present[c.SubjectID] = make(map[models.CourseType]struct{})
		}
		present[c.SubjectID][c.Type] = struct{}{}
	}
	var incomplete []string
	for subjectID, types := range present {
		subject, ok := ctx.Subject(subjectID)
		if !ok {
			continue
		}
		for _, component := range subject.Components {
			if _, ok := types[component]; !ok {
				incomplete = append(incomplete, subjectID)
				break
			}
		}
	}
	return incomplete
}

func countVowels(s string) int {
	n := 0
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			n++
		}
	}
	return n
}

// IsPrime reports whether n is a prime number.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// IsPalindrome reports whether the decimal digits of n read the same backwards.
func IsPalindrome(n int) bool {
	if n < 0 {
		return false
	}
	s := strconv.Itoa(n)
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return false
		}
	}
	return true
}
