package solver

import (
	"github.com/noah-isme/ects-quest/internal/metadata"
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/scheduling"
	"github.com/noah-isme/ects-quest/pkg/random"
)

// attempt is one clear-fill pass over the selection.
type attempt struct {
	rng      random.Source
	plan     *plan
	sel      *scheduling.Selection
	index    rules.CourseIndex
	level    int
	restDays map[models.Weekday]bool
}

func (a *attempt) run() {
	a.restDays = make(map[models.Weekday]bool)
	if a.plan.minFreeDays > 0 {
		for _, d := range random.Sample(a.rng, models.Weekdays, a.plan.minFreeDays) {
			a.restDays[d] = true
		}
	}

	required := make(map[string]bool, len(a.plan.requiredSubjects))
	for _, s := range a.plan.requiredSubjects {
		required[s] = true
	}
	var subjects []models.Course
	for _, c := range a.plan.pool {
		if required[c.SubjectID] {
			subjects = append(subjects, c)
		}
	}
	for _, c := range a.shuffled(subjects) {
		a.add(c)
	}

	for _, tag := range a.plan.requiredTags {
		if a.tagged(tag, nil) {
			continue
		}
		a.addFirst(a.plan.withTag(tag))
	}

	for _, floor := range a.plan.floors {
		for _, c := range a.shuffled(a.plan.withTag(floor.tag)) {
			if a.tagECTS(floor.tag) >= floor.ects {
				break
			}
			a.add(c)
		}
	}

	for _, pair := range a.plan.synergies {
		if a.tagged(pair.a, nil) && !a.tagged(pair.b, nil) {
			a.addFirst(a.plan.withTag(pair.b))
		}
	}

	for _, c := range a.shuffled(a.plan.pool) {
		if a.ects() >= a.plan.ectsTarget {
			break
		}
		a.add(c)
	}
}

func (a *attempt) shuffled(courses []models.Course) []models.Course {
	out := make([]models.Course, len(courses))
	copy(out, courses)
	random.Shuffle(a.rng, out)
	return out
}

func (a *attempt) addFirst(candidates []models.Course) bool {
	for _, c := range a.shuffled(candidates) {
		if a.add(c) {
			return true
		}
	}
	return false
}

// add places c together with whatever it drags along, or nothing at all.
func (a *attempt) add(c models.Course) bool {
	group, ok := a.bundle(c)
	if !ok {
		return false
	}
	for i, course := range group {
		if !a.sel.TryAdd(course).OK() {
			for _, placed := range group[:i] {
				a.sel.Remove(placed.ID)
			}
			return false
		}
	}
	return true
}

// bundle is c plus the missing components of its subject and, when a synergy
// fires, a partner course with its own components.
func (a *attempt) bundle(c models.Course) ([]models.Course, bool) {
	if !a.placeable(c, nil) {
		return nil, false
	}
	group, ok := a.withComponents(c, nil)
	if !ok {
		return nil, false
	}
	for _, pair := range a.plan.synergies {
		if !a.tagged(pair.a, group) || a.tagged(pair.b, group) {
			continue
		}
		partner, ok := a.partner(pair.b, group)
		if !ok {
			return nil, false
		}
		group = append(group, partner...)
	}
	if a.excluded(group) || !a.withinCaps(group) {
		return nil, false
	}
	return group, true
}

func (a *attempt) partner(tag models.Tag, group []models.Course) ([]models.Course, bool) {
	for _, c := range a.shuffled(a.plan.withTag(tag)) {
		if !a.placeable(c, group) {
			continue
		}
		extra, ok := a.withComponents(c, group)
		if !ok {
			continue
		}
		if a.excluded(append(append([]models.Course(nil), group...), extra...)) {
			continue
		}
		return extra, true
	}
	return nil, false
}

// withComponents returns c followed by one course for every component type of
// its subject not yet represented.
func (a *attempt) withComponents(c models.Course, pending []models.Course) ([]models.Course, bool) {
	out := []models.Course{c}
	subject, ok := a.index.Subject(c.SubjectID)
	if !ok {
		return out, true
	}
	for _, component := range subject.Components {
		current := append(append([]models.Course(nil), pending...), out...)
		if a.represented(c.SubjectID, component, current) {
			continue
		}
		var found bool
		for _, candidate := range a.shuffled(a.plan.ofSubject(c.SubjectID, component)) {
			if a.placeable(candidate, current) {
				out = append(out, candidate)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}

// placeable checks c against the selection and the pending group: not chosen,
// subject and type not yet covered, no overlap and not on a rest day.
func (a *attempt) placeable(c models.Course, pending []models.Course) bool {
	if a.restDays[c.Block.Day] || a.sel.Has(c.ID) {
		return false
	}
	if a.represented(c.SubjectID, c.Type, pending) {
		return false
	}
	for _, p := range pending {
		if p.ID == c.ID || scheduling.Collide(p.Block, c.Block) {
			return false
		}
	}
	return a.sel.CanAdd(c).Allowed
}

func (a *attempt) represented(subject string, t models.CourseType, pending []models.Course) bool {
	for _, c := range a.sel.Courses() {
		if c.SubjectID == subject && c.Type == t {
			return true
		}
	}
	for _, c := range pending {
		if c.SubjectID == subject && c.Type == t {
			return true
		}
	}
	return false
}

func (a *attempt) tagged(tag models.Tag, pending []models.Course) bool {
	for _, c := range a.sel.Courses() {
		if c.HasTag(tag) {
			return true
		}
	}
	for _, c := range pending {
		if c.HasTag(tag) {
			return true
		}
	}
	return false
}

func (a *attempt) excluded(pending []models.Course) bool {
	for _, pair := range a.plan.exclusions {
		if a.tagged(pair.a, pending) && a.tagged(pair.b, pending) {
			return true
		}
	}
	return false
}

func (a *attempt) withinCaps(pending []models.Course) bool {
	if a.plan.maxDailyHours == 0 && a.plan.maxContactHours == 0 {
		return true
	}
	courses := append(a.sel.Courses(), pending...)
	cx := metadata.CalculateComplex(scheduling.ProjectSlots(courses), a.level)
	if a.plan.maxDailyHours > 0 && cx.MaxDailyHours > a.plan.maxDailyHours {
		return false
	}
	if a.plan.maxContactHours > 0 && cx.TotalContactHours > a.plan.maxContactHours {
		return false
	}
	return true
}

func (a *attempt) ects() int {
	total := 0
	for _, c := range a.sel.Courses() {
		total += c.ECTS
	}
	return total
}

func (a *attempt) tagECTS(tag models.Tag) int {
	total := 0
	for _, c := range a.sel.Courses() {
		if c.HasTag(tag) {
			total += c.ECTS
		}
	}
	return total
}
