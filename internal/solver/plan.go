package solver

import (
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
)

type tagPair struct {
	a models.Tag
	b models.Tag
}

type tagFloor struct {
	tag  models.Tag
	ects int
}

// plan is what the hints of the active rules tell the search.
type plan struct {
	bannedTags    map[models.Tag]bool
	bannedDays    map[models.Weekday]bool
	bannedWindows []rules.Window
	minStartHour  int
	minNameLength int
	parity        rules.Parity
	parityBinding bool
	infeasible    bool

	ectsTarget       int
	requiredSubjects []string
	requiredTags     []models.Tag
	floors           []tagFloor
	exclusions       []tagPair
	synergies        []tagPair

	maxContactHours int
	maxDailyHours   int
	minFreeDays     int
	forcePrime      bool
	forcePalindrome bool

	pool []models.Course
}

// minePlan folds the hints of active rules. The prime and palindrome goal
// hints are dropped when waiveNumeric is set; every other goal hint stays.
func minePlan(active []rules.Rule, ctx rules.Context, waiveNumeric bool) *plan {
	p := &plan{
		bannedTags: make(map[models.Tag]bool),
		bannedDays: make(map[models.Weekday]bool),
	}
	minECTS, minTotal := 0, 0
	seenSubject := make(map[string]bool)

	for _, r := range active {
		h := r.Hint
		if h == nil {
			continue
		}
		if waiveNumeric && !r.Blocking() && (h.Kind == rules.HintForceECTSPrime || h.Kind == rules.HintForcePalindromeHours) {
			continue
		}
		switch h.Kind {
		case rules.HintMinECTS:
			minECTS = max(minECTS, h.Value)
		case rules.HintMinTotalECTS:
			minTotal = max(minTotal, h.Value)
		case rules.HintRequiredSubjects:
			for _, s := range h.Subjects {
				if ctx.Taken(s) || seenSubject[s] {
					continue
				}
				seenSubject[s] = true
				p.requiredSubjects = append(p.requiredSubjects, s)
			}
		case rules.HintBannedTag:
			p.bannedTags[h.Tag] = true
		case rules.HintRequiredTag:
			p.requiredTags = append(p.requiredTags, h.Tag)
		case rules.HintTagECTSFloor:
			p.floors = append(p.floors, tagFloor{tag: h.Tag, ects: h.Value})
		case rules.HintTagExclusion:
			p.exclusions = append(p.exclusions, tagPair{a: h.Tag, b: h.Partner})
		case rules.HintTagSynergy:
			p.synergies = append(p.synergies, tagPair{a: h.Tag, b: h.Partner})
		case rules.HintMinNameLength:
			p.minNameLength = max(p.minNameLength, h.Value)
		case rules.HintStartParity:
			p.foldParity(h.Parity, r.Blocking())
		case rules.HintMaxContactHours:
			p.maxContactHours = tighter(p.maxContactHours, h.Value)
		case rules.HintBannedSlots:
			p.bannedWindows = append(p.bannedWindows, h.Windows...)
		case rules.HintMinStartHour:
			p.minStartHour = max(p.minStartHour, h.Value)
		case rules.HintMaxDailyHours:
			p.maxDailyHours = tighter(p.maxDailyHours, h.Value)
		case rules.HintBannedDays:
			for _, d := range h.Days {
				p.bannedDays[d] = true
			}
		case rules.HintForceECTSPrime:
			p.forcePrime = true
		case rules.HintForcePalindromeHours:
			p.forcePalindrome = true
		case rules.HintMinFreeDays:
			p.minFreeDays = max(p.minFreeDays, h.Value)
		}
	}
	p.ectsTarget = max(minECTS, minTotal-ctx.BankedECTS)
	return p
}

// foldParity keeps a mandatory parity over a goal one. Two opposite parities
// of the same category leave nothing to place.
func (p *plan) foldParity(parity rules.Parity, binding bool) {
	switch {
	case p.parity == "" || p.parity == parity:
		p.parity = parity
		p.parityBinding = p.parityBinding || binding
	case binding && !p.parityBinding:
		p.parity, p.parityBinding = parity, true
	case !binding && p.parityBinding:
		// goal yields
	default:
		p.infeasible = true
	}
}

func tighter(current, next int) int {
	if current == 0 || next < current {
		return next
	}
	return current
}

// filterPool keeps the courses the plan and the history allow, in catalog order.
func (p *plan) filterPool(courses []models.Course, ctx rules.Context) {
	p.pool = p.pool[:0]
	if p.infeasible {
		return
	}
	for _, c := range courses {
		if p.admits(c) && !ctx.Taken(c.SubjectID) && len(rules.MissingPrerequisites(c, ctx)) == 0 {
			p.pool = append(p.pool, c)
		}
	}
}

func (p *plan) admits(c models.Course) bool {
	for _, t := range c.Tags {
		if p.bannedTags[t] {
			return false
		}
	}
	if p.bannedDays[c.Block.Day] {
		return false
	}
	for _, w := range p.bannedWindows {
		if w.Overlaps(c.Block) {
			return false
		}
	}
	if c.Block.StartHour < p.minStartHour {
		return false
	}
	if len([]rune(c.Name)) < p.minNameLength {
		return false
	}
	if p.parity != "" && !p.parity.Matches(c.Block.StartHour) {
		return false
	}
	return true
}

func (p *plan) withTag(tag models.Tag) []models.Course {
	var out []models.Course
	for _, c := range p.pool {
		if c.HasTag(tag) {
			out = append(out, c)
		}
	}
	return out
}

func (p *plan) ofSubject(subject string, t models.CourseType) []models.Course {
	var out []models.Course
	for _, c := range p.pool {
		if c.SubjectID == subject && c.Type == t {
			out = append(out, c)
		}
	}
	return out
}
