package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
)

func TestMinePlanStartParity(t *testing.T) {
	even := rules.StartParity("even", rules.ParityEven)
	odd := rules.StartParity("odd", rules.ParityOdd)

	cases := []struct {
		name       string
		active     []rules.Rule
		parity     rules.Parity
		infeasible bool
	}{
		{name: "mandatory beats later goal", active: []rules.Rule{even, odd.AsGoal()}, parity: rules.ParityEven},
		{name: "mandatory beats earlier goal", active: []rules.Rule{odd.AsGoal(), even}, parity: rules.ParityEven},
		{name: "same parity twice", active: []rules.Rule{even.AsGoal(), even}, parity: rules.ParityEven},
		{name: "opposing mandatory", active: []rules.Rule{even, odd}, infeasible: true},
		{name: "opposing goals", active: []rules.Rule{even.AsGoal(), odd.AsGoal()}, infeasible: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := minePlan(tc.active, rules.Context{}, false)

			assert.Equal(t, tc.infeasible, p.infeasible)
			if !tc.infeasible {
				assert.Equal(t, tc.parity, p.parity)
			}
		})
	}
}

func TestInfeasiblePlanHasEmptyPool(t *testing.T) {
	cat := smallCatalog(t,
		offering{subject: "A", typ: models.CourseTypeLecture, day: models.Tuesday, start: 10, ects: 4},
		offering{subject: "B", typ: models.CourseTypeLecture, day: models.Wednesday, start: 11, ects: 4},
	)
	ctx := rules.NewContext(1, nil, nil, cat)
	p := minePlan([]rules.Rule{
		rules.StartParity("even", rules.ParityEven),
		rules.StartParity("odd", rules.ParityOdd),
	}, ctx, false)

	p.filterPool(cat.Courses(), ctx)

	assert.Empty(t, p.pool)
}

func TestWaivedPlanDropsOnlyNumericGoals(t *testing.T) {
	active := []rules.Rule{
		rules.ECTSPrime("prime").AsGoal(),
		rules.ContactPalindrome("palindrome").AsGoal(),
		rules.FreeDays("free-friday", models.Friday).AsGoal(),
		rules.MinStartHour("sleep-in", 10).AsGoal(),
	}

	strict := minePlan(active, rules.Context{}, false)
	waived := minePlan(active, rules.Context{}, true)

	assert.True(t, strict.forcePrime)
	assert.True(t, strict.forcePalindrome)
	assert.False(t, waived.forcePrime)
	assert.False(t, waived.forcePalindrome)
	assert.True(t, waived.bannedDays[models.Friday])
	assert.Equal(t, 10, waived.minStartHour)
}
