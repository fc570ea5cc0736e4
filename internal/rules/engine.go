package rules

import "github.com/noah-isme/ects-quest/internal/metadata"

// Outcome pairs a rule with its result.
type Outcome struct {
	Rule   Rule   `json:"rule"`
	Result Result `json:"result"`
}

// Report partitions the active rules into satisfied and violated, each in catalog order.
type Report struct {
	Satisfied []Outcome `json:"satisfied"`
	Violated  []Outcome `json:"violated"`
}

// Validate evaluates every active rule exactly once against ctx.
func Validate(active []Rule, ctx Context) Report {
	report := Report{Satisfied: []Outcome{}, Violated: []Outcome{}}
	for _, r := range active {
		res := Evaluate(r, ctx)
		if res.Satisfied {
			report.Satisfied = append(report.Satisfied, Outcome{Rule: r, Result: res})
			continue
		}
		report.Violated = append(report.Violated, Outcome{Rule: r, Result: res})
	}
	return report
}

// RequiredSatisfied reports whether no Mandatory rule was violated.
func (r Report) RequiredSatisfied() bool {
	for _, o := range r.Violated {
		if o.Rule.Blocking() {
			return false
		}
	}
	return true
}

// BlockingViolations lists the violated Mandatory rules.
func (r Report) BlockingViolations() []Outcome {
	var out []Outcome
	for _, o := range r.Violated {
		if o.Rule.Blocking() {
			out = append(out, o)
		}
	}
	return out
}

// Score sums the rewards of satisfied rules.
func (r Report) Score() int {
	total := 0
	for _, o := range r.Satisfied {
		total += o.Rule.Reward
	}
	return total
}

// StressModifier sums the willpower adjustments of satisfied rules.
func (r Report) StressModifier() int {
	total := 0
	for _, o := range r.Satisfied {
		total += o.Rule.StressModifier
	}
	return total
}

// Assessment combines the rule gate and the willpower budget gate.
type Assessment struct {
	RulesPassed        bool `json:"rulesPassed"`
	WithinBudget       bool `json:"withinBudget"`
	Passable           bool `json:"passable"`
	Budget             int  `json:"budget"`
	Willpower          int  `json:"willpower"`
	EffectiveWillpower int  `json:"effectiveWillpower"`
	Score              int  `json:"score"`
}

// Assess applies both gates. The budget gate is independent of rule outcomes.
func Assess(report Report, cx metadata.Complex, budget int) Assessment {
	effective := cx.WillpowerCost + report.StressModifier()
	if effective < 0 {
		effective = 0
	}
	a := Assessment{
		RulesPassed:        report.RequiredSatisfied(),
		WithinBudget:       effective <= budget,
		Budget:             budget,
		Willpower:          cx.WillpowerCost,
		EffectiveWillpower: effective,
		Score:              report.Score(),
	}
	a.Passable = a.RulesPassed && a.WithinBudget
	return a
}
