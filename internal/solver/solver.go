// Package solver searches the course pool for a timetable that passes a level.
package solver

import (
	"go.uber.org/zap"

	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/scheduling"
	"github.com/noah-isme/ects-quest/pkg/random"
)

const (
	DefaultMaxAttempts     = 5000
	DefaultGoalWaiverRatio = 0.9
)

// Courses is the catalog view the solver needs.
type Courses interface {
	rules.CourseIndex
	Courses() []models.Course
}

// Config bounds the search.
type Config struct {
	MaxAttempts     int
	GoalWaiverRatio float64
}

// Outcome reports how a solve ended. On failure the selection is cleared.
type Outcome struct {
	Solved      bool             `json:"solved"`
	Attempts    int              `json:"attempts"`
	GoalsWaived bool             `json:"goalsWaived"`
	Report      rules.Report     `json:"report"`
	Assessment  rules.Assessment `json:"assessment"`
}

// Solver runs bounded randomized retries guided by rule hints.
type Solver struct {
	courses Courses
	book    *rules.Catalog
	rng     random.Source
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Solver.
func New(courses Courses, book *rules.Catalog, rng random.Source, cfg Config, logger *zap.Logger) *Solver {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.GoalWaiverRatio <= 0 || cfg.GoalWaiverRatio > 1 {
		cfg.GoalWaiverRatio = DefaultGoalWaiverRatio
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{courses: courses, book: book, rng: rng, cfg: cfg, logger: logger}
}

// WithSource returns a copy of the solver drawing from src.
func (s *Solver) WithSource(src random.Source) *Solver {
	clone := *s
	clone.rng = src
	return &clone
}

// MaxAttempts returns the retry cap.
func (s *Solver) MaxAttempts() int {
	return s.cfg.MaxAttempts
}

// Solve fills sel with a timetable that passes level. It leaves the passing
// selection in place on success and an empty selection on exhaustion.
func (s *Solver) Solve(sel *scheduling.Selection, level int, history models.History) Outcome {
	base := rules.NewContext(level, history, nil, s.courses)
	active := s.book.Active(base)
	budget := s.book.Budget(level)
	all := s.courses.Courses()

	strict := minePlan(active, base, false)
	strict.filterPool(all, base)
	relaxed := minePlan(active, base, true)
	relaxed.filterPool(all, base)

	waiveAt := int(float64(s.cfg.MaxAttempts) * s.cfg.GoalWaiverRatio)
	var last Outcome
	for i := 0; i < s.cfg.MaxAttempts; i++ {
		p, waived := strict, false
		if i >= waiveAt {
			p, waived = relaxed, true
		}

		sel.Clear()
		a := &attempt{rng: s.rng, plan: p, sel: sel, index: s.courses, level: level}
		a.run()

		ctx := rules.NewContext(level, history, sel.Courses(), s.courses)
		report := rules.Validate(active, ctx)
		assessment := rules.Assess(report, ctx.Complex, budget)
		last = Outcome{Attempts: i + 1, GoalsWaived: waived, Report: report, Assessment: assessment}

		if !assessment.Passable {
			continue
		}
		if !numericGoalsMet(p, ctx) {
			continue
		}
		last.Solved = true
		s.logger.Debug("level solved",
			zap.Int("level", level),
			zap.Int("attempts", i+1),
			zap.Bool("goals_waived", waived),
			zap.Int("ects", ctx.Simple.CurrentSemesterECTS),
			zap.Int("willpower", assessment.EffectiveWillpower),
		)
		return last
	}

	sel.Clear()
	s.logger.Warn("solver exhausted",
		zap.Int("level", level),
		zap.Int("attempts", s.cfg.MaxAttempts),
		zap.Int("pool", len(relaxed.pool)),
	)
	return last
}

func numericGoalsMet(p *plan, ctx rules.Context) bool {
	if p.forcePrime && !rules.IsPrime(ctx.Simple.CurrentSemesterECTS) {
		return false
	}
	if p.forcePalindrome && (ctx.Complex.TotalContactHours == 0 || !rules.IsPalindrome(ctx.Complex.TotalContactHours)) {
		return false
	}
	return true
}
