package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/ects-quest/internal/dto"
	"github.com/noah-isme/ects-quest/internal/game"
	"github.com/noah-isme/ects-quest/internal/metadata"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/solver"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
	"github.com/noah-isme/ects-quest/pkg/jobs"
	"github.com/noah-isme/ects-quest/pkg/random"
)

// VerificationConfig sizes the verification pool.
type VerificationConfig struct {
	Workers     int
	Retries     int
	Parallelism int
	// DefaultSeeds is the campaign count used when a request names no seeds.
	DefaultSeeds int
}

// VerificationService plays whole campaigns with seeded solvers to prove every
// level of the catalog can be passed in order.
type VerificationService struct {
	catalog game.Catalog
	book    *rules.Catalog
	solver  *solver.Solver
	metrics *MetricsService
	logger  *zap.Logger
	cfg     VerificationConfig
	pool    *jobs.Pool[[]int64]

	mu   sync.RWMutex
	runs map[string]*dto.VerificationRun
}

// NewVerificationService constructs the service. Call Start before Enqueue.
func NewVerificationService(catalog game.Catalog, book *rules.Catalog, slv *solver.Solver, metrics *MetricsService, logger *zap.Logger, cfg VerificationConfig) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	if cfg.DefaultSeeds <= 0 {
		cfg.DefaultSeeds = 8
	}
	s := &VerificationService{
		catalog: catalog,
		book:    book,
		solver:  slv,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		runs:    make(map[string]*dto.VerificationRun),
	}
	s.pool = jobs.NewPool("verification", s.handle, jobs.Options[[]int64]{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Backoff:    500 * time.Millisecond,
		OnGiveUp:   s.giveUp,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *VerificationService) Start(ctx context.Context) {
	s.pool.Start(ctx)
}

// Stop drains the worker pool.
func (s *VerificationService) Stop() {
	s.pool.Stop()
}

// Seeds resolves the seeds a request asks for.
func (s *VerificationService) Seeds(req dto.VerificationRequest) []int64 {
	if len(req.Seeds) > 0 {
		return append([]int64(nil), req.Seeds...)
	}
	n := req.Count
	if n <= 0 {
		n = s.cfg.DefaultSeeds
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = int64(i + 1)
	}
	return seeds
}

// Enqueue schedules a verification run and returns it in PENDING state.
func (s *VerificationService) Enqueue(ctx context.Context, req dto.VerificationRequest) (*dto.VerificationRun, error) {
	run := &dto.VerificationRun{
		ID:        uuid.NewString(),
		Status:    dto.VerificationPending,
		Seeds:     s.Seeds(req),
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()

	if err := s.pool.Submit(jobs.Task[[]int64]{ID: run.ID, Payload: run.Seeds}); err != nil {
		s.finish(run.ID, nil, err)
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "verification queue unavailable")
	}
	s.logger.Info("verification queued", zap.String("run_id", run.ID), zap.Int("seeds", len(run.Seeds)))
	return s.copyRun(run), nil
}

// Get returns a run by id.
func (s *VerificationService) Get(ctx context.Context, id string) (*dto.VerificationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "verification run not found")
	}
	return s.copyRun(run), nil
}

// List returns every run, newest first.
func (s *VerificationService) List(ctx context.Context) []dto.VerificationRun {
	s.mu.RLock()
	out := make([]dto.VerificationRun, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, *s.copyRun(run))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *VerificationService) copyRun(run *dto.VerificationRun) *dto.VerificationRun {
	cp := *run
	cp.Seeds = append([]int64(nil), run.Seeds...)
	cp.Campaigns = append([]dto.CampaignReport(nil), run.Campaigns...)
	return &cp
}

func (s *VerificationService) handle(ctx context.Context, task jobs.Task[[]int64]) error {
	s.setStatus(task.ID, dto.VerificationRunning)
	reports, err := s.Verify(ctx, task.Payload)
	if err != nil {
		return err
	}
	s.finish(task.ID, reports, nil)
	return nil
}

func (s *VerificationService) giveUp(task jobs.Task[[]int64], err error) {
	s.finish(task.ID, nil, err)
}

func (s *VerificationService) setStatus(id string, status dto.VerificationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = status
	}
}

func (s *VerificationService) finish(id string, reports []dto.CampaignReport, err error) {
	s.mu.Lock()
	run, ok := s.runs[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Campaigns = reports
	run.Status = dto.VerificationPassed
	if err != nil {
		run.Status = dto.VerificationFailed
		run.Error = err.Error()
	} else if !AllCompleted(reports) {
		run.Status = dto.VerificationFailed
		run.Error = "at least one campaign could not be completed"
	}
	status := run.Status
	s.mu.Unlock()

	s.metrics.ObserveVerification(string(status))
	s.logger.Info("verification finished", zap.String("run_id", id), zap.String("status", string(status)))
}

// Verify plays one campaign per seed in parallel and returns the reports in seed order.
func (s *VerificationService) Verify(ctx context.Context, seeds []int64) ([]dto.CampaignReport, error) {
	reports := make([]dto.CampaignReport, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			report, err := s.Campaign(gctx, seed)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Campaign plays every level in order with a solver seeded by seed. It stops at
// the first level the solver cannot pass.
func (s *VerificationService) Campaign(ctx context.Context, seed int64) (dto.CampaignReport, error) {
	sess := game.NewSession(s.catalog, s.book, s.solver.WithSource(random.NewSeeded(seed)))
	report := dto.CampaignReport{Seed: seed, Levels: []dto.LevelCheck{}}

	for !sess.Finished() {
		if err := ctx.Err(); err != nil {
			return dto.CampaignReport{}, err
		}
		level := sess.Level()
		outcome := sess.Solve()
		s.metrics.ObserveSolve(level, outcome.Attempts, outcome.Solved)
		check := dto.LevelCheck{
			Level:       level,
			Solved:      outcome.Solved,
			Attempts:    outcome.Attempts,
			GoalsWaived: outcome.GoalsWaived,
			Budget:      outcome.Assessment.Budget,
			Willpower:   outcome.Assessment.EffectiveWillpower,
			Score:       outcome.Assessment.Score,
		}
		if !outcome.Solved {
			check.Error = appErrors.ErrSolverExhausted.Message
			report.Levels = append(report.Levels, check)
			s.logger.Warn("campaign stuck", zap.Int64("seed", seed), zap.Int("level", level), zap.Int("attempts", outcome.Attempts))
			return report, nil
		}
		check.ECTS = metadata.CalculateSimple(sess.Selection()).CurrentSemesterECTS
		if _, err := sess.CompleteLevel(); err != nil {
			check.Solved = false
			check.Error = err.Error()
			report.Levels = append(report.Levels, check)
			return report, nil
		}
		report.Levels = append(report.Levels, check)
	}

	history := sess.History()
	report.Completed = true
	report.TotalECTS = history.TotalECTS()
	report.TotalScore = history.TotalScore()
	return report, nil
}

// AllCompleted reports whether every campaign reached the end.
func AllCompleted(reports []dto.CampaignReport) bool {
	for _, r := range reports {
		if !r.Completed {
			return false
		}
	}
	return true
}
