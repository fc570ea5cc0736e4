package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ects-quest/internal/dto"
	"github.com/noah-isme/ects-quest/internal/game"
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/solver"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
	"github.com/noah-isme/ects-quest/pkg/random"
)

// CourseCatalog is the catalog the game service serves.
type CourseCatalog interface {
	game.Catalog
	Subjects() []models.Subject
}

// SnapshotStore persists session snapshots.
type SnapshotStore interface {
	Upsert(ctx context.Context, record *models.SnapshotRecord) error
	FindBySession(ctx context.Context, sessionID string) (*models.SnapshotRecord, error)
	Delete(ctx context.Context, sessionID string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// GameConfig governs session lifetime and solver seeding.
type GameConfig struct {
	SessionTTL time.Duration
	// Seed fixes the solver sequence of new sessions; zero seeds from the clock.
	Seed int64
}

// GameService hosts concurrent game sessions.
type GameService struct {
	catalog   CourseCatalog
	book      *rules.Catalog
	solver    *solver.Solver
	store     *sessionStore
	snapshots SnapshotStore
	cache     *SnapshotCache
	metrics   *MetricsService
	exporter  *ExportService
	validate  *validator.Validate
	logger    *zap.Logger
	cfg       GameConfig
	seq       int64
}

// NewGameService wires the session dependencies. snapshots may be nil when persistence is disabled.
func NewGameService(
	catalog CourseCatalog,
	book *rules.Catalog,
	slv *solver.Solver,
	snapshots SnapshotStore,
	snapshotCache *SnapshotCache,
	metrics *MetricsService,
	exporter *ExportService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg GameConfig,
) *GameService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewExportService(logger, nil, nil)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	return &GameService{
		catalog:   catalog,
		book:      book,
		solver:    slv,
		store:     newSessionStore(cfg.SessionTTL, logger.Named("sessions")),
		snapshots: snapshots,
		cache:     snapshotCache,
		metrics:   metrics,
		exporter:  exporter,
		validate:  validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Catalog lists every subject and course.
func (s *GameService) Catalog() dto.CatalogResponse {
	return dto.CatalogResponse{Subjects: s.catalog.Subjects(), Courses: s.catalog.Courses()}
}

// Levels lists the level table with each level's rules.
func (s *GameService) Levels() []rules.Level {
	return s.book.Levels()
}

// Level returns one level.
func (s *GameService) Level(number int) (rules.Level, error) {
	lvl, ok := s.book.Level(number)
	if !ok {
		return rules.Level{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("level %d not found", number))
	}
	return lvl, nil
}

// CreateSession starts a new game at level 1.
func (s *GameService) CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*dto.SessionState, error) {
	if swept := s.store.Sweep(); swept > 0 {
		s.logger.Info("expired sessions dropped", zap.Int("count", swept))
	}
	entry := s.newEntry(uuid.NewString(), s.nextSeed(req.Seed))
	s.store.Save(entry)
	s.metrics.SetActiveSessions(s.store.Len())
	s.logger.Info("session created", zap.String("session_id", entry.id), zap.Int64("seed", entry.seed))

	entry.mu.Lock()
	defer entry.mu.Unlock()
	state := s.state(entry)
	return &state, nil
}

// Maintain drops idle sessions and, when persistence is on, snapshots older than retention.
func (s *GameService) Maintain(ctx context.Context, retention time.Duration) error {
	if swept := s.store.Sweep(); swept > 0 {
		s.logger.Info("expired sessions dropped", zap.Int("count", swept))
	}
	s.metrics.SetActiveSessions(s.store.Len())
	if s.snapshots == nil || retention <= 0 {
		return nil
	}
	start := time.Now()
	purged, err := s.snapshots.PurgeOlderThan(ctx, start.Add(-retention))
	s.metrics.ObserveDBQuery("snapshot_purge", time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "purge snapshots")
	}
	if purged > 0 {
		s.logger.Info("stale snapshots purged", zap.Int64("count", purged))
	}
	return nil
}

func (s *GameService) nextSeed(requested *int64) int64 {
	if requested != nil {
		return *requested
	}
	if s.cfg.Seed != 0 {
		return s.cfg.Seed + atomic.AddInt64(&s.seq, 1) - 1
	}
	return time.Now().UnixNano()
}

func (s *GameService) newEntry(id string, seed int64) *sessionEntry {
	now := time.Now().UTC()
	slv := s.solver.WithSource(random.NewSeeded(seed))
	return &sessionEntry{
		id:        id,
		seed:      seed,
		session:   game.NewSession(s.catalog, s.book, slv),
		createdAt: now,
		updatedAt: now,
	}
}

func (s *GameService) withSession(id string, fn func(*sessionEntry) error) error {
	entry, ok := s.store.Get(id)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry)
}

func (s *GameService) mutate(id, op string, fn func(*sessionEntry) error) (*dto.SessionState, error) {
	var state dto.SessionState
	err := s.withSession(id, func(e *sessionEntry) error {
		if err := fn(e); err != nil {
			return err
		}
		e.updatedAt = time.Now().UTC()
		state = s.state(e)
		return nil
	})
	if err != nil {
		s.logger.Debug("session mutation rejected", zap.String("session_id", id), zap.String("op", op), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("session mutated", zap.String("session_id", id), zap.String("op", op), zap.Int("selected", len(state.Selection)))
	return &state, nil
}

func (s *GameService) state(e *sessionEntry) dto.SessionState {
	sess := e.session
	history := sess.History()
	state := dto.SessionState{
		ID:         e.id,
		Level:      sess.Level(),
		Budget:     s.book.Budget(sess.Level()),
		Finished:   sess.Finished(),
		Selection:  sess.Selection(),
		History:    history,
		BankedECTS: history.TotalECTS(),
		TotalScore: history.TotalScore(),
		CreatedAt:  e.createdAt,
		UpdatedAt:  e.updatedAt,
	}
	if lvl, ok := s.book.Level(sess.Level()); ok {
		state.LevelTitle = lvl.Title
	}
	if state.History == nil {
		state.History = []models.HistoryRecord{}
	}
	return state
}

// GetSession returns the current state of a session.
func (s *GameService) GetSession(ctx context.Context, id string) (*dto.SessionState, error) {
	var state dto.SessionState
	err := s.withSession(id, func(e *sessionEntry) error {
		state = s.state(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// DeleteSession drops a session from memory and from snapshot storage.
func (s *GameService) DeleteSession(ctx context.Context, id string) error {
	if !s.store.Delete(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	s.metrics.SetActiveSessions(s.store.Len())
	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, id); err != nil && !errors.Is(err, appErrors.ErrNotFound) {
			s.logger.Warn("delete snapshot", zap.String("session_id", id), zap.Error(err))
		}
	}
	s.cache.Forget(ctx, id)
	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// CanAdd checks a course against the selection without changing it.
func (s *GameService) CanAdd(ctx context.Context, id, courseID string) (*dto.CanAddResponse, error) {
	resp := &dto.CanAddResponse{CourseID: courseID, Conflicting: []string{}}
	err := s.withSession(id, func(e *sessionEntry) error {
		check, err := e.session.CanAdd(courseID)
		if err != nil {
			return err
		}
		resp.Allowed = check.Allowed
		for _, c := range check.Conflicting {
			resp.Conflicting = append(resp.Conflicting, c.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// AddCourse selects a course.
func (s *GameService) AddCourse(ctx context.Context, id string, req dto.CourseRequest) (*dto.SessionState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return s.mutate(id, "add", func(e *sessionEntry) error {
		return e.session.AddCourse(req.CourseID)
	})
}

// RemoveCourse deselects a course.
func (s *GameService) RemoveCourse(ctx context.Context, id, courseID string) (*dto.SessionState, error) {
	return s.mutate(id, "remove", func(e *sessionEntry) error {
		return e.session.RemoveCourse(courseID)
	})
}

// ClearSelection empties the selection.
func (s *GameService) ClearSelection(ctx context.Context, id string) (*dto.SessionState, error) {
	return s.mutate(id, "clear", func(e *sessionEntry) error {
		e.session.ClearAll()
		return nil
	})
}

// Metadata returns both metadata layers of the selection.
func (s *GameService) Metadata(ctx context.Context, id string) (*dto.MetadataResponse, error) {
	var resp dto.MetadataResponse
	err := s.withSession(id, func(e *sessionEntry) error {
		resp = dto.MetadataResponse{
			Level:   e.session.Level(),
			Simple:  e.session.SimpleMetadata(),
			Complex: e.session.ComplexMetadata(),
			Slots:   e.session.Slots(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate evaluates the active rules of the current level.
func (s *GameService) Validate(ctx context.Context, id string) (*dto.ValidationResponse, error) {
	var resp dto.ValidationResponse
	err := s.withSession(id, func(e *sessionEntry) error {
		v := e.session.Validation()
		resp = dto.ValidationResponse{Level: v.Level, Report: v.Report, Assessment: v.Assessment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Solve lets the solver pick the selection for the current level.
func (s *GameService) Solve(ctx context.Context, id string) (*dto.SolveResponse, error) {
	var resp dto.SolveResponse
	err := s.withSession(id, func(e *sessionEntry) error {
		if e.session.Finished() {
			return appErrors.Clone(appErrors.ErrConflict, "all levels are already completed")
		}
		start := time.Now()
		outcome := e.session.Solve()
		e.updatedAt = time.Now().UTC()
		s.metrics.ObserveSolve(e.session.Level(), outcome.Attempts, outcome.Solved)
		s.logger.Info("solve finished",
			zap.String("session_id", e.id),
			zap.Int("level", e.session.Level()),
			zap.Bool("solved", outcome.Solved),
			zap.Int("attempts", outcome.Attempts),
			zap.Bool("goals_waived", outcome.GoalsWaived),
			zap.Duration("elapsed", time.Since(start)),
		)
		resp = dto.SolveResponse{Outcome: outcome, Session: s.state(e)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompleteLevel banks the selection and advances. With persistence on, the new
// state is saved as the session snapshot.
func (s *GameService) CompleteLevel(ctx context.Context, id string) (*dto.CompleteLevelResponse, error) {
	var (
		resp dto.CompleteLevelResponse
		snap models.Snapshot
	)
	err := s.withSession(id, func(e *sessionEntry) error {
		record, err := e.session.CompleteLevel()
		if err != nil {
			return err
		}
		e.updatedAt = time.Now().UTC()
		snap = e.session.Snapshot()
		resp = dto.CompleteLevelResponse{Record: record, Session: s.state(e)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLevelCompleted(resp.Record.Level)
	s.logger.Info("level completed",
		zap.String("session_id", id),
		zap.Int("level", resp.Record.Level),
		zap.Int("ects", resp.Record.ECTSEarned),
		zap.Int("score", resp.Record.ScoreEarned),
		zap.Int("willpower", resp.Record.WillpowerCost),
	)
	if s.snapshots != nil {
		if _, err := s.persist(ctx, id, snap); err != nil {
			s.logger.Warn("autosave failed", zap.String("session_id", id), zap.Error(err))
		}
	}
	return &resp, nil
}

// Snapshot returns the in-memory state as a snapshot.
func (s *GameService) Snapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := s.withSession(id, func(e *sessionEntry) error {
		snap = e.session.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Restore replaces the session state with a client supplied snapshot.
func (s *GameService) Restore(ctx context.Context, id string, req dto.RestoreSessionRequest) (*dto.SessionState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	snap := models.Snapshot{Level: req.Level, History: req.History, Selection: req.Selection}
	return s.mutate(id, "restore", func(e *sessionEntry) error {
		return e.session.Restore(snap)
	})
}

// SaveSnapshot persists the session state.
func (s *GameService) SaveSnapshot(ctx context.Context, id string) (*models.SnapshotRecord, error) {
	if s.snapshots == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "snapshot persistence is disabled")
	}
	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, id, *snap)
}

func (s *GameService) persist(ctx context.Context, id string, snap models.Snapshot) (*models.SnapshotRecord, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode snapshot")
	}
	record := &models.SnapshotRecord{SessionID: id, Level: snap.Level, Payload: payload}
	start := time.Now()
	err = s.snapshots.Upsert(ctx, record)
	s.metrics.ObserveDBQuery("snapshot_upsert", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "save snapshot")
	}
	s.cache.Store(ctx, id, snap)
	s.logger.Info("snapshot saved", zap.String("session_id", id), zap.Int("level", snap.Level))
	return record, nil
}

func (s *GameService) loadSnapshot(ctx context.Context, id string) (models.Snapshot, error) {
	if snap, hit := s.cache.Load(ctx, id); hit {
		return snap, nil
	}

	start := time.Now()
	record, err := s.snapshots.FindBySession(ctx, id)
	s.metrics.ObserveDBQuery("snapshot_find", time.Since(start))
	if err != nil {
		return models.Snapshot{}, err
	}
	snap, err := record.Decode()
	if err != nil {
		return models.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode snapshot")
	}
	s.cache.Store(ctx, id, snap)
	return snap, nil
}

// Resume loads the persisted snapshot into a session with the same id,
// recreating the session when it has expired from memory.
func (s *GameService) Resume(ctx context.Context, id string) (*dto.SessionState, error) {
	if s.snapshots == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "snapshot persistence is disabled")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id must be a UUID")
	}
	snap, err := s.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := s.store.Ensure(id, func() *sessionEntry {
		return s.newEntry(id, s.nextSeed(nil))
	})
	s.metrics.SetActiveSessions(s.store.Len())

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := entry.session.Restore(snap); err != nil {
		return nil, err
	}
	entry.updatedAt = time.Now().UTC()
	s.logger.Info("session resumed", zap.String("session_id", id), zap.Int("level", snap.Level))
	state := s.state(entry)
	return &state, nil
}

// Export renders the session's current timetable.
func (s *GameService) Export(ctx context.Context, id string, format dto.ExportFormat) (*dto.ExportFile, error) {
	var file *dto.ExportFile
	err := s.withSession(id, func(e *sessionEntry) error {
		title := fmt.Sprintf("Level %d timetable", e.session.Level())
		if lvl, ok := s.book.Level(e.session.Level()); ok {
			title = fmt.Sprintf("Level %d: %s", lvl.Number, lvl.Title)
		}
		name := fmt.Sprintf("timetable_level%d_%s", e.session.Level(), e.id[:min(8, len(e.id))])
		var err error
		file, err = s.exporter.Timetable(name, title, e.session.Slots(), format)
		return err
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}
