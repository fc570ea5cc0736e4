package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ects-quest/internal/dto"
	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/internal/rules"
	"github.com/noah-isme/ects-quest/internal/service"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
	"github.com/noah-isme/ects-quest/pkg/response"
)

type gameService interface {
	Catalog() dto.CatalogResponse
	Levels() []rules.Level
	Level(number int) (rules.Level, error)
	CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*dto.SessionState, error)
	GetSession(ctx context.Context, id string) (*dto.SessionState, error)
	DeleteSession(ctx context.Context, id string) error
	CanAdd(ctx context.Context, id, courseID string) (*dto.CanAddResponse, error)
	AddCourse(ctx context.Context, id string, req dto.CourseRequest) (*dto.SessionState, error)
	RemoveCourse(ctx context.Context, id, courseID string) (*dto.SessionState, error)
	ClearSelection(ctx context.Context, id string) (*dto.SessionState, error)
	Metadata(ctx context.Context, id string) (*dto.MetadataResponse, error)
	Validate(ctx context.Context, id string) (*dto.ValidationResponse, error)
	Solve(ctx context.Context, id string) (*dto.SolveResponse, error)
	CompleteLevel(ctx context.Context, id string) (*dto.CompleteLevelResponse, error)
	Snapshot(ctx context.Context, id string) (*models.Snapshot, error)
	Restore(ctx context.Context, id string, req dto.RestoreSessionRequest) (*dto.SessionState, error)
	SaveSnapshot(ctx context.Context, id string) (*models.SnapshotRecord, error)
	Resume(ctx context.Context, id string) (*dto.SessionState, error)
	Export(ctx context.Context, id string, format dto.ExportFormat) (*dto.ExportFile, error)
}

// GameHandler exposes catalog and session endpoints.
type GameHandler struct {
	service gameService
}

// NewGameHandler constructs the handler.
func NewGameHandler(svc *service.GameService) *GameHandler {
	return &GameHandler{service: svc}
}

// Register mounts the routes on rg.
func (h *GameHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/catalog", h.Catalog)
	rg.GET("/levels", h.Levels)
	rg.GET("/levels/:level", h.Level)

	sessions := rg.Group("/sessions")
	sessions.POST("", h.Create)
	sessions.GET("/:id", h.Get)
	sessions.DELETE("/:id", h.Delete)
	sessions.GET("/:id/courses/:courseId/check", h.CanAdd)
	sessions.POST("/:id/courses", h.AddCourse)
	sessions.DELETE("/:id/courses/:courseId", h.RemoveCourse)
	sessions.DELETE("/:id/courses", h.Clear)
	sessions.GET("/:id/metadata", h.Metadata)
	sessions.GET("/:id/validation", h.Validate)
	sessions.POST("/:id/solve", h.Solve)
	sessions.POST("/:id/complete", h.Complete)
	sessions.GET("/:id/snapshot", h.Snapshot)
	sessions.PUT("/:id/snapshot", h.Restore)
	sessions.POST("/:id/snapshot", h.Save)
	sessions.POST("/:id/resume", h.Resume)
	sessions.GET("/:id/export", h.Export)
}

// Catalog lists subjects and courses.
func (h *GameHandler) Catalog(c *gin.Context) {
	cat := h.service.Catalog()
	response.OK(c, cat, map[string]interface{}{"subjects": len(cat.Subjects), "courses": len(cat.Courses)})
}

// Levels lists the level table.
func (h *GameHandler) Levels(c *gin.Context) {
	response.OK(c, h.service.Levels())
}

// Level returns one level with its rules.
func (h *GameHandler) Level(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("level"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "level must be a number"))
		return
	}
	lvl, err := h.service.Level(number)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lvl)
}

// Create starts a session. The body is optional.
func (h *GameHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	state, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, state)
}

// Get returns the session state.
func (h *GameHandler) Get(c *gin.Context) {
	state, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

// Delete ends a session.
func (h *GameHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CanAdd checks a course against the selection.
func (h *GameHandler) CanAdd(c *gin.Context) {
	result, err := h.service.CanAdd(c.Request.Context(), c.Param("id"), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// AddCourse selects a course.
func (h *GameHandler) AddCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	state, err := h.service.AddCourse(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

// RemoveCourse deselects a course.
func (h *GameHandler) RemoveCourse(c *gin.Context) {
	state, err := h.service.RemoveCourse(c.Request.Context(), c.Param("id"), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

// Clear empties the selection.
func (h *GameHandler) Clear(c *gin.Context) {
	state, err := h.service.ClearSelection(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

// Metadata returns the simple and complex metadata.
func (h *GameHandler) Metadata(c *gin.Context) {
	meta, err := h.service.Metadata(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, meta)
}

// Validate returns the rule report.
func (h *GameHandler) Validate(c *gin.Context) {
	result, err := h.service.Validate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Solve runs the solver. An exhausted search is still a 200 with solved=false.
func (h *GameHandler) Solve(c *gin.Context) {
	result, err := h.service.Solve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, map[string]interface{}{"solved": result.Outcome.Solved, "attempts": result.Outcome.Attempts})
}

// Complete banks the level.
func (h *GameHandler) Complete(c *gin.Context) {
	result, err := h.service.CompleteLevel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Snapshot returns the in-memory state as a snapshot.
func (h *GameHandler) Snapshot(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snap)
}

// Restore replaces the state with the posted snapshot.
func (h *GameHandler) Restore(c *gin.Context) {
	var req dto.RestoreSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid snapshot payload"))
		return
	}
	state, err := h.service.Restore(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

// Save persists the snapshot.
func (h *GameHandler) Save(c *gin.Context) {
	record, err := h.service.SaveSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"sessionId": record.SessionID, "level": record.Level, "updatedAt": record.UpdatedAt})
}

// Resume reloads a persisted snapshot.
func (h *GameHandler) Resume(c *gin.Context) {
	state, err := h.service.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

// Export downloads the timetable as CSV or PDF.
func (h *GameHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
