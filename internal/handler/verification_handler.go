package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/ects-quest/internal/dto"
	"github.com/noah-isme/ects-quest/internal/service"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
	"github.com/noah-isme/ects-quest/pkg/response"
)

type verificationService interface {
	Enqueue(ctx context.Context, req dto.VerificationRequest) (*dto.VerificationRun, error)
	Get(ctx context.Context, id string) (*dto.VerificationRun, error)
	List(ctx context.Context) []dto.VerificationRun
}

// VerificationHandler exposes level verification runs.
type VerificationHandler struct {
	service  verificationService
	validate *validator.Validate
}

// NewVerificationHandler constructs the handler.
func NewVerificationHandler(svc *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{service: svc, validate: validator.New()}
}

// Register mounts the routes on rg.
func (h *VerificationHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/verifications", h.Create)
	rg.GET("/verifications", h.List)
	rg.GET("/verifications/:id", h.Get)
}

// Create queues a run and answers 202.
func (h *VerificationHandler) Create(c *gin.Context) {
	var req dto.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}
	run, err := h.service.Enqueue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, run)
}

// List returns every run.
func (h *VerificationHandler) List(c *gin.Context) {
	runs := h.service.List(c.Request.Context())
	response.OK(c, runs, map[string]interface{}{"total": len(runs)})
}

// Get returns one run.
func (h *VerificationHandler) Get(c *gin.Context) {
	run, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, run)
}
