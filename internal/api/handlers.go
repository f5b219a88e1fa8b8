// internal/api/handlers.go
package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "scenario-builder/internal/errors"
	"scenario-builder/internal/models"
	"scenario-builder/internal/services"
	"scenario-builder/internal/storage"
)

// sessionEntry pairs a session with its own mutex: commands against one
// session run single-flight, sessions are independent.
type sessionEntry struct {
	mu      sync.Mutex
	session *services.Session
}

// Handler binds HTTP requests to stage-controller commands. No domain logic
// lives here.
type Handler struct {
	controller *services.StageController
	gateway    *services.GenerationService
	store      *storage.ProjectStore
	respond    *ResponseHelper
	logger     *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewHandler(
	controller *services.StageController,
	gateway *services.GenerationService,
	store *storage.ProjectStore,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		controller: controller,
		gateway:    gateway,
		store:      store,
		respond:    NewResponseHelper(),
		logger:     logger,
		sessions:   make(map[string]*sessionEntry),
	}
}

func (h *Handler) getSession(c *gin.Context) (*sessionEntry, bool) {
	id := c.Param("id")

	h.mu.RLock()
	entry, ok := h.sessions[id]
	h.mu.RUnlock()

	if !ok {
		h.respond.NotFound(c, ErrorSessionNotFound, "session not found")
		return nil, false
	}
	return entry, true
}

func (h *Handler) putSession(session *services.Session) {
	h.mu.Lock()
	h.sessions[session.ID] = &sessionEntry{session: session}
	h.mu.Unlock()
}

// mapError translates controller and service errors to envelope responses.
// Typed AppErrors carry their own code; sentinels map to the domain codes.
func (h *Handler) mapError(c *gin.Context, err error) {
	var validation *services.ValidationError
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &validation):
		h.respond.Error(c, http.StatusBadRequest, ErrorValidation, validation.Error())
	case errors.As(err, &appErr):
		h.respond.Error(c, statusForAppError(appErr.Type), appErr.Code, appErr.Message)
	case errors.Is(err, services.ErrServiceNotReady):
		h.respond.Unavailable(c, ErrorGatewayNotReady, h.gateway.ReadyState())
	case errors.Is(err, services.ErrResponseNotJSON):
		h.respond.Error(c, http.StatusBadGateway, ErrorResponseNotJSON, err.Error())
	case errors.Is(err, services.ErrGenerationFailed):
		h.respond.Error(c, http.StatusBadGateway, ErrorGenerationFailed, err.Error())
	case errors.Is(err, services.ErrNoSelection):
		h.respond.Conflict(c, ErrorNoScenarioSelected, err.Error())
	case errors.Is(err, services.ErrScreensIncomplete):
		h.respond.Conflict(c, ErrorScreensIncomplete, err.Error())
	case errors.Is(err, services.ErrNothingToResume):
		h.respond.NotFound(c, ErrorNothingToResume, err.Error())
	default:
		h.respond.InternalError(c, err.Error())
	}
}

func statusForAppError(errType apperrors.ErrorType) int {
	switch errType {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ---- health and projects ----

func (h *Handler) Health(c *gin.Context) {
	h.respond.Success(c, gin.H{
		"status":        "ok",
		"gateway_ready": h.gateway.IsReady(),
		"gateway_state": h.gateway.ReadyState(),
	})
}

func (h *Handler) ListProjects(c *gin.Context) {
	courses, err := h.store.ListProjects()
	if err != nil {
		h.respond.InternalError(c, "listing projects failed", err.Error())
		return
	}
	h.respond.Success(c, gin.H{"courses": courses})
}

func (h *Handler) ListModules(c *gin.Context) {
	course := c.Param("course")
	modules, err := h.store.ListModules(course)
	if err != nil {
		h.respond.InternalError(c, "listing modules failed", err.Error())
		return
	}
	h.respond.Success(c, gin.H{"course": course, "modules": modules})
}

// ---- session lifecycle ----

type newSessionRequest struct {
	Course string `json:"course"`
	Module string `json:"module"`
}

// NewSession creates a fresh session, or resumes a saved project when a
// course/module pair is supplied.
func (h *Handler) NewSession(c *gin.Context) {
	var req newSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.respond.BadRequest(c, "invalid request body", err.Error())
			return
		}
	}

	var session *services.Session
	if req.Course != "" && req.Module != "" {
		resumed, err := h.controller.Resume(req.Course, req.Module)
		if err != nil {
			h.mapError(c, err)
			return
		}
		session = resumed
	} else {
		session = services.NewSession()
	}

	h.putSession(session)
	h.respond.Created(c, session)
}

func (h *Handler) GetSession(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	h.respond.Success(c, entry.session)
}

// ---- setup and review ----

func (h *Handler) SubmitSetup(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var projectContext models.ProjectContext
	if err := c.ShouldBindJSON(&projectContext); err != nil {
		h.respond.BadRequest(c, "invalid project context", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.SubmitSetup(entry.session, &projectContext); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

func (h *Handler) UpdateContext(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var projectContext models.ProjectContext
	if err := c.ShouldBindJSON(&projectContext); err != nil {
		h.respond.BadRequest(c, "invalid project context", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.UpdateContext(entry.session, &projectContext); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

func (h *Handler) ConfirmReview(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	h.controller.ConfirmReview(entry.session)
	h.respond.Success(c, entry.session)
}

func (h *Handler) StartOver(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	h.controller.StartOver(entry.session)
	h.respond.Success(c, entry.session)
}

// ---- scenario stage ----

func (h *Handler) GenerateScenarios(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	h.controller.GenerateScenarios(c.Request.Context(), entry.session)
	h.respond.Success(c, entry.session)
}

type selectScenarioRequest struct {
	Index *int `json:"index" binding:"required"`
}

func (h *Handler) SelectScenario(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var req selectScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, "index is required", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.SelectScenario(entry.session, *req.Index); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

type editScenarioRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) EditScenario(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var req editScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, "text is required", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.EditScenario(entry.session, req.Text); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

type refineScenarioRequest struct {
	Instructions string `json:"instructions" binding:"required"`
}

func (h *Handler) RefineScenario(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var req refineScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, "instructions are required", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.RefineScenario(c.Request.Context(), entry.session, req.Instructions); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

func (h *Handler) UseExistingScenario(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.UseExistingScenario(entry.session); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

func (h *Handler) SaveScenario(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.SaveScenario(entry.session); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

// ---- metadata stage ----

func (h *Handler) GenerateMetadata(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.GenerateMetadata(c.Request.Context(), entry.session); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

func (h *Handler) UpdateMetadata(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var metadata models.ScenarioMetadata
	if err := c.ShouldBindJSON(&metadata); err != nil {
		h.respond.BadRequest(c, "invalid metadata", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	h.controller.UpdateMetadata(entry.session, &metadata)
	h.respond.Success(c, entry.session)
}

func (h *Handler) UseExistingMetadata(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.UseExistingMetadata(entry.session); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

func (h *Handler) SaveMetadata(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.SaveMetadata(entry.session); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

// ---- screens stage ----

func (h *Handler) GenerateScreens(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.GenerateScreens(c.Request.Context(), entry.session); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

type updateScreensRequest struct {
	Screens []models.Screen `json:"screens" binding:"required"`
}

func (h *Handler) UpdateScreens(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var req updateScreensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, "screens are required", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.UpdateScreens(entry.session, req.Screens); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

func (h *Handler) SaveScreens(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.SaveScreens(entry.session); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

// ---- images stage ----

type screenIndexRequest struct {
	Index *int `json:"index" binding:"required"`
}

func (h *Handler) GenerateImage(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var req screenIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, "index is required", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.GenerateImage(c.Request.Context(), entry.session, *req.Index); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

func (h *Handler) RegenerateImage(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var req screenIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, "index is required", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.RegenerateImage(c.Request.Context(), entry.session, *req.Index); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

func (h *Handler) AcceptImage(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	var req screenIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, "index is required", err.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.AcceptImage(entry.session, *req.Index); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

// ---- preview stage ----

func (h *Handler) EnterPreview(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := h.controller.EnterPreview(entry.session); err != nil {
		h.mapError(c, err)
		return
	}
	h.respond.Success(c, entry.session)
}

// PreviewFrame serves one composited PNG frame. Index is 1-based to match
// the screen numbering in the saved filenames.
func (h *Handler) PreviewFrame(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 1 {
		h.respond.BadRequest(c, "invalid frame index")
		return
	}

	entry.mu.Lock()
	course := entry.session.CourseTitle()
	module := entry.session.ModuleTitle()
	entry.mu.Unlock()

	data, err := h.store.LoadCompositedFrame(course, module, index)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			h.respond.NotFound(c, ErrorFrameNotFound, "composited frame not found")
			return
		}
		h.respond.InternalError(c, "reading frame failed", err.Error())
		return
	}

	h.respond.PNGResponse(c, data)
}

// Back steps the session to the previous stage.
func (h *Handler) Back(c *gin.Context) {
	entry, ok := h.getSession(c)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	h.controller.Back(entry.session)
	h.respond.Success(c, entry.session)
}
