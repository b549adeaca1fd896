// Package handlers exposes the evaluation engine over HTTP. All diagnostic
// responsibility lives here: the engine itself never logs.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/claims"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/dates"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/engine"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/metrics"
)

// ClaimStore is the persistence surface the handlers require.
type ClaimStore interface {
	Create(ctx context.Context, cl *claims.Claim) error
	GetByID(ctx context.Context, id string) (*claims.Claim, error)
	List(ctx context.Context) ([]claims.Claim, error)
	AppendEvent(ctx context.Context, id string, event claims.TimelineEvent) error
	SetStatus(ctx context.Context, id string, paid, abandoned bool) error
	Delete(ctx context.Context, id string) error
}

// ClaimHandler handles claim CRUD and evaluation requests.
type ClaimHandler struct {
	store     ClaimStore
	evaluator *engine.Engine
	collector *metrics.Collector
	clock     dates.Clock
	logger    *zap.Logger
}

// NewClaimHandler creates a claim handler. The clock is injected so tests
// can pin the evaluation date.
func NewClaimHandler(
	store ClaimStore,
	evaluator *engine.Engine,
	collector *metrics.Collector,
	clock dates.Clock,
	logger *zap.Logger,
) *ClaimHandler {
	return &ClaimHandler{
		store:     store,
		evaluator: evaluator,
		collector: collector,
		clock:     clock,
		logger:    logger,
	}
}

// RegisterRoutes registers all claim-related routes.
func (h *ClaimHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")

	api.POST("/claims", h.CreateClaim)
	api.GET("/claims", h.ListClaims)
	api.GET("/claims/:claim_id", h.GetClaim)
	api.DELETE("/claims/:claim_id", h.DeleteClaim)
	api.POST("/claims/:claim_id/events", h.AppendEvent)
	api.PUT("/claims/:claim_id/status", h.UpdateStatus)

	api.POST("/claims/:claim_id/evaluate", h.EvaluateClaim)
	api.GET("/claims/:claim_id/assessment", h.GetAssessment)
	api.GET("/claims/:claim_id/workflow", h.GetWorkflow)

	api.POST("/evaluate", h.EvaluateSnapshot)

	router.GET("/health", h.Health)
}

// CreateClaim stores a new claim record.
func (h *ClaimHandler) CreateClaim(c *gin.Context) {
	var cl claims.Claim
	if err := c.ShouldBindJSON(&cl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim payload", "details": err.Error()})
		return
	}

	if err := h.store.Create(c.Request.Context(), &cl); err != nil {
		h.logger.Error("Failed to create claim", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create claim"})
		return
	}

	c.JSON(http.StatusCreated, cl)
}

// ListClaims returns every stored claim.
func (h *ClaimHandler) ListClaims(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list claims", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list claims"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": list, "count": len(list)})
}

// GetClaim returns one stored claim.
func (h *ClaimHandler) GetClaim(c *gin.Context) {
	cl, ok := h.loadClaim(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cl)
}

// DeleteClaim removes a stored claim.
func (h *ClaimHandler) DeleteClaim(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("claim_id")); err != nil {
		h.logger.Error("Failed to delete claim", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete claim"})
		return
	}
	c.Status(http.StatusNoContent)
}

type appendEventRequest struct {
	Type        claims.EventType `json:"type" binding:"required"`
	Date        time.Time        `json:"date" binding:"required"`
	Description string           `json:"description"`
}

// AppendEvent records a new timeline event on a claim.
func (h *ClaimHandler) AppendEvent(c *gin.Context) {
	var req appendEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload", "details": err.Error()})
		return
	}

	event := claims.NewTimelineEvent(req.Type, req.Date, req.Description)
	if err := h.store.AppendEvent(c.Request.Context(), c.Param("claim_id"), event); err != nil {
		h.logger.Error("Failed to append event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record event"})
		return
	}

	c.JSON(http.StatusCreated, event)
}

type statusRequest struct {
	Paid      bool `json:"paid"`
	Abandoned bool `json:"abandoned"`
}

// UpdateStatus sets the paid and abandoned flags on a claim.
func (h *ClaimHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status payload", "details": err.Error()})
		return
	}

	if err := h.store.SetStatus(c.Request.Context(), c.Param("claim_id"), req.Paid, req.Abandoned); err != nil {
		h.logger.Error("Failed to update claim status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}
	c.Status(http.StatusNoContent)
}

// EvaluateClaim runs the full engine over a stored claim.
func (h *ClaimHandler) EvaluateClaim(c *gin.Context) {
	cl, ok := h.loadClaim(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.evaluate(*cl))
}

// GetAssessment returns only the viability assessment for a stored claim.
func (h *ClaimHandler) GetAssessment(c *gin.Context) {
	cl, ok := h.loadClaim(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.evaluator.Assess(*cl, h.clock()))
}

// GetWorkflow returns only the workflow state for a stored claim.
func (h *ClaimHandler) GetWorkflow(c *gin.Context) {
	cl, ok := h.loadClaim(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.evaluator.Classify(*cl, h.clock()))
}

// EvaluateSnapshot evaluates a claim supplied in the request body without
// storing it.
func (h *ClaimHandler) EvaluateSnapshot(c *gin.Context) {
	var cl claims.Claim
	if err := c.ShouldBindJSON(&cl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim payload", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.evaluate(cl))
}

// Health reports service liveness.
func (h *ClaimHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": h.clock()})
}

func (h *ClaimHandler) evaluate(cl claims.Claim) engine.Result {
	started := time.Now()
	result := h.evaluator.Evaluate(cl, h.clock())
	if h.collector != nil {
		h.collector.RecordEvaluation(string(result.Workflow.Stage), time.Since(started))
	}
	return result
}

func (h *ClaimHandler) loadClaim(c *gin.Context) (*claims.Claim, bool) {
	id := c.Param("claim_id")
	cl, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load claim", zap.String("claim_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load claim"})
		return nil, false
	}
	if cl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
		return nil, false
	}
	return cl, true
}
