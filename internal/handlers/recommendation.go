package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grokmeetu/meetu-backend/internal/apierr"
	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/services"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

type createRecommendationsRequest struct {
	UserID     string                      `json:"user_id" binding:"required"`
	Filters    *types.RecommendationFilter `json:"filters,omitempty"`
	Thresholds *types.Thresholds           `json:"thresholds,omitempty"`
}

type updateRecommendationsRequest struct {
	Filters    *types.RecommendationFilter `json:"filters,omitempty"`
	Thresholds *types.Thresholds           `json:"thresholds,omitempty"`
}

type batchCreateRequest struct {
	UserIDs    []string                    `json:"user_ids" binding:"required"`
	Filters    *types.RecommendationFilter `json:"filters,omitempty"`
	Thresholds *types.Thresholds           `json:"thresholds,omitempty"`
}

type cacheInfo struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type recommendationResponse struct {
	UserID          string                      `json:"user_id"`
	Recommendations []types.RecommendationItem  `json:"recommendations"`
	FiltersApplied  *types.RecommendationFilter `json:"filters_applied,omitempty"`
	ModelVersion    string                      `json:"model_version"`
	CacheInfo       cacheInfo                   `json:"cache_info"`
}

type batchCreateResponse struct {
	Results map[string]any `json:"results"`
}

func toResponse(list *types.RecommendationList, source string) recommendationResponse {
	items := list.Items
	if items == nil {
		items = []types.RecommendationItem{}
	}
	return recommendationResponse{
		UserID:          list.UserID,
		Recommendations: items,
		FiltersApplied:  list.Filters,
		ModelVersion:    list.ModelVersion,
		CacheInfo:       cacheInfo{Source: source, Timestamp: list.GeneratedAt},
	}
}

// POST /api/recommendations
func (h *RecommendationHandler) Create(c *gin.Context) {
	var req createRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	list, err := h.recSvc.Create(c.Request.Context(), req.UserID, req.Filters, req.Thresholds)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(list, "generated"))
}

// GET /api/recommendations/:user_id
func (h *RecommendationHandler) Get(c *gin.Context) {
	userID := c.Param("user_id")

	filters, err := filtersFromQuery(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	list, err := h.recSvc.Read(c.Request.Context(), userID, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, toResponse(list, "cache"))
}

// PUT /api/recommendations/:user_id
func (h *RecommendationHandler) Update(c *gin.Context) {
	userID := c.Param("user_id")

	var req updateRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	list, err := h.recSvc.Update(c.Request.Context(), userID, req.Filters, req.Thresholds)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, toResponse(list, "regenerated"))
}

// DELETE /api/recommendations/:user_id
func (h *RecommendationHandler) Delete(c *gin.Context) {
	userID := c.Param("user_id")

	if err := h.recSvc.Delete(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user_id": userID, "deleted": true})
}

// POST /api/recommendations/batch
func (h *RecommendationHandler) BatchCreate(c *gin.Context) {
	var req batchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.UserIDs) == 0 {
		RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("user_ids must not be empty"))
		return
	}

	results := h.recSvc.BatchCreate(c.Request.Context(), req.UserIDs, req.Filters, req.Thresholds)

	out := batchCreateResponse{Results: make(map[string]any, len(results))}
	for _, r := range results {
		if r.Err != nil {
			out.Results[r.UserID] = gin.H{"error": r.Err.Error()}
			continue
		}
		out.Results[r.UserID] = toResponse(r.List, "generated")
	}
	RespondOK(c, out)
}

// filtersFromQuery parses the post-hoc read filters. Validation failures
// carry their status so respondServiceError can pass them through.
func filtersFromQuery(c *gin.Context) (*types.RecommendationFilter, error) {
	var filters types.RecommendationFilter
	set := false

	if raw := c.Query("top_k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("top_k must be a non-negative integer"))
		}
		filters.TopK = &v
		set = true
	}
	if raw := c.Query("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("min_score must be a number"))
		}
		filters.MinScore = &v
		set = true
	}
	if raw := c.Query("topics"); raw != "" {
		for _, topic := range strings.Split(raw, ",") {
			if topic = strings.TrimSpace(topic); topic != "" {
				filters.Topics = append(filters.Topics, topic)
			}
		}
		set = len(filters.Topics) > 0 || set
	}
	if raw := c.Query("min_vibe_score"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("min_vibe_score must be an integer"))
		}
		filters.MinVibeScore = &v
		set = true
	}

	if !set {
		return nil, nil
	}
	return &filters, nil
}
