package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/modelstore"
	"github.com/grokmeetu/meetu-backend/internal/services"
)

// AdminHandler owns the training and model-management routes.
type AdminHandler struct {
	log     *logger.Logger
	trainer services.TrainingService
	store   modelstore.Store
}

func NewAdminHandler(log *logger.Logger, trainer services.TrainingService, store modelstore.Store) *AdminHandler {
	return &AdminHandler{
		log:     log.With("handler", "AdminHandler"),
		trainer: trainer,
		store:   store,
	}
}

// POST /admin/train
// Training runs in the background worker; the request is acknowledged
// immediately.
func (h *AdminHandler) Train(c *gin.Context) {
	var req services.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.trainer.Enqueue(req); err != nil {
		RespondError(c, http.StatusServiceUnavailable, "training_busy", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "training enqueued"})
}

// GET /admin/models
func (h *AdminHandler) ListModels(c *gin.Context) {
	versions, err := h.store.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]gin.H, 0, len(versions))
	for _, v := range versions {
		out = append(out, gin.H{
			"key":     v.Key,
			"version": v.Info.Timestamp,
			"metrics": v.Info.Metrics,
		})
	}
	RespondOK(c, gin.H{"models": out})
}

// DELETE /admin/models/:key
func (h *AdminHandler) DeleteModel(c *gin.Context) {
	key := c.Param("key")
	if err := h.store.Delete(key); err != nil {
		respondServiceError(c, err)
		return
	}
	h.log.Info("Model artifact deleted", "key", key)
	RespondOK(c, gin.H{"key": key, "deleted": true})
}

// POST /admin/models/:key/activate
// Copies an archived artifact over the serving slot; the manager picks the
// new stamp up on the next predict.
func (h *AdminHandler) ActivateModel(c *gin.Context) {
	key := c.Param("key")
	info, err := h.store.Activate(key)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.log.Info("Model artifact activated", "key", key, "version", info.Timestamp)
	RespondOK(c, gin.H{"key": key, "version": info.Timestamp})
}
