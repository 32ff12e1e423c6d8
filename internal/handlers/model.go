package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/services"
)

type ModelHandler struct {
	log    *logger.Logger
	models services.ModelManager
}

func NewModelHandler(log *logger.Logger, models services.ModelManager) *ModelHandler {
	return &ModelHandler{
		log:    log.With("handler", "ModelHandler"),
		models: models,
	}
}

// GET /api/model-info
func (h *ModelHandler) GetInfo(c *gin.Context) {
	info, err := h.models.Info(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"version":    info.Timestamp,
		"test_size":  info.TestSize,
		"parameters": info.Parameters,
		"metrics":    info.Metrics,
	})
}
