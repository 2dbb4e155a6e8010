package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

// PriceService lists known quotes.
type PriceService interface {
	List(ctx context.Context) ([]models.PriceQuote, error)
}

// PriceHandler serves the crop and price picker.
type PriceHandler struct {
	svc    PriceService
	logger *zap.Logger
}

// NewPriceHandler constructs the price HTTP adapter.
func NewPriceHandler(svc PriceService, logger *zap.Logger) *PriceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceHandler{svc: svc, logger: logger}
}

// List returns the crop catalogue and every stored quote.
func (h *PriceHandler) List(c *gin.Context) {
	quotes, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing prices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load prices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"crops": models.CropOptions, "prices": quotes})
}
