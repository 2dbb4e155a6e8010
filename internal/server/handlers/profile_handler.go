package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
	"github.com/mamadbah2/agriplanner/internal/repository/mongodb"
	"github.com/mamadbah2/agriplanner/internal/server/middleware"
	"github.com/mamadbah2/agriplanner/internal/service/profile"
)

// ProfileService reads and edits farm profiles.
type ProfileService interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
	Update(ctx context.Context, userID, farmName, location string, preferredCrops []string) (models.Profile, error)
}

// ProfileHandler serves the caller's profile.
type ProfileHandler struct {
	svc    ProfileService
	logger *zap.Logger
}

// NewProfileHandler constructs the profile HTTP adapter.
func NewProfileHandler(svc ProfileService, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{svc: svc, logger: logger}
}

type updateProfileRequest struct {
	FarmName       string   `json:"farm_name"`
	Location       string   `json:"location"`
	PreferredCrops []string `json:"preferred_crops"`
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), middleware.UserID(c))
	h.respond(c, p, err)
}

// Update replaces the editable fields of the caller's profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.svc.Update(c.Request.Context(), middleware.UserID(c), req.FarmName, req.Location, req.PreferredCrops)
	h.respond(c, p, err)
}

func (h *ProfileHandler) respond(c *gin.Context, p models.Profile, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, mongodb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	case errors.Is(err, profile.ErrUnknownCrop):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("profile request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to process profile"})
	}
}
