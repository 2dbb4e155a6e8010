package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
	"github.com/mamadbah2/agriplanner/internal/service/insights"
)

// InsightsService provides the checklist, risk notes and weather alerts.
type InsightsService interface {
	Checklist() []models.ChecklistItem
	ChecklistProgress(checkedIDs []int) float64
	Risks() []models.RiskNote
	ActiveAlerts(ctx context.Context, now time.Time) ([]models.WeatherAlert, error)
	CreateAlert(ctx context.Context, alert models.WeatherAlert) (models.WeatherAlert, error)
}

// InfoHandler serves the informational pages.
type InfoHandler struct {
	svc    InsightsService
	logger *zap.Logger
}

// NewInfoHandler constructs the information HTTP adapter.
func NewInfoHandler(svc InsightsService, logger *zap.Logger) *InfoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InfoHandler{svc: svc, logger: logger}
}

type createAlertRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Severity    string     `json:"severity" binding:"omitempty,oneof=low medium high"`
	Region      string     `json:"region"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// Checklist returns the pre-sale checklist. An optional "checked" query of
// comma separated ids adds the completion percentage.
func (h *InfoHandler) Checklist(c *gin.Context) {
	var checked []int
	if raw := c.Query("checked"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "checked must be a comma separated list of ids"})
				return
			}
			checked = append(checked, id)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    h.svc.Checklist(),
		"progress": h.svc.ChecklistProgress(checked),
	})
}

// Risks returns the risk notes and the disclaimer.
func (h *InfoHandler) Risks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"risks": h.svc.Risks(), "disclaimer": insights.Disclaimer})
}

// Alerts returns the weather alerts currently in force.
func (h *InfoHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.ActiveAlerts(c.Request.Context(), time.Now())
	if err != nil {
		h.logger.Error("failed listing alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// CreateAlert publishes a new weather alert.
func (h *InfoHandler) CreateAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := h.svc.CreateAlert(c.Request.Context(), models.WeatherAlert{
		Title:       req.Title,
		Description: req.Description,
		Severity:    models.Severity(req.Severity),
		Region:      req.Region,
		ExpiresAt:   req.ExpiresAt,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, alert)
	case errors.Is(err, insights.ErrInvalidAlert):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed creating alert", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to create alert"})
	}
}
