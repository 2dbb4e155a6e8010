package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
	"github.com/mamadbah2/agriplanner/internal/repository/mongodb"
	"github.com/mamadbah2/agriplanner/internal/server/middleware"
	"github.com/mamadbah2/agriplanner/internal/service/calculations"
	"github.com/mamadbah2/agriplanner/internal/service/evaluator"
	"github.com/mamadbah2/agriplanner/internal/service/insights"
)

const missingPriceMessage = "no price data for this crop"

// CalculationService evaluates harvests and manages saved results.
type CalculationService interface {
	Calculate(ctx context.Context, input models.HarvestInput) (models.EvaluationResult, error)
	Save(ctx context.Context, userID string, result models.EvaluationResult) (models.SavedCalculation, error)
	History(ctx context.Context, userID string) ([]models.SavedCalculation, error)
	Delete(ctx context.Context, userID, id string) error
	Advise(ctx context.Context, result models.EvaluationResult) (string, error)
	Share(ctx context.Context, userID, id, phone string) error
}

// CalculationHandler serves the calculator and the history.
type CalculationHandler struct {
	svc    CalculationService
	logger *zap.Logger
}

// NewCalculationHandler constructs the calculation HTTP adapter.
func NewCalculationHandler(svc CalculationService, logger *zap.Logger) *CalculationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalculationHandler{svc: svc, logger: logger}
}

// harvestRequest mirrors the calculator form. Pointers let zero pass "required".
// Upper bounds keep every computed revenue finite.
type harvestRequest struct {
	CropName           string   `json:"cropName" binding:"required"`
	QuantityKg         float64  `json:"quantityKg" binding:"required,gte=1,lte=1e12"`
	HarvestDate        string   `json:"harvestDate" binding:"required"`
	ShelfLifeDays      int      `json:"shelfLifeDays" binding:"required,gte=1,lte=3650"`
	StorageLossPercent *float64 `json:"storageLossPercent" binding:"required,gte=0,lte=100"`
	DistanceMarketA    *float64 `json:"distanceMarketA" binding:"required,gte=0,lte=1e12"`
	DistanceMarketB    *float64 `json:"distanceMarketB" binding:"required,gte=0,lte=1e12"`
	TransportCostPerKm *float64 `json:"transportCostPerKm" binding:"required,gte=0,lte=1e12"`
}

func (r harvestRequest) toInput() (models.HarvestInput, error) {
	date, err := time.Parse("2006-01-02", r.HarvestDate)
	if err != nil {
		return models.HarvestInput{}, errors.New("harvestDate must be formatted as YYYY-MM-DD")
	}
	return models.HarvestInput{
		CropName:           r.CropName,
		QuantityKg:         r.QuantityKg,
		HarvestDate:        date,
		ShelfLifeDays:      r.ShelfLifeDays,
		StorageLossPercent: *r.StorageLossPercent,
		DistanceMarketA:    *r.DistanceMarketA,
		DistanceMarketB:    *r.DistanceMarketB,
		TransportCostPerKm: *r.TransportCostPerKm,
	}, nil
}

type shareRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type evaluationResponse struct {
	Result     models.EvaluationResult `json:"result"`
	BestNet    string                  `json:"best_net_formatted"`
	Disclaimer string                  `json:"disclaimer"`
}

// Evaluate compares the four scenarios without saving them.
func (h *CalculationHandler) Evaluate(c *gin.Context) {
	result, ok := h.calculate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newEvaluationResponse(result))
}

// Create evaluates the request and stores it in the caller's history.
func (h *CalculationHandler) Create(c *gin.Context) {
	result, ok := h.calculate(c)
	if !ok {
		return
	}

	saved, err := h.svc.Save(c.Request.Context(), middleware.UserID(c), result)
	if err != nil {
		h.logger.Error("failed saving calculation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to save calculation"})
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// List returns the caller's recent calculations.
func (h *CalculationHandler) List(c *gin.Context) {
	calcs, err := h.svc.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.logger.Error("failed listing calculations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"calculations": calcs})
}

// Delete removes one of the caller's calculations.
func (h *CalculationHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, mongodb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "calculation not found"})
	default:
		h.logger.Error("failed deleting calculation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to delete calculation"})
	}
}

// Advise evaluates the request and adds a narrative explanation.
func (h *CalculationHandler) Advise(c *gin.Context) {
	result, ok := h.calculate(c)
	if !ok {
		return
	}

	advice, err := h.svc.Advise(c.Request.Context(), result)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"advice": advice, "result": result})
	case errors.Is(err, calculations.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advice is not available"})
	default:
		h.logger.Error("failed generating advice", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to generate advice"})
	}
}

// Share sends a saved calculation to a phone number.
func (h *CalculationHandler) Share(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.Share(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Phone)
	switch {
	case err == nil:
		c.Status(http.StatusAccepted)
	case errors.Is(err, calculations.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sharing is not available"})
	case errors.Is(err, mongodb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "calculation not found"})
	default:
		h.logger.Error("failed sharing calculation", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
	}
}

func (h *CalculationHandler) calculate(c *gin.Context) (models.EvaluationResult, bool) {
	var req harvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.EvaluationResult{}, false
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.EvaluationResult{}, false
	}

	result, err := h.svc.Calculate(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, evaluator.ErrMissingPriceData) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": missingPriceMessage})
			return models.EvaluationResult{}, false
		}
		h.logger.Error("failed evaluating harvest", zap.String("crop", input.CropName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to evaluate harvest"})
		return models.EvaluationResult{}, false
	}

	return result, true
}

func newEvaluationResponse(result models.EvaluationResult) evaluationResponse {
	return evaluationResponse{
		Result:     result,
		BestNet:    evaluator.FormatCurrency(result.BestOption.NetRevenue),
		Disclaimer: insights.Disclaimer,
	}
}
