package calculations

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
	"github.com/mamadbah2/agriplanner/internal/service/evaluator"
	"github.com/mamadbah2/agriplanner/pkg/clients/whatsapp"
)

const harvestDateLayout = "2006-01-02"

// ErrNotConfigured is returned when an optional integration was not set up.
var ErrNotConfigured = errors.New("integration not configured")

// PriceLookup resolves the quote used by an evaluation.
type PriceLookup interface {
	Lookup(ctx context.Context, crop string) (models.PriceQuote, error)
}

// Store persists saved calculations.
type Store interface {
	InsertCalculation(ctx context.Context, calc models.SavedCalculation) error
	ListCalculations(ctx context.Context, userID string, limit int) ([]models.SavedCalculation, error)
	FindCalculation(ctx context.Context, userID, id string) (models.SavedCalculation, error)
	DeleteCalculation(ctx context.Context, userID, id string) error
}

// Advisor turns an evaluation summary into a short narrative.
type Advisor interface {
	Advise(ctx context.Context, summary string) (string, error)
}

// Messenger delivers text messages to a phone number.
type Messenger interface {
	SendTextMessage(ctx context.Context, req whatsapp.SendTextMessageRequest) (*whatsapp.SendTextMessageResponse, error)
}

// Recorder observes evaluation outcomes.
type Recorder interface {
	ObserveEvaluation(crop, outcome, market, timing string)
}

// Service evaluates harvests and manages the saved history.
type Service struct {
	prices       PriceLookup
	store        Store
	advisor      Advisor
	messenger    Messenger
	recorder     Recorder
	historyLimit int
	logger       *zap.Logger
	now          func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithAdvisor enables Advise.
func WithAdvisor(a Advisor) Option {
	return func(s *Service) { s.advisor = a }
}

// WithMessenger enables Share.
func WithMessenger(m Messenger) Option {
	return func(s *Service) { s.messenger = m }
}

// WithRecorder reports evaluations, typically to metrics.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithHistoryLimit bounds History. Non-positive values are ignored.
func WithHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// NewService builds a calculation service.
func NewService(prices PriceLookup, store Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		prices:       prices,
		store:        store,
		historyLimit: 10,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate resolves the crop's prices and compares the four selling scenarios.
func (s *Service) Calculate(ctx context.Context, input models.HarvestInput) (models.EvaluationResult, error) {
	quote, err := s.prices.Lookup(ctx, input.CropName)
	if err != nil {
		outcome := "error"
		if errors.Is(err, evaluator.ErrMissingPriceData) {
			outcome = "missing_price"
		}
		s.record(input.CropName, outcome, models.ScenarioOutcome{})
		return models.EvaluationResult{}, err
	}

	result := evaluator.Evaluate(input, quote)
	s.record(input.CropName, "ok", result.BestOption)

	s.logger.Debug("harvest evaluated",
		zap.String("crop", input.CropName),
		zap.Float64("quantity_kg", input.QuantityKg),
		zap.String("best", result.BestOption.Label),
		zap.Float64("net_revenue", result.BestOption.NetRevenue),
	)

	return result, nil
}

// Save stores a result in the user's history.
func (s *Service) Save(ctx context.Context, userID string, result models.EvaluationResult) (models.SavedCalculation, error) {
	if userID == "" {
		return models.SavedCalculation{}, errors.New("user id is required")
	}

	in := result.Input
	calc := models.SavedCalculation{
		ID:                 uuid.NewString(),
		UserID:             userID,
		CropName:           in.CropName,
		QuantityKg:         in.QuantityKg,
		HarvestDate:        in.HarvestDate.Format(harvestDateLayout),
		ShelfLifeDays:      in.ShelfLifeDays,
		StorageLossPercent: in.StorageLossPercent,
		DistanceMarketA:    in.DistanceMarketA,
		DistanceMarketB:    in.DistanceMarketB,
		TransportCostPerKm: in.TransportCostPerKm,
		BestOption:         result.BestOption.Label,
		BestRevenue:        result.BestOption.NetRevenue,
		Details:            result,
		CreatedAt:          s.now().UTC(),
	}

	if err := s.store.InsertCalculation(ctx, calc); err != nil {
		return models.SavedCalculation{}, fmt.Errorf("save calculation: %w", err)
	}

	s.logger.Info("calculation saved", zap.String("user_id", userID), zap.String("calculation_id", calc.ID))
	return calc, nil
}

// History returns the user's most recent calculations, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]models.SavedCalculation, error) {
	calcs, err := s.store.ListCalculations(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	if calcs == nil {
		calcs = []models.SavedCalculation{}
	}
	return calcs, nil
}

// Delete removes one of the user's calculations.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteCalculation(ctx, userID, id); err != nil {
		return fmt.Errorf("delete calculation %s: %w", id, err)
	}
	return nil
}

// Advise asks the configured advisor to explain a result.
func (s *Service) Advise(ctx context.Context, result models.EvaluationResult) (string, error) {
	if s.advisor == nil {
		return "", ErrNotConfigured
	}

	advice, err := s.advisor.Advise(ctx, Summary(result))
	if err != nil {
		return "", fmt.Errorf("advise: %w", err)
	}
	return advice, nil
}

// Share sends the summary line of a saved calculation to phone.
func (s *Service) Share(ctx context.Context, userID, id, phone string) error {
	if s.messenger == nil {
		return ErrNotConfigured
	}

	calc, err := s.store.FindCalculation(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("find calculation %s: %w", id, err)
	}

	_, err = s.messenger.SendTextMessage(ctx, whatsapp.SendTextMessageRequest{
		To:   phone,
		Body: HistoryLine(calc),
	})
	if err != nil {
		return fmt.Errorf("share calculation: %w", err)
	}

	s.logger.Info("calculation shared", zap.String("user_id", userID), zap.String("calculation_id", id))
	return nil
}

func (s *Service) record(crop, outcome string, best models.ScenarioOutcome) {
	if s.recorder != nil {
		s.recorder.ObserveEvaluation(crop, outcome, string(best.Market), string(best.Timing))
	}
}

// HistoryLine renders a saved calculation the way the history list shows it.
func HistoryLine(calc models.SavedCalculation) string {
	return fmt.Sprintf("%s - %s kg: %s • %s",
		calc.CropName,
		strconv.FormatFloat(calc.QuantityKg, 'f', -1, 64),
		calc.BestOption,
		evaluator.FormatCurrency(calc.BestRevenue),
	)
}

// Summary describes a result in plain text for the advisor.
func Summary(result models.EvaluationResult) string {
	in := result.Input

	var b strings.Builder
	fmt.Fprintf(&b, "Crop: %s, %s kg, harvested %s, shelf life %d days.\n",
		in.CropName, evaluator.FormatNumber(in.QuantityKg, 1), in.HarvestDate.Format(harvestDateLayout), in.ShelfLifeDays)
	fmt.Fprintf(&b, "Storage loss %s%% per day. Market A %s km, Market B %s km, transport %s per km.\n",
		evaluator.FormatNumber(in.StorageLossPercent, 1),
		evaluator.FormatNumber(in.DistanceMarketA, 1),
		evaluator.FormatNumber(in.DistanceMarketB, 1),
		evaluator.FormatCurrency(in.TransportCostPerKm),
	)
	for _, opt := range result.Options {
		fmt.Fprintf(&b, "- %s: %s kg at %s/kg, transport %s, net %s\n",
			opt.Label,
			evaluator.FormatNumber(opt.UsableQty, 1),
			evaluator.FormatNumber(opt.PricePerKg, 2),
			evaluator.FormatCurrency(opt.TransportCost),
			evaluator.FormatCurrency(opt.NetRevenue),
		)
	}
	fmt.Fprintf(&b, "Recommended: %s with net revenue %s.",
		result.BestOption.Label, evaluator.FormatCurrency(result.BestOption.NetRevenue))

	return b.String()
}
