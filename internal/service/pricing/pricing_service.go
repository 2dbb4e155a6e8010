package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
	"github.com/mamadbah2/agriplanner/internal/repository/mongodb"
	"github.com/mamadbah2/agriplanner/internal/service/evaluator"
)

// ErrInvalidQuote indicates a quote is missing its crop or carries a non-positive price.
var ErrInvalidQuote = errors.New("invalid price quote")

// Store persists price quotes.
type Store interface {
	UpsertPrice(ctx context.Context, quote models.PriceQuote) (models.PriceQuote, error)
	FindPriceByCrop(ctx context.Context, crop string) (models.PriceQuote, error)
	ListPrices(ctx context.Context) ([]models.PriceQuote, error)
}

// Cache is an optional read-through layer in front of the Store.
type Cache interface {
	Get(ctx context.Context, crop string) (models.PriceQuote, bool, error)
	Set(ctx context.Context, quote models.PriceQuote) error
	Invalidate(ctx context.Context, crop string) error
}

// Source supplies fresh quotes from an external feed such as a spreadsheet.
type Source interface {
	FetchQuotes(ctx context.Context) ([]models.PriceQuote, error)
}

// SyncObserver is notified of every sync outcome.
type SyncObserver interface {
	ObservePriceSync(result string)
}

// Service resolves price quotes for crops.
type Service struct {
	store    Store
	cache    Cache
	source   Source
	observer SyncObserver
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithCache enables the read-through cache.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithSource enables SyncFromSource.
func WithSource(src Source) Option {
	return func(s *Service) { s.source = src }
}

// WithSyncObserver reports sync outcomes, typically to metrics.
func WithSyncObserver(o SyncObserver) Option {
	return func(s *Service) { s.observer = o }
}

// NewService wires a new pricing service instance.
func NewService(store Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the quote for crop, or evaluator.ErrMissingPriceData when none exists.
func (s *Service) Lookup(ctx context.Context, crop string) (models.PriceQuote, error) {
	if s.cache != nil {
		quote, ok, err := s.cache.Get(ctx, crop)
		if err != nil {
			s.logger.Warn("price cache read failed", zap.String("crop", crop), zap.Error(err))
		} else if ok {
			return quote, nil
		}
	}

	quote, err := s.store.FindPriceByCrop(ctx, crop)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return models.PriceQuote{}, fmt.Errorf("%w: %s", evaluator.ErrMissingPriceData, crop)
		}
		return models.PriceQuote{}, fmt.Errorf("lookup price: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, quote); err != nil {
			s.logger.Warn("price cache write failed", zap.String("crop", crop), zap.Error(err))
		}
	}

	return quote, nil
}

// List returns every known quote.
func (s *Service) List(ctx context.Context) ([]models.PriceQuote, error) {
	quotes, err := s.store.ListPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	if quotes == nil {
		quotes = []models.PriceQuote{}
	}
	return quotes, nil
}

// Upsert validates and stores a quote, then drops any cached copy.
// The returned quote is the stored one, so an existing crop keeps its id.
func (s *Service) Upsert(ctx context.Context, quote models.PriceQuote) (models.PriceQuote, error) {
	quote.CropName = strings.TrimSpace(quote.CropName)
	if err := validateQuote(quote); err != nil {
		return models.PriceQuote{}, err
	}

	if quote.ID == "" {
		quote.ID = uuid.NewString()
	}
	quote.UpdatedAt = s.now().UTC()

	stored, err := s.store.UpsertPrice(ctx, quote)
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("store price: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, quote.CropName); err != nil {
			s.logger.Warn("price cache invalidation failed", zap.String("crop", quote.CropName), zap.Error(err))
		}
	}

	return stored, nil
}

// SyncFromSource pulls quotes from the configured source and stores the valid ones.
// It returns the number of quotes stored.
func (s *Service) SyncFromSource(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, errors.New("price source not configured")
	}

	quotes, err := s.source.FetchQuotes(ctx)
	if err != nil {
		s.observe("failure")
		return 0, fmt.Errorf("fetch quotes: %w", err)
	}

	stored := 0
	for _, quote := range quotes {
		if _, err := s.Upsert(ctx, quote); err != nil {
			s.logger.Warn("skip synced price", zap.String("crop", quote.CropName), zap.Error(err))
			continue
		}
		stored++
	}

	s.observe("success")
	s.logger.Info("price sync completed", zap.Int("received", len(quotes)), zap.Int("stored", stored))
	return stored, nil
}

func (s *Service) observe(result string) {
	if s.observer != nil {
		s.observer.ObservePriceSync(result)
	}
}

func validateQuote(q models.PriceQuote) error {
	if q.CropName == "" {
		return fmt.Errorf("%w: crop name is required", ErrInvalidQuote)
	}
	for _, p := range []float64{q.MarketAPriceToday, q.MarketAPrice7Days, q.MarketBPriceToday, q.MarketBPrice7Days} {
		if p <= 0 {
			return fmt.Errorf("%w: prices must be positive", ErrInvalidQuote)
		}
	}
	return nil
}
