package calculations

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
	"github.com/mamadbah2/agriplanner/internal/repository/mongodb"
	"github.com/mamadbah2/agriplanner/internal/service/evaluator"
	"github.com/mamadbah2/agriplanner/pkg/clients/whatsapp"
)

type stubPrices map[string]models.PriceQuote

func (p stubPrices) Lookup(_ context.Context, crop string) (models.PriceQuote, error) {
	q, ok := p[crop]
	if !ok {
		return models.PriceQuote{}, fmt.Errorf("%w: %s", evaluator.ErrMissingPriceData, crop)
	}
	return q, nil
}

type memoryStore struct {
	calcs     []models.SavedCalculation
	lastLimit int
}

func (s *memoryStore) InsertCalculation(_ context.Context, calc models.SavedCalculation) error {
	s.calcs = append(s.calcs, calc)
	return nil
}

func (s *memoryStore) ListCalculations(_ context.Context, userID string, limit int) ([]models.SavedCalculation, error) {
	s.lastLimit = limit
	var out []models.SavedCalculation
	for i := len(s.calcs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.calcs[i].UserID == userID {
			out = append(out, s.calcs[i])
		}
	}
	return out, nil
}

func (s *memoryStore) FindCalculation(_ context.Context, userID, id string) (models.SavedCalculation, error) {
	for _, c := range s.calcs {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return models.SavedCalculation{}, mongodb.ErrNotFound
}

func (s *memoryStore) DeleteCalculation(_ context.Context, userID, id string) error {
	for i, c := range s.calcs {
		if c.ID == id && c.UserID == userID {
			s.calcs = append(s.calcs[:i], s.calcs[i+1:]...)
			return nil
		}
	}
	return mongodb.ErrNotFound
}

type stubAdvisor struct {
	summary string
	reply   string
	err     error
}

func (a *stubAdvisor) Advise(_ context.Context, summary string) (string, error) {
	a.summary = summary
	return a.reply, a.err
}

type stubMessenger struct {
	sent []whatsapp.SendTextMessageRequest
}

func (m *stubMessenger) SendTextMessage(_ context.Context, req whatsapp.SendTextMessageRequest) (*whatsapp.SendTextMessageResponse, error) {
	m.sent = append(m.sent, req)
	return &whatsapp.SendTextMessageResponse{}, nil
}

type evaluation struct{ crop, outcome, market, timing string }

type recordingRecorder struct {
	seen []evaluation
}

func (r *recordingRecorder) ObserveEvaluation(crop, outcome, market, timing string) {
	r.seen = append(r.seen, evaluation{crop, outcome, market, timing})
}

func riceInput() models.HarvestInput {
	return models.HarvestInput{
		CropName:           "Rice",
		QuantityKg:         100,
		HarvestDate:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		ShelfLifeDays:      30,
		StorageLossPercent: 2,
		DistanceMarketA:    25,
		DistanceMarketB:    40,
		TransportCostPerKm: 5,
	}
}

func ricePrices() stubPrices {
	return stubPrices{"Rice": {
		CropName:          "Rice",
		MarketAPriceToday: 20,
		MarketAPrice7Days: 21,
		MarketBPriceToday: 22,
		MarketBPrice7Days: 19,
	}}
}

func TestCalculate(t *testing.T) {
	rec := &recordingRecorder{}
	svc := NewService(ricePrices(), &memoryStore{}, nil, WithRecorder(rec))

	result, err := svc.Calculate(context.Background(), riceInput())
	require.NoError(t, err)

	require.Len(t, result.Options, 4)
	assert.Equal(t, "Sell Now → Market B", result.BestOption.Label)
	assert.InDelta(t, 2000, result.BestOption.NetRevenue, 1e-9)
	assert.Equal(t, []evaluation{{"Rice", "ok", "B", "now"}}, rec.seen)
}

func TestCalculateMissingPrice(t *testing.T) {
	rec := &recordingRecorder{}
	svc := NewService(ricePrices(), &memoryStore{}, nil, WithRecorder(rec))

	input := riceInput()
	input.CropName = "Quinoa"
	_, err := svc.Calculate(context.Background(), input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, evaluator.ErrMissingPriceData))
	assert.Equal(t, []evaluation{{"Quinoa", "missing_price", "", ""}}, rec.seen)
}

func TestSaveDenormalizesResult(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(ricePrices(), store, nil)
	fixed := time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	result, err := svc.Calculate(context.Background(), riceInput())
	require.NoError(t, err)

	saved, err := svc.Save(context.Background(), "user-1", result)
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, "2024-03-15", saved.HarvestDate)
	assert.Equal(t, "Sell Now → Market B", saved.BestOption)
	assert.InDelta(t, 2000, saved.BestRevenue, 1e-9)
	assert.Equal(t, fixed, saved.CreatedAt)
	assert.Equal(t, result, saved.Details)
	require.Len(t, store.calcs, 1)
}

func TestSaveRequiresUser(t *testing.T) {
	svc := NewService(ricePrices(), &memoryStore{}, nil)
	_, err := svc.Save(context.Background(), "", models.EvaluationResult{})
	assert.Error(t, err)
}

func TestHistoryUsesLimitAndNeverReturnsNil(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(ricePrices(), store, nil, WithHistoryLimit(2))

	empty, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for i := 0; i < 3; i++ {
		_, err := svc.Save(context.Background(), "user-1", models.EvaluationResult{Input: riceInput()})
		require.NoError(t, err)
	}

	calcs, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, calcs, 2)
	assert.Equal(t, 2, store.lastLimit)
	assert.Equal(t, store.calcs[2].ID, calcs[0].ID)
}

func TestDeleteOnlyOwnCalculation(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(ricePrices(), store, nil)

	saved, err := svc.Save(context.Background(), "owner", models.EvaluationResult{Input: riceInput()})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "intruder", saved.ID)
	assert.True(t, errors.Is(err, mongodb.ErrNotFound))

	require.NoError(t, svc.Delete(context.Background(), "owner", saved.ID))
	assert.Empty(t, store.calcs)
}

func TestAdvise(t *testing.T) {
	svc := NewService(ricePrices(), &memoryStore{}, nil)
	result, err := svc.Calculate(context.Background(), riceInput())
	require.NoError(t, err)

	_, err = svc.Advise(context.Background(), result)
	assert.ErrorIs(t, err, ErrNotConfigured)

	advisor := &stubAdvisor{reply: "Sell at market B today."}
	svc = NewService(ricePrices(), &memoryStore{}, nil, WithAdvisor(advisor))

	advice, err := svc.Advise(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, "Sell at market B today.", advice)
	assert.Contains(t, advisor.summary, "Recommended: Sell Now → Market B with net revenue ₹2,000.")
	assert.Contains(t, advisor.summary, "Sell in 7 Days → Market A")

	advisor.err = errors.New("boom")
	_, err = svc.Advise(context.Background(), result)
	assert.Error(t, err)
}

func TestShare(t *testing.T) {
	store := &memoryStore{}
	messenger := &stubMessenger{}
	svc := NewService(ricePrices(), store, nil, WithMessenger(messenger))

	result, err := svc.Calculate(context.Background(), riceInput())
	require.NoError(t, err)
	saved, err := svc.Save(context.Background(), "user-1", result)
	require.NoError(t, err)

	require.NoError(t, svc.Share(context.Background(), "user-1", saved.ID, "919800000000"))
	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "919800000000", messenger.sent[0].To)
	assert.Equal(t, "Rice - 100 kg: Sell Now → Market B • ₹2,000", messenger.sent[0].Body)

	err = svc.Share(context.Background(), "user-2", saved.ID, "919800000000")
	assert.ErrorIs(t, err, mongodb.ErrNotFound)
}

func TestShareNotConfigured(t *testing.T) {
	svc := NewService(ricePrices(), &memoryStore{}, nil)
	assert.ErrorIs(t, svc.Share(context.Background(), "u", "id", "1"), ErrNotConfigured)
}

func TestHistoryLine(t *testing.T) {
	calc := models.SavedCalculation{CropName: "Wheat", QuantityKg: 250.5, BestOption: "Sell in 7 Days → Market A", BestRevenue: 123456.7}
	assert.Equal(t, "Wheat - 250.5 kg: Sell in 7 Days → Market A • ₹1,23,457", HistoryLine(calc))
}
