package evaluator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

func sampleInput() models.HarvestInput {
	return models.HarvestInput{
		CropName:           "Wheat",
		QuantityKg:         100,
		HarvestDate:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		ShelfLifeDays:      14,
		StorageLossPercent: 2,
		DistanceMarketA:    25,
		DistanceMarketB:    40,
		TransportCostPerKm: 5,
	}
}

func samplePrices() models.PriceQuote {
	return models.PriceQuote{
		CropName:          "Wheat",
		MarketAPriceToday: 20,
		MarketBPriceToday: 22,
		MarketAPrice7Days: 21,
		MarketBPrice7Days: 19,
	}
}

func TestEvaluateReferenceScenario(t *testing.T) {
	result := Evaluate(sampleInput(), samplePrices())
	require.Len(t, result.Options, 4)

	want := []struct {
		label     string
		usable    float64
		transport float64
		gross     float64
		net       float64
		loss      float64
	}{
		{"Sell Now → Market A", 100, 125, 2000, 1875, 0},
		{"Sell Now → Market B", 100, 200, 2200, 2000, 0},
		{"Sell in 7 Days → Market A", 86, 125, 1806, 1681, 14},
		{"Sell in 7 Days → Market B", 86, 200, 1634, 1434, 14},
	}

	for i, w := range want {
		got := result.Options[i]
		assert.Equal(t, w.label, got.Label)
		assert.InDelta(t, w.usable, got.UsableQty, 1e-9, w.label)
		assert.InDelta(t, w.transport, got.TransportCost, 1e-9, w.label)
		assert.InDelta(t, w.gross, got.GrossRevenue, 1e-9, w.label)
		assert.InDelta(t, w.net, got.NetRevenue, 1e-9, w.label)
		assert.InDelta(t, w.loss, got.StorageLoss, 1e-9, w.label)
	}

	assert.Equal(t, models.MarketB, result.BestOption.Market)
	assert.Equal(t, models.TimingNow, result.BestOption.Timing)
	assert.InDelta(t, 2000, result.BestOption.NetRevenue, 1e-9)
	assert.Equal(t, sampleInput(), result.Input)
}

func TestEvaluateProducesEachScenarioOnce(t *testing.T) {
	result := Evaluate(sampleInput(), samplePrices())

	seen := make(map[string]bool)
	for _, opt := range result.Options {
		key := string(opt.Market) + "/" + string(opt.Timing)
		assert.False(t, seen[key], "duplicate scenario %s", key)
		seen[key] = true
	}
	assert.Len(t, seen, 4)

	order := []models.ScenarioOutcome{result.Options[0], result.Options[1], result.Options[2], result.Options[3]}
	assert.Equal(t, models.MarketA, order[0].Market)
	assert.Equal(t, models.TimingNow, order[0].Timing)
	assert.Equal(t, models.MarketB, order[1].Market)
	assert.Equal(t, models.TimingNow, order[1].Timing)
	assert.Equal(t, models.MarketA, order[2].Market)
	assert.Equal(t, models.TimingIn7Days, order[2].Timing)
	assert.Equal(t, models.MarketB, order[3].Market)
	assert.Equal(t, models.TimingIn7Days, order[3].Timing)
}

func TestEvaluateRevenueIdentity(t *testing.T) {
	inputs := []models.HarvestInput{
		sampleInput(),
		{CropName: "Rice", QuantityKg: 1234.5, StorageLossPercent: 3.7, DistanceMarketA: 12.3, DistanceMarketB: 0, TransportCostPerKm: 7.25},
		{CropName: "Corn", QuantityKg: 1, StorageLossPercent: 100, DistanceMarketA: 1000, DistanceMarketB: 5, TransportCostPerKm: 2},
	}

	for _, in := range inputs {
		result := Evaluate(in, samplePrices())
		for _, opt := range result.Options {
			assert.InDelta(t, opt.UsableQty*opt.PricePerKg-opt.TransportCost, opt.NetRevenue, 1e-9, opt.Label)
			assert.Equal(t, opt.UsableQty*opt.PricePerKg, opt.GrossRevenue, opt.Label)
			assert.LessOrEqual(t, opt.UsableQty, in.QuantityKg, opt.Label)
			assert.GreaterOrEqual(t, opt.UsableQty, 0.0, opt.Label)
			if opt.Timing == models.TimingNow {
				assert.Equal(t, in.QuantityKg, opt.UsableQty, opt.Label)
			}
		}
	}
}

func TestEvaluatePicksPriceForEachScenario(t *testing.T) {
	result := Evaluate(sampleInput(), samplePrices())

	assert.Equal(t, 20.0, result.Options[0].PricePerKg)
	assert.Equal(t, 22.0, result.Options[1].PricePerKg)
	assert.Equal(t, 21.0, result.Options[2].PricePerKg)
	assert.Equal(t, 19.0, result.Options[3].PricePerKg)
}

func TestEvaluateTieKeepsEarlierScenario(t *testing.T) {
	in := sampleInput()
	in.DistanceMarketA = 10
	in.DistanceMarketB = 10
	in.StorageLossPercent = 0

	prices := models.PriceQuote{MarketAPriceToday: 20, MarketBPriceToday: 20, MarketAPrice7Days: 20, MarketBPrice7Days: 20}
	result := Evaluate(in, prices)

	assert.Equal(t, models.MarketA, result.BestOption.Market)
	assert.Equal(t, models.TimingNow, result.BestOption.Timing)

	prices.MarketAPriceToday = 10
	result = Evaluate(in, prices)
	assert.Equal(t, models.MarketB, result.BestOption.Market)
	assert.Equal(t, models.TimingNow, result.BestOption.Timing)

	prices.MarketBPriceToday = 10
	prices.MarketAPrice7Days = 30
	prices.MarketBPrice7Days = 30
	result = Evaluate(in, prices)
	assert.Equal(t, models.MarketA, result.BestOption.Market)
	assert.Equal(t, models.TimingIn7Days, result.BestOption.Timing)
}

func TestEvaluateZeroLossRate(t *testing.T) {
	in := sampleInput()
	in.StorageLossPercent = 0

	result := Evaluate(in, samplePrices())
	for _, opt := range result.Options {
		assert.Zero(t, opt.StorageLoss, opt.Label)
		assert.Equal(t, in.QuantityKg, opt.UsableQty, opt.Label)
	}
}

func TestEvaluateFullLossClampsUsableQuantity(t *testing.T) {
	in := sampleInput()
	in.StorageLossPercent = 100

	result := Evaluate(in, samplePrices())
	for _, opt := range result.Options[2:] {
		assert.Equal(t, 700.0, opt.StorageLoss, opt.Label)
		assert.Zero(t, opt.UsableQty, opt.Label)
		assert.Zero(t, opt.GrossRevenue, opt.Label)
		assert.Equal(t, -opt.TransportCost, opt.NetRevenue, opt.Label)
	}
}

func TestEvaluateAllowsNegativeNetRevenue(t *testing.T) {
	in := sampleInput()
	in.QuantityKg = 1
	in.TransportCostPerKm = 100

	result := Evaluate(in, samplePrices())
	for _, opt := range result.Options {
		assert.Negative(t, opt.NetRevenue, opt.Label)
	}
	assert.Equal(t, models.MarketA, result.BestOption.Market)
	assert.Equal(t, models.TimingNow, result.BestOption.Timing)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	first := Evaluate(sampleInput(), samplePrices())
	second := Evaluate(sampleInput(), samplePrices())
	assert.Equal(t, first, second)
}

func TestEvaluateConcurrentCalls(t *testing.T) {
	want := Evaluate(sampleInput(), samplePrices())

	done := make(chan models.EvaluationResult, 16)
	for i := 0; i < cap(done); i++ {
		go func() { done <- Evaluate(sampleInput(), samplePrices()) }()
	}
	for i := 0; i < cap(done); i++ {
		assert.Equal(t, want, <-done)
	}
}
