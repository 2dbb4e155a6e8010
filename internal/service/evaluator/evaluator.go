// Package evaluator compares the four ways of selling a harvest and picks the
// one with the highest net revenue.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

// ErrMissingPriceData is returned by price lookups when a crop has no quote.
// Evaluation must not run without one.
var ErrMissingPriceData = errors.New("no price data for this crop")

type scenario struct {
	market models.Market
	timing models.Timing
}

// scenarios is the fixed generation order; ties on net revenue resolve to the earlier entry.
var scenarios = [...]scenario{
	{market: models.MarketA, timing: models.TimingNow},
	{market: models.MarketB, timing: models.TimingNow},
	{market: models.MarketA, timing: models.TimingIn7Days},
	{market: models.MarketB, timing: models.TimingIn7Days},
}

// Evaluate computes every scenario for the harvest and selects the best one.
// Inputs are trusted to be within their domains; only the usable quantity is clamped.
func Evaluate(input models.HarvestInput, prices models.PriceQuote) models.EvaluationResult {
	options := make([]models.ScenarioOutcome, 0, len(scenarios))

	for _, sc := range scenarios {
		options = append(options, outcome(input, sc, prices.Price(sc.market, sc.timing)))
	}

	best := options[0]
	for _, current := range options[1:] {
		if current.NetRevenue > best.NetRevenue {
			best = current
		}
	}

	return models.EvaluationResult{
		Options:    options,
		BestOption: best,
		Input:      input,
	}
}

func outcome(input models.HarvestInput, sc scenario, price float64) models.ScenarioOutcome {
	lossRate := input.StorageLossPercent / 100
	storageLoss := input.QuantityKg * lossRate * sc.timing.Days()
	usableQty := max(0, input.QuantityKg-storageLoss)

	distance := input.DistanceMarketB
	if sc.market == models.MarketA {
		distance = input.DistanceMarketA
	}
	transportCost := distance * input.TransportCostPerKm

	grossRevenue := usableQty * price

	return models.ScenarioOutcome{
		Market:        sc.market,
		Timing:        sc.timing,
		Label:         Label(sc.market, sc.timing),
		UsableQty:     usableQty,
		PricePerKg:    price,
		GrossRevenue:  grossRevenue,
		TransportCost: transportCost,
		StorageLoss:   storageLoss,
		NetRevenue:    grossRevenue - transportCost,
	}
}

// Label renders the human-readable scenario name, e.g. "Sell Now → Market A".
func Label(market models.Market, timing models.Timing) string {
	when := "Now"
	if timing == models.TimingIn7Days {
		when = "in 7 Days"
	}
	return fmt.Sprintf("Sell %s → Market %s", when, market)
}
