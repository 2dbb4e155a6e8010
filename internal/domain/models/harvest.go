package models

import "time"

// Market identifies one of the two selling points compared by the calculator.
type Market string

const (
	MarketA Market = "A"
	MarketB Market = "B"
)

// Timing tells whether a scenario sells immediately or after a week in storage.
type Timing string

const (
	TimingNow     Timing = "now"
	TimingIn7Days Timing = "7days"
)

// Days returns the storage duration associated with the timing.
func (t Timing) Days() float64 {
	if t == TimingIn7Days {
		return 7
	}
	return 0
}

// HarvestInput is the farmer-provided description of a harvest to sell.
type HarvestInput struct {
	CropName           string    `json:"cropName" bson:"crop_name"`
	QuantityKg         float64   `json:"quantityKg" bson:"quantity_kg"`
	HarvestDate        time.Time `json:"harvestDate" bson:"harvest_date"`
	ShelfLifeDays      int       `json:"shelfLifeDays" bson:"shelf_life_days"`
	StorageLossPercent float64   `json:"storageLossPercent" bson:"storage_loss_percent"`
	DistanceMarketA    float64   `json:"distanceMarketA" bson:"distance_market_a"`
	DistanceMarketB    float64   `json:"distanceMarketB" bson:"distance_market_b"`
	TransportCostPerKm float64   `json:"transportCostPerKm" bson:"transport_cost_per_km"`
}

// PriceQuote carries the four per-kg prices known for a crop.
type PriceQuote struct {
	ID                string    `json:"id" bson:"_id"`
	CropName          string    `json:"crop_name" bson:"crop_name"`
	MarketAPriceToday float64   `json:"market_a_price_today" bson:"market_a_price_today"`
	MarketAPrice7Days float64   `json:"market_a_price_7days" bson:"market_a_price_7days"`
	MarketBPriceToday float64   `json:"market_b_price_today" bson:"market_b_price_today"`
	MarketBPrice7Days float64   `json:"market_b_price_7days" bson:"market_b_price_7days"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

// Price returns the quote for the given market and timing.
func (q PriceQuote) Price(market Market, timing Timing) float64 {
	switch {
	case market == MarketA && timing == TimingNow:
		return q.MarketAPriceToday
	case market == MarketB && timing == TimingNow:
		return q.MarketBPriceToday
	case market == MarketA:
		return q.MarketAPrice7Days
	default:
		return q.MarketBPrice7Days
	}
}

// ScenarioOutcome is the computed result of selling at one market at one time.
type ScenarioOutcome struct {
	Market        Market  `json:"market" bson:"market"`
	Timing        Timing  `json:"timing" bson:"timing"`
	Label         string  `json:"label" bson:"label"`
	UsableQty     float64 `json:"usableQty" bson:"usable_qty"`
	PricePerKg    float64 `json:"pricePerKg" bson:"price_per_kg"`
	GrossRevenue  float64 `json:"grossRevenue" bson:"gross_revenue"`
	TransportCost float64 `json:"transportCost" bson:"transport_cost"`
	StorageLoss   float64 `json:"storageLoss" bson:"storage_loss"`
	NetRevenue    float64 `json:"netRevenue" bson:"net_revenue"`
}

// EvaluationResult holds every scenario together with the recommended one.
type EvaluationResult struct {
	Options    []ScenarioOutcome `json:"options" bson:"options"`
	BestOption ScenarioOutcome   `json:"bestOption" bson:"best_option"`
	Input      HarvestInput      `json:"input" bson:"input"`
}

// CropOptions lists the crops the calculator offers.
var CropOptions = []string{"Wheat", "Rice", "Corn", "Barley", "Sorghum", "Millet"}

// IsKnownCrop reports whether name is part of CropOptions.
func IsKnownCrop(name string) bool {
	for _, crop := range CropOptions {
		if crop == name {
			return true
		}
	}
	return false
}
