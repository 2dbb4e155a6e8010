package models

import "time"

// SavedCalculation is a persisted snapshot of one evaluation made by a user.
type SavedCalculation struct {
	ID                 string           `bson:"_id" json:"id"`
	UserID             string           `bson:"user_id" json:"user_id"`
	CropName           string           `bson:"crop_name" json:"crop_name"`
	QuantityKg         float64          `bson:"quantity_kg" json:"quantity_kg"`
	HarvestDate        string           `bson:"harvest_date" json:"harvest_date"`
	ShelfLifeDays      int              `bson:"shelf_life_days" json:"shelf_life_days"`
	StorageLossPercent float64          `bson:"storage_loss_percent" json:"storage_loss_percent"`
	DistanceMarketA    float64          `bson:"distance_market_a" json:"distance_market_a"`
	DistanceMarketB    float64          `bson:"distance_market_b" json:"distance_market_b"`
	TransportCostPerKm float64          `bson:"transport_cost_per_km" json:"transport_cost_per_km"`
	BestOption         string           `bson:"best_option" json:"best_option"`
	BestRevenue        float64          `bson:"best_revenue" json:"best_revenue"`
	Details            EvaluationResult `bson:"calculation_details" json:"calculation_details"`
	CreatedAt          time.Time        `bson:"created_at" json:"created_at"`
}
