package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

// UpsertPrice replaces the quote stored for the crop and returns the stored
// document. The id of quote is only used when the crop is new.
func (r *MongoDBRepository) UpsertPrice(ctx context.Context, quote models.PriceQuote) (models.PriceQuote, error) {
	update := bson.M{
		"$set": bson.M{
			"market_a_price_today": quote.MarketAPriceToday,
			"market_a_price_7days": quote.MarketAPrice7Days,
			"market_b_price_today": quote.MarketBPriceToday,
			"market_b_price_7days": quote.MarketBPrice7Days,
			"updated_at":           quote.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": quote.ID},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.PriceQuote
	err := r.db.Collection(pricesCollection).FindOneAndUpdate(ctx, bson.M{"crop_name": quote.CropName}, update, opts).Decode(&stored)
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("failed to upsert price for %s: %w", quote.CropName, translateError(err))
	}
	return stored, nil
}

// FindPriceByCrop returns the quote stored for crop.
func (r *MongoDBRepository) FindPriceByCrop(ctx context.Context, crop string) (models.PriceQuote, error) {
	var quote models.PriceQuote
	err := r.db.Collection(pricesCollection).FindOne(ctx, bson.M{"crop_name": crop}).Decode(&quote)
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("failed to find price for %s: %w", crop, translateError(err))
	}
	return quote, nil
}

// ListPrices returns every stored quote ordered by crop name.
func (r *MongoDBRepository) ListPrices(ctx context.Context) ([]models.PriceQuote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "crop_name", Value: 1}})

	cursor, err := r.db.Collection(pricesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	defer cursor.Close(ctx)

	var quotes []models.PriceQuote
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %w", err)
	}
	return quotes, nil
}
