package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

// PriceSource turns rows of a price sheet into quotes.
//
// Expected columns: crop, market A today, market A in 7 days,
// market B today, market B in 7 days. A header row is tolerated.
type PriceSource struct {
	reader     Reader
	sheetRange string
	logger     *zap.Logger
}

// NewPriceSource wires a price source over the given reader.
func NewPriceSource(reader Reader, sheetRange string, logger *zap.Logger) *PriceSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceSource{reader: reader, sheetRange: sheetRange, logger: logger}
}

// FetchQuotes reads the sheet and returns every well-formed price row.
func (p *PriceSource) FetchQuotes(ctx context.Context) ([]models.PriceQuote, error) {
	rows, err := p.reader.ReadRange(ctx, p.sheetRange)
	if err != nil {
		return nil, fmt.Errorf("load price range: %w", err)
	}

	quotes := make([]models.PriceQuote, 0, len(rows))
	for i, row := range rows {
		quote, err := parsePriceRow(row)
		if err != nil {
			p.logger.Debug("skip price row", zap.Int("row", i+1), zap.Any("value", row), zap.Error(err))
			continue
		}
		quotes = append(quotes, quote)
	}

	return quotes, nil
}

func parsePriceRow(row []interface{}) (models.PriceQuote, error) {
	if len(row) < 5 {
		return models.PriceQuote{}, fmt.Errorf("expected 5 columns, got %d", len(row))
	}

	crop := strings.TrimSpace(fmt.Sprint(row[0]))
	if crop == "" {
		return models.PriceQuote{}, fmt.Errorf("empty crop name")
	}

	prices := make([]float64, 4)
	for i := range prices {
		value, err := parseFloat(row[i+1])
		if err != nil {
			return models.PriceQuote{}, err
		}
		if value <= 0 {
			return models.PriceQuote{}, fmt.Errorf("price %v must be positive", value)
		}
		prices[i] = value
	}

	return models.PriceQuote{
		CropName:          crop,
		MarketAPriceToday: prices[0],
		MarketAPrice7Days: prices[1],
		MarketBPriceToday: prices[2],
		MarketBPrice7Days: prices[3],
	}, nil
}

func parseFloat(value interface{}) (float64, error) {
	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	str = strings.ReplaceAll(str, ",", "")
	return strconv.ParseFloat(str, 64)
}
