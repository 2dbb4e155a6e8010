package insights

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

// Disclaimer accompanies every set of calculated results.
const Disclaimer = "Actual market prices, transport costs, and storage losses may differ. " +
	"Always verify current prices at your local market before making selling decisions. " +
	"We are not responsible for any financial decisions made based on these calculations."

// ErrInvalidAlert is returned when an alert lacks a title or has an unknown severity.
var ErrInvalidAlert = errors.New("invalid weather alert")

var checklist = []models.ChecklistItem{
	{ID: 1, Label: "Bags/packaging ready", Category: "Preparation"},
	{ID: 2, Label: "Quality check completed", Category: "Preparation"},
	{ID: 3, Label: "Weighed and recorded quantity", Category: "Preparation"},
	{ID: 4, Label: "Invoice/bill prepared", Category: "Documents"},
	{ID: 5, Label: "ID documents ready", Category: "Documents"},
	{ID: 6, Label: "Transport arranged", Category: "Logistics"},
	{ID: 7, Label: "Loading assistance confirmed", Category: "Logistics"},
	{ID: 8, Label: "Market timing confirmed", Category: "Logistics"},
}

var risks = []models.RiskNote{
	{Title: "Price Volatility", Description: "Market prices can change rapidly. Predicted prices are estimates based on current trends."},
	{Title: "Storage Loss", Description: "Actual storage loss may vary based on temperature, humidity, and storage conditions."},
	{Title: "Quality Factors", Description: "Final prices depend on crop quality, moisture content, and market demand."},
}

// AlertStore persists weather alerts.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert models.WeatherAlert) error
	ListActiveAlerts(ctx context.Context, now time.Time) ([]models.WeatherAlert, error)
}

// Service serves the static guidance and the weather alerts.
type Service struct {
	alerts AlertStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds an insights service.
func NewService(alerts AlertStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{alerts: alerts, logger: logger, now: time.Now}
}

// Checklist returns a copy of the pre-sale checklist.
func (s *Service) Checklist() []models.ChecklistItem {
	out := make([]models.ChecklistItem, len(checklist))
	copy(out, checklist)
	return out
}

// ChecklistProgress returns the share of checklist items ticked, in percent.
// Unknown and repeated ids are ignored.
func (s *Service) ChecklistProgress(checkedIDs []int) float64 {
	known := make(map[int]bool, len(checklist))
	for _, item := range checklist {
		known[item.ID] = false
	}

	done := 0
	for _, id := range checkedIDs {
		if ticked, ok := known[id]; ok && !ticked {
			known[id] = true
			done++
		}
	}

	return float64(done) / float64(len(checklist)) * 100
}

// Risks returns the risk notes shown next to the results.
func (s *Service) Risks() []models.RiskNote {
	out := make([]models.RiskNote, len(risks))
	copy(out, risks)
	return out
}

// ActiveAlerts returns the alerts in force at now, most severe first.
func (s *Service) ActiveAlerts(ctx context.Context, now time.Time) ([]models.WeatherAlert, error) {
	alerts, err := s.alerts.ListActiveAlerts(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	active := make([]models.WeatherAlert, 0, len(alerts))
	for _, a := range alerts {
		if !a.Active || (a.ExpiresAt != nil && !a.ExpiresAt.After(now)) {
			continue
		}
		active = append(active, a)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Severity.Rank() > active[j].Severity.Rank()
	})
	return active, nil
}

// CreateAlert validates and stores a new active alert.
func (s *Service) CreateAlert(ctx context.Context, alert models.WeatherAlert) (models.WeatherAlert, error) {
	alert.Title = strings.TrimSpace(alert.Title)
	if alert.Title == "" {
		return models.WeatherAlert{}, fmt.Errorf("%w: title is required", ErrInvalidAlert)
	}
	switch alert.Severity {
	case "":
		alert.Severity = models.SeverityLow
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
	default:
		return models.WeatherAlert{}, fmt.Errorf("%w: severity %q", ErrInvalidAlert, alert.Severity)
	}

	now := s.now().UTC()
	if alert.ExpiresAt != nil && !alert.ExpiresAt.After(now) {
		return models.WeatherAlert{}, fmt.Errorf("%w: already expired", ErrInvalidAlert)
	}

	alert.ID = uuid.NewString()
	alert.Active = true
	alert.CreatedAt = now

	if err := s.alerts.InsertAlert(ctx, alert); err != nil {
		return models.WeatherAlert{}, fmt.Errorf("create alert: %w", err)
	}

	s.logger.Info("weather alert created", zap.String("alert_id", alert.ID), zap.String("severity", string(alert.Severity)))
	return alert, nil
}
