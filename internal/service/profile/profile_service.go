package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

// ErrUnknownCrop is returned when a preferred crop is not offered by the calculator.
var ErrUnknownCrop = errors.New("unknown crop")

// Store reads and updates profiles.
type Store interface {
	FindProfileByUserID(ctx context.Context, userID string) (models.Profile, error)
	UpdateProfile(ctx context.Context, userID, farmName, location string, crops []string, now time.Time) (models.Profile, error)
}

// Service exposes the farm profile of a user.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds a profile service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Get returns the profile of userID.
func (s *Service) Get(ctx context.Context, userID string) (models.Profile, error) {
	p, err := s.store.FindProfileByUserID(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.PreferredCrops == nil {
		p.PreferredCrops = []string{}
	}
	return p, nil
}

// Update replaces the editable fields of userID's profile.
func (s *Service) Update(ctx context.Context, userID, farmName, location string, preferredCrops []string) (models.Profile, error) {
	crops, err := normalizeCrops(preferredCrops)
	if err != nil {
		return models.Profile{}, err
	}

	p, err := s.store.UpdateProfile(ctx, userID, strings.TrimSpace(farmName), strings.TrimSpace(location), crops, s.now().UTC())
	if err != nil {
		return models.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("profile updated", zap.String("user_id", userID), zap.Int("preferred_crops", len(crops)))
	return p, nil
}

// normalizeCrops trims names, drops duplicates and rejects crops outside the catalogue.
func normalizeCrops(crops []string) ([]string, error) {
	out := make([]string, 0, len(crops))
	seen := make(map[string]struct{}, len(crops))
	for _, crop := range crops {
		crop = strings.TrimSpace(crop)
		if crop == "" {
			continue
		}
		if !models.IsKnownCrop(crop) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCrop, crop)
		}
		if _, dup := seen[crop]; dup {
			continue
		}
		seen[crop] = struct{}{}
		out = append(out, crop)
	}
	return out, nil
}
