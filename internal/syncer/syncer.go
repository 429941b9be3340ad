package syncer

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"compscope/server/config"
	"compscope/server/internal/database"
	"compscope/server/internal/geo"
	"compscope/server/internal/market"
	"compscope/server/internal/models"
	"compscope/server/internal/scoring"
)

var (
	ErrDealNotFound       = errors.New("deal not found")
	ErrTradeAreaNotFound  = errors.New("trade area not found")
	ErrMissingCoordinates = errors.New("deal has no valid coordinates")
)

// Sync types recorded in the audit log.
const (
	SyncTypeComparables = "comparables"
	SyncTypeTradeArea   = "trade_area_metrics"
)

// withinTradeAreaMiles is the fixed comparable radius; the fetch radius is
// configurable but the within_trade_area flag always means distance <= 3.
const withinTradeAreaMiles = 3.0

// ListingsProvider is the outbound port to the external listings source.
type ListingsProvider interface {
	SearchProperties(lat, lon, radiusMiles float64, limit int) ([]models.CandidateProperty, error)
	SearchEndpoint() string
}

// Syncer orchestrates comparable linking and trade-area metrics calculation.
type Syncer struct {
	db       *database.Database
	provider ListingsProvider
	cfg      *config.Config
	logger   *logrus.Logger
	now      func() time.Time
}

func NewSyncer(db *database.Database, provider ListingsProvider, cfg *config.Config, logger *logrus.Logger) *Syncer {
	return &Syncer{
		db:       db,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// fetchCandidates performs one audited fetch against the listings provider.
// Every attempt, success or failure, lands in the sync log; failures are
// returned to the caller rather than swallowed.
func (s *Syncer) fetchCandidates(dealID *uint, syncType string, lat, lon, radius float64) ([]models.CandidateProperty, error) {
	candidates, err := s.provider.SearchProperties(lat, lon, radius, s.cfg.Listings.FetchLimit)
	if err != nil {
		msg := err.Error()
		if logErr := s.db.AppendSyncLog(&models.SyncLog{
			DealID:       dealID,
			SyncType:     syncType,
			Status:       "failed",
			RecordCount:  0,
			Endpoint:     s.provider.SearchEndpoint(),
			ErrorMessage: &msg,
		}); logErr != nil {
			s.logger.WithError(logErr).Error("Failed to record failed sync attempt")
		}
		return nil, fmt.Errorf("listings fetch failed: %w", err)
	}

	if logErr := s.db.AppendSyncLog(&models.SyncLog{
		DealID:      dealID,
		SyncType:    syncType,
		Status:      "success",
		RecordCount: len(candidates),
		Endpoint:    s.provider.SearchEndpoint(),
	}); logErr != nil {
		s.logger.WithError(logErr).Error("Failed to record sync attempt")
	}

	return candidates, nil
}

// LinkComparables fetches candidates around the deal's anchor point, scores
// each one and upserts the per-deal comparable set. Comparables absent from
// the latest fetch are flagged stale, never deleted.
func (s *Syncer) LinkComparables(dealID uint, lat, lon float64) (int, error) {
	if !geo.ValidCoordinates(lat, lon) {
		return 0, ErrMissingCoordinates
	}

	id := dealID
	candidates, err := s.fetchCandidates(&id, SyncTypeComparables, lat, lon, s.cfg.Listings.CompRadiusMiles)
	if err != nil {
		return 0, err
	}

	syncedAt := s.now()
	comps := make([]models.Comparable, 0, len(candidates))
	activeIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		distance := geo.DistanceMiles(lat, lon, c.Latitude, c.Longitude)

		var pricePerSqft *float64
		if c.MinPrice > 0 && c.MinSquareFeet > 0 {
			ppsf := c.MinPrice / c.MinSquareFeet
			pricePerSqft = &ppsf
		}

		comps = append(comps, models.Comparable{
			DealID:          dealID,
			CandidateID:     c.ID,
			Name:            c.Name,
			Address:         c.Address,
			Latitude:        c.Latitude,
			Longitude:       c.Longitude,
			DistanceMiles:   distance,
			RelevanceScore:  scoring.Score(c, distance),
			PricePerSqft:    pricePerSqft,
			OccupancyRate:   c.OccupancyRate,
			MinBedrooms:     c.MinBedrooms,
			MaxBedrooms:     c.MaxBedrooms,
			WithinTradeArea: distance <= withinTradeAreaMiles,
			Stale:           false,
			LastSyncedAt:    syncedAt,
		})
		activeIDs = append(activeIDs, c.ID)
	}

	if err := s.db.UpsertComparables(comps); err != nil {
		return 0, err
	}
	if err := s.db.MarkStaleComparables(dealID, activeIDs); err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"deal_id": dealID,
		"count":   len(comps),
	}).Info("Linked comparables to deal")

	return len(comps), nil
}

// CalculateTradeAreaMetrics resolves the trade area's centroid, fetches
// wider-radius market context, aggregates it and persists both the current
// metrics row and today's trend snapshot.
func (s *Syncer) CalculateTradeAreaMetrics(dealID, tradeAreaID uint) (*models.TradeAreaMetrics, error) {
	area, err := s.db.GetTradeArea(tradeAreaID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, ErrTradeAreaNotFound
	}

	lat, lon, err := geo.Centroid(area.Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve trade area centroid: %w", err)
	}

	id := dealID
	candidates, err := s.fetchCandidates(&id, SyncTypeTradeArea, lat, lon, s.cfg.Listings.MarketRadiusMiles)
	if err != nil {
		return nil, err
	}

	agg := market.AggregateCandidates(candidates)

	snapshots, err := s.db.GetSnapshots(tradeAreaID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	growth := market.RentGrowth12Mo(snapshots, now)

	metrics := &models.TradeAreaMetrics{
		DealID:               dealID,
		TradeAreaID:          tradeAreaID,
		PropertiesCount:      agg.PropertiesCount,
		AvgRentStudio:        agg.AvgRentStudio,
		AvgRent1BR:           agg.AvgRent1BR,
		AvgRent2BR:           agg.AvgRent2BR,
		AvgRent3BR:           agg.AvgRent3BR,
		AvgOccupancyRate:     agg.AvgOccupancyRate,
		TotalUnits:           agg.TotalUnits,
		AvailableUnits:       agg.AvailableUnits,
		RentGrowth12Mo:       growth,
		CompetitionIntensity: market.CompetitionIntensity(agg.PropertiesCount),
		CalculatedAt:         now,
	}
	if err := s.db.UpsertTradeAreaMetrics(metrics); err != nil {
		return nil, err
	}

	snapshot := &models.MarketMetricSnapshot{
		TradeAreaID:      tradeAreaID,
		SnapshotDate:     now.Format(market.SnapshotDateLayout),
		AvgRent:          market.BlendedRent(agg.AvgRent1BR, agg.AvgRent2BR),
		AvgOccupancyRate: agg.AvgOccupancyRate,
		PropertiesCount:  agg.PropertiesCount,
		AvailableUnits:   agg.AvailableUnits,
	}
	if err := s.db.UpsertSnapshot(snapshot); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"deal_id":       dealID,
		"trade_area_id": tradeAreaID,
		"properties":    agg.PropertiesCount,
		"intensity":     metrics.CompetitionIntensity,
	}).Info("Calculated trade area metrics")

	return metrics, nil
}

// SyncDeal runs the full pipeline for a deal: comparable linking first, then
// trade-area metrics when the deal has a trade area.
func (s *Syncer) SyncDeal(dealID uint) error {
	deal, err := s.db.GetDeal(dealID)
	if err != nil {
		return err
	}
	if deal == nil {
		return ErrDealNotFound
	}
	if deal.Latitude == nil || deal.Longitude == nil {
		return ErrMissingCoordinates
	}

	if _, err := s.LinkComparables(dealID, *deal.Latitude, *deal.Longitude); err != nil {
		return err
	}

	if deal.TradeAreaID != nil {
		if _, err := s.CalculateTradeAreaMetrics(dealID, *deal.TradeAreaID); err != nil {
			return err
		}
	}

	return nil
}

// SyncStatus classifies the freshness of a deal's metrics.
func (s *Syncer) SyncStatus(dealID uint) (market.SyncStatus, error) {
	last, err := s.db.LastMetricsCalculated(dealID)
	if err != nil {
		return market.SyncStatus{}, err
	}
	hasHistory, err := s.db.HasSyncHistory(dealID)
	if err != nil {
		return market.SyncStatus{}, err
	}
	return market.ClassifyFreshness(last, hasHistory, s.now()), nil
}
