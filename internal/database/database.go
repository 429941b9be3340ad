package database

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"compscope/server/internal/models"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// NewTestDB opens a private in-memory database for tests. Each call gets its
// own schema; cache=shared keeps the connection pool on one store.
func NewTestDB() (*Database, error) {
	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return &Database{db: db}, nil
}

var testDBCounter int64

func (d *Database) RunMigrations() error {
	return d.db.AutoMigrate(
		&models.Deal{},
		&models.TradeArea{},
		&models.Comparable{},
		&models.TradeAreaMetrics{},
		&models.MarketMetricSnapshot{},
		&models.SyncLog{},
		&models.NotifierConfig{},
	)
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

// --- Deals ---

func (d *Database) CreateDeal(deal *models.Deal) error {
	if err := d.db.Create(deal).Error; err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
}

func (d *Database) GetDeal(id uint) (*models.Deal, error) {
	var deal models.Deal
	err := d.db.First(&deal, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return &deal, nil
}

func (d *Database) GetAllDeals() ([]models.Deal, error) {
	var deals []models.Deal
	if err := d.db.Order("id").Find(&deals).Error; err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return deals, nil
}

func (d *Database) UpdateDealCoordinates(id uint, lat, lon float64) error {
	now := time.Now()
	err := d.db.Model(&models.Deal{}).Where("id = ?", id).Updates(map[string]interface{}{
		"latitude":    lat,
		"longitude":   lon,
		"geocoded_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update deal coordinates: %w", err)
	}
	return nil
}

// GetDealsNeedingGeocoding returns deals with an address but no coordinates
// that have not been through a geocoding attempt yet.
func (d *Database) GetDealsNeedingGeocoding() ([]models.Deal, error) {
	var deals []models.Deal
	err := d.db.
		Where("(latitude IS NULL OR longitude IS NULL)").
		Where("geocoded_at IS NULL").
		Where("street <> '' AND city <> ''").
		Find(&deals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query deals needing geocoding: %w", err)
	}
	return deals, nil
}

// MarkGeocodingAttempted records a geocoding attempt so failed addresses are
// not retried on every pass.
func (d *Database) MarkGeocodingAttempted(id uint) error {
	now := time.Now()
	return d.db.Model(&models.Deal{}).Where("id = ?", id).
		Update("geocoded_at", now).Error
}

// --- Trade areas ---

func (d *Database) CreateTradeArea(area *models.TradeArea) error {
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(area).Error; err != nil {
			return err
		}
		return tx.Model(&models.Deal{}).Where("id = ?", area.DealID).
			Update("trade_area_id", area.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create trade area: %w", err)
	}
	return nil
}

func (d *Database) GetTradeArea(id uint) (*models.TradeArea, error) {
	var area models.TradeArea
	err := d.db.First(&area, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade area: %w", err)
	}
	return &area, nil
}

// --- Comparables ---

// UpsertComparables writes a scored comparable set keyed by (deal, candidate).
// On conflict the scoring columns are overwritten; created_at and any
// imported owner contact survive resyncs.
func (d *Database) UpsertComparables(comps []models.Comparable) error {
	if len(comps) == 0 {
		return nil
	}
	err := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "deal_id"}, {Name: "candidate_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "address", "latitude", "longitude",
			"distance_miles", "relevance_score", "price_per_sqft",
			"occupancy_rate", "min_bedrooms", "max_bedrooms",
			"within_trade_area", "stale", "last_synced_at",
		}),
	}).Create(&comps).Error
	if err != nil {
		return fmt.Errorf("failed to upsert comparables: %w", err)
	}
	return nil
}

// MarkStaleComparables flags comparables for a deal that were not part of the
// latest fetch. Nothing is ever deleted.
func (d *Database) MarkStaleComparables(dealID uint, activeCandidateIDs []string) error {
	q := d.db.Model(&models.Comparable{}).Where("deal_id = ?", dealID)
	if len(activeCandidateIDs) > 0 {
		q = q.Where("candidate_id NOT IN ?", activeCandidateIDs)
	}
	if err := q.Update("stale", true).Error; err != nil {
		return fmt.Errorf("failed to mark stale comparables: %w", err)
	}
	return nil
}

func (d *Database) GetComparables(dealID uint) ([]models.Comparable, error) {
	var comps []models.Comparable
	err := d.db.Where("deal_id = ?", dealID).
		Order("relevance_score DESC, distance_miles ASC").
		Find(&comps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get comparables: %w", err)
	}
	return comps, nil
}

func (d *Database) CountComparables(dealID uint) (int, error) {
	var count int64
	err := d.db.Model(&models.Comparable{}).Where("deal_id = ?", dealID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count comparables: %w", err)
	}
	return int(count), nil
}

// CountOwnerContacts returns how many linked comparables carry owner-contact
// info imported by the enrichment pipeline.
func (d *Database) CountOwnerContacts(dealID uint) (int, error) {
	var count int64
	err := d.db.Model(&models.Comparable{}).
		Where("deal_id = ?", dealID).
		Where("owner_contact IS NOT NULL AND owner_contact <> ''").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count owner contacts: %w", err)
	}
	return int(count), nil
}

// --- Trade-area metrics ---

// UpsertTradeAreaMetrics fully replaces the current metrics row for a
// (deal, trade area) pair.
func (d *Database) UpsertTradeAreaMetrics(m *models.TradeAreaMetrics) error {
	err := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "deal_id"}, {Name: "trade_area_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"properties_count", "avg_rent_studio", "avg_rent_1br",
			"avg_rent_2br", "avg_rent_3br", "avg_occupancy_rate",
			"total_units", "available_units", "rent_growth_12mo",
			"competition_intensity", "calculated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert trade area metrics: %w", err)
	}
	return nil
}

// GetTradeAreaMetrics returns the most recently calculated metrics row for a
// deal. A deal normally has one trade area; ordering keeps the result
// deterministic if older trade areas left rows behind.
func (d *Database) GetTradeAreaMetrics(dealID uint) (*models.TradeAreaMetrics, error) {
	var m models.TradeAreaMetrics
	err := d.db.Where("deal_id = ?", dealID).
		Order("calculated_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade area metrics: %w", err)
	}
	return &m, nil
}

// LastMetricsCalculated returns the timestamp of the most recent successful
// metrics calculation for a deal, or nil if none exists.
func (d *Database) LastMetricsCalculated(dealID uint) (*time.Time, error) {
	m, err := d.GetTradeAreaMetrics(dealID)
	if err != nil || m == nil {
		return nil, err
	}
	t := m.CalculatedAt
	return &t, nil
}

// --- Snapshots ---

// UpsertSnapshot writes a dated snapshot; same-day recomputation overwrites
// on the (trade area, date) key.
func (d *Database) UpsertSnapshot(s *models.MarketMetricSnapshot) error {
	err := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trade_area_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"avg_rent", "avg_occupancy_rate", "properties_count", "available_units",
		}),
	}).Create(s).Error
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (d *Database) GetSnapshots(tradeAreaID uint) ([]models.MarketMetricSnapshot, error) {
	var snaps []models.MarketMetricSnapshot
	err := d.db.Where("trade_area_id = ?", tradeAreaID).
		Order("snapshot_date ASC").
		Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots: %w", err)
	}
	return snaps, nil
}

// GetSnapshotsSince returns snapshots on or after a calendar date (inclusive),
// ordered oldest first.
func (d *Database) GetSnapshotsSince(tradeAreaID uint, since string) ([]models.MarketMetricSnapshot, error) {
	var snaps []models.MarketMetricSnapshot
	err := d.db.Where("trade_area_id = ? AND snapshot_date >= ?", tradeAreaID, since).
		Order("snapshot_date ASC").
		Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot window: %w", err)
	}
	return snaps, nil
}

// --- Sync log ---

// AppendSyncLog records a fetch attempt. The log is append-only.
func (d *Database) AppendSyncLog(entry *models.SyncLog) error {
	if err := d.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}

func (d *Database) HasSyncHistory(dealID uint) (bool, error) {
	var count int64
	err := d.db.Model(&models.SyncLog{}).Where("deal_id = ?", dealID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check sync history: %w", err)
	}
	return count > 0, nil
}

func (d *Database) GetSyncLogs(dealID uint, limit int) ([]models.SyncLog, error) {
	var logs []models.SyncLog
	err := d.db.Where("deal_id = ?", dealID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sync logs: %w", err)
	}
	return logs, nil
}

// --- Notifier config ---

func (d *Database) GetNotifierConfig() (*models.NotifierConfig, error) {
	var cfg models.NotifierConfig
	err := d.db.First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notifier config: %w", err)
	}
	return &cfg, nil
}

func (d *Database) UpdateNotifierConfig(req *models.NotifierConfigRequest) error {
	existing, err := d.GetNotifierConfig()
	if err != nil {
		return err
	}

	if existing == nil {
		cfg := models.NotifierConfig{
			BotToken:  req.BotToken,
			ChatID:    req.ChatID,
			IsEnabled: req.IsEnabled,
		}
		if err := d.db.Create(&cfg).Error; err != nil {
			return fmt.Errorf("failed to create notifier config: %w", err)
		}
		return nil
	}

	existing.BotToken = req.BotToken
	existing.ChatID = req.ChatID
	existing.IsEnabled = req.IsEnabled
	if err := d.db.Save(existing).Error; err != nil {
		return fmt.Errorf("failed to update notifier config: %w", err)
	}
	return nil
}
