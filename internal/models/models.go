package models

import "time"

// Deal is an investment deal anchored at a geographic point. Coordinates may
// be missing on creation; the geocoding backfill fills them from the address.
type Deal struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name"`
	Street      string     `json:"street"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	PostalCode  string     `json:"postal_code"`
	Status      string     `json:"status" gorm:"default:active"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	JediScore   *float64   `json:"jedi_score"`
	TradeAreaID *uint      `json:"trade_area_id"`
	GeocodedAt  *time.Time `json:"geocoded_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TradeArea is the wider market region tied to a deal. Geometry is stored as
// raw GeoJSON; the centroid is resolved at read time, never persisted.
type TradeArea struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DealID    uint      `json:"deal_id" gorm:"index"`
	Name      string    `json:"name"`
	Geometry  string    `json:"geometry"`
	CreatedAt time.Time `json:"created_at"`
}

// Comparable is a scored candidate property linked to a deal. One row per
// (deal, candidate); repeated syncs overwrite the scoring columns in place.
type Comparable struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	DealID          uint      `json:"deal_id" gorm:"uniqueIndex:idx_comparables_deal_candidate"`
	CandidateID     string    `json:"candidate_id" gorm:"uniqueIndex:idx_comparables_deal_candidate"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	DistanceMiles   float64   `json:"distance_miles"`
	RelevanceScore  int       `json:"relevance_score"`
	PricePerSqft    *float64  `json:"price_per_sqft"`
	OccupancyRate   *float64  `json:"occupancy_rate"`
	MinBedrooms     int       `json:"min_bedrooms"`
	MaxBedrooms     int       `json:"max_bedrooms"`
	WithinTradeArea bool      `json:"within_trade_area"`
	Stale           bool      `json:"stale"`
	OwnerContact    *string   `json:"owner_contact"`
	LastSyncedAt    time.Time `json:"last_synced_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// TradeAreaMetrics is the current aggregated market picture for a trade area.
// Fully replaced on every calculation.
type TradeAreaMetrics struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	DealID               uint      `json:"deal_id" gorm:"uniqueIndex:idx_metrics_deal_area"`
	TradeAreaID          uint      `json:"trade_area_id" gorm:"uniqueIndex:idx_metrics_deal_area"`
	PropertiesCount      int       `json:"properties_count"`
	AvgRentStudio        *float64  `json:"avg_rent_studio"`
	AvgRent1BR           *float64  `json:"avg_rent_1br" gorm:"column:avg_rent_1br"`
	AvgRent2BR           *float64  `json:"avg_rent_2br" gorm:"column:avg_rent_2br"`
	AvgRent3BR           *float64  `json:"avg_rent_3br" gorm:"column:avg_rent_3br"`
	AvgOccupancyRate     *float64  `json:"avg_occupancy_rate"`
	TotalUnits           int       `json:"total_units"`
	AvailableUnits       int       `json:"available_units"`
	RentGrowth12Mo       float64   `json:"rent_growth_12mo" gorm:"column:rent_growth_12mo"`
	CompetitionIntensity string    `json:"competition_intensity"`
	CalculatedAt         time.Time `json:"calculated_at"`
}

// MarketMetricSnapshot is one point on a trade area's trend line. One row per
// (trade area, date); same-day recalculation overwrites on the date key.
type MarketMetricSnapshot struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	TradeAreaID      uint      `json:"trade_area_id" gorm:"uniqueIndex:idx_snapshots_area_date"`
	SnapshotDate     string    `json:"snapshot_date" gorm:"uniqueIndex:idx_snapshots_area_date"`
	AvgRent          float64   `json:"avg_rent"`
	AvgOccupancyRate *float64  `json:"avg_occupancy_rate"`
	PropertiesCount  int       `json:"properties_count"`
	AvailableUnits   int       `json:"available_units"`
	CreatedAt        time.Time `json:"created_at"`
}

// SyncLog records every fetch attempt against the listings provider.
// Append-only; rows are never updated or deleted.
type SyncLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	DealID       *uint     `json:"deal_id" gorm:"index"`
	SyncType     string    `json:"sync_type"`
	Status       string    `json:"status"`
	RecordCount  int       `json:"record_count"`
	Endpoint     string    `json:"endpoint"`
	ErrorMessage *string   `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}

// CandidateProperty is the provider's listing shape. Borrowed per call and
// never persisted verbatim.
type CandidateProperty struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	MinPrice      float64  `json:"min_price"`
	MaxPrice      float64  `json:"max_price"`
	MinBedrooms   int      `json:"min_bedrooms"`
	MaxBedrooms   int      `json:"max_bedrooms"`
	MinSquareFeet float64  `json:"min_square_feet"`
	MaxSquareFeet float64  `json:"max_square_feet"`
	OccupancyRate *float64 `json:"occupancy_rate"`
	Amenities     []string `json:"amenities"`
	YearBuilt     *int     `json:"year_built"`
}

// NotifierConfig holds the Telegram notification settings.
type NotifierConfig struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BotToken  string    `json:"bot_token"`
	ChatID    string    `json:"chat_id"`
	IsEnabled bool      `json:"is_enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotifierConfigRequest is the admin payload for updating the notifier.
type NotifierConfigRequest struct {
	BotToken  string `json:"bot_token" binding:"required"`
	ChatID    string `json:"chat_id" binding:"required"`
	IsEnabled bool   `json:"is_enabled"`
}
