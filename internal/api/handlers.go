package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"compscope/server/config"
	"compscope/server/internal/alerts"
	"compscope/server/internal/database"
	"compscope/server/internal/geo"
	"compscope/server/internal/geocoding"
	"compscope/server/internal/market"
	"compscope/server/internal/models"
	"compscope/server/internal/notify"
	"compscope/server/internal/syncer"
)

type Handler struct {
	db          *database.Database
	logger      *logrus.Logger
	syncer      *syncer.Syncer
	geocoder    *geocoding.Geocoder
	alertGen    *alerts.Generator
	notifierSvc *notify.Service
}

type DealRequest struct {
	Name       string   `json:"name" binding:"required"`
	Street     string   `json:"street"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Status     string   `json:"status"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

type TradeAreaRequest struct {
	Name     string `json:"name"`
	Geometry string `json:"geometry" binding:"required"`
}

func NewHandler(db *database.Database, s *syncer.Syncer, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	cacheDir := filepath.Join(os.TempDir(), "compscope", "geocode_cache")

	notifierSvc := notify.NewService(logger)
	if config, err := db.GetNotifierConfig(); err == nil && config != nil {
		notifierSvc.UpdateConfig(config)
	}

	return &Handler{
		db:          db,
		logger:      logger,
		syncer:      s,
		geocoder:    geocoding.NewGeocoder(logger, cacheDir),
		alertGen:    alerts.NewGenerator(db, logger),
		notifierSvc: notifierSvc,
	}
}

func (h *Handler) dealFromParam(c *gin.Context) (*models.Deal, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deal id"})
		return nil, false
	}

	deal, err := h.db.GetDeal(uint(id))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get deal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get deal"})
		return nil, false
	}
	if deal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deal not found"})
		return nil, false
	}
	return deal, true
}

func (h *Handler) CreateDeal(c *gin.Context) {
	var req DealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse deal request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	deal := models.Deal{
		Name:       req.Name,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Status:     req.Status,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	}
	if deal.Status == "" {
		deal.Status = "active"
	}

	// Deals created without coordinates get one geocoding attempt up front
	if (deal.Latitude == nil || deal.Longitude == nil) && deal.Street != "" && deal.City != "" {
		lat, lon, err := h.geocoder.GeocodeAddress(deal.Street, deal.City, deal.State, deal.PostalCode)
		if err != nil {
			h.logger.WithError(err).Warn("Failed to geocode new deal")
		} else {
			now := time.Now()
			deal.Latitude = &lat
			deal.Longitude = &lon
			deal.GeocodedAt = &now
		}
	}

	if err := h.db.CreateDeal(&deal); err != nil {
		h.logger.WithError(err).Error("Failed to create deal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deal"})
		return
	}

	c.JSON(http.StatusCreated, deal)
}

// GetMarkets lists the tracked metro markets and their map centers.
func (h *Handler) GetMarkets(c *gin.Context) {
	c.JSON(http.StatusOK, config.SupportedMarkets)
}

func (h *Handler) GetAllDeals(c *gin.Context) {
	deals, err := h.db.GetAllDeals()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get deals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get deals"})
		return
	}

	c.JSON(http.StatusOK, deals)
}

func (h *Handler) CreateTradeArea(c *gin.Context) {
	deal, ok := h.dealFromParam(c)
	if !ok {
		return
	}

	var req TradeAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse trade area request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	// Reject geometry that cannot resolve to a centroid
	if _, _, err := geo.Centroid(req.Geometry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid GeoJSON geometry"})
		return
	}

	area := models.TradeArea{
		DealID:   deal.ID,
		Name:     req.Name,
		Geometry: req.Geometry,
	}
	if err := h.db.CreateTradeArea(&area); err != nil {
		h.logger.WithError(err).Error("Failed to create trade area")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trade area"})
		return
	}

	c.JSON(http.StatusCreated, area)
}

func (h *Handler) SyncDeal(c *gin.Context) {
	deal, ok := h.dealFromParam(c)
	if !ok {
		return
	}

	if err := h.syncer.SyncDeal(deal.ID); err != nil {
		h.logger.WithError(err).WithField("deal_id", deal.ID).Error("Sync failed")
		switch {
		case errors.Is(err, syncer.ErrMissingCoordinates):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Deal has no coordinates"})
		case errors.Is(err, syncer.ErrTradeAreaNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Trade area not found"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Sync failed"})
		}
		return
	}

	metrics, err := h.db.GetTradeAreaMetrics(deal.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read metrics after sync")
	}
	count, _ := h.db.CountComparables(deal.ID)

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"comparables": count,
		"metrics":     metrics,
	})
}

func (h *Handler) GetSyncStatus(c *gin.Context) {
	deal, ok := h.dealFromParam(c)
	if !ok {
		return
	}

	status, err := h.syncer.SyncStatus(deal.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get sync status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sync status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) GetMetrics(c *gin.Context) {
	deal, ok := h.dealFromParam(c)
	if !ok {
		return
	}

	metrics, err := h.db.GetTradeAreaMetrics(deal.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get metrics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get metrics"})
		return
	}
	if metrics == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No metrics calculated yet"})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *Handler) GetTrends(c *gin.Context) {
	deal, ok := h.dealFromParam(c)
	if !ok {
		return
	}
	if deal.TradeAreaID == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deal has no trade area"})
		return
	}

	months, err := strconv.Atoi(c.DefaultQuery("months", "12"))
	if err != nil || months <= 0 {
		months = 12
	}
	since := time.Now().AddDate(0, -months, 0).Format(market.SnapshotDateLayout)

	snapshots, err := h.db.GetSnapshotsSince(*deal.TradeAreaID, since)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get snapshots")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get trends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trade_area_id": *deal.TradeAreaID,
		"months":        months,
		"snapshots":     snapshots,
	})
}

func (h *Handler) GetComparables(c *gin.Context) {
	deal, ok := h.dealFromParam(c)
	if !ok {
		return
	}

	comps, err := h.db.GetComparables(deal.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get comparables")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comparables"})
		return
	}

	c.JSON(http.StatusOK, comps)
}

// GetAnalysisInput bundles everything the downstream investment scorer needs
// for one deal.
func (h *Handler) GetAnalysisInput(c *gin.Context) {
	deal, ok := h.dealFromParam(c)
	if !ok {
		return
	}

	metrics, err := h.db.GetTradeAreaMetrics(deal.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get metrics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analysis input"})
		return
	}
	comps, err := h.db.GetComparables(deal.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get comparables")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analysis input"})
		return
	}
	status, err := h.syncer.SyncStatus(deal.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get sync status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analysis input"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deal":        deal,
		"metrics":     metrics,
		"comparables": comps,
		"sync_status": status,
	})
}

func (h *Handler) GetMarketAlerts(c *gin.Context) {
	deals, err := h.db.GetAllDeals()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get deals for alerts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get alerts"})
		return
	}

	summaries := make([]alerts.MarketSummary, 0, len(deals))
	for _, deal := range deals {
		count, err := h.db.CountComparables(deal.ID)
		if err != nil {
			h.logger.WithError(err).WithField("deal_id", deal.ID).
				Warn("Failed to count comparables for alert summary")
		}
		summaries = append(summaries, alerts.BuildSummary(deal, count))
	}

	c.JSON(http.StatusOK, h.alertGen.Generate(summaries))
}

func (h *Handler) UpdateCoordinates(c *gin.Context) {
	if err := geocoding.Backfill(h.db, h.geocoder, h.logger); err != nil {
		h.logger.WithError(err).Error("Failed to update coordinates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coordinates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "Coordinates update process started",
	})
}

// GetNotifierConfig returns the current notifier configuration
func (h *Handler) GetNotifierConfig(c *gin.Context) {
	config, err := h.db.GetNotifierConfig()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get notifier config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notifier config"})
		return
	}

	if config == nil {
		c.JSON(http.StatusOK, gin.H{
			"is_enabled": false,
			"chat_id":    "",
			"bot_token":  "",
		})
		return
	}

	// Don't send the full bot token back to the client for security
	if len(config.BotToken) > 4 {
		config.BotToken = "••••" + config.BotToken[len(config.BotToken)-4:]
	}
	c.JSON(http.StatusOK, config)
}

// UpdateNotifierConfig updates the notifier configuration
func (h *Handler) UpdateNotifierConfig(c *gin.Context) {
	var request models.NotifierConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Error("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(request.BotToken) < 20 || !strings.Contains(request.BotToken, ":") {
		h.logger.Error("Invalid bot token format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bot token format. Please check your bot token from @BotFather"})
		return
	}

	// Test the configuration before saving
	testService := notify.NewService(h.logger)
	testService.UpdateConfig(&models.NotifierConfig{
		BotToken:  request.BotToken,
		ChatID:    request.ChatID,
		IsEnabled: true,
	})

	testMessage := "🔔 Test notification from CompScope\n\nIf you see this message, your notifier configuration is working correctly!"
	if err := testService.SendMessage(testMessage); err != nil {
		h.logger.WithError(err).Error("Failed to send test message")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.UpdateNotifierConfig(&request); err != nil {
		h.logger.WithError(err).Error("Failed to update notifier config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration to database"})
		return
	}

	if config, err := h.db.GetNotifierConfig(); err == nil && config != nil {
		h.notifierSvc.UpdateConfig(config)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifier configuration updated successfully"})
}

// TestNotifierConfig sends a sample opportunity alert through the notifier
func (h *Handler) TestNotifierConfig(c *gin.Context) {
	config, err := h.db.GetNotifierConfig()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get notifier config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notifier configuration"})
		return
	}

	if config == nil || !config.IsEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Notifier is not configured or is disabled"})
		return
	}

	testService := notify.NewService(h.logger)
	testService.UpdateConfig(config)

	sampleAlert := alerts.Alert{
		MarketID: 1,
		Market:   "Midtown Test Market",
		Type:     alerts.TypeOpportunity,
		Severity: alerts.SeveritySuccess,
		Title:    "Strong Buy Signal",
		Message:  "Jedi score of 94 indicates a strong opportunity",
	}
	if err := testService.NotifyAlert(sampleAlert); err != nil {
		h.logger.WithError(err).Error("Failed to send test notification")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent successfully"})
}
