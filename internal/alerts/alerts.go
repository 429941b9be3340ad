package alerts

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"compscope/server/internal/models"
)

// Alert types and severities surfaced on the market overview.
const (
	TypeNewData      = "new_data"
	TypeOpportunity  = "opportunity"
	TypeMarketUpdate = "market_update"

	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
)

// strongBuyThreshold is the jedi score at or above which a market is flagged
// as a strong buy.
const strongBuyThreshold = 90.0

// MarketVitals carries the downstream investment-scoring signals for a market.
type MarketVitals struct {
	JediScore float64 `json:"jedi_score"`
}

// MarketSummary is the caller-supplied rollup for one tracked market.
type MarketSummary struct {
	MarketID   uint          `json:"market_id"`
	Name       string        `json:"name"`
	DataPoints int           `json:"data_points"`
	Status     string        `json:"status"`
	Vitals     *MarketVitals `json:"vitals"`
}

// Alert is a user-facing market event. Alerts are regenerated on every
// overview request and never persisted.
type Alert struct {
	MarketID uint   `json:"market_id"`
	Market   string `json:"market"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// OwnerContactCounter counts linked properties carrying owner-contact info.
type OwnerContactCounter interface {
	CountOwnerContacts(dealID uint) (int, error)
}

// Generator derives alert events from market summaries.
type Generator struct {
	counter OwnerContactCounter
	logger  *logrus.Logger
}

func NewGenerator(counter OwnerContactCounter, logger *logrus.Logger) *Generator {
	return &Generator{counter: counter, logger: logger}
}

// BuildSummary assembles a market summary from a deal and its comparable
// count.
func BuildSummary(deal models.Deal, dataPoints int) MarketSummary {
	summary := MarketSummary{
		MarketID:   deal.ID,
		Name:       deal.Name,
		DataPoints: dataPoints,
		Status:     deal.Status,
	}
	if deal.JediScore != nil {
		summary.Vitals = &MarketVitals{JediScore: *deal.JediScore}
	}
	return summary
}

// Generate produces the full alert set for the supplied summaries, in
// insertion order. A failed owner-contact lookup only suppresses that one
// market's new-data alert; the rest of the batch is unaffected.
func (g *Generator) Generate(summaries []MarketSummary) []Alert {
	alerts := make([]Alert, 0)

	for _, s := range summaries {
		if s.Status == "active" && s.DataPoints > 0 {
			count, err := g.counter.CountOwnerContacts(s.MarketID)
			if err != nil {
				g.logger.WithError(err).WithField("market_id", s.MarketID).
					Warn("Owner contact lookup failed, skipping new-data alert")
			} else if count > 0 {
				alerts = append(alerts, Alert{
					MarketID: s.MarketID,
					Market:   s.Name,
					Type:     TypeNewData,
					Severity: SeverityInfo,
					Title:    "New Data Available",
					Message:  fmt.Sprintf("%d properties with owner contact information", count),
				})
			}
		}

		if s.Vitals != nil && s.Vitals.JediScore >= strongBuyThreshold {
			alerts = append(alerts, Alert{
				MarketID: s.MarketID,
				Market:   s.Name,
				Type:     TypeOpportunity,
				Severity: SeveritySuccess,
				Title:    "Strong Buy Signal",
				Message:  fmt.Sprintf("Jedi score of %.0f indicates a strong opportunity", s.Vitals.JediScore),
			})
		}

		if s.Status == "pending" && s.DataPoints == 0 {
			alerts = append(alerts, Alert{
				MarketID: s.MarketID,
				Market:   s.Name,
				Type:     TypeMarketUpdate,
				Severity: SeverityWarning,
				Title:    "Import Pending",
				Message:  "Market data import has not completed yet",
			})
		}
	}

	return alerts
}
