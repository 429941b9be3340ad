package config

// Market represents a tracked metro market configuration
type Market struct {
	Name      string    `json:"name"`
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

// SupportedMarkets is a list of metro markets supported by the application
var SupportedMarkets = []Market{
	{
		Name:      "atlanta",
		Center:    []float64{33.7490, -84.3880},
		ZoomLevel: 11,
	},
	{
		Name:      "dallas",
		Center:    []float64{32.7767, -96.7970},
		ZoomLevel: 11,
	},
	{
		Name:      "phoenix",
		Center:    []float64{33.4484, -112.0740},
		ZoomLevel: 11,
	},
	// Add more markets here as needed
}

// GetMarketNames returns a list of supported market names
func GetMarketNames() []string {
	names := make([]string, len(SupportedMarkets))
	for i, market := range SupportedMarkets {
		names[i] = market.Name
	}
	return names
}

// GetMarketByName returns a market configuration by name
func GetMarketByName(name string) *Market {
	for _, market := range SupportedMarkets {
		if market.Name == name {
			return &market
		}
	}
	return nil
}
