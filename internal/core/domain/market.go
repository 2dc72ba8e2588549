package domain

import "time"

// Coin is a row of the market overview table.
type Coin struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Image        string  `json:"image,omitempty"`
	CurrentPrice float64 `json:"currentPrice"`
	Change24h    float64 `json:"change24h"`
	MarketCap    float64 `json:"marketCap"`
}

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// CoinLinks holds the project links shown in the details panel.
type CoinLinks struct {
	Homepage []string `json:"homepage,omitempty"`
	Explorer []string `json:"explorer,omitempty"`
	Reddit   string   `json:"reddit,omitempty"`
	GitHub   []string `json:"github,omitempty"`
}

// CoinDetails describes a single coin project.
type CoinDetails struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Symbol      string            `json:"symbol"`
	Image       string            `json:"image,omitempty"`
	GenesisDate string            `json:"genesisDate,omitempty"`
	Description map[string]string `json:"description"`
	Links       CoinLinks         `json:"links"`
}

// DescriptionFor returns the description in the display language lang. The
// display code "ua" is stored under the ISO code "uk"; English is the
// fallback.
func (d *CoinDetails) DescriptionFor(lang string) string {
	if lang == "ua" {
		lang = "uk"
	}
	if text := d.Description[lang]; text != "" {
		return text
	}
	return d.Description["en"]
}
