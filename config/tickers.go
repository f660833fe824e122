package config

// IndexTicker describes a market index series offered for comparison.
type IndexTicker struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

// SupportedTickers is the fixed set of comparison indices. Mostly REITs, so
// property returns are benchmarked against listed real estate, plus a broad
// market index and one alternative asset.
var SupportedTickers = []IndexTicker{
	{
		Name:        "Realty Income",
		Symbol:      "O",
		Description: "Known for consistent dividends, a solid choice for income-focused investors.",
	},
	{
		Name:        "Prologis",
		Symbol:      "PLD",
		Description: "Largest industrial REIT, benefiting from the growth of e-commerce.",
	},
	{
		Name:        "American Tower",
		Symbol:      "AMT",
		Description: "Specializes in cell towers, benefiting from 5G expansion.",
	},
	{
		Name:        "Welltower",
		Symbol:      "WELL",
		Description: "Focused on healthcare properties, an essential sector.",
	},
	{
		Name:        "Simon Property Group",
		Symbol:      "SPG",
		Description: "Largest retail REIT, providing exposure to commercial real estate.",
	},
	{
		Name:        "S&P 500",
		Symbol:      "^GSPC",
		Description: "Broad market index for overall market comparison.",
	},
	{
		Name:        "Bitcoin",
		Symbol:      "BTC-USD",
		Description: "Represents an alternative investment class for comparison.",
	},
}

// RiskFreeTicker is the 13-week treasury bill series used as the risk-free
// rate.
const RiskFreeTicker = "^IRX"

// DefaultIndexTicker is used when a request does not name an index.
const DefaultIndexTicker = "^GSPC"

// GetTickerSymbols returns the symbols of all supported tickers.
func GetTickerSymbols() []string {
	symbols := make([]string, len(SupportedTickers))
	for i, t := range SupportedTickers {
		symbols[i] = t.Symbol
	}
	return symbols
}

// GetTickerBySymbol returns the ticker configuration for a symbol.
func GetTickerBySymbol(symbol string) *IndexTicker {
	for _, t := range SupportedTickers {
		if t.Symbol == symbol {
			return &t
		}
	}
	return nil
}
