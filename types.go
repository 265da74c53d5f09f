package mmn

import "sort"

// PriceRecord is one row of a terminal-market price report as returned by the
// MARS API. String fields carry the upstream values verbatim; prices are the
// daily low/high for the listed package and grade.
type PriceRecord struct {
	ReportDate string  `json:"report_date"`
	SlugID     string  `json:"slug_id"`
	Commodity  string  `json:"commodity"`
	Variety    string  `json:"variety"`
	Package    string  `json:"package"`
	ItemSize   string  `json:"item_size"`
	Properties string  `json:"properties"`
	Grade      string  `json:"grade"`
	Organic    string  `json:"organic"`
	Origin     string  `json:"origin"`
	LowPrice   float64 `json:"low_price"`
	HighPrice  float64 `json:"high_price"`
	UnitSales  string  `json:"unit_sales"`
}

// ResultSet is the in-memory shape of a fetched report. It is identical
// whether it came from the cache or from the network.
type ResultSet []PriceRecord

// Commodities returns the distinct commodity names present in the set,
// sorted ascending.
func (rs ResultSet) Commodities() []string {
	seen := make(map[string]struct{}, 16)
	for _, r := range rs {
		if r.Commodity == "" {
			continue
		}
		seen[r.Commodity] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Market is a terminal market known to MARS. SlugID is the upstream
// identifier (a 4-digit numeric string); Name is the proprietary
// market name derived from the report title (e.g. "Atlanta fruits").
type Market struct {
	SlugID      string `json:"slug_id"`
	Name        string `json:"market_name"`
	ReportTitle string `json:"report_title"`
}
