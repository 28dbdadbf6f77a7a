// Package render turns analysis results into display structures, HTML,
// spreadsheets and YAML.
package render

import "ppm/internal/domain"

// Placeholders shown for missing data.
const (
	NoAnalysis        = "No analysis information found."
	NoAlerts          = "No alerts."
	NoRecommendations = "No recommendations."
	NothingLoaded     = "No analysis loaded yet."
)

// Report is the display structure of one analysis.
type Report struct {
	Empty           bool          `json:"empty" yaml:"empty"`
	Placeholder     string        `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Summary         SummaryView   `json:"summary" yaml:"summary"`
	Alerts          Section       `json:"alerts" yaml:"alerts"`
	Recommendations Section       `json:"recommendations" yaml:"recommendations"`
	Details         *DetailToggle `json:"details,omitempty" yaml:"details,omitempty"`
	Rows            []RowView     `json:"rows" yaml:"rows"`
}

// SummaryView holds the formatted summary figures.
type SummaryView struct {
	ContractCost string `json:"contract_cost" yaml:"contract_cost"`
	MarketPrice  string `json:"market_price" yaml:"market_price"`
	Difference   string `json:"difference" yaml:"difference"`
	Credibility  string `json:"credibility" yaml:"credibility"`
}

// Section is a titled list with a placeholder for when it is empty.
type Section struct {
	Title       string   `json:"title" yaml:"title"`
	Items       []string `json:"items" yaml:"items"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Empty reports whether the section has no items.
func (s Section) Empty() bool {
	return len(s.Items) == 0
}

// RowView is one formatted line item.
type RowView struct {
	Concept           string `json:"concept" yaml:"concept"`
	Unit              string `json:"unit" yaml:"unit"`
	Quantity          string `json:"quantity" yaml:"quantity"`
	ContractCost      string `json:"contract_cost" yaml:"contract_cost"`
	MarketPrice       string `json:"market_price" yaml:"market_price"`
	Difference        string `json:"difference" yaml:"difference"`
	DifferencePercent string `json:"difference_percent" yaml:"difference_percent"`
}

// Render builds the display structure of result. A result without a summary
// renders as an empty report with no detail toggle.
func Render(result *domain.AnalysisResult) *Report {
	if !result.HasSummary() {
		return &Report{Empty: true, Placeholder: NoAnalysis}
	}

	s := result.Summary
	report := &Report{
		Summary: SummaryView{
			ContractCost: Money(s.ContractCost),
			MarketPrice:  Money(s.MarketPrice),
			Difference:   Money(s.Difference) + " (" + Percent(s.DifferencePercent) + ")",
			Credibility:  Percent(s.Credibility),
		},
		Alerts:          section("Alerts", result.Alerts, NoAlerts),
		Recommendations: section("Recommendations", result.Recommendations, NoRecommendations),
		Details:         &DetailToggle{},
		Rows:            make([]RowView, 0, len(result.LineItems)),
	}
	for _, item := range result.LineItems {
		report.Rows = append(report.Rows, RowView{
			Concept:           item.Concept,
			Unit:              item.Unit,
			Quantity:          Plain(item.Quantity),
			ContractCost:      Money(item.ContractCost),
			MarketPrice:       Money(item.MarketPrice),
			Difference:        Money(item.Difference),
			DifferencePercent: RowPercent(item.DifferencePercent),
		})
	}
	return report
}

func section(title string, items []string, placeholder string) Section {
	s := Section{Title: title, Items: append([]string{}, items...)}
	if len(items) == 0 {
		s.Placeholder = placeholder
	}
	return s
}
