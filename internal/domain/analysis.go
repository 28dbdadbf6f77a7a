package domain

import "encoding/json"

// AnalysisResult is the report produced by the analysis service. The client
// treats it as an immutable value once received; use Clone before handing it
// to code that may modify it.
//
// The server's keys are canonical; the English aliases are accepted on decode
// so older and newer API versions both load.
type AnalysisResult struct {
	Summary         *Summary   `json:"resumen_general,omitempty"`
	Alerts          []string   `json:"alertas"`
	Recommendations []string   `json:"recomendaciones"`
	LineItems       []LineItem `json:"partidas"`
}

// Summary holds the aggregate cost, market and credibility figures.
// Absent numbers decode as zero.
type Summary struct {
	ContractCost      float64 `json:"costo_en_contrato"`
	MarketPrice       float64 `json:"precio_estimado_mercado"`
	Difference        float64 `json:"diferencia_total"`
	DifferencePercent float64 `json:"diferencia_porcentaje"`
	Credibility       float64 `json:"credibilidad"`
}

// LineItem is one priced concept of the analyzed contract.
type LineItem struct {
	Concept           string  `json:"concepto"`
	Unit              string  `json:"unidad"`
	Quantity          float64 `json:"cantidad"`
	ContractCost      float64 `json:"costo_en_contrato"`
	MarketPrice       float64 `json:"precio_estimado_mercado"`
	Difference        float64 `json:"diferencia"`
	DifferencePercent float64 `json:"diferencia_%"`
}

// HasSummary reports whether the required summary section is present.
func (a *AnalysisResult) HasSummary() bool {
	return a != nil && a.Summary != nil
}

// Clone returns a deep copy of the result.
func (a *AnalysisResult) Clone() *AnalysisResult {
	if a == nil {
		return nil
	}
	out := &AnalysisResult{
		Alerts:          append([]string(nil), a.Alerts...),
		Recommendations: append([]string(nil), a.Recommendations...),
		LineItems:       append([]LineItem(nil), a.LineItems...),
	}
	if a.Summary != nil {
		s := *a.Summary
		out.Summary = &s
	}
	return out
}

func (a *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Summary           *Summary   `json:"resumen_general"`
		SummaryEN         *Summary   `json:"summary"`
		Alerts            []string   `json:"alertas"`
		AlertsEN          []string   `json:"alerts"`
		Recommendations   []string   `json:"recomendaciones"`
		RecommendationsEN []string   `json:"recommendations"`
		LineItems         []LineItem `json:"partidas"`
		LineItemsEN       []LineItem `json:"lineItems"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AnalysisResult{
		Summary:         firstNonNil(raw.Summary, raw.SummaryEN),
		Alerts:          firstNonEmpty(raw.Alerts, raw.AlertsEN),
		Recommendations: firstNonEmpty(raw.Recommendations, raw.RecommendationsEN),
		LineItems:       firstNonEmpty(raw.LineItems, raw.LineItemsEN),
	}
	return nil
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var raw struct {
		ContractCost        *float64 `json:"costo_en_contrato"`
		ContractCostEN      *float64 `json:"contractCost"`
		MarketPrice         *float64 `json:"precio_estimado_mercado"`
		MarketPriceEN       *float64 `json:"marketPrice"`
		Difference          *float64 `json:"diferencia_total"`
		DifferenceEN        *float64 `json:"difference"`
		DifferencePercent   *float64 `json:"diferencia_porcentaje"`
		DifferencePercentEN *float64 `json:"differencePercent"`
		Credibility         *float64 `json:"credibilidad"`
		CredibilityEN       *float64 `json:"credibility"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Summary{
		ContractCost:      numberOrZero(raw.ContractCost, raw.ContractCostEN),
		MarketPrice:       numberOrZero(raw.MarketPrice, raw.MarketPriceEN),
		Difference:        numberOrZero(raw.Difference, raw.DifferenceEN),
		DifferencePercent: numberOrZero(raw.DifferencePercent, raw.DifferencePercentEN),
		Credibility:       numberOrZero(raw.Credibility, raw.CredibilityEN),
	}
	return nil
}

func (l *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Concept             *string  `json:"concepto"`
		ConceptEN           *string  `json:"concept"`
		Unit                *string  `json:"unidad"`
		UnitEN              *string  `json:"unit"`
		Quantity            *float64 `json:"cantidad"`
		QuantityEN          *float64 `json:"quantity"`
		ContractCost        *float64 `json:"costo_en_contrato"`
		ContractCostEN      *float64 `json:"contractCost"`
		MarketPrice         *float64 `json:"precio_estimado_mercado"`
		MarketPriceEN       *float64 `json:"marketPrice"`
		Difference          *float64 `json:"diferencia"`
		DifferenceEN        *float64 `json:"difference"`
		DifferencePercent   *float64 `json:"diferencia_%"`
		DifferencePercentEN *float64 `json:"differencePercent"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = LineItem{
		Concept:           stringOrEmpty(raw.Concept, raw.ConceptEN),
		Unit:              stringOrEmpty(raw.Unit, raw.UnitEN),
		Quantity:          numberOrZero(raw.Quantity, raw.QuantityEN),
		ContractCost:      numberOrZero(raw.ContractCost, raw.ContractCostEN),
		MarketPrice:       numberOrZero(raw.MarketPrice, raw.MarketPriceEN),
		Difference:        numberOrZero(raw.Difference, raw.DifferenceEN),
		DifferencePercent: numberOrZero(raw.DifferencePercent, raw.DifferencePercentEN),
	}
	return nil
}

func firstNonNil[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty[T any](vals ...[]T) []T {
	for _, v := range vals {
		if len(v) > 0 {
			return v
		}
	}
	return []T{}
}

func numberOrZero(vals ...*float64) float64 {
	if v := firstNonNil(vals...); v != nil {
		return *v
	}
	return 0
}

func stringOrEmpty(vals ...*string) string {
	if v := firstNonNil(vals...); v != nil {
		return *v
	}
	return ""
}
