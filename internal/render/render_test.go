package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"ppm/internal/domain"
	"ppm/internal/render"
)

func sampleResult(t *testing.T) *domain.AnalysisResult {
	t.Helper()
	var r domain.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"summary": {"contractCost": 1000, "marketPrice": 1200, "difference": 200, "differencePercent": 20, "credibility": 80},
		"alerts": [], "recommendations": [], "lineItems": []
	}`), &r))
	return &r
}

func TestRender_SummaryFormatting(t *testing.T) {
	report := render.Render(sampleResult(t))

	assert.False(t, report.Empty)
	assert.Equal(t, "$1,000", report.Summary.ContractCost)
	assert.Equal(t, "$1,200", report.Summary.MarketPrice)
	assert.Equal(t, "$200 (20%)", report.Summary.Difference)
	assert.Equal(t, "80%", report.Summary.Credibility)

	assert.True(t, report.Alerts.Empty())
	assert.Equal(t, render.NoAlerts, report.Alerts.Placeholder)
	assert.Equal(t, render.NoRecommendations, report.Recommendations.Placeholder)

	require.NotNil(t, report.Details)
	assert.False(t, report.Details.Visible)
	assert.Empty(t, report.Rows)
}

func TestRender_MissingSummary(t *testing.T) {
	var r domain.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(`{"alertas":["x"]}`), &r))

	report := render.Render(&r)

	assert.True(t, report.Empty)
	assert.Equal(t, render.NoAnalysis, report.Placeholder)
	assert.Nil(t, report.Details)

	assert.True(t, render.Render(nil).Empty)
}

func TestRender_MissingNumbersDefaultToZero(t *testing.T) {
	var r domain.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(`{"resumen_general":{},"partidas":[{"concepto":"Acero"}]}`), &r))

	report := render.Render(&r)

	assert.Equal(t, "$0", report.Summary.ContractCost)
	assert.Equal(t, "$0 (0%)", report.Summary.Difference)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Acero", report.Rows[0].Concept)
	assert.Equal(t, "0.00%", report.Rows[0].DifferencePercent)
}

func TestRender_Rows(t *testing.T) {
	result := &domain.AnalysisResult{
		Summary: &domain.Summary{ContractCost: 1234567.5},
		Alerts:  []string{"Overpriced concrete"},
		LineItems: []domain.LineItem{
			{Concept: "Concrete", Unit: "m3", Quantity: 12.5, ContractCost: 1500, MarketPrice: 1200, Difference: 300, DifferencePercent: 25},
		},
	}

	report := render.Render(result)

	assert.Equal(t, "$1,234,567.5", report.Summary.ContractCost)
	assert.Equal(t, []string{"Overpriced concrete"}, report.Alerts.Items)
	assert.Empty(t, report.Alerts.Placeholder)
	assert.Equal(t, render.RowView{
		Concept: "Concrete", Unit: "m3", Quantity: "12.5",
		ContractCost: "$1,500", MarketPrice: "$1,200", Difference: "$300", DifferencePercent: "25.00%",
	}, report.Rows[0])
}

func TestDetailToggle_Parity(t *testing.T) {
	for clicks := 0; clicks < 6; clicks++ {
		toggle := &render.DetailToggle{}
		for i := 0; i < clicks; i++ {
			toggle.Toggle()
		}
		if clicks%2 == 1 {
			assert.True(t, toggle.Visible, "clicks=%d", clicks)
			assert.Equal(t, "Hide details", toggle.Label())
			assert.Equal(t, "details", toggle.Class())
		} else {
			assert.False(t, toggle.Visible, "clicks=%d", clicks)
			assert.Equal(t, "Show details", toggle.Label())
			assert.Equal(t, "details hidden", toggle.Class())
		}
	}
}

func TestHTML_EscapesServerStrings(t *testing.T) {
	result := &domain.AnalysisResult{
		Summary: &domain.Summary{},
		Alerts:  []string{`<script>alert(1)</script>`},
	}

	out, err := render.HTML(render.Render(result))

	require.NoError(t, err)
	html := string(out)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Show details")
	assert.Contains(t, html, `class="details hidden"`)
	assert.Contains(t, html, render.NoRecommendations)
}

func TestHTML_EmptyReportHasNoToggle(t *testing.T) {
	out, err := render.HTML(render.Render(&domain.AnalysisResult{}))

	require.NoError(t, err)
	assert.Contains(t, string(out), render.NoAnalysis)
	assert.NotContains(t, string(out), "toggleDetails")
}

func TestEmailHTML(t *testing.T) {
	out, err := render.EmailHTML("Analysis - contract.pdf", render.Render(sampleResult(t)))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "$1,000")
}

func TestText(t *testing.T) {
	report := render.Render(sampleResult(t))
	report.Details.Toggle()

	out := render.Text(report)

	assert.Contains(t, out, "Credibility:            80%")
	assert.Contains(t, out, "  No alerts.")
	assert.Contains(t, out, "Line items")
	assert.Equal(t, render.NoAnalysis+"\n", render.Text(render.Render(nil)))
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.WriteYAML(&buf, render.Render(sampleResult(t))))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	summary := decoded["summary"].(map[string]interface{})
	assert.Equal(t, "$200 (20%)", summary["difference"])
}

func TestWriteXLSX(t *testing.T) {
	result := sampleResult(t)
	result.LineItems = []domain.LineItem{{Concept: "Concrete", Unit: "m3", Quantity: 2, ContractCost: 100}}

	var buf bytes.Buffer
	require.NoError(t, render.WriteXLSX(&buf, result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Summary", "Line Items"}, f.GetSheetList())
	rows, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Concept", rows[0][0])
	assert.Equal(t, []string{"Concrete", "m3", "2", "100", "0", "0", "0"}, rows[1])

	label, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Contract cost", label)
}
