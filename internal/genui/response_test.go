package genui

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseResponseDispatchesVariants(t *testing.T) {
	payload := `{
		"components": [
			{"type": "text", "id": "c1", "content": "Markets were mixed today.", "format": "markdown"},
			{"type": "security_card", "id": "c2", "symbol": "AAPL", "name": "Apple Inc.", "price": 232.5, "asset_type": "stock"},
			{"type": "metrics_grid", "id": "c3", "metrics": [
				{"label": "P/E", "value": 28.4, "format": "ratio"},
				{"label": "Dividend Yield", "value": "0.5%", "format": "percentage"}
			], "columns": 2},
			{"type": "action_suggestions", "id": "c4", "suggestions": [
				{"label": "Compare with MSFT", "query": "Compare AAPL with MSFT"}
			]}
		]
	}`

	resp, err := ParseResponse([]byte(payload))
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if len(resp.Components) != 4 {
		t.Fatalf("got %d components, want 4", len(resp.Components))
	}

	text, ok := resp.Components[0].(*Text)
	if !ok {
		t.Fatalf("component 0 is %T, want *Text", resp.Components[0])
	}
	if text.Format != FormatMarkdown {
		t.Errorf("text format = %q, want markdown", text.Format)
	}

	card, ok := resp.Components[1].(*SecurityCard)
	if !ok {
		t.Fatalf("component 1 is %T, want *SecurityCard", resp.Components[1])
	}
	if card.Symbol != "AAPL" || card.Price != 232.5 {
		t.Errorf("card = %+v, want AAPL at 232.5", card)
	}

	grid, ok := resp.Components[2].(*MetricsGrid)
	if !ok {
		t.Fatalf("component 2 is %T, want *MetricsGrid", resp.Components[2])
	}
	if len(grid.Metrics) != 2 {
		t.Errorf("got %d metrics, want 2", len(grid.Metrics))
	}
	// Metric values keep their JSON type: numbers decode as float64,
	// strings stay strings.
	if _, ok := grid.Metrics[0].Value.(float64); !ok {
		t.Errorf("metric 0 value is %T, want float64", grid.Metrics[0].Value)
	}
	if _, ok := grid.Metrics[1].Value.(string); !ok {
		t.Errorf("metric 1 value is %T, want string", grid.Metrics[1].Value)
	}

	suggestions, ok := resp.Components[3].(*ActionSuggestions)
	if !ok {
		t.Fatalf("component 3 is %T, want *ActionSuggestions", resp.Components[3])
	}
	if suggestions.Suggestions[0].Query != "Compare AAPL with MSFT" {
		t.Errorf("suggestion query = %q", suggestions.Suggestions[0].Query)
	}
}

func TestParseResponseRejectsUnknownType(t *testing.T) {
	// crypto_card appears in older payloads but is not part of the
	// contract; it must fail the whole decode.
	payload := `{"components": [
		{"type": "text", "content": "hello"},
		{"type": "crypto_card", "symbol": "BTC"}
	]}`

	_, err := ParseResponse([]byte(payload))
	if !errors.Is(err, ErrUnknownComponent) {
		t.Fatalf("ParseResponse() error = %v, want ErrUnknownComponent", err)
	}
	if !strings.Contains(err.Error(), "crypto_card") {
		t.Errorf("error %q does not name the offending type", err)
	}
}

func TestParseResponseRejectsEmpty(t *testing.T) {
	for _, payload := range []string{`{"components": []}`, `{}`} {
		if _, err := ParseResponse([]byte(payload)); !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("ParseResponse(%s) error = %v, want ErrEmptyResponse", payload, err)
		}
	}
}

func TestParseResponseFillsMissingIDs(t *testing.T) {
	payload := `{"components": [
		{"type": "text", "content": "no id here"},
		{"type": "text", "id": "keep-me", "content": "explicit id"}
	]}`

	resp, err := ParseResponse([]byte(payload))
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}

	first := resp.Components[0].(*Text)
	if first.ID == "" {
		t.Error("missing id was not filled")
	}
	second := resp.Components[1].(*Text)
	if second.ID != "keep-me" {
		t.Errorf("explicit id = %q, want keep-me", second.ID)
	}
}

func TestParseResponsePreservesMetadata(t *testing.T) {
	payload := `{"components": [
		{"type": "alert", "message": "Rate decision tomorrow", "severity": "warning",
		 "metadata": {"source": "fomc-calendar", "confidence": 0.9}}
	]}`

	resp, err := ParseResponse([]byte(payload))
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}

	alert := resp.Components[0].(*Alert)
	if alert.Severity != SeverityWarning {
		t.Errorf("severity = %q, want warning", alert.Severity)
	}
	if alert.Metadata["source"] != "fomc-calendar" {
		t.Errorf("metadata = %+v, want source preserved", alert.Metadata)
	}
}

func TestComponentListRoundTrip(t *testing.T) {
	orig := Response{Components: ComponentList{
		&Insight{
			BaseComponent: BaseComponent{Type: TypeInsights, ID: "i1", Title: "Key takeaways"},
			Headline:      "Tech led the rally",
			Insights:      []string{"Semis up 3%", "Breadth improving"},
		},
		&AllocationChart{
			BaseComponent:  BaseComponent{Type: TypeAllocationChart, ID: "a1"},
			AllocationType: AllocationSector,
			ChartType:      ChartDonut,
			Allocations: []AllocationItem{
				{Label: "Technology", Value: 45000, Percentage: 45},
				{Label: "Healthcare", Value: 25000, Percentage: 25},
			},
		},
	}}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	parsed, err := ParseResponse(data)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if len(parsed.Components) != 2 {
		t.Fatalf("got %d components, want 2", len(parsed.Components))
	}

	chart, ok := parsed.Components[1].(*AllocationChart)
	if !ok {
		t.Fatalf("component 1 is %T, want *AllocationChart", parsed.Components[1])
	}
	if chart.AllocationType != AllocationSector || len(chart.Allocations) != 2 {
		t.Errorf("chart = %+v, want sector allocation with 2 slices", chart)
	}
}

func TestParseResponseAllVariants(t *testing.T) {
	// One minimal instance of every variant; the decode must produce the
	// matching concrete type for each.
	payload := `{"components": [
		{"type": "text", "content": "t"},
		{"type": "insights", "headline": "h", "insights": ["a"]},
		{"type": "alert", "message": "m"},
		{"type": "security_card", "symbol": "VTI", "name": "Vanguard", "price": 1},
		{"type": "metrics_grid", "metrics": []},
		{"type": "economic_indicator", "indicator_name": "CPI", "current_value": 3.2, "as_of_date": "2026-08-01"},
		{"type": "portfolio_holdings", "holdings": []},
		{"type": "comparison_table", "entities": ["A", "B"], "rows": []},
		{"type": "sector_performance", "sectors": []},
		{"type": "financial_statement", "statement_type": "income_statement", "periods": ["2025"], "rows": []},
		{"type": "time_series_chart", "series": []},
		{"type": "allocation_chart", "allocations": [], "allocation_type": "sector"},
		{"type": "news_feed", "articles": []},
		{"type": "investment_calculator", "initial_investment": 1000, "annual_return": 7, "years": 10,
		 "final_value": 1967.15, "total_return": 967.15, "total_return_percent": 96.7, "projections": []},
		{"type": "action_suggestions", "suggestions": []}
	]}`

	resp, err := ParseResponse([]byte(payload))
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if len(resp.Components) != len(componentFactories) {
		t.Fatalf("got %d components, want %d", len(resp.Components), len(componentFactories))
	}

	wantTypes := []ComponentType{
		TypeText, TypeInsights, TypeAlert, TypeSecurityCard, TypeMetricsGrid,
		TypeEconomicIndicator, TypePortfolioHoldings, TypeComparisonTable,
		TypeSectorPerformance, TypeFinancialStatement, TypeTimeSeriesChart,
		TypeAllocationChart, TypeNewsFeed, TypeInvestmentCalculator,
		TypeActionSuggestions,
	}
	for i, want := range wantTypes {
		if got := resp.Components[i].ComponentType(); got != want {
			t.Errorf("component %d type = %q, want %q", i, got, want)
		}
	}
}

func TestResponseSchemaCoversAllVariants(t *testing.T) {
	schema, err := ResponseSchema()
	if err != nil {
		t.Fatalf("ResponseSchema() error = %v", err)
	}

	components, ok := schema.Properties["components"]
	if !ok {
		t.Fatal("schema has no components property")
	}
	if got := len(components.Items.OneOf); got != len(componentFactories) {
		t.Errorf("schema has %d variants, want %d", got, len(componentFactories))
	}

	// Every variant schema must pin its discriminator.
	seen := map[string]bool{}
	for _, variant := range components.Items.OneOf {
		typeProp, ok := variant.Properties["type"]
		if !ok || len(typeProp.Enum) != 1 {
			t.Errorf("variant %v does not pin its type", variant.Properties)
			continue
		}
		seen[typeProp.Enum[0].(string)] = true
	}
	for ct := range componentFactories {
		if !seen[string(ct)] {
			t.Errorf("no schema variant for %q", ct)
		}
	}
}
