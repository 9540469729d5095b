package genui

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ResponseSchema builds the JSON schema for the structured UI response: an
// object with a "components" array whose items are a oneOf over every
// component variant. Each variant's schema is derived from its Go type, with
// the "type" property pinned to the variant's discriminator value.
func ResponseSchema() (*jsonschema.Schema, error) {
	builders := []func() (*jsonschema.Schema, error){
		variantSchema[Text](TypeText),
		variantSchema[Insight](TypeInsights),
		variantSchema[Alert](TypeAlert),
		variantSchema[SecurityCard](TypeSecurityCard),
		variantSchema[MetricsGrid](TypeMetricsGrid),
		variantSchema[EconomicIndicator](TypeEconomicIndicator),
		variantSchema[PortfolioHoldings](TypePortfolioHoldings),
		variantSchema[ComparisonTable](TypeComparisonTable),
		variantSchema[SectorPerformance](TypeSectorPerformance),
		variantSchema[FinancialStatement](TypeFinancialStatement),
		variantSchema[TimeSeriesChart](TypeTimeSeriesChart),
		variantSchema[AllocationChart](TypeAllocationChart),
		variantSchema[NewsFeed](TypeNewsFeed),
		variantSchema[InvestmentCalculator](TypeInvestmentCalculator),
		variantSchema[ActionSuggestions](TypeActionSuggestions),
	}

	variants := make([]*jsonschema.Schema, 0, len(builders))
	for _, build := range builders {
		s, err := build()
		if err != nil {
			return nil, err
		}
		variants = append(variants, s)
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"components": {
				Type:  "array",
				Items: &jsonschema.Schema{OneOf: variants},
			},
		},
		Required: []string{"components"},
	}, nil
}

// ResponseSchemaJSON returns the response schema serialized for embedding in
// a prompt.
func ResponseSchemaJSON() ([]byte, error) {
	schema, err := ResponseSchema()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling response schema: %w", err)
	}
	return data, nil
}

// variantSchema derives the schema for one component variant and pins its
// discriminator.
func variantSchema[T any](t ComponentType) func() (*jsonschema.Schema, error) {
	return func() (*jsonschema.Schema, error) {
		s, err := jsonschema.For[T](nil)
		if err != nil {
			return nil, fmt.Errorf("schema for %s component: %w", t, err)
		}
		if s.Properties == nil {
			s.Properties = map[string]*jsonschema.Schema{}
		}
		s.Properties["type"] = &jsonschema.Schema{
			Type: "string",
			Enum: []any{string(t)},
		}
		return s, nil
	}
}
