package genui

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnknownComponent is returned when decoding meets a component type that
// is not part of the contract.
var ErrUnknownComponent = errors.New("unknown component type")

// ErrEmptyResponse is returned when a UI response carries no components.
var ErrEmptyResponse = errors.New("response has no components")

// componentFactories maps each discriminator value to a constructor for its
// concrete variant. This is the single registry the decoder dispatches on.
var componentFactories = map[ComponentType]func() Component{
	TypeText:                 func() Component { return &Text{} },
	TypeInsights:             func() Component { return &Insight{} },
	TypeAlert:                func() Component { return &Alert{} },
	TypeSecurityCard:         func() Component { return &SecurityCard{} },
	TypeMetricsGrid:          func() Component { return &MetricsGrid{} },
	TypeEconomicIndicator:    func() Component { return &EconomicIndicator{} },
	TypePortfolioHoldings:    func() Component { return &PortfolioHoldings{} },
	TypeComparisonTable:      func() Component { return &ComparisonTable{} },
	TypeSectorPerformance:    func() Component { return &SectorPerformance{} },
	TypeFinancialStatement:   func() Component { return &FinancialStatement{} },
	TypeTimeSeriesChart:      func() Component { return &TimeSeriesChart{} },
	TypeAllocationChart:      func() Component { return &AllocationChart{} },
	TypeNewsFeed:             func() Component { return &NewsFeed{} },
	TypeInvestmentCalculator: func() Component { return &InvestmentCalculator{} },
	TypeActionSuggestions:    func() Component { return &ActionSuggestions{} },
}

// ComponentList is an ordered list of UI components. It decodes the tagged
// union: each element's "type" field selects the concrete variant, and an
// element with an unknown type fails the whole decode with
// ErrUnknownComponent.
type ComponentList []Component

// UnmarshalJSON implements json.Unmarshaler.
func (l *ComponentList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("decoding component list: %w", err)
	}

	components := make([]Component, 0, len(raws))
	for i, raw := range raws {
		var head struct {
			Type ComponentType `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return fmt.Errorf("decoding component %d discriminator: %w", i, err)
		}

		factory, ok := componentFactories[head.Type]
		if !ok {
			return fmt.Errorf("component %d: %w: %q", i, ErrUnknownComponent, head.Type)
		}

		c := factory()
		if err := json.Unmarshal(raw, c); err != nil {
			return fmt.Errorf("decoding %s component %d: %w", head.Type, i, err)
		}
		components = append(components, c)
	}

	*l = components
	return nil
}

// TextResponse is the plain-text counterpart of Response: the other arm of
// the agent's output contract when no UI components are requested.
type TextResponse struct {
	Response string `json:"response"`
}

// Response is the top-level structured UI answer: an ordered list of
// components to render.
type Response struct {
	Components ComponentList `json:"components"`
}

// ParseResponse decodes and validates a structured UI response. Components
// that arrive without an id are assigned a fresh UUID, matching the contract
// that every rendered component is individually addressable.
func ParseResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if len(resp.Components) == 0 {
		return nil, ErrEmptyResponse
	}

	fillIDs(resp.Components)
	return &resp, nil
}

// fillIDs assigns UUIDs to components missing one.
func fillIDs(components []Component) {
	for _, c := range components {
		base := baseOf(c)
		if base != nil && base.ID == "" {
			base.ID = uuid.NewString()
		}
	}
}

// baseOf returns the embedded BaseComponent of a variant.
func baseOf(c Component) *BaseComponent {
	switch v := c.(type) {
	case *Text:
		return &v.BaseComponent
	case *Insight:
		return &v.BaseComponent
	case *Alert:
		return &v.BaseComponent
	case *SecurityCard:
		return &v.BaseComponent
	case *MetricsGrid:
		return &v.BaseComponent
	case *EconomicIndicator:
		return &v.BaseComponent
	case *PortfolioHoldings:
		return &v.BaseComponent
	case *ComparisonTable:
		return &v.BaseComponent
	case *SectorPerformance:
		return &v.BaseComponent
	case *FinancialStatement:
		return &v.BaseComponent
	case *TimeSeriesChart:
		return &v.BaseComponent
	case *AllocationChart:
		return &v.BaseComponent
	case *NewsFeed:
		return &v.BaseComponent
	case *InvestmentCalculator:
		return &v.BaseComponent
	case *ActionSuggestions:
		return &v.BaseComponent
	}
	return nil
}
