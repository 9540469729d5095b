// Package genui defines the structured UI response contract between the
// assistant and its rendering clients. A UI response is an ordered list of
// typed components; the "type" field discriminates the variant.
//
// The contract is closed: decoding rejects component types it does not know
// about. Per-component extensibility goes through the metadata field
// instead.
package genui

// ComponentType discriminates the UI component variants.
type ComponentType string

const (
	TypeText                 ComponentType = "text"
	TypeInsights             ComponentType = "insights"
	TypeAlert                ComponentType = "alert"
	TypeSecurityCard         ComponentType = "security_card"
	TypeMetricsGrid          ComponentType = "metrics_grid"
	TypeEconomicIndicator    ComponentType = "economic_indicator"
	TypePortfolioHoldings    ComponentType = "portfolio_holdings"
	TypeComparisonTable      ComponentType = "comparison_table"
	TypeSectorPerformance    ComponentType = "sector_performance"
	TypeFinancialStatement   ComponentType = "financial_statement"
	TypeTimeSeriesChart      ComponentType = "time_series_chart"
	TypeAllocationChart      ComponentType = "allocation_chart"
	TypeNewsFeed             ComponentType = "news_feed"
	TypeInvestmentCalculator ComponentType = "investment_calculator"
	TypeActionSuggestions    ComponentType = "action_suggestions"
)

// TextFormat selects how text content should be rendered.
type TextFormat string

const (
	FormatPlain    TextFormat = "plain"
	FormatMarkdown TextFormat = "markdown"
)

// AssetType classifies a security.
type AssetType string

const (
	AssetStock     AssetType = "stock"
	AssetETF       AssetType = "etf"
	AssetCrypto    AssetType = "crypto"
	AssetCommodity AssetType = "commodity"
	AssetIndex     AssetType = "index"
)

// MetricFormat is a formatting hint for displaying a value.
type MetricFormat string

const (
	MetricCurrency   MetricFormat = "currency"
	MetricPercentage MetricFormat = "percentage"
	MetricNumber     MetricFormat = "number"
	MetricRatio      MetricFormat = "ratio"
	MetricDate       MetricFormat = "date"
)

// ChartType selects a chart visualization.
type ChartType string

const (
	ChartLine        ChartType = "line"
	ChartArea        ChartType = "area"
	ChartBar         ChartType = "bar"
	ChartCandlestick ChartType = "candlestick"
	ChartPie         ChartType = "pie"
	ChartDonut       ChartType = "donut"
	ChartTreemap     ChartType = "treemap"
	ChartHeatmap     ChartType = "heatmap"
)

// SectorVisualization selects how sector performance is shown.
type SectorVisualization string

const (
	SectorHeatmap SectorVisualization = "heatmap"
	SectorBar     SectorVisualization = "bar"
	SectorTable   SectorVisualization = "table"
)

// ComparisonType classifies what kind of entities a comparison covers.
type ComparisonType string

const (
	CompareStocks    ComparisonType = "stocks"
	CompareETFs      ComparisonType = "etfs"
	CompareSectors   ComparisonType = "sectors"
	CompareCryptos   ComparisonType = "cryptos"
	CompareInvestors ComparisonType = "investors"
)

// FinancialStatementType identifies a financial statement.
type FinancialStatementType string

const (
	StatementIncome   FinancialStatementType = "income_statement"
	StatementBalance  FinancialStatementType = "balance_sheet"
	StatementCashFlow FinancialStatementType = "cash_flow"
)

// AllocationType identifies what a portfolio allocation is broken down by.
type AllocationType string

const (
	AllocationSector     AllocationType = "sector"
	AllocationAssetClass AllocationType = "asset_class"
	AllocationGeography  AllocationType = "geography"
	AllocationHoldings   AllocationType = "holdings"
	AllocationMarketCap  AllocationType = "market_cap"
)

// AlertSeverity grades an alert banner.
type AlertSeverity string

const (
	SeverityInfo    AlertSeverity = "info"
	SeverityWarning AlertSeverity = "warning"
	SeveritySuccess AlertSeverity = "success"
	SeverityError   AlertSeverity = "error"
)

// TrendDirection indicates which way a value is moving.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// SentimentType classifies news or analysis sentiment.
type SentimentType string

const (
	SentimentPositive SentimentType = "positive"
	SentimentNegative SentimentType = "negative"
	SentimentNeutral  SentimentType = "neutral"
)

// Component is implemented by every UI component variant.
type Component interface {
	// ComponentType returns the discriminator value for this variant.
	ComponentType() ComponentType
}

// BaseComponent carries the fields shared by every component. Variants embed
// it, which flattens the fields into the component's JSON object.
type BaseComponent struct {
	Type     ComponentType  `json:"type"`
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Loading  bool           `json:"loading,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ComponentType implements Component.
func (b BaseComponent) ComponentType() ComponentType { return b.Type }

// Text is a plain or markdown text block for explanations and narratives.
type Text struct {
	BaseComponent
	Content string     `json:"content"`
	Format  TextFormat `json:"format,omitempty"`
}

// Insight presents a headline with supporting bullet points.
type Insight struct {
	BaseComponent
	Headline string   `json:"headline"`
	Insights []string `json:"insights"`
	Context  string   `json:"context,omitempty"`
}

// Alert is a notification banner, optionally with an attached action.
type Alert struct {
	BaseComponent
	Message       string         `json:"message"`
	Severity      AlertSeverity  `json:"severity,omitempty"`
	Actionable    bool           `json:"actionable,omitempty"`
	ActionLabel   string         `json:"action_label,omitempty"`
	ActionPayload map[string]any `json:"action_payload,omitempty"`
}

// SecurityCard summarizes a single security.
type SecurityCard struct {
	BaseComponent
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	MarketCap   *float64  `json:"market_cap,omitempty"`
	Sector      string    `json:"sector,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	AssetType   AssetType `json:"asset_type,omitempty"`
}

// MetricItem is one labelled value in a metrics grid. Value may be a string
// or a number, so it stays as any.
type MetricItem struct {
	Label  string       `json:"label"`
	Value  any          `json:"value"`
	Change *float64     `json:"change,omitempty"`
	Format MetricFormat `json:"format,omitempty"`
}

// MetricsGrid lays out multiple metrics in columns.
type MetricsGrid struct {
	BaseComponent
	Metrics []MetricItem `json:"metrics"`
	Columns int          `json:"columns,omitempty"`
}

// EconomicIndicator shows a macro indicator such as GDP or CPI.
type EconomicIndicator struct {
	BaseComponent
	IndicatorName string           `json:"indicator_name"`
	CurrentValue  float64          `json:"current_value"`
	PreviousValue *float64         `json:"previous_value,omitempty"`
	Change        *float64         `json:"change,omitempty"`
	AsOfDate      string           `json:"as_of_date"`
	Trend         TrendDirection   `json:"trend,omitempty"`
	ChartData     []map[string]any `json:"chart_data,omitempty"`
}

// HoldingRow is one position in a holdings table.
type HoldingRow struct {
	Symbol string   `json:"symbol"`
	Name   string   `json:"name"`
	Shares *float64 `json:"shares,omitempty"`
	Weight float64  `json:"weight"`
	Value  *float64 `json:"value,omitempty"`
	Sector string   `json:"sector,omitempty"`
}

// PortfolioHoldings is a table of portfolio positions.
type PortfolioHoldings struct {
	BaseComponent
	Holdings   []HoldingRow `json:"holdings"`
	TotalValue *float64     `json:"total_value,omitempty"`
	AsOfDate   string       `json:"as_of_date,omitempty"`
}

// ComparisonRow is one metric compared across entities; values maps entity
// name to metric value.
type ComparisonRow struct {
	Metric string         `json:"metric"`
	Values map[string]any `json:"values"`
	Format MetricFormat   `json:"format,omitempty"`
}

// ComparisonTable compares entities side by side, one metric per row.
type ComparisonTable struct {
	BaseComponent
	Entities       []string        `json:"entities"`
	Rows           []ComparisonRow `json:"rows"`
	ComparisonType ComparisonType  `json:"comparison_type,omitempty"`
}

// SectorPerformanceItem is one sector's returns over standard windows.
type SectorPerformanceItem struct {
	Sector    string   `json:"sector"`
	Return1D  *float64 `json:"return_1d,omitempty"`
	Return1W  *float64 `json:"return_1w,omitempty"`
	Return1M  *float64 `json:"return_1m,omitempty"`
	ReturnYTD *float64 `json:"return_ytd,omitempty"`
}

// SectorPerformance shows returns across market sectors.
type SectorPerformance struct {
	BaseComponent
	Sectors       []SectorPerformanceItem `json:"sectors"`
	Visualization SectorVisualization     `json:"visualization,omitempty"`
}

// FinancialStatementRow is one line item; values maps period to value.
type FinancialStatementRow struct {
	LineItem string             `json:"line_item"`
	Values   map[string]float64 `json:"values"`
	Category string             `json:"category,omitempty"`
}

// FinancialStatement renders an income statement, balance sheet, or cash
// flow statement across periods.
type FinancialStatement struct {
	BaseComponent
	StatementType FinancialStatementType  `json:"statement_type"`
	Periods       []string                `json:"periods"`
	Rows          []FinancialStatementRow `json:"rows"`
	Currency      string                  `json:"currency,omitempty"`
}

// TimeSeriesChart plots one or more series over time. Each series is an
// object with "name", "data" ({timestamp, value} points), and an optional
// "color".
type TimeSeriesChart struct {
	BaseComponent
	Series     []map[string]any `json:"series"`
	XAxisLabel string           `json:"x_axis_label,omitempty"`
	YAxisLabel string           `json:"y_axis_label,omitempty"`
	ChartType  ChartType        `json:"chart_type,omitempty"`
	DateRange  string           `json:"date_range,omitempty"`
	Format     MetricFormat     `json:"format,omitempty"`
}

// AllocationItem is one slice of an allocation breakdown.
type AllocationItem struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color,omitempty"`
}

// AllocationChart breaks a portfolio down by sector, asset class, geography,
// holdings, or market cap.
type AllocationChart struct {
	BaseComponent
	Allocations    []AllocationItem `json:"allocations"`
	ChartType      ChartType        `json:"chart_type,omitempty"`
	AllocationType AllocationType   `json:"allocation_type"`
	TotalValue     *float64         `json:"total_value,omitempty"`
}

// NewsItem is one article in a news feed.
type NewsItem struct {
	Title       string        `json:"title"`
	Source      string        `json:"source"`
	PublishedAt string        `json:"published_at"`
	URL         string        `json:"url,omitempty"`
	Summary     string        `json:"summary,omitempty"`
	Sentiment   SentimentType `json:"sentiment,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
}

// NewsFeed is a list of news articles.
type NewsFeed struct {
	BaseComponent
	Articles []NewsItem `json:"articles"`
}

// InvestmentProjection is one year of a growth projection.
type InvestmentProjection struct {
	Year          int     `json:"year"`
	Value         float64 `json:"value"`
	Contributions float64 `json:"contributions"`
	Returns       float64 `json:"returns"`
}

// InvestmentCalculator shows compound growth of an investment over time.
type InvestmentCalculator struct {
	BaseComponent
	InitialInvestment  float64                `json:"initial_investment"`
	AnnualReturn       float64                `json:"annual_return"`
	Years              int                    `json:"years"`
	FinalValue         float64                `json:"final_value"`
	TotalReturn        float64                `json:"total_return"`
	TotalReturnPercent float64                `json:"total_return_percent"`
	Projections        []InvestmentProjection `json:"projections"`
}

// SuggestedAction is one follow-up the user can pick.
type SuggestedAction struct {
	Label string `json:"label"`
	Query string `json:"query"`
	Icon  string `json:"icon,omitempty"`
}

// ActionSuggestions offers follow-up questions or actions.
type ActionSuggestions struct {
	BaseComponent
	Suggestions []SuggestedAction `json:"suggestions"`
}
