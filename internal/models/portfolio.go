package models

import "time"

// Portfolio is a named container of transactions owned by one user.
type Portfolio struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Position is the running state of one symbol after folding its transactions in date order.
// TotalQuantity is signed; only positions with TotalQuantity > 0 are current holdings.
type Position struct {
	Symbol         string        `json:"symbol"`
	DisplayName    string        `json:"display_name"`
	AssetClass     AssetClass    `json:"asset_class,omitempty"`
	TotalQuantity  float64       `json:"total_quantity"`
	TotalInvested  float64       `json:"total_invested"` // cost basis of the quantity still held
	RealizedPnL    float64       `json:"realized_pnl"`
	DividendIncome float64       `json:"dividend_income"`
	Buys           []Transaction `json:"-"`
	Sells          []Transaction `json:"-"`
	Dividends      []Transaction `json:"-"`
}

// IsActive reports whether the position is a current holding.
func (p *Position) IsActive() bool {
	return p.TotalQuantity > 0
}

// FirstBuyDate returns the date of the earliest buy, or the zero time with no buys.
func (p *Position) FirstBuyDate() time.Time {
	if len(p.Buys) == 0 {
		return time.Time{}
	}
	return p.Buys[0].Date
}

// XIRRStatus tells the presentation layer whether the XIRR figure is meaningful.
type XIRRStatus string

const (
	XIRRStatusOK          XIRRStatus = "ok"
	XIRRStatusUnavailable XIRRStatus = "unavailable"
)

// PriceSource records where a row's live price came from.
type PriceSource string

const (
	PriceSourceLive   PriceSource = "live"
	PriceSourceStored PriceSource = "stored"
	PriceSourceCost   PriceSource = "cost" // no quote; valued at average buy price
)

// PortfolioRow is the per-holding valuation snapshot. Derived on every view, never persisted.
type PortfolioRow struct {
	Symbol           string      `json:"symbol"`
	DisplayName      string      `json:"display_name"`
	AssetClass       AssetClass  `json:"asset_class,omitempty"`
	LivePrice        float64     `json:"live_price"`
	PriceSource      PriceSource `json:"price_source"`
	DayChangePct     float64     `json:"day_change_pct"`
	Units            float64     `json:"units"`
	AvgBuyPrice      float64     `json:"avg_buy_price"`
	InvestedAmount   float64     `json:"invested_amount"`
	CurrentValue     float64     `json:"current_value"`
	UnrealizedPnL    float64     `json:"unrealized_pnl"`
	UnrealizedPnLPct float64     `json:"unrealized_pnl_pct"`
	RealizedPnL      float64     `json:"realized_pnl"`
	DividendIncome   float64     `json:"dividend_income"`
	XIRR             float64     `json:"xirr"` // annualised %, 0 when unavailable
	XIRRStatus       XIRRStatus  `json:"xirr_status"`
	AllocationPct    float64     `json:"allocation_pct"`
	DaysHeld         int         `json:"days_held"`
}

// ClosedPosition summarises a fully exited (or never-held) symbol.
type ClosedPosition struct {
	Symbol         string     `json:"symbol"`
	DisplayName    string     `json:"display_name"`
	AssetClass     AssetClass `json:"asset_class,omitempty"`
	Quantity       float64    `json:"quantity"`
	RealizedPnL    float64    `json:"realized_pnl"`
	DividendIncome float64    `json:"dividend_income"`
}

// PortfolioTotals are the portfolio-level sums across holdings.
type PortfolioTotals struct {
	InvestedAmount   float64 `json:"invested_amount"`
	CurrentValue     float64 `json:"current_value"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`
	RealizedPnL      float64 `json:"realized_pnl"`
	DividendIncome   float64 `json:"dividend_income"`
	DayChange        float64 `json:"day_change"`
	HoldingCount     int     `json:"holding_count"`
	IncludesClosed   bool    `json:"includes_closed"` // realized/dividends include closed positions
}

// AssetAllocation is the share of current value held in one asset class.
type AssetAllocation struct {
	AssetClass    AssetClass `json:"asset_class"`
	CurrentValue  float64    `json:"current_value"`
	AllocationPct float64    `json:"allocation_pct"`
	Holdings      []string   `json:"holdings"`
}

// PortfolioView is everything the presentation layer needs to render a portfolio.
type PortfolioView struct {
	Portfolio       Portfolio         `json:"portfolio"`
	Holdings        []PortfolioRow    `json:"holdings"`
	Closed          []ClosedPosition  `json:"closed,omitempty"`
	Totals          PortfolioTotals   `json:"totals"`
	AssetAllocation []AssetAllocation `json:"asset_allocation"`
	AsOf            time.Time         `json:"as_of"`
}
