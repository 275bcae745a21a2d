package models

import "time"

// RealTimeQuote holds the latest price snapshot for a symbol
type RealTimeQuote struct {
	Code          string      `json:"code"`
	Close         float64     `json:"close"`          // current/last price
	PreviousClose float64     `json:"previous_close"` // previous day's close
	Change        float64     `json:"change"`         // absolute change from previous close
	ChangePct     float64     `json:"change_p"`       // percentage change from previous close
	Timestamp     time.Time   `json:"timestamp"`
	Source        PriceSource `json:"source,omitempty"`
}

// MarketPrice is a persisted price for a symbol, either refreshed from the live
// feed or entered by hand for assets without one (fixed deposits, property).
type MarketPrice struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	PreviousClose float64   `json:"previous_close"`
	Manual        bool      `json:"manual"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Quote converts a stored price into the quote shape the valuation layer consumes.
func (m MarketPrice) Quote() *RealTimeQuote {
	q := &RealTimeQuote{
		Code:          m.Symbol,
		Close:         m.Price,
		PreviousClose: m.PreviousClose,
		Timestamp:     m.UpdatedAt,
		Source:        PriceSourceStored,
	}
	if m.PreviousClose > 0 {
		q.Change = m.Price - m.PreviousClose
		q.ChangePct = q.Change / m.PreviousClose * 100
	}
	return q
}
