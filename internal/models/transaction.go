// Package models defines data structures for Folio
package models

import (
	"strings"
	"time"
)

// TransactionType classifies a ledger entry for a holding.
type TransactionType string

const (
	TransactionBuy      TransactionType = "buy"
	TransactionSell     TransactionType = "sell"
	TransactionDividend TransactionType = "dividend"
)

// ParseTransactionType normalises user input ("BUY", " Purchase ") into a TransactionType.
// Returns false for anything that is not a buy, sell or dividend.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "purchase":
		return TransactionBuy, true
	case "sell", "sale":
		return TransactionSell, true
	case "dividend", "div":
		return TransactionDividend, true
	default:
		return "", false
	}
}

// AssetClass groups holdings for the allocation breakdown.
type AssetClass string

const (
	AssetStock        AssetClass = "stock"
	AssetMutualFund   AssetClass = "mutual_fund"
	AssetETF          AssetClass = "etf"
	AssetFixedDeposit AssetClass = "fixed_deposit"
	AssetBond         AssetClass = "bond"
	AssetRealEstate   AssetClass = "real_estate"
	AssetGold         AssetClass = "gold"
	AssetOther        AssetClass = "other"
)

// ParseAssetClass maps free text onto a known AssetClass, defaulting to AssetOther.
func ParseAssetClass(s string) AssetClass {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")) {
	case "stock", "stocks", "equity", "share", "shares":
		return AssetStock
	case "mutual_fund", "mutual_funds", "mf", "fund":
		return AssetMutualFund
	case "etf":
		return AssetETF
	case "fixed_deposit", "fd":
		return AssetFixedDeposit
	case "bond", "bonds":
		return AssetBond
	case "real_estate", "property":
		return AssetRealEstate
	case "gold":
		return AssetGold
	case "":
		return ""
	default:
		return AssetOther
	}
}

// Transaction is an immutable buy, sell or dividend fact for one symbol.
type Transaction struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolio_id"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name,omitempty"`
	AssetClass  AssetClass      `json:"asset_class,omitempty"`
	Type        TransactionType `json:"type"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   float64         `json:"unit_price"`
	TotalAmount float64         `json:"total_amount"`
	Date        time.Time       `json:"date"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DateLayout is the calendar-date format used on the wire and in spreadsheets.
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or YYYY/MM/DD and returns a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return t, nil
	}
	if alt, altErr := time.Parse("2006/01/02", s); altErr == nil {
		return alt, nil
	}
	return time.Time{}, err
}

// TruncateToDay drops the clock component, keeping the calendar date in UTC.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
