package valuation

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// AverageFunc computes the average buy price used to cost a sell from the buys seen so far.
type AverageFunc func(buys []models.Transaction) float64

const (
	AverageCostSimple   = "simple"
	AverageCostWeighted = "weighted"
)

// AverageFuncByName resolves the valuation.average_cost setting. Empty means simple.
func AverageFuncByName(name string) (AverageFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AverageCostSimple:
		return ComputeAverageBuyPrice, nil
	case AverageCostWeighted:
		return ComputeWeightedAverageBuyPrice, nil
	default:
		return nil, fmt.Errorf("unknown average cost method %q (want %s or %s)", name, AverageCostSimple, AverageCostWeighted)
	}
}

// ComputeAverageBuyPrice is the arithmetic mean of per-buy unit prices, ignoring
// how many units each buy was for. Returns 0 with no buys.
func ComputeAverageBuyPrice(buys []models.Transaction) float64 {
	if len(buys) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range buys {
		sum += unitPrice(b)
	}
	return finite(sum / float64(len(buys)))
}

// ComputeWeightedAverageBuyPrice is total buy amount over total units bought.
func ComputeWeightedAverageBuyPrice(buys []models.Transaction) float64 {
	var amount, qty float64
	for _, b := range buys {
		amount += transactionAmount(b)
		qty += finite(b.Quantity)
	}
	if qty == 0 {
		return 0
	}
	return finite(amount / qty)
}

// unitPrice falls back to amount/quantity when a buy was recorded by total only.
func unitPrice(tx models.Transaction) float64 {
	if p := finite(tx.UnitPrice); p != 0 {
		return p
	}
	if q := finite(tx.Quantity); q != 0 {
		return finite(finite(tx.TotalAmount) / q)
	}
	return 0
}
