package valuation

import (
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// CashFlow is one dated flow for XIRR. Negative is money in to the holding (buys),
// positive is money out (sells, dividends, the liquidation value).
type CashFlow struct {
	Date   time.Time
	Amount float64
}

const (
	xirrInitialGuess = 0.10
	xirrTolerance    = 1e-4
	xirrMaxIter      = 100
	xirrBisectIter   = 200
	xirrMinRate      = -0.99
	xirrMaxRate      = 10.0
	daysPerYear      = 365.0
)

// PositionCashFlows builds the XIRR flows for a position plus a synthetic
// liquidation at currentValue on now.
func PositionCashFlows(p *models.Position, currentValue float64, now time.Time) []CashFlow {
	flows := make([]CashFlow, 0, len(p.Buys)+len(p.Sells)+len(p.Dividends)+1)
	for _, tx := range p.Buys {
		flows = append(flows, CashFlow{Date: tx.Date, Amount: -transactionAmount(tx)})
	}
	for _, tx := range p.Sells {
		flows = append(flows, CashFlow{Date: tx.Date, Amount: transactionAmount(tx)})
	}
	for _, tx := range p.Dividends {
		flows = append(flows, CashFlow{Date: tx.Date, Amount: transactionAmount(tx)})
	}
	flows = append(flows, CashFlow{Date: now, Amount: finite(currentValue)})
	return flows
}

// CalculateXIRR solves for the annual rate r where Σ a/(1+r)^(days/365) = 0 using
// Newton-Raphson from 10%. It returns r as a percentage.
//
// When Newton does not converge it falls back to bisection over [-99%, 1000%].
//
// It never fails. A history spanning zero days returns (0, ok). Fewer than two
// flows, flows all of one sign, or no sign change of NPV across the band return
// (0, unavailable).
func CalculateXIRR(flows []CashFlow) (float64, models.XIRRStatus) {
	if len(flows) < 2 {
		return 0, models.XIRRStatusUnavailable
	}

	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	hasNeg, hasPos := false, false
	for i := range sorted {
		sorted[i].Amount = finite(sorted[i].Amount)
		if sorted[i].Amount < 0 {
			hasNeg = true
		}
		if sorted[i].Amount > 0 {
			hasPos = true
		}
	}

	base := sorted[0].Date
	years := make([]float64, len(sorted))
	span := 0.0
	for i, f := range sorted {
		years[i] = float64(f.Date.Sub(base)) / float64(24*time.Hour) / daysPerYear
		span = math.Max(span, years[i])
	}
	if span == 0 {
		return 0, models.XIRRStatusOK
	}
	if !hasNeg || !hasPos {
		return 0, models.XIRRStatusUnavailable
	}

	rate, ok := solveXIRR(sorted, years)
	if !ok {
		rate, ok = bisectXIRR(sorted, years)
	}
	if !ok {
		return 0, models.XIRRStatusUnavailable
	}
	return finite(rate * 100), models.XIRRStatusOK
}

// solveXIRR runs Newton-Raphson with the rate clamped to [xirrMinRate, xirrMaxRate].
// It gives up when a step pushes past a bound the rate already sits on. Newton
// can head the wrong way from the initial guess, so that is not proof the root
// is outside the band.
func solveXIRR(flows []CashFlow, years []float64) (float64, bool) {
	rate := xirrInitialGuess

	for iter := 0; iter < xirrMaxIter; iter++ {
		npv, dnpv := 0.0, 0.0
		for i, f := range flows {
			t := years[i]
			npv += f.Amount / math.Pow(1+rate, t)
			dnpv -= f.Amount * t / math.Pow(1+rate, t+1)
		}
		if math.IsNaN(npv) || math.IsInf(npv, 0) || math.IsNaN(dnpv) || math.IsInf(dnpv, 0) {
			return 0, false
		}
		if dnpv == 0 {
			return 0, false
		}

		next := rate - npv/dnpv
		switch {
		case math.IsNaN(next):
			return 0, false
		case next < xirrMinRate:
			if rate == xirrMinRate {
				return 0, false
			}
			next = xirrMinRate
		case next > xirrMaxRate:
			if rate == xirrMaxRate {
				return 0, false
			}
			next = xirrMaxRate
		}
		if math.Abs(next-rate) < xirrTolerance {
			return next, true
		}
		rate = next
	}

	return 0, false
}

func npvAt(flows []CashFlow, years []float64, rate float64) float64 {
	sum := 0.0
	for i, f := range flows {
		sum += f.Amount / math.Pow(1+rate, years[i])
	}
	return sum
}

// bisectXIRR brackets the root between xirrMinRate and xirrMaxRate. No sign
// change across the band means no root inside it.
func bisectXIRR(flows []CashFlow, years []float64) (float64, bool) {
	lo, hi := xirrMinRate, xirrMaxRate
	npvLo := npvAt(flows, years, lo)
	npvHi := npvAt(flows, years, hi)
	if math.IsNaN(npvLo) || math.IsNaN(npvHi) || math.IsInf(npvLo, 0) || math.IsInf(npvHi, 0) {
		return 0, false
	}
	if npvLo == 0 {
		return lo, true
	}
	if npvHi == 0 {
		return hi, true
	}
	if (npvLo > 0) == (npvHi > 0) {
		return 0, false
	}

	for iter := 0; iter < xirrBisectIter; iter++ {
		mid := (lo + hi) / 2
		npvMid := npvAt(flows, years, mid)
		if math.IsNaN(npvMid) {
			return 0, false
		}
		if npvMid == 0 || hi-lo < xirrTolerance/100 {
			return mid, true
		}
		if (npvMid > 0) == (npvLo > 0) {
			lo, npvLo = mid, npvMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}
