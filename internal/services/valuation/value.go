package valuation

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/bobmcallan/folio/internal/models"
)

// LivePrice resolves the price a position is valued at. Without a usable quote
// the average buy price is used, so the holding shows no unrealized P&L.
func LivePrice(p *models.Position, quote *models.RealTimeQuote) (float64, models.PriceSource) {
	if quote != nil {
		if price := finite(quote.Close); price > 0 {
			src := quote.Source
			if src == "" {
				src = models.PriceSourceLive
			}
			return price, src
		}
	}
	return costPrice(p), models.PriceSourceCost
}

// costPrice is the net average cost, or the mean buy price when sells under the
// simple average have driven the net cost to zero or below.
func costPrice(p *models.Position) float64 {
	if avg := averageBuyPrice(p); avg > 0 {
		return avg
	}
	if mean := finite(ComputeAverageBuyPrice(p.Buys)); mean > 0 {
		return mean
	}
	return 0
}

// ValuePosition values one active position at price. portfolioValue is the
// current value of every holding in the portfolio and drives AllocationPct.
func ValuePosition(p *models.Position, price float64, portfolioValue float64, now time.Time) models.PortfolioRow {
	price = finite(price)
	currentValue := finite(p.TotalQuantity * price)
	unrealized := finite(currentValue - p.TotalInvested)

	xirr, status := CalculateXIRR(PositionCashFlows(p, currentValue, now))

	return models.PortfolioRow{
		Symbol:           p.Symbol,
		DisplayName:      displayName(p),
		AssetClass:       p.AssetClass,
		LivePrice:        price,
		Units:            finite(p.TotalQuantity),
		AvgBuyPrice:      averageBuyPrice(p),
		InvestedAmount:   finite(p.TotalInvested),
		CurrentValue:     currentValue,
		UnrealizedPnL:    unrealized,
		UnrealizedPnLPct: percent(unrealized, p.TotalInvested),
		RealizedPnL:      finite(p.RealizedPnL),
		DividendIncome:   finite(p.DividendIncome),
		XIRR:             xirr,
		XIRRStatus:       status,
		AllocationPct:    percent(currentValue, portfolioValue),
		DaysHeld:         daysHeld(p, now),
	}
}

// ValueHoldings values every active position in book against quotes (keyed by
// symbol) and sums portfolio totals. The caller fills in view.Portfolio.
func ValueHoldings(book *Book, quotes map[string]*models.RealTimeQuote, now time.Time, opts Options) models.PortfolioView {
	active := book.Active()

	prices := make([]float64, len(active))
	sources := make([]models.PriceSource, len(active))
	values := make([]float64, len(active))
	for i, p := range active {
		prices[i], sources[i] = LivePrice(p, quotes[p.Symbol])
		values[i] = finite(p.TotalQuantity * prices[i])
	}
	portfolioValue := finite(floats.Sum(values))

	view := models.PortfolioView{
		Holdings: make([]models.PortfolioRow, 0, len(active)),
		AsOf:     now,
	}

	dayChanges := make([]float64, 0, len(active))
	for i, p := range active {
		row := ValuePosition(p, prices[i], portfolioValue, now)
		row.PriceSource = sources[i]
		if sources[i] != models.PriceSourceCost {
			q := quotes[p.Symbol]
			row.DayChangePct = dayChangePct(q)
			if prev := finite(q.PreviousClose); prev > 0 {
				dayChanges = append(dayChanges, finite(row.Units*(row.LivePrice-prev)))
			}
		}
		view.Holdings = append(view.Holdings, row)
	}

	for _, p := range book.Closed() {
		view.Closed = append(view.Closed, models.ClosedPosition{
			Symbol:         p.Symbol,
			DisplayName:    displayName(p),
			AssetClass:     p.AssetClass,
			Quantity:       finite(p.TotalQuantity),
			RealizedPnL:    finite(p.RealizedPnL),
			DividendIncome: finite(p.DividendIncome),
		})
	}

	view.Totals = Totals(view.Holdings, view.Closed, opts.IncludeClosedInTotals)
	view.Totals.DayChange = finite(floats.Sum(dayChanges))
	view.AssetAllocation = Allocation(view.Holdings)
	return view
}

// Totals sums holdings into portfolio totals. Closed positions contribute
// realized P&L and dividends only when includeClosed is set.
func Totals(rows []models.PortfolioRow, closed []models.ClosedPosition, includeClosed bool) models.PortfolioTotals {
	n := len(rows)
	invested := make([]float64, n)
	current := make([]float64, n)
	realized := make([]float64, 0, n+len(closed))
	dividends := make([]float64, 0, n+len(closed))
	for i, r := range rows {
		invested[i] = r.InvestedAmount
		current[i] = r.CurrentValue
		realized = append(realized, r.RealizedPnL)
		dividends = append(dividends, r.DividendIncome)
	}
	if includeClosed {
		for _, c := range closed {
			realized = append(realized, c.RealizedPnL)
			dividends = append(dividends, c.DividendIncome)
		}
	}

	t := models.PortfolioTotals{
		InvestedAmount: finite(floats.Sum(invested)),
		CurrentValue:   finite(floats.Sum(current)),
		RealizedPnL:    finite(floats.Sum(realized)),
		DividendIncome: finite(floats.Sum(dividends)),
		HoldingCount:   n,
		IncludesClosed: includeClosed,
	}
	t.UnrealizedPnL = finite(t.CurrentValue - t.InvestedAmount)
	t.UnrealizedPnLPct = percent(t.UnrealizedPnL, t.InvestedAmount)
	return t
}

// Allocation groups holdings by asset class, largest share first.
func Allocation(rows []models.PortfolioRow) []models.AssetAllocation {
	byClass := make(map[models.AssetClass]*models.AssetAllocation)
	var order []models.AssetClass
	total := 0.0
	for _, r := range rows {
		class := r.AssetClass
		if class == "" {
			class = models.AssetOther
		}
		a, ok := byClass[class]
		if !ok {
			a = &models.AssetAllocation{AssetClass: class}
			byClass[class] = a
			order = append(order, class)
		}
		a.CurrentValue += r.CurrentValue
		a.Holdings = append(a.Holdings, r.Symbol)
		total += r.CurrentValue
	}

	out := make([]models.AssetAllocation, 0, len(order))
	for _, c := range order {
		a := byClass[c]
		a.CurrentValue = finite(a.CurrentValue)
		a.AllocationPct = percent(a.CurrentValue, total)
		out = append(out, *a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CurrentValue > out[j].CurrentValue
	})
	return out
}

func averageBuyPrice(p *models.Position) float64 {
	if p.TotalQuantity == 0 {
		return 0
	}
	return finite(p.TotalInvested / p.TotalQuantity)
}

func daysHeld(p *models.Position, now time.Time) int {
	first := p.FirstBuyDate()
	if first.IsZero() || now.Before(first) {
		return 0
	}
	return int(math.Floor(now.Sub(first).Hours() / 24))
}

func dayChangePct(q *models.RealTimeQuote) float64 {
	if pct := finite(q.ChangePct); pct != 0 {
		return pct
	}
	return percent(finite(q.Close)-finite(q.PreviousClose), q.PreviousClose)
}

func displayName(p *models.Position) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Symbol
}

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole float64) float64 {
	if whole == 0 || math.IsNaN(whole) || math.IsInf(whole, 0) {
		return 0
	}
	return finite(part / whole * 100)
}
