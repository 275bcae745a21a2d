package valuation

import (
	"math"
	"sort"

	"github.com/bobmcallan/folio/internal/models"
)

// Options tune how positions are costed and totalled.
type Options struct {
	// AverageBuyPrice costs each sell. Nil means ComputeAverageBuyPrice.
	AverageBuyPrice AverageFunc
	// IncludeClosedInTotals adds realized P&L and dividends of closed positions to portfolio totals.
	IncludeClosedInTotals bool
}

func (o Options) averageFunc() AverageFunc {
	if o.AverageBuyPrice == nil {
		return ComputeAverageBuyPrice
	}
	return o.AverageBuyPrice
}

// Aggregate folds transactions into one position per symbol.
// Input is stable-sorted by date first, so same-day entries keep their given order.
// Nothing is validated: non-finite numbers count as zero and unknown types are skipped.
func Aggregate(txs []models.Transaction, opts Options) *Book {
	book := newBook()
	if len(txs) == 0 {
		return book
	}

	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	avg := opts.averageFunc()

	for _, tx := range sorted {
		switch tx.Type {
		case models.TransactionBuy, models.TransactionSell, models.TransactionDividend:
		default:
			continue
		}

		p := book.position(tx)
		qty := finite(tx.Quantity)
		amount := transactionAmount(tx)

		switch tx.Type {
		case models.TransactionBuy:
			p.TotalQuantity += qty
			p.TotalInvested += amount
			p.Buys = append(p.Buys, tx)
		case models.TransactionSell:
			costBasisSold := finite(qty * avg(p.Buys))
			p.RealizedPnL += amount - costBasisSold
			p.TotalInvested -= costBasisSold
			p.TotalQuantity -= qty
			p.Sells = append(p.Sells, tx)
		case models.TransactionDividend:
			p.DividendIncome += amount
			p.Dividends = append(p.Dividends, tx)
		}
	}

	return book
}

// transactionAmount is TotalAmount, or Quantity*UnitPrice when no total was recorded.
func transactionAmount(tx models.Transaction) float64 {
	if total := finite(tx.TotalAmount); total != 0 {
		return total
	}
	return finite(finite(tx.Quantity) * finite(tx.UnitPrice))
}

// finite maps NaN and ±Inf to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
