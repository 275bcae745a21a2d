// Package valuation turns a portfolio's transactions into positions, valued
// holdings and money-weighted returns. Everything here is pure: no I/O and no
// state survives a call, so it is safe to use from any goroutine.
package valuation

import "github.com/bobmcallan/folio/internal/models"

// Book is the ordered, symbol-indexed set of positions produced by one Aggregate call.
// Positions are kept in the order their symbol first appeared in the date-sorted input.
type Book struct {
	order     []string
	positions map[string]*models.Position
}

func newBook() *Book {
	return &Book{positions: make(map[string]*models.Position)}
}

// position returns the position for tx's symbol, creating it on first sight.
func (b *Book) position(tx models.Transaction) *models.Position {
	if p, ok := b.positions[tx.Symbol]; ok {
		if p.DisplayName == "" {
			p.DisplayName = tx.Name
		}
		if p.AssetClass == "" {
			p.AssetClass = tx.AssetClass
		}
		return p
	}
	p := &models.Position{
		Symbol:      tx.Symbol,
		DisplayName: tx.Name,
		AssetClass:  tx.AssetClass,
	}
	b.positions[tx.Symbol] = p
	b.order = append(b.order, tx.Symbol)
	return p
}

// Get returns the position for symbol.
func (b *Book) Get(symbol string) (*models.Position, bool) {
	p, ok := b.positions[symbol]
	return p, ok
}

// Len returns the number of positions.
func (b *Book) Len() int {
	return len(b.order)
}

// Positions returns every position in book order.
func (b *Book) Positions() []*models.Position {
	out := make([]*models.Position, 0, len(b.order))
	for _, s := range b.order {
		out = append(out, b.positions[s])
	}
	return out
}

// Active returns positions with a positive quantity, the current holdings.
func (b *Book) Active() []*models.Position {
	var out []*models.Position
	for _, s := range b.order {
		if p := b.positions[s]; p.IsActive() {
			out = append(out, p)
		}
	}
	return out
}

// Closed returns positions that net to zero or below, including dividend-only symbols.
func (b *Book) Closed() []*models.Position {
	var out []*models.Position
	for _, s := range b.order {
		if p := b.positions[s]; !p.IsActive() {
			out = append(out, p)
		}
	}
	return out
}
