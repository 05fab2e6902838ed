package pricefeed

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
)

// DefaultStaticPrice is 2000 reference units with 8 decimals.
var DefaultStaticPrice = decimal.New(2000, 8)

// DefaultStaticDecimals is the scale of DefaultStaticPrice.
const DefaultStaticDecimals int32 = 8

// DefaultStaticAddress identifies the static feed when none is configured.
const DefaultStaticAddress = "0x000000000000000000000000000000000000feed"

// DefaultQuote returns the 2000e8 answer with 8 decimals.
func DefaultQuote() domain.PriceQuote {
	return domain.PriceQuote{Price: DefaultStaticPrice, Decimals: DefaultStaticDecimals}
}

// Static is a feed with a fixed, operator-set answer.
type Static struct {
	address string

	mu    sync.RWMutex
	quote domain.PriceQuote
	err   error
}

// NewStatic creates a Static feed answering quote.
func NewStatic(address string, quote domain.PriceQuote) *Static {
	return &Static{address: address, quote: quote}
}

// LatestQuote returns the configured answer.
func (s *Static) LatestQuote(ctx context.Context) (domain.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return domain.PriceQuote{}, s.err
	}
	return s.quote, nil
}

// Address returns the feed reference.
func (s *Static) Address() string {
	return s.address
}

// SetQuote replaces the answer.
func (s *Static) SetQuote(quote domain.PriceQuote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quote = quote
}

// Fail makes every following read return err until it is called with nil.
func (s *Static) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
