// Package pricefeed provides price oracles reporting the reference price
// of one whole native unit.
package pricefeed

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
)

// maxDecimals bounds the scale a feed may report.
const maxDecimals = 36

// quoteJSON is the wire form shared by HTTPFeed and CachedFeed.
type quoteJSON struct {
	Price    decimal.Decimal `json:"price"`
	Decimals int32           `json:"decimals"`
}

func encodeQuote(q domain.PriceQuote) ([]byte, error) {
	return json.Marshal(quoteJSON{Price: q.Price, Decimals: q.Decimals})
}

func decodeQuote(data []byte) (domain.PriceQuote, error) {
	var raw quoteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("decode quote: %w", err)
	}
	if raw.Decimals < 0 || raw.Decimals > maxDecimals {
		return domain.PriceQuote{}, fmt.Errorf("decode quote: decimals %d out of range", raw.Decimals)
	}

	return domain.PriceQuote{Price: raw.Price, Decimals: raw.Decimals}, nil
}
