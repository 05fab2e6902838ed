package pricefeed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fundledger/internal/domain"
)

func TestStaticFeed(t *testing.T) {
	feed := NewStatic("0xfeed", domain.PriceQuote{Price: DefaultStaticPrice, Decimals: DefaultStaticDecimals})

	quote, err := feed.LatestQuote(context.Background())
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(DefaultStaticPrice))
	assert.Equal(t, int32(8), quote.Decimals)
	assert.Equal(t, "0xfeed", feed.Address())

	feed.SetQuote(domain.PriceQuote{Price: DefaultStaticPrice, Decimals: 6})
	quote, err = feed.LatestQuote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(6), quote.Decimals)

	feed.Fail(domain.ErrOracleUnavailable)
	_, err = feed.LatestQuote(context.Background())
	assert.True(t, errors.Is(err, domain.ErrOracleUnavailable))

	feed.Fail(nil)
	_, err = feed.LatestQuote(context.Background())
	assert.NoError(t, err)
}
