package marketdata

import "errors"

var (
	ErrSymbolNotFound = errors.New("symbol not found in stocks feed")
	ErrUpstream       = errors.New("upstream market data unavailable")
	ErrRateLimited    = errors.New("rate limited by upstream API")
)
