package registry

import "errors"

var (
	ErrRegistryUnavailable = errors.New("registry unavailable")
	ErrMediaAddressUnset   = errors.New("media registry address is not set")
	ErrMarketAddressUnset  = errors.New("market registry address is not set")
)
