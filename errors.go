package cachecall

import (
	"errors"
)

// ErrInvalidArgument reports a contract violation by the caller: a missing
// required option, a lifetime that is not an integer or lifetime value, an
// identifier the key strategy cannot map, or an unknown level label.
//
// Producer and store errors are never wrapped in it; they are returned as-is.
var ErrInvalidArgument = errors.New("cachecall: invalid argument")
