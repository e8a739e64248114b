package badger

import "errors"

// errStopIteration ends a forEach walk early without reporting an error.
var errStopIteration = errors.New("stop iteration")
