package cache

import "errors"

// ErrMiss is returned when no usable cache entry exists for a key,
// either because none was stored or because the stored entry is too
// old.
var ErrMiss = errors.New("cache miss")
