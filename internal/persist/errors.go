package persist

import "errors"

// ErrUnknownVersion is returned by Unmarshal for any record version other
// than CurrentVersion — callers skip the entry with a warning rather than
// failing the whole load.
var ErrUnknownVersion = errors.New("unknown record version")
