package list

import "errors"

// ErrInvalidIndex is returned when a caller requests a key outside a
// list's bounds. The root package maps this to the public InvalidIndex
// error (§7).
var ErrInvalidIndex = errors.New("list: index out of range")
