package gas

import "errors"

// ErrInvalidPhysicalState indicates a non-positive or non-finite
// temperature or pressure.
var ErrInvalidPhysicalState = errors.New("gas: invalid physical state")
