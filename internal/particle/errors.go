package particle

import "errors"

// ErrInvalidParticleState indicates a malformed particle population:
// empty or non-increasing radii, a concentration of the wrong length,
// negative or non-finite values, or a non-positive density.
var ErrInvalidParticleState = errors.New("particle: invalid particle state")
