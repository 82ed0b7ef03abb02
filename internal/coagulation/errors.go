package coagulation

import (
	"errors"

	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
)

var (
	// ErrInvalidPhysicalState is returned for non-positive temperature or pressure.
	ErrInvalidPhysicalState = gas.ErrInvalidPhysicalState

	// ErrInvalidParticleState is returned for malformed particles, unknown
	// distribution types, and negative time steps.
	ErrInvalidParticleState = particle.ErrInvalidParticleState

	// ErrNonFiniteKernel indicates a kernel entry evaluated to NaN, Inf or
	// a negative value.
	ErrNonFiniteKernel = errors.New("coagulation: kernel entry is not a finite non-negative rate")
)
