// Package coagulation computes pairwise collision kernels for a particle
// population and advances its concentration through time.
//
// Every mechanism implements [Strategy]:
//
//   - [BrownianStrategy]: thermal motion, Fuchs transition-regime kernel
//   - [TurbulentShearStrategy]: Saffman-Turner turbulent shear
//   - [ChargedStrategy]: Coulomb-influenced collisions from dimensionless kernels
//   - [CombinedStrategy]: the sum of several mechanisms
//
// Kernels are returned as [mat.SymDense], so symmetry holds by
// construction. [Advance] proposes a new concentration without touching
// the particle; [Apply] commits it. Both work on per-bin counts
// ([Discrete]) or on a number density in radius ([ContinuousPDF]).
//
// # Merging
//
// A collision between classes i and j creates a particle of mass
// m_i + m_j. [MergePolicy] decides which bins receive it. A product
// heavier than the largest bin leaves the grid and its mass is reported
// in [StepReport.LostMass].
//
// # Stability
//
// The update is explicit. When a step would drive a bin negative the bin
// is clamped to zero, the index is recorded in [StepReport.Clamped], and a
// warning is logged. Callers should shrink the time step in response.
//
// # Thread Safety
//
// Strategies hold no mutable state and may be shared. A particle.Representation
// must only be stepped by one goroutine at a time.
package coagulation
