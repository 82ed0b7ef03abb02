// Package particle holds the particle population consumed by coagulation
// strategies: a radius grid, a concentration aligned with it, and the
// material density and charge shared by every size class.
//
// A [Representation] is owned by a single writer. Coagulation steps
// replace its concentration through [Representation.SetConcentration];
// concurrent steps against the same Representation are not supported.
package particle
