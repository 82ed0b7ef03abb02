// Package gas derives gas-phase properties of air from ambient conditions.
//
// The central type is [Environment], an immutable pair of temperature and
// pressure from which the quantities needed by particle dynamics are
// computed on demand:
//
//   - [Environment.DynamicViscosityAir]: Sutherland's law
//   - [Environment.MeanFreePathAir]: kinetic-theory mean free path
//   - [Environment.DensityAir]: ideal-gas density
//
// [Atmosphere] groups an Environment with the gas species present and is
// assembled with [AtmosphereBuilder].
//
// # Example
//
//	env, err := gas.NewEnvironment(298.15, 101325)
//	if err != nil {
//	    return err
//	}
//	lambda := env.MeanFreePathAir()
package gas
