package gas

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardEnvironment(t *testing.T) Environment {
	t.Helper()
	env, err := NewEnvironment(298, 101325)
	require.NoError(t, err)
	return env
}

func TestEnvironmentGetters(t *testing.T) {
	env := standardEnvironment(t)
	assert.Equal(t, 298.0, env.Temperature())
	assert.Equal(t, 101325.0, env.Pressure())
	assert.True(t, env.Valid())
}

func TestDynamicViscosityAir(t *testing.T) {
	env := standardEnvironment(t)
	assert.InEpsilon(t, 1.836e-5, env.DynamicViscosityAir(), 1e-3)
}

func TestMeanFreePathAir(t *testing.T) {
	env := standardEnvironment(t)
	assert.InEpsilon(t, 6.644e-8, env.MeanFreePathAir(), 1e-3)
}

func TestViscosityIncreasesWithTemperature(t *testing.T) {
	assert.Less(t, DynamicViscosity(250), DynamicViscosity(300))
	assert.Less(t, DynamicViscosity(300), DynamicViscosity(350))
}

func TestMeanFreePathScalesInverselyWithPressure(t *testing.T) {
	low, err := NewEnvironment(298, 50000)
	require.NoError(t, err)
	high, err := NewEnvironment(298, 100000)
	require.NoError(t, err)
	assert.InEpsilon(t, 2.0, low.MeanFreePathAir()/high.MeanFreePathAir(), 1e-12)
}

func TestDensityAir(t *testing.T) {
	env := standardEnvironment(t)
	assert.InEpsilon(t, 1.184, env.DensityAir(), 1e-2)
	assert.InEpsilon(t, env.DynamicViscosityAir()/1.2, env.KinematicViscosityAir(1.2), 1e-12)
	assert.InEpsilon(t, env.DynamicViscosityAir()/env.DensityAir(), env.KinematicViscosityAir(0), 1e-12)
}

func TestNewEnvironmentInvalid(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
		pressure    float64
	}{
		{"negative temperature", -1, 101325},
		{"zero temperature", 0, 101325},
		{"negative pressure", 298, -5},
		{"zero pressure", 298, 0},
		{"NaN temperature", math.NaN(), 101325},
		{"infinite pressure", 298, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEnvironment(tt.temperature, tt.pressure)
			assert.True(t, errors.Is(err, ErrInvalidPhysicalState), "got %v", err)
		})
	}
}

func TestZeroEnvironmentInvalid(t *testing.T) {
	assert.False(t, Environment{}.Valid())
}

func TestNewEnvironmentFromUnits(t *testing.T) {
	env, err := NewEnvironmentFromUnits(unit.New(298, unit.Kelvin), unit.New(101325, unit.Pascal))
	require.NoError(t, err)
	assert.Equal(t, 298.0, env.Temperature())
	assert.Equal(t, 101325.0, env.Pressure())

	_, err = NewEnvironmentFromUnits(unit.New(298, unit.Pascal), unit.New(101325, unit.Pascal))
	assert.ErrorIs(t, err, ErrInvalidPhysicalState)

	_, err = NewEnvironmentFromUnits(unit.New(-1, unit.Kelvin), unit.New(101325, unit.Pascal))
	assert.ErrorIs(t, err, ErrInvalidPhysicalState)

	_, err = NewEnvironmentFromUnits(nil, unit.New(101325, unit.Pascal))
	assert.ErrorIs(t, err, ErrInvalidPhysicalState)
}
