// Package metrics summarizes a coagulation run. Each metric implements
// sim.Metric: it observes the particles after every step and reports one
// number at the end.
//
// Number and mass totals depend on how concentrations are stored, so
// those metrics take the strategy's DistributionType and integrate
// continuous densities over the bin widths.
package metrics
