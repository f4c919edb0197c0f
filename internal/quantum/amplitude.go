// Package quantum implements a state-vector simulator for small quantum
// circuits: a fixed gate catalog, an immutable circuit description, and an
// engine that folds gate application and an approximate noise channel over a
// register of 2^n complex amplitudes. The package is pure arithmetic; it does
// no I/O and holds no global state.
package quantum

import "math"

// NormTolerance is the tolerance used for normalization checks. Floating-point
// drift below this bound is expected and is not an error.
const NormTolerance = 1e-6

// Probability returns the Born-rule probability |a|^2 of a single amplitude.
func Probability(a complex128) float64 {
	re, im := real(a), imag(a)
	return re*re + im*im
}

// SumProbabilities returns the total probability of an amplitude slice,
// the sum of |a|^2 over all entries. For a valid state this is 1 within
// NormTolerance.
func SumProbabilities(amps []complex128) float64 {
	var total float64
	for _, a := range amps {
		total += Probability(a)
	}
	return total
}

// Norm returns the L2 norm of an amplitude slice.
func Norm(amps []complex128) float64 {
	return math.Sqrt(SumProbabilities(amps))
}

// ApproxEqual reports whether two amplitudes agree within tol in both the
// real and imaginary components.
func ApproxEqual(a, b complex128, tol float64) bool {
	return math.Abs(real(a)-real(b)) <= tol && math.Abs(imag(a)-imag(b)) <= tol
}
