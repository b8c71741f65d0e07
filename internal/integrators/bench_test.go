package integrators

import "testing"

func benchmarkIntegrator(b *testing.B, integ Integrator) {
	x := State{Y: 1e6, V: 0}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(x, -9.81, 0.016)
	}
	_ = x
}

func BenchmarkSemiImplicit(b *testing.B) { benchmarkIntegrator(b, NewSemiImplicit()) }
func BenchmarkEuler(b *testing.B)        { benchmarkIntegrator(b, NewEuler()) }
func BenchmarkVerlet(b *testing.B)       { benchmarkIntegrator(b, NewVerlet()) }
