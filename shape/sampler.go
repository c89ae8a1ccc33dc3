package shape

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/config"
)

// GenerateSphere places n points on a sphere with the equal-area spiral
// phi = acos(-1 + 2i/n), theta = sqrt(n*pi)*phi. Closed form, no randomness.
func GenerateSphere(n int, radius float64) Buffer {
	if n <= 0 {
		return Buffer{}
	}
	buf := make(Buffer, n)
	spiral := math.Sqrt(float64(n) * math.Pi)
	for i := range buf {
		phi := math.Acos(-1 + 2*float64(i)/float64(n))
		theta := spiral * phi
		sinPhi := math.Sin(phi)
		buf[i] = r3.Vec{
			X: radius * math.Cos(theta) * sinPhi,
			Y: radius * math.Sin(theta) * sinPhi,
			Z: radius * math.Cos(phi),
		}
	}
	return buf
}

// GenerateHeart samples the classic parametric heart curve with a random
// extrusion depth. The curve parametrization concentrates points near the cusps.
func GenerateHeart(n int, p config.HeartConfig, rng *rand.Rand) Buffer {
	if n <= 0 {
		return Buffer{}
	}
	buf := make(Buffer, n)
	for i := range buf {
		t := rng.Float64() * 2 * math.Pi
		depth := (rng.Float64() - 0.5) * 2

		sinT := math.Sin(t)
		buf[i] = r3.Vec{
			X: p.Amplitude * sinT * sinT * sinT * p.Scale,
			Y: (13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)) * p.Scale,
			Z: depth * (p.DepthBase + p.DepthVar*math.Abs(sinT)) * p.DepthScale,
		}
	}
	return buf
}

// GenerateRose samples a rhodonea curve swept over a polar angle, with a
// sinusoidal z wobble so the flower does not collapse into a disc.
func GenerateRose(n int, p config.RoseConfig, rng *rand.Rand) Buffer {
	if n <= 0 {
		return Buffer{}
	}
	buf := make(Buffer, n)
	for i := range buf {
		t := rng.Float64() * 2 * math.Pi * p.Turns
		polar := rng.Float64() * math.Pi

		sinP := math.Sin(polar)
		r := p.Radius * math.Cos(p.Petals*t) * sinP
		buf[i] = r3.Vec{
			X: r * sinP * math.Cos(t),
			Y: r * sinP * math.Sin(t),
			Z: r*math.Cos(polar) + math.Sin(t*p.WobbleFreq)*p.WobbleAmp,
		}
	}
	return buf
}

// GenerateRandomPhases returns n independent draws from U(0,1).
func GenerateRandomPhases(n int, rng *rand.Rand) []float64 {
	if n <= 0 {
		return []float64{}
	}
	phases := make([]float64, n)
	for i := range phases {
		phases[i] = rng.Float64()
	}
	return phases
}
