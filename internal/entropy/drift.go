package entropy

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Drift is a smooth, seeded multiplier around 1 built from simplex noise.
// The Firm uses it to make technology persistent across periods instead of
// i.i.d. draws from the shock set.
type Drift struct {
	noise     opensimplex.Noise
	Amplitude float64 // Max relative deviation from 1
	Scale     float64 // Noise frequency per period
}

// NewDrift returns nil when amplitude is not positive; a nil Drift is neutral.
func NewDrift(seed int64, amplitude, scale float64) *Drift {
	if amplitude <= 0 {
		return nil
	}
	if scale <= 0 {
		scale = 0.01
	}
	return &Drift{
		noise:     opensimplex.New(seed),
		Amplitude: amplitude,
		Scale:     scale,
	}
}

// Factor returns the multiplier for period t, in [1-Amplitude, 1+Amplitude].
func (d *Drift) Factor(t uint64) float64 {
	if d == nil {
		return 1
	}
	v := d.noise.Eval2(float64(t)*d.Scale, 0)
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return 1 + d.Amplitude*v
}
